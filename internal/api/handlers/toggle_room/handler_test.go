package toggle_room

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-RoomBooking/internal/api/middleware"
	"github.com/m04kA/SMC-RoomBooking/internal/service/rooms"
	"github.com/m04kA/SMC-RoomBooking/internal/service/rooms/models"
	"github.com/m04kA/SMC-RoomBooking/pkg/logger"
	"github.com/m04kA/SMC-RoomBooking/pkg/ptr"
)

type mockService struct{ mock.Mock }

func (m *mockService) Toggle(ctx context.Context, req *models.ToggleRoomRequest) (*models.RoomResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*models.RoomResponse)
	return resp, args.Error(1)
}

func serve(h *Handler, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPatch, "/api/v1/rooms/2/toggle", strings.NewReader(body))
	r = mux.SetURLVars(r, map[string]string{"roomId": "2"})
	r = r.WithContext(middleware.WithUserID(r.Context(), 1))
	w := httptest.NewRecorder()
	h.Handle(w, r)
	return w
}

func TestHandle_EmptyBodyFlips(t *testing.T) {
	svc := &mockService{}
	h := NewHandler(svc, logger.Nop())
	svc.On("Toggle", mock.Anything, &models.ToggleRoomRequest{CallerID: 1, RoomID: 2}).
		Return(&models.RoomResponse{ID: 2, IsOpen: false}, nil)

	w := serve(h, "")
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestHandle_ExplicitState(t *testing.T) {
	svc := &mockService{}
	h := NewHandler(svc, logger.Nop())
	svc.On("Toggle", mock.Anything, &models.ToggleRoomRequest{CallerID: 1, RoomID: 2, IsOpen: ptr.Ptr(true)}).
		Return(&models.RoomResponse{ID: 2, IsOpen: true}, nil)

	w := serve(h, `{"isOpen":true}`)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", rooms.ErrRoomNotFound, http.StatusNotFound},
		{"not admin", rooms.ErrAccessDenied, http.StatusForbidden},
		{"internal", rooms.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			h := NewHandler(svc, logger.Nop())
			svc.On("Toggle", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := serve(h, `{"isOpen":false}`)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
