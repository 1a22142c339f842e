package update_room_config

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
	"github.com/m04kA/SMC-RoomBooking/internal/service/config"
	"github.com/m04kA/SMC-RoomBooking/internal/service/config/models"
	"github.com/m04kA/SMC-RoomBooking/pkg/logger"
	"github.com/m04kA/SMC-RoomBooking/pkg/ptr"
)

type mockService struct{ mock.Mock }

func (m *mockService) Update(ctx context.Context, req *models.UpdateConfigRequest) (*models.ConfigResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*models.ConfigResponse)
	return resp, args.Error(1)
}

func newRouter(h *Handler) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/rooms/{roomId}/config", h.Handle).Methods(http.MethodPut)
	r.HandleFunc("/api/v1/config", h.Handle).Methods(http.MethodPut)
	return middleware.Auth(r)
}

func put(router http.Handler, path, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPut, path, strings.NewReader(body))
	r.Header.Set(middleware.UserIDHeader, "1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestHandle_RoomConfig(t *testing.T) {
	svc := &mockService{}
	router := newRouter(NewHandler(svc, logger.Nop()))

	svc.On("Update", mock.Anything, &models.UpdateConfigRequest{
		CallerID:           1,
		RoomID:             ptr.Ptr(int64(4)),
		AdvanceBookingDays: ptr.Ptr(14),
	}).Return(&models.ConfigResponse{ID: 2, RoomID: ptr.Ptr(int64(4)), AdvanceBookingDays: 14, Level: models.LevelRoom}, nil)

	w := put(router, "/api/v1/rooms/4/config", `{"advanceBookingDays":14}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"level":"room"`)
	svc.AssertExpectations(t)
}

func TestHandle_GlobalConfig(t *testing.T) {
	svc := &mockService{}
	router := newRouter(NewHandler(svc, logger.Nop()))

	svc.On("Update", mock.Anything, &models.UpdateConfigRequest{
		CallerID:           1,
		AdvanceBookingDays: ptr.Ptr(0),
	}).Return(&models.ConfigResponse{ID: 1, AdvanceBookingDays: 0, Level: models.LevelGlobal}, nil)

	w := put(router, "/api/v1/config", `{"advanceBookingDays":0}`)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"out of range", config.ErrInvalidInput, http.StatusBadRequest},
		{"not admin", config.ErrAccessDenied, http.StatusForbidden},
		{"no room", config.ErrRoomNotFound, http.StatusNotFound},
		{"internal", config.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			router := newRouter(NewHandler(svc, logger.Nop()))
			svc.On("Update", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := put(router, "/api/v1/rooms/4/config", `{"advanceBookingDays":400}`)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestHandle_UnknownField(t *testing.T) {
	svc := &mockService{}
	router := newRouter(NewHandler(svc, logger.Nop()))

	w := put(router, "/api/v1/rooms/4/config", `{"slotDuration":30}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
