package cancel_booking

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
	"github.com/m04kA/SMC-RoomBooking/internal/service/bookings"
	"github.com/m04kA/SMC-RoomBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-RoomBooking/pkg/logger"
)

type mockService struct{ mock.Mock }

func (m *mockService) Cancel(ctx context.Context, id int64, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	args := m.Called(ctx, id, req)
	resp, _ := args.Get(0).(*models.BookingResponse)
	return resp, args.Error(1)
}

func serve(h *Handler, bookingID, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/"+bookingID+"/cancel", strings.NewReader(body))
	r = mux.SetURLVars(r, map[string]string{"bookingId": bookingID})
	r = r.WithContext(middleware.WithUserID(r.Context(), 7))
	w := httptest.NewRecorder()
	h.Handle(w, r)
	return w
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"ok", nil, http.StatusOK},
		{"reason missing", bookings.ErrInvalidInput, http.StatusBadRequest},
		{"not found", bookings.ErrBookingNotFound, http.StatusNotFound},
		{"forbidden", bookings.ErrAccessDenied, http.StatusForbidden},
		{"expired", bookings.ErrCannotCancel, http.StatusConflict},
		{"internal", bookings.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			h := NewHandler(svc, logger.Nop())

			var resp *models.BookingResponse
			if tt.err == nil {
				resp = &models.BookingResponse{ID: 5, Status: "cancelled"}
			}
			svc.On("Cancel", mock.Anything, int64(5), &models.CancelBookingRequest{CallerID: 7, CancelReason: "sick"}).
				Return(resp, tt.err)

			w := serve(h, "5", `{"cancelReason":"sick"}`)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestHandle_InvalidID(t *testing.T) {
	svc := &mockService{}
	h := NewHandler(svc, logger.Nop())

	w := serve(h, "abc", `{"cancelReason":"sick"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything)
}
