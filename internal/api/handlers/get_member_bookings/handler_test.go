package get_member_bookings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RoomBooking/internal/api/middleware"
	"github.com/m04kA/SMC-RoomBooking/internal/service/bookings"
	"github.com/m04kA/SMC-RoomBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-RoomBooking/pkg/logger"
)

type mockService struct{ mock.Mock }

func (m *mockService) GetMemberBookings(ctx context.Context, req *models.GetMemberBookingsRequest) (*models.BookingListResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*models.BookingListResponse)
	return resp, args.Error(1)
}

func serve(h *Handler, memberID, query string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/members/"+memberID+"/bookings?"+query, nil)
	r = mux.SetURLVars(r, map[string]string{"memberId": memberID})
	r = r.WithContext(middleware.WithUserID(r.Context(), 4))
	w := httptest.NewRecorder()
	h.Handle(w, r)
	return w
}

func TestHandle_PassesFilter(t *testing.T) {
	svc := &mockService{}
	h := NewHandler(svc, logger.Nop())

	status := "expired"
	svc.On("GetMemberBookings", mock.Anything, &models.GetMemberBookingsRequest{
		CallerID: 4,
		MemberID: 4,
		Status:   &status,
		Page:     2,
		PageSize: 10,
	}).Return(&models.BookingListResponse{
		Bookings: []models.BookingResponse{{ID: 1, Status: "expired", Expired: true}},
		Total:    11,
		Page:     2,
		PageSize: 10,
	}, nil)

	w := serve(h, "4", "status=expired&page=2&pageSize=10")
	require.Equal(t, http.StatusOK, w.Code)

	var body models.BookingListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 11, body.Total)
	assert.True(t, body.Bookings[0].Expired)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad status", bookings.ErrInvalidInput, http.StatusBadRequest},
		{"other member", bookings.ErrAccessDenied, http.StatusForbidden},
		{"internal", bookings.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			h := NewHandler(svc, logger.Nop())
			svc.On("GetMemberBookings", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := serve(h, "5", "")
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestHandle_InvalidPage(t *testing.T) {
	svc := &mockService{}
	h := NewHandler(svc, logger.Nop())

	w := serve(h, "4", "page=first")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "GetMemberBookings", mock.Anything, mock.Anything)
}
