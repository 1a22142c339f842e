package create_booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RoomBooking/internal/api/middleware"
	"github.com/m04kA/SMC-RoomBooking/internal/scheduling"
	createBooking "github.com/m04kA/SMC-RoomBooking/internal/usecase/create_booking"
	"github.com/m04kA/SMC-RoomBooking/pkg/logger"
)

type mockUseCase struct{ mock.Mock }

func (m *mockUseCase) Execute(ctx context.Context, req *createBooking.Request) (*createBooking.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*createBooking.Response)
	return resp, args.Error(1)
}

const validBody = `{"roomId":1,"date":"2024-06-02","timeSlots":["10:00","10:30"],"reason":"sync","participants":[{"userId":8,"nickname":"kim"}]}`

func doRequest(h *Handler, body string, userID int64) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	if userID > 0 {
		r = r.WithContext(middleware.WithUserID(r.Context(), userID))
	}
	w := httptest.NewRecorder()
	h.Handle(w, r)
	return w
}

func TestHandle_Created(t *testing.T) {
	uc := &mockUseCase{}
	h := NewHandler(uc, logger.Nop())

	uc.On("Execute", mock.Anything, mock.MatchedBy(func(req *createBooking.Request) bool {
		return req.MemberID == 7 && req.RoomID == 1 && len(req.TimeSlots) == 2 &&
			req.Date.Equal(time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)) &&
			len(req.Participants) == 1 && req.Participants[0].Nickname == "kim"
	})).Return(&createBooking.Response{
		ID:          11,
		RoomID:      1,
		MemberID:    7,
		BookingDate: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
		StartTime:   "10:00",
		EndTime:     "11:00",
		Status:      "active",
	}, nil)

	w := doRequest(h, validBody, 7)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp BookingResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, int64(11), resp.ID)
	assert.Equal(t, "2024-06-02", resp.BookingDate)
	assert.Equal(t, "11:00", resp.EndTime)
}

func TestHandle_ConflictBodyAsksForRefetch(t *testing.T) {
	uc := &mockUseCase{}
	h := NewHandler(uc, logger.Nop())

	uc.On("Execute", mock.Anything, mock.Anything).Return(nil, &scheduling.SlotConflictError{
		RoomID: 1,
		Date:   time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
		Slot:   "10:30",
	})

	w := doRequest(h, validBody, 7)
	require.Equal(t, http.StatusConflict, w.Code)

	var resp ConflictResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, ConflictResponse{
		Code:    http.StatusConflict,
		Message: msgSlotConflict,
		RoomID:  1,
		Date:    "2024-06-02",
		Slot:    "10:30",
		Refetch: true,
	}, resp)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"empty selection", scheduling.ErrEmptySelection, http.StatusBadRequest},
		{"invalid slot", scheduling.ErrInvalidSlot, http.StatusBadRequest},
		{"non contiguous", scheduling.ErrNonContiguousSlots, http.StatusBadRequest},
		{"in past", scheduling.ErrDateInPast, http.StatusBadRequest},
		{"out of range", scheduling.ErrDateOutOfRange, http.StatusBadRequest},
		{"room closed", scheduling.ErrRoomClosed, http.StatusConflict},
		{"room not found", createBooking.ErrRoomNotFound, http.StatusNotFound},
		{"member not found", createBooking.ErrMemberNotFound, http.StatusNotFound},
		{"invalid input", createBooking.ErrInvalidInput, http.StatusBadRequest},
		{"internal", createBooking.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockUseCase{}
			h := NewHandler(uc, logger.Nop())
			uc.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := doRequest(h, validBody, 7)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestHandle_BadRequests(t *testing.T) {
	uc := &mockUseCase{}
	h := NewHandler(uc, logger.Nop())

	assert.Equal(t, http.StatusUnauthorized, doRequest(h, validBody, 0).Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(h, `{"roomId":`, 7).Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(h, `{"roomId":1,"date":"02.06.2024","timeSlots":["10:00"],"reason":"x"}`, 7).Code)

	uc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}
