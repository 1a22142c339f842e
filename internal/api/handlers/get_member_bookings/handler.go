package get_member_bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-RoomBooking/internal/api/handlers"
	"github.com/m04kA/SMC-RoomBooking/internal/api/middleware"
	"github.com/m04kA/SMC-RoomBooking/internal/service/bookings"
	"github.com/m04kA/SMC-RoomBooking/internal/service/bookings/models"
)

const (
	msgInvalidMemberID = "некорректный ID участника"
	msgInvalidQuery    = "некорректные параметры запроса"
	msgMissingUserID   = "отсутствует ID пользователя"
	msgForbidden       = "доступ запрещен"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/members/{memberId}/bookings?status=active|expired|cancelled&page=&pageSize=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	memberID, err := strconv.ParseInt(mux.Vars(r)["memberId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /members/{id}/bookings - Invalid member ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidMemberID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /members/{id}/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	req := &models.GetMemberBookingsRequest{
		CallerID: userID,
		MemberID: memberID,
	}

	q := r.URL.Query()
	if status := q.Get("status"); status != "" {
		req.Status = &status
	}
	if req.Page, err = atoiOrZero(q.Get("page")); err != nil {
		h.logger.Warn("GET /members/{id}/bookings - Invalid page: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}
	if req.PageSize, err = atoiOrZero(q.Get("pageSize")); err != nil {
		h.logger.Warn("GET /members/{id}/bookings - Invalid pageSize: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	list, err := h.service.GetMemberBookings(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /members/{id}/bookings - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidQuery)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /members/{id}/bookings - Access denied: member_id=%d, user_id=%d", memberID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /members/{id}/bookings - Failed to get bookings: member_id=%d, error=%v", memberID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /members/{id}/bookings - Retrieved %d of %d bookings for member_id=%d",
		len(list.Bookings), list.Total, memberID)
	handlers.RespondJSON(w, http.StatusOK, list)
}

func atoiOrZero(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
