package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-RoomBooking/internal/api/handlers"
	"github.com/m04kA/SMC-RoomBooking/internal/api/middleware"
	"github.com/m04kA/SMC-RoomBooking/internal/domain"
	"github.com/m04kA/SMC-RoomBooking/internal/scheduling"
	createBooking "github.com/m04kA/SMC-RoomBooking/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты бронирования, ожидается YYYY-MM-DD"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidInput       = "некорректные данные бронирования"
	msgRoomNotFound       = "комната не найдена"
	msgMemberNotFound     = "участник не найден"
	msgEmptySelection     = "не выбрано ни одного слота"
	msgInvalidSlot        = "некорректный временной слот, ожидается HH:00 или HH:30"
	msgNonContiguous      = "выбранные слоты должны идти подряд"
	msgDateInPast         = "нельзя бронировать прошедшее время"
	msgDateOutOfRange     = "дата бронирования слишком далеко в будущем"
	msgSlotConflict       = "выбранное время уже занято, обновите расписание"
	msgRoomClosed         = "комната закрыта для бронирования"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	memberID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Конвертируем HTTP запрос в модель use case (с парсингом даты)
	useCaseReq, err := req.ToUseCaseRequest(memberID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		h.respondError(w, &req, memberID, err)
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, member_id=%d, room_id=%d",
		result.ID, memberID, req.RoomID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}

func (h *Handler) respondError(w http.ResponseWriter, req *CreateBookingRequest, memberID int64, err error) {
	var conflict *scheduling.SlotConflictError

	switch {
	case errors.As(err, &conflict):
		h.logger.Warn("POST /bookings - Slot conflict: member_id=%d, room_id=%d, date=%s",
			memberID, conflict.RoomID, conflict.Date.Format(domain.DateFormat))
		handlers.RespondJSON(w, http.StatusConflict, ConflictResponse{
			Code:    http.StatusConflict,
			Message: msgSlotConflict,
			RoomID:  conflict.RoomID,
			Date:    conflict.Date.Format(domain.DateFormat),
			Slot:    conflict.Slot.String(),
			Refetch: true,
		})

	case errors.Is(err, scheduling.ErrRoomClosed):
		h.logger.Warn("POST /bookings - Room closed: room_id=%d", req.RoomID)
		handlers.RespondConflict(w, msgRoomClosed)

	case errors.Is(err, createBooking.ErrRoomNotFound):
		h.logger.Warn("POST /bookings - Room not found: room_id=%d", req.RoomID)
		handlers.RespondNotFound(w, msgRoomNotFound)

	case errors.Is(err, createBooking.ErrMemberNotFound):
		h.logger.Warn("POST /bookings - Member not found: member_id=%d", memberID)
		handlers.RespondNotFound(w, msgMemberNotFound)

	case errors.Is(err, createBooking.ErrInvalidInput):
		h.logger.Warn("POST /bookings - Invalid input: %v", err)
		handlers.RespondBadRequest(w, msgInvalidInput)

	case errors.Is(err, scheduling.ErrEmptySelection):
		handlers.RespondBadRequest(w, msgEmptySelection)

	case errors.Is(err, scheduling.ErrInvalidSlot):
		handlers.RespondBadRequest(w, msgInvalidSlot)

	case errors.Is(err, scheduling.ErrNonContiguousSlots):
		handlers.RespondBadRequest(w, msgNonContiguous)

	case errors.Is(err, scheduling.ErrDateInPast):
		handlers.RespondBadRequest(w, msgDateInPast)

	case errors.Is(err, scheduling.ErrDateOutOfRange):
		handlers.RespondBadRequest(w, msgDateOutOfRange)

	default:
		h.logger.Error("POST /bookings - Failed to create booking: member_id=%d, room_id=%d, error=%v",
			memberID, req.RoomID, err)
		handlers.RespondInternalError(w)
	}
}
