package update_room_config

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-RoomBooking/internal/api/handlers"
	"github.com/m04kA/SMC-RoomBooking/internal/api/middleware"
	"github.com/m04kA/SMC-RoomBooking/internal/service/config"
)

const (
	msgInvalidRoomID      = "некорректный ID комнаты"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDays        = "advanceBookingDays должен быть от 0 до 365"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgRoomNotFound       = "комната не найдена"
	msgForbidden          = "изменять настройки может только администратор"
)

type Handler struct {
	service ConfigService
	logger  Logger
}

func NewHandler(service ConfigService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/rooms/{roomId}/config и PUT /api/v1/config (глобальные настройки)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var roomID *int64
	if raw, ok := mux.Vars(r)["roomId"]; ok {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.logger.Warn("PUT config - Invalid room ID: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRoomID)
			return
		}
		roomID = &id
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT config - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req UpdateConfigRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT config - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	cfg, err := h.service.Update(r.Context(), req.ToServiceRequest(userID, roomID))
	if err != nil {
		switch {
		case errors.Is(err, config.ErrInvalidInput):
			h.logger.Warn("PUT config - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDays)

		case errors.Is(err, config.ErrAccessDenied):
			h.logger.Warn("PUT config - Access denied: user_id=%d", userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, config.ErrRoomNotFound):
			h.logger.Warn("PUT config - Room not found: room_id=%v", roomID)
			handlers.RespondNotFound(w, msgRoomNotFound)

		default:
			h.logger.Error("PUT config - Failed to update config: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT config - Config updated: level=%s, advanceBookingDays=%d", cfg.Level, cfg.AdvanceBookingDays)
	handlers.RespondJSON(w, http.StatusOK, cfg)
}
