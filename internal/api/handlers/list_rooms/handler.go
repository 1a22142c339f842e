package list_rooms

import (
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-RoomBooking/internal/api/handlers"
)

const msgInvalidOpenFlag = "параметр open должен быть true или false"

type Handler struct {
	service RoomService
	logger  Logger
}

func NewHandler(service RoomService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/rooms?open=true
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	openOnly := false
	if v := r.URL.Query().Get("open"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			h.logger.Warn("GET /rooms - Invalid open flag: %s", v)
			handlers.RespondBadRequest(w, msgInvalidOpenFlag)
			return
		}
		openOnly = parsed
	}

	list, err := h.service.List(r.Context(), openOnly)
	if err != nil {
		h.logger.Error("GET /rooms - Failed to list rooms: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /rooms - Listed %d rooms (openOnly=%t)", len(list.Rooms), openOnly)
	handlers.RespondJSON(w, http.StatusOK, list)
}
