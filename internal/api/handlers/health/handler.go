package health

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/m04kA/SMC-RoomBooking/internal/api/handlers"
)

const checkTimeout = 2 * time.Second

const (
	statusOK   = "ok"
	statusDown = "down"
)

// Response состояние сервиса и его зависимостей
type Response struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

type Handler struct {
	checks map[string]Pinger
	logger Logger
}

// NewHandler создает handler проверки здоровья; checks - зависимости по имени
func NewHandler(checks map[string]Pinger, logger Logger) *Handler {
	return &Handler{
		checks: checks,
		logger: logger,
	}
}

// Handle GET /health
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := Response{Status: statusOK, Components: make(map[string]string, len(names))}
	for _, name := range names {
		if err := h.checks[name].Ping(ctx); err != nil {
			h.logger.Warn("GET /health - %s is down: %v", name, err)
			resp.Components[name] = statusDown
			resp.Status = statusDown
			continue
		}
		resp.Components[name] = statusOK
	}

	code := http.StatusOK
	if resp.Status != statusOK {
		code = http.StatusServiceUnavailable
	}
	handlers.RespondJSON(w, code, resp)
}

// PingFunc адаптер функции к Pinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }
