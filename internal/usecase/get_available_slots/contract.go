package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-RoomBooking/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	ListActive(ctx context.Context, roomID int64, date time.Time) ([]*domain.Booking, error)
}

// RoomRepository интерфейс репозитория комнат
type RoomRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
}

// AvailabilityCache кэш флагов занятости слотов.
// SetIfUnchanged не сохраняет флаги, если после Generation была инвалидация.
type AvailabilityCache interface {
	Get(ctx context.Context, roomID int64, date time.Time) ([]bool, bool, error)
	Generation(ctx context.Context, roomID int64, date time.Time) (int64, error)
	SetIfUnchanged(ctx context.Context, roomID int64, date time.Time, generation int64, booked []bool) error
}

// MetricsCollector счетчики обращений к кэшу
type MetricsCollector interface {
	IncAvailabilityCache(result string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
