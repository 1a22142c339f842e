package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-RoomBooking/internal/domain"
	"github.com/m04kA/SMC-RoomBooking/internal/integrations/events"
	"github.com/m04kA/SMC-RoomBooking/internal/integrations/memberservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingsFilter, now time.Time) ([]*domain.Booking, error)
	Count(ctx context.Context, filter domain.BookingsFilter, now time.Time) (int, error)
	Cancel(ctx context.Context, id int64, reason string) error
}

// RoomRepository интерфейс репозитория комнат
type RoomRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
}

// MemberServiceClient интерфейс клиента справочника участников
type MemberServiceClient interface {
	GetMember(ctx context.Context, memberID int64) (*memberservice.Member, error)
}

// AvailabilityCache кэш доступности, сбрасывается после отмены
type AvailabilityCache interface {
	Invalidate(ctx context.Context, roomID int64, date time.Time) error
}

// EventPublisher публикует события бронирований
type EventPublisher interface {
	Publish(ctx context.Context, event events.BookingEvent) error
}

// MetricsCollector счетчики бронирований
type MetricsCollector interface {
	IncBookingCancelled()
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
