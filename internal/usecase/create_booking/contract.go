package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-RoomBooking/internal/domain"
	"github.com/m04kA/SMC-RoomBooking/internal/integrations/events"
	"github.com/m04kA/SMC-RoomBooking/internal/integrations/memberservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	ListActive(ctx context.Context, roomID int64, date time.Time) ([]*domain.Booking, error)
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// RoomRepository интерфейс репозитория комнат
type RoomRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
}

// ConfigRepository интерфейс репозитория настроек бронирования
type ConfigRepository interface {
	GetConfigWithHierarchy(ctx context.Context, roomID int64) (*domain.RoomBookingConfig, error)
}

// MemberServiceClient интерфейс клиента справочника участников
type MemberServiceClient interface {
	GetMemberWithGracefulDegradation(ctx context.Context, memberID int64) (*memberservice.Member, error)
}

// AvailabilityCache кэш доступности, сбрасывается после создания бронирования
type AvailabilityCache interface {
	Invalidate(ctx context.Context, roomID int64, date time.Time) error
}

// EventPublisher публикует события бронирований
type EventPublisher interface {
	Publish(ctx context.Context, event events.BookingEvent) error
}

// MetricsCollector счетчики бронирований
type MetricsCollector interface {
	IncBookingCreated()
	IncBookingConflict(stage string)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
