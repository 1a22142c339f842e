package config

import (
	"context"

	"github.com/m04kA/SMC-RoomBooking/internal/domain"
	"github.com/m04kA/SMC-RoomBooking/internal/integrations/memberservice"
)

// ConfigRepository интерфейс репозитория настроек бронирования
type ConfigRepository interface {
	GetConfigWithHierarchy(ctx context.Context, roomID int64) (*domain.RoomBookingConfig, error)
	Upsert(ctx context.Context, config *domain.RoomBookingConfig) (*domain.RoomBookingConfig, error)
}

// RoomRepository интерфейс репозитория комнат
type RoomRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
}

// MemberServiceClient интерфейс клиента справочника участников
type MemberServiceClient interface {
	GetMember(ctx context.Context, memberID int64) (*memberservice.Member, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
