package models

import (
	"time"

	"github.com/m04kA/SMC-RoomBooking/internal/domain"
)

// Уровень, с которого взята настройка
const (
	LevelRoom    = "room"
	LevelGlobal  = "global"
	LevelDefault = "default"
)

// Request модели

// UpdateConfigRequest запрос на изменение настроек бронирования
type UpdateConfigRequest struct {
	CallerID           int64  `json:"-"`
	RoomID             *int64 `json:"-"` // nil - глобальная настройка для всех комнат
	AdvanceBookingDays *int   `json:"advanceBookingDays"`
}

// Response модели

// ConfigResponse действующие настройки бронирования
type ConfigResponse struct {
	ID                 int64      `json:"id,omitempty"`
	RoomID             *int64     `json:"roomId,omitempty"`
	AdvanceBookingDays int        `json:"advanceBookingDays"` // 0 = без ограничений
	Level              string     `json:"level"`              // room | global | default
	UpdatedAt          *time.Time `json:"updatedAt,omitempty"`
}

// FromDomainConfig конвертирует domain модель в DTO
func FromDomainConfig(c *domain.RoomBookingConfig, level string) *ConfigResponse {
	if c == nil {
		return nil
	}

	resp := &ConfigResponse{
		ID:                 c.ID,
		RoomID:             c.RoomID,
		AdvanceBookingDays: c.AdvanceBookingDays,
		Level:              level,
	}
	if !c.UpdatedAt.IsZero() {
		updatedAt := c.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}

	return resp
}
