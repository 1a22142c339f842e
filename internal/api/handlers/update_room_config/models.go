package update_room_config

import (
	"github.com/m04kA/SMC-RoomBooking/internal/service/config/models"
)

// UpdateConfigRequest HTTP request model
type UpdateConfigRequest struct {
	AdvanceBookingDays *int `json:"advanceBookingDays"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса; roomID = nil для глобальных настроек
func (r *UpdateConfigRequest) ToServiceRequest(callerID int64, roomID *int64) *models.UpdateConfigRequest {
	return &models.UpdateConfigRequest{
		CallerID:           callerID,
		RoomID:             roomID,
		AdvanceBookingDays: r.AdvanceBookingDays,
	}
}
