package toggle_room

import (
	"github.com/m04kA/SMC-RoomBooking/internal/service/rooms/models"
)

// ToggleRoomRequest HTTP request model; без isOpen состояние переключается
type ToggleRoomRequest struct {
	IsOpen *bool `json:"isOpen,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *ToggleRoomRequest) ToServiceRequest(callerID, roomID int64) *models.ToggleRoomRequest {
	return &models.ToggleRoomRequest{
		CallerID: callerID,
		RoomID:   roomID,
		IsOpen:   r.IsOpen,
	}
}
