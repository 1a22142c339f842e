package cancel_booking

import (
	"github.com/m04kA/SMC-RoomBooking/internal/service/bookings/models"
)

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	CancelReason string `json:"cancelReason"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CancelBookingRequest) ToServiceRequest(callerID int64) *models.CancelBookingRequest {
	return &models.CancelBookingRequest{
		CallerID:     callerID,
		CancelReason: r.CancelReason,
	}
}
