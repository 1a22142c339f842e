package create_booking

import (
	"time"

	"github.com/m04kA/SMC-RoomBooking/internal/domain"
	"github.com/m04kA/SMC-RoomBooking/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	MemberID     int64                // ID участника, который бронирует (из X-User-ID)
	RoomID       int64                // ID комнаты
	Date         time.Time            // Дата бронирования (без времени)
	TimeSlots    []string             // Начала выбранных слотов ("09:00", "09:30")
	Reason       string               // Цель встречи
	Participants []domain.Participant // Участники встречи (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID           int64
	RoomID       int64
	RoomName     string
	MemberID     int64
	BookingDate  time.Time
	StartTime    types.TimeString
	EndTime      types.TimeString // 00:00 - до конца дня
	Reason       string
	Status       string
	Participants []domain.Participant
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
