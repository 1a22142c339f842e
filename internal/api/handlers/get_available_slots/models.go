package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-RoomBooking/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-RoomBooking/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date     string          `json:"date"`
	RoomID   int64           `json:"roomId"`
	RoomOpen bool            `json:"roomOpen"`
	Slots    []AvailableSlot `json:"slots"`
}

// AvailableSlot модель временного слота
type AvailableSlot struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	IsBooked bool   `json:"isBooked"`
	IsPast   bool   `json:"isPast"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			Start:    slot.Start.String(),
			End:      slot.End.String(),
			IsBooked: slot.IsBooked,
			IsPast:   slot.IsPast,
		}
	}

	return &AvailableSlotsResponse{
		Date:     resp.Date.Format(domain.DateFormat),
		RoomID:   resp.RoomID,
		RoomOpen: resp.RoomOpen,
		Slots:    slots,
	}
}

// ToUseCaseRequest создает запрос use case из параметров
func ToUseCaseRequest(roomID int64, dateStr string) (*getAvailableSlots.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	return &getAvailableSlots.Request{
		RoomID: roomID,
		Date:   date,
	}, nil
}
