package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-RoomBooking/pkg/types"
)

// Request модель запроса на получение сетки слотов
type Request struct {
	RoomID int64     // ID комнаты
	Date   time.Time // Дата (без времени)
}

// Response сетка из 48 слотов на дату
type Response struct {
	Date     time.Time
	RoomID   int64
	RoomOpen bool // закрытая комната показывает сетку, но не принимает бронирования
	Slots    []Slot
}

// Slot модель временного слота
type Slot struct {
	Start    types.TimeString // Время начала слота ("09:00")
	End      types.TimeString // Номинальное окончание ("09:30", для 23:30 - "00:00")
	IsBooked bool
	IsPast   bool // только для сегодняшней даты
}
