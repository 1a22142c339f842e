package domain

import (
	"time"

	"github.com/m04kA/SMC-RoomBooking/pkg/types"
)

// Slot represents one half-hour cell of the availability grid
type Slot struct {
	Start    types.TimeString
	End      types.TimeString // nominal end, 23:30 -> 00:00
	IsBooked bool
	IsPast   bool // only ever true for today's grid
}

// IsSelectable returns true if the slot can be offered to a client
func (s *Slot) IsSelectable() bool {
	return !s.IsBooked && !s.IsPast
}

// DayAvailability is the availability grid of a room for a date
type DayAvailability struct {
	RoomID   int64
	Date     time.Time
	RoomOpen bool
	Slots    []Slot
}
