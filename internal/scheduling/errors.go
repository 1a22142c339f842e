package scheduling

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-RoomBooking/pkg/types"
)

var (
	// ErrEmptySelection no slots were selected
	ErrEmptySelection = errors.New("scheduling: no slots selected")

	// ErrInvalidSlot a selected value is not a half-hour slot start
	ErrInvalidSlot = errors.New("scheduling: invalid slot")

	// ErrNonContiguousSlots the selection does not form one unbroken block
	ErrNonContiguousSlots = errors.New("scheduling: slots are not contiguous")

	// ErrDateInPast the date or one of the slots has already started
	ErrDateInPast = errors.New("scheduling: date is in the past")

	// ErrDateOutOfRange the date is beyond the advance booking horizon
	ErrDateOutOfRange = errors.New("scheduling: date is out of booking range")

	// ErrSlotConflict one of the slots is already booked
	ErrSlotConflict = errors.New("scheduling: slot is already booked")

	// ErrRoomClosed the room accepts no new bookings
	ErrRoomClosed = errors.New("scheduling: room is closed")
)

// SlotConflictError carries the room and date the client has to refetch
type SlotConflictError struct {
	RoomID int64
	Date   time.Time
	Slot   types.TimeString // empty when the store does not report the slot
}

func (e *SlotConflictError) Error() string {
	if e.Slot.IsZero() {
		return fmt.Sprintf("%v: room=%d date=%s", ErrSlotConflict, e.RoomID, e.Date.Format("2006-01-02"))
	}
	return fmt.Sprintf("%v: room=%d date=%s slot=%s", ErrSlotConflict, e.RoomID, e.Date.Format("2006-01-02"), e.Slot)
}

// Is makes errors.Is(err, ErrSlotConflict) hold
func (e *SlotConflictError) Is(target error) bool {
	return target == ErrSlotConflict
}
