package scheduling

import (
	"fmt"

	"github.com/m04kA/SMC-RoomBooking/pkg/types"
)

const (
	// SlotMinutes length of a slot
	SlotMinutes = 30

	// SlotsPerDay number of slots in the grid
	SlotsPerDay = types.MinutesPerDay / SlotMinutes
)

var grid = buildGrid()

func buildGrid() [SlotsPerDay]types.TimeString {
	var g [SlotsPerDay]types.TimeString
	for i := range g {
		g[i] = types.FromMinutes(i * SlotMinutes)
	}
	return g
}

// Grid returns the ordered slot starts of a day: 00:00, 00:30, ..., 23:30.
// The result is a fresh slice and may be modified by the caller.
func Grid() []types.TimeString {
	out := make([]types.TimeString, SlotsPerDay)
	copy(out, grid[:])
	return out
}

// NominalEnd returns start + 30 minutes, rolling 23:30 over to 00:00
func NominalEnd(start types.TimeString) (types.TimeString, error) {
	if _, err := slotIndex(start); err != nil {
		return "", err
	}
	return start.AddMinutes(SlotMinutes)
}

// slotIndex returns the position of a slot start in the grid
func slotIndex(start types.TimeString) (int, error) {
	minutes, err := start.Minutes()
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidSlot, start, err)
	}
	if minutes%SlotMinutes != 0 {
		return 0, fmt.Errorf("%w: %q is not on a half-hour boundary", ErrInvalidSlot, start)
	}
	return minutes / SlotMinutes, nil
}

// IsSlotStart returns true if s is one of the grid slot starts
func IsSlotStart(s types.TimeString) bool {
	_, err := slotIndex(s)
	return err == nil
}

// OccupiedSlots returns the grid slots covered by [start, end) of a booking, end 00:00 meaning 24:00
func OccupiedSlots(start, end types.TimeString) ([]types.TimeString, error) {
	from, err := slotIndex(start)
	if err != nil {
		return nil, err
	}
	to, err := slotIndex(end)
	if err != nil {
		return nil, err
	}
	if to == 0 {
		to = SlotsPerDay
	}
	if to <= from {
		return nil, fmt.Errorf("%w: end %s is not after start %s", ErrInvalidSlot, end, start)
	}

	out := make([]types.TimeString, 0, to-from)
	out = append(out, grid[from:to]...)
	return out, nil
}
