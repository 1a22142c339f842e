package scheduling

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/m04kA/SMC-RoomBooking/internal/domain"
	"github.com/m04kA/SMC-RoomBooking/pkg/types"
)

// Selection is a booking request as seen by the validator
type Selection struct {
	RoomID       int64
	MemberID     int64
	Date         time.Time
	Slots        []string
	Reason       string
	Participants []domain.Participant
}

// Policy booking limits of a room
type Policy struct {
	// AdvanceBookingDays how many days ahead of today a booking may be made; 0 = unlimited
	AdvanceBookingDays int
}

// PolicyFromConfig converts a stored room configuration into a Policy
func PolicyFromConfig(cfg *domain.RoomBookingConfig) Policy {
	if cfg == nil {
		return Policy{AdvanceBookingDays: domain.DefaultAdvanceBookingDays}
	}
	return Policy{AdvanceBookingDays: cfg.AdvanceBookingDays}
}

// BuildBooking validates sel against the room, the active bookings of (room, date) and now,
// and returns the normalized active booking.
//
// Checks run in order: empty selection, slot format, contiguity, date in past,
// advance horizon, overlap with existing bookings, room open.
func BuildBooking(room *domain.Room, sel Selection, existing []*domain.Booking, now time.Time, policy Policy) (*domain.Booking, error) {
	if len(sel.Slots) == 0 {
		return nil, ErrEmptySelection
	}

	slots, err := ParseSlots(sel.Slots)
	if err != nil {
		return nil, err
	}

	if !AreConsecutive(slots) {
		return nil, fmt.Errorf("%w: %v", ErrNonContiguousSlots, sel.Slots)
	}

	if err := checkDate(sel.Date, slots, now, policy); err != nil {
		return nil, err
	}

	first := slots[0]
	end, err := NominalEnd(slots[len(slots)-1])
	if err != nil {
		return nil, err
	}

	if conflict := findConflict(slots, existing); conflict != "" {
		return nil, &SlotConflictError{RoomID: sel.RoomID, Date: sel.Date, Slot: conflict}
	}

	if room != nil && !room.IsOpen {
		return nil, ErrRoomClosed
	}

	participants := make([]domain.Participant, len(sel.Participants))
	copy(participants, sel.Participants)

	return &domain.Booking{
		RoomID:       sel.RoomID,
		MemberID:     sel.MemberID,
		BookingDate:  DateOnly(sel.Date, now.Location()),
		StartTime:    first,
		EndTime:      end,
		Reason:       sel.Reason,
		Status:       domain.StatusActive,
		Participants: participants,
	}, nil
}

// ParseSlots parses raw slot starts and returns them sorted
func ParseSlots(raw []string) ([]types.TimeString, error) {
	slots := make([]types.TimeString, 0, len(raw))
	for _, s := range raw {
		// 24:00 конец суток, а не начало слота
		if strings.HasPrefix(strings.TrimSpace(s), "24:") {
			return nil, fmt.Errorf("%w: %q is not a slot start", ErrInvalidSlot, s)
		}
		ts, err := types.NewTimeStringFromString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSlot, s)
		}
		if !IsSlotStart(ts) {
			return nil, fmt.Errorf("%w: %q is not on a half-hour boundary", ErrInvalidSlot, s)
		}
		slots = append(slots, ts)
	}

	sortSlots(slots)
	return slots, nil
}

// AreConsecutive reports whether the slots, once sorted, chain without gaps:
// the nominal end of each slot equals the start of the next. Duplicates break the chain.
func AreConsecutive(slots []types.TimeString) bool {
	if len(slots) == 0 {
		return false
	}

	sorted := make([]types.TimeString, len(slots))
	copy(sorted, slots)
	sortSlots(sorted)

	for i := 0; i < len(sorted)-1; i++ {
		end, err := NominalEnd(sorted[i])
		if err != nil || end != sorted[i+1] {
			return false
		}
	}

	return IsSlotStart(sorted[len(sorted)-1])
}

func sortSlots(slots []types.TimeString) {
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].IsBefore(slots[j])
	})
}

// checkDate rejects dates before today, started slots of today and dates beyond the horizon
func checkDate(date time.Time, slots []types.TimeString, now time.Time, policy Policy) error {
	loc := now.Location()
	today := DateOnly(now, loc)
	day := DateOnly(date, loc)

	if day.Before(today) {
		return fmt.Errorf("%w: %s", ErrDateInPast, day.Format(domain.DateFormat))
	}

	if day.Equal(today) {
		nowSeconds := secondsOfDay(now)
		for _, s := range slots {
			minutes, _ := s.Minutes()
			if minutes*60 <= nowSeconds {
				return fmt.Errorf("%w: slot %s has already started", ErrDateInPast, s)
			}
		}
	}

	if policy.AdvanceBookingDays > 0 {
		limit := today.AddDate(0, 0, policy.AdvanceBookingDays)
		if day.After(limit) {
			return fmt.Errorf("%w: can only book %d days in advance", ErrDateOutOfRange, policy.AdvanceBookingDays)
		}
	}

	return nil
}

// findConflict returns the first selected slot overlapping an active booking, or ""
func findConflict(slots []types.TimeString, existing []*domain.Booking) types.TimeString {
	for _, s := range slots {
		start, _ := s.Minutes()
		for _, b := range existing {
			if b == nil || !b.IsActive() {
				continue
			}
			bStart, bEnd, err := bookingRange(b)
			if err != nil {
				continue
			}
			if overlaps(start, start+SlotMinutes, bStart, bEnd) {
				return s
			}
		}
	}
	return ""
}
