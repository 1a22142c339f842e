package scheduling

import (
	"time"

	"github.com/m04kA/SMC-RoomBooking/internal/domain"
	"github.com/m04kA/SMC-RoomBooking/pkg/types"
)

// BookedFlags marks every grid slot covered by an active booking.
// Index i corresponds to Grid()[i]. Bookings with unreadable times are skipped.
func BookedFlags(bookings []*domain.Booking) []bool {
	flags := make([]bool, SlotsPerDay)

	for _, b := range bookings {
		if b == nil || !b.IsActive() {
			continue
		}

		start, end, err := bookingRange(b)
		if err != nil {
			continue
		}

		for i := start / SlotMinutes; i < SlotsPerDay; i++ {
			if i*SlotMinutes >= end {
				break
			}
			flags[i] = true
		}
	}

	return flags
}

// Annotate builds the grid for date from precomputed booked flags.
// is_past is evaluated against now and set only when date is today in now's location.
// A flags slice of the wrong length is treated as "nothing booked".
func Annotate(date time.Time, booked []bool, now time.Time) []domain.Slot {
	if len(booked) != SlotsPerDay {
		booked = make([]bool, SlotsPerDay)
	}

	today := IsToday(date, now)
	nowSeconds := secondsOfDay(now)

	slots := make([]domain.Slot, SlotsPerDay)
	for i, start := range grid {
		slots[i] = domain.Slot{
			Start:    start,
			End:      types.FromMinutes((i + 1) * SlotMinutes),
			IsBooked: booked[i],
			IsPast:   today && i*SlotMinutes*60 <= nowSeconds,
		}
	}

	return slots
}

// Resolve returns the availability grid for date given the active bookings of the room on that date
func Resolve(date time.Time, bookings []*domain.Booking, now time.Time) []domain.Slot {
	return Annotate(date, BookedFlags(bookings), now)
}

// bookingRange returns [start, end) of a booking in minutes from midnight; end 00:00 is 24:00
func bookingRange(b *domain.Booking) (int, int, error) {
	start, err := b.StartTime.Minutes()
	if err != nil {
		return 0, 0, err
	}
	end, err := b.EndTime.Minutes()
	if err != nil {
		return 0, 0, err
	}
	if end == 0 {
		end = types.MinutesPerDay
	}
	return start, end, nil
}

// overlaps reports whether the half-open ranges [aStart, aEnd) and [bStart, bEnd) intersect
func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// IsToday reports whether the calendar date of date equals now's date in now's location
func IsToday(date, now time.Time) bool {
	y1, m1, d1 := date.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// DateOnly returns midnight of date's calendar day in loc
func DateOnly(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func secondsOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}
