package scheduling

import (
	"time"

	"github.com/m04kA/SMC-RoomBooking/internal/domain"
)

// NormalizedEnd returns the instant a booking ends, interpreting its date and end time in loc.
// An end of 00:00 means midnight after the booking date.
func NormalizedEnd(b *domain.Booking, loc *time.Location) (time.Time, error) {
	endMinutes, err := b.EndTime.Minutes()
	if err != nil {
		return time.Time{}, err
	}

	day := DateOnly(b.BookingDate, loc)
	if endMinutes == 0 {
		return day.AddDate(0, 0, 1), nil
	}
	return day.Add(time.Duration(endMinutes) * time.Minute), nil
}

// IsExpired reports whether an active booking has ended strictly before now.
// Cancelled bookings and bookings with unreadable times are never expired.
func IsExpired(b *domain.Booking, now time.Time) bool {
	if b == nil || !b.IsActive() {
		return false
	}

	end, err := NormalizedEnd(b, now.Location())
	if err != nil {
		return false
	}

	return end.Before(now)
}

// EffectiveStatus returns the status shown to clients: active bookings past their end are expired
func EffectiveStatus(b *domain.Booking, now time.Time) domain.BookingStatus {
	if IsExpired(b, now) {
		return domain.StatusExpired
	}
	return b.Status
}
