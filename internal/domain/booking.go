package domain

import (
	"time"

	"github.com/m04kA/SMC-RoomBooking/pkg/types"
)

// BookingStatus represents the stored status of a booking
type BookingStatus string

const (
	StatusActive    BookingStatus = "active"
	StatusCancelled BookingStatus = "cancelled"

	// StatusExpired is never stored: an active booking whose end is in the past is reported as expired
	StatusExpired BookingStatus = "expired"
)

// IsValid returns true for statuses that may be stored
func (s BookingStatus) IsValid() bool {
	return s == StatusActive || s == StatusCancelled
}

// IsValidFilter returns true for statuses a client may filter by
func (s BookingStatus) IsValidFilter() bool {
	return s.IsValid() || s == StatusExpired
}

// Participant is a meeting attendee attached to a booking
type Participant struct {
	UserID   int64
	Nickname string
}

// Booking represents a room reservation for a contiguous run of half-hour slots
type Booking struct {
	ID          int64
	RoomID      int64
	MemberID    int64
	BookingDate time.Time        // date only, midnight in the booking location
	StartTime   types.TimeString // HH:MM, first slot
	EndTime     types.TimeString // HH:MM, nominal end of the last slot; 00:00 means end of day
	Reason      string
	Status      BookingStatus

	Participants []Participant

	CancelReason *string
	CancelledAt  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking holds its slots
func (b *Booking) IsActive() bool {
	return b.Status == StatusActive
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// CanBeCancelled returns true if the booking can still be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusActive
}

// SortField поле сортировки списка бронирований
type SortField string

const (
	SortByDate    SortField = "date"
	SortByRoom    SortField = "room"
	SortByMember  SortField = "member"
	SortByCreated SortField = "created"
)

// BookingsFilter фильтр списка бронирований
type BookingsFilter struct {
	RoomID    *int64
	MemberID  *int64
	StartDate *time.Time     // включительно
	EndDate   *time.Time     // включительно
	Status    *BookingStatus // active/cancelled в БД; expired вычисляется на уровне сервиса
	SortBy    SortField      // по умолчанию date
	SortDesc  bool
	Limit     int // 0 - без ограничения
	Offset    int
}
