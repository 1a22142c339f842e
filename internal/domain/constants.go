package domain

// Default configuration values
const (
	DefaultAdvanceBookingDays = 30 // 0 = unlimited
	DefaultPageSize           = 20
)

// Business validation constants
const (
	MinAdvanceBookingDays    = 0
	MaxAdvanceBookingDays    = 365 // 1 year
	MaxPageSize              = 100
	MaxReasonLength          = 500
	MaxCancelReasonLength    = 500
	MaxParticipants          = 100
	MaxParticipantNickLength = 255
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
