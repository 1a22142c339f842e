package domain

import "time"

// RoomBookingConfig represents the booking policy of a room
// Supports hierarchical configuration:
// 1. Room-specific (room_id)
// 2. Global (room_id IS NULL)
type RoomBookingConfig struct {
	ID                 int64
	RoomID             *int64 // NULL = config for all rooms
	AdvanceBookingDays int    // 0 = unlimited
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// DefaultRoomBookingConfig returns the built-in policy used when no row exists
func DefaultRoomBookingConfig() *RoomBookingConfig {
	return &RoomBookingConfig{AdvanceBookingDays: DefaultAdvanceBookingDays}
}

// IsGlobalConfig returns true if this is the global configuration
func (c *RoomBookingConfig) IsGlobalConfig() bool {
	return c.RoomID == nil
}

// HasAdvanceBookingLimit returns true if there's a limit on how far in advance bookings can be made
func (c *RoomBookingConfig) HasAdvanceBookingLimit() bool {
	return c.AdvanceBookingDays > 0
}
