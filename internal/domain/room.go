package domain

import "time"

// Room represents a meeting room
type Room struct {
	ID          int64
	Name        string
	Description string
	Capacity    int
	IsOpen      bool // closed rooms accept no new bookings
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
