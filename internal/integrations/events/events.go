package events

import (
	"time"

	"github.com/m04kA/SMC-RoomBooking/internal/domain"
)

// EventType тип события бронирования
type EventType string

const (
	// TypeBookingCreated бронирование создано, внешний сервис рассылает напоминание участникам
	TypeBookingCreated EventType = "booking.created"

	// TypeBookingCancelled бронирование отменено
	TypeBookingCancelled EventType = "booking.cancelled"
)

// Participant участник в событии
type Participant struct {
	UserID   int64  `json:"userId"`
	Nickname string `json:"nickname"`
}

// BookingEvent событие бронирования для сервиса уведомлений
type BookingEvent struct {
	EventID      string        `json:"eventId"`
	Type         EventType     `json:"type"`
	OccurredAt   time.Time     `json:"occurredAt"`
	BookingID    int64         `json:"bookingId"`
	RoomID       int64         `json:"roomId"`
	RoomName     string        `json:"roomName,omitempty"`
	MemberID     int64         `json:"memberId"`
	Date         string        `json:"date"`
	StartTime    string        `json:"startTime"`
	EndTime      string        `json:"endTime"`
	Reason       string        `json:"reason"`
	CancelReason string        `json:"cancelReason,omitempty"`
	Participants []Participant `json:"participants"`
}

// NewBookingEvent собирает событие из бронирования
func NewBookingEvent(eventID string, eventType EventType, b *domain.Booking, roomName string, occurredAt time.Time) BookingEvent {
	participants := make([]Participant, 0, len(b.Participants))
	for _, p := range b.Participants {
		participants = append(participants, Participant{UserID: p.UserID, Nickname: p.Nickname})
	}

	event := BookingEvent{
		EventID:      eventID,
		Type:         eventType,
		OccurredAt:   occurredAt,
		BookingID:    b.ID,
		RoomID:       b.RoomID,
		RoomName:     roomName,
		MemberID:     b.MemberID,
		Date:         b.BookingDate.Format(domain.DateFormat),
		StartTime:    b.StartTime.String(),
		EndTime:      b.EndTime.String(),
		Reason:       b.Reason,
		Participants: participants,
	}
	if b.CancelReason != nil {
		event.CancelReason = *b.CancelReason
	}

	return event
}
