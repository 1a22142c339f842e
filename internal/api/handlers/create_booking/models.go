package create_booking

import (
	"time"

	"github.com/m04kA/SMC-RoomBooking/internal/domain"
	createBooking "github.com/m04kA/SMC-RoomBooking/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	RoomID       int64         `json:"roomId"`
	Date         string        `json:"date"`      // "2025-10-15"
	TimeSlots    []string      `json:"timeSlots"` // ["10:00", "10:30"]
	Reason       string        `json:"reason"`
	Participants []Participant `json:"participants,omitempty"`
}

// Participant участник встречи
type Participant struct {
	UserID   int64  `json:"userId"`
	Nickname string `json:"nickname"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID           int64         `json:"id"`
	RoomID       int64         `json:"roomId"`
	RoomName     string        `json:"roomName"`
	MemberID     int64         `json:"memberId"`
	BookingDate  string        `json:"bookingDate"`
	StartTime    string        `json:"startTime"`
	EndTime      string        `json:"endTime"`
	Reason       string        `json:"reason"`
	Status       string        `json:"status"`
	Participants []Participant `json:"participants"`
	CreatedAt    string        `json:"createdAt"`
	UpdatedAt    string        `json:"updatedAt"`
}

// ConflictResponse ответ 409: клиент должен перезапросить сетку комнаты на дату
type ConflictResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	RoomID  int64  `json:"roomId"`
	Date    string `json:"date"`
	Slot    string `json:"slot,omitempty"`
	Refetch bool   `json:"refetch"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(memberID int64) (*createBooking.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	participants := make([]domain.Participant, len(r.Participants))
	for i, p := range r.Participants {
		participants[i] = domain.Participant{UserID: p.UserID, Nickname: p.Nickname}
	}

	return &createBooking.Request{
		MemberID:     memberID,
		RoomID:       r.RoomID,
		Date:         date,
		TimeSlots:    r.TimeSlots,
		Reason:       r.Reason,
		Participants: participants,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	participants := make([]Participant, len(resp.Participants))
	for i, p := range resp.Participants {
		participants[i] = Participant{UserID: p.UserID, Nickname: p.Nickname}
	}

	return &BookingResponse{
		ID:           resp.ID,
		RoomID:       resp.RoomID,
		RoomName:     resp.RoomName,
		MemberID:     resp.MemberID,
		BookingDate:  resp.BookingDate.Format(domain.DateFormat),
		StartTime:    resp.StartTime.String(),
		EndTime:      resp.EndTime.String(),
		Reason:       resp.Reason,
		Status:       resp.Status,
		Participants: participants,
		CreatedAt:    resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    resp.UpdatedAt.Format(time.RFC3339),
	}
}
