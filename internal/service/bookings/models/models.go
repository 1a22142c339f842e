package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-RoomBooking/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")

	// ErrInvalidSort возвращается при некорректной сортировке
	ErrInvalidSort = errors.New("invalid sort parameters")

	// ErrInvalidPeriod возвращается, когда начало периода позже конца
	ErrInvalidPeriod = errors.New("invalid date period")
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	CallerID     int64  `json:"-"`
	CancelReason string `json:"cancelReason"`
}

// ListBookingsRequest запрос администратора на список бронирований
type ListBookingsRequest struct {
	CallerID  int64      `json:"-"`
	RoomID    *int64     `json:"roomId,omitempty"`
	MemberID  *int64     `json:"memberId,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"` // Начало периода, включительно
	EndDate   *time.Time `json:"endDate,omitempty"`   // Конец периода, включительно
	Status    *string    `json:"status,omitempty"`    // active | expired | cancelled
	SortBy    *string    `json:"sortBy,omitempty"`    // date | room | member | created
	SortOrder *string    `json:"sortOrder,omitempty"` // asc | desc
	Page      int        `json:"page"`
	PageSize  int        `json:"pageSize"`
}

// GetMemberBookingsRequest запрос на бронирования участника
type GetMemberBookingsRequest struct {
	CallerID int64   `json:"-"`
	MemberID int64   `json:"memberId"`
	Status   *string `json:"status,omitempty"`
	Page     int     `json:"page"`
	PageSize int     `json:"pageSize"`
}

// ToDomainFilter конвертирует request в domain фильтр с пагинацией
func (r *ListBookingsRequest) ToDomainFilter() (domain.BookingsFilter, error) {
	page, pageSize := NormalizePage(r.Page, r.PageSize)

	filter := domain.BookingsFilter{
		RoomID:    r.RoomID,
		MemberID:  r.MemberID,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		SortBy:    domain.SortByDate,
		Limit:     pageSize,
		Offset:    (page - 1) * pageSize,
	}

	if r.StartDate != nil && r.EndDate != nil && r.StartDate.After(*r.EndDate) {
		return filter, ErrInvalidPeriod
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	if r.SortBy != nil {
		sortBy := domain.SortField(*r.SortBy)
		switch sortBy {
		case domain.SortByDate, domain.SortByRoom, domain.SortByMember, domain.SortByCreated:
			filter.SortBy = sortBy
		default:
			return filter, fmt.Errorf("%w: sortBy=%s", ErrInvalidSort, *r.SortBy)
		}
	}

	if r.SortOrder != nil {
		switch *r.SortOrder {
		case "asc":
		case "desc":
			filter.SortDesc = true
		default:
			return filter, fmt.Errorf("%w: sortOrder=%s", ErrInvalidSort, *r.SortOrder)
		}
	}

	return filter, nil
}

// ToDomainFilter конвертирует request в domain фильтр; новые бронирования первыми
func (r *GetMemberBookingsRequest) ToDomainFilter() (domain.BookingsFilter, error) {
	page, pageSize := NormalizePage(r.Page, r.PageSize)

	memberID := r.MemberID
	filter := domain.BookingsFilter{
		MemberID: &memberID,
		SortBy:   domain.SortByDate,
		SortDesc: true,
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// NormalizePage приводит номер и размер страницы к допустимым значениям
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}
	if pageSize > domain.MaxPageSize {
		pageSize = domain.MaxPageSize
	}
	return page, pageSize
}

// Response модели

// ParticipantResponse участник встречи
type ParticipantResponse struct {
	UserID   int64  `json:"userId"`
	Nickname string `json:"nickname"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID           int64                 `json:"id"`
	RoomID       int64                 `json:"roomId"`
	MemberID     int64                 `json:"memberId"`
	BookingDate  string                `json:"bookingDate"` // "2025-10-15"
	StartTime    string                `json:"startTime"`   // "10:00"
	EndTime      string                `json:"endTime"`     // "11:00", "00:00" - до конца дня
	Reason       string                `json:"reason"`
	Status       string                `json:"status"` // active | expired | cancelled
	Expired      bool                  `json:"expired"`
	Participants []ParticipantResponse `json:"participants"`

	CancelReason *string `json:"cancelReason,omitempty"`
	CancelledAt  *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со страницей бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO.
// status - эффективный статус с учетом истечения.
func FromDomainBooking(b *domain.Booking, status domain.BookingStatus) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:           b.ID,
		RoomID:       b.RoomID,
		MemberID:     b.MemberID,
		BookingDate:  b.BookingDate.Format(domain.DateFormat),
		StartTime:    b.StartTime.String(),
		EndTime:      b.EndTime.String(),
		Reason:       b.Reason,
		Status:       string(status),
		Expired:      status == domain.StatusExpired,
		Participants: make([]ParticipantResponse, 0, len(b.Participants)),
		CancelReason: b.CancelReason,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}

	for _, p := range b.Participants {
		resp.Participants = append(resp.Participants, ParticipantResponse{UserID: p.UserID, Nickname: p.Nickname})
	}

	// Конвертируем CancelledAt в строку ISO 8601
	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)
	if !s.IsValidFilter() {
		return "", fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	return s, nil
}
