package models

import (
	"time"

	"github.com/m04kA/SMC-RoomBooking/internal/domain"
)

// ToggleRoomRequest запрос на открытие/закрытие комнаты
type ToggleRoomRequest struct {
	CallerID int64 `json:"-"`
	RoomID   int64 `json:"-"`
	IsOpen   *bool `json:"isOpen,omitempty"` // nil - переключить текущее состояние
}

// RoomResponse ответ с данными комнаты
type RoomResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Capacity    int       `json:"capacity"`
	IsOpen      bool      `json:"isOpen"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// RoomListResponse ответ со списком комнат
type RoomListResponse struct {
	Rooms []RoomResponse `json:"rooms"`
}

// FromDomainRoom конвертирует domain модель в DTO
func FromDomainRoom(r *domain.Room) *RoomResponse {
	if r == nil {
		return nil
	}

	return &RoomResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Capacity:    r.Capacity,
		IsOpen:      r.IsOpen,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// FromDomainRoomList конвертирует список domain моделей в DTO
func FromDomainRoomList(rooms []*domain.Room) *RoomListResponse {
	resp := &RoomListResponse{Rooms: make([]RoomResponse, 0, len(rooms))}
	for _, r := range rooms {
		if room := FromDomainRoom(r); room != nil {
			resp.Rooms = append(resp.Rooms, *room)
		}
	}
	return resp
}
