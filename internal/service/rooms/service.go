package rooms

import (
	"context"
	"errors"
	"fmt"

	roomRepo "github.com/m04kA/SMC-RoomBooking/internal/infra/storage/room"
	"github.com/m04kA/SMC-RoomBooking/internal/service/rooms/models"
)

// Service сервис для работы с комнатами
type Service struct {
	roomRepo     RoomRepository
	memberClient MemberServiceClient
	logger       Logger
}

// NewService создает новый экземпляр сервиса комнат
func NewService(roomRepo RoomRepository, memberClient MemberServiceClient, logger Logger) *Service {
	return &Service{
		roomRepo:     roomRepo,
		memberClient: memberClient,
		logger:       logger,
	}
}

// GetByID получает комнату по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.RoomResponse, error) {
	room, err := s.roomRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, roomRepo.ErrRoomNotFound) {
			s.logger.Warn("GetByID: room id=%d not found", id)
			return nil, ErrRoomNotFound
		}
		s.logger.Error("GetByID: repository error for room id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainRoom(room), nil
}

// List получает список комнат; openOnly - только открытые для бронирования
func (s *Service) List(ctx context.Context, openOnly bool) (*models.RoomListResponse, error) {
	rooms, err := s.roomRepo.List(ctx, openOnly)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d rooms (openOnly=%t)", len(rooms), openOnly)
	return models.FromDomainRoomList(rooms), nil
}

// Toggle открывает или закрывает комнату. Доступно только администраторам.
// Существующие бронирования закрытой комнаты сохраняются.
func (s *Service) Toggle(ctx context.Context, req *models.ToggleRoomRequest) (*models.RoomResponse, error) {
	s.logger.Info("Toggle: room=%d by member=%d", req.RoomID, req.CallerID)

	member, err := s.memberClient.GetMember(ctx, req.CallerID)
	if err != nil || !(member.IsAdmin || member.IsRoomAdmin) {
		s.logger.Warn("Toggle: access denied for member=%d: %v", req.CallerID, err)
		return nil, ErrAccessDenied
	}

	isOpen := req.IsOpen
	if isOpen == nil {
		current, err := s.roomRepo.GetByID(ctx, req.RoomID)
		if err != nil {
			return nil, s.mapRepoError("Toggle", req.RoomID, err)
		}
		next := !current.IsOpen
		isOpen = &next
	}

	room, err := s.roomRepo.SetOpen(ctx, req.RoomID, *isOpen)
	if err != nil {
		return nil, s.mapRepoError("Toggle", req.RoomID, err)
	}

	s.logger.Info("Toggle: room id=%d is now open=%t", room.ID, room.IsOpen)
	return models.FromDomainRoom(room), nil
}

func (s *Service) mapRepoError(op string, roomID int64, err error) error {
	if errors.Is(err, roomRepo.ErrRoomNotFound) {
		s.logger.Warn("%s: room id=%d not found", op, roomID)
		return ErrRoomNotFound
	}
	s.logger.Error("%s: repository error for room id=%d: %v", op, roomID, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}
