package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-RoomBooking/internal/domain"
	configRepo "github.com/m04kA/SMC-RoomBooking/internal/infra/storage/config"
	roomRepo "github.com/m04kA/SMC-RoomBooking/internal/infra/storage/room"
	"github.com/m04kA/SMC-RoomBooking/internal/service/config/models"
)

// Service сервис для работы с настройками бронирования
type Service struct {
	configRepo   ConfigRepository
	roomRepo     RoomRepository
	memberClient MemberServiceClient
	logger       Logger
}

// NewService создает новый экземпляр сервиса настроек
func NewService(
	configRepo ConfigRepository,
	roomRepo RoomRepository,
	memberClient MemberServiceClient,
	logger Logger,
) *Service {
	return &Service{
		configRepo:   configRepo,
		roomRepo:     roomRepo,
		memberClient: memberClient,
		logger:       logger,
	}
}

// GetEffective получает действующие настройки комнаты с учетом иерархии.
// Публичный метод. Приоритет: room > global > встроенные значения.
func (s *Service) GetEffective(ctx context.Context, roomID int64) (*models.ConfigResponse, error) {
	s.logger.Info("GetEffective: fetching config for room=%d", roomID)

	if err := s.ensureRoom(ctx, "GetEffective", roomID); err != nil {
		return nil, err
	}

	config, err := s.configRepo.GetConfigWithHierarchy(ctx, roomID)
	if err != nil {
		if errors.Is(err, configRepo.ErrConfigNotFound) {
			s.logger.Info("GetEffective: no config rows, using defaults for room=%d", roomID)
			return models.FromDomainConfig(domain.DefaultRoomBookingConfig(), models.LevelDefault), nil
		}
		s.logger.Error("GetEffective: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetEffective - repository error: %v", ErrInternal, err)
	}

	level := models.LevelRoom
	if config.IsGlobalConfig() {
		level = models.LevelGlobal
	}

	s.logger.Info("GetEffective: fetched config id=%d (level: %s)", config.ID, level)
	return models.FromDomainConfig(config, level), nil
}

// Update создает или изменяет настройки комнаты (или глобальные при RoomID = nil).
// Доступно только администраторам.
func (s *Service) Update(ctx context.Context, req *models.UpdateConfigRequest) (*models.ConfigResponse, error) {
	s.logger.Info("Update: updating config for room=%v by member=%d", req.RoomID, req.CallerID)

	// 1. Валидируем входные данные
	if err := validateUpdate(req); err != nil {
		s.logger.Warn("Update: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверяем права доступа
	if !s.isAdmin(ctx, req.CallerID) {
		s.logger.Warn("Update: member=%d is not an admin", req.CallerID)
		return nil, ErrAccessDenied
	}

	// 3. Проверяем существование комнаты
	if req.RoomID != nil {
		if err := s.ensureRoom(ctx, "Update", *req.RoomID); err != nil {
			return nil, err
		}
	}

	// 4. Сохраняем
	saved, err := s.configRepo.Upsert(ctx, &domain.RoomBookingConfig{
		RoomID:             req.RoomID,
		AdvanceBookingDays: *req.AdvanceBookingDays,
	})
	if err != nil {
		s.logger.Error("Update: repository error: %v", err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	level := models.LevelRoom
	if saved.IsGlobalConfig() {
		level = models.LevelGlobal
	}

	s.logger.Info("Update: successfully saved config id=%d, advanceBookingDays=%d", saved.ID, saved.AdvanceBookingDays)
	return models.FromDomainConfig(saved, level), nil
}

func validateUpdate(req *models.UpdateConfigRequest) error {
	if req.RoomID != nil && *req.RoomID <= 0 {
		return fmt.Errorf("%w: roomID must be positive", ErrInvalidInput)
	}

	if req.AdvanceBookingDays == nil {
		return fmt.Errorf("%w: advanceBookingDays is required", ErrInvalidInput)
	}

	days := *req.AdvanceBookingDays
	if days < domain.MinAdvanceBookingDays || days > domain.MaxAdvanceBookingDays {
		return fmt.Errorf("%w: advanceBookingDays must be between %d and %d",
			ErrInvalidInput, domain.MinAdvanceBookingDays, domain.MaxAdvanceBookingDays)
	}

	return nil
}

func (s *Service) ensureRoom(ctx context.Context, op string, roomID int64) error {
	if _, err := s.roomRepo.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, roomRepo.ErrRoomNotFound) {
			s.logger.Warn("%s: room id=%d not found", op, roomID)
			return ErrRoomNotFound
		}
		s.logger.Error("%s: failed to get room id=%d: %v", op, roomID, err)
		return fmt.Errorf("%w: %s - failed to get room: %v", ErrInternal, op, err)
	}
	return nil
}

func (s *Service) isAdmin(ctx context.Context, memberID int64) bool {
	member, err := s.memberClient.GetMember(ctx, memberID)
	if err != nil {
		s.logger.Warn("isAdmin: failed to get member id=%d: %v", memberID, err)
		return false
	}
	return member.IsAdmin || member.IsRoomAdmin
}
