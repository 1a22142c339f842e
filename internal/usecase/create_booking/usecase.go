package create_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-RoomBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-RoomBooking/internal/infra/storage/booking"
	configRepo "github.com/m04kA/SMC-RoomBooking/internal/infra/storage/config"
	roomRepo "github.com/m04kA/SMC-RoomBooking/internal/infra/storage/room"
	"github.com/m04kA/SMC-RoomBooking/internal/integrations/events"
	memberClient "github.com/m04kA/SMC-RoomBooking/internal/integrations/memberservice"
	"github.com/m04kA/SMC-RoomBooking/internal/scheduling"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	roomRepo     RoomRepository
	configRepo   ConfigRepository
	memberClient MemberServiceClient
	cache        AvailabilityCache
	publisher    EventPublisher
	metrics      MetricsCollector
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	roomRepo RoomRepository,
	configRepo ConfigRepository,
	memberClient MemberServiceClient,
	cache AvailabilityCache,
	publisher EventPublisher,
	metrics MetricsCollector,
	txManager TransactionManager,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		roomRepo:     roomRepo,
		configRepo:   configRepo,
		memberClient: memberClient,
		cache:        cache,
		publisher:    publisher,
		metrics:      metrics,
		txManager:    txManager,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования.
// Проверка и запись выполняются в сериализуемой транзакции; гонку за слот решает
// уникальный индекс booking_slots, проигравший получает *scheduling.SlotConflictError.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: member=%d, room=%d, date=%s, slots=%v",
		req.MemberID, req.RoomID, req.Date.Format(domain.DateFormat), req.TimeSlots)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверяем участника в справочнике
	if err := uc.checkMember(ctx, req.MemberID); err != nil {
		return nil, err
	}

	// 3. Получаем текущее время
	now := uc.timeProvider.Now()

	var (
		result *domain.Booking
		room   *domain.Room
	)

	// 4. Выполняем операции с БД в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 4.1. Получаем комнату
		var err error
		room, err = uc.roomRepo.GetByID(txCtx, req.RoomID)
		if err != nil {
			if errors.Is(err, roomRepo.ErrRoomNotFound) {
				uc.logger.Warn("CreateBooking: room id=%d not found", req.RoomID)
				return ErrRoomNotFound
			}
			return fmt.Errorf("%w: failed to get room: %v", ErrInternal, err)
		}

		// 4.2. Получаем настройки бронирования с учетом иерархии
		config, err := uc.configRepo.GetConfigWithHierarchy(txCtx, req.RoomID)
		if err != nil && !errors.Is(err, configRepo.ErrConfigNotFound) {
			return fmt.Errorf("%w: failed to get config: %v", ErrInternal, err)
		}
		if config == nil {
			uc.logger.Info("CreateBooking: using default config for room=%d", req.RoomID)
		}

		// 4.3. Активные бронирования на эту дату с блокировкой (FOR UPDATE)
		existing, err := uc.bookingRepo.ListActive(txCtx, req.RoomID, req.Date)
		if err != nil {
			if bookingRepo.IsConflict(err) {
				return err
			}
			return fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
		}

		// 4.4. Проверяем выбор слотов и собираем бронирование
		booking, err := scheduling.BuildBooking(room, scheduling.Selection{
			RoomID:       req.RoomID,
			MemberID:     req.MemberID,
			Date:         req.Date,
			Slots:        req.TimeSlots,
			Reason:       strings.TrimSpace(req.Reason),
			Participants: req.Participants,
		}, existing, now, scheduling.PolicyFromConfig(config))
		if err != nil {
			return err
		}

		// 4.5. Сохраняем бронирование вместе со слотами и участниками
		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			if bookingRepo.IsConflict(err) {
				return err
			}
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, uc.mapTxError(req, err)
	}

	uc.metrics.IncBookingCreated()
	uc.logger.Info("CreateBooking: successfully created booking id=%d (%s %s-%s)",
		result.ID, result.BookingDate.Format(domain.DateFormat), result.StartTime, result.EndTime)

	// 5. Сбрасываем кэш доступности и уведомляем
	if err := uc.cache.Invalidate(ctx, result.RoomID, result.BookingDate); err != nil {
		uc.logger.Warn("CreateBooking: failed to invalidate availability cache for room=%d: %v", result.RoomID, err)
	}

	event := events.NewBookingEvent(uuid.NewString(), events.TypeBookingCreated, result, room.Name, now)
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Warn("CreateBooking: failed to publish event for booking id=%d: %v", result.ID, err)
	}

	return toResponse(result, room), nil
}

// checkMember проверяет участника; недоступность справочника не блокирует бронирование
func (uc *UseCase) checkMember(ctx context.Context, memberID int64) error {
	_, err := uc.memberClient.GetMemberWithGracefulDegradation(ctx, memberID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, memberClient.ErrMemberNotFound):
		uc.logger.Warn("CreateBooking: member id=%d not found", memberID)
		return ErrMemberNotFound
	case errors.Is(err, memberClient.ErrServiceDegraded):
		uc.logger.Warn("CreateBooking: member check skipped: %v", err)
		return nil
	default:
		uc.logger.Error("CreateBooking: failed to get member id=%d: %v", memberID, err)
		return fmt.Errorf("%w: failed to get member: %v", ErrInternal, err)
	}
}

// mapTxError приводит ошибку транзакции к ошибкам use case.
// Конфликт в хранилище (в том числе при коммите) становится SlotConflictError.
func (uc *UseCase) mapTxError(req *Request, err error) error {
	switch {
	case errors.Is(err, scheduling.ErrSlotConflict):
		uc.metrics.IncBookingConflict("validation")
		uc.logger.Warn("CreateBooking: %v", err)
		return err
	case bookingRepo.IsConflict(err):
		uc.metrics.IncBookingConflict("store")
		uc.logger.Warn("CreateBooking: lost race for room=%d date=%s: %v",
			req.RoomID, req.Date.Format(domain.DateFormat), err)
		return &scheduling.SlotConflictError{
			RoomID: req.RoomID,
			Date:   scheduling.DateOnly(req.Date, uc.timeProvider.Now().Location()),
		}
	case errors.Is(err, ErrInternal):
		uc.logger.Error("CreateBooking: %v", err)
		return err
	case errors.Is(err, ErrRoomNotFound):
		return err
	}

	if isEngineError(err) {
		uc.logger.Warn("CreateBooking: booking rejected: %v", err)
		return err
	}

	uc.logger.Error("CreateBooking: transaction failed: %v", err)
	return fmt.Errorf("%w: transaction failed: %v", ErrInternal, err)
}

func isEngineError(err error) bool {
	for _, target := range []error{
		scheduling.ErrEmptySelection,
		scheduling.ErrInvalidSlot,
		scheduling.ErrNonContiguousSlots,
		scheduling.ErrDateInPast,
		scheduling.ErrDateOutOfRange,
		scheduling.ErrRoomClosed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func toResponse(b *domain.Booking, room *domain.Room) *Response {
	return &Response{
		ID:           b.ID,
		RoomID:       b.RoomID,
		RoomName:     room.Name,
		MemberID:     b.MemberID,
		BookingDate:  b.BookingDate,
		StartTime:    b.StartTime,
		EndTime:      b.EndTime,
		Reason:       b.Reason,
		Status:       string(b.Status),
		Participants: b.Participants,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}
