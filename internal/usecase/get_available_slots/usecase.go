package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-RoomBooking/internal/domain"
	"github.com/m04kA/SMC-RoomBooking/internal/infra/cache/availability"
	roomRepo "github.com/m04kA/SMC-RoomBooking/internal/infra/storage/room"
	"github.com/m04kA/SMC-RoomBooking/internal/scheduling"
)

// UseCase use case для получения сетки доступности комнаты на дату
type UseCase struct {
	bookingRepo  BookingRepository
	roomRepo     RoomRepository
	cache        AvailabilityCache
	metrics      MetricsCollector
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	roomRepo RoomRepository,
	cache AvailabilityCache,
	metrics MetricsCollector,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		roomRepo:     roomRepo,
		cache:        cache,
		metrics:      metrics,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Execute выполняет use case получения сетки слотов.
// Флаги занятости берутся из кэша, флаги is_past всегда вычисляются заново.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: room=%d, date=%s", req.RoomID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем комнату
	room, err := uc.roomRepo.GetByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, roomRepo.ErrRoomNotFound) {
			uc.logger.Warn("GetAvailableSlots: room id=%d not found", req.RoomID)
			return nil, ErrRoomNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get room id=%d: %v", req.RoomID, err)
		return nil, fmt.Errorf("%w: failed to get room: %v", ErrInternal, err)
	}

	// 4. Флаги занятости
	booked, err := uc.bookedFlags(ctx, req)
	if err != nil {
		return nil, err
	}

	// 5. Сетка с учетом текущего времени
	grid := scheduling.Annotate(req.Date, booked, now)

	slots := make([]Slot, len(grid))
	for i, s := range grid {
		slots[i] = Slot{
			Start:    s.Start,
			End:      s.End,
			IsBooked: s.IsBooked,
			IsPast:   s.IsPast,
		}
	}

	return &Response{
		Date:     req.Date,
		RoomID:   room.ID,
		RoomOpen: room.IsOpen,
		Slots:    slots,
	}, nil
}

// bookedFlags читает флаги из кэша, при промахе вычисляет по активным бронированиям и кладет в кэш.
// Поколение читается до похода в БД: если между чтением и записью была инвалидация,
// флаги в кэш не попадают. Ошибки кэша не прерывают запрос.
func (uc *UseCase) bookedFlags(ctx context.Context, req *Request) ([]bool, error) {
	dateStr := req.Date.Format(domain.DateFormat)

	flags, found, err := uc.cache.Get(ctx, req.RoomID, req.Date)
	switch {
	case err != nil:
		uc.metrics.IncAvailabilityCache("error")
		uc.logger.Warn("GetAvailableSlots: cache get failed for room=%d date=%s: %v", req.RoomID, dateStr, err)
	case found && len(flags) == scheduling.SlotsPerDay:
		uc.metrics.IncAvailabilityCache("hit")
		return flags, nil
	default:
		uc.metrics.IncAvailabilityCache("miss")
	}

	generation, genErr := uc.cache.Generation(ctx, req.RoomID, req.Date)
	if genErr != nil {
		uc.logger.Warn("GetAvailableSlots: cache generation failed for room=%d date=%s: %v", req.RoomID, dateStr, genErr)
	}

	bookings, err := uc.bookingRepo.ListActive(ctx, req.RoomID, req.Date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	flags = scheduling.BookedFlags(bookings)

	// Без поколения запись небезопасна
	if genErr != nil {
		return flags, nil
	}

	err = uc.cache.SetIfUnchanged(ctx, req.RoomID, req.Date, generation, flags)
	switch {
	case err == nil:
	case errors.Is(err, availability.ErrStaleGeneration):
		uc.logger.Info("GetAvailableSlots: availability of room=%d date=%s changed while reading, not cached", req.RoomID, dateStr)
	default:
		uc.logger.Warn("GetAvailableSlots: cache set failed for room=%d date=%s: %v", req.RoomID, dateStr, err)
	}

	return flags, nil
}
