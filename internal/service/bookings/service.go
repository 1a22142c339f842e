package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-RoomBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-RoomBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-RoomBooking/internal/integrations/events"
	"github.com/m04kA/SMC-RoomBooking/internal/scheduling"
	"github.com/m04kA/SMC-RoomBooking/internal/service/bookings/models"
)

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo  BookingRepository
	roomRepo     RoomRepository
	memberClient MemberServiceClient
	cache        AvailabilityCache
	publisher    EventPublisher
	metrics      MetricsCollector
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	roomRepo RoomRepository,
	memberClient MemberServiceClient,
	cache AvailabilityCache,
	publisher EventPublisher,
	metrics MetricsCollector,
	txManager TransactionManager,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		roomRepo:     roomRepo,
		memberClient: memberClient,
		cache:        cache,
		publisher:    publisher,
		metrics:      metrics,
		txManager:    txManager,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// GetByID получает бронирование по ID с вычисленным признаком истечения.
// Видят бронирование владелец, участники встречи и администраторы.
func (s *Service) GetByID(ctx context.Context, id int64, callerID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for member=%d", id, callerID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if !isOwnerOrParticipant(booking, callerID) && !s.isAdmin(ctx, callerID) {
		s.logger.Warn("GetByID: access denied for member=%d to booking id=%d", callerID, id)
		return nil, ErrAccessDenied
	}

	now := s.timeProvider.Now()
	return models.FromDomainBooking(booking, scheduling.EffectiveStatus(booking, now)), nil
}

// List получает страницу бронирований с фильтрацией. Доступно только администраторам.
//
// Примеры использования:
// - Бронирования комнаты на дату: RoomID, StartDate и EndDate указывают на одну дату
// - Завершившиеся бронирования участника: MemberID и Status = "expired"
// - Последние созданные: SortBy = "created", SortOrder = "desc"
func (s *Service) List(ctx context.Context, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("List: fetching bookings for admin=%d", req.CallerID)

	if !s.isAdmin(ctx, req.CallerID) {
		s.logger.Warn("List: member=%d is not an admin", req.CallerID)
		return nil, ErrAccessDenied
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	page, pageSize := models.NormalizePage(req.Page, req.PageSize)
	return s.listPage(ctx, "List", filter, page, pageSize)
}

// GetMemberBookings получает бронирования участника: свои видит каждый, чужие - администратор
func (s *Service) GetMemberBookings(ctx context.Context, req *models.GetMemberBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetMemberBookings: fetching bookings of member=%d for member=%d, status=%v",
		req.MemberID, req.CallerID, req.Status)

	if req.MemberID <= 0 {
		return nil, fmt.Errorf("%w: memberID must be positive", ErrInvalidInput)
	}

	if req.MemberID != req.CallerID && !s.isAdmin(ctx, req.CallerID) {
		s.logger.Warn("GetMemberBookings: access denied for member=%d to bookings of member=%d", req.CallerID, req.MemberID)
		return nil, ErrAccessDenied
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetMemberBookings: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	page, pageSize := models.NormalizePage(req.Page, req.PageSize)
	return s.listPage(ctx, "GetMemberBookings", filter, page, pageSize)
}

func (s *Service) listPage(ctx context.Context, op string, filter domain.BookingsFilter, page, pageSize int) (*models.BookingListResponse, error) {
	now := s.timeProvider.Now()

	total, err := s.bookingRepo.Count(ctx, filter, now)
	if err != nil {
		s.logger.Error("%s: count error: %v", op, err)
		return nil, fmt.Errorf("%w: %s - count error: %v", ErrInternal, op, err)
	}

	bookings, err := s.bookingRepo.List(ctx, filter, now)
	if err != nil {
		s.logger.Error("%s: repository error: %v", op, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}

	resp := &models.BookingListResponse{
		Bookings: make([]models.BookingResponse, 0, len(bookings)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, *models.FromDomainBooking(b, scheduling.EffectiveStatus(b, now)))
	}

	s.logger.Info("%s: fetched %d of %d bookings", op, len(resp.Bookings), total)
	return resp, nil
}

// Cancel отменяет бронирование и освобождает его слоты.
// Отменить может владелец или администратор; повторная отмена ничего не меняет.
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%d by member=%d", bookingID, req.CallerID)

	reason := strings.TrimSpace(req.CancelReason)
	if reason == "" {
		return nil, fmt.Errorf("%w: cancelReason is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(reason) > domain.MaxCancelReasonLength {
		return nil, fmt.Errorf("%w: cancelReason is longer than %d characters", ErrInvalidInput, domain.MaxCancelReasonLength)
	}

	now := s.timeProvider.Now()

	var (
		booking   *domain.Booking
		cancelled bool
	)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		// Получаем бронирование с блокировкой
		var err error
		booking, err = s.bookingRepo.GetByID(txCtx, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}

		if booking.MemberID != req.CallerID && !s.isAdmin(txCtx, req.CallerID) {
			return ErrAccessDenied
		}

		// Повторная отмена
		if booking.IsCancelled() {
			return nil
		}

		if scheduling.IsExpired(booking, now) {
			return ErrCannotCancel
		}

		if err := s.bookingRepo.Cancel(txCtx, bookingID, reason); err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}

		booking.Status = domain.StatusCancelled
		booking.CancelReason = &reason
		booking.CancelledAt = &now
		booking.UpdatedAt = now
		cancelled = true
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrInternal) {
			s.logger.Error("Cancel: booking id=%d: %v", bookingID, err)
		} else {
			s.logger.Warn("Cancel: booking id=%d: %v", bookingID, err)
		}
		return nil, err
	}

	if !cancelled {
		s.logger.Info("Cancel: booking id=%d is already cancelled", bookingID)
		return models.FromDomainBooking(booking, domain.StatusCancelled), nil
	}

	s.metrics.IncBookingCancelled()
	s.logger.Info("Cancel: successfully cancelled booking id=%d", bookingID)

	if err := s.cache.Invalidate(ctx, booking.RoomID, booking.BookingDate); err != nil {
		s.logger.Warn("Cancel: failed to invalidate availability cache for room=%d: %v", booking.RoomID, err)
	}

	event := events.NewBookingEvent(uuid.NewString(), events.TypeBookingCancelled, booking, s.roomName(ctx, booking.RoomID), now)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Cancel: failed to publish event for booking id=%d: %v", bookingID, err)
	}

	return models.FromDomainBooking(booking, domain.StatusCancelled), nil
}

// Вспомогательные методы

func isOwnerOrParticipant(booking *domain.Booking, memberID int64) bool {
	if booking.MemberID == memberID {
		return true
	}
	for _, p := range booking.Participants {
		if p.UserID == memberID {
			return true
		}
	}
	return false
}

// roomName название комнаты для события; отмена уже зафиксирована,
// поэтому ошибка справочника не прерывает публикацию
func (s *Service) roomName(ctx context.Context, roomID int64) string {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		s.logger.Warn("Cancel: failed to load room=%d for event: %v", roomID, err)
		return ""
	}
	return room.Name
}

// isAdmin проверяет роль администратора в справочнике.
// При недоступности справочника права не выдаются.
func (s *Service) isAdmin(ctx context.Context, memberID int64) bool {
	member, err := s.memberClient.GetMember(ctx, memberID)
	if err != nil {
		s.logger.Warn("isAdmin: failed to get member id=%d: %v", memberID, err)
		return false
	}
	return member.IsAdmin || member.IsRoomAdmin
}
