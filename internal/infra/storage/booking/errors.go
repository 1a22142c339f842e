package booking

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
)

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrSlotConflict возвращается, когда слот уже занят другим бронированием
	ErrSlotConflict = errors.New("booking.repository: slot already booked")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")

	// ErrInvalidBooking возвращается, когда бронирование нельзя разложить на слоты
	ErrInvalidBooking = errors.New("booking.repository: invalid booking time range")
)

// slotsConstraint уникальный индекс (room_id, booking_date, slot_start)
const slotsConstraint = "uq_booking_slots_room_date_slot"

// IsConflict сообщает, что ошибка БД означает проигранную гонку за слот:
// нарушение уникальности слотов, exclusion constraint, ошибка сериализации или deadlock.
func IsConflict(err error) bool {
	if errors.Is(err, ErrSlotConflict) {
		return true
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	switch string(pqErr.Code) {
	case pgerrcode.UniqueViolation:
		return pqErr.Constraint == slotsConstraint || pqErr.Table == "booking_slots"
	case pgerrcode.ExclusionViolation,
		pgerrcode.SerializationFailure,
		pgerrcode.DeadlockDetected:
		return true
	}

	return false
}
