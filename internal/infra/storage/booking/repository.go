package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-RoomBooking/internal/domain"
	"github.com/m04kA/SMC-RoomBooking/internal/scheduling"
	"github.com/m04kA/SMC-RoomBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-RoomBooking/pkg/psqlbuilder"
)

// wallClockLayout формат локального времени для сравнения с TIMESTAMP без часового пояса
const wallClockLayout = "2006-01-02 15:04:05"

// endInstantExpr момент окончания бронирования; end_time 00:00 - полночь следующего дня
const endInstantExpr = "(CASE WHEN end_time = TIME '00:00' THEN (booking_date + 1) + end_time ELSE booking_date + end_time END)"

var bookingColumns = []string{
	"id",
	"room_id",
	"member_id",
	"booking_date",
	"start_time",
	"end_time",
	"reason",
	"status",
	"cancel_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет бронирование, его участников и занятые слоты.
// Должен вызываться внутри транзакции: уникальный индекс по слотам
// гарантирует, что из конкурирующих бронирований сохранится только одно.
// При проигранной гонке возвращает ErrSlotConflict.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	slots, err := scheduling.OccupiedSlots(booking.StartTime, booking.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBooking, err)
	}

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"room_id",
			"member_id",
			"booking_date",
			"start_time",
			"end_time",
			"reason",
			"status",
		).
		Values(
			booking.RoomID,
			booking.MemberID,
			booking.BookingDate.Format(domain.DateFormat),
			booking.StartTime,
			booking.EndTime,
			booking.Reason,
			booking.Status,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, r.execError("Create - execute insert", err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	// Занятые слоты
	slotsInsert := psqlbuilder.Insert("booking_slots").
		Columns("booking_id", "room_id", "booking_date", "slot_start")
	for _, slot := range slots {
		slotsInsert = slotsInsert.Values(booking.ID, booking.RoomID, booking.BookingDate.Format(domain.DateFormat), slot)
	}

	query, args, err = slotsInsert.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build slots insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return nil, r.execError("Create - insert slots", err)
	}

	// Участники
	if len(booking.Participants) > 0 {
		participantsInsert := psqlbuilder.Insert("booking_participants").
			Columns("booking_id", "user_id", "nickname")
		for _, p := range booking.Participants {
			participantsInsert = participantsInsert.Values(booking.ID, p.UserID, p.Nickname)
		}

		query, args, err = participantsInsert.ToSql()
		if err != nil {
			return nil, fmt.Errorf("%w: Create - build participants insert query: %v", ErrBuildQuery, err)
		}

		if _, err := executor.ExecContext(ctx, query, args...); err != nil {
			return nil, r.execError("Create - insert participants", err)
		}
	}

	return booking, nil
}

// GetByID получает бронирование по ID вместе с участниками.
// Внутри транзакции строка блокируется (FOR UPDATE).
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, scanError("GetByID - scan booking", err)
	}

	if err := r.attachParticipants(ctx, []*domain.Booking{booking}); err != nil {
		return nil, err
	}

	return booking, nil
}

// ListActive возвращает активные бронирования комнаты на дату, отсортированные по времени начала.
// Внутри транзакции строки блокируются (FOR UPDATE).
func (r *Repository) ListActive(ctx context.Context, roomID int64, date time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"room_id": roomID}).
		Where(squirrel.Eq{"booking_date": date.Format(domain.DateFormat)}).
		Where(squirrel.Eq{"status": domain.StatusActive}).
		OrderBy("start_time ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActive - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.execError("ListActive - execute query", err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// List получает бронирования по фильтру с участниками.
// Статусы active/expired вычисляются относительно now (локальное время комнаты).
//
// Примеры использования:
//
// 1. Бронирования участника, ещё не завершившиеся:
//    status := domain.StatusActive
//    filter := domain.BookingsFilter{MemberID: &memberID, Status: &status}
//
// 2. Бронирования комнаты за период, новые первыми:
//    filter := domain.BookingsFilter{RoomID: &roomID, StartDate: &from, EndDate: &to, SortDesc: true}
func (r *Repository) List(ctx context.Context, filter domain.BookingsFilter, now time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := applyFilter(psqlbuilder.Select(bookingColumns...).From("bookings"), filter, now)
	selectBuilder = applySort(selectBuilder, filter)

	if filter.Limit > 0 {
		selectBuilder = selectBuilder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		selectBuilder = selectBuilder.Offset(uint64(filter.Offset))
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.execError("List - execute query", err)
	}
	defer rows.Close()

	bookings, err := scanBookings(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachParticipants(ctx, bookings); err != nil {
		return nil, err
	}

	return bookings, nil
}

// Count возвращает количество бронирований по фильтру (без учета Limit/Offset)
func (r *Repository) Count(ctx context.Context, filter domain.BookingsFilter, now time.Time) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := applyFilter(psqlbuilder.Select("COUNT(*)").From("bookings"), filter, now).ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: Count - build select query: %v", ErrBuildQuery, err)
	}

	var total int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, scanError("Count - scan count", err)
	}

	return total, nil
}

// Cancel переводит активное бронирование в cancelled и освобождает его слоты.
// Должен вызываться внутри транзакции.
func (r *Repository) Cancel(ctx context.Context, id int64, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancel_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": domain.StatusActive}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return r.execError("Cancel - execute update", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Cancel - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	query, args, err = psqlbuilder.Delete("booking_slots").
		Where(squirrel.Eq{"booking_id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build slots delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return r.execError("Cancel - delete slots", err)
	}

	return nil
}

// applyFilter добавляет условия фильтра к запросу
func applyFilter(b squirrel.SelectBuilder, filter domain.BookingsFilter, now time.Time) squirrel.SelectBuilder {
	if filter.RoomID != nil {
		b = b.Where(squirrel.Eq{"room_id": *filter.RoomID})
	}
	if filter.MemberID != nil {
		b = b.Where(squirrel.Eq{"member_id": *filter.MemberID})
	}
	if filter.StartDate != nil {
		b = b.Where(squirrel.GtOrEq{"booking_date": filter.StartDate.Format(domain.DateFormat)})
	}
	if filter.EndDate != nil {
		b = b.Where(squirrel.LtOrEq{"booking_date": filter.EndDate.Format(domain.DateFormat)})
	}

	if filter.Status != nil {
		wallClock := now.Format(wallClockLayout)
		switch *filter.Status {
		case domain.StatusActive:
			b = b.Where(squirrel.Eq{"status": domain.StatusActive}).
				Where(squirrel.Expr(endInstantExpr+" >= ?::timestamp", wallClock))
		case domain.StatusExpired:
			b = b.Where(squirrel.Eq{"status": domain.StatusActive}).
				Where(squirrel.Expr(endInstantExpr+" < ?::timestamp", wallClock))
		default:
			b = b.Where(squirrel.Eq{"status": *filter.Status})
		}
	}

	return b
}

// applySort добавляет сортировку; id - последний ключ для стабильной пагинации
func applySort(b squirrel.SelectBuilder, filter domain.BookingsFilter) squirrel.SelectBuilder {
	order := "ASC"
	if filter.SortDesc {
		order = "DESC"
	}

	switch filter.SortBy {
	case domain.SortByRoom:
		return b.OrderBy("room_id "+order, "booking_date "+order, "start_time "+order, "id "+order)
	case domain.SortByMember:
		return b.OrderBy("member_id "+order, "booking_date "+order, "start_time "+order, "id "+order)
	case domain.SortByCreated:
		return b.OrderBy("created_at "+order, "id "+order)
	default:
		return b.OrderBy("booking_date "+order, "start_time "+order, "id "+order)
	}
}

// attachParticipants загружает участников одним запросом для всех бронирований
func (r *Repository) attachParticipants(ctx context.Context, bookings []*domain.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	ids := make([]int64, len(bookings))
	byID := make(map[int64]*domain.Booking, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
		byID[b.ID] = b
	}

	query, args, err := psqlbuilder.Select("booking_id", "user_id", "nickname").
		From("booking_participants").
		Where(squirrel.Eq{"booking_id": ids}).
		OrderBy("booking_id ASC", "id ASC").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: attachParticipants - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return r.execError("attachParticipants - execute query", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bookingID int64
		var p domain.Participant
		if err := rows.Scan(&bookingID, &p.UserID, &p.Nickname); err != nil {
			return fmt.Errorf("%w: attachParticipants - scan row: %v", ErrScanRow, err)
		}
		if b, ok := byID[bookingID]; ok {
			b.Participants = append(b.Participants, p)
		}
	}

	if err := rows.Err(); err != nil {
		return scanError("attachParticipants - rows error", err)
	}

	return nil
}

// execError превращает ошибку гонки за слот в ErrSlotConflict.
// Ошибка драйвера оборачивается через %w, чтобы IsConflict видел *pq.Error.
func (r *Repository) execError(step string, err error) error {
	return wrapDBError(ErrExecQuery, step, err)
}

// scanError то же для ошибок чтения: сериализация может сорваться и на Scan/rows.Err
func scanError(step string, err error) error {
	return wrapDBError(ErrScanRow, step, err)
}

func wrapDBError(sentinel error, step string, err error) error {
	if IsConflict(err) {
		return fmt.Errorf("%w: %s: %w", ErrSlotConflict, step, err)
	}
	return fmt.Errorf("%w: %s: %w", sentinel, step, err)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var cancelReason sql.NullString
	var cancelledAt, createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.RoomID,
		&booking.MemberID,
		&booking.BookingDate,
		&booking.StartTime,
		&booking.EndTime,
		&booking.Reason,
		&booking.Status,
		&cancelReason,
		&cancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if cancelReason.Valid {
		booking.CancelReason = &cancelReason.String
	}
	if cancelledAt.Valid {
		booking.CancelledAt = &cancelledAt.Time
	}
	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, scanError("scanBookings - scan row", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, scanError("scanBookings - rows error", err)
	}

	return bookings, nil
}
