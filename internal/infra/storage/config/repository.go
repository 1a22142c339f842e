package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-RoomBooking/internal/domain"
	"github.com/m04kA/SMC-RoomBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-RoomBooking/pkg/psqlbuilder"
)

// Repository репозиторий политики бронирования комнат
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория конфигурации
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByRoom получает конфигурацию комнаты; roomID == nil - глобальная конфигурация
func (r *Repository) GetByRoom(ctx context.Context, roomID *int64) (*domain.RoomBookingConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"room_id",
		"advance_booking_days",
		"created_at",
		"updated_at",
	).
		From("room_booking_config")

	// Фильтрация по room_id (NULL или конкретное значение)
	if roomID == nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"room_id": nil})
	} else {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"room_id": *roomID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByRoom - build select query: %v", ErrBuildQuery, err)
	}

	var config domain.RoomBookingConfig
	var configRoomID sql.NullInt64
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&config.ID,
		&configRoomID,
		&config.AdvanceBookingDays,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByRoom - scan config: %v", ErrScanRow, err)
	}

	if configRoomID.Valid {
		config.RoomID = &configRoomID.Int64
	}
	config.CreatedAt = createdAt.Time
	config.UpdatedAt = updatedAt.Time

	return &config, nil
}

// GetConfigWithHierarchy получает конфигурацию с учетом иерархии приоритетов:
// 1. Конфигурация конкретной комнаты
// 2. Глобальная конфигурация (room_id IS NULL)
//
// Если конфигурация не найдена ни на одном уровне, возвращает ErrConfigNotFound
func (r *Repository) GetConfigWithHierarchy(ctx context.Context, roomID int64) (*domain.RoomBookingConfig, error) {
	// 1. Конфигурация комнаты
	config, err := r.GetByRoom(ctx, &roomID)
	if err == nil {
		return config, nil
	}
	if !errors.Is(err, ErrConfigNotFound) {
		return nil, fmt.Errorf("%w: GetConfigWithHierarchy - level 1 (room): %v", ErrExecQuery, err)
	}

	// 2. Глобальная конфигурация
	config, err = r.GetByRoom(ctx, nil)
	if err == nil {
		return config, nil
	}
	if !errors.Is(err, ErrConfigNotFound) {
		return nil, fmt.Errorf("%w: GetConfigWithHierarchy - level 2 (global): %v", ErrExecQuery, err)
	}

	return nil, ErrConfigNotFound
}

// Upsert создает или обновляет конфигурацию конкретной комнаты
func (r *Repository) Upsert(ctx context.Context, config *domain.RoomBookingConfig) (*domain.RoomBookingConfig, error) {
	if config.RoomID == nil {
		return r.updateGlobal(ctx, config)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("room_booking_config").
		Columns("room_id", "advance_booking_days").
		Values(*config.RoomID, config.AdvanceBookingDays).
		Suffix("ON CONFLICT (room_id) WHERE room_id IS NOT NULL DO UPDATE SET advance_booking_days = EXCLUDED.advance_booking_days, updated_at = NOW() RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&config.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}

	config.CreatedAt = createdAt.Time
	config.UpdatedAt = updatedAt.Time

	return config, nil
}

// updateGlobal обновляет глобальную конфигурацию (строка создается миграцией)
func (r *Repository) updateGlobal(ctx context.Context, config *domain.RoomBookingConfig) (*domain.RoomBookingConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("room_booking_config").
		Set("advance_booking_days", config.AdvanceBookingDays).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"room_id": nil}).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: updateGlobal - build update query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&config.ID, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: updateGlobal - execute update: %v", ErrExecQuery, err)
	}

	config.CreatedAt = createdAt.Time
	config.UpdatedAt = updatedAt.Time

	return config, nil
}
