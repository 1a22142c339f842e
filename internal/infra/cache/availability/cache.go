package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-RoomBooking/internal/domain"
)

var (
	// ErrCache ошибка обращения к redis
	ErrCache = errors.New("availability.cache: redis error")

	// ErrCorruptEntry значение в кэше не разбирается
	ErrCorruptEntry = errors.New("availability.cache: corrupt entry")

	// ErrStaleGeneration запись не сохранена: после чтения поколения была инвалидация
	ErrStaleGeneration = errors.New("availability.cache: generation changed")
)

const (
	keyPrefix           = "availability"
	generationKeyPrefix = "availability:gen"

	// generationTTL заведомо больше времени между чтением поколения и записью флагов
	generationTTL = 72 * time.Hour
)

// Cache кэш флагов занятости слотов по (комната, дата).
// Флаги is_past не кэшируются: они зависят от текущего времени.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache создает кэш поверх redis клиента
func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// Get возвращает флаги занятости; found == false при промахе
func (c *Cache) Get(ctx context.Context, roomID int64, date time.Time) ([]bool, bool, error) {
	raw, err := c.rdb.Get(ctx, Key(roomID, date)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: get: %v", ErrCache, err)
	}

	flags, err := decode(raw)
	if err != nil {
		return nil, false, err
	}

	return flags, true, nil
}

// Generation возвращает текущее поколение (комната, дата).
// Читается до похода в БД и передается в SetIfUnchanged.
func (c *Cache) Generation(ctx context.Context, roomID int64, date time.Time) (int64, error) {
	gen, err := readGeneration(ctx, c.rdb, GenerationKey(roomID, date))
	if err != nil {
		return 0, fmt.Errorf("%w: get generation: %v", ErrCache, err)
	}
	return gen, nil
}

// SetIfUnchanged сохраняет флаги, только если поколение все еще равно generation.
// Иначе возвращает ErrStaleGeneration: флаги могли быть прочитаны до последней инвалидации.
func (c *Cache) SetIfUnchanged(ctx context.Context, roomID int64, date time.Time, generation int64, booked []bool) error {
	genKey := GenerationKey(roomID, date)

	err := c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readGeneration(ctx, tx, genKey)
		if err != nil {
			return err
		}
		if current != generation {
			return ErrStaleGeneration
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, Key(roomID, date), encode(booked), c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStaleGeneration), errors.Is(err, redis.TxFailedErr):
		return ErrStaleGeneration
	default:
		return fmt.Errorf("%w: set: %v", ErrCache, err)
	}
}

// Invalidate удаляет запись для (комната, дата) и сдвигает поколение,
// чтобы запись, вычисленная до инвалидации, не попала в кэш
func (c *Cache) Invalidate(ctx context.Context, roomID int64, date time.Time) error {
	genKey := GenerationKey(roomID, date)

	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, Key(roomID, date))
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: invalidate: %v", ErrCache, err)
	}
	return nil
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGeneration(ctx context.Context, rdb stringGetter, key string) (int64, error) {
	gen, err := rdb.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Ping проверяет соединение с redis
func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Key ключ записи: availability:{roomID}:{YYYY-MM-DD}
func Key(roomID int64, date time.Time) string {
	return fmt.Sprintf("%s:%d:%s", keyPrefix, roomID, date.Format(domain.DateFormat))
}

// GenerationKey ключ поколения: availability:gen:{roomID}:{YYYY-MM-DD}
func GenerationKey(roomID int64, date time.Time) string {
	return fmt.Sprintf("%s:%d:%s", generationKeyPrefix, roomID, date.Format(domain.DateFormat))
}

// encode кодирует флаги строкой из '0' и '1'
func encode(flags []bool) string {
	buf := make([]byte, len(flags))
	for i, f := range flags {
		if f {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return string(buf)
}

func decode(raw string) ([]bool, error) {
	flags := make([]bool, len(raw))
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '0':
		case '1':
			flags[i] = true
		default:
			return nil, fmt.Errorf("%w: unexpected byte %q at %d", ErrCorruptEntry, raw[i], i)
		}
	}
	return flags, nil
}

// Nop кэш-заглушка, когда redis выключен: всегда промах
type Nop struct{}

func (Nop) Get(context.Context, int64, time.Time) ([]bool, bool, error) { return nil, false, nil }
func (Nop) Generation(context.Context, int64, time.Time) (int64, error) { return 0, nil }
func (Nop) SetIfUnchanged(context.Context, int64, time.Time, int64, []bool) error {
	return nil
}
func (Nop) Invalidate(context.Context, int64, time.Time) error { return nil }
