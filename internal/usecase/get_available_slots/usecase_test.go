package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RoomBooking/internal/domain"
	"github.com/m04kA/SMC-RoomBooking/internal/infra/cache/availability"
	roomRepo "github.com/m04kA/SMC-RoomBooking/internal/infra/storage/room"
	"github.com/m04kA/SMC-RoomBooking/pkg/clock"
	"github.com/m04kA/SMC-RoomBooking/pkg/logger"
	"github.com/m04kA/SMC-RoomBooking/pkg/types"
)

type mockBookingRepo struct{ mock.Mock }

func (m *mockBookingRepo) ListActive(ctx context.Context, roomID int64, date time.Time) ([]*domain.Booking, error) {
	args := m.Called(ctx, roomID, date)
	bookings, _ := args.Get(0).([]*domain.Booking)
	return bookings, args.Error(1)
}

type mockRoomRepo struct{ mock.Mock }

func (m *mockRoomRepo) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	args := m.Called(ctx, id)
	room, _ := args.Get(0).(*domain.Room)
	return room, args.Error(1)
}

// fakeCache повторяет семантику поколений redis-кэша
type fakeCache struct {
	entries     map[string][]bool
	generations map[string]int64
	getErr      error
	sets        int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]bool{}, generations: map[string]int64{}}
}

func cacheKey(roomID int64, date time.Time) string {
	return fmt.Sprintf("%d/%s", roomID, date.Format(domain.DateFormat))
}

func (c *fakeCache) Get(_ context.Context, roomID int64, date time.Time) ([]bool, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	flags, ok := c.entries[cacheKey(roomID, date)]
	return flags, ok, nil
}

func (c *fakeCache) Generation(_ context.Context, roomID int64, date time.Time) (int64, error) {
	return c.generations[cacheKey(roomID, date)], nil
}

func (c *fakeCache) SetIfUnchanged(_ context.Context, roomID int64, date time.Time, generation int64, booked []bool) error {
	key := cacheKey(roomID, date)
	if c.generations[key] != generation {
		return availability.ErrStaleGeneration
	}
	c.sets++
	c.entries[key] = booked
	return nil
}

func (c *fakeCache) Invalidate(roomID int64, date time.Time) {
	key := cacheKey(roomID, date)
	c.generations[key]++
	delete(c.entries, key)
}

type countingMetrics struct{ results []string }

func (m *countingMetrics) IncAvailabilityCache(result string) { m.results = append(m.results, result) }

type fixture struct {
	bookings *mockBookingRepo
	rooms    *mockRoomRepo
	cache    *fakeCache
	metrics  *countingMetrics
	clock    *clock.Mock
	uc       *UseCase
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		bookings: &mockBookingRepo{},
		rooms:    &mockRoomRepo{},
		cache:    newFakeCache(),
		metrics:  &countingMetrics{},
		clock:    clock.NewMock(now),
	}
	f.uc = NewUseCase(f.bookings, f.rooms, f.cache, f.metrics, f.clock, logger.Nop())
	return f
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func bookedStarts(slots []Slot) []types.TimeString {
	var out []types.TimeString
	for _, s := range slots {
		if s.IsBooked {
			out = append(out, s.Start)
		}
	}
	return out
}

func TestExecute_CacheMissThenHit(t *testing.T) {
	date := day(2024, time.June, 1)
	f := newFixture(time.Date(2024, time.May, 25, 10, 0, 0, 0, time.UTC))

	f.rooms.On("GetByID", mock.Anything, int64(1)).Return(&domain.Room{ID: 1, IsOpen: true}, nil)
	f.bookings.On("ListActive", mock.Anything, int64(1), date).Return([]*domain.Booking{
		{RoomID: 1, BookingDate: date, StartTime: "09:00", EndTime: "10:00", Status: domain.StatusActive},
	}, nil).Once()

	resp, err := f.uc.Execute(context.Background(), &Request{RoomID: 1, Date: date})
	require.NoError(t, err)

	require.Len(t, resp.Slots, 48)
	assert.True(t, resp.RoomOpen)
	assert.Equal(t, []types.TimeString{"09:00", "09:30"}, bookedStarts(resp.Slots))
	for _, s := range resp.Slots {
		assert.False(t, s.IsPast)
	}
	assert.Equal(t, []string{"miss"}, f.metrics.results)
	assert.Equal(t, 1, f.cache.sets)

	// второй запрос обслуживается из кэша
	resp, err = f.uc.Execute(context.Background(), &Request{RoomID: 1, Date: date})
	require.NoError(t, err)
	assert.Equal(t, []types.TimeString{"09:00", "09:30"}, bookedStarts(resp.Slots))
	assert.Equal(t, []string{"miss", "hit"}, f.metrics.results)
	f.bookings.AssertNumberOfCalls(t, "ListActive", 1)
}

func TestExecute_InvalidateDuringStoreReadIsNotOverwritten(t *testing.T) {
	date := day(2024, time.June, 1)
	f := newFixture(time.Date(2024, time.May, 25, 10, 0, 0, 0, time.UTC))

	f.rooms.On("GetByID", mock.Anything, int64(1)).Return(&domain.Room{ID: 1, IsOpen: true}, nil)

	// первое чтение видит пустой день, а бронирование 09:00-10:00 коммитится
	// и инвалидирует кэш, пока читатель еще не записал флаги
	f.bookings.On("ListActive", mock.Anything, int64(1), date).Return([]*domain.Booking{}, nil).
		Run(func(mock.Arguments) { f.cache.Invalidate(1, date) }).Once()
	f.bookings.On("ListActive", mock.Anything, int64(1), date).Return([]*domain.Booking{
		{RoomID: 1, BookingDate: date, StartTime: "09:00", EndTime: "10:00", Status: domain.StatusActive},
	}, nil).Once()

	resp, err := f.uc.Execute(context.Background(), &Request{RoomID: 1, Date: date})
	require.NoError(t, err)
	assert.Empty(t, bookedStarts(resp.Slots))
	assert.Equal(t, 0, f.cache.sets)

	resp, err = f.uc.Execute(context.Background(), &Request{RoomID: 1, Date: date})
	require.NoError(t, err)
	assert.Equal(t, []types.TimeString{"09:00", "09:30"}, bookedStarts(resp.Slots))
	assert.Equal(t, []string{"miss", "miss"}, f.metrics.results)
	assert.Equal(t, 1, f.cache.sets)
	f.bookings.AssertNumberOfCalls(t, "ListActive", 2)
}

func TestExecute_PastFlagsRecomputedOnCacheHit(t *testing.T) {
	date := day(2024, time.June, 1)
	f := newFixture(time.Date(2024, time.June, 1, 14, 5, 0, 0, time.UTC))
	f.cache.entries[cacheKey(1, date)] = make([]bool, 48)

	f.rooms.On("GetByID", mock.Anything, int64(1)).Return(&domain.Room{ID: 1, IsOpen: true}, nil)

	resp, err := f.uc.Execute(context.Background(), &Request{RoomID: 1, Date: date})
	require.NoError(t, err)

	assert.True(t, resp.Slots[28].IsPast, "14:00")
	assert.False(t, resp.Slots[29].IsPast, "14:30")

	f.clock.Advance(time.Hour)
	resp, err = f.uc.Execute(context.Background(), &Request{RoomID: 1, Date: date})
	require.NoError(t, err)
	assert.True(t, resp.Slots[30].IsPast, "15:00 after the clock moved")
	f.bookings.AssertNotCalled(t, "ListActive", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_ClosedRoomStillReturnsGrid(t *testing.T) {
	date := day(2024, time.June, 1)
	f := newFixture(time.Date(2024, time.May, 25, 10, 0, 0, 0, time.UTC))

	f.rooms.On("GetByID", mock.Anything, int64(1)).Return(&domain.Room{ID: 1, IsOpen: false}, nil)
	f.bookings.On("ListActive", mock.Anything, int64(1), date).Return([]*domain.Booking{}, nil)

	resp, err := f.uc.Execute(context.Background(), &Request{RoomID: 1, Date: date})
	require.NoError(t, err)
	assert.False(t, resp.RoomOpen)
	assert.Len(t, resp.Slots, 48)
}

func TestExecute_CacheErrorFallsBackToStore(t *testing.T) {
	date := day(2024, time.June, 1)
	f := newFixture(time.Date(2024, time.May, 25, 10, 0, 0, 0, time.UTC))
	f.cache.getErr = errors.New("redis down")

	f.rooms.On("GetByID", mock.Anything, int64(1)).Return(&domain.Room{ID: 1, IsOpen: true}, nil)
	f.bookings.On("ListActive", mock.Anything, int64(1), date).Return([]*domain.Booking{}, nil)

	_, err := f.uc.Execute(context.Background(), &Request{RoomID: 1, Date: date})
	require.NoError(t, err)
	assert.Equal(t, []string{"error"}, f.metrics.results)
}

func TestExecute_Errors(t *testing.T) {
	date := day(2024, time.June, 1)

	t.Run("invalid room", func(t *testing.T) {
		f := newFixture(time.Now())
		_, err := f.uc.Execute(context.Background(), &Request{RoomID: 0, Date: date})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("room not found", func(t *testing.T) {
		f := newFixture(time.Now())
		f.rooms.On("GetByID", mock.Anything, int64(9)).Return(nil, roomRepo.ErrRoomNotFound)

		_, err := f.uc.Execute(context.Background(), &Request{RoomID: 9, Date: date})
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newFixture(time.Now())
		f.rooms.On("GetByID", mock.Anything, int64(1)).Return(&domain.Room{ID: 1, IsOpen: true}, nil)
		f.bookings.On("ListActive", mock.Anything, int64(1), date).Return(nil, errors.New("db down"))

		_, err := f.uc.Execute(context.Background(), &Request{RoomID: 1, Date: date})
		assert.ErrorIs(t, err, ErrInternal)
	})
}
