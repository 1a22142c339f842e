package create_booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RoomBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-RoomBooking/internal/infra/storage/booking"
	configRepo "github.com/m04kA/SMC-RoomBooking/internal/infra/storage/config"
	roomRepo "github.com/m04kA/SMC-RoomBooking/internal/infra/storage/room"
	"github.com/m04kA/SMC-RoomBooking/internal/integrations/events"
	"github.com/m04kA/SMC-RoomBooking/internal/integrations/memberservice"
	"github.com/m04kA/SMC-RoomBooking/internal/scheduling"
	"github.com/m04kA/SMC-RoomBooking/pkg/clock"
	"github.com/m04kA/SMC-RoomBooking/pkg/logger"
	"github.com/m04kA/SMC-RoomBooking/pkg/types"
)

// memStore хранилище в памяти с уникальностью (room, date, slot) как в booking_slots
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	bookings []*domain.Booking
	slots    map[string]int64
	rooms    map[int64]*domain.Room
	config   *domain.RoomBookingConfig

	// barrier задерживает возврат из ListActive, пока все конкуренты не прочитают день
	barrier *sync.WaitGroup

	listErr error
}

func newMemStore() *memStore {
	return &memStore{
		slots: map[string]int64{},
		rooms: map[int64]*domain.Room{
			1: {ID: 1, Name: "Room A", IsOpen: true},
			2: {ID: 2, Name: "Room B", IsOpen: false},
		},
	}
}

func slotKey(roomID int64, date time.Time, slot types.TimeString) string {
	return fmt.Sprintf("%d/%s/%s", roomID, date.Format(domain.DateFormat), slot)
}

func (s *memStore) ListActive(_ context.Context, roomID int64, date time.Time) ([]*domain.Booking, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}

	s.mu.Lock()
	var out []*domain.Booking
	for _, b := range s.bookings {
		if b.RoomID == roomID && b.BookingDate.Equal(date) && b.IsActive() {
			out = append(out, b)
		}
	}
	s.mu.Unlock()

	// Снимок уже сделан: ни один конкурент не увидит чужую запись
	if s.barrier != nil {
		s.barrier.Done()
		s.barrier.Wait()
	}
	return out, nil
}

func (s *memStore) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	occupied, err := scheduling.OccupiedSlots(b.StartTime, b.EndTime)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, slot := range occupied {
		if _, taken := s.slots[slotKey(b.RoomID, b.BookingDate, slot)]; taken {
			return nil, fmt.Errorf("%w: slot %s", bookingRepo.ErrSlotConflict, slot)
		}
	}

	s.nextID++
	created := *b
	created.ID = s.nextID
	for _, slot := range occupied {
		s.slots[slotKey(b.RoomID, b.BookingDate, slot)] = created.ID
	}
	s.bookings = append(s.bookings, &created)
	return &created, nil
}

func (s *memStore) GetByID(_ context.Context, id int64) (*domain.Room, error) {
	room, ok := s.rooms[id]
	if !ok {
		return nil, roomRepo.ErrRoomNotFound
	}
	return room, nil
}

type configStore struct{ store *memStore }

func (c configStore) GetConfigWithHierarchy(context.Context, int64) (*domain.RoomBookingConfig, error) {
	if c.store.config == nil {
		return nil, configRepo.ErrConfigNotFound
	}
	return c.store.config, nil
}

type passthroughTx struct{}

func (passthroughTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeMembers struct{ err error }

func (f fakeMembers) GetMemberWithGracefulDegradation(_ context.Context, id int64) (*memberservice.Member, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &memberservice.Member{ID: id, Name: "member"}, nil
}

type recordingCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (c *recordingCache) Invalidate(_ context.Context, roomID int64, date time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, fmt.Sprintf("%d/%s", roomID, date.Format(domain.DateFormat)))
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

type countingMetrics struct {
	mu        sync.Mutex
	created   int
	conflicts map[string]int
}

func (m *countingMetrics) IncBookingCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created++
}

func (m *countingMetrics) IncBookingConflict(stage string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conflicts == nil {
		m.conflicts = map[string]int{}
	}
	m.conflicts[stage]++
}

type fixture struct {
	store     *memStore
	members   *fakeMembers
	cache     *recordingCache
	publisher *recordingPublisher
	metrics   *countingMetrics
	uc        *UseCase
}

var (
	today = time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	now   = time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC)
)

func newFixture() *fixture {
	f := &fixture{
		store:     newMemStore(),
		members:   &fakeMembers{},
		cache:     &recordingCache{},
		publisher: &recordingPublisher{},
		metrics:   &countingMetrics{},
	}
	f.uc = NewUseCase(f.store, f.store, configStore{store: f.store}, f.members, f.cache, f.publisher,
		f.metrics, passthroughTx{}, clock.NewMock(now), logger.Nop())
	return f
}

func validRequest() *Request {
	return &Request{
		MemberID:  7,
		RoomID:    1,
		Date:      today.AddDate(0, 0, 1),
		TimeSlots: []string{"10:30", "10:00"},
		Reason:    "Планирование спринта",
		Participants: []domain.Participant{
			{UserID: 8, Nickname: "kim"},
			{UserID: 9, Nickname: "lee"},
		},
	}
}

func TestExecute_Success(t *testing.T) {
	f := newFixture()

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "Room A", resp.RoomName)
	assert.Equal(t, types.TimeString("10:00"), resp.StartTime)
	assert.Equal(t, types.TimeString("11:00"), resp.EndTime)
	assert.Equal(t, string(domain.StatusActive), resp.Status)
	assert.Len(t, resp.Participants, 2)

	assert.Equal(t, []string{"1/2024-06-02"}, f.cache.invalidated)
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, events.TypeBookingCreated, f.publisher.events[0].Type)
	assert.Equal(t, "Room A", f.publisher.events[0].RoomName)
	assert.NotEmpty(t, f.publisher.events[0].EventID)
	assert.Equal(t, 1, f.metrics.created)
}

func TestExecute_RunsToMidnight(t *testing.T) {
	f := newFixture()
	req := validRequest()
	req.TimeSlots = []string{"23:00", "23:30"}

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("23:00"), resp.StartTime)
	assert.Equal(t, types.TimeString("00:00"), resp.EndTime)
}

func TestExecute_PublishFailureDoesNotFailBooking(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("kafka down")

	_, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, f.metrics.created)
}

func TestExecute_MemberDirectory(t *testing.T) {
	t.Run("unknown member", func(t *testing.T) {
		f := newFixture()
		f.members.err = memberservice.ErrMemberNotFound

		_, err := f.uc.Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrMemberNotFound)
		assert.Empty(t, f.store.bookings)
	})

	t.Run("directory outage does not block booking", func(t *testing.T) {
		f := newFixture()
		f.members.err = fmt.Errorf("%w: timeout", memberservice.ErrServiceDegraded)

		_, err := f.uc.Execute(context.Background(), validRequest())
		require.NoError(t, err)
		assert.Len(t, f.store.bookings, 1)
	})
}

func TestExecute_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(r *Request)
		wantErr error
	}{
		{"no reason", func(r *Request) { r.Reason = "  " }, ErrInvalidInput},
		{"duplicate participant", func(r *Request) {
			r.Participants = append(r.Participants, domain.Participant{UserID: 8, Nickname: "kim"})
		}, ErrInvalidInput},
		{"participant without nickname", func(r *Request) {
			r.Participants = []domain.Participant{{UserID: 8}}
		}, ErrInvalidInput},
		{"unknown room", func(r *Request) { r.RoomID = 42 }, ErrRoomNotFound},
		{"empty selection", func(r *Request) { r.TimeSlots = nil }, scheduling.ErrEmptySelection},
		{"bad slot", func(r *Request) { r.TimeSlots = []string{"10:15"} }, scheduling.ErrInvalidSlot},
		{"gap", func(r *Request) { r.TimeSlots = []string{"10:00", "11:00"} }, scheduling.ErrNonContiguousSlots},
		{"yesterday", func(r *Request) { r.Date = today.AddDate(0, 0, -1) }, scheduling.ErrDateInPast},
		{"slot already started today", func(r *Request) {
			r.Date = today
			r.TimeSlots = []string{"08:00"}
		}, scheduling.ErrDateInPast},
		{"beyond default horizon", func(r *Request) { r.Date = today.AddDate(0, 0, 31) }, scheduling.ErrDateOutOfRange},
		{"closed room", func(r *Request) { r.RoomID = 2 }, scheduling.ErrRoomClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := validRequest()
			tt.modify(req)

			_, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.store.bookings)
			assert.Empty(t, f.cache.invalidated)
			assert.Empty(t, f.publisher.events)
		})
	}
}

func TestExecute_RoomConfigHorizon(t *testing.T) {
	f := newFixture()
	f.store.config = &domain.RoomBookingConfig{ID: 3, AdvanceBookingDays: 0}

	req := validRequest()
	req.Date = today.AddDate(1, 0, 0)

	_, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
}

func TestExecute_ConflictWithExistingBooking(t *testing.T) {
	f := newFixture()
	_, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.TimeSlots = []string{"10:30", "11:00"}

	_, err = f.uc.Execute(context.Background(), req)
	require.ErrorIs(t, err, scheduling.ErrSlotConflict)

	var conflict *scheduling.SlotConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(1), conflict.RoomID)
	assert.Equal(t, types.TimeString("10:30"), conflict.Slot)
	assert.Equal(t, 1, f.metrics.conflicts["validation"])
}

// Ошибка сериализации на чтении FOR UPDATE означает проигранную гонку, а не сбой
func TestExecute_SerializationFailureOnReadIsConflict(t *testing.T) {
	f := newFixture()
	f.store.listErr = fmt.Errorf("%w: ListActive - execute query: %w",
		bookingRepo.ErrSlotConflict, &pq.Error{Code: pgerrcode.SerializationFailure})

	_, err := f.uc.Execute(context.Background(), validRequest())

	require.ErrorIs(t, err, scheduling.ErrSlotConflict)
	assert.NotErrorIs(t, err, ErrInternal)
	var conflict *scheduling.SlotConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(1), conflict.RoomID)
	assert.Equal(t, 1, f.metrics.conflicts["store"])
	assert.Empty(t, f.publisher.events)
}

// Два одновременных запроса на пересекающиеся слоты: оба читают пустой день,
// побеждает ровно один, второй получает конфликт от хранилища.
func TestExecute_ConcurrentOverlappingRequests(t *testing.T) {
	f := newFixture()
	f.store.barrier = &sync.WaitGroup{}
	f.store.barrier.Add(2)

	first := validRequest()
	first.TimeSlots = []string{"14:00", "14:30"}
	second := validRequest()
	second.MemberID = 8
	second.TimeSlots = []string{"14:30", "15:00"}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, req := range []*Request{first, second} {
		wg.Add(1)
		go func(i int, req *Request) {
			defer wg.Done()
			_, errs[i] = f.uc.Execute(context.Background(), req)
		}(i, req)
	}
	wg.Wait()

	var succeeded, conflicted int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, scheduling.ErrSlotConflict):
			conflicted++
			var conflict *scheduling.SlotConflictError
			require.ErrorAs(t, err, &conflict)
			assert.Equal(t, int64(1), conflict.RoomID)
			assert.True(t, conflict.Date.Equal(today.AddDate(0, 0, 1)))
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)
	assert.Len(t, f.store.bookings, 1)
	assert.Equal(t, 1, f.metrics.conflicts["store"])
	assert.Len(t, f.publisher.events, 1)
}
