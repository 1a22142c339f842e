package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RoomBooking/internal/domain"
	"github.com/m04kA/SMC-RoomBooking/pkg/ptr"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func testBooking() *domain.Booking {
	return &domain.Booking{
		ID:           10,
		RoomID:       3,
		MemberID:     42,
		BookingDate:  time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		StartTime:    "09:00",
		EndTime:      "10:00",
		Reason:       "retro",
		Status:       domain.StatusCancelled,
		CancelReason: ptr.Ptr("moved"),
		Participants: []domain.Participant{{UserID: 7, Nickname: "kim"}},
	}
}

func TestPublish(t *testing.T) {
	w := &fakeWriter{}
	p := NewPublisher(w)
	occurred := time.Date(2024, time.May, 30, 10, 0, 0, 0, time.UTC)

	event := NewBookingEvent("evt-1", TypeBookingCancelled, testBooking(), "Blue", occurred)
	require.NoError(t, p.Publish(context.Background(), event))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "3", string(msg.Key))

	var decoded BookingEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, TypeBookingCancelled, decoded.Type)
	assert.Equal(t, "2024-06-01", decoded.Date)
	assert.Equal(t, "09:00", decoded.StartTime)
	assert.Equal(t, "moved", decoded.CancelReason)
	assert.Equal(t, "Blue", decoded.RoomName)
	assert.Equal(t, []Participant{{UserID: 7, Nickname: "kim"}}, decoded.Participants)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "evt-1", headers["event_id"])
	assert.Equal(t, "booking.cancelled", headers["event_type"])
}

func TestPublish_WriterError(t *testing.T) {
	p := NewPublisher(&fakeWriter{err: errors.New("no brokers")})

	err := p.Publish(context.Background(), NewBookingEvent("evt-2", TypeBookingCreated, testBooking(), "", time.Now()))
	assert.ErrorIs(t, err, ErrPublish)
}

func TestHeaderCarrier_Set(t *testing.T) {
	c := &headerCarrier{}
	c.Set("traceparent", "a")
	c.Set("traceparent", "b")

	assert.Equal(t, "b", c.Get("traceparent"))
	assert.Equal(t, []string{"traceparent"}, c.Keys())
}
