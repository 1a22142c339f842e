package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewWithRegisterer("test", prometheus.NewRegistry())

	m.IncBookingCreated()
	m.IncBookingCreated()
	m.IncBookingConflict("store")
	m.IncAvailabilityCache("hit")
	m.ObserveHTTPRequest("GET", "/api/v1/rooms", 200, 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookingsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingConflicts.WithLabelValues("store")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.availabilityCache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/v1/rooms", "200")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.IncBookingCreated()
		m.IncBookingConflict("validation")
		m.IncBookingCancelled()
		m.IncAvailabilityCache("miss")
		m.ObserveDBQuery("exec", time.Millisecond, nil)
		m.ObserveHTTPRequest("POST", "/api/v1/bookings", 201, time.Millisecond)
	})
}
