package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecord(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/api/v1/complaints", "GET", 200, 15*time.Millisecond)
	m.RecordRequest("/api/v1/complaints", "GET", 200, 5*time.Millisecond)
	m.RecordError("/api/v1/complaints/:id/status", "POST", "CONFLICT")
	m.RecordTransition("resolved")
	m.RecordConflict()
	m.RecordUpload("attachment", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/v1/complaints", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("/api/v1/complaints/:id/status", "POST", "CONFLICT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("resolved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.conflicts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uploads.WithLabelValues("attachment", "error")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordTransition("pending")
		m.RecordConflict()
		m.RecordUpload("avatar", true)
	})
}
