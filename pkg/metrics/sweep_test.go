package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSweepJobMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSweepJobMetrics(reg)

	m.IncSuccess("expiry-sweep")
	m.IncSuccess("expiry-sweep")
	m.IncFailure("auto-transfer")
	m.ObserveDuration("expiry-sweep", 120*time.Millisecond)

	if got := testutil.ToFloat64(m.success.WithLabelValues("expiry-sweep")); got != 2 {
		t.Fatalf("unexpected success count: %v", got)
	}
	if got := testutil.ToFloat64(m.failure.WithLabelValues("auto-transfer")); got != 1 {
		t.Fatalf("unexpected failure count: %v", got)
	}
}

func TestSweepJobMetricsNilSafe(t *testing.T) {
	var m *SweepJobMetrics
	m.IncSuccess("x")
	m.IncFailure("x")
	m.ObserveDuration("x", time.Second)

	empty := NewSweepJobMetrics(nil)
	empty.IncSuccess("")
}
