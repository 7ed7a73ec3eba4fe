package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegistryCounters(t *testing.T) {
	r := NewRegistry()

	r.OracleLookup("yahoo", "hit")
	r.OracleLookup("yahoo", "hit")
	r.OracleLookup("yahoo", "miss")
	r.Scored("resolved")
	r.Ingested("claude", "saved")
	r.Violations("claude", 3)
	r.Violations("claude", 0)
	r.Trade("open", 25000)
	r.ObserveStep("score", time.Now(), errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.OracleLookups.WithLabelValues("yahoo", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.OracleLookups.WithLabelValues("yahoo", "miss")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.ValidationWarnings.WithLabelValues("claude")))
	assert.Equal(t, 25000.0, testutil.ToFloat64(r.SimulatorBalance))
	assert.Equal(t, 1, testutil.CollectAndCount(r.StepDuration))
}

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.OracleLookup("yahoo", "hit")
		r.Scored("resolved")
		r.Trade("close", 1)
		r.ObserveStep("score", time.Now(), nil)
	})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.Trade("open", 25000)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "arena_simulator_balance 25000")
}
