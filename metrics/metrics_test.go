package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveBackendCall(t *testing.T) {
	m := New()

	m.ObserveBackendCall("gemini-1.5-pro-latest", "ok")
	m.ObserveBackendCall("gemini-1.5-pro-latest", "ok")
	m.ObserveBackendCall("gemini-1.5-flash-latest", "error")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BackendCalls.WithLabelValues("gemini-1.5-pro-latest", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackendCalls.WithLabelValues("gemini-1.5-flash-latest", "error")))
}

func TestIncrementRecordsAppended(t *testing.T) {
	m := New()

	m.IncrementRecordsAppended()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsAppended))
}

func TestIndependentRegistries(t *testing.T) {
	// Each Metrics owns its registry so tests and services never collide
	a := New()
	b := New()
	assert.NotSame(t, a.Registry(), b.Registry())
}
