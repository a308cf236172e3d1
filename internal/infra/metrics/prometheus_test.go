package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_ObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest("/api/v1/tests", "GET", 200, 10*time.Millisecond)
	m.ObserveRequest("/api/v1/tests", "GET", 200, 20*time.Millisecond)
	m.ObserveRequest("", "GET", 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/v1/tests", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("unmatched", "GET", "404")))
}

func TestMetrics_ObserveDependency(t *testing.T) {
	m := New()
	m.ObserveDependency("config_api", "create", nil, time.Millisecond)
	m.ObserveDependency("config_api", "create", errors.New("boom"), time.Millisecond)

	expected := `
# HELP test_manager_dependency_calls_total Outbound calls to external dependencies, by dependency, operation and outcome.
# TYPE test_manager_dependency_calls_total counter
test_manager_dependency_calls_total{dependency="config_api",op="create",outcome="error"} 1
test_manager_dependency_calls_total{dependency="config_api",op="create",outcome="ok"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "test_manager_dependency_calls_total"))
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("/x", "GET", 200, time.Millisecond)
		m.ObserveDependency("s3", "put", nil, time.Millisecond)
	})
}
