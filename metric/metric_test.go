package metric

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordHelpers(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("formatted", "no")
	m.RecordRequest("formatted", "no")
	m.RecordRequest("rejected", "en")
	m.RecordReject("extract")
	m.RecordModelFallback()
	m.RecordStageDuration("plan", 5*time.Millisecond)
	m.RecordRows(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("formatted", "no")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("rejected", "en")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RejectsTotal.WithLabelValues("extract")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ModelFallbacks))
}

func TestNewRegistryGathers(t *testing.T) {
	reg := NewRegistry()
	reg.Metrics.RecordRequest("formatted", "no")

	families, err := reg.PrometheusRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["semquery_pipeline_requests_total"])
	assert.True(t, names["go_goroutines"])
}
