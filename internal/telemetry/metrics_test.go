package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, families []*dto.MetricFamily, name string) float64 {
	t.Helper()
	for _, mf := range families {
		if mf.GetName() == name {
			require.NotEmpty(t, mf.Metric)
			return mf.Metric[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric family %s not found", name)
	return 0
}

func TestMetricsCount(t *testing.T) {
	m := NewMetrics()
	m.InstrumentsProcessed.Inc()
	m.InstrumentsProcessed.Inc()
	m.InstrumentsSkipped.Inc()
	m.SignalsEmitted.WithLabelValues("LAUNCHPAD").Inc()
	m.TradesRecorded.Add(5)

	families, err := m.Gather().Gather()
	require.NoError(t, err)

	assert.Equal(t, 2.0, counterValue(t, families, "quant_instruments_processed_total"))
	assert.Equal(t, 1.0, counterValue(t, families, "quant_instruments_skipped_total"))
	assert.Equal(t, 5.0, counterValue(t, families, "quant_trades_recorded_total"))

	for _, mf := range families {
		if mf.GetName() == "quant_signals_emitted_total" {
			require.Len(t, mf.Metric, 1)
			require.Len(t, mf.Metric[0].Label, 1)
			assert.Equal(t, "signal", mf.Metric[0].Label[0].GetName())
			assert.Equal(t, "LAUNCHPAD", mf.Metric[0].Label[0].GetValue())
		}
	}
}

func TestIndependentRegistries(t *testing.T) {
	// Each metrics set owns its registry, so parallel runs and repeated
	// tests never collide on registration.
	a := NewMetrics()
	b := NewMetrics()
	a.InstrumentsProcessed.Inc()

	families, err := b.Gather().Gather()
	require.NoError(t, err)
	assert.Equal(t, 0.0, counterValue(t, families, "quant_instruments_processed_total"))
}

func TestHandlerRoutes(t *testing.T) {
	m := NewMetrics()
	m.BootstrapRuns.Inc()
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}
