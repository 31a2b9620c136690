package metrics

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, g.Write(m))
	return m.GetGauge().GetValue()
}

func TestDlqAppendHookUpdatesGaugeAndCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollectors(reg)

	c.DlqAppendHook(3)
	c.DlqAppendHook(7)

	assert.Equal(t, float64(7), gaugeValue(t, c.DlqDepth))

	m := &dto.Metric{}
	require.NoError(t, c.DlqCreated.Write(m))
	assert.Equal(t, float64(2), m.GetCounter().GetValue())
}

func TestFramesRecvCounterVecIsLabeledByChannel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollectors(reg)

	c.FramesRecv.WithLabelValues("0").Inc()
	c.FramesRecv.WithLabelValues("0").Inc()
	c.FramesRecv.WithLabelValues("1").Inc()

	m := &dto.Metric{}
	require.NoError(t, c.FramesRecv.WithLabelValues("0").Write(m))
	assert.Equal(t, float64(2), m.GetCounter().GetValue())
}
