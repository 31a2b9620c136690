// Package metrics exports Prometheus counters/gauges for the TNC's
// internal queues and channel activity — a domain-stack enrichment
// beyond the distilled spec (SPEC_FULL.md §3), grounded on the
// counter/gauge conventions used by the pack's snapetech-plexTuner and
// flowpbx-flowpbx repos, built on prometheus/client_golang.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors bundles every metric this TNC exports; cmd/direwolfd
// registers it once against its own prometheus.NewRegistry() and wires
// DlqAppendHook into dlq.Queue. Nothing in this module updates the
// other collectors, so they are exported at zero.
type Collectors struct {
	DlqDepth       prometheus.Gauge
	FramesRecv     *prometheus.CounterVec // labeled by channel
	FramesXmit     *prometheus.CounterVec // labeled by channel
	CSMADeferred   *prometheus.CounterVec // labeled by channel
	DlqCreated     prometheus.Counter
	DlqConsumed    prometheus.Counter
	PTTOnSeconds   *prometheus.HistogramVec // labeled by channel
}

// NewCollectors builds and registers every metric against reg.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		DlqDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "direwolf",
			Name:      "dlq_depth",
			Help:      "Current number of items queued for AppDispatcher.",
		}),
		FramesRecv: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "direwolf",
			Name:      "frames_received_total",
			Help:      "Frames successfully decoded per channel.",
		}, []string{"channel"}),
		FramesXmit: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "direwolf",
			Name:      "frames_transmitted_total",
			Help:      "Frames transmitted per channel.",
		}, []string{"channel"}),
		CSMADeferred: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "direwolf",
			Name:      "csma_deferrals_total",
			Help:      "Times a channel deferred transmission because the channel was busy.",
		}, []string{"channel"}),
		DlqCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "direwolf",
			Name:      "dlq_items_created_total",
			Help:      "Items ever appended to the delivery queue.",
		}),
		DlqConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "direwolf",
			Name:      "dlq_items_consumed_total",
			Help:      "Items ever removed from the delivery queue by AppDispatcher.",
		}),
		PTTOnSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "direwolf",
			Name:      "ptt_on_seconds",
			Help:      "Duration PTT was asserted per transmission.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2, 5, 10},
		}, []string{"channel"}),
	}
	reg.MustRegister(c.DlqDepth, c.FramesRecv, c.FramesXmit, c.CSMADeferred, c.DlqCreated, c.DlqConsumed, c.PTTOnSeconds)
	return c
}

// DlqAppendHook adapts DlqDepth/DlqCreated to dlq.WithAppendHook's
// func(depth int) signature without metrics depending on dlq.
func (c *Collectors) DlqAppendHook(depth int) {
	c.DlqDepth.Set(float64(depth))
	c.DlqCreated.Inc()
}
