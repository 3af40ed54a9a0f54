// Package metric defines the metrics registry collaborator spec.md treats
// as out-of-scope/interface-only (§1) but that the ambient stack still
// needs: a run surfaces frame throughput, sink publish failures, and
// pipeline errors the way any long-running service does. Grounded on
// C360Studio-semstreams/metric.Metrics, trimmed from that package's full
// platform-wide metric set down to the counters/gauges this pipeline's own
// components emit.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every metric a bot run emits and the Prometheus registry
// they are registered against.
type Registry struct {
	prometheusRegistry *prometheus.Registry

	FramesIngested    *prometheus.CounterVec
	FrameLatency      prometheus.Histogram
	BotMessagesSent   *prometheus.CounterVec
	SinkPublishErrors *prometheus.CounterVec
	PipelineErrors    *prometheus.CounterVec
	IntervalDropped   *prometheus.CounterVec
}

// NewRegistry builds a Registry with every metric registered against a
// fresh prometheus.Registry.
func NewRegistry() *Registry {
	r := &Registry{
		prometheusRegistry: prometheus.NewRegistry(),

		FramesIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "satori_video",
			Subsystem: "source",
			Name:      "frames_ingested_total",
			Help:      "Total number of encoded frames read from a source, by source kind.",
		}, []string{"source_kind"}),

		FrameLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "satori_video",
			Subsystem: "pipeline",
			Name:      "frame_latency_seconds",
			Help:      "Latency from EncodedFrame.CreationTime to decode completion, in seconds.",
			Buckets:   prometheus.DefBuckets,
		}),

		BotMessagesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "satori_video",
			Subsystem: "bot",
			Name:      "messages_total",
			Help:      "Total number of bot output messages, by kind (analysis/control/debug).",
		}, []string{"kind"}),

		SinkPublishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "satori_video",
			Subsystem: "sink",
			Name:      "publish_errors_total",
			Help:      "Total number of sink publish/write failures, by sink kind.",
		}, []string{"sink_kind"}),

		PipelineErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "satori_video",
			Subsystem: "pipeline",
			Name:      "errors_total",
			Help:      "Total number of pipeline-terminating errors, by video error kind.",
		}, []string{"error_kind"}),

		IntervalDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "satori_video",
			Subsystem: "stream",
			Name:      "interval_dropped_total",
			Help:      "Total number of items dropped by a drop-oldest/drop-newest Interval operator.",
		}, []string{"policy"}),
	}

	r.prometheusRegistry.MustRegister(
		r.FramesIngested,
		r.FrameLatency,
		r.BotMessagesSent,
		r.SinkPublishErrors,
		r.PipelineErrors,
		r.IntervalDropped,
	)
	return r
}

// Prometheus returns the underlying *prometheus.Registry, for wiring into
// internal/health's /metrics handler.
func (r *Registry) Prometheus() *prometheus.Registry { return r.prometheusRegistry }

// ObserveFrameLatency records the time between a frame's creation and its
// arrival at this observation point.
func (r *Registry) ObserveFrameLatency(created time.Time, now time.Time) {
	r.FrameLatency.Observe(now.Sub(created).Seconds())
}
