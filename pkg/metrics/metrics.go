// ABOUTME: Prometheus metrics for streaming playback sessions
// ABOUTME: All recording methods are safe to call on a nil *Metrics
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "smalltalk"

// Session outcomes
const (
	OutcomeFinished  = "finished"
	OutcomeCancelled = "cancelled"
	OutcomeFailed    = "failed"
)

// Metrics contains all Prometheus metrics for the player
type Metrics struct {
	// Session metrics
	SessionsStarted prometheus.Counter
	SessionsEnded   *prometheus.CounterVec
	ActiveSessions  prometheus.Gauge

	// Stream metrics
	ChunksReceived   prometheus.Counter
	BytesReceived    prometheus.Counter
	SamplesDecoded   prometheus.Counter
	TimeToFirstChunk prometheus.Histogram
	TrailingBytes    *prometheus.CounterVec

	// Scheduling metrics
	SegmentsScheduled prometheus.Counter
	SegmentDuration   prometheus.Histogram
	LateSegments      prometheus.Counter
	OverflowSplits    prometheus.Counter

	// TTS metrics
	TTSRequests *prometheus.CounterVec
}

// New creates the player metrics and registers them with reg.
// A nil reg uses the default Prometheus registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Total number of playback sessions opened",
		}),
		SessionsEnded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_ended_total",
			Help:      "Total number of playback sessions closed, by outcome",
		}, []string{"outcome"}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Current number of open playback sessions",
		}),

		ChunksReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_received_total",
			Help:      "Total number of byte-stream chunks ingested",
		}),
		BytesReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_received_total",
			Help:      "Total number of byte-stream bytes ingested",
		}),
		SamplesDecoded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_decoded_total",
			Help:      "Total number of samples decoded",
		}),
		TimeToFirstChunk: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "time_to_first_chunk_seconds",
			Help:      "Time from session open to the first chunk",
			Buckets:   []float64{0.05, 0.1, 0.2, 0.3, 0.5, 0.75, 1, 2, 5},
		}),
		TrailingBytes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trailing_bytes_total",
			Help:      "Partial-sample bytes left at end of stream, by action",
		}, []string{"action"}),

		SegmentsScheduled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_scheduled_total",
			Help:      "Total number of segments handed to the output",
		}),
		SegmentDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "segment_duration_seconds",
			Help:      "Playback length of scheduled segments",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
		}),
		LateSegments: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "late_segments_total",
			Help:      "Total number of segments scheduled after their start time had passed",
		}),
		OverflowSplits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overflow_splits_total",
			Help:      "Total number of decoded batches split to fit the sample buffer",
		}),

		TTSRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tts_requests_total",
			Help:      "Total number of TTS stream requests, by transport and result",
		}, []string{"transport", "result"}),
	}
}

// SessionStarted records a newly opened session
func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.SessionsStarted.Inc()
	m.ActiveSessions.Inc()
}

// SessionEnded records a closed session with its outcome
func (m *Metrics) SessionEnded(outcome string) {
	if m == nil {
		return
	}
	m.SessionsEnded.WithLabelValues(outcome).Inc()
	m.ActiveSessions.Dec()
}

// ChunkIngested records one chunk and the samples it produced
func (m *Metrics) ChunkIngested(bytes, samples int) {
	if m == nil {
		return
	}
	m.ChunksReceived.Inc()
	m.BytesReceived.Add(float64(bytes))
	m.SamplesDecoded.Add(float64(samples))
}

// FirstChunk records the latency to the first chunk of a session
func (m *Metrics) FirstChunk(d time.Duration) {
	if m == nil {
		return
	}
	m.TimeToFirstChunk.Observe(d.Seconds())
}

// Trailing records partial-sample bytes that were padded or dropped
func (m *Metrics) Trailing(action string, bytes int) {
	if m == nil || bytes == 0 {
		return
	}
	m.TrailingBytes.WithLabelValues(action).Add(float64(bytes))
}

// SegmentScheduled records one segment handed to the output
func (m *Metrics) SegmentScheduled(d time.Duration, late bool) {
	if m == nil {
		return
	}
	m.SegmentsScheduled.Inc()
	m.SegmentDuration.Observe(d.Seconds())
	if late {
		m.LateSegments.Inc()
	}
}

// Splits records batches split to stay within the sample buffer
func (m *Metrics) Splits(n int) {
	if m == nil || n == 0 {
		return
	}
	m.OverflowSplits.Add(float64(n))
}

// TTSRequest records a TTS stream request
func (m *Metrics) TTSRequest(transport string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.TTSRequests.WithLabelValues(transport, result).Inc()
}
