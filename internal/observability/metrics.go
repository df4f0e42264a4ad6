package observability

import (
	"github.com/danmuck/safebuf"
	"github.com/prometheus/client_golang/prometheus"
)

// DecodeMetrics counts frame decode outcomes for one run of a decoder.
// Each instance owns its registry so several runs can coexist in a process.
type DecodeMetrics struct {
	registry *prometheus.Registry

	frames       *prometheus.CounterVec
	errors       *prometheus.CounterVec
	bytesRead    prometheus.Counter
	payloadBytes prometheus.Histogram
}

func NewDecodeMetrics() *DecodeMetrics {
	m := &DecodeMetrics{
		registry: prometheus.NewRegistry(),
		frames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "safebuf",
				Subsystem: "decode",
				Name:      "frames_total",
				Help:      "Frames decoded successfully.",
			},
			[]string{"message_type"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "safebuf",
				Subsystem: "decode",
				Name:      "errors_total",
				Help:      "Decode failures by error kind.",
			},
			[]string{"kind"},
		),
		bytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "safebuf",
			Subsystem: "decode",
			Name:      "bytes_total",
			Help:      "Bytes consumed by successful frame decodes.",
		}),
		payloadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "safebuf",
			Subsystem: "decode",
			Name:      "payload_bytes",
			Help:      "Payload size of decoded frames.",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 8),
		}),
	}
	m.registry.MustRegister(m.frames, m.errors, m.bytesRead, m.payloadBytes)
	return m
}

func (m *DecodeMetrics) RecordFrame(messageType string, consumed, payload int) {
	m.frames.WithLabelValues(messageType).Inc()
	m.bytesRead.Add(float64(consumed))
	m.payloadBytes.Observe(float64(payload))
}

// RecordError labels err by its safebuf kind.
func (m *DecodeMetrics) RecordError(err error) {
	if err == nil {
		return
	}
	m.errors.WithLabelValues(safebuf.KindOf(err).String()).Inc()
}

func (m *DecodeMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (m *DecodeMetrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
