package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus instruments for the gateway.
type Metrics struct {
	registry *prometheus.Registry

	// Session lifecycle
	SessionsActive  prometheus.Gauge
	SessionsTotal   *prometheus.CounterVec
	SessionDuration prometheus.Histogram

	// Audio streaming
	ChunksTotal     *prometheus.CounterVec
	ChunkBytesTotal prometheus.Counter

	// Agent actions + supplements
	ActionsTotal *prometheus.CounterVec

	// TTS proxy
	TTSDuration prometheus.Histogram

	// Study material
	FlashcardsGenerated *prometheus.CounterVec
}

// New creates a Metrics instance with all instruments registered on a fresh
// registry.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "bizenglish"
	}

	registry := prometheus.NewRegistry()

	sessionsActive := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_active",
		Help:      "Currently registered voice sessions",
	})
	sessionsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_total",
		Help:      "Voice sessions started, by initial status",
	}, []string{"status"})
	sessionDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "session_duration_seconds",
		Help:      "Voice session duration from start to end",
		Buckets:   []float64{10, 30, 60, 120, 300, 600, 1800},
	})

	chunksTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audio_chunks_total",
		Help:      "Audio chunks received, by relay outcome",
	}, []string{"outcome"})
	chunkBytesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audio_bytes_total",
		Help:      "Total audio bytes received",
	})

	actionsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "agent_actions_total",
		Help:      "Agent endpoint actions, by action and result",
	}, []string{"action", "result"})

	ttsDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "tts_duration_seconds",
		Help:      "Text-to-speech proxy latency",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})

	flashcardsGenerated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "flashcards_generated_total",
		Help:      "Flashcards generated, by strategy actually used",
	}, []string{"strategy"})

	registry.MustRegister(
		sessionsActive, sessionsTotal, sessionDuration,
		chunksTotal, chunkBytesTotal,
		actionsTotal, ttsDuration, flashcardsGenerated,
	)

	return &Metrics{
		registry:            registry,
		SessionsActive:      sessionsActive,
		SessionsTotal:       sessionsTotal,
		SessionDuration:     sessionDuration,
		ChunksTotal:         chunksTotal,
		ChunkBytesTotal:     chunkBytesTotal,
		ActionsTotal:        actionsTotal,
		TTSDuration:         ttsDuration,
		FlashcardsGenerated: flashcardsGenerated,
	}
}

// Handler returns the exposition endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
