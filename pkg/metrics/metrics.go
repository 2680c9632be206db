package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "talk_assistant"

type Metrics struct {
	RecordingsStarted   prometheus.Counter
	RecordingsCompleted prometheus.Counter
	RecordingsEmpty     prometheus.Counter

	TranscriptionsFailed prometheus.Counter
	TranscriptsEnqueued  prometheus.Counter
	TranscriptsProcessed prometheus.Counter
	QueueLength          prometheus.Gauge

	DispatchesFailed prometheus.Counter

	SynthesisLatency prometheus.Histogram
	PlaybacksTotal   prometheus.Counter
	PlaybacksFailed  *prometheus.CounterVec
}

var Default = New(prometheus.DefaultRegisterer)

// New creates all metrics and registers them at the given registerer. A nil
// registerer creates unregistered metrics.
func New(registerer prometheus.Registerer) *Metrics {
	f := promauto.With(registerer)
	return &Metrics{
		RecordingsStarted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recordings_started_total",
			Help:      "Number of push-to-talk recordings started.",
		}),
		RecordingsCompleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recordings_completed_total",
			Help:      "Number of push-to-talk recordings stopped and persisted.",
		}),
		RecordingsEmpty: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recordings_empty_total",
			Help:      "Number of recordings stopped without any captured audio.",
		}),
		TranscriptionsFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcriptions_failed_total",
			Help:      "Number of recordings which could not be transcribed.",
		}),
		TranscriptsEnqueued: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcripts_enqueued_total",
			Help:      "Number of transcripts handed to the queue.",
		}),
		TranscriptsProcessed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcripts_processed_total",
			Help:      "Number of transcripts taken from the queue and dispatched.",
		}),
		QueueLength: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_length",
			Help:      "Number of transcripts waiting to be processed.",
		}),
		DispatchesFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatches_failed_total",
			Help:      "Number of prompts whose delivery callback failed.",
		}),
		SynthesisLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "synthesis_duration_seconds",
			Help:      "Duration of speech synthesis calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
		PlaybacksTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playbacks_total",
			Help:      "Number of text blocks handed to speech playback.",
		}),
		PlaybacksFailed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playbacks_failed_total",
			Help:      "Number of text blocks which could not be played.",
		}, []string{"reason"}),
	}
}
