package capture

import (
	"context"
	"errors"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/talk-assistant/pkg/metrics"
	"github.com/blaubaer/talk-assistant/pkg/transcript"
)

// Transcriber turns a recorded audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string) (string, error)
}

// StateListener is informed about every state change of a Recorder. It is
// called on the goroutine of the trigger and must return quickly.
type StateListener interface {
	OnCaptureStateChanged(ctx context.Context, state State)
}

// Recorder connects push-to-talk events with the Session: a press starts
// the recording, a release stops it, transcribes the result and enqueues
// the transcript. It is driven by a single trigger goroutine.
type Recorder struct {
	Session     *Session
	Transcriber Transcriber
	Queue       *transcript.Queue
	Listener    StateListener
	Metrics     *metrics.Metrics
}

func (this *Recorder) OnPress(ctx context.Context) {
	if this.Session.State() == StateRecording {
		return
	}
	if err := this.Session.Start(); err != nil {
		log.WithError(err).
			Error("Cannot start recording.")
		return
	}
	this.metrics().RecordingsStarted.Inc()
	this.notify(ctx, StateRecording)
}

func (this *Recorder) OnRelease(ctx context.Context) {
	if this.Session.State() != StateRecording {
		return
	}
	fn, ok, err := this.Session.Stop()
	this.notify(ctx, StateIdle)
	m := this.metrics()
	if err != nil {
		log.WithError(err).
			Error("Cannot persist recording.")
		return
	}
	if !ok {
		m.RecordingsEmpty.Inc()
		return
	}
	m.RecordingsCompleted.Inc()

	text, err := this.Transcriber.Transcribe(ctx, fn)
	if err != nil {
		m.TranscriptionsFailed.Inc()
		log.With("file", fn).
			WithError(err).
			Error("Transcription failed.")
		return
	}

	t := transcript.New(text)
	if !t.HasContent() {
		log.With("file", fn).
			Info("Nothing was recognized in the recording.")
		return
	}

	log.With("transcript", t.Text).
		With("id", t.Id).
		Info("Transcript received.")

	if err := this.Queue.Enqueue(t); errors.Is(err, transcript.ErrClosed) {
		log.With("id", t.Id).
			Warn("Transcript dropped, the queue is already closed.")
		return
	} else if err != nil {
		log.With("id", t.Id).
			WithError(err).
			Error("Cannot enqueue transcript.")
		return
	}
	m.TranscriptsEnqueued.Inc()
	m.QueueLength.Set(float64(this.Queue.Len()))
}

func (this *Recorder) notify(ctx context.Context, state State) {
	if l := this.Listener; l != nil {
		l.OnCaptureStateChanged(ctx, state)
	}
}

func (this *Recorder) metrics() *metrics.Metrics {
	if v := this.Metrics; v != nil {
		return v
	}
	return metrics.Default
}
