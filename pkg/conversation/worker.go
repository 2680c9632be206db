package conversation

import (
	"context"
	"errors"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/talk-assistant/pkg/metrics"
	"github.com/blaubaer/talk-assistant/pkg/transcript"
)

// Worker is the single consumer of the transcript queue. It folds every
// transcript into the window and dispatches the resulting prompt, strictly
// one after another in arrival order.
type Worker struct {
	Queue      *transcript.Queue
	Window     *Window
	Dispatcher *Dispatcher
	Metrics    *metrics.Metrics
}

// Run consumes until ctx is done or the queue is closed and drained. A
// failing item never ends the loop.
func (this *Worker) Run(ctx context.Context) error {
	m := this.Metrics
	if m == nil {
		m = metrics.Default
	}

	for {
		v, err := this.Queue.Dequeue(ctx)
		if errors.Is(err, transcript.ErrClosed) {
			log.Debug("Transcript queue closed.")
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				log.Debug("Transcript consumption interrupted.")
				return nil
			}
			return err
		}
		m.QueueLength.Set(float64(this.Queue.Len()))

		this.process(ctx, v, m)
	}
}

func (this *Worker) process(ctx context.Context, v transcript.Transcript, m *metrics.Metrics) {
	logger := log.With("transcript", v.Id)

	this.Window.Record(v)
	prompt := this.Window.BuildPrompt()

	logger.With("contextSize", this.Window.Len()).
		Debug("Transcript recorded, dispatching prompt...")

	m.TranscriptsProcessed.Inc()
	if err := this.Dispatcher.Dispatch(ctx, prompt); err != nil {
		m.DispatchesFailed.Inc()
		logger.WithError(err).
			Error("Cannot deliver prompt. Continue with next transcript.")
	}
}
