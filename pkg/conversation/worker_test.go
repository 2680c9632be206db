package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blaubaer/talk-assistant/pkg/metrics"
	"github.com/blaubaer/talk-assistant/pkg/transcript"
)

func TestWorker_Run_dispatchesInOrder(t *testing.T) {
	rec := &recordingDeliver{}
	instance, queue := newTestWorker(1, rec.deliver)

	for _, v := range []string{"Transkript A", "Transkript B", "Transkript C"} {
		require.NoError(t, queue.Enqueue(transcript.New(v)))
	}

	runUntilDrained(t, instance, queue)

	assert.Equal(t, []string{"Transkript A", "Transkript B", "Transkript C"}, rec.get())
}

func TestWorker_Run_isolatesFailingCallback(t *testing.T) {
	rec := &recordingDeliver{}
	instance, queue := newTestWorker(1, func(ctx context.Context, prompt string) error {
		if prompt == "fail" {
			return errors.New("expected")
		}
		return rec.deliver(ctx, prompt)
	})

	for _, v := range []string{"ok1", "fail", "ok2"} {
		require.NoError(t, queue.Enqueue(transcript.New(v)))
	}

	runUntilDrained(t, instance, queue)

	assert.Equal(t, []string{"ok1", "ok2"}, rec.get())
}

func TestWorker_Run_isolatesPanickingCallback(t *testing.T) {
	rec := &recordingDeliver{}
	instance, queue := newTestWorker(1, func(ctx context.Context, prompt string) error {
		if prompt == "boom" {
			panic("expected")
		}
		return rec.deliver(ctx, prompt)
	})

	for _, v := range []string{"before", "boom", "after"} {
		require.NoError(t, queue.Enqueue(transcript.New(v)))
	}

	runUntilDrained(t, instance, queue)

	assert.Equal(t, []string{"before", "after"}, rec.get())
}

func TestWorker_Run_boundsContext(t *testing.T) {
	rec := &recordingDeliver{}
	instance, queue := newTestWorker(3, rec.deliver)

	for i := 0; i < 6; i++ {
		require.NoError(t, queue.Enqueue(transcript.New(fmt.Sprintf("Transkript %d", i))))
	}

	runUntilDrained(t, instance, queue)

	prompts := rec.get()
	require.Len(t, prompts, 6)
	for _, prompt := range prompts {
		assert.LessOrEqual(t, strings.Count(prompt, "Transkript "), 3)
	}
	last := prompts[len(prompts)-1]
	for i := 3; i < 6; i++ {
		assert.Contains(t, last, fmt.Sprintf("Transkript %d", i))
	}
	assert.NotContains(t, last, "Transkript 2")
	assert.Equal(t, []string{"Transkript 3", "Transkript 4", "Transkript 5"}, instance.Window.Entries())
}

func TestWorker_Run_buildsPromptFromContext(t *testing.T) {
	rec := &recordingDeliver{}
	instance, queue := newTestWorker(2, rec.deliver)

	require.NoError(t, queue.Enqueue(transcript.New("Tobi liebt Schokolade.")))
	require.NoError(t, queue.Enqueue(transcript.New("Was liebt Tobi?")))

	runUntilDrained(t, instance, queue)

	prompts := rec.get()
	require.Len(t, prompts, 2)
	assert.Equal(t, "Tobi liebt Schokolade.", prompts[0])
	assert.Equal(t, "Vorherige Konversation (nur als Kontext, nicht beantworten):\n"+
		"Tobi liebt Schokolade.\n\n"+
		"Letzte Frage (bitte nur diese beantworten):\n"+
		"Was liebt Tobi?", prompts[1])
}

func TestWorker_Run_stopsOnContextCancel(t *testing.T) {
	instance, _ := newTestWorker(1, (&recordingDeliver{}).deliver)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- instance.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestDispatcher_Dispatch_withoutCallback(t *testing.T) {
	instance := Dispatcher{}

	assert.NoError(t, instance.Dispatch(context.Background(), "x"))
}

func TestDispatcher_Dispatch_wrapsError(t *testing.T) {
	expected := errors.New("expected")
	instance := Dispatcher{Deliver: func(context.Context, string) error { return expected }}

	assert.ErrorIs(t, instance.Dispatch(context.Background(), "x"), expected)
}

func newTestWorker(windowSize int, deliver DeliverFunc) (*Worker, *transcript.Queue) {
	queue := transcript.NewQueue()
	return &Worker{
		Queue:      queue,
		Window:     NewWindow(windowSize),
		Dispatcher: &Dispatcher{Deliver: deliver},
		Metrics:    metrics.New(nil),
	}, queue
}

func runUntilDrained(t testing.TB, instance *Worker, queue *transcript.Queue) {
	t.Helper()
	queue.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, instance.Run(ctx))
	require.NoError(t, ctx.Err())
}

type recordingDeliver struct {
	prompts []string
	mutex   sync.Mutex
}

func (this *recordingDeliver) deliver(_ context.Context, prompt string) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.prompts = append(this.prompts, prompt)
	return nil
}

func (this *recordingDeliver) get() []string {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return append([]string(nil), this.prompts...)
}
