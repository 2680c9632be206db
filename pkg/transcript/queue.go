package transcript

import (
	"context"
	"errors"
	"sync"
)

var ErrClosed = errors.New("transcript queue closed")

// Queue is an unbounded FIFO hand-off between any number of producers and
// exactly one consumer.
type Queue struct {
	items  []Transcript
	closed bool

	// signal holds at most one pending wake-up for the consumer.
	signal chan struct{}
	mutex  sync.Mutex
	once   sync.Once
}

func NewQueue() *Queue {
	var result Queue
	result.init()
	return &result
}

func (this *Queue) init() {
	this.once.Do(func() {
		this.signal = make(chan struct{}, 1)
	})
}

func (this *Queue) Enqueue(v Transcript) error {
	this.init()

	this.mutex.Lock()
	if this.closed {
		this.mutex.Unlock()
		return ErrClosed
	}
	this.items = append(this.items, v)
	this.mutex.Unlock()

	this.notify()
	return nil
}

// Dequeue blocks until an item is available, the context is done or the
// queue was closed and fully drained.
func (this *Queue) Dequeue(ctx context.Context) (Transcript, error) {
	this.init()

	for {
		this.mutex.Lock()
		if len(this.items) > 0 {
			result := this.items[0]
			this.items[0] = Transcript{}
			this.items = this.items[1:]
			if len(this.items) == 0 {
				// Release the backing array once drained.
				this.items = nil
			}
			this.mutex.Unlock()
			return result, nil
		}
		closed := this.closed
		this.mutex.Unlock()

		if closed {
			return Transcript{}, ErrClosed
		}

		select {
		case <-ctx.Done():
			return Transcript{}, ctx.Err()
		case <-this.signal:
		}
	}
}

func (this *Queue) Close() {
	this.init()

	this.mutex.Lock()
	this.closed = true
	this.mutex.Unlock()

	this.notify()
}

func (this *Queue) Len() int {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return len(this.items)
}

func (this *Queue) notify() {
	select {
	case this.signal <- struct{}{}:
	default:
	}
}
