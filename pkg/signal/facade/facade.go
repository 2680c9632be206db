package facade

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/talk-assistant/pkg/capture"
	"github.com/blaubaer/talk-assistant/pkg/signal"
	"github.com/blaubaer/talk-assistant/pkg/signal/homeassistant"
	"github.com/blaubaer/talk-assistant/pkg/signal/hue"
)

// Facade holds the configured Signal, if any, and follows the state of the
// capture session. The Signal is driven by its own goroutine, so a slow
// bridge never delays the caller; if states arrive faster than the Signal
// follows, only the newest pending one is shown. Failures of the Signal are
// only logged.
type Facade struct {
	signal.Signal

	lock sync.RWMutex

	followLock sync.Mutex
	pending    chan signal.Context
	followDone chan struct{}
}

func (this *Facade) Ensure(c signal.Context) error {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if v := this.Signal; v != nil {
		return v.Ensure(c)
	}
	return nil
}

func (this *Facade) Update() error {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if v := this.Signal; v != nil {
		return v.Update()
	}
	return nil
}

func (this *Facade) OnCaptureStateChanged(_ context.Context, state capture.State) {
	target := signal.StateOf(state)
	var since time.Time
	if target == signal.StateOn {
		since = time.Now()
	}

	if this.GetType() == signal.TypeNone {
		return
	}

	this.followLock.Lock()
	defer this.followLock.Unlock()

	if this.pending == nil {
		this.pending = make(chan signal.Context, 1)
		this.followDone = make(chan struct{})
		go this.follow(this.pending, this.followDone)
	}
	select {
	case <-this.pending:
	default:
	}
	this.pending <- signal.NewContext(target, since)
}

func (this *Facade) follow(pending <-chan signal.Context, done chan<- struct{}) {
	defer close(done)
	for c := range pending {
		if err := this.Ensure(c); err != nil {
			log.With("state", c.State()).
				With("signal", this.GetType()).
				WithError(err).
				Warn("Cannot ensure signal state.")
		}
	}
}

// stopFollowing waits until the last pending state was passed to the Signal.
func (this *Facade) stopFollowing() {
	this.followLock.Lock()
	defer this.followLock.Unlock()

	if this.pending == nil {
		return
	}
	close(this.pending)
	<-this.followDone
	this.pending, this.followDone = nil, nil
}

func (this *Facade) Initialize(conf *Configuration, saveConfFunc func() error) error {
	this.lock.Lock()
	defer this.lock.Unlock()

	if this.Signal != nil {
		return nil
	}

	switch conf.Type {
	case signal.TypeNone:
		return nil
	case signal.TypeHue:
		var buf hue.Hue
		if err := buf.Initialize(&conf.Hue, saveConfFunc); err != nil {
			return err
		}
		this.Signal = &buf
	case signal.TypeHomeAssistant:
		var buf homeassistant.Homeassistant
		if err := buf.Initialize(&conf.HomeAssistant, saveConfFunc); err != nil {
			return err
		}
		this.Signal = &buf
	default:
		return fmt.Errorf("unsupported signal type: %v", conf.Type)
	}

	log.With("signal", conf.Type).
		Info("Recording indicator ready.")
	return nil
}

// Dispose switches the Signal off before it is released.
func (this *Facade) Dispose() (rErr error) {
	this.stopFollowing()

	if err := this.Ensure(signal.NewContext(signal.StateOff, time.Time{})); err != nil {
		rErr = err
	}

	this.lock.Lock()
	defer this.lock.Unlock()

	defer func() {
		this.Signal = nil
	}()

	if v := this.Signal; v != nil {
		if err := v.Dispose(); err != nil && rErr == nil {
			rErr = err
		}
	}
	return rErr
}

func (this *Facade) GetType() signal.Type {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if v := this.Signal; v != nil {
		return v.GetType()
	}

	return signal.TypeNone
}
