package capture

import (
	"fmt"
	"sync"

	log "github.com/echocat/slf4g"
)

const DefaultFilename = "recording.wav"

// Session is the push-to-talk recording state machine. Start and Stop are
// expected to be called from one goroutine (the trigger); Append is called
// from the capture callback of the Input.
type Session struct {
	Input    Input
	Format   Format
	Filename string

	state  State
	stream Stream
	mutex  sync.Mutex

	frames       [][]int16
	accepting    bool
	framesMutex  sync.Mutex
	framesLength int
}

func NewSession(input Input) *Session {
	return &Session{
		Input:    input,
		Format:   DefaultFormat(),
		Filename: DefaultFilename,
	}
}

// Start switches from Idle to Recording. If the Session is already
// Recording nothing happens.
func (this *Session) Start() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.state == StateRecording {
		return nil
	}
	if this.Input == nil {
		return ErrNoInput
	}

	this.framesMutex.Lock()
	this.frames = nil
	this.framesLength = 0
	this.accepting = true
	this.framesMutex.Unlock()

	stream, err := this.Input.Open(this.Format.withDefaults(), this.Append)
	if err != nil {
		this.framesMutex.Lock()
		this.accepting = false
		this.framesMutex.Unlock()
		return fmt.Errorf("cannot open audio input: %w", err)
	}

	this.stream = stream
	this.state = StateRecording
	log.Info("Recording started...")
	return nil
}

// Stop switches from Recording to Idle and persists the captured samples as
// WAV file. ok is false if the Session was not Recording or nothing was
// captured; in this case no file was written.
func (this *Session) Stop() (filename string, ok bool, err error) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.state != StateRecording {
		return "", false, nil
	}

	stream := this.stream
	this.stream = nil
	this.state = StateIdle
	if stream != nil {
		if cErr := stream.Close(); cErr != nil {
			log.WithError(cErr).
				Warn("Cannot close audio input cleanly.")
		}
	}

	samples := this.takeFrames()
	if len(samples) == 0 {
		log.Warn("Recording stopped without any captured audio.")
		return "", false, nil
	}

	fn := this.filename()
	if err := writeWav(fn, samples, this.Format.withDefaults()); err != nil {
		return "", false, err
	}

	log.With("file", fn).
		With("samples", len(samples)).
		Info("Recording stopped.")
	return fn, true, nil
}

// Append copies frame into the buffer if the Session is Recording.
func (this *Session) Append(frame []int16) {
	if len(frame) == 0 {
		return
	}
	this.framesMutex.Lock()
	defer this.framesMutex.Unlock()
	if !this.accepting {
		return
	}
	this.frames = append(this.frames, append([]int16(nil), frame...))
	this.framesLength += len(frame)
}

func (this *Session) State() State {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.state
}

// Dispose closes a still open stream without persisting anything.
func (this *Session) Dispose() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.framesMutex.Lock()
	this.accepting = false
	this.frames = nil
	this.framesLength = 0
	this.framesMutex.Unlock()

	this.state = StateIdle
	if stream := this.stream; stream != nil {
		this.stream = nil
		return stream.Close()
	}
	return nil
}

func (this *Session) takeFrames() []int16 {
	this.framesMutex.Lock()
	frames, length := this.frames, this.framesLength
	this.frames, this.framesLength = nil, 0
	this.accepting = false
	this.framesMutex.Unlock()

	result := make([]int16, 0, length)
	for _, frame := range frames {
		result = append(result, frame...)
	}
	return result
}

func (this *Session) filename() string {
	if v := this.Filename; v != "" {
		return v
	}
	return DefaultFilename
}
