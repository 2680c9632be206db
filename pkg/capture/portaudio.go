package capture

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const DefaultFramesPerBuffer = 1024

// PortAudio captures from the default input device of the host.
type PortAudio struct {
	FramesPerBuffer int

	initialized bool
	mutex       sync.Mutex
}

func (this *PortAudio) Initialize() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	if this.initialized {
		return nil
	}
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("cannot initialize portaudio: %w", err)
	}
	this.initialized = true
	return nil
}

func (this *PortAudio) Dispose() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	if !this.initialized {
		return nil
	}
	this.initialized = false
	return portaudio.Terminate()
}

func (this *PortAudio) Open(format Format, callback func([]int16)) (Stream, error) {
	if err := this.Initialize(); err != nil {
		return nil, err
	}
	format = format.withDefaults()

	fpb := this.FramesPerBuffer
	if fpb <= 0 {
		fpb = DefaultFramesPerBuffer
	}

	stream, err := portaudio.OpenDefaultStream(format.Channels, 0, float64(format.SampleRate), fpb, func(in []int16) {
		callback(in)
	})
	if err != nil {
		return nil, fmt.Errorf("cannot open default portaudio input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return nil, fmt.Errorf("cannot start portaudio input stream: %w", err)
	}

	return &portAudioStream{stream: stream}, nil
}

type portAudioStream struct {
	stream *portaudio.Stream
	once   sync.Once
	err    error
}

func (this *portAudioStream) Close() error {
	this.once.Do(func() {
		stopErr := this.stream.Stop()
		closeErr := this.stream.Close()
		if stopErr != nil {
			this.err = fmt.Errorf("cannot stop portaudio input stream: %w", stopErr)
		} else if closeErr != nil {
			this.err = fmt.Errorf("cannot close portaudio input stream: %w", closeErr)
		}
	})
	return this.err
}
