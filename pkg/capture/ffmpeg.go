package capture

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/echocat/slf4g"
)

const (
	DefaultFfmpegCommand     = "ffmpeg"
	DefaultFfmpegInputFormat = "pulse"
	DefaultFfmpegInputDevice = "default"
)

// Ffmpeg captures audio by running ffmpeg and reading raw s16le PCM from
// its stdout.
type Ffmpeg struct {
	Command         string
	InputFormat     string
	InputDevice     string
	FramesPerBuffer int

	// StartupGrace is how long Open waits for an early exit of ffmpeg.
	StartupGrace time.Duration
	StopTimeout  time.Duration
}

func (this *Ffmpeg) Open(format Format, callback func([]int16)) (Stream, error) {
	format = format.withDefaults()

	cmd := exec.Command(this.command(), this.args(format)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	result := &ffmpegStream{
		process:     cmd.Process,
		stdout:      stdout,
		stderr:      &stderr,
		waitErr:     make(chan error, 1),
		readDone:    make(chan struct{}),
		stopTimeout: this.stopTimeout(),
	}

	go result.pump(format, this.framesPerBuffer(), callback)
	go func() {
		<-result.readDone
		result.waitErr <- cmd.Wait()
		close(result.waitErr)
	}()

	select {
	case err := <-result.waitErr:
		if err != nil {
			return nil, fmt.Errorf("ffmpeg exited before capture started: %w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return nil, errors.New("ffmpeg exited before capture started")
	case <-time.After(this.startupGrace()):
	}

	return result, nil
}

func (this *Ffmpeg) args(format Format) []string {
	inputFormat := this.InputFormat
	if inputFormat == "" {
		inputFormat = DefaultFfmpegInputFormat
	}
	inputDevice := this.InputDevice
	if inputDevice == "" {
		inputDevice = DefaultFfmpegInputDevice
	}
	return []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", inputFormat,
		"-i", inputDevice,
		"-ac", strconv.Itoa(format.Channels),
		"-ar", strconv.Itoa(format.SampleRate),
		"-f", "s16le",
		"-",
	}
}

func (this *Ffmpeg) command() string {
	if v := this.Command; v != "" {
		return v
	}
	return DefaultFfmpegCommand
}

func (this *Ffmpeg) framesPerBuffer() int {
	if v := this.FramesPerBuffer; v > 0 {
		return v
	}
	return DefaultFramesPerBuffer
}

func (this *Ffmpeg) startupGrace() time.Duration {
	if v := this.StartupGrace; v > 0 {
		return v
	}
	return 250 * time.Millisecond
}

func (this *Ffmpeg) stopTimeout() time.Duration {
	if v := this.StopTimeout; v > 0 {
		return v
	}
	return 1200 * time.Millisecond
}

type ffmpegStream struct {
	process *os.Process
	stdout  io.ReadCloser
	stderr  *bytes.Buffer

	waitErr     chan error
	readDone    chan struct{}
	stopTimeout time.Duration

	stopOnce sync.Once
	stopErr  error
}

func (this *ffmpegStream) pump(format Format, framesPerBuffer int, callback func([]int16)) {
	defer close(this.readDone)

	buf := make([]byte, framesPerBuffer*format.Channels*2)
	for {
		n, err := io.ReadFull(this.stdout, buf)
		if n >= 2 {
			frame := make([]int16, n/2)
			for i := range frame {
				frame[i] = int16(binary.LittleEndian.Uint16(buf[i*2:]))
			}
			callback(frame)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, os.ErrClosed) {
				log.WithError(err).
					Debug("Reading from ffmpeg ended.")
			}
			return
		}
	}
}

func (this *ffmpegStream) Close() error {
	this.stopOnce.Do(func() {
		_ = this.process.Signal(os.Interrupt)

		select {
		case err, ok := <-this.waitErr:
			if ok {
				this.stopErr = normalizeFfmpegStopErr(err)
			}
		case <-time.After(this.stopTimeout):
			_ = this.process.Kill()
			_ = this.stdout.Close()
			if err, ok := <-this.waitErr; ok {
				this.stopErr = normalizeFfmpegStopErr(err)
			}
		}

		if this.stopErr != nil && this.stderr.Len() > 0 {
			this.stopErr = fmt.Errorf("%w: %s", this.stopErr, strings.TrimSpace(this.stderr.String()))
		}
	})
	return this.stopErr
}

func normalizeFfmpegStopErr(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}
