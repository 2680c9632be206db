package trigger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	log "github.com/echocat/slf4g"
)

const (
	terminalPromptIdle      = "[enter] talk, [q] quit > "
	terminalPromptRecording = "[enter] stop recording > "
)

// Terminal toggles recording with the enter key. Terminals do not report
// key releases, so the first enter starts and the second one stops.
type Terminal struct {
	Stdin  io.ReadCloser
	Stdout io.Writer

	newLineReader func(*readline.Config) (lineReader, error)
}

type lineReader interface {
	Readline() (string, error)
	SetPrompt(string)
	Close() error
}

func (this *Terminal) Run(ctx context.Context, handler Handler) error {
	lr, err := this.open()
	if err != nil {
		return fmt.Errorf("cannot open terminal for push-to-talk: %w", err)
	}

	var closeOnce sync.Once
	closeReader := func() {
		closeOnce.Do(func() { _ = lr.Close() })
	}
	defer closeReader()

	stop := context.AfterFunc(ctx, closeReader)
	defer stop()

	recording := false
	defer func() {
		if recording {
			handler.OnRelease(ctx)
		}
	}()

	for {
		if recording {
			lr.SetPrompt(terminalPromptRecording)
		} else {
			lr.SetPrompt(terminalPromptIdle)
		}

		line, err := lr.Readline()
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			log.Debug("Terminal closed.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("cannot read from terminal: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "q", "quit", "exit":
			return nil
		}

		if recording {
			recording = false
			handler.OnRelease(ctx)
		} else {
			recording = true
			handler.OnPress(ctx)
		}
	}
}

func (this *Terminal) open() (lineReader, error) {
	stdin := this.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	stdout := this.Stdout
	if stdout == nil {
		stdout = os.Stderr
	}
	conf := &readline.Config{
		Prompt: terminalPromptIdle,
		Stdin:  stdin,
		Stdout: stdout,
	}
	if f := this.newLineReader; f != nil {
		return f(conf)
	}
	return readline.NewEx(conf)
}
