package common

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	log "github.com/echocat/slf4g"
)

// Terminal is where prompts are read from and written to.
var Terminal = struct {
	Stdin  io.ReadCloser
	Stdout io.Writer
}{os.Stdin, os.Stderr}

type settable interface {
	IsZero() bool
	Set(string) error
}

// RequestContentIfRequiredFromTerminal prompts until of is set, unless it
// already was. Secrets are masked.
func RequestContentIfRequiredFromTerminal(of settable, promptName string, canBeEmpty, isSecret bool) error {
	if !of.IsZero() {
		return nil
	}

	l, err := readline.NewEx(&readline.Config{
		Stdin:  Terminal.Stdin,
		Stdout: Terminal.Stdout,
	})
	if err != nil {
		return fmt.Errorf("could not read from terminal for prompt %q: %w", promptName, err)
	}
	defer func() {
		_ = l.Close()
	}()

	prompt := fmt.Sprintf("Enter %s: ", promptName)
	l.SetPrompt(prompt)
	if isSecret {
		l.SetMaskRune('*')
	}
	l.ResetHistory()
	for of.IsZero() {
		var line string
		if isSecret {
			var b []byte
			b, err = l.ReadPassword(prompt)
			line = string(b)
		} else {
			line, err = l.Readline()
		}
		if err != nil {
			return fmt.Errorf("could not read from terminal for prompt %q: %w", promptName, err)
		}
		if err := of.Set(line); err != nil {
			log.WithError(err).
				Error("Illegal input.")
		}
		if canBeEmpty && of.IsZero() {
			return nil
		}
	}
	return nil
}

func RequestStringContentIfRequiredFromTerminal(of *string, promptName string, canBeEmpty, isSecret bool) error {
	buf := trimmedString(*of)
	if err := RequestContentIfRequiredFromTerminal(&buf, promptName, canBeEmpty, isSecret); err != nil {
		return err
	}
	*of = string(buf)
	return nil
}

type trimmedString string

func (v trimmedString) IsZero() bool {
	return len(v) == 0
}

func (v *trimmedString) Set(s string) error {
	*v = trimmedString(strings.TrimSpace(s))
	return nil
}
