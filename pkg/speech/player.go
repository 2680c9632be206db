package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

type Player interface {
	Play(ctx context.Context, filename string) error
}

// CommandPlayer plays a file by running an external command with the
// filename as last argument. Only a zero exit code counts as success.
type CommandPlayer struct {
	Name string
	Args []string
}

func NewCommandPlayer(commandLine string) CommandPlayer {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return CommandPlayer{}
	}
	return CommandPlayer{Name: fields[0], Args: fields[1:]}
}

func DefaultPrimaryPlayer() CommandPlayer {
	return CommandPlayer{Name: "mpg123", Args: []string{"-q"}}
}

func DefaultSecondaryPlayer() CommandPlayer {
	return CommandPlayer{Name: "mpv", Args: []string{"--quiet"}}
}

func (this CommandPlayer) Play(ctx context.Context, filename string) error {
	if this.Name == "" {
		return fmt.Errorf("no player command configured")
	}

	args := append(append([]string{}, this.Args...), filename)
	cmd := exec.CommandContext(ctx, this.Name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s failed: %w: %s", this.Name, err, msg)
		}
		return fmt.Errorf("%s failed: %w", this.Name, err)
	}
	return nil
}

func (this CommandPlayer) String() string {
	return strings.TrimSpace(this.Name + " " + strings.Join(this.Args, " "))
}

// FallbackPlayer tries every player in order until one succeeds.
type FallbackPlayer []Player

func (this FallbackPlayer) Play(ctx context.Context, filename string) error {
	if len(this) == 0 {
		return fmt.Errorf("no player configured")
	}
	var errs []error
	for i, p := range this {
		err := p.Play(ctx, filename)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
		if i+1 < len(this) {
			logPlayerFallback(p, err)
		}
	}
	return errors.Join(errs...)
}
