package trigger

import (
	"context"
	"fmt"
	"strings"
)

// Handler receives push-to-talk events. Both methods are called from the
// goroutine executing Trigger.Run, never concurrently.
type Handler interface {
	OnPress(ctx context.Context)
	OnRelease(ctx context.Context)
}

// Trigger emits push-to-talk events to a Handler until the context is done
// or the source of events ends.
type Trigger interface {
	Run(ctx context.Context, handler Handler) error
}

type Type uint8

const (
	TypeEvdev    = Type(0)
	TypeTerminal = Type(1)

	TypeDefault = TypeEvdev
)

var (
	AllTypes = Types{
		TypeEvdev,
		TypeTerminal,
	}
)

func (this *Type) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "evdev", "mouse", "button":
		*this = TypeEvdev
		return nil
	case "terminal", "keyboard":
		*this = TypeTerminal
		return nil
	default:
		return fmt.Errorf("illegal-trigger-type: %s", plain)
	}
}

func (this Type) String() string {
	v, err := this.MarshalText()
	if err != nil {
		return fmt.Sprintf("illegal-trigger-type-%d", this)
	}
	return string(v)
}

func (this Type) MarshalText() (text []byte, err error) {
	switch this {
	case TypeEvdev:
		return []byte("evdev"), nil
	case TypeTerminal:
		return []byte("terminal"), nil
	default:
		return nil, fmt.Errorf("illegal trigger type: %d", this)
	}
}

func (this *Type) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}

type Types []Type

func (this Types) Strings() []string {
	result := make([]string, len(this))
	for i, v := range this {
		result[i] = v.String()
	}
	return result
}

func (this Types) String() string {
	return strings.Join(this.Strings(), ",")
}
