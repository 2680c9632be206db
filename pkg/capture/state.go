package capture

import (
	"fmt"
	"strings"
)

type State uint8

const (
	StateIdle      = State(0)
	StateRecording = State(1)
)

func (this *State) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "idle":
		*this = StateIdle
		return nil
	case "recording":
		*this = StateRecording
		return nil
	default:
		return fmt.Errorf("illegal-capture-state: %s", plain)
	}
}

func (this State) String() string {
	v, err := this.MarshalText()
	if err != nil {
		return fmt.Sprintf("illegal-capture-state-%d", this)
	}
	return string(v)
}

func (this State) MarshalText() (text []byte, err error) {
	switch this {
	case StateIdle:
		return []byte("idle"), nil
	case StateRecording:
		return []byte("recording"), nil
	default:
		return nil, fmt.Errorf("illegal capture state: %d", this)
	}
}

func (this *State) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}
