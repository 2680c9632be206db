package capture

import (
	"errors"
	"fmt"
	"strings"

	"dario.cat/mergo"
)

var ErrNoInput = errors.New("no audio input configured")

// Format describes the PCM samples delivered by an Input. Samples are
// always signed 16-bit; multiple channels are interleaved.
type Format struct {
	SampleRate int
	Channels   int
}

func DefaultFormat() Format {
	return Format{
		SampleRate: 16000,
		Channels:   1,
	}
}

// withDefaults replaces every field which is not positive with the one of
// DefaultFormat.
func (this Format) withDefaults() Format {
	result := this
	result.SampleRate = max(result.SampleRate, 0)
	result.Channels = max(result.Channels, 0)
	if err := mergo.Merge(&result, DefaultFormat()); err != nil {
		return DefaultFormat()
	}
	return result
}

// Input opens audio streams. Every chunk of captured samples is passed to
// the callback; the callback may be called from a goroutine owned by the
// Input and must not block.
type Input interface {
	Open(format Format, callback func([]int16)) (Stream, error)
}

type Stream interface {
	Close() error
}

type InputType uint8

const (
	InputTypePortAudio = InputType(0)
	InputTypeFfmpeg    = InputType(1)
)

var AllInputTypes = InputTypes{
	InputTypePortAudio,
	InputTypeFfmpeg,
}

type InputTypes []InputType

func (this InputTypes) Strings() []string {
	result := make([]string, len(this))
	for i, v := range this {
		result[i] = v.String()
	}
	return result
}

func (this InputTypes) String() string {
	return strings.Join(this.Strings(), ",")
}

func (this *InputType) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "portaudio", "pa":
		*this = InputTypePortAudio
		return nil
	case "ffmpeg":
		*this = InputTypeFfmpeg
		return nil
	default:
		return fmt.Errorf("illegal-input-type: %s", plain)
	}
}

func (this InputType) String() string {
	v, err := this.MarshalText()
	if err != nil {
		return fmt.Sprintf("illegal-input-type-%d", this)
	}
	return string(v)
}

func (this InputType) MarshalText() (text []byte, err error) {
	switch this {
	case InputTypePortAudio:
		return []byte("portaudio"), nil
	case InputTypeFfmpeg:
		return []byte("ffmpeg"), nil
	default:
		return nil, fmt.Errorf("illegal input type: %d", this)
	}
}

func (this *InputType) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}
