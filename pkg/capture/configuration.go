package capture

import (
	"fmt"

	"github.com/blaubaer/talk-assistant/pkg/common"
)

func NewConfiguration() Configuration {
	format := DefaultFormat()
	return Configuration{
		Input:           InputTypePortAudio,
		Filename:        DefaultFilename,
		SampleRate:      format.SampleRate,
		Channels:        format.Channels,
		FramesPerBuffer: DefaultFramesPerBuffer,
		Ffmpeg: FfmpegConfiguration{
			Command:     DefaultFfmpegCommand,
			InputFormat: DefaultFfmpegInputFormat,
			InputDevice: DefaultFfmpegInputDevice,
		},
	}
}

type Configuration struct {
	Input           InputType `yaml:"input"`
	Filename        string    `yaml:"filename"`
	SampleRate      int       `yaml:"sampleRate"`
	Channels        int       `yaml:"channels"`
	FramesPerBuffer int       `yaml:"framesPerBuffer,omitempty"`

	Ffmpeg FfmpegConfiguration `yaml:"ffmpeg,omitempty"`
}

type FfmpegConfiguration struct {
	Command     string `yaml:"command,omitempty"`
	InputFormat string `yaml:"inputFormat,omitempty"`
	InputDevice string `yaml:"inputDevice,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("capture.input", "How the microphone is captured. Possible values: "+AllInputTypes.String()).
		Envar("TA_CAPTURE_INPUT").
		SetValue(&this.Input)
	using.Flag("capture.filename", "File the last recording is stored to. It is overwritten by every recording.").
		Envar("TA_CAPTURE_FILENAME").
		StringVar(&this.Filename)
	using.Flag("capture.sampleRate", "Sample rate of the recording in Hz.").
		Envar("TA_CAPTURE_SAMPLE_RATE").
		IntVar(&this.SampleRate)
	using.Flag("capture.channels", "Number of channels of the recording.").
		Envar("TA_CAPTURE_CHANNELS").
		IntVar(&this.Channels)
	using.Flag("capture.framesPerBuffer", "Number of frames delivered at once by the audio input.").
		Envar("TA_CAPTURE_FRAMES_PER_BUFFER").
		IntVar(&this.FramesPerBuffer)
	using.Flag("capture.ffmpeg.command", "ffmpeg executable. Only used by the ffmpeg input.").
		Envar("TA_CAPTURE_FFMPEG_COMMAND").
		StringVar(&this.Ffmpeg.Command)
	using.Flag("capture.ffmpeg.inputFormat", "ffmpeg input format, like pulse or alsa. Only used by the ffmpeg input.").
		Envar("TA_CAPTURE_FFMPEG_INPUT_FORMAT").
		StringVar(&this.Ffmpeg.InputFormat)
	using.Flag("capture.ffmpeg.inputDevice", "ffmpeg input device. Only used by the ffmpeg input.").
		Envar("TA_CAPTURE_FFMPEG_INPUT_DEVICE").
		StringVar(&this.Ffmpeg.InputDevice)
}

func (this *Configuration) Format() Format {
	return Format{
		SampleRate: this.SampleRate,
		Channels:   this.Channels,
	}.withDefaults()
}

func (this *Configuration) NewInput() (Input, error) {
	switch this.Input {
	case InputTypePortAudio:
		return &PortAudio{
			FramesPerBuffer: this.FramesPerBuffer,
		}, nil
	case InputTypeFfmpeg:
		return &Ffmpeg{
			Command:         this.Ffmpeg.Command,
			InputFormat:     this.Ffmpeg.InputFormat,
			InputDevice:     this.Ffmpeg.InputDevice,
			FramesPerBuffer: this.FramesPerBuffer,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported capture input: %v", this.Input)
	}
}

func (this *Configuration) NewSession(input Input) *Session {
	result := NewSession(input)
	result.Format = this.Format()
	if v := this.Filename; v != "" {
		result.Filename = v
	}
	return result
}
