package trigger

import (
	"fmt"

	"github.com/blaubaer/talk-assistant/pkg/common"
)

// DefaultButtonCode is BTN_EXTRA, the forward side button of most mice.
const DefaultButtonCode = uint16(0x114)

func NewConfiguration() Configuration {
	return Configuration{
		Type:   TypeDefault,
		Button: DefaultButtonCode,
	}
}

type Configuration struct {
	Type Type `yaml:"type"`

	// Device is the evdev node to read from, like /dev/input/event5.
	Device string `yaml:"device,omitempty"`
	Button uint16 `yaml:"button"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("trigger", "Source of push-to-talk events. All possible values: "+AllTypes.String()).
		Envar("TA_TRIGGER").
		SetValue(&this.Type)
	using.Flag("trigger.device", "Input device to read button events from, like /dev/input/event5. Only used by the evdev trigger.").
		Envar("TA_TRIGGER_DEVICE").
		StringVar(&this.Device)
	using.Flag("trigger.button", "Key code of the push-to-talk button (see linux/input-event-codes.h). Default is BTN_EXTRA (0x114).").
		Envar("TA_TRIGGER_BUTTON").
		Uint16Var(&this.Button)
}

func (this *Configuration) NewTrigger() (Trigger, error) {
	switch this.Type {
	case TypeEvdev:
		if this.Device == "" {
			return nil, fmt.Errorf("the evdev trigger requires --trigger.device")
		}
		return &Evdev{
			Device: this.Device,
			Button: this.Button,
		}, nil
	case TypeTerminal:
		return &Terminal{}, nil
	default:
		return nil, fmt.Errorf("unsupported trigger type: %v", this.Type)
	}
}
