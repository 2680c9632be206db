package facade

import (
	"github.com/blaubaer/talk-assistant/pkg/common"
	"github.com/blaubaer/talk-assistant/pkg/signal"
	"github.com/blaubaer/talk-assistant/pkg/signal/homeassistant"
	"github.com/blaubaer/talk-assistant/pkg/signal/hue"
)

func NewConfiguration() Configuration {
	return Configuration{
		Type:          signal.TypeDefault,
		Hue:           hue.NewConfiguration(),
		HomeAssistant: homeassistant.NewConfiguration(),
	}
}

type Configuration struct {
	Type          signal.Type                 `yaml:"type"`
	Hue           hue.Configuration           `yaml:"hue,omitempty"`
	HomeAssistant homeassistant.Configuration `yaml:"homeAssistant,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("signal", "Indicator which shows that a recording is running. All possible values: "+signal.AllTypes.String()).
		Envar("TA_SIGNAL").
		SetValue(&this.Type)

	this.Hue.SetupConfiguration(using)
	this.HomeAssistant.SetupConfiguration(using)
}
