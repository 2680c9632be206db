package hue

import (
	"time"

	"github.com/blaubaer/talk-assistant/pkg/common"
)

const DefaultPairTimeout = 2 * time.Minute

func NewConfiguration() Configuration {
	return Configuration{
		Name:  common.MustNewRegexp("^OnAir"),
		Kinds: Kinds{},

		Brightness: 254,
		Hue:        65535,
		Saturation: 254,
		Restore:    true,

		PairTimeout: DefaultPairTimeout,
	}
}

type Configuration struct {
	Pair   bool   `yaml:"pair,omitempty"`
	Bridge string `yaml:"bridge,omitempty"`
	User   string `yaml:"user,omitempty"`

	Name  common.Regexp `yaml:"target"`
	Kinds Kinds         `yaml:"kinds,omitempty"`

	Brightness uint8  `yaml:"brightness"`
	Hue        uint16 `yaml:"hue"`
	Saturation uint8  `yaml:"saturation"`

	// Restore brings lights back to the state they had before the
	// recording started instead of switching them off.
	Restore bool `yaml:"restore"`

	// PairTimeout is how long pairing waits for the link button.
	PairTimeout time.Duration `yaml:"pairTimeout,omitempty"`
}

func (this Configuration) IsPaired() bool {
	return this.Bridge != "" && this.User != ""
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("signal.hue.pair", "If true this application will pair again with the hue bridge. This is implicit enabled if this application is not already paired.").
		Envar("TA_SIGNAL_HUE_PAIR").
		BoolVar(&this.Pair)
	using.Flag("signal.hue.pairTimeout", "How long to wait for the link button of the hue bridge being pressed while pairing.").
		Envar("TA_SIGNAL_HUE_PAIR_TIMEOUT").
		DurationVar(&this.PairTimeout)
	using.Flag("signal.hue.bridge", "Usually the bridge is automatically detected. You can specify an explicit one if there are more than one.").
		Envar("TA_SIGNAL_HUE_BRIDGE").
		StringVar(&this.Bridge)
	using.Flag("signal.hue.user", "Usually this is set while pairing and will then be persisted in the configuration file.").
		Envar("TA_SIGNAL_HUE_USER").
		StringVar(&this.User)
	using.Flag("signal.hue.name", "Name as regex of the lights/groups which should show that a recording is running.").
		Envar("TA_SIGNAL_HUE_NAME").
		SetValue(&this.Name)
	using.Flag("signal.hue.kind", "Kind(s) of what should be handled. Possible values: "+AllKinds.String()).
		Envar("TA_SIGNAL_HUE_KIND").
		SetValue(&this.Kinds)

	using.Flag("signal.hue.brightness", "Brightness while recording, from 1 (the minimum the light is capable of) to 254 (the maximum).").
		Envar("TA_SIGNAL_HUE_BRIGHTNESS").
		Uint8Var(&this.Brightness)
	using.Flag("signal.hue.hue", "Hue while recording. The hue value is a wrapping value between 0 and 65535. Both 0 and 65535 are red, 25500 is green and 46920 is blue.").
		Envar("TA_SIGNAL_HUE_HUE").
		Uint16Var(&this.Hue)
	using.Flag("signal.hue.saturation", "Saturation while recording. 254 is the most saturated (colored) and 0 is the least saturated (white).").
		Envar("TA_SIGNAL_HUE_SATURATION").
		Uint8Var(&this.Saturation)
	using.Flag("signal.hue.restore", "Restore the previous state of the lights after the recording instead of switching them off.").
		Envar("TA_SIGNAL_HUE_RESTORE").
		BoolVar(&this.Restore)
}
