package app

import (
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strconv"

	"github.com/alecthomas/kingpin/v2"
	"gopkg.in/yaml.v3"

	"github.com/blaubaer/talk-assistant/pkg/capture"
	"github.com/blaubaer/talk-assistant/pkg/common"
	"github.com/blaubaer/talk-assistant/pkg/conversation"
	"github.com/blaubaer/talk-assistant/pkg/openai"
	"github.com/blaubaer/talk-assistant/pkg/signal/facade"
	"github.com/blaubaer/talk-assistant/pkg/speech"
	"github.com/blaubaer/talk-assistant/pkg/trigger"
)

const DefaultReplyMaxLength = 500

func NewConfiguration() Configuration {
	return Configuration{
		ContextSize:    conversation.DefaultWindowSize,
		ReplyMaxLength: DefaultReplyMaxLength,
		PingOnStart:    true,

		Capture: capture.NewConfiguration(),
		Trigger: trigger.NewConfiguration(),
		OpenAi:  openai.NewConfiguration(),
		Speech:  speech.NewConfiguration(),
		Signal:  facade.NewConfiguration(),
	}
}

type Configuration struct {
	PreventAutoSave bool `yaml:"preventAutoSave"`

	// ContextSize is the number of transcripts a prompt is built from.
	ContextSize    int    `yaml:"contextSize"`
	ReplyMaxLength int    `yaml:"replyMaxLength"`
	PingOnStart    bool   `yaml:"pingOnStart"`
	MetricsListen  string `yaml:"metricsListen,omitempty"`

	Capture capture.Configuration `yaml:"capture"`
	Trigger trigger.Configuration `yaml:"trigger"`
	OpenAi  openai.Configuration  `yaml:"openai"`
	Speech  speech.Configuration  `yaml:"speech"`
	Signal  facade.Configuration  `yaml:"signal,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("preventAutoSave", "If provided configuration will NOT automatically be saved upon changes.").
		Envar("TA_PREVENT_AUTO_SAVE").
		BoolVar(&this.PreventAutoSave)
	using.Flag("contextSize", "Number of recent transcripts a prompt is built from.").
		Envar("PTT_CONTEXT_SIZE").
		IntVar(&this.ContextSize)
	using.Flag("reply.maxLength", "Maximum number of characters of a reply block which is printed and spoken at once.").
		Envar("TA_REPLY_MAX_LENGTH").
		IntVar(&this.ReplyMaxLength)
	using.Flag("pingOnStart", "Check whether the chat model is reachable on start.").
		Envar("TA_PING_ON_START").
		BoolVar(&this.PingOnStart)
	using.Flag("metrics.listen", "Address to serve Prometheus metrics at, like :9090. Empty disables the endpoint.").
		Envar("TA_METRICS_LISTEN").
		StringVar(&this.MetricsListen)

	this.Capture.SetupConfiguration(using)
	this.Trigger.SetupConfiguration(using)
	this.OpenAi.SetupConfiguration(using)
	this.Speech.SetupConfiguration(using)
	this.Signal.SetupConfiguration(using)
}

func (this *Configuration) Validate() error {
	if err := this.OpenAi.Validate(); err != nil {
		return err
	}
	if err := this.Speech.Validate(); err != nil {
		return err
	}
	if this.ContextSize < 1 {
		return fmt.Errorf("illegal context size: %d; it has to be at least 1", this.ContextSize)
	}
	if this.ReplyMaxLength < 1 {
		return fmt.Errorf("illegal reply max length: %d; it has to be at least 1", this.ReplyMaxLength)
	}
	return nil
}

func (this *Configuration) loadFrom(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(this); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func (this *Configuration) loadFromFile(fn string, ignoreNotFound bool) error {
	f, err := os.Open(fn)
	if os.IsNotExist(err) && ignoreNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot open configuration file %q: %w", fn, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := this.loadFrom(f); err != nil {
		return fmt.Errorf("cannot load configuration file %q: %w", fn, err)
	}

	return nil
}

func (this *Configuration) saveTo(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(this); err != nil {
		return err
	}
	return enc.Close()
}

func (this *Configuration) saveToFile(fn string) error {
	_ = os.MkdirAll(filepath.Dir(fn), 0700)

	f, err := os.OpenFile(fn, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("cannot open configuration file %q: %w", fn, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := this.saveTo(f); err != nil {
		return fmt.Errorf("cannot write file %q: %w", fn, err)
	}

	return nil
}

// flagValue is a flag as it was given on the command line.
type flagValue struct {
	name  string
	value string
}

// applyFlags sets the given flags and the environment variables of all
// other flags onto this. Other than values of the configuration file they
// are applied even if they are zero, like --no-pingOnStart.
func (this *Configuration) applyFlags(given []flagValue) error {
	parser := kingpin.New("configuration", "")
	this.SetupConfiguration(parser)

	cumulative := map[string]func(){
		"speech.player":   func() { this.Speech.Players = nil },
		"signal.hue.kind": func() { this.Signal.Hue.Kinds = nil },
	}
	reset := func(name string) {
		if f, ok := cumulative[name]; ok {
			f()
			delete(cumulative, name)
		}
	}
	for name := range cumulative {
		if f := parser.GetFlag(name); f != nil && f.Model().Envar != "" && os.Getenv(f.Model().Envar) != "" {
			reset(name)
		}
	}

	var args []string
	for _, v := range given {
		f := parser.GetFlag(v.name)
		if f == nil {
			continue
		}
		reset(v.name)
		if !f.Model().IsBoolFlag() {
			args = append(args, "--"+v.name+"="+v.value)
		} else if b, err := strconv.ParseBool(v.value); err == nil && !b {
			args = append(args, "--no-"+v.name)
		} else {
			args = append(args, "--"+v.name)
		}
	}

	if _, err := parser.Parse(args); err != nil {
		return fmt.Errorf("cannot apply command line: %w", err)
	}
	return nil
}

// secrets are written to the configuration file only if they were not taken
// from the command line or the environment.
func (this *Configuration) secrets() []*string {
	return []*string{
		&this.OpenAi.ApiKey,
		&this.Speech.ApiKey,
		&this.Signal.HomeAssistant.Token,
	}
}

func (this Configuration) secretValues() []string {
	ps := this.secrets()
	result := make([]string, len(ps))
	for i, p := range ps {
		result[i] = *p
	}
	return result
}

func defaultConfigurationFile() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "talk-assistant", "configuration.yml")
	}

	u, err := user.Current()
	if err != nil {
		return "configuration.yml"
	}

	return filepath.Join(u.HomeDir, ".config", "talk-assistant", "configuration.yml")
}
