package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/alecthomas/kingpin/v2"
	"github.com/chzyer/readline"
	log "github.com/echocat/slf4g"

	"github.com/blaubaer/talk-assistant/pkg/capture"
	"github.com/blaubaer/talk-assistant/pkg/common"
	"github.com/blaubaer/talk-assistant/pkg/conversation"
	"github.com/blaubaer/talk-assistant/pkg/metrics"
	"github.com/blaubaer/talk-assistant/pkg/signal/facade"
	"github.com/blaubaer/talk-assistant/pkg/text"
	"github.com/blaubaer/talk-assistant/pkg/transcript"
	"github.com/blaubaer/talk-assistant/pkg/trigger"
)

// Responder produces the reply to a prompt. It never fails; failures are
// expressed by the reply itself.
type Responder interface {
	Respond(ctx context.Context, prompt string) string
}

// Speaker speaks a single reply block.
type Speaker interface {
	SynthesizeAndPlay(ctx context.Context, text string) error
}

type pinger interface {
	Ping(ctx context.Context) (status string, ok bool)
}

type lifecycle interface {
	Initialize() error
	Dispose() error
}

func NewApp() *App {
	return &App{
		config: NewConfiguration(),
	}
}

// App wires all components of the assistant together and owns their
// lifecycle. Collaborators which are left nil are created from the
// configuration while Initialize runs.
type App struct {
	ConfigurationFile string

	Input       capture.Input
	Transcriber capture.Transcriber
	Responder   Responder
	Speaker     Speaker
	Trigger     trigger.Trigger
	Signal      facade.Facade
	Metrics     *metrics.Metrics

	// Stdout receives every reply block; nil means os.Stdout.
	Stdout io.Writer

	configFromFlags Configuration
	config          Configuration
	commandLine     []flagValue
	fileSecrets     []string
	flagSecrets     []string

	session       *capture.Session
	queue         *transcript.Queue
	recorder      *capture.Recorder
	worker        *conversation.Worker
	metricsServer *metrics.Server
	inputOwned    lifecycle

	isTerminal     func() bool
	requestMissing func(*Configuration) error
	initialized    bool
}

func (this *App) SetupConfiguration(using common.FlagHolder) {
	this.configFromFlags.SetupConfiguration(using)

	using.Flag("configuration", "Defines the file from which the configuration should be loaded and/or stored to.").
		Short('c').
		Envar("TA_CONFIGURATION").
		StringVar(&this.ConfigurationFile)
}

// UseCommandLine remembers which flags were given on the command line. They
// win over the configuration file, even if their value is zero.
func (this *App) UseCommandLine(pc *kingpin.ParseContext) {
	this.commandLine = nil
	if pc == nil {
		return
	}
	for _, e := range pc.Elements {
		f, ok := e.Clause.(*kingpin.FlagClause)
		if !ok || e.Value == nil {
			continue
		}
		this.commandLine = append(this.commandLine, flagValue{
			name:  f.Model().Name,
			value: *e.Value,
		})
	}
}

func (this *App) Initialize() (rErr error) {
	success := false
	defer func() {
		if !success {
			if err := this.Dispose(); err != nil && rErr == nil {
				rErr = err
			}
		}
	}()

	if err := this.loadConfiguration(); err != nil {
		return err
	}
	if err := this.config.Validate(); err != nil {
		return err
	}

	m := this.metrics()

	if this.Input == nil {
		input, err := this.config.Capture.NewInput()
		if err != nil {
			return err
		}
		if v, ok := input.(lifecycle); ok {
			if err := v.Initialize(); err != nil {
				return fmt.Errorf("cannot initialize capture input %v: %w", this.config.Capture.Input, err)
			}
			this.inputOwned = v
		}
		this.Input = input
	}
	this.session = this.config.Capture.NewSession(this.Input)
	this.queue = transcript.NewQueue()

	if err := this.Signal.Initialize(&this.config.Signal, this.alwaysSaveConf); err != nil {
		log.With("signal", this.config.Signal.Type).
			WithError(err).
			Warn("Cannot initialize recording indicator; continue without it.")
	}

	if this.Transcriber == nil || this.Responder == nil {
		client := this.config.OpenAi.NewClient()
		if this.Transcriber == nil {
			this.Transcriber = this.config.OpenAi.NewTranscriber(client)
		}
		if this.Responder == nil {
			this.Responder = this.config.OpenAi.NewResponder(client)
		}
	}
	if this.Speaker == nil {
		this.Speaker = this.config.Speech.NewPlayback(m)
	}
	if this.Trigger == nil {
		t, err := this.config.Trigger.NewTrigger()
		if err != nil {
			return err
		}
		this.Trigger = t
	}

	this.recorder = &capture.Recorder{
		Session:     this.session,
		Transcriber: this.Transcriber,
		Queue:       this.queue,
		Listener:    &this.Signal,
		Metrics:     m,
	}
	this.worker = &conversation.Worker{
		Queue:      this.queue,
		Window:     conversation.NewWindow(this.config.ContextSize),
		Dispatcher: &conversation.Dispatcher{Deliver: this.deliver},
		Metrics:    m,
	}
	this.metricsServer = &metrics.Server{
		Listen: this.config.MetricsListen,
	}

	if err := this.saveConf(false); err != nil {
		return err
	}

	this.initialized = true
	success = true
	return nil
}

func (this *App) loadConfiguration() error {
	if err := this.config.loadFromFile(this.configurationFile(), true); err != nil {
		return err
	}
	this.fileSecrets = this.config.secretValues()
	if err := this.config.applyFlags(this.commandLine); err != nil {
		return err
	}
	this.flagSecrets = this.config.secretValues()

	if this.config.OpenAi.ApiKey != "" && this.config.Speech.ApiKey != "" {
		return nil
	}
	isTerminal := this.isTerminal
	if isTerminal == nil {
		isTerminal = readline.DefaultIsTerminal
	}
	if !isTerminal() {
		return nil
	}

	request := this.requestMissing
	if request == nil {
		request = requestMissingCredentials
	}
	if err := request(&this.config); err != nil {
		return err
	}
	return this.saveConf(true)
}

func requestMissingCredentials(conf *Configuration) error {
	if err := common.RequestStringContentIfRequiredFromTerminal(&conf.OpenAi.ApiKey, "OpenAI API key", false, true); err != nil {
		return err
	}
	return common.RequestStringContentIfRequiredFromTerminal(&conf.Speech.ApiKey, "ElevenLabs API key", false, true)
}

// Run blocks until ctx is done or the trigger ends. Push-to-talk events of
// the trigger are handled by the recorder, the worker consumes the queue
// meanwhile.
func (this *App) Run(ctx context.Context) error {
	if !this.initialized {
		return errors.New("app is not initialized")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	this.ping(ctx)

	var wg sync.WaitGroup
	wg.Add(1)

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := this.worker.Run(ctx); err != nil {
			log.WithError(err).
				Error("Conversation worker stopped unexpectedly.")
		}
	}()

	go func() {
		defer wg.Done()
		if err := this.metricsServer.Run(ctx); err != nil {
			log.With("address", this.metricsServer.Listen).
				WithError(err).
				Error("Cannot serve metrics.")
		}
	}()

	log.With("trigger", this.config.Trigger.Type).
		With("input", this.config.Capture.Input).
		Info("Ready. Push to talk.")

	err := this.Trigger.Run(ctx, this.recorder)
	interrupted := ctx.Err() != nil

	// Transcripts which are already queued are still answered, unless we
	// were interrupted.
	this.queue.Close()
	if !interrupted {
		<-workerDone
	}
	cancel()
	<-workerDone
	wg.Wait()

	if interrupted {
		log.Debug("Interrupted.")
		return nil
	}
	return err
}

func (this *App) ping(ctx context.Context) {
	if !this.config.PingOnStart {
		return
	}
	p, ok := this.Responder.(pinger)
	if !ok {
		return
	}
	status, success := p.Ping(ctx)
	if !success {
		log.With("status", status).
			Warn("Chat model is not reachable.")
		return
	}
	log.With("status", status).
		Info("Chat model is reachable.")
}

// deliver answers a composed prompt: the reply is split into blocks which
// are printed and spoken one after another.
func (this *App) deliver(ctx context.Context, prompt string) error {
	reply := this.Responder.Respond(ctx, prompt)
	blocks := text.SplitOnWordBoundary(reply, this.config.ReplyMaxLength)

	for i, block := range blocks {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.With("block", i+1).
			With("blocks", len(blocks)).
			Debug("Deliver reply block.")
		if _, err := fmt.Fprintln(this.stdout(), block); err != nil {
			log.WithError(err).
				Warn("Cannot print reply block.")
		}
		if err := this.Speaker.SynthesizeAndPlay(ctx, block); err != nil {
			log.With("block", i+1).
				WithError(err).
				Debug("Reply block was not spoken.")
		}
	}
	return nil
}

func (this *App) stdout() io.Writer {
	if v := this.Stdout; v != nil {
		return v
	}
	return os.Stdout
}

func (this *App) metrics() *metrics.Metrics {
	if v := this.Metrics; v != nil {
		return v
	}
	return metrics.Default
}

func (this *App) configurationFile() string {
	if v := this.ConfigurationFile; v != "" {
		return v
	}
	return defaultConfigurationFile()
}

func (this *App) alwaysSaveConf() error {
	return this.saveConf(true)
}

func (this *App) saveConf(always bool) error {
	if this.config.PreventAutoSave {
		log.Debug("Automatically save of configuration disabled.")
		return nil
	}

	fn := this.configurationFile()
	if !always {
		_, err := os.Stat(fn)
		if os.IsNotExist(err) {
			log.With("file", fn).Info("Configuration absent.")
		} else if err != nil {
			return err
		} else {
			return nil
		}
	}

	conf := this.persistable()
	if err := conf.saveToFile(fn); err != nil {
		return err
	}

	log.With("file", fn).Info("Configuration saved.")

	return nil
}

// persistable returns the configuration without the secrets which came from
// the command line or the environment.
func (this *App) persistable() Configuration {
	result := this.config
	for i, p := range result.secrets() {
		if i >= len(this.flagSecrets) || i >= len(this.fileSecrets) {
			break
		}
		if *p == this.flagSecrets[i] && this.flagSecrets[i] != this.fileSecrets[i] {
			*p = this.fileSecrets[i]
		}
	}
	return result
}

func (this *App) Dispose() (rErr error) {
	defer func() {
		if v := this.inputOwned; v != nil {
			this.inputOwned = nil
			if err := v.Dispose(); err != nil && rErr == nil {
				rErr = err
			}
		}
	}()

	defer func() {
		if err := this.Signal.Dispose(); err != nil && rErr == nil {
			rErr = err
		}
	}()

	if q := this.queue; q != nil {
		q.Close()
	}

	if s := this.session; s != nil {
		if err := s.Dispose(); err != nil {
			log.WithError(err).
				Warn("Cannot close capture stream.")
		}
		this.removeRecording()
	}

	this.initialized = false
	return nil
}

func (this *App) removeRecording() {
	fn := this.session.Filename
	if fn == "" {
		fn = capture.DefaultFilename
	}
	if err := os.Remove(fn); err != nil && !os.IsNotExist(err) {
		log.With("file", fn).
			WithError(err).
			Warn("Cannot remove recording.")
	}
}
