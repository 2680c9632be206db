package speech

import (
	"fmt"
	"strings"
	"time"

	"github.com/blaubaer/talk-assistant/pkg/common"
	"github.com/blaubaer/talk-assistant/pkg/metrics"
)

func NewConfiguration() Configuration {
	settings := DefaultVoiceSettings()
	return Configuration{
		Server:          DefaultElevenLabsServer,
		VoiceId:         DefaultElevenLabsVoiceId,
		ModelId:         DefaultElevenLabsModelId,
		Stability:       settings.Stability,
		SimilarityBoost: settings.SimilarityBoost,
		Timeout:         DefaultSynthesisTimeout,
		Players: []string{
			DefaultPrimaryPlayer().String(),
			DefaultSecondaryPlayer().String(),
		},
	}
}

type Configuration struct {
	ApiKey string `yaml:"apiKey,omitempty"`
	Server string `yaml:"server,omitempty"`

	VoiceId         string        `yaml:"voiceId"`
	ModelId         string        `yaml:"modelId"`
	Stability       float64       `yaml:"stability"`
	SimilarityBoost float64       `yaml:"similarityBoost"`
	Timeout         time.Duration `yaml:"timeout,omitempty"`

	// Players are command lines which are tried in order to play the
	// synthesized audio. The file is appended as last argument.
	Players []string `yaml:"players,flow"`
	TempDir string   `yaml:"tempDir,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("elevenlabs.apiKey", "API key to access ElevenLabs.").
		Envar("ELEVENLABS_API_KEY").
		StringVar(&this.ApiKey)
	using.Flag("elevenlabs.server", "Base URL of the ElevenLabs API.").
		Envar("TA_ELEVENLABS_SERVER").
		StringVar(&this.Server)
	using.Flag("elevenlabs.voiceId", "Voice to speak the answers with.").
		Envar("ELEVENLABS_VOICE_ID").
		StringVar(&this.VoiceId)
	using.Flag("elevenlabs.modelId", "Model to synthesize the answers with.").
		Envar("ELEVENLABS_MODEL_ID").
		StringVar(&this.ModelId)
	using.Flag("elevenlabs.stability", "Stability of the voice, between 0 and 1.").
		Envar("TA_ELEVENLABS_STABILITY").
		Float64Var(&this.Stability)
	using.Flag("elevenlabs.similarityBoost", "Similarity boost of the voice, between 0 and 1.").
		Envar("TA_ELEVENLABS_SIMILARITY_BOOST").
		Float64Var(&this.SimilarityBoost)
	using.Flag("elevenlabs.timeout", "Timeout of a single synthesis.").
		Envar("TA_ELEVENLABS_TIMEOUT").
		DurationVar(&this.Timeout)
	using.Flag("speech.player", "Command line of a player for the synthesized audio. Can be repeated; players are tried in order until one succeeds.").
		Envar("TA_SPEECH_PLAYER").
		StringsVar(&this.Players)
	using.Flag("speech.tempDir", "Directory for the temporary audio files. Empty means the default temporary directory.").
		Envar("TA_SPEECH_TEMP_DIR").
		StringVar(&this.TempDir)
}

func (this *Configuration) Validate() error {
	if strings.TrimSpace(this.ApiKey) == "" {
		return fmt.Errorf("no ElevenLabs API key configured")
	}
	if this.Stability < 0 || this.Stability > 1 {
		return fmt.Errorf("illegal ElevenLabs stability: %v", this.Stability)
	}
	if this.SimilarityBoost < 0 || this.SimilarityBoost > 1 {
		return fmt.Errorf("illegal ElevenLabs similarity boost: %v", this.SimilarityBoost)
	}
	return nil
}

func (this *Configuration) NewPlayer() Player {
	var result FallbackPlayer
	for _, commandLine := range this.Players {
		if p := NewCommandPlayer(commandLine); p.Name != "" {
			result = append(result, p)
		}
	}
	if len(result) == 0 {
		return FallbackPlayer{DefaultPrimaryPlayer(), DefaultSecondaryPlayer()}
	}
	return result
}

func (this *Configuration) NewPlayback(m *metrics.Metrics) *Playback {
	return &Playback{
		Synthesizer: &ElevenLabs{
			Server:  this.Server,
			ApiKey:  this.ApiKey,
			Timeout: this.Timeout,
		},
		Player:  this.NewPlayer(),
		VoiceId: this.VoiceId,
		ModelId: this.ModelId,
		VoiceSettings: VoiceSettings{
			Stability:       this.Stability,
			SimilarityBoost: this.SimilarityBoost,
		},
		TempDir: this.TempDir,
		Metrics: m,
	}
}
