package openai

import (
	"fmt"
	"os"
	"strings"

	oai "github.com/sashabaranov/go-openai"

	"github.com/blaubaer/talk-assistant/pkg/common"
)

const (
	DefaultModel              = "gpt-3.5-turbo"
	DefaultTranscriptionModel = oai.Whisper1
	DefaultSystemPrompt       = "Du bist ein hilfreicher, freundlicher Chatbot für Twitch."
	DefaultMaxTokens          = 100
	DefaultTemperature        = float32(0.7)
)

func NewConfiguration() Configuration {
	return Configuration{
		Model:              DefaultModel,
		TranscriptionModel: DefaultTranscriptionModel,
		SystemPrompt:       DefaultSystemPrompt,
		MaxTokens:          DefaultMaxTokens,
		Temperature:        DefaultTemperature,
	}
}

type Configuration struct {
	ApiKey  string `yaml:"apiKey,omitempty"`
	BaseUrl string `yaml:"baseUrl,omitempty"`

	Model              string  `yaml:"model"`
	TranscriptionModel string  `yaml:"transcriptionModel"`
	Language           string  `yaml:"language,omitempty"`
	SystemPrompt       string  `yaml:"systemPrompt,omitempty"`
	SystemPromptFile   string  `yaml:"systemPromptFile,omitempty"`
	MaxTokens          int     `yaml:"maxTokens"`
	Temperature        float32 `yaml:"temperature"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("openai.apiKey", "API key to access OpenAI.").
		Envar("OPENAI_API_KEY").
		StringVar(&this.ApiKey)
	using.Flag("openai.baseUrl", "Base URL of an OpenAI compatible API. Empty means the official one.").
		Envar("TA_OPENAI_BASE_URL").
		StringVar(&this.BaseUrl)
	using.Flag("openai.model", "Chat model which answers the transcripts.").
		Envar("OPENAI_MODEL").
		StringVar(&this.Model)
	using.Flag("openai.transcriptionModel", "Model which transcribes the recordings.").
		Envar("TA_OPENAI_TRANSCRIPTION_MODEL").
		StringVar(&this.TranscriptionModel)
	using.Flag("openai.language", "ISO-639-1 language of the recordings. Empty means auto detection.").
		Envar("TA_OPENAI_LANGUAGE").
		StringVar(&this.Language)
	using.Flag("openai.systemPrompt", `System prompt of the chat. "\n" is replaced by a line break.`).
		Envar("OPENAI_SYSTEM_PROMPT").
		StringVar(&this.SystemPrompt)
	using.Flag("openai.systemPromptFile", "File to read the system prompt from. Has precedence over --openai.systemPrompt.").
		Envar("OPENAI_SYSTEM_PROMPT_FILE").
		StringVar(&this.SystemPromptFile)
	using.Flag("openai.maxTokens", "Maximum number of tokens of an answer.").
		Envar("OPENAI_MAX_TOKENS").
		IntVar(&this.MaxTokens)
	using.Flag("openai.temperature", "Sampling temperature of the chat model.").
		Envar("TA_OPENAI_TEMPERATURE").
		Float32Var(&this.Temperature)
}

func (this *Configuration) Validate() error {
	if strings.TrimSpace(this.ApiKey) == "" {
		return fmt.Errorf("no OpenAI API key configured")
	}
	if this.MaxTokens < 0 {
		return fmt.Errorf("illegal OpenAI max tokens: %d", this.MaxTokens)
	}
	return nil
}

// ResolveSystemPrompt returns the content of SystemPromptFile if it can be
// read and is not empty, otherwise SystemPrompt with escaped line breaks
// expanded, otherwise DefaultSystemPrompt.
func (this *Configuration) ResolveSystemPrompt() string {
	if fn := this.SystemPromptFile; fn != "" {
		b, err := os.ReadFile(fn)
		if err != nil {
			logSystemPromptFileFailure(fn, err)
		} else if v := strings.TrimSpace(string(b)); v != "" {
			return v
		}
	}
	if v := strings.ReplaceAll(this.SystemPrompt, `\n`, "\n"); strings.TrimSpace(v) != "" {
		return v
	}
	return DefaultSystemPrompt
}

func (this *Configuration) NewClient() *oai.Client {
	conf := oai.DefaultConfig(this.ApiKey)
	if v := this.BaseUrl; v != "" {
		conf.BaseURL = strings.TrimRight(v, "/")
	}
	return oai.NewClientWithConfig(conf)
}

func (this *Configuration) NewTranscriber(client *oai.Client) *Transcriber {
	return &Transcriber{
		Client:   client,
		Model:    this.TranscriptionModel,
		Language: this.Language,
	}
}

func (this *Configuration) NewResponder(client *oai.Client) *Responder {
	return &Responder{
		Client:       client,
		Model:        this.Model,
		SystemPrompt: this.ResolveSystemPrompt(),
		MaxTokens:    this.MaxTokens,
		Temperature:  this.Temperature,
	}
}
