package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/echocat/slf4g"
	oai "github.com/sashabaranov/go-openai"
)

const (
	ApologyUnavailable = "Entschuldigung, ich kann gerade nicht antworten."
	ApologyUnexpected  = "Entschuldigung, ein unerwarteter Fehler ist aufgetreten."

	pingPrompt    = "ping"
	pingMaxTokens = 5
)

var errNoChoices = errors.New("chat completion without any choice")

// Responder answers prompts using a chat completion model. Respond never
// fails: errors are logged and replaced by a short apology.
type Responder struct {
	Client       *oai.Client
	Model        string
	SystemPrompt string
	MaxTokens    int
	Temperature  float32
}

func (this *Responder) Respond(ctx context.Context, prompt string) string {
	result, err := this.complete(ctx, prompt, this.MaxTokens)
	if errors.Is(err, errNoChoices) {
		log.WithError(err).
			Error("Unexpected answer of the chat model.")
		return ApologyUnexpected
	}
	if err != nil {
		log.WithError(err).
			Error("OpenAI request failed.")
		return ApologyUnavailable
	}
	return result
}

// Ping sends a minimal prompt to check whether the chat model is reachable.
func (this *Responder) Ping(ctx context.Context) (status string, ok bool) {
	rsp, err := this.complete(ctx, pingPrompt, pingMaxTokens)
	if err != nil {
		return fmt.Sprintf("OpenAI API failed: %v", err), false
	}
	if rsp == "" {
		return "OpenAI API does not respond as expected.", false
	}
	return "OpenAI API reachable.", true
}

func (this *Responder) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	model := this.Model
	if model == "" {
		model = DefaultModel
	}
	systemPrompt := this.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	rsp, err := this.Client.CreateChatCompletion(ctx, oai.ChatCompletionRequest{
		Model: model,
		Messages: []oai.ChatCompletionMessage{{
			Role:    oai.ChatMessageRoleSystem,
			Content: systemPrompt,
		}, {
			Role:    oai.ChatMessageRoleUser,
			Content: prompt,
		}},
		MaxTokens:   maxTokens,
		Temperature: this.Temperature,
	})
	if err != nil {
		return "", err
	}

	log.With("model", rsp.Model).
		With("promptTokens", rsp.Usage.PromptTokens).
		With("completionTokens", rsp.Usage.CompletionTokens).
		Debug("Chat completion received.")

	if len(rsp.Choices) == 0 {
		return "", errNoChoices
	}
	return strings.TrimSpace(rsp.Choices[0].Message.Content), nil
}

func logSystemPromptFileFailure(fn string, err error) {
	log.With("file", fn).
		WithError(err).
		Error("Cannot load system prompt from file. Falling back to the configured one.")
}
