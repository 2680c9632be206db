package openai

import (
	"context"
	"fmt"
	"strings"

	oai "github.com/sashabaranov/go-openai"
)

// Transcriber transcribes audio files using the OpenAI audio API.
type Transcriber struct {
	Client   *oai.Client
	Model    string
	Language string
}

func (this *Transcriber) Transcribe(ctx context.Context, filename string) (string, error) {
	model := this.Model
	if model == "" {
		model = DefaultTranscriptionModel
	}

	rsp, err := this.Client.CreateTranscription(ctx, oai.AudioRequest{
		Model:    model,
		FilePath: filename,
		Language: this.Language,
		Format:   oai.AudioResponseFormatText,
	})
	if err != nil {
		return "", fmt.Errorf("cannot transcribe %q: %w", filename, err)
	}

	return strings.TrimSpace(rsp.Text), nil
}
