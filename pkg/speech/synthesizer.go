package speech

import (
	"context"
	"fmt"
)

type Synthesizer interface {
	Synthesize(context.Context, Request) ([]byte, error)
}

type Request struct {
	Text          string
	VoiceId       string
	ModelId       string
	VoiceSettings VoiceSettings
}

type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		Stability:       0.75,
		SimilarityBoost: 0.25,
	}
}

// HttpError is returned by a Synthesizer if the remote service answered with
// a non-success status code.
type HttpError struct {
	StatusCode int
	Status     string
	Detail     ErrorDetail
}

func (this *HttpError) Error() string {
	if this.Detail.IsZero() {
		return fmt.Sprintf("unexpected status code: %d - %s", this.StatusCode, this.Status)
	}
	return fmt.Sprintf("unexpected status code: %d - %s: %v", this.StatusCode, this.Status, this.Detail)
}
