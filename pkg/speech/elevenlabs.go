package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

const (
	DefaultElevenLabsServer  = "https://api.elevenlabs.io"
	DefaultElevenLabsVoiceId = "tKmESGVo91DcC5kFPRS6"
	DefaultElevenLabsModelId = "eleven_multilingual_v2"

	DefaultSynthesisTimeout = 60 * time.Second
)

// ElevenLabs synthesizes speech using the ElevenLabs text-to-speech API.
type ElevenLabs struct {
	Server  string
	ApiKey  string
	Timeout time.Duration

	Client *http.Client
}

type elevenLabsRequest struct {
	Text          string        `json:"text"`
	ModelId       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

func (this *ElevenLabs) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	if this.ApiKey == "" {
		return nil, fmt.Errorf("no ElevenLabs API key configured")
	}

	voiceId := req.VoiceId
	if voiceId == "" {
		voiceId = DefaultElevenLabsVoiceId
	}
	modelId := req.ModelId
	if modelId == "" {
		modelId = DefaultElevenLabsModelId
	}

	body, err := sonic.Marshal(elevenLabsRequest{
		Text:          req.Text,
		ModelId:       modelId,
		VoiceSettings: req.VoiceSettings,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot encode synthesis request: %w", err)
	}

	timeout := this.Timeout
	if timeout <= 0 {
		timeout = DefaultSynthesisTimeout
	}
	ctx, cancelFunc := context.WithTimeout(ctx, timeout)
	defer cancelFunc()

	u := strings.TrimRight(this.server(), "/") + "/v1/text-to-speech/" + url.PathEscape(voiceId)
	hReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	hReq.Header.Set("xi-api-key", this.ApiKey)
	hReq.Header.Set("Content-Type", "application/json")
	hReq.Header.Set("Accept", "audio/mpeg")

	rsp, err := this.client().Do(hReq)
	if err != nil {
		return nil, fmt.Errorf("failed to access %v: %w", hReq.URL, err)
	}
	defer func() {
		_ = rsp.Body.Close()
	}()

	payload, err := io.ReadAll(rsp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response of %v: %w", hReq.URL, err)
	}

	if rsp.StatusCode < 200 || rsp.StatusCode >= 300 {
		return nil, &HttpError{
			StatusCode: rsp.StatusCode,
			Status:     rsp.Status,
			Detail:     DecodeErrorDetail(payload),
		}
	}

	return payload, nil
}

func (this *ElevenLabs) server() string {
	if v := this.Server; v != "" {
		return v
	}
	return DefaultElevenLabsServer
}

func (this *ElevenLabs) client() *http.Client {
	if v := this.Client; v != nil {
		return v
	}
	return http.DefaultClient
}
