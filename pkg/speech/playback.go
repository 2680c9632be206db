package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/talk-assistant/pkg/common"
	"github.com/blaubaer/talk-assistant/pkg/metrics"
)

// Playback turns a text block into speech and plays it.
type Playback struct {
	Synthesizer   Synthesizer
	Player        Player
	VoiceId       string
	ModelId       string
	VoiceSettings VoiceSettings

	// TempDir is where the transient audio files are created; empty means
	// the default directory for temporary files.
	TempDir string
	Metrics *metrics.Metrics
}

var (
	ErrSynthesis = errors.New("speech synthesis failed")
	ErrPlayback  = errors.New("speech playback failed")
)

// SynthesizeAndPlay synthesizes text, stores the audio in a temporary file,
// plays it and removes the file again on every path. All failures are
// logged; the returned error only informs the caller about what happened.
func (this *Playback) SynthesizeAndPlay(ctx context.Context, text string) error {
	m := this.metrics()
	m.PlaybacksTotal.Inc()

	audio, err := this.synthesize(ctx, text)
	if err != nil {
		m.PlaybacksFailed.WithLabelValues("synthesis").Inc()
		return err
	}

	fn, err := this.writeTemp(audio)
	if err != nil {
		m.PlaybacksFailed.WithLabelValues("file").Inc()
		log.WithError(err).
			Error("Cannot store synthesized audio.")
		return err
	}
	defer removeTemp(fn)

	log.With("file", fn).
		Debug("Synthesized audio stored.")

	if err := this.Player.Play(ctx, fn); err != nil {
		m.PlaybacksFailed.WithLabelValues("player").Inc()
		log.With("file", fn).
			WithError(err).
			Error("Cannot play synthesized audio.")
		return fmt.Errorf("%w: %w", ErrPlayback, err)
	}

	return nil
}

func (this *Playback) synthesize(ctx context.Context, text string) ([]byte, error) {
	start := time.Now()
	audio, err := this.Synthesizer.Synthesize(ctx, Request{
		Text:          text,
		VoiceId:       this.VoiceId,
		ModelId:       this.ModelId,
		VoiceSettings: this.VoiceSettings,
	})
	this.metrics().SynthesisLatency.Observe(time.Since(start).Seconds())

	if hErr, ok := common.AsError[*HttpError](err); ok {
		log.With("status", hErr.StatusCode).
			With("detail", hErr.Detail).
			With("detailKind", hErr.Detail.Kind).
			Errorf("Speech synthesis failed (HTTP %d): %v", hErr.StatusCode, hErr.Detail)
		return nil, fmt.Errorf("%w: %w", ErrSynthesis, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		log.WithError(err).
			Error("Speech synthesis timed out. Shorten the text or try again later.")
		return nil, fmt.Errorf("%w: %w", ErrSynthesis, err)
	}
	if err != nil {
		log.WithError(err).
			Error("Speech synthesis failed.")
		return nil, fmt.Errorf("%w: %w", ErrSynthesis, err)
	}
	if len(audio) == 0 {
		log.Warn("Speech synthesis returned no audio.")
		return nil, fmt.Errorf("%w: empty audio", ErrSynthesis)
	}
	return audio, nil
}

func (this *Playback) writeTemp(audio []byte) (_ string, rErr error) {
	f, err := os.CreateTemp(this.TempDir, "talk-assistant-*.mp3")
	if err != nil {
		return "", fmt.Errorf("cannot create temporary audio file: %w", err)
	}
	fn := f.Name()
	success := false
	defer func() {
		if !success {
			removeTemp(fn)
		}
	}()

	if _, err := f.Write(audio); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("cannot write temporary audio file %q: %w", fn, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("cannot close temporary audio file %q: %w", fn, err)
	}

	success = true
	return fn, nil
}

func (this *Playback) metrics() *metrics.Metrics {
	if v := this.Metrics; v != nil {
		return v
	}
	return metrics.Default
}

func removeTemp(fn string) {
	if err := os.Remove(fn); err != nil {
		log.With("file", fn).
			WithError(err).
			Warn("Cannot remove temporary audio file.")
		return
	}
	log.With("file", fn).
		Debug("Temporary audio file removed.")
}

func logPlayerFallback(p Player, err error) {
	log.With("player", p).
		WithError(err).
		Warn("Player failed, trying next one...")
}
