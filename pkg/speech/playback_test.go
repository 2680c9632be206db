package speech

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blaubaer/talk-assistant/pkg/metrics"
)

func TestPlayback_SynthesizeAndPlay_success(t *testing.T) {
	dir := t.TempDir()
	synth := &fakeSynthesizer{audio: []byte("audio")}
	player := &fakePlayer{}
	instance := newTestPlayback(dir, synth, player)

	require.NoError(t, instance.SynthesizeAndPlay(context.Background(), "Testausgabe"))

	require.Len(t, player.played, 1)
	assert.Equal(t, dir, filepath.Dir(player.played[0]))
	assert.Equal(t, ".mp3", filepath.Ext(player.played[0]))
	assert.Equal(t, []byte("audio"), player.contents[0])
	assert.Equal(t, "Testausgabe", synth.requests[0].Text)
	assert.Equal(t, "voice", synth.requests[0].VoiceId)
	assert.Equal(t, "model", synth.requests[0].ModelId)
	assert.Equal(t, DefaultVoiceSettings(), synth.requests[0].VoiceSettings)
	assertDirEmpty(t, dir)
}

func TestPlayback_SynthesizeAndPlay_httpError(t *testing.T) {
	dir := t.TempDir()
	synth := &fakeSynthesizer{err: &HttpError{
		StatusCode: 402,
		Status:     "402 Payment Required",
		Detail:     ErrorDetail{ErrorDetailKindStructured, "quota exceeded"},
	}}
	player := &fakePlayer{}
	instance := newTestPlayback(dir, synth, player)

	err := instance.SynthesizeAndPlay(context.Background(), "Testausgabe")

	assert.ErrorIs(t, err, ErrSynthesis)
	assert.ErrorContains(t, err, "quota exceeded")
	assert.Empty(t, player.played)
	assertDirEmpty(t, dir)
}

func TestPlayback_SynthesizeAndPlay_transportError(t *testing.T) {
	dir := t.TempDir()
	instance := newTestPlayback(dir, &fakeSynthesizer{err: context.DeadlineExceeded}, &fakePlayer{})

	assert.ErrorIs(t, instance.SynthesizeAndPlay(context.Background(), "x"), context.DeadlineExceeded)
	assertDirEmpty(t, dir)
}

func TestPlayback_SynthesizeAndPlay_emptyAudio(t *testing.T) {
	dir := t.TempDir()
	player := &fakePlayer{}
	instance := newTestPlayback(dir, &fakeSynthesizer{}, player)

	assert.ErrorIs(t, instance.SynthesizeAndPlay(context.Background(), "x"), ErrSynthesis)
	assert.Empty(t, player.played)
	assertDirEmpty(t, dir)
}

func TestPlayback_SynthesizeAndPlay_primaryFailsSecondarySucceeds(t *testing.T) {
	dir := t.TempDir()
	primary := &fakePlayer{err: errors.New("mpg123 missing")}
	secondary := &fakePlayer{}
	instance := newTestPlayback(dir, &fakeSynthesizer{audio: []byte("audio")}, FallbackPlayer{primary, secondary})

	require.NoError(t, instance.SynthesizeAndPlay(context.Background(), "x"))

	assert.Len(t, primary.played, 1)
	assert.Len(t, secondary.played, 1)
	assert.Equal(t, primary.played[0], secondary.played[0])
	assertDirEmpty(t, dir)
}

func TestPlayback_SynthesizeAndPlay_allPlayersFail(t *testing.T) {
	dir := t.TempDir()
	primary := &fakePlayer{err: errors.New("primary")}
	secondary := &fakePlayer{err: errors.New("secondary")}
	instance := newTestPlayback(dir, &fakeSynthesizer{audio: []byte("audio")}, FallbackPlayer{primary, secondary})

	err := instance.SynthesizeAndPlay(context.Background(), "x")

	assert.ErrorIs(t, err, ErrPlayback)
	assert.ErrorContains(t, err, "primary")
	assert.ErrorContains(t, err, "secondary")
	assertDirEmpty(t, dir)
}

func TestPlayback_SynthesizeAndPlay_withCommandPlayers(t *testing.T) {
	dir := t.TempDir()
	scripts := t.TempDir()
	marker := filepath.Join(scripts, "played")
	failing := writeScript(t, scripts, "fail.sh", "#!/bin/sh\nexit 3\n")
	succeeding := writeScript(t, scripts, "play.sh", "#!/bin/sh\ncp \"$1\" '"+marker+"'\n")

	instance := newTestPlayback(dir, &fakeSynthesizer{audio: []byte("mp3")}, FallbackPlayer{
		CommandPlayer{Name: failing},
		CommandPlayer{Name: filepath.Join(scripts, "does-not-exist")},
		CommandPlayer{Name: succeeding},
	})

	require.NoError(t, instance.SynthesizeAndPlay(context.Background(), "x"))

	played, err := os.ReadFile(marker)
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3"), played)
	assertDirEmpty(t, dir)
}

func newTestPlayback(dir string, synth Synthesizer, player Player) *Playback {
	return &Playback{
		Synthesizer:   synth,
		Player:        player,
		VoiceId:       "voice",
		ModelId:       "model",
		VoiceSettings: DefaultVoiceSettings(),
		TempDir:       dir,
		Metrics:       metrics.New(nil),
	}
}

func assertDirEmpty(t testing.TB, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type fakeSynthesizer struct {
	audio    []byte
	err      error
	requests []Request
}

func (this *fakeSynthesizer) Synthesize(_ context.Context, req Request) ([]byte, error) {
	this.requests = append(this.requests, req)
	return this.audio, this.err
}

type fakePlayer struct {
	err      error
	played   []string
	contents [][]byte
}

func (this *fakePlayer) Play(_ context.Context, filename string) error {
	this.played = append(this.played, filename)
	b, _ := os.ReadFile(filename)
	this.contents = append(this.contents, b)
	return this.err
}
