package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blaubaer/talk-assistant/pkg/signal"
	"github.com/blaubaer/talk-assistant/pkg/signal/hue"
	"github.com/blaubaer/talk-assistant/pkg/trigger"
)

func TestConfiguration_applyFlags_keepsValuesWhichAreNotProvided(t *testing.T) {
	dst := NewConfiguration()
	dst.OpenAi.ApiKey = "file-key"
	dst.Speech.Players = []string{"aplay"}

	require.NoError(t, dst.applyFlags(nil))

	assert.Equal(t, "file-key", dst.OpenAi.ApiKey)
	assert.Equal(t, "^OnAir", dst.Signal.Hue.Name.String())
	assert.Equal(t, DefaultReplyMaxLength, dst.ReplyMaxLength)
	assert.Equal(t, []string{"aplay"}, dst.Speech.Players)
}

func TestConfiguration_applyFlags_overridesWithProvidedValues(t *testing.T) {
	dst := NewConfiguration()
	dst.OpenAi.ApiKey = "file-key"
	dst.Trigger.Type = trigger.TypeTerminal
	dst.Speech.Players = []string{"aplay", "paplay"}

	require.NoError(t, dst.applyFlags([]flagValue{
		{"openai.apiKey", "flag-key"},
		{"signal", "hue"},
		{"signal.hue.name", "^Studio"},
		{"speech.player", "ffplay"},
		{"trigger", "evdev"},
		{"pingOnStart", "false"},
		{"signal.hue.restore", "false"},
		{"configuration", "ignored.yml"},
	}))

	assert.Equal(t, "flag-key", dst.OpenAi.ApiKey)
	assert.Equal(t, signal.TypeHue, dst.Signal.Type)
	assert.Equal(t, "^Studio", dst.Signal.Hue.Name.String())
	assert.Equal(t, []string{"ffplay"}, dst.Speech.Players)
	assert.Equal(t, trigger.TypeEvdev, dst.Trigger.Type)
	assert.False(t, dst.PingOnStart)
	assert.False(t, dst.Signal.Hue.Restore)
}

func TestConfiguration_applyFlags_appliesZeroValuesOfEnvironment(t *testing.T) {
	t.Setenv("TA_PING_ON_START", "false")
	t.Setenv("TA_SIGNAL_HUE_KIND", "group")
	dst := NewConfiguration()
	dst.Signal.Hue.Kinds = hue.Kinds{hue.KindLight}

	require.NoError(t, dst.applyFlags(nil))

	assert.False(t, dst.PingOnStart)
	assert.Equal(t, hue.Kinds{hue.KindGroup}, dst.Signal.Hue.Kinds)
}

func TestConfiguration_saveToAndLoadFrom(t *testing.T) {
	given := NewConfiguration()
	given.OpenAi.ApiKey = "openai-key"
	given.ContextSize = 7
	var buf bytes.Buffer

	require.NoError(t, given.saveTo(&buf))
	actual := NewConfiguration()
	require.NoError(t, actual.loadFrom(&buf))

	assert.Equal(t, "openai-key", actual.OpenAi.ApiKey)
	assert.Equal(t, 7, actual.ContextSize)
}

func TestConfiguration_loadFrom_emptyKeepsDefaults(t *testing.T) {
	actual := NewConfiguration()

	require.NoError(t, actual.loadFrom(strings.NewReader("")))

	assert.Equal(t, NewConfiguration().ContextSize, actual.ContextSize)
}

func TestConfiguration_Validate(t *testing.T) {
	instance := NewConfiguration()
	instance.OpenAi.ApiKey = "openai-key"
	instance.Speech.ApiKey = "speech-key"
	require.NoError(t, instance.Validate())

	instance.ContextSize = 0
	assert.ErrorContains(t, instance.Validate(), "illegal context size")

	instance.ContextSize = 1
	instance.Speech.ApiKey = ""
	assert.ErrorContains(t, instance.Validate(), "no ElevenLabs API key configured")
}
