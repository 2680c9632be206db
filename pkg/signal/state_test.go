package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blaubaer/talk-assistant/pkg/capture"
)

func TestStateOf(t *testing.T) {
	assert.Equal(t, StateOn, StateOf(capture.StateRecording))
	assert.Equal(t, StateOff, StateOf(capture.StateIdle))
}

func TestState_Set(t *testing.T) {
	cases := map[string]State{
		"on":        StateOn,
		" Yes ":     StateOn,
		"recording": StateOn,
		"off":       StateOff,
		"0":         StateOff,
		"idle":      StateOff,
	}
	for plain, expected := range cases {
		t.Run(plain, func(t *testing.T) {
			var actual State
			require.NoError(t, actual.Set(plain))
			assert.Equal(t, expected, actual)
		})
	}

	var actual State
	assert.ErrorContains(t, actual.Set("blinking"), "illegal-signal-state")
}

func TestType_roundTripsItsText(t *testing.T) {
	for _, v := range AllTypes {
		text, err := v.MarshalText()
		require.NoError(t, err)

		var actual Type
		require.NoError(t, actual.UnmarshalText(text))
		assert.Equal(t, v, actual)
	}
}
