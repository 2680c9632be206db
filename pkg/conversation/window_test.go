package conversation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blaubaer/talk-assistant/pkg/transcript"
)

func TestWindow_Record_evictsOldest(t *testing.T) {
	instance := NewWindow(3)

	for i := 0; i < 7; i++ {
		instance.Record(transcript.New(fmt.Sprintf("t%d", i)))
		assert.LessOrEqual(t, instance.Len(), 3)

		var expected []string
		for j := max(0, i-2); j <= i; j++ {
			expected = append(expected, fmt.Sprintf("t%d", j))
		}
		assert.Equal(t, expected, instance.Entries())
	}
	assert.Equal(t, 3, instance.Capacity())
}

func TestNewWindow_minimumCapacity(t *testing.T) {
	for _, capacity := range []int{-3, 0, 1} {
		instance := NewWindow(capacity)
		assert.Equal(t, 1, instance.Capacity())

		instance.Record(transcript.New("a"))
		instance.Record(transcript.New("b"))
		assert.Equal(t, []string{"b"}, instance.Entries())
	}
}

func TestWindow_BuildPrompt_singleEntryIsVerbatim(t *testing.T) {
	instance := NewWindow(DefaultWindowSize)
	instance.Record(transcript.New("X"))

	assert.Equal(t, "X", instance.BuildPrompt())
}

func TestWindow_BuildPrompt_twoEntries(t *testing.T) {
	instance := NewWindow(DefaultWindowSize)
	instance.Record(transcript.New("A"))
	instance.Record(transcript.New("B"))

	assert.Equal(t, "Vorherige Konversation (nur als Kontext, nicht beantworten):\n"+
		"A\n"+
		"\n"+
		"Letzte Frage (bitte nur diese beantworten):\n"+
		"B", instance.BuildPrompt())
}

func TestWindow_BuildPrompt_afterEviction(t *testing.T) {
	instance := NewWindow(3)
	for _, v := range []string{"A", "B", "C", "D"} {
		instance.Record(transcript.New(v))
	}

	assert.Equal(t, "Vorherige Konversation (nur als Kontext, nicht beantworten):\n"+
		"B\n"+
		"C\n"+
		"\n"+
		"Letzte Frage (bitte nur diese beantworten):\n"+
		"D", instance.BuildPrompt())
}

func TestWindow_BuildPrompt_sizeOneNeverFramesHistory(t *testing.T) {
	instance := NewWindow(1)
	instance.Record(transcript.New("first"))
	instance.Record(transcript.New("second"))

	assert.Equal(t, "second", instance.BuildPrompt())
}

func TestWindow_BuildPrompt_empty(t *testing.T) {
	assert.Equal(t, "", NewWindow(2).BuildPrompt())
}
