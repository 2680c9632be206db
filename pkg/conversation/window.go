package conversation

import (
	"strings"

	"github.com/blaubaer/talk-assistant/pkg/transcript"
)

const (
	DefaultWindowSize = 5

	historyLabel  = "Vorherige Konversation (nur als Kontext, nicht beantworten):"
	questionLabel = "Letzte Frage (bitte nur diese beantworten):"
)

// Window holds the most recent transcripts of a conversation. It is not
// synchronized; only the consuming Worker mutates it.
type Window struct {
	entries         []transcript.Transcript
	entriesOffset   int
	entriesLength   int
	entriesCapacity int
}

func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{
		entries:         make([]transcript.Transcript, capacity),
		entriesCapacity: capacity,
	}
}

// Record appends v and evicts the oldest entry if the window is full.
func (this *Window) Record(v transcript.Transcript) {
	if this.entriesLength >= this.entriesCapacity {
		this.entries[this.entriesOffset] = v
		this.entriesOffset = (this.entriesOffset + 1) % this.entriesCapacity
		return
	}
	i := (this.entriesOffset + this.entriesLength) % this.entriesCapacity
	this.entries[i] = v
	this.entriesLength++
}

func (this *Window) Len() int {
	return this.entriesLength
}

func (this *Window) Capacity() int {
	return this.entriesCapacity
}

// Transcripts returns the current content, oldest first.
func (this *Window) Transcripts() []transcript.Transcript {
	result := make([]transcript.Transcript, this.entriesLength)
	for i := range result {
		result[i] = this.entries[(this.entriesOffset+i)%this.entriesCapacity]
	}
	return result
}

// Entries returns the texts of the current content, oldest first.
func (this *Window) Entries() []string {
	ts := this.Transcripts()
	result := make([]string, len(ts))
	for i, v := range ts {
		result[i] = v.Text
	}
	return result
}

// BuildPrompt turns the current content into the prompt for the responder.
// A single entry is used verbatim; with more entries everything but the
// newest one is framed as history which must not be answered.
func (this *Window) BuildPrompt() string {
	entries := this.Entries()
	switch len(entries) {
	case 0:
		return ""
	case 1:
		return entries[0]
	}

	last := len(entries) - 1
	var buf strings.Builder
	buf.WriteString(historyLabel)
	buf.WriteByte('\n')
	buf.WriteString(strings.Join(entries[:last], "\n"))
	buf.WriteString("\n\n")
	buf.WriteString(questionLabel)
	buf.WriteByte('\n')
	buf.WriteString(entries[last])
	return buf.String()
}
