package transcript

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Transcript is the text result of one completed recording.
type Transcript struct {
	Id        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

func New(text string) Transcript {
	return Transcript{
		Id:        uuid.New(),
		Text:      strings.TrimSpace(text),
		CreatedAt: time.Now(),
	}
}

func (this Transcript) IsZero() bool {
	return this.Text == ""
}

func (this Transcript) HasContent() bool {
	return !this.IsZero()
}

func (this Transcript) String() string {
	return this.Text
}
