package homeassistant

import (
	"time"

	"github.com/blaubaer/talk-assistant/pkg/signal"
)

type stateGetResponse struct {
	EntityId     string         `json:"entity_id"`
	State        signal.State   `json:"state"`
	Attributes   map[string]any `json:"attributes"`
	LastChanged  time.Time      `json:"last_changed"`
	LastReported time.Time      `json:"last_reported"`
	LastUpdated  time.Time      `json:"last_updated"`
	Context      map[string]any `json:"context"`
}

func (this *stateGetResponse) getAttrSince() time.Time {
	if this.Attributes != nil {
		if plain, ok := this.Attributes[attrSince].(string); ok {
			if v, err := time.Parse(time.RFC3339, plain); err == nil {
				return v
			}
		}
	}
	return time.Time{}
}

type statePostRequest struct {
	State      signal.State   `json:"state"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

func (this *statePostRequest) setAttrSince(v time.Time) {
	if this.Attributes == nil {
		this.Attributes = make(map[string]any)
	}
	if v.IsZero() {
		delete(this.Attributes, attrSince)
		return
	}
	this.Attributes[attrSince] = v.UTC().Format(time.RFC3339)
}

const attrSince = "since"

type state struct {
	timestamp time.Time
	state     signal.State
	since     time.Time
}

func (this *state) isEqualTo(o *state) bool {
	return this.state == o.state &&
		this.since.Truncate(time.Second).Equal(o.since.Truncate(time.Second))
}
