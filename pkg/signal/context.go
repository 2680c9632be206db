package signal

import "time"

type Context interface {
	State() State
	Since() time.Time
}

// NewContext creates a Context for state which was entered at since.
func NewContext(state State, since time.Time) Context {
	return staticContext{state, since}
}

type staticContext struct {
	state State
	since time.Time
}

func (this staticContext) State() State {
	return this.state
}

func (this staticContext) Since() time.Time {
	return this.since
}
