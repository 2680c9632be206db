package signal

// Signal makes the current recording state visible outside of the
// terminal, for example with a light.
type Signal interface {
	Ensure(Context) error
	Update() error
	Dispose() error

	GetType() Type
}
