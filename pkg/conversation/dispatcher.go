package conversation

import (
	"context"
	"fmt"
)

// DeliverFunc receives every composed prompt.
type DeliverFunc func(ctx context.Context, prompt string) error

// Dispatcher hands prompts to a caller supplied callback. Failures of the
// callback, including panics, are converted into errors so the caller can
// carry on with the next prompt.
type Dispatcher struct {
	Deliver DeliverFunc
}

func (this *Dispatcher) Dispatch(ctx context.Context, prompt string) (rErr error) {
	deliver := this.Deliver
	if deliver == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			rErr = fmt.Errorf("delivery of prompt panicked: %v", r)
		}
	}()

	if err := deliver(ctx, prompt); err != nil {
		return fmt.Errorf("delivery of prompt failed: %w", err)
	}
	return nil
}
