//go:build !linux

package trigger

import (
	"context"
	"fmt"
)

func (this *Evdev) Run(context.Context, Handler) error {
	return fmt.Errorf("the evdev trigger is only supported on linux")
}
