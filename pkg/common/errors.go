package common

import "errors"

// AsError finds the first error in the chain of err which is of type T,
// like the APIError of a hue bridge.
func AsError[T error](err error) (T, bool) {
	var target T
	return target, errors.As(err, &target)
}
