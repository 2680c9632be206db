package trigger

import (
	log "github.com/echocat/slf4g"
)

const (
	evKey = uint16(0x01)

	keyReleased = int32(0)
	keyPressed  = int32(1)
)

// Evdev reads button events from a Linux input device. Only the configured
// Button is respected; auto repeats are ignored.
type Evdev struct {
	Device string
	Button uint16

	pressed bool
}

type inputEvent struct {
	Type  uint16
	Code  uint16
	Value int32
}

func (this *Evdev) dispatch(ev inputEvent) (pressed, released bool) {
	if ev.Type != evKey || ev.Code != this.Button {
		return false, false
	}
	switch ev.Value {
	case keyPressed:
		if this.pressed {
			return false, false
		}
		this.pressed = true
		log.With("button", ev.Code).
			Debug("Push-to-talk button pressed.")
		return true, false
	case keyReleased:
		if !this.pressed {
			return false, false
		}
		this.pressed = false
		log.With("button", ev.Code).
			Debug("Push-to-talk button released.")
		return false, true
	default:
		return false, false
	}
}
