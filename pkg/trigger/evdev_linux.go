//go:build linux

package trigger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"unsafe"

	log "github.com/echocat/slf4g"
	"golang.org/x/sys/unix"
)

var inputEventSize = int(unsafe.Sizeof(unix.Timeval{})) + 8

const pollIntervalMillis = 250

func (this *Evdev) Run(ctx context.Context, handler Handler) error {
	fd, err := unix.Open(this.Device, unix.O_RDONLY|unix.O_CLOEXEC|unix.O_NONBLOCK, 0)
	if err != nil {
		return fmt.Errorf("cannot open input device %q: %w", this.Device, err)
	}
	defer func() {
		_ = unix.Close(fd)
	}()

	log.With("device", this.Device).
		With("button", this.Button).
		Info("Waiting for push-to-talk button...")

	buf := make([]byte, inputEventSize*64)
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	for {
		if ctx.Err() != nil {
			return nil
		}

		n, err := unix.Poll(fds, pollIntervalMillis)
		if errors.Is(err, unix.EINTR) || n == 0 {
			continue
		}
		if err != nil {
			return fmt.Errorf("cannot poll input device %q: %w", this.Device, err)
		}
		if fds[0].Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
			return fmt.Errorf("input device %q is gone", this.Device)
		}

		read, err := unix.Read(fd, buf)
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return fmt.Errorf("cannot read from input device %q: %w", this.Device, err)
		}
		if read == 0 {
			return fmt.Errorf("input device %q reached its end", this.Device)
		}

		this.handleEvents(ctx, buf[:read], handler)
	}
}

func (this *Evdev) handleEvents(ctx context.Context, b []byte, handler Handler) {
	for len(b) >= inputEventSize {
		pressed, released := this.dispatch(decodeInputEvent(b[:inputEventSize]))
		if pressed {
			handler.OnPress(ctx)
		} else if released {
			handler.OnRelease(ctx)
		}
		b = b[inputEventSize:]
	}
}

func decodeInputEvent(b []byte) inputEvent {
	offset := inputEventSize - 8
	return inputEvent{
		Type:  binary.NativeEndian.Uint16(b[offset:]),
		Code:  binary.NativeEndian.Uint16(b[offset+2:]),
		Value: int32(binary.NativeEndian.Uint32(b[offset+4:])),
	}
}
