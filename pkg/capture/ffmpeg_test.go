package capture

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFfmpeg_Open_readsSamples(t *testing.T) {
	script := writeScript(t, "capture.sh", "#!/bin/sh\nprintf '\\001\\000\\002\\000'\nexec sleep 5\n")
	instance := &Ffmpeg{Command: script, FramesPerBuffer: 2}

	var mutex sync.Mutex
	var received []int16
	stream, err := instance.Open(DefaultFormat(), func(frame []int16) {
		mutex.Lock()
		defer mutex.Unlock()
		received = append(received, frame...)
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		mutex.Lock()
		defer mutex.Unlock()
		return len(received) == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.NoError(t, stream.Close())
	assert.NoError(t, stream.Close())

	mutex.Lock()
	defer mutex.Unlock()
	assert.Equal(t, []int16{1, 2}, received)
}

func TestFfmpeg_Open_earlyExit(t *testing.T) {
	script := writeScript(t, "fail.sh", "#!/bin/sh\necho 'boom' 1>&2\nexit 1\n")
	instance := &Ffmpeg{Command: script}

	_, err := instance.Open(DefaultFormat(), func([]int16) {})

	assert.ErrorContains(t, err, "exited before capture started")
	assert.ErrorContains(t, err, "boom")
}

func TestFfmpeg_Open_missingCommand(t *testing.T) {
	instance := &Ffmpeg{Command: filepath.Join(t.TempDir(), "missing")}

	_, err := instance.Open(DefaultFormat(), func([]int16) {})

	assert.ErrorContains(t, err, "failed to start ffmpeg")
}

func TestFfmpeg_args(t *testing.T) {
	instance := &Ffmpeg{InputFormat: "alsa", InputDevice: "hw:1"}

	assert.Equal(t, []string{
		"-nostdin", "-hide_banner", "-loglevel", "warning",
		"-f", "alsa", "-i", "hw:1",
		"-ac", "1", "-ar", "16000",
		"-f", "s16le", "-",
	}, instance.args(DefaultFormat()))
}

func writeScript(t testing.TB, name, contents string) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(fn, []byte(contents), 0o700))
	return fn
}
