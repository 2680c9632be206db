package capture

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Start_isIdempotent(t *testing.T) {
	input := &fakeInput{}
	instance := newTestSession(t, input)

	require.NoError(t, instance.Start())
	require.NoError(t, instance.Start())

	assert.Equal(t, StateRecording, instance.State())
	assert.Equal(t, 1, input.opened)
}

func TestSession_Stop_whileIdleIsNoop(t *testing.T) {
	instance := newTestSession(t, &fakeInput{})

	fn, ok, err := instance.Stop()

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, fn)
	assert.Equal(t, StateIdle, instance.State())
	assert.NoFileExists(t, instance.Filename)
}

func TestSession_Stop_writesWav(t *testing.T) {
	input := &fakeInput{}
	instance := newTestSession(t, input)

	require.NoError(t, instance.Start())
	input.emit([]int16{1, 2, 3})
	input.emit([]int16{-4, 5})
	fn, ok, err := instance.Stop()

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, instance.Filename, fn)
	assert.Equal(t, StateIdle, instance.State())
	assert.Equal(t, 1, input.closed)
	assert.Equal(t, []int{1, 2, 3, -4, 5}, readWavSamples(t, fn))
}

func TestSession_Stop_withoutFrames(t *testing.T) {
	instance := newTestSession(t, &fakeInput{})

	require.NoError(t, instance.Start())
	fn, ok, err := instance.Stop()

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, fn)
	assert.NoFileExists(t, instance.Filename)
}

func TestSession_Start_clearsPreviousFrames(t *testing.T) {
	input := &fakeInput{}
	instance := newTestSession(t, input)

	require.NoError(t, instance.Start())
	input.emit([]int16{7, 7, 7})
	_, _, err := instance.Stop()
	require.NoError(t, err)

	require.NoError(t, instance.Start())
	input.emit([]int16{9})
	fn, ok, err := instance.Stop()

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int{9}, readWavSamples(t, fn))
}

func TestSession_Append_ignoredWhileIdle(t *testing.T) {
	input := &fakeInput{}
	instance := newTestSession(t, input)

	instance.Append([]int16{1, 2})
	require.NoError(t, instance.Start())
	input.emit([]int16{3})
	_, _, err := instance.Stop()
	require.NoError(t, err)
	input.emit([]int16{4})

	require.NoError(t, instance.Start())
	fn, ok, err := instance.Stop()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, fn)
}

func TestSession_Append_copiesFrame(t *testing.T) {
	input := &fakeInput{}
	instance := newTestSession(t, input)

	require.NoError(t, instance.Start())
	frame := []int16{1, 2}
	input.emit(frame)
	frame[0] = 99
	fn, ok, err := instance.Stop()

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, readWavSamples(t, fn))
}

func TestSession_Start_failingInputStaysIdle(t *testing.T) {
	input := &fakeInput{openErr: errors.New("no device")}
	instance := newTestSession(t, input)

	err := instance.Start()

	assert.ErrorContains(t, err, "no device")
	assert.Equal(t, StateIdle, instance.State())
}

func TestSession_Start_withoutInput(t *testing.T) {
	instance := NewSession(nil)

	assert.ErrorIs(t, instance.Start(), ErrNoInput)
	assert.Equal(t, StateIdle, instance.State())
}

func TestSession_concurrentAppend(t *testing.T) {
	input := &fakeInput{}
	instance := newTestSession(t, input)
	require.NoError(t, instance.Start())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				input.emit([]int16{1})
			}
		}()
	}
	wg.Wait()

	fn, ok, err := instance.Stop()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, readWavSamples(t, fn), 800)
}

func TestSession_Dispose_closesStream(t *testing.T) {
	input := &fakeInput{}
	instance := newTestSession(t, input)
	require.NoError(t, instance.Start())

	require.NoError(t, instance.Dispose())

	assert.Equal(t, 1, input.closed)
	assert.Equal(t, StateIdle, instance.State())
	assert.NoFileExists(t, instance.Filename)
}

func TestState_text(t *testing.T) {
	var actual State
	require.NoError(t, actual.Set("Recording"))
	assert.Equal(t, StateRecording, actual)
	assert.Equal(t, "recording", actual.String())
	assert.Equal(t, "idle", StateIdle.String())
	assert.Error(t, actual.Set("paused"))
	assert.Equal(t, "illegal-capture-state-9", State(9).String())
}

func newTestSession(t testing.TB, input Input) *Session {
	result := NewSession(input)
	result.Filename = filepath.Join(t.TempDir(), DefaultFilename)
	return result
}

func readWavSamples(t testing.TB, fn string) []int {
	t.Helper()
	f, err := os.Open(fn)
	require.NoError(t, err)
	defer func() {
		_ = f.Close()
	}()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, uint32(16000), dec.SampleRate)
	assert.Equal(t, uint16(1), dec.NumChans)
	return buf.Data
}

type fakeInput struct {
	openErr  error
	opened   int
	closed   int
	callback func([]int16)
	mutex    sync.Mutex
}

func (this *fakeInput) Open(_ Format, callback func([]int16)) (Stream, error) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	if this.openErr != nil {
		return nil, this.openErr
	}
	this.opened++
	this.callback = callback
	return fakeStream{this}, nil
}

func (this *fakeInput) emit(frame []int16) {
	this.mutex.Lock()
	callback := this.callback
	this.mutex.Unlock()
	if callback != nil {
		callback(frame)
	}
}

type fakeStream struct {
	input *fakeInput
}

func (this fakeStream) Close() error {
	this.input.mutex.Lock()
	defer this.input.mutex.Unlock()
	this.input.closed++
	return nil
}
