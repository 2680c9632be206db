package capture

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func writeWav(fn string, samples []int16, format Format) (rErr error) {
	f, err := os.Create(fn)
	if err != nil {
		return fmt.Errorf("cannot create %q: %w", fn, err)
	}
	defer func() {
		if err := f.Close(); err != nil && rErr == nil {
			rErr = fmt.Errorf("cannot close %q: %w", fn, err)
		}
	}()

	enc := wav.NewEncoder(f, format.SampleRate, 16, format.Channels, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: format.Channels,
			SampleRate:  format.SampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, v := range samples {
		buf.Data[i] = int(v)
	}

	if err := enc.Write(buf); err != nil {
		_ = enc.Close()
		return fmt.Errorf("cannot write samples to %q: %w", fn, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("cannot finish %q: %w", fn, err)
	}
	return nil
}
