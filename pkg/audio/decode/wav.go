// ABOUTME: WAV decoder
// ABOUTME: Reads RIFF/WAVE files with go-audio/wav and downmixes to mono
package decode

import (
	"fmt"
	"io"
	"os"

	"github.com/Melonix-Audio/melonix-go/pkg/audio"
	"github.com/go-audio/wav"
)

// LoadWAV decodes a WAV file
func LoadWAV(path string) (audio.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to open WAV file: %w", err)
	}
	defer f.Close()

	return DecodeWAV(f)
}

// DecodeWAV decodes WAV data from r
func DecodeWAV(r io.ReadSeeker) (audio.Buffer, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return audio.Buffer{}, fmt.Errorf("not a valid WAV file: %w", ErrUnsupportedFormat)
	}

	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to decode WAV: %w", err)
	}

	channels := int(d.NumChans)
	bitDepth := int(d.BitDepth)
	if channels <= 0 {
		return audio.Buffer{}, fmt.Errorf("WAV has %d channels: %w", channels, ErrUnsupportedFormat)
	}

	interleaved := make([]float32, len(pcm.Data))
	for i, v := range pcm.Data {
		interleaved[i] = audio.SampleFromBits(int32(v), bitDepth)
	}

	return audio.Buffer{
		Samples:    Mixdown(interleaved, channels),
		SampleRate: int(d.SampleRate),
	}, nil
}
