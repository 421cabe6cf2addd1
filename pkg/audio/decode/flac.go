// ABOUTME: FLAC decoder
// ABOUTME: Parses every frame with mewkiz/flac and downmixes to mono
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/Melonix-Audio/melonix-go/pkg/audio"
	"github.com/mewkiz/flac"
)

// LoadFLAC decodes a FLAC file
func LoadFLAC(path string) (audio.Buffer, error) {
	stream, err := flac.Open(path)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to open FLAC file: %w", err)
	}
	defer stream.Close()

	return decodeFLACStream(stream)
}

// DecodeFLAC decodes FLAC data from r
func DecodeFLAC(r io.Reader) (audio.Buffer, error) {
	stream, err := flac.New(r)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to decode FLAC: %w", err)
	}
	defer stream.Close()

	return decodeFLACStream(stream)
}

func decodeFLACStream(stream *flac.Stream) (audio.Buffer, error) {
	info := stream.Info
	channels := int(info.NChannels)
	bitDepth := int(info.BitsPerSample)
	if channels <= 0 {
		return audio.Buffer{}, fmt.Errorf("FLAC has %d channels: %w", channels, ErrUnsupportedFormat)
	}

	var mono []float32
	if info.NSamples > 0 {
		mono = make([]float32, 0, info.NSamples)
	}

	for {
		frame, err := stream.ParseNext()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return audio.Buffer{}, fmt.Errorf("failed to parse FLAC frame: %w", err)
		}

		for i := 0; i < int(frame.BlockSize); i++ {
			var sum float32
			for ch := 0; ch < channels; ch++ {
				sum += audio.SampleFromBits(frame.Subframes[ch].Samples[i], bitDepth)
			}
			mono = append(mono, sum/float32(channels))
		}
	}

	return audio.Buffer{
		Samples:    mono,
		SampleRate: int(info.SampleRate),
	}, nil
}
