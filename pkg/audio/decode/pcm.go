// ABOUTME: Raw PCM decoding
// ABOUTME: Converts interleaved 16-bit and 24-bit little-endian PCM to float32 samples
package decode

import (
	"encoding/binary"
	"fmt"

	"github.com/Melonix-Audio/melonix-go/pkg/audio"
)

// DecodePCM converts interleaved little-endian PCM bytes to float32 samples.
// Trailing bytes that do not form a whole sample are ignored.
func DecodePCM(data []byte, bitDepth int) ([]float32, error) {
	switch bitDepth {
	case 16:
		numSamples := len(data) / 2
		samples := make([]float32, numSamples)
		for i := 0; i < numSamples; i++ {
			sample16 := int16(binary.LittleEndian.Uint16(data[i*2:]))
			samples[i] = audio.SampleFromInt16(sample16)
		}
		return samples, nil
	case 24:
		// 24-bit PCM: 3 bytes per sample
		numSamples := len(data) / 3
		samples := make([]float32, numSamples)
		for i := 0; i < numSamples; i++ {
			b := [3]byte{data[i*3], data[i*3+1], data[i*3+2]}
			samples[i] = audio.SampleFromInt24(audio.SampleFrom24Bit(b))
		}
		return samples, nil
	default:
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", bitDepth)
	}
}

// Mixdown averages interleaved frames into a mono signal
func Mixdown(interleaved []float32, channels int) []float32 {
	if channels <= 1 {
		return interleaved
	}
	frames := len(interleaved) / channels
	mono := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			sum += interleaved[i*channels+ch]
		}
		mono[i] = sum / float32(channels)
	}
	return mono
}
