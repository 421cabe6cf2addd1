// ABOUTME: Audio type definitions
// ABOUTME: Defines the mono sample buffer and sample conversion helpers
package audio

import (
	"encoding/binary"
	"math"
	"time"
)

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23

	// BytesPerSample is the size of one float32 device sample
	BytesPerSample = 4
)

// Buffer is an immutable mono recording at a fixed sample rate.
// Index 0 is time 0 in recording space.
type Buffer struct {
	Samples    []float32
	SampleRate int
}

// Len returns the number of samples
func (b Buffer) Len() int {
	return len(b.Samples)
}

// Empty reports whether the buffer holds no playable data
func (b Buffer) Empty() bool {
	return len(b.Samples) == 0 || b.SampleRate <= 0
}

// Duration returns the unwarped length of the recording
func (b Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(b.Samples)) / float64(b.SampleRate) * float64(time.Second))
}

// SampleFromInt16 converts a 16-bit PCM sample to float in [-1, 1)
func SampleFromInt16(sample int16) float32 {
	return float32(sample) / 32768
}

// SampleFromInt24 converts a sign-extended 24-bit PCM sample to float
func SampleFromInt24(sample int32) float32 {
	return float32(sample) / 8388608
}

// SampleFromBits converts a signed integer sample of the given bit depth to float
func SampleFromBits(sample int32, bitDepth int) float32 {
	if bitDepth <= 0 || bitDepth > 32 {
		return 0
	}
	return float32(float64(sample) / float64(int64(1)<<(bitDepth-1)))
}

// SampleToInt16 converts a float sample to 16-bit PCM with clipping
func SampleToInt16(sample float32) int16 {
	v := math.Round(float64(sample) * 32767)
	if v > math.MaxInt16 {
		v = math.MaxInt16
	} else if v < math.MinInt16 {
		v = math.MinInt16
	}
	return int16(v)
}

// SampleFrom24Bit converts 24-bit packed bytes to int32 (little-endian)
func SampleFrom24Bit(b [3]byte) int32 {
	val := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	// Sign extend from 24-bit to 32-bit
	if val&0x800000 != 0 {
		val |= ^0xFFFFFF
	}
	return val
}

// PutFloat32s encodes samples as little-endian float32 into dst.
// Returns the number of bytes written.
func PutFloat32s(dst []byte, samples []float32) int {
	n := 0
	for _, s := range samples {
		if n+BytesPerSample > len(dst) {
			break
		}
		binary.LittleEndian.PutUint32(dst[n:], math.Float32bits(s))
		n += BytesPerSample
	}
	return n
}

// Float32sFromBytes decodes little-endian float32 samples
func Float32sFromBytes(data []byte) []float32 {
	out := make([]float32, len(data)/BytesPerSample)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*BytesPerSample:]))
	}
	return out
}
