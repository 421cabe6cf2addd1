// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines the mono Buffer type and sample conversion functions
// Package audio provides fundamental audio types shared by the decoder,
// the granular engine and the output device.
//
// All processing happens on mono float32 samples:
//   - Buffer: an immutable recording plus its sample rate
//   - PutFloat32s / Float32sFromBytes: device byte encoding (float32 LE)
//   - SampleFromInt16 / SampleFromInt24 / SampleFromBits: PCM to float
//   - Tone: a generated sine for trying the editor without a file
//
// Example:
//
//	buf := audio.Buffer{Samples: samples, SampleRate: 48000}
//	log.Printf("loaded %v", buf.Duration())
package audio
