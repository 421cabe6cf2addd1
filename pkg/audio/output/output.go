// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for pull-based playback backends
package output

import "io"

// Output represents an audio output device that pulls mono float32
// little-endian samples from a source
type Output interface {
	// Open initializes the device and starts pulling from src
	Open(sampleRate int, src io.Reader) error

	// SetVolume sets the volume (0-100)
	SetVolume(volume int)

	// SetMuted sets mute state
	SetMuted(muted bool)

	// Close releases output resources
	Close() error
}
