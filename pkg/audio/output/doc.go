// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides the pull-based Output interface and an oto implementation
// Package output provides audio playback interfaces.
//
// Backends pull mono float32 little-endian samples from an io.Reader, so the
// reader's Read method acts as the device callback.
//
// Example:
//
//	out := output.NewOto(1024)
//	err := out.Open(48000, session)
//	out.SetVolume(80)
package output
