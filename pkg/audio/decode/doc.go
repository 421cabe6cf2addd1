// ABOUTME: Audio file decoding package
// ABOUTME: Loads WAV, MP3, FLAC and ffmpeg-readable files into mono float32 buffers
// Package decode loads audio files into mono float32 buffers.
//
// WAV, MP3 and FLAC are decoded natively. Any other extension is handed to
// ffmpeg when it is installed. Multi-channel audio is averaged to mono.
//
// Example:
//
//	buf, err := decode.Load("take.wav")
//	if errors.Is(err, decode.ErrUnsupportedFormat) {
//		...
//	}
package decode
