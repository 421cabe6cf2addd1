// ABOUTME: MP3 decoder
// ABOUTME: Decodes a whole MP3 file with go-mp3 and downmixes to mono
package decode

import (
	"fmt"
	"io"
	"os"

	"github.com/Melonix-Audio/melonix-go/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// LoadMP3 decodes an MP3 file
func LoadMP3(path string) (audio.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to open MP3 file: %w", err)
	}
	defer f.Close()

	return DecodeMP3(f)
}

// DecodeMP3 decodes MP3 data from r
func DecodeMP3(r io.Reader) (audio.Buffer, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to decode MP3: %w", err)
	}

	// MP3 decoder outputs stereo int16
	data, err := io.ReadAll(decoder)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("mp3 decode error: %w", err)
	}

	interleaved, err := DecodePCM(data, 16)
	if err != nil {
		return audio.Buffer{}, err
	}

	return audio.Buffer{
		Samples:    Mixdown(interleaved, 2),
		SampleRate: decoder.SampleRate(),
	}, nil
}
