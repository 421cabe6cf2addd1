// ABOUTME: Audio file loader with extension dispatch
// ABOUTME: Decodes WAV, MP3 and FLAC natively and anything else through ffmpeg
package decode

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/Melonix-Audio/melonix-go/pkg/audio"
)

// ErrUnsupportedFormat is returned when no decoder can read a file
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Load decodes the file at path into a mono buffer
func Load(path string) (audio.Buffer, error) {
	var (
		buf audio.Buffer
		err error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		buf, err = LoadWAV(path)
	case ".mp3":
		buf, err = LoadMP3(path)
	case ".flac":
		buf, err = LoadFLAC(path)
	default:
		buf, err = LoadFFmpeg(path)
	}
	if err != nil {
		return audio.Buffer{}, err
	}

	if buf.SampleRate <= 0 {
		return audio.Buffer{}, fmt.Errorf("%s: invalid sample rate %d", path, buf.SampleRate)
	}

	log.Printf("Loaded %s: %d samples at %d Hz (%v)",
		filepath.Base(path), buf.Len(), buf.SampleRate, buf.Duration())

	return buf, nil
}
