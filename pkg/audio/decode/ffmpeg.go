// ABOUTME: ffmpeg fallback decoder
// ABOUTME: Converts any format ffmpeg understands to mono 16-bit PCM at 48kHz
package decode

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Melonix-Audio/melonix-go/pkg/audio"
)

// FFmpegSampleRate is the rate ffmpeg output is resampled to
const FFmpegSampleRate = 48000

// LoadFFmpeg decodes path by running ffmpeg
func LoadFFmpeg(path string) (audio.Buffer, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return audio.Buffer{}, fmt.Errorf("%s: ffmpeg not found in PATH: %w", path, ErrUnsupportedFormat)
	}

	// -f s16le: signed 16-bit little-endian PCM
	// -ac 1: downmix to mono
	cmd := exec.Command("ffmpeg",
		"-loglevel", "error",
		"-i", path,
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", FFmpegSampleRate),
		"-ac", "1",
		"-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		return audio.Buffer{}, fmt.Errorf("ffmpeg failed on %s: %v (%s): %w", path, err, msg, ErrUnsupportedFormat)
	}

	samples, err := DecodePCM(stdout.Bytes(), 16)
	if err != nil {
		return audio.Buffer{}, err
	}
	if len(samples) == 0 {
		return audio.Buffer{}, fmt.Errorf("ffmpeg produced no audio for %s: %w", path, ErrUnsupportedFormat)
	}

	return audio.Buffer{
		Samples:    samples,
		SampleRate: FFmpegSampleRate,
	}, nil
}
