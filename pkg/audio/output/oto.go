// ABOUTME: Oto-based audio output implementation
// ABOUTME: Pulls mono float32 samples from a reader with software volume control
package output

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"math"
	"sync/atomic"
	"time"

	"github.com/Melonix-Audio/melonix-go/pkg/audio"
	"github.com/ebitengine/oto/v3"
)

// Oto output implementation using oto library
type Oto struct {
	otoCtx        *oto.Context
	player        *oto.Player
	sampleRate    int
	bufferSamples int
	volume        atomic.Int32
	muted         atomic.Bool
	ready         bool
}

// NewOto creates a new Oto output. bufferSamples sets the device buffer
// length; zero lets oto choose.
func NewOto(bufferSamples int) *Oto {
	o := &Oto{bufferSamples: bufferSamples}
	o.volume.Store(100)
	return o
}

// Open initializes the output device and starts playback from src
func (o *Oto) Open(sampleRate int, src io.Reader) error {
	// oto only allows one context per process
	if o.otoCtx != nil {
		if o.sampleRate != sampleRate {
			log.Printf("Warning: format change detected (%dHz -> %dHz) but oto doesn't support reinitialization. Continuing with existing context.",
				o.sampleRate, sampleRate)
		}
		if o.player != nil {
			o.player.Close()
		}
		o.player = o.otoCtx.NewPlayer(&volumeReader{src: src, out: o})
		o.player.Play()
		return nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}
	if o.bufferSamples > 0 && sampleRate > 0 {
		op.BufferSize = time.Duration(o.bufferSamples) * time.Second / time.Duration(sampleRate)
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	o.otoCtx = ctx
	o.sampleRate = sampleRate

	o.player = o.otoCtx.NewPlayer(&volumeReader{src: src, out: o})
	o.player.Play()

	o.ready = true

	log.Printf("Audio output initialized: %dHz, mono float32", sampleRate)

	return nil
}

// Close releases output resources
func (o *Oto) Close() error {
	if o.player != nil {
		if err := o.player.Close(); err != nil {
			log.Printf("Failed to close player: %v", err)
		}
		o.player = nil
	}
	if o.otoCtx != nil && o.ready {
		if err := o.otoCtx.Suspend(); err != nil {
			return fmt.Errorf("failed to suspend oto context: %w", err)
		}
		o.ready = false
	}
	return nil
}

// SetVolume sets the volume (0-100)
func (o *Oto) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	o.volume.Store(int32(volume))
	log.Printf("Volume set to %d", volume)
}

// SetMuted sets mute state
func (o *Oto) SetMuted(muted bool) {
	o.muted.Store(muted)
	log.Printf("Muted: %v", muted)
}

// GetVolume returns current volume
func (o *Oto) GetVolume() int {
	return int(o.volume.Load())
}

// IsMuted returns mute state
func (o *Oto) IsMuted() bool {
	return o.muted.Load()
}

// volumeReader scales float32 samples read from src
type volumeReader struct {
	src io.Reader
	out *Oto
}

func (r *volumeReader) Read(p []byte) (int, error) {
	n, err := r.src.Read(p)
	applyVolume(p[:n], getVolumeMultiplier(r.out.GetVolume(), r.out.IsMuted()))
	return n, err
}

// applyVolume scales little-endian float32 samples in place with clipping
func applyVolume(data []byte, multiplier float32) {
	if multiplier == 1 {
		return
	}
	for i := 0; i+audio.BytesPerSample <= len(data); i += audio.BytesPerSample {
		s := math.Float32frombits(binary.LittleEndian.Uint32(data[i:])) * multiplier
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.LittleEndian.PutUint32(data[i:], math.Float32bits(s))
	}
}

// getVolumeMultiplier calculates volume multiplier
func getVolumeMultiplier(volume int, muted bool) float32 {
	if muted {
		return 0.0
	}
	return float32(volume) / 100.0
}
