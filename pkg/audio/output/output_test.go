// ABOUTME: Audio output tests
// ABOUTME: Verifies the Output implementation and software volume scaling
package output

import (
	"bytes"
	"testing"

	"github.com/Melonix-Audio/melonix-go/pkg/audio"
)

func TestOtoImplementsOutput(t *testing.T) {
	var _ Output = (*Oto)(nil)
}

func TestNewOto(t *testing.T) {
	out := NewOto(0)
	if out == nil {
		t.Fatal("NewOto returned nil")
	}
	if out.GetVolume() != 100 {
		t.Errorf("expected default volume 100, got %d", out.GetVolume())
	}
	if out.IsMuted() {
		t.Error("expected output to start unmuted")
	}
}

func TestSetVolumeClamps(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{50, 50},
		{-10, 0},
		{250, 100},
	}

	out := NewOto(0)
	for _, tt := range tests {
		out.SetVolume(tt.input)
		if out.GetVolume() != tt.expected {
			t.Errorf("SetVolume(%d): expected %d, got %d", tt.input, tt.expected, out.GetVolume())
		}
	}
}

func TestGetVolumeMultiplier(t *testing.T) {
	tests := []struct {
		volume   int
		muted    bool
		expected float32
	}{
		{100, false, 1.0},
		{50, false, 0.5},
		{0, false, 0.0},
		{100, true, 0.0},
	}

	for _, tt := range tests {
		if got := getVolumeMultiplier(tt.volume, tt.muted); got != tt.expected {
			t.Errorf("volume=%d muted=%v: expected %v, got %v", tt.volume, tt.muted, tt.expected, got)
		}
	}
}

func TestVolumeReaderScales(t *testing.T) {
	samples := []float32{0.5, -1, 0.25}
	data := make([]byte, len(samples)*audio.BytesPerSample)
	audio.PutFloat32s(data, samples)

	out := NewOto(0)
	out.SetVolume(50)
	r := &volumeReader{src: bytes.NewReader(data), out: out}

	got := make([]byte, len(data))
	n, err := r.Read(got)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if n != len(data) {
		t.Fatalf("expected %d bytes, got %d", len(data), n)
	}

	expected := []float32{0.25, -0.5, 0.125}
	for i, s := range audio.Float32sFromBytes(got) {
		if s != expected[i] {
			t.Errorf("sample %d: expected %v, got %v", i, expected[i], s)
		}
	}

	out.SetMuted(true)
	r = &volumeReader{src: bytes.NewReader(data), out: out}
	r.Read(got)
	for i, s := range audio.Float32sFromBytes(got) {
		if s != 0 {
			t.Errorf("sample %d: expected silence when muted, got %v", i, s)
		}
	}
}
