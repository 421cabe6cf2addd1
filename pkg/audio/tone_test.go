// ABOUTME: Tests for the test tone generator
// ABOUTME: Checks length, amplitude and phase of generated tones
package audio

import (
	"math"
	"testing"
)

func TestTone(t *testing.T) {
	tests := []struct {
		name     string
		seconds  float64
		expected int
	}{
		{"one second", 1, 48000},
		{"half second", 0.5, 24000},
		{"empty", 0, 0},
		{"negative", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := Tone(440, tt.seconds, 48000)
			if buf.Len() != tt.expected {
				t.Errorf("expected %d samples, got %d", tt.expected, buf.Len())
			}
			if buf.SampleRate != 48000 {
				t.Errorf("expected 48000Hz, got %d", buf.SampleRate)
			}
		})
	}
}

func TestToneShape(t *testing.T) {
	buf := Tone(1000, 0.01, 48000)
	if buf.Samples[0] != 0 {
		t.Errorf("expected tone to start at zero, got %v", buf.Samples[0])
	}

	var peak float64
	for _, s := range buf.Samples {
		peak = math.Max(peak, math.Abs(float64(s)))
	}
	if peak > ToneAmplitude+1e-6 || peak < ToneAmplitude*0.99 {
		t.Errorf("expected peak near %v, got %v", ToneAmplitude, peak)
	}
}
