// ABOUTME: Tests for the grain resampler
// ABOUTME: Tests identity rate, octave shifts and phase carry
package resample

import (
	"math"
	"testing"
)

func TestIdentityRateCopiesGrain(t *testing.T) {
	r := New(1)
	grain := []float32{0.1, 0.2, -0.3, 0.4}

	out := r.Resample(nil, grain, 0.9)
	if len(out) != len(grain) {
		t.Fatalf("expected %d samples, got %d", len(grain), len(out))
	}
	for i := range grain {
		if out[i] != grain[i] {
			t.Errorf("sample %d: expected %v, got %v", i, grain[i], out[i])
		}
	}
	if r.Phase() != 0 {
		t.Errorf("expected zero phase, got %v", r.Phase())
	}
}

func TestOctaveUpHalvesLength(t *testing.T) {
	r := New(2)
	grain := make([]float32, 100)
	for i := range grain {
		grain[i] = float32(i)
	}

	out := r.Resample(nil, grain, 100)
	if len(out) != 50 {
		t.Fatalf("expected 50 samples, got %d", len(out))
	}
	for i, v := range out {
		if v != float32(2*i) {
			t.Errorf("sample %d: expected %v, got %v", i, 2*i, v)
		}
	}
}

func TestOctaveDownInterpolatesToNextGrain(t *testing.T) {
	r := New(0.5)
	grain := []float32{0, 1}

	out := r.Resample(nil, grain, 2)
	expected := []float32{0, 0.5, 1, 1.5}
	if len(out) != len(expected) {
		t.Fatalf("expected %d samples, got %d", len(expected), len(out))
	}
	for i := range expected {
		if math.Abs(float64(out[i]-expected[i])) > 1e-6 {
			t.Errorf("sample %d: expected %v, got %v", i, expected[i], out[i])
		}
	}
}

func TestPhaseCarriesAcrossGrains(t *testing.T) {
	r := New(1.5)
	grain := make([]float32, 10)

	out := r.Resample(nil, grain, 0)
	// positions 0, 1.5, ..., 9.0 -> 7 samples, next position 10.5
	if len(out) != 7 {
		t.Fatalf("expected 7 samples, got %d", len(out))
	}
	if math.Abs(r.Phase()-0.5) > 1e-9 {
		t.Errorf("expected phase 0.5, got %v", r.Phase())
	}
	if r.OutputLen(10) != 7 {
		// positions 0.5, 2.0, ..., 9.5 -> 7 samples
		t.Errorf("expected 7 samples with carried phase, got %d", r.OutputLen(10))
	}

	r.Reset()
	if r.Phase() != 0 {
		t.Errorf("expected phase reset, got %v", r.Phase())
	}
}

func TestInvalidRatioFallsBackToIdentity(t *testing.T) {
	tests := []float64{0, -1, math.NaN(), math.Inf(1)}
	for _, ratio := range tests {
		r := New(ratio)
		if r.Ratio() != 1 {
			t.Errorf("ratio %v: expected fallback 1, got %v", ratio, r.Ratio())
		}
	}
}

func TestEmptyGrain(t *testing.T) {
	r := New(1)
	if out := r.Resample(nil, nil, 1); len(out) != 0 {
		t.Errorf("expected no output, got %d samples", len(out))
	}
	if r.OutputLen(0) != 0 {
		t.Error("expected zero output length")
	}
}
