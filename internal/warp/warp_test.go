// ABOUTME: Tests for the time warp map
// ABOUTME: Tests identity mapping, marker stretch, pitch curve and cache invalidation
package warp

import (
	"math"
	"testing"

	"github.com/google/uuid"
)

const rate = 48000

func near(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestIdentityRoundTrip(t *testing.T) {
	m := NewMap(rate, rate)

	for _, s := range []int{0, 1, 100, 12345, 24000, 47999, 60000} {
		got := m.TimeToSample(m.SampleToTime(s))
		if got != s {
			t.Errorf("sample %d: round trip gave %d", s, got)
		}
	}

	for _, tm := range []float64{0, 0.001, 0.25, 0.5123, 0.99} {
		got := m.SampleToTime(m.TimeToSample(tm))
		if !near(got, tm, 1.0/rate) {
			t.Errorf("time %v: round trip gave %v", tm, got)
		}
	}
}

func TestNegativeInputs(t *testing.T) {
	m := NewMap(rate, rate)
	if got := m.SampleToTime(-4800); !near(got, -0.1, 1e-12) {
		t.Errorf("expected -0.1, got %v", got)
	}
	if got := m.TimeToSample(-0.1); got != -4800 {
		t.Errorf("expected -4800, got %d", got)
	}
	if got := m.TimeToPitchBend(-1); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}

func TestSingleMarkerStretch(t *testing.T) {
	m := NewMap(rate, rate)
	base := m.Duration()

	m.Add(Marker{Sample: 24000, DTime: 0.5, PitchBend: 2})

	if got := m.SampleToTime(24000); !near(got, 24000.0/rate+0.5, 1e-12) {
		t.Errorf("expected marker at 1.0s, got %v", got)
	}
	if got := m.Duration() - base; !near(got, 0.5, 1e-9) {
		t.Errorf("expected duration to grow by 0.5s, grew by %v", got)
	}

	// the stretched interval maps twice as much time onto the same samples
	if got := m.TimeToSample(0.5); got != 12000 {
		t.Errorf("expected sample 12000 at 0.5s, got %d", got)
	}
	if got := m.TimeToSample(1.0); got != 24000 {
		t.Errorf("expected sample 24000 at 1.0s, got %d", got)
	}
	// after the last marker the rate is the recording rate again
	if got := m.TimeToSample(1.25); got != 36000 {
		t.Errorf("expected sample 36000 at 1.25s, got %d", got)
	}

	for _, s := range []int{100, 12000, 23999, 24000, 30000, 47000} {
		if got := m.TimeToSample(m.SampleToTime(s)); got != s {
			t.Errorf("sample %d: round trip gave %d", s, got)
		}
	}
}

func TestPitchBendCurve(t *testing.T) {
	m := NewMap(rate, rate)
	m.Add(Marker{Sample: 24000, DTime: 0.5, PitchBend: 2})
	duration := m.Duration()

	tests := []struct {
		name     string
		time     float64
		expected float64
	}{
		{"before marker", 0.5, 0},
		{"at marker", 1.0, 2},
		{"halfway to end", (1.0 + duration) / 2, 1},
		{"past end", duration + 0.1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.TimeToPitchBend(tt.time)
			if !near(got, tt.expected, 1e-3) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}

	// decays monotonically after the marker
	prev := m.TimeToPitchBend(1.0)
	for tm := 1.0 + 1.0/rate; tm < duration; tm += 0.01 {
		b := m.TimeToPitchBend(tm)
		if b > prev+1e-9 {
			t.Errorf("pitch bend rose from %v to %v at %v", prev, b, tm)
		}
		prev = b
	}
}

func TestPitchBendBetweenMarkers(t *testing.T) {
	m := NewMap(rate, rate)
	m.Add(Marker{Sample: 12000, PitchBend: 0})
	m.Add(Marker{Sample: 24000, PitchBend: 4})

	if got := m.TimeToPitchBend(0.375); !near(got, 2, 1e-9) {
		t.Errorf("expected 2 semitones midway, got %v", got)
	}
}

func TestNoMarkersNoBend(t *testing.T) {
	m := NewMap(rate, rate)
	for _, tm := range []float64{0, 0.3, 0.9, 2} {
		if got := m.TimeToPitchBend(tm); got != 0 {
			t.Errorf("time %v: expected 0, got %v", tm, got)
		}
	}
}

func TestMutationInvalidatesCaches(t *testing.T) {
	m := NewMap(rate, rate)
	invalidations := 0
	m.OnInvalidate(func() { invalidations++ })

	before := m.SampleToTime(30000)
	beforeSample := m.TimeToSample(1.0)

	mk := NewMarker(24000, 60, 3)
	mk.DTime = 0.5
	m.Add(mk)

	if after := m.SampleToTime(30000); near(after, before, 1e-9) {
		t.Errorf("stale sampleToTime after insert: %v", after)
	}
	if after := m.TimeToSample(1.0); after == beforeSample {
		t.Errorf("stale timeToSample after insert: %d", after)
	}
	if bend := m.TimeToPitchBend(1.0); !near(bend, 3, 1e-9) {
		t.Errorf("expected bend 3 after insert, got %v", bend)
	}

	if !m.Update(mk.ID, 0.25, -1) {
		t.Fatal("expected update to find marker")
	}
	if bend := m.TimeToPitchBend(0.75); !near(bend, -1, 1e-9) {
		t.Errorf("expected bend -1 after update, got %v", bend)
	}

	if !m.Remove(mk.ID) {
		t.Fatal("expected remove to find marker")
	}
	if after := m.SampleToTime(30000); !near(after, before, 1e-12) {
		t.Errorf("expected %v after remove, got %v", before, after)
	}
	if bend := m.TimeToPitchBend(0.75); bend != 0 {
		t.Errorf("expected no bend after remove, got %v", bend)
	}

	if invalidations != 3 {
		t.Errorf("expected 3 invalidations, got %d", invalidations)
	}
}

func TestMarkersStaySorted(t *testing.T) {
	m := NewMap(rate, rate)
	m.Add(NewMarker(30000, 0, 0))
	m.Add(NewMarker(10000, 0, 0))
	m.Add(NewMarker(20000, 0, 0))

	markers := m.Markers()
	for i := 1; i < len(markers); i++ {
		if markers[i-1].Sample > markers[i].Sample {
			t.Fatalf("markers not sorted: %d before %d", markers[i-1].Sample, markers[i].Sample)
		}
	}
}

func TestUnknownMarker(t *testing.T) {
	m := NewMap(rate, rate)
	if m.Update(uuid.New(), 1, 1) {
		t.Error("expected update of unknown marker to fail")
	}
	if m.Remove(uuid.New()) {
		t.Error("expected remove of unknown marker to fail")
	}
	if _, ok := m.Marker(uuid.New()); ok {
		t.Error("expected lookup of unknown marker to fail")
	}
}

func TestAddAssignsID(t *testing.T) {
	m := NewMap(rate, rate)
	m.Add(Marker{Sample: 100})
	if m.Markers()[0].ID == uuid.Nil {
		t.Error("expected marker to receive an id")
	}
}

func TestDegenerateMaps(t *testing.T) {
	empty := NewMap(rate, 0)
	if empty.Duration() != 0 {
		t.Errorf("expected zero duration, got %v", empty.Duration())
	}

	noRate := NewMap(0, 100)
	if noRate.SampleToTime(50) != 0 || noRate.TimeToSample(1) != 0 || noRate.TimeToPitchBend(1) != 0 {
		t.Error("expected zero results for a map without sample rate")
	}

	// a marker whose stretch collapses its interval must not produce NaN
	m := NewMap(rate, rate)
	m.Add(Marker{Sample: 24000, DTime: -0.5})
	for _, tm := range []float64{0.001, 0.25, 0.5, 0.75} {
		if s := m.TimeToSample(tm); s < 0 && tm > 0 {
			t.Errorf("time %v: negative sample %d", tm, s)
		}
		if b := m.TimeToPitchBend(tm); math.IsNaN(b) {
			t.Errorf("time %v: NaN pitch bend", tm)
		}
	}
}
