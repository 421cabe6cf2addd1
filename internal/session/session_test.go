// ABOUTME: Tests for the document session
// ABOUTME: Covers commands, device reads, persistence and load failure handling
package session

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Melonix-Audio/melonix-go/internal/engine"
	"github.com/Melonix-Audio/melonix-go/pkg/audio"
	"github.com/google/uuid"
)

const sampleRate = 48000

func sineBuffer() audio.Buffer {
	samples := make([]float32, sampleRate)
	step := 2 * math.Pi * 440 / sampleRate
	for i := range samples {
		samples[i] = float32(0.5 * math.Sin(step*float64(i)))
	}
	return audio.Buffer{Samples: samples, SampleRate: sampleRate}
}

func loaded(t *testing.T) *Session {
	t.Helper()
	s := New(engine.DefaultOptions())
	if err := s.Load(sineBuffer()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return s
}

func TestCommandsWithoutDocument(t *testing.T) {
	s := New(engine.DefaultOptions())

	if _, err := s.AddMarker(0, 60, 0); !errors.Is(err, ErrNoDocument) {
		t.Errorf("AddMarker: expected ErrNoDocument, got %v", err)
	}
	if _, err := s.AddMarkerAt(0, 60); !errors.Is(err, ErrNoDocument) {
		t.Errorf("AddMarkerAt: expected ErrNoDocument, got %v", err)
	}
	if err := s.MoveMarker(uuid.New(), 0, 0); !errors.Is(err, ErrNoDocument) {
		t.Errorf("MoveMarker: expected ErrNoDocument, got %v", err)
	}
	if err := s.RemoveMarker(uuid.New()); !errors.Is(err, ErrNoDocument) {
		t.Errorf("RemoveMarker: expected ErrNoDocument, got %v", err)
	}
	if err := s.SetCursor(1); !errors.Is(err, ErrNoDocument) {
		t.Errorf("SetCursor: expected ErrNoDocument, got %v", err)
	}
	if _, err := s.TogglePlay(); !errors.Is(err, ErrNoDocument) {
		t.Errorf("TogglePlay: expected ErrNoDocument, got %v", err)
	}
	if err := s.Save(&bytes.Buffer{}); !errors.Is(err, ErrNoDocument) {
		t.Errorf("Save: expected ErrNoDocument, got %v", err)
	}

	if s.Duration() != 0 || s.Cursor() != 0 || s.Playing() || s.Markers() != nil {
		t.Error("expected zero queries on an empty session")
	}
	if p := s.MinMax(0, 10); p.Min != 0 || p.Max != 0 {
		t.Errorf("expected empty peak, got %v", p)
	}
}

func TestMarkerLifecycle(t *testing.T) {
	s := loaded(t)
	base := s.Duration()

	id, err := s.AddMarker(24000, 60, 0)
	if err != nil {
		t.Fatalf("AddMarker failed: %v", err)
	}
	if err := s.MoveMarker(id, 0.5, 0); err != nil {
		t.Fatalf("MoveMarker failed: %v", err)
	}
	if got := s.Duration() - base; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("expected duration to grow by 0.5s, grew by %v", got)
	}

	if err := s.MoveMarker(uuid.New(), 0, 0); !errors.Is(err, ErrMarkerNotFound) {
		t.Errorf("expected ErrMarkerNotFound, got %v", err)
	}

	if err := s.RemoveMarker(id); err != nil {
		t.Fatalf("RemoveMarker failed: %v", err)
	}
	if err := s.RemoveMarker(id); !errors.Is(err, ErrMarkerNotFound) {
		t.Errorf("expected ErrMarkerNotFound on second remove, got %v", err)
	}
	if s.Duration() != base {
		t.Errorf("expected duration %v after remove, got %v", base, s.Duration())
	}
}

func TestAddMarkerAtKeepsCurve(t *testing.T) {
	s := loaded(t)
	if _, err := s.AddMarker(24000, 60, 2); err != nil {
		t.Fatalf("AddMarker failed: %v", err)
	}

	// halfway through the decay after the marker
	at := (s.SampleToTime(24000) + s.Duration()) / 2
	before := s.TimeToPitchBend(at)

	id, err := s.AddMarkerAt(at, 64)
	if err != nil {
		t.Fatalf("AddMarkerAt failed: %v", err)
	}

	var found bool
	for _, mk := range s.Markers() {
		if mk.ID != id {
			continue
		}
		found = true
		if mk.Sample != s.TimeToSample(at) {
			t.Errorf("expected sample %d, got %d", s.TimeToSample(at), mk.Sample)
		}
		if mk.PitchBend != before {
			t.Errorf("expected bend %v, got %v", before, mk.PitchBend)
		}
		if mk.Note != 64-before {
			t.Errorf("expected note %v, got %v", 64-before, mk.Note)
		}
	}
	if !found {
		t.Fatal("new marker not listed")
	}

	if got := s.TimeToPitchBend(at); math.Abs(got-before) > 1e-9 {
		t.Errorf("expected curve unchanged at %v, got %v", before, got)
	}
}

func TestSetCursorClamps(t *testing.T) {
	s := loaded(t)

	s.SetCursor(-1)
	if s.Cursor() != 0 {
		t.Errorf("expected cursor 0, got %v", s.Cursor())
	}
	s.SetCursor(1e9)
	if s.Cursor() != s.Duration() {
		t.Errorf("expected cursor at duration %v, got %v", s.Duration(), s.Cursor())
	}
	if playing, _ := s.TogglePlay(); playing {
		t.Error("expected toggle at the end to stay stopped")
	}
}

func TestReadRendersAudio(t *testing.T) {
	s := loaded(t)

	if playing, err := s.TogglePlay(); err != nil || !playing {
		t.Fatalf("expected playback to start, got %v %v", playing, err)
	}

	p := make([]byte, 1024*audio.BytesPerSample+2)
	n, err := s.Read(p)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if n != len(p) {
		t.Errorf("expected %d bytes, got %d", len(p), n)
	}
	if got := s.Cursor(); math.Abs(got-1024.0/sampleRate) > 1e-12 {
		t.Errorf("expected cursor %v, got %v", 1024.0/sampleRate, got)
	}

	out := audio.Float32sFromBytes(p)
	buf := sineBuffer()
	for i := range out {
		if out[i] != buf.Samples[i] {
			t.Fatalf("sample %d: expected %v, got %v", i, buf.Samples[i], out[i])
		}
	}
}

func TestReadWithoutDocumentIsSilent(t *testing.T) {
	s := New(engine.DefaultOptions())
	p := bytes.Repeat([]byte{0xff}, 64)
	n, err := s.Read(p)
	if err != nil || n != len(p) {
		t.Fatalf("expected %d bytes, got %d %v", len(p), n, err)
	}
	for i, b := range p {
		if b != 0 {
			t.Fatalf("byte %d: expected silence, got %x", i, b)
		}
	}
}

func TestMinMax(t *testing.T) {
	s := loaded(t)
	p := s.MinMax(0, sampleRate)
	if p.Max < 0.49 || p.Min > -0.49 {
		t.Errorf("expected full-scale sine peak, got %v", p)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	s := loaded(t)
	id, _ := s.AddMarker(12000, 57, 3)
	s.MoveMarker(id, 0.25, 3)
	s.AddMarker(30000, 62, -1)
	s.SetCursor(0.25)

	var doc bytes.Buffer
	if err := s.Save(&doc); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	restored := New(engine.DefaultOptions())
	if err := restored.LoadDocument(&doc); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	want, got := s.State(), restored.State()
	if got.SampleRate != want.SampleRate || got.Samples != want.Samples || got.Grains != want.Grains {
		t.Errorf("expected %+v, got %+v", want, got)
	}
	if got.Cursor != want.Cursor {
		t.Errorf("expected cursor %v, got %v", want.Cursor, got.Cursor)
	}
	if got.Duration != want.Duration {
		t.Errorf("expected duration %v, got %v", want.Duration, got.Duration)
	}
	if len(got.Markers) != len(want.Markers) {
		t.Fatalf("expected %d markers, got %d", len(want.Markers), len(got.Markers))
	}
	for i := range want.Markers {
		if got.Markers[i] != want.Markers[i] {
			t.Errorf("marker %d: expected %+v, got %+v", i, want.Markers[i], got.Markers[i])
		}
	}
}

func TestSaveFileAppendsExtension(t *testing.T) {
	s := loaded(t)
	dir := t.TempDir()

	path, err := s.SaveFile(filepath.Join(dir, "take"))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if filepath.Ext(path) != DocumentExt {
		t.Errorf("expected %s extension, got %s", DocumentExt, path)
	}
	if s.Path() != path {
		t.Errorf("expected path %s, got %s", path, s.Path())
	}

	reopened := New(engine.DefaultOptions())
	if err := reopened.Open(path); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if reopened.Len() != sampleRate || reopened.Path() != path {
		t.Errorf("unexpected reopened state: %d samples, path %s", reopened.Len(), reopened.Path())
	}
}

func TestBadDocumentLeavesSessionEmpty(t *testing.T) {
	s := loaded(t)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad magic", bytes.Repeat([]byte{'x'}, 64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.LoadDocument(bytes.NewReader(tt.data))
			if !errors.Is(err, ErrBadDocument) {
				t.Errorf("expected ErrBadDocument, got %v", err)
			}
			if s.Loaded() {
				t.Error("expected session to be empty after failed load")
			}
		})
	}
}

func TestTruncatedDocument(t *testing.T) {
	s := loaded(t)
	var doc bytes.Buffer
	if err := s.Save(&doc); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	truncated := doc.Bytes()[:doc.Len()/2]
	if err := New(engine.DefaultOptions()).LoadDocument(bytes.NewReader(truncated)); !errors.Is(err, ErrBadDocument) {
		t.Errorf("expected ErrBadDocument, got %v", err)
	}
}

func TestOpenFailureLeavesSessionEmpty(t *testing.T) {
	s := loaded(t)
	path := filepath.Join(t.TempDir(), "broken.wav")
	if err := os.WriteFile(path, []byte("not audio"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	if err := s.Open(path); err == nil {
		t.Fatal("expected open to fail")
	}
	if s.Loaded() || s.Len() != 0 {
		t.Error("expected session to be empty after failed open")
	}
}

func TestConcurrentEditsDuringPlayback(t *testing.T) {
	s := loaded(t)
	s.TogglePlay()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p := make([]byte, 512*audio.BytesPerSample)
		for i := 0; i < 50; i++ {
			s.Read(p)
		}
	}()

	for i := 0; i < 50; i++ {
		id, err := s.AddMarker(1000*i, 60, float64(i%5))
		if err != nil {
			t.Fatalf("AddMarker failed: %v", err)
		}
		s.MoveMarker(id, 0.01, 1)
		s.MinMax(0, 1000*i)
	}
	wg.Wait()

	if got := len(s.Markers()); got != 50 {
		t.Errorf("expected 50 markers, got %d", got)
	}
}
