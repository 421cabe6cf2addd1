// ABOUTME: Input commands and renderer queries on a session
// ABOUTME: Each call is atomic under the session lock
package session

import (
	"github.com/Melonix-Audio/melonix-go/internal/viewcache"
	"github.com/Melonix-Audio/melonix-go/internal/warp"
	"github.com/google/uuid"
)

// State is a snapshot of the document for display and remote clients
type State struct {
	Path       string
	SampleRate int
	Samples    int
	Grains     int
	Cursor     float64
	Duration   float64
	Playing    bool
	Markers    []warp.Marker
}

// AddMarker inserts a marker at a recording sample
func (s *Session) AddMarker(sample int, note, pitchBend float64) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		return uuid.Nil, ErrNoDocument
	}
	mk := warp.NewMarker(sample, note, pitchBend)
	s.warp.Add(mk)
	return mk.ID, nil
}

// AddMarkerAt inserts a marker at edited time t that keeps the current
// pitch curve: its bend is the curve's value at t and its note is offset by it.
func (s *Session) AddMarkerAt(t, note float64) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		return uuid.Nil, ErrNoDocument
	}
	bend := s.warp.TimeToPitchBend(t)
	mk := warp.NewMarker(s.warp.TimeToSample(t), note-bend, bend)
	s.warp.Add(mk)
	return mk.ID, nil
}

// MoveMarker sets a marker's stretch and pitch bend
func (s *Session) MoveMarker(id uuid.UUID, dTime, pitchBend float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		return ErrNoDocument
	}
	if !s.warp.Update(id, dTime, pitchBend) {
		return ErrMarkerNotFound
	}
	return nil
}

// RemoveMarker deletes a marker
func (s *Session) RemoveMarker(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		return ErrNoDocument
	}
	if !s.warp.Remove(id) {
		return ErrMarkerNotFound
	}
	return nil
}

// SetCursor moves the playback cursor, clamped to the playable range
func (s *Session) SetCursor(t float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		return ErrNoDocument
	}
	s.engine.SetCursor(t)
	return nil
}

// TogglePlay flips playback and returns whether it is now playing
func (s *Session) TogglePlay() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		return false, ErrNoDocument
	}
	return s.engine.Toggle(), nil
}

// Invalidate drops every warp and view cache
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.warp != nil {
		s.warp.Invalidate()
	}
}

// SampleToTime maps a recording sample to edited time
func (s *Session) SampleToTime(sample int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.warp == nil {
		return 0
	}
	return s.warp.SampleToTime(sample)
}

// TimeToSample maps edited time to a recording sample
func (s *Session) TimeToSample(t float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.warp == nil {
		return 0
	}
	return s.warp.TimeToSample(t)
}

// TimeToPitchBend returns the pitch bend at edited time t
func (s *Session) TimeToPitchBend(t float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.warp == nil {
		return 0
	}
	return s.warp.TimeToPitchBend(t)
}

// MinMax returns the amplitude range of recording samples [start, end)
func (s *Session) MinMax(start, end int) viewcache.Peak {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.view == nil {
		return viewcache.Peak{}
	}
	return s.view.MinMax(start, end)
}

// Duration returns the edited length of the playable signal
func (s *Session) Duration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		return 0
	}
	return s.engine.Duration()
}

// Cursor returns the playback cursor in edited seconds
func (s *Session) Cursor() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		return 0
	}
	return s.engine.Cursor()
}

// Playing reports whether playback is running
func (s *Session) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.engine != nil && s.engine.Playing()
}

// Markers returns the sorted marker list
func (s *Session) Markers() []warp.Marker {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.warp == nil {
		return nil
	}
	return s.warp.Markers()
}

// SampleRate returns the document sample rate
func (s *Session) SampleRate() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.SampleRate
}

// Len returns the number of recorded samples
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Len()
}

// State returns a consistent snapshot
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Path:       s.path,
		SampleRate: s.buf.SampleRate,
		Samples:    s.buf.Len(),
		Grains:     s.grains.Len(),
	}
	if s.engine != nil {
		st.Cursor = s.engine.Cursor()
		st.Duration = s.engine.Duration()
		st.Playing = s.engine.Playing()
		st.Markers = s.warp.Markers()
	}
	return st
}
