// ABOUTME: Audio device pull interface for a session
// ABOUTME: Renders mono float32 little-endian samples under the session lock
package session

import (
	"github.com/Melonix-Audio/melonix-go/pkg/audio"
)

// Read fills p with float32 little-endian samples from the playback engine.
// It never blocks on anything but the session lock and never fails; with no
// document loaded it produces silence.
func (s *Session) Read(p []byte) (int, error) {
	n := len(p) / audio.BytesPerSample

	s.mu.Lock()
	if cap(s.scratch) < n {
		s.scratch = make([]float32, n)
	}
	frame := s.scratch[:n]
	if s.engine != nil {
		s.engine.Render(frame)
	} else {
		clear(frame)
	}
	written := audio.PutFloat32s(p, frame)
	s.mu.Unlock()

	clear(p[written:])
	return len(p), nil
}
