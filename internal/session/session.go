// ABOUTME: Document context shared by the audio callback, UI and remote control
// ABOUTME: Owns samples, grains, markers, caches and playback behind a single lock
package session

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Melonix-Audio/melonix-go/internal/engine"
	"github.com/Melonix-Audio/melonix-go/internal/grain"
	"github.com/Melonix-Audio/melonix-go/internal/viewcache"
	"github.com/Melonix-Audio/melonix-go/internal/warp"
	"github.com/Melonix-Audio/melonix-go/pkg/audio"
	"github.com/Melonix-Audio/melonix-go/pkg/audio/decode"
)

var (
	// ErrNoDocument is returned by commands issued before a load
	ErrNoDocument = errors.New("no document loaded")
	// ErrMarkerNotFound is returned when a marker reference is stale
	ErrMarkerNotFound = errors.New("marker not found")
)

// Session is one loaded document. All methods are safe for concurrent use.
type Session struct {
	mu   sync.Mutex
	opts engine.Options

	path   string
	buf    audio.Buffer
	grains *grain.Index
	warp   *warp.Map
	view   *viewcache.Cache
	engine *engine.Engine

	scratch []float32
}

// New creates an empty session
func New(opts engine.Options) *Session {
	return &Session{opts: opts}
}

// Open loads an audio file or a saved document
func (s *Session) Open(path string) error {
	if strings.EqualFold(filepath.Ext(path), DocumentExt) {
		if err := s.OpenDocument(path); err != nil {
			return err
		}
	} else {
		buf, err := decode.Load(path)
		if err != nil {
			s.Close()
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		if err := s.Load(buf); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.path = path
	s.mu.Unlock()
	return nil
}

// Load replaces the document with buf, discarding markers and playback state.
// Segmentation runs before the lock is taken.
func (s *Session) Load(buf audio.Buffer) error {
	return s.load(buf, nil, 0)
}

func (s *Session) load(buf audio.Buffer, markers []warp.Marker, cursor float64) error {
	if buf.SampleRate <= 0 {
		s.Close()
		return fmt.Errorf("invalid sample rate %d", buf.SampleRate)
	}

	est, err := grain.NewEstimator(buf.SampleRate)
	if err != nil {
		s.Close()
		return fmt.Errorf("failed to create grain estimator: %w", err)
	}
	grains := grain.Segment(buf.Samples, est)
	view := viewcache.New(buf.Samples)

	m := warp.NewMap(buf.SampleRate, grains.End())
	m.SetMarkers(markers)
	m.OnInvalidate(view.Invalidate)

	eng := engine.New(grains, m, s.opts)
	eng.SetCursor(cursor)

	log.Printf("Segmented %d samples into %d grains (%d playable)",
		buf.Len(), grains.Len(), grains.End())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.path = ""
	s.buf = buf
	s.grains = grains
	s.warp = m
	s.view = view
	s.engine = eng
	return nil
}

// Close stops playback and drops the document
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine != nil {
		s.engine.Stop()
	}
	s.path = ""
	s.buf = audio.Buffer{}
	s.grains = nil
	s.warp = nil
	s.view = nil
	s.engine = nil
}

// Loaded reports whether a document is open
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine != nil
}

// Path returns the file the document was opened from or last saved to
func (s *Session) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}
