// ABOUTME: Binary .melonix document persistence
// ABOUTME: Stores samples verbatim with markers and cursor, reloads like a fresh file
package session

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Melonix-Audio/melonix-go/internal/warp"
	"github.com/Melonix-Audio/melonix-go/pkg/audio"
	"github.com/google/uuid"
)

// DocumentExt is the extension of saved documents
const DocumentExt = ".melonix"

const (
	documentVersion    = 1
	maxDocumentSamples = 1 << 28
	maxDocumentMarkers = 1 << 20
)

var documentMagic = [4]byte{'M', 'L', 'N', 'X'}

// ErrBadDocument is returned for unreadable or malformed documents
var ErrBadDocument = errors.New("malformed document")

type documentHeader struct {
	Magic      [4]byte
	Version    uint32
	SampleRate uint32
	Samples    uint64
	Cursor     float64
	Markers    uint32
}

type markerRecord struct {
	ID        uuid.UUID
	Sample    int64
	Note      float64
	DTime     float64
	PitchBend float64
}

// Save writes the document to w
func (s *Session) Save(w io.Writer) error {
	s.mu.Lock()
	if s.engine == nil {
		s.mu.Unlock()
		return ErrNoDocument
	}
	// samples are immutable after load, so the slice may be written unlocked
	samples := s.buf.Samples
	hdr := documentHeader{
		Magic:      documentMagic,
		Version:    documentVersion,
		SampleRate: uint32(s.buf.SampleRate),
		Samples:    uint64(len(samples)),
		Cursor:     s.engine.Cursor(),
	}
	markers := s.warp.Markers()
	s.mu.Unlock()

	hdr.Markers = uint32(len(markers))

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, hdr); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, samples); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	for _, mk := range markers {
		rec := markerRecord{
			ID:        mk.ID,
			Sample:    int64(mk.Sample),
			Note:      mk.Note,
			DTime:     mk.DTime,
			PitchBend: mk.PitchBend,
		}
		if err := binary.Write(bw, binary.LittleEndian, rec); err != nil {
			return fmt.Errorf("failed to write marker: %w", err)
		}
	}
	return bw.Flush()
}

// SaveFile writes the document to path, appending DocumentExt when missing.
// Returns the path written.
func (s *Session) SaveFile(path string) (string, error) {
	if !strings.EqualFold(filepath.Ext(path), DocumentExt) {
		path += DocumentExt
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := s.Save(f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}

	s.mu.Lock()
	s.path = path
	s.mu.Unlock()

	log.Printf("Saved document to %s", path)
	return path, nil
}

// OpenDocument loads a document file
func (s *Session) OpenDocument(path string) error {
	f, err := os.Open(path)
	if err != nil {
		s.Close()
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if err := s.LoadDocument(bufio.NewReader(f)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// LoadDocument replaces the session with a document read from r and
// resegments it as a fresh load. On failure the session is left empty.
func (s *Session) LoadDocument(r io.Reader) error {
	buf, markers, cursor, err := readDocument(r)
	if err != nil {
		s.Close()
		return err
	}
	return s.load(buf, markers, cursor)
}

func readDocument(r io.Reader) (audio.Buffer, []warp.Marker, float64, error) {
	var hdr documentHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return audio.Buffer{}, nil, 0, fmt.Errorf("%w: header: %v", ErrBadDocument, err)
	}
	if hdr.Magic != documentMagic {
		return audio.Buffer{}, nil, 0, fmt.Errorf("%w: bad magic %q", ErrBadDocument, hdr.Magic[:])
	}
	if hdr.Version != documentVersion {
		return audio.Buffer{}, nil, 0, fmt.Errorf("%w: unsupported version %d", ErrBadDocument, hdr.Version)
	}
	if hdr.SampleRate == 0 || hdr.Samples > maxDocumentSamples || hdr.Markers > maxDocumentMarkers {
		return audio.Buffer{}, nil, 0, fmt.Errorf("%w: implausible header", ErrBadDocument)
	}

	samples := make([]float32, hdr.Samples)
	if err := binary.Read(r, binary.LittleEndian, samples); err != nil {
		return audio.Buffer{}, nil, 0, fmt.Errorf("%w: samples: %v", ErrBadDocument, err)
	}

	markers := make([]warp.Marker, 0, hdr.Markers)
	for i := uint32(0); i < hdr.Markers; i++ {
		var rec markerRecord
		if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
			return audio.Buffer{}, nil, 0, fmt.Errorf("%w: marker %d: %v", ErrBadDocument, i, err)
		}
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
		markers = append(markers, warp.Marker{
			ID:        rec.ID,
			Sample:    int(rec.Sample),
			Note:      rec.Note,
			DTime:     rec.DTime,
			PitchBend: rec.PitchBend,
		})
	}

	buf := audio.Buffer{Samples: samples, SampleRate: int(hdr.SampleRate)}
	return buf, markers, hdr.Cursor, nil
}
