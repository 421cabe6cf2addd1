// ABOUTME: Timeline marker definition
// ABOUTME: A marker stretches the interval ending at it and sets pitch bend there
package warp

import (
	"sort"

	"github.com/google/uuid"
)

// Marker anchors a warp point on the recording
type Marker struct {
	ID        uuid.UUID
	Sample    int
	Note      float64 // display only
	DTime     float64 // seconds added to the interval ending at this marker
	PitchBend float64 // semitones at this marker's edited time
}

// NewMarker creates a marker with a fresh identity
func NewMarker(sample int, note, pitchBend float64) Marker {
	return Marker{
		ID:        uuid.New(),
		Sample:    sample,
		Note:      note,
		PitchBend: pitchBend,
	}
}

func sortMarkers(markers []Marker) {
	sort.SliceStable(markers, func(i, j int) bool {
		return markers[i].Sample < markers[j].Sample
	})
}
