// ABOUTME: Marker-driven piecewise-linear time warp and pitch-bend curve
// ABOUTME: Memoizes sample<->time and time->bend queries until markers change
package warp

import (
	"math"

	"github.com/google/uuid"
)

// Map derives the edited timeline from a sorted marker list.
//
// Map is not safe for concurrent use: queries fill the memo tables, so
// readers and writers must share one lock.
type Map struct {
	sampleRate int
	length     int // playable samples
	markers    []Marker

	sampleToTime map[int]float64
	timeToSample map[int]int
	timeToBend   map[int]float64

	onInvalidate func()
}

// NewMap creates an empty map for a recording with length playable samples
func NewMap(sampleRate, length int) *Map {
	m := &Map{
		sampleRate: sampleRate,
		length:     length,
	}
	m.clearCaches()
	return m
}

// OnInvalidate registers a hook run whenever the caches are cleared
func (m *Map) OnInvalidate(fn func()) {
	m.onInvalidate = fn
}

// SampleRate returns the recording sample rate
func (m *Map) SampleRate() int {
	return m.sampleRate
}

// Length returns the number of playable samples
func (m *Map) Length() int {
	return m.length
}

// Markers returns a copy of the sorted marker list
func (m *Map) Markers() []Marker {
	out := make([]Marker, len(m.markers))
	copy(out, m.markers)
	return out
}

// Marker returns the marker with the given id
func (m *Map) Marker(id uuid.UUID) (Marker, bool) {
	for _, mk := range m.markers {
		if mk.ID == id {
			return mk, true
		}
	}
	return Marker{}, false
}

// SetMarkers replaces the marker list
func (m *Map) SetMarkers(markers []Marker) {
	m.markers = make([]Marker, len(markers))
	copy(m.markers, markers)
	m.invalidate()
}

// Add inserts a marker
func (m *Map) Add(mk Marker) {
	if mk.ID == uuid.Nil {
		mk.ID = uuid.New()
	}
	m.markers = append(m.markers, mk)
	m.invalidate()
}

// Update sets a marker's stretch and pitch bend
func (m *Map) Update(id uuid.UUID, dTime, pitchBend float64) bool {
	for i := range m.markers {
		if m.markers[i].ID == id {
			m.markers[i].DTime = dTime
			m.markers[i].PitchBend = pitchBend
			m.invalidate()
			return true
		}
	}
	return false
}

// Remove deletes a marker
func (m *Map) Remove(id uuid.UUID) bool {
	for i := range m.markers {
		if m.markers[i].ID == id {
			m.markers = append(m.markers[:i], m.markers[i+1:]...)
			m.invalidate()
			return true
		}
	}
	return false
}

// Invalidate re-sorts the markers and drops every memoized result
func (m *Map) Invalidate() {
	m.invalidate()
}

func (m *Map) invalidate() {
	sortMarkers(m.markers)
	m.clearCaches()
	if m.onInvalidate != nil {
		m.onInvalidate()
	}
}

func (m *Map) clearCaches() {
	m.sampleToTime = make(map[int]float64)
	m.timeToSample = make(map[int]int)
	m.timeToBend = make(map[int]float64)
}

// quantize rounds an edited time onto the sample-rate grid
func (m *Map) quantize(t float64) (int, float64) {
	key := int(math.Round(t * float64(m.sampleRate)))
	return key, float64(key) / float64(m.sampleRate)
}

// rightTime is the edited time of mk given the previous anchor
func (m *Map) rightTime(prevSample int, prevTime float64, mk Marker) float64 {
	return prevTime + float64(mk.Sample-prevSample)/float64(m.sampleRate) + mk.DTime
}

// SampleToTime maps a recording sample to edited time in seconds
func (m *Map) SampleToTime(sample int) float64 {
	if m.sampleRate <= 0 {
		return 0
	}
	if sample <= 0 {
		return float64(sample) / float64(m.sampleRate)
	}
	if t, ok := m.sampleToTime[sample]; ok {
		return t
	}

	prevSample := 0
	prevTime := 0.0
	result, found := 0.0, false
	for _, mk := range m.markers {
		right := m.rightTime(prevSample, prevTime, mk)
		if sample > prevSample && sample <= mk.Sample {
			result = prevTime + float64(sample-prevSample)*(right-prevTime)/float64(mk.Sample-prevSample)
			found = true
			break
		}
		prevSample = mk.Sample
		prevTime = right
	}
	if !found {
		result = prevTime + float64(sample-prevSample)/float64(m.sampleRate)
	}

	m.sampleToTime[sample] = result
	return result
}

// TimeToSample maps edited time back to a recording sample
func (m *Map) TimeToSample(t float64) int {
	if m.sampleRate <= 0 || math.IsNaN(t) {
		return 0
	}
	key, t := m.quantize(t)
	if t <= 0 {
		return key
	}
	if s, ok := m.timeToSample[key]; ok {
		return s
	}

	prevSample := 0
	prevTime := 0.0
	result, found := 0.0, false
	for _, mk := range m.markers {
		right := m.rightTime(prevSample, prevTime, mk)
		if t > prevTime && t <= right {
			result = float64(prevSample) + (t-prevTime)*float64(mk.Sample-prevSample)/(right-prevTime)
			found = true
			break
		}
		prevSample = mk.Sample
		prevTime = right
	}
	if !found {
		result = float64(prevSample) + (t-prevTime)*float64(m.sampleRate)
	}

	s := int(math.Round(result))
	m.timeToSample[key] = s
	return s
}

// TimeToPitchBend returns the pitch bend in semitones at edited time t.
// The curve is 0 before the first marker, linear between markers and
// decays linearly to 0 at Duration.
func (m *Map) TimeToPitchBend(t float64) float64 {
	if m.sampleRate <= 0 || math.IsNaN(t) || len(m.markers) == 0 {
		return 0
	}
	key, t := m.quantize(t)
	if t <= 0 {
		return 0
	}
	if b, ok := m.timeToBend[key]; ok {
		return b
	}

	result := m.pitchBend(t)
	m.timeToBend[key] = result
	return result
}

func (m *Map) pitchBend(t float64) float64 {
	prevSample := 0
	prevTime := 0.0
	for i, mk := range m.markers {
		right := m.rightTime(prevSample, prevTime, mk)
		if t > prevTime && t <= right {
			if i == 0 {
				if t == right {
					return mk.PitchBend
				}
				return 0
			}
			prevBend := m.markers[i-1].PitchBend
			return prevBend + (t-prevTime)*(mk.PitchBend-prevBend)/(right-prevTime)
		}
		prevSample = mk.Sample
		prevTime = right
	}

	duration := m.Duration()
	if t > duration || duration <= prevTime {
		return 0
	}
	lastBend := m.markers[len(m.markers)-1].PitchBend
	return lastBend - (t-prevTime)*lastBend/(duration-prevTime)
}

// Duration returns the edited time of the last playable sample
func (m *Map) Duration() float64 {
	if m.length <= 0 {
		return 0
	}
	return m.SampleToTime(m.length - 1)
}
