// ABOUTME: Immutable ordered grain index
// ABOUTME: Supports "first grain at or after sample S" lookup by binary search
package grain

import "sort"

// Grain is a pitch-period-aligned slice of the recording
type Grain struct {
	// Index is the grain's position in its Index; consecutive grains
	// from one segmentation pass have consecutive indices.
	Index int
	Start int
	// Span aliases the recording, it is never copied or mutated.
	Span []float32
	// Drift is len(Span) minus the target size at creation (diagnostic only).
	Drift int
}

// End returns the first sample after the grain
func (g Grain) End() int {
	return g.Start + len(g.Span)
}

// Follows reports whether g immediately follows prev in the recording
func (g Grain) Follows(prev Grain) bool {
	return g.Index == prev.Index+1 && g.Start == prev.End()
}

// Index is an append-only, then read-only, collection of grains ordered by
// start sample. It is built once by Segment and never modified afterwards,
// so it may be read without locking.
type Index struct {
	grains []Grain
}

// NewIndex wraps grains that are already sorted by start sample
func NewIndex(grains []Grain) *Index {
	for i := range grains {
		grains[i].Index = i
	}
	return &Index{grains: grains}
}

// Len returns the number of grains
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.grains)
}

// At returns the i-th grain
func (x *Index) At(i int) Grain {
	return x.grains[i]
}

// Seek returns the first grain whose start is >= sample
func (x *Index) Seek(sample int) (Grain, bool) {
	if x == nil {
		return Grain{}, false
	}
	i := sort.Search(len(x.grains), func(i int) bool {
		return x.grains[i].Start >= sample
	})
	if i == len(x.grains) {
		return Grain{}, false
	}
	return x.grains[i], true
}

// End returns the first sample not covered by any grain.
// Samples from End onwards are not playable.
func (x *Index) End() int {
	if x.Len() == 0 {
		return 0
	}
	return x.grains[len(x.grains)-1].End()
}
