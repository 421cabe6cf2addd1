// ABOUTME: Zero-crossing grain segmentation of a recording
// ABOUTME: Walks the buffer once and emits contiguous pitch-aligned grains
package grain

import "log"

// isZeroCrossing reports a negative sample immediately followed by a
// non-negative one at idx.
func isZeroCrossing(samples []float32, idx int) bool {
	return idx >= 0 && idx+1 < len(samples) && samples[idx] < 0 && samples[idx+1] >= 0
}

// Segment splits samples into grains anchored at zero crossings.
//
// Each grain ends at the crossing closest to start+targetSize, searched
// outwards within half a grain either side. When none is found the search
// falls back to a forward scan from start+1.5*targetSize. Segmentation stops
// at the first grain that cannot be closed; the tail after it is left
// uncovered. The target size is re-estimated every SpectrumSize samples.
func Segment(samples []float32, est SizeEstimator) *Index {
	var grains []Grain

	start := 0
	size := est.Estimate(samples, start)
	nextEstimation := SpectrumSize

	for size > 0 && start < len(samples)-size-1 {
		end, ok := closestCrossing(samples, start, size)
		if !ok {
			log.Printf("No crossing near %d (grain size %d), scanning forward", start, size)
			end, ok = forwardCrossing(samples, start+size+size/2)
			if !ok {
				break
			}
		}

		grains = append(grains, Grain{
			Start: start,
			Span:  samples[start:end:end],
			Drift: end - start - size,
		})
		start = end

		if start > nextEstimation {
			nextEstimation += SpectrumSize
			size = est.Estimate(samples, start)
		}
	}

	return NewIndex(grains)
}

// closestCrossing scans offsets 0, +1, -1, +2, -2, ... around start+size
func closestCrossing(samples []float32, start, size int) (int, bool) {
	center := start + size
	for i := 0; i < size; i++ {
		offset := (i + 1) / 2
		if i%2 == 0 {
			offset = -offset
		}
		idx := center + offset
		if idx <= start {
			continue
		}
		if isZeroCrossing(samples, idx) {
			return idx, true
		}
	}
	return 0, false
}

// forwardCrossing returns the first crossing at or after from
func forwardCrossing(samples []float32, from int) (int, bool) {
	if from < 1 {
		from = 1
	}
	for i := from; i < len(samples)-1; i++ {
		if isZeroCrossing(samples, i) {
			return i, true
		}
	}
	return 0, false
}
