// ABOUTME: Linear grain resampler used for pitch shifting
// ABOUTME: Reads one grain at a variable rate, carrying fractional phase across grains
package resample

import "math"

// Resampler performs linear interpolation across a single grain at a
// read rate. A rate of 2 reads twice as fast (one octave up).
type Resampler struct {
	ratio    float64
	position float64 // fractional read phase, in [0, 1)
}

// New creates a resampler reading at the given rate
func New(ratio float64) *Resampler {
	r := &Resampler{}
	r.SetRatio(ratio)
	return r
}

// SetRatio changes the read rate. Non-positive or non-finite rates fall back to 1.
func (r *Resampler) SetRatio(ratio float64) {
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		ratio = 1
	}
	r.ratio = ratio
}

// Ratio returns the current read rate
func (r *Resampler) Ratio() float64 {
	return r.ratio
}

// Phase returns the fractional read phase carried into the next grain
func (r *Resampler) Phase() float64 {
	return r.position
}

// OutputLen returns how many samples Resample will produce for a grain of
// n input samples at the current rate and phase.
func (r *Resampler) OutputLen(n int) int {
	if n <= 0 {
		return 0
	}
	// smallest i with i*ratio + position >= n
	count := int(math.Ceil((float64(n) - r.position) / r.ratio))
	if count < 0 {
		return 0
	}
	// guard against rounding at exact multiples
	for count > 0 && float64(count-1)*r.ratio+r.position >= float64(n) {
		count--
	}
	for float64(count)*r.ratio+r.position < float64(n) {
		count++
	}
	return count
}

// Resample appends the grain read at the current rate to dst and returns
// the extended slice. next is the first sample of the grain that will
// follow, used as the interpolation target past the last input sample.
func (r *Resampler) Resample(dst []float32, grain []float32, next float32) []float32 {
	n := len(grain)
	if n == 0 {
		return dst
	}

	count := r.OutputLen(n)
	for i := 0; i < count; i++ {
		pos := float64(i)*r.ratio + r.position
		idx := int(pos)
		frac := pos - float64(idx)

		sample1 := grain[idx]
		sample2 := next
		if idx+1 < n {
			sample2 = grain[idx+1]
		}

		// Linear interpolation
		dst = append(dst, float32(float64(sample1)*(1.0-frac)+float64(sample2)*frac))
	}

	// Keep only the fractional part for the next grain
	end := float64(count)*r.ratio + r.position - float64(n)
	r.position = end - math.Floor(end)

	return dst
}

// Reset resets the resampler phase
func (r *Resampler) Reset() {
	r.position = 0.0
}
