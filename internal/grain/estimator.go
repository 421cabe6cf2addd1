// ABOUTME: Grain size estimation from the local spectrum
// ABOUTME: Picks a grain length that is a whole number of pitch periods
package grain

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

const (
	// SpectrumSize is the analysis window length and the re-estimation stride
	SpectrumSize = 2 * 4096

	// PreferredSize is the grain length the estimator rounds up from
	PreferredSize = 1500

	// lowCutoffHz keeps near-DC bins out of the coarse pass
	lowCutoffHz = 20
)

// SizeEstimator returns the target grain size for the data starting at start
type SizeEstimator interface {
	Estimate(samples []float32, start int) int
}

// Estimator estimates the local fundamental period with an FFT and turns it
// into a target grain size. It owns scratch buffers and is not safe for
// concurrent use.
type Estimator struct {
	sampleRate int
	plan       *algofft.Plan[complex128]
	spectrum   []complex128
	re, im     []float64
	magnitudes []float64
}

// NewEstimator creates an estimator for the given sample rate
func NewEstimator(sampleRate int) (*Estimator, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}

	plan, err := algofft.NewPlan64(SpectrumSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create FFT plan: %w", err)
	}

	return &Estimator{
		sampleRate: sampleRate,
		plan:       plan,
		spectrum:   make([]complex128, SpectrumSize),
		re:         make([]float64, SpectrumSize/2),
		im:         make([]float64, SpectrumSize/2),
		magnitudes: make([]float64, SpectrumSize/2),
	}, nil
}

// Estimate returns the target grain size for the window starting at start.
// Reads past the end of samples repeat the last sample.
func (e *Estimator) Estimate(samples []float32, start int) int {
	last := len(samples) - 1
	for i := range e.spectrum {
		x := 0.0
		if last >= 0 {
			idx := start + i
			if idx > last {
				idx = last
			}
			if idx < 0 {
				idx = 0
			}
			x = float64(samples[idx])
		}
		e.spectrum[i] = complex(x, 0)
	}

	if err := e.plan.Forward(e.spectrum, e.spectrum); err != nil {
		return PreferredSize
	}

	for i := range e.re {
		e.re[i] = real(e.spectrum[i])
		e.im[i] = imag(e.spectrum[i])
	}
	vecmath.Magnitude(e.magnitudes, e.re, e.im)

	bin := peakBin(e.magnitudes, SpectrumSize, e.sampleRate)
	return SizeForBin(bin, e.sampleRate)
}

// peakBin finds the dominant bin in two passes. The coarse pass scans up to
// Nyquist/4 and tends to land an octave low; the fine pass rescans the band
// anchored at four times the coarse bin.
func peakBin(magnitudes []float64, window, sampleRate int) int {
	maxIndex := lowCutoffHz * window / sampleRate
	best := 0.0
	for i := maxIndex; i < window/2/4 && i < len(magnitudes); i++ {
		if magnitudes[i] > best {
			best = magnitudes[i]
			maxIndex = i
		}
	}

	maxIndex = maxIndex*4 - maxIndex/4
	best = 0
	for i := maxIndex; i < window/2 && i < len(magnitudes); i++ {
		if magnitudes[i] > best {
			best = magnitudes[i]
			maxIndex = i
		}
	}
	return maxIndex
}

// SizeForBin converts a refined spectral bin into the smallest whole number
// of periods at least PreferredSize samples long.
func SizeForBin(bin, sampleRate int) int {
	maxFreq := math.Max(1, float64(bin)*float64(sampleRate)/SpectrumSize/4)
	periods := math.Ceil(PreferredSize * maxFreq / float64(sampleRate))
	size := int(periods * float64(sampleRate) / maxFreq)
	if size < 1 {
		size = 1
	}
	return size
}

// FixedSize is a SizeEstimator that always returns the same size
type FixedSize int

// Estimate returns the fixed size
func (f FixedSize) Estimate([]float32, int) int {
	return int(f)
}
