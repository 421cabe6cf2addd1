// ABOUTME: Test tone generator
// ABOUTME: Produces a mono sine buffer for trying the editor without a file
package audio

import "math"

// ToneAmplitude is the peak level of generated tones (50% volume)
const ToneAmplitude = 0.5

// Tone returns a sine at freq Hz lasting seconds
func Tone(freq, seconds float64, sampleRate int) Buffer {
	n := max(int(seconds*float64(sampleRate)), 0)
	samples := make([]float32, n)
	step := 2 * math.Pi * freq / float64(sampleRate)
	for i := range samples {
		samples[i] = float32(ToneAmplitude * math.Sin(step*float64(i)))
	}
	return Buffer{Samples: samples, SampleRate: sampleRate}
}
