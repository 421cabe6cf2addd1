// ABOUTME: Grain resampling package using linear interpolation
// ABOUTME: Realizes pitch bend by varying the read rate across a grain
// Package resample provides the per-grain read-rate conversion used by the
// granular playback engine.
//
// A Resampler reads a grain at rate r (r = 2^(semitones/12)) with linear
// interpolation. The fractional phase persists between grains, and the first
// sample of the following grain is used as the interpolation target so no
// extrapolation past the grain is needed.
//
// Example:
//
//	r := resample.New(math.Pow(2, bend/12))
//	out = r.Resample(out, grainSamples, nextGrainFirst)
package resample
