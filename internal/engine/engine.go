// ABOUTME: Granular playback engine driven by the audio device callback
// ABOUTME: Walks the warp map, resamples grains for pitch and crossfades discontinuities
package engine

import (
	"math"
	"math/rand"

	"github.com/Melonix-Audio/melonix-go/internal/grain"
	"github.com/Melonix-Audio/melonix-go/internal/warp"
	"github.com/Melonix-Audio/melonix-go/pkg/audio/resample"
)

// Options tunes the engine
type Options struct {
	// Lookahead is how many samples beyond the request are kept rendered
	// for crossfade stitching.
	Lookahead int
	// FadeLen is the length of the ramp applied to the residual on stop
	// and on seek.
	FadeLen int
	// MinOverlap and OverlapSpread pick the crossfade fraction of a run
	// uniformly from [MinOverlap, MinOverlap+OverlapSpread).
	MinOverlap    float64
	OverlapSpread float64
	Seed          int64
}

// DefaultOptions returns the standard tuning
func DefaultOptions() Options {
	return Options{
		Lookahead:     grain.PreferredSize,
		FadeLen:       100,
		MinOverlap:    0.7,
		OverlapSpread: 0.2,
		Seed:          1,
	}
}

// Engine renders the edited timeline into an output stream.
//
// Engine is not safe for concurrent use. The grain index is only read.
type Engine struct {
	grains *grain.Index
	warp   *warp.Map
	opts   Options

	cursor   float64 // seconds of edited time delivered to the device
	playing  bool
	draining bool // no grains left, emptying the residual

	residual  []float32
	tail      []float32 // faded-out residual left behind by a seek
	run       []float32
	resampler *resample.Resampler
	lastGrain grain.Grain
	haveLast  bool
	rng       *rand.Rand
}

// New creates a stopped engine at cursor 0
func New(grains *grain.Index, warpMap *warp.Map, opts Options) *Engine {
	if opts.FadeLen < 0 {
		opts.FadeLen = 0
	}
	if opts.Lookahead < 0 {
		opts.Lookahead = 0
	}
	return &Engine{
		grains:    grains,
		warp:      warpMap,
		opts:      opts,
		resampler: resample.New(1),
		rng:       rand.New(rand.NewSource(opts.Seed)),
	}
}

// Duration returns the edited length of the playable signal in seconds
func (e *Engine) Duration() float64 {
	return e.warp.Duration()
}

// Cursor returns the playback position in edited seconds
func (e *Engine) Cursor() float64 {
	return e.cursor
}

// SetCursor moves playback to t, clamped to [0, Duration]. The next
// callback resolves from the new position while the old residual fades
// out underneath it.
func (e *Engine) SetCursor(t float64) {
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	if d := e.Duration(); t > d {
		t = d
	}
	e.cursor = t
	e.fadeTail()
	e.resetStream()
}

// Playing reports whether the engine is in the Playing state
func (e *Engine) Playing() bool {
	return e.playing
}

// Residual returns the number of rendered samples not yet delivered
func (e *Engine) Residual() int {
	return len(e.residual)
}

// Play starts playback when the cursor lies inside the playable range
func (e *Engine) Play() bool {
	if e.playing {
		return true
	}
	if e.cursor < 0 || e.cursor >= e.Duration() {
		return false
	}
	e.playing = true
	e.draining = false
	e.haveLast = false
	e.resampler.Reset()
	return true
}

// Stop switches to Stopped. The residual fades out on the next Render.
func (e *Engine) Stop() {
	e.playing = false
	e.draining = false
}

// Toggle flips between Playing and Stopped and returns the new state
func (e *Engine) Toggle() bool {
	if e.playing {
		e.Stop()
		return false
	}
	return e.Play()
}

func (e *Engine) resetStream() {
	e.residual = e.residual[:0]
	e.haveLast = false
	e.draining = false
	e.resampler.Reset()
}

// Render fills dst with the next len(dst) output samples
func (e *Engine) Render(dst []float32) {
	if e.cursor < 0 || e.cursor >= e.Duration() {
		e.playing = false
	}

	if !e.playing {
		e.renderStopped(dst)
		e.mixTail(dst)
		return
	}

	if !e.draining {
		e.fill(len(dst) + e.opts.Lookahead)
	}

	n := copy(dst, e.residual)
	clear(dst[n:])
	e.consume(n)
	e.mixTail(dst)
	e.cursor += float64(n) / float64(e.warp.SampleRate())

	if e.draining && len(e.residual) == 0 {
		e.playing = false
		e.draining = false
	}
}

// renderStopped emits the residual under a linear ramp, then silence
func (e *Engine) renderStopped(dst []float32) {
	n := min(len(dst), len(e.residual), e.opts.FadeLen)
	for i := 0; i < n; i++ {
		gain := 1 - float32(i)/float32(e.opts.FadeLen)
		dst[i] = e.residual[i] * gain
	}
	clear(dst[n:])
	e.resetStream()
}

// fadeTail keeps the head of the residual under the stop ramp so a seek
// does not cut the signal off
func (e *Engine) fadeTail() {
	n := min(len(e.residual), e.opts.FadeLen)
	e.tail = e.tail[:0]
	for i := 0; i < n; i++ {
		gain := 1 - float32(i)/float32(e.opts.FadeLen)
		e.tail = append(e.tail, e.residual[i]*gain)
	}
}

// mixTail adds the pending seek fade onto dst
func (e *Engine) mixTail(dst []float32) {
	n := min(len(dst), len(e.tail))
	for i := 0; i < n; i++ {
		dst[i] += e.tail[i]
	}
	rest := copy(e.tail, e.tail[n:])
	e.tail = e.tail[:rest]
}

func (e *Engine) consume(n int) {
	rest := copy(e.residual, e.residual[n:])
	e.residual = e.residual[:rest]
}

// virtualTime is the edited time of the end of the residual
func (e *Engine) virtualTime() float64 {
	return e.cursor + float64(len(e.residual))/float64(e.warp.SampleRate())
}

// fill renders grains until the residual holds want samples or the
// signal runs out
func (e *Engine) fill(want int) {
	sampleRate := float64(e.warp.SampleRate())

	for len(e.residual) < want {
		t := e.virtualTime()
		g, ok := e.grains.Seek(e.warp.TimeToSample(t))
		if !ok {
			e.draining = true
			return
		}

		bend := e.warp.TimeToPitchBend(t)
		e.resampler.SetRatio(math.Pow(2, bend/12))

		var next float32
		produced := e.resampler.OutputLen(len(g.Span))
		if ng, ok := e.grains.Seek(e.warp.TimeToSample(t + float64(produced)/sampleRate)); ok {
			next = ng.Span[0]
		}

		e.run = e.resampler.Resample(e.run[:0], g.Span, next)

		if !e.haveLast || g.Follows(e.lastGrain) {
			e.residual = append(e.residual, e.run...)
		} else {
			e.crossfade(e.run)
		}
		e.lastGrain = g
		e.haveLast = true
	}
}

// crossfade blends run backwards into the residual tail over a random
// fraction of its length with equal-power weights. The rest of the run is
// appended as is. The blend may reach into samples an earlier crossfade
// produced. part stays below len(run), so the residual always grows.
func (e *Engine) crossfade(run []float32) {
	overlap := e.opts.MinOverlap + e.rng.Float64()*e.opts.OverlapSpread
	part := int(float64(len(run)) * overlap)
	if part >= len(run) {
		part = len(run) - 1
	}
	if part <= 0 {
		e.residual = append(e.residual, run...)
		return
	}

	at := max(len(e.residual)-part, 0)
	for j, v := range run {
		idx := at + j
		if idx >= len(e.residual) {
			e.residual = append(e.residual, run[j:]...)
			return
		}
		k := float64(j) / float64(part)
		old := float64(e.residual[idx])
		e.residual[idx] = float32(math.Cos(k*math.Pi/2)*old + math.Sin(k*math.Pi/2)*float64(v))
	}
}
