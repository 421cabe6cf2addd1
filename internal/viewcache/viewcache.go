// ABOUTME: Multi-resolution min/max pyramid for waveform drawing
// ABOUTME: Answers amplitude range queries in O(log n) and memoizes them
package viewcache

// Peak is the amplitude range of a run of samples
type Peak struct {
	Min float32
	Max float32
}

func (p Peak) merge(o Peak) Peak {
	if o.Min < p.Min {
		p.Min = o.Min
	}
	if o.Max > p.Max {
		p.Max = o.Max
	}
	return p
}

// Cache holds the pyramid for one sample buffer.
//
// levels[k][i] covers samples [i<<(k+1), (i+1)<<(k+1)). Cache is not safe
// for concurrent use.
type Cache struct {
	samples []float32
	levels  [][]Peak
	memo    map[[2]int]Peak
}

// New builds the pyramid over samples
func New(samples []float32) *Cache {
	c := &Cache{}
	c.Rebuild(samples)
	return c
}

// Rebuild replaces the sample buffer and recomputes every level
func (c *Cache) Rebuild(samples []float32) {
	c.samples = samples
	c.levels = nil

	if len(samples) >= 2 {
		base := make([]Peak, len(samples)/2)
		for i := range base {
			a, b := samples[2*i], samples[2*i+1]
			base[i] = Peak{Min: min(a, b), Max: max(a, b)}
		}
		c.levels = append(c.levels, base)

		for prev := base; len(prev) >= 2; {
			next := make([]Peak, len(prev)/2)
			for i := range next {
				next[i] = prev[2*i].merge(prev[2*i+1])
			}
			c.levels = append(c.levels, next)
			prev = next
		}
	}

	c.Invalidate()
}

// Invalidate drops memoized range results
func (c *Cache) Invalidate() {
	c.memo = make(map[[2]int]Peak)
}

// Levels returns the number of pyramid levels
func (c *Cache) Levels() int {
	return len(c.levels)
}

// Len returns the number of samples covered
func (c *Cache) Len() int {
	return len(c.samples)
}

// MinMax returns the amplitude range of samples [start, end).
// An empty or inverted range yields the sample at start, or zero when start
// is outside the buffer. The range is clipped to the buffer.
func (c *Cache) MinMax(start, end int) Peak {
	n := len(c.samples)
	if start >= end {
		if start >= 0 && start < n {
			s := c.samples[start]
			return Peak{Min: s, Max: s}
		}
		return Peak{}
	}
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if start >= end {
		return Peak{}
	}

	key := [2]int{start, end}
	if p, ok := c.memo[key]; ok {
		return p
	}

	p := c.query(start, end)
	c.memo[key] = p
	return p
}

// query walks [start, end) taking the largest aligned block at each step
func (c *Cache) query(start, end int) Peak {
	s := c.samples[start]
	result := Peak{Min: s, Max: s}

	for i := start; i < end; {
		level := -1
		for k := len(c.levels) - 1; k >= 0; k-- {
			block := 2 << k
			if i%block == 0 && i+block <= end {
				level = k
				break
			}
		}

		if level < 0 {
			s := c.samples[i]
			result = result.merge(Peak{Min: s, Max: s})
			i++
			continue
		}

		block := 2 << level
		result = result.merge(c.levels[level][i/block])
		i += block
	}

	return result
}
