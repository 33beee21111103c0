// Package scroll turns the scroll position of a pinned page region into a
// normalized progress value in [0, 1].
package scroll

import (
	"math"
	"sync/atomic"
)

// DefaultStartOffset is how far below the viewport top the region's top
// edge sits when progress is 0.
const DefaultStartOffset = 80.0

// Region is the pinned scroll region in document coordinates (CSS px).
type Region struct {
	Top    float64
	Height float64
}

// Viewport is the visible window onto the document.
type Viewport struct {
	ScrollY float64
	Height  float64
}

// Progress maps the scroll position to [0, 1]. Progress 0 is the region's
// top reaching startOffset below the viewport top; progress 1 is the
// region's bottom reaching the viewport bottom. Values outside are clamped.
func Progress(r Region, v Viewport, startOffset float64) float64 {
	start := r.Top - startOffset
	end := r.Top + r.Height - v.Height

	if end <= start {
		if v.ScrollY < start {
			return 0
		}
		return 1
	}

	p := (v.ScrollY - start) / (end - start)
	switch {
	case math.IsNaN(p):
		return 0
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// Cell is the single shared progress value. Writers overwrite, readers see
// the latest value; nothing is queued.
type Cell struct {
	bits atomic.Uint64
}

func (c *Cell) Load() float64 {
	return math.Float64frombits(c.bits.Load())
}

func (c *Cell) Store(p float64) {
	c.bits.Store(math.Float64bits(p))
}
