// Package surface owns the drawing surface: its backing resolution, the
// lock painters take, and the sizer that keeps it matched to the container.
package surface

import (
	"errors"
	"math"
	"sync"

	"github.com/gogpu/gg"
)

// ErrUnavailable reports that a drawing surface could not be created.
var ErrUnavailable = errors.New("surface: drawing surface unavailable")

// Rect is a destination rectangle in physical pixels.
type Rect struct {
	X, Y, Width, Height float64
}

// Canvas is an immediate-mode 2D drawing target.
type Canvas interface {
	// Size is the backing resolution in physical pixels.
	Size() (width, height int)
	Resize(width, height int) error
	Clear()
	DrawImage(img *gg.ImageBuf, dst Rect)
	// DrawLoading paints the loading affordance; fraction is in [0, 1] and
	// theme is an optional hex accent color.
	DrawLoading(fraction float64, theme string)
}

// Transform is the mapping from the container's CSS box to the canvas
// backing store.
type Transform struct {
	CSSWidth, CSSHeight float64
	DPR                 float64

	BackingWidth, BackingHeight int
}

// Compute derives the backing resolution for a CSS size and device pixel
// ratio: floor(css * dpr), never below 1 pixel.
func Compute(cssWidth, cssHeight, dpr float64) Transform {
	if dpr <= 0 || math.IsNaN(dpr) {
		dpr = 1
	}
	return Transform{
		CSSWidth:      cssWidth,
		CSSHeight:     cssHeight,
		DPR:           dpr,
		BackingWidth:  backing(cssWidth, dpr),
		BackingHeight: backing(cssHeight, dpr),
	}
}

func backing(css, dpr float64) int {
	px := int(math.Floor(css * dpr))
	if px < 1 {
		return 1
	}
	return px
}

// Surface serializes access to a canvas. The sizer resizes it and the
// renderer paints it, never at the same time.
type Surface struct {
	mu        sync.Mutex
	canvas    Canvas
	transform Transform
	resizes   int
}

func New(c Canvas) *Surface {
	w, h := c.Size()
	return &Surface{
		canvas:    c,
		transform: Transform{CSSWidth: float64(w), CSSHeight: float64(h), DPR: 1, BackingWidth: w, BackingHeight: h},
	}
}

// Transform returns the current transform.
func (s *Surface) Transform() Transform {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transform
}

// Resizes counts how many times the backing store was actually resized.
func (s *Surface) Resizes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resizes
}

// Paint runs fn with exclusive access to the canvas.
func (s *Surface) Paint(fn func(c Canvas, t Transform)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.canvas, s.transform)
}

// Apply installs t, resizing the canvas only when the backing resolution
// differs. It reports whether anything changed.
func (s *Surface) Apply(t Transform) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t == s.transform {
		return false, nil
	}
	if t.BackingWidth != s.transform.BackingWidth || t.BackingHeight != s.transform.BackingHeight {
		if err := s.canvas.Resize(t.BackingWidth, t.BackingHeight); err != nil {
			return false, err
		}
		s.resizes++
	}
	s.transform = t
	return true, nil
}
