package surface

import (
	"sync"

	"github.com/melody-ding/go-framescroll/internal/logging"
)

// Container is the element the surface fills.
type Container interface {
	ContainerSize() (width, height float64)
	DevicePixelRatio() float64
	ObserveResize(fn func()) (disconnect func())
}

// Sizer keeps a surface's backing store at container size times device
// pixel ratio. The canvas is not the observed element, so resizing it
// never produces another notification.
type Sizer struct {
	container Container
	surface   *Surface

	mu         sync.Mutex
	disconnect func()
}

func NewSizer(container Container, s *Surface) *Sizer {
	return &Sizer{container: container, surface: s}
}

// Resize recomputes the transform from the container. Calling it again with
// an unchanged container leaves the surface untouched.
func (z *Sizer) Resize() (Transform, error) {
	w, h := z.container.ContainerSize()
	t := Compute(w, h, z.container.DevicePixelRatio())

	changed, err := z.surface.Apply(t)
	if err != nil {
		logging.Logger().Warn("surface resize failed", "width", t.BackingWidth, "height", t.BackingHeight, "err", err)
		return z.surface.Transform(), err
	}
	if changed {
		logging.Logger().Debug("surface resized",
			"css_width", t.CSSWidth, "css_height", t.CSSHeight,
			"dpr", t.DPR,
			"backing_width", t.BackingWidth, "backing_height", t.BackingHeight,
		)
	}
	return t, nil
}

// Attach sizes the surface once and then on every container resize.
func (z *Sizer) Attach() {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.disconnect != nil {
		return
	}
	z.Resize()
	z.disconnect = z.container.ObserveResize(func() {
		z.Resize()
	})
}

// Detach stops observing the container.
func (z *Sizer) Detach() {
	z.mu.Lock()
	d := z.disconnect
	z.disconnect = nil
	z.mu.Unlock()
	if d != nil {
		d()
	}
}
