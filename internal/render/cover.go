package render

import (
	"math"

	"github.com/melody-ding/go-framescroll/internal/surface"
)

// CoverFit scales an iw x ih image to fill a sw x sh surface, preserving
// aspect ratio and centering it. The overflowing dimension is cropped by
// the surface edges. A degenerate image yields an empty rectangle.
func CoverFit(sw, sh, iw, ih float64) surface.Rect {
	if iw <= 0 || ih <= 0 {
		return surface.Rect{}
	}
	scale := math.Max(sw/iw, sh/ih)
	dw := iw * scale
	dh := ih * scale
	return surface.Rect{
		X:      (sw - dw) / 2,
		Y:      (sh - dh) / 2,
		Width:  dw,
		Height: dh,
	}
}
