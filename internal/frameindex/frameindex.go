// Package frameindex maps scroll progress to a frame index.
package frameindex

import (
	"math"

	"github.com/melody-ding/go-framescroll/internal/types"
)

// Map returns floor(start + progress*(last-start)) clamped into
// [0, FrameCount-1], where start is the descriptor's start frame index and
// last is FrameCount-1. NaN or infinite progress maps to start, and a
// descriptor without frames maps to 0.
func Map(progress float64, desc types.SequenceDescriptor) int {
	if desc.FrameCount < 1 {
		return 0
	}
	start := desc.StartFrameIndex()
	last := desc.FrameCount - 1

	if math.IsNaN(progress) || math.IsInf(progress, 0) {
		return start
	}
	if progress < 0 {
		progress = 0
	} else if progress > 1 {
		progress = 1
	}

	idx := int(math.Floor(float64(start) + progress*float64(last-start)))
	if idx < 0 {
		return 0
	}
	if idx > last {
		return last
	}
	return idx
}
