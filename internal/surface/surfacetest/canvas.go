// Package surfacetest provides a Canvas that records calls instead of
// drawing, for tests of code that paints.
package surfacetest

import (
	"sync"

	"github.com/gogpu/gg"

	"github.com/melody-ding/go-framescroll/internal/surface"
)

// Call is one recorded canvas operation.
type Call struct {
	Op       string // "clear", "draw", "loading" or "resize"
	Image    *gg.ImageBuf
	Dst      surface.Rect
	Fraction float64
	Width    int
	Height   int
}

// Canvas records every call. It is safe for concurrent use.
type Canvas struct {
	mu     sync.Mutex
	width  int
	height int
	calls  []Call
}

func NewCanvas(width, height int) *Canvas {
	return &Canvas{width: width, height: height}
}

func (c *Canvas) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

func (c *Canvas) Resize(width, height int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width, c.height = width, height
	c.calls = append(c.calls, Call{Op: "resize", Width: width, Height: height})
	return nil
}

func (c *Canvas) Clear() {
	c.record(Call{Op: "clear"})
}

func (c *Canvas) DrawImage(img *gg.ImageBuf, dst surface.Rect) {
	c.record(Call{Op: "draw", Image: img, Dst: dst})
}

func (c *Canvas) DrawLoading(fraction float64, _ string) {
	c.record(Call{Op: "loading", Fraction: fraction})
}

func (c *Canvas) record(call Call) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
}

// Calls returns a copy of the recorded calls.
func (c *Canvas) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// Count returns how many calls of op were recorded.
func (c *Canvas) Count(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, call := range c.calls {
		if call.Op == op {
			n++
		}
	}
	return n
}

// LastDraw returns the most recent draw call.
func (c *Canvas) LastDraw() (Call, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.calls) - 1; i >= 0; i-- {
		if c.calls[i].Op == "draw" {
			return c.calls[i], true
		}
	}
	return Call{}, false
}
