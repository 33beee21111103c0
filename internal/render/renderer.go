// Package render runs the draw loop that paints the frame selected by the
// current scroll progress.
package render

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/melody-ding/go-framescroll/internal/frameindex"
	"github.com/melody-ding/go-framescroll/internal/loader"
	"github.com/melody-ding/go-framescroll/internal/scroll"
	"github.com/melody-ding/go-framescroll/internal/surface"
)

// DefaultInterval is one refresh of a 60 Hz display.
const DefaultInterval = time.Second / 60

// Stats counts draw loop ticks.
type Stats struct {
	Painted   int64
	Skipped   int64
	LastIndex int
}

// Renderer paints frames at a fixed cadence, independent of how often the
// progress cell changes. Every tick reads the latest progress; nothing is
// queued, so a slow tick simply sees a newer value.
type Renderer struct {
	surface  *surface.Surface
	frames   *loader.LoadedFrameSet
	progress *scroll.Cell
	interval time.Duration

	painted   atomic.Int64
	skipped   atomic.Int64
	lastIndex atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(s *surface.Surface, frames *loader.LoadedFrameSet, progress *scroll.Cell, interval time.Duration) *Renderer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	r := &Renderer{
		surface:  s,
		frames:   frames,
		progress: progress,
		interval: interval,
	}
	r.lastIndex.Store(-1)
	return r
}

// Tick draws once and reports whether anything was painted. A missing
// frame is skipped and the surface keeps its previous pixels.
func (r *Renderer) Tick() bool {
	idx := frameindex.Map(r.progress.Load(), r.frames.Descriptor())
	img := r.frames.At(idx)
	if img == nil {
		r.skipped.Add(1)
		return false
	}

	iw, ih := img.Bounds()
	r.surface.Paint(func(c surface.Canvas, _ surface.Transform) {
		cw, ch := c.Size()
		c.Clear()
		c.DrawImage(img, CoverFit(float64(cw), float64(ch), float64(iw), float64(ih)))
	})
	r.painted.Add(1)
	r.lastIndex.Store(int64(idx))
	return true
}

// Start launches the draw loop. It paints immediately and then once per
// interval until Stop or ctx is cancelled. Starting a running renderer is a
// no-op.
func (r *Renderer) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.run(ctx, r.done)
}

func (r *Renderer) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.Tick()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Stop may have raced with the tick.
			if ctx.Err() != nil {
				return
			}
			r.Tick()
		}
	}
}

// Stop cancels the loop and waits for it to exit. No paint happens after
// Stop returns. Safe to call more than once.
func (r *Renderer) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the loop is active.
func (r *Renderer) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

func (r *Renderer) Stats() Stats {
	return Stats{
		Painted:   r.painted.Load(),
		Skipped:   r.skipped.Load(),
		LastIndex: int(r.lastIndex.Load()),
	}
}
