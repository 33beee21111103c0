// Package player wires loading, scroll progress, surface sizing and the
// draw loop together for one active frame sequence at a time.
//
// Lifecycle per sequence:
//
//	Idle → Loading → Ready → (Disposed | Loading(next sequence))
//
// A new sequence supersedes the old one immediately. Loads are tagged with
// a generation number; a load that finishes for an older generation is
// discarded and never reaches Ready.
package player

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/melody-ding/go-framescroll/internal/loader"
	"github.com/melody-ding/go-framescroll/internal/logging"
	"github.com/melody-ding/go-framescroll/internal/render"
	"github.com/melody-ding/go-framescroll/internal/scroll"
	"github.com/melody-ding/go-framescroll/internal/surface"
	"github.com/melody-ding/go-framescroll/internal/types"
)

// ErrDisposed is returned by WaitReady once the player is disposed.
var ErrDisposed = errors.New("player: disposed")

// Host is the page region the player lives in.
type Host interface {
	surface.Container
	scroll.Observable
}

// Options configures a Player.
type Options struct {
	Loader          *loader.Loader
	RefreshInterval time.Duration
	StartOffset     float64

	// NewCanvas creates the drawing surface at its initial backing size.
	// Defaults to a gg raster canvas.
	NewCanvas func(width, height int) (surface.Canvas, error)
}

func defaultCanvas(width, height int) (surface.Canvas, error) {
	c, err := surface.NewGGCanvas(width, height)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Player plays one sequence at a time onto its surface.
type Player struct {
	id   string
	host Host
	opts Options

	// surface is nil when the canvas could not be created; the player then
	// loads sequences but never draws.
	surface *surface.Surface

	mu         sync.Mutex
	state      State
	gen        uint64
	desc       types.SequenceDescriptor
	frames     *loader.LoadedFrameSet
	settled    int
	cancelLoad context.CancelFunc
	changed    chan struct{}
	onState    func(State, types.SequenceDescriptor)

	sizer    *surface.Sizer
	progress *scroll.Source
	renderer *render.Renderer

	discarded atomic.Int64
}

// New creates an idle player. A surface that cannot be created is logged
// and leaves the player without drawing; it is not an error.
func New(host Host, opts Options) *Player {
	if opts.NewCanvas == nil {
		opts.NewCanvas = defaultCanvas
	}
	if opts.StartOffset == 0 {
		opts.StartOffset = scroll.DefaultStartOffset
	}

	p := &Player{
		id:      uuid.NewString(),
		host:    host,
		opts:    opts,
		changed: make(chan struct{}),
	}

	w, h := host.ContainerSize()
	t := surface.Compute(w, h, host.DevicePixelRatio())
	canvas, err := opts.NewCanvas(t.BackingWidth, t.BackingHeight)
	if err != nil {
		p.log().Warn("drawing surface unavailable", "err", err)
	} else {
		p.surface = surface.New(canvas)
		if _, err := p.surface.Apply(t); err != nil {
			p.log().Warn("sizing drawing surface", "err", err)
		}
	}
	return p
}

func (p *Player) log() *slog.Logger {
	return logging.Logger().With("player", p.id)
}

// ID identifies the player in logs.
func (p *Player) ID() string {
	return p.id
}

// OnStateChange registers fn to be called after every transition. It runs
// on the goroutine that caused the transition.
func (p *Player) OnStateChange(fn func(State, types.SequenceDescriptor)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onState = fn
}

// SetSequence makes desc the active sequence. Whatever was running for the
// previous sequence is torn down before loading starts.
func (p *Player) SetSequence(desc types.SequenceDescriptor) {
	p.mu.Lock()
	if p.state == Disposed {
		p.mu.Unlock()
		return
	}

	p.teardownLocked()
	p.gen++
	gen := p.gen
	p.desc = desc
	p.frames = nil
	p.settled = 0

	ctx, cancel := context.WithCancel(context.Background())
	p.cancelLoad = cancel
	p.setStateLocked(Loading)
	p.paintLoadingLocked()
	notify := p.onState
	p.mu.Unlock()

	p.log().Info("loading sequence", "sequence", desc.String(), "generation", gen)
	if notify != nil {
		notify(Loading, desc)
	}

	go p.load(ctx, gen, desc)
}

func (p *Player) load(ctx context.Context, gen uint64, desc types.SequenceDescriptor) {
	set := p.opts.Loader.Load(ctx, desc, func(settled, total int) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.gen != gen || p.state != Loading || settled <= p.settled {
			return
		}
		// Repaint only when the visible percentage moves.
		repaint := settled*100/total != p.settled*100/total
		p.settled = settled
		if repaint {
			p.paintLoadingLocked()
		}
	})
	p.complete(gen, set)
}

// complete installs a finished load if it still belongs to the active
// sequence, and starts observing and drawing.
func (p *Player) complete(gen uint64, set *loader.LoadedFrameSet) {
	p.mu.Lock()
	if p.gen != gen || p.state != Loading {
		p.mu.Unlock()
		p.discarded.Add(1)
		p.log().Warn("discarded stale sequence load", "sequence", set.Descriptor().String(), "generation", gen)
		return
	}

	p.frames = set
	p.cancelLoad = nil
	if p.surface != nil {
		p.sizer = surface.NewSizer(p.host, p.surface)
		p.sizer.Attach()
		p.progress = scroll.NewSource(p.host, p.opts.StartOffset)
		p.progress.Start()
		p.renderer = render.New(p.surface, set, p.progress.Cell(), p.opts.RefreshInterval)
		p.renderer.Start(context.Background())
	}
	p.setStateLocked(Ready)
	desc, notify := p.desc, p.onState
	p.mu.Unlock()

	p.log().Info("sequence ready", "sequence", desc.String(), "frames", set.Loaded(), "of", set.Len())
	if notify != nil {
		notify(Ready, desc)
	}
}

// Dispose stops drawing, detaches every observer and discards any load in
// flight. Safe to call more than once.
func (p *Player) Dispose() {
	p.mu.Lock()
	if p.state == Disposed {
		p.mu.Unlock()
		return
	}
	p.teardownLocked()
	p.gen++
	p.frames = nil
	p.setStateLocked(Disposed)
	desc, notify := p.desc, p.onState
	p.mu.Unlock()

	p.log().Info("player disposed")
	if notify != nil {
		notify(Disposed, desc)
	}
}

// teardownLocked stops the draw loop and detaches observers. The renderer
// has exited when it returns, so a replacement never overlaps it.
func (p *Player) teardownLocked() {
	if p.renderer != nil {
		p.renderer.Stop()
		p.renderer = nil
	}
	if p.progress != nil {
		p.progress.Close()
		p.progress = nil
	}
	if p.sizer != nil {
		p.sizer.Detach()
		p.sizer = nil
	}
	if p.cancelLoad != nil {
		p.cancelLoad()
		p.cancelLoad = nil
	}
}

func (p *Player) setStateLocked(s State) {
	p.state = s
	close(p.changed)
	p.changed = make(chan struct{})
}

func (p *Player) paintLoadingLocked() {
	if p.surface == nil {
		return
	}
	fraction := 0.0
	if p.desc.FrameCount > 0 {
		fraction = float64(p.settled) / float64(p.desc.FrameCount)
	}
	theme := p.desc.Theme
	p.surface.Paint(func(c surface.Canvas, _ surface.Transform) {
		c.DrawLoading(fraction, theme)
	})
}

// WaitReady blocks until the active sequence is Ready, the player is
// disposed, or ctx is done.
func (p *Player) WaitReady(ctx context.Context) error {
	for {
		p.mu.Lock()
		state, changed := p.state, p.changed
		p.mu.Unlock()

		switch state {
		case Ready:
			return nil
		case Disposed:
			return ErrDisposed
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Sequence is the active descriptor.
func (p *Player) Sequence() types.SequenceDescriptor {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.desc
}

// Frames is the active frame set, nil until Ready.
func (p *Player) Frames() *loader.LoadedFrameSet {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames
}

// LoadProgress reports settled frames out of the active sequence's total.
func (p *Player) LoadProgress() (settled, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settled, p.desc.FrameCount
}

// Progress is the latest scroll progress, 0 before Ready.
func (p *Player) Progress() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.progress == nil {
		return 0
	}
	return p.progress.Progress()
}

// RenderStats reports the active draw loop's counters.
func (p *Player) RenderStats() render.Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.renderer == nil {
		return render.Stats{LastIndex: -1}
	}
	return p.renderer.Stats()
}

// Discarded counts loads that finished after being superseded.
func (p *Player) Discarded() int {
	return int(p.discarded.Load())
}

// Surface is the drawing surface, nil when it could not be created.
func (p *Player) Surface() *surface.Surface {
	return p.surface
}
