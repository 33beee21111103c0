// Package host simulates the page that embeds a player: a viewport over a
// document containing one tall pinned region whose sticky slot holds the
// drawing surface. Observers fire synchronously on the calling goroutine.
package host

import (
	"sort"
	"sync"

	"github.com/melody-ding/go-framescroll/internal/scroll"
)

// Options describes the simulated layout in CSS pixels.
type Options struct {
	ViewportWidth    float64
	ViewportHeight   float64
	DevicePixelRatio float64

	// RegionTop is the document offset of the pinned region.
	RegionTop float64
	// RegionScreens is the region height in viewport heights.
	RegionScreens float64
}

// DefaultOptions is a 1280x800 viewport with a five-screen region under
// an 80 px navigation bar.
func DefaultOptions() Options {
	return Options{
		ViewportWidth:    1280,
		ViewportHeight:   800,
		DevicePixelRatio: 1,
		RegionTop:        80,
		RegionScreens:    5,
	}
}

// Page is the simulated host.
type Page struct {
	mu      sync.Mutex
	opts    Options
	scrollY float64

	nextID   int
	onScroll map[int]func()
	onResize map[int]func()
}

func NewPage(opts Options) *Page {
	if opts.DevicePixelRatio <= 0 {
		opts.DevicePixelRatio = 1
	}
	if opts.RegionScreens <= 0 {
		opts.RegionScreens = 1
	}
	return &Page{
		opts:     opts,
		onScroll: make(map[int]func()),
		onResize: make(map[int]func()),
	}
}

func (p *Page) Region() scroll.Region {
	p.mu.Lock()
	defer p.mu.Unlock()
	return scroll.Region{Top: p.opts.RegionTop, Height: p.opts.ViewportHeight * p.opts.RegionScreens}
}

func (p *Page) Viewport() scroll.Viewport {
	p.mu.Lock()
	defer p.mu.Unlock()
	return scroll.Viewport{ScrollY: p.scrollY, Height: p.opts.ViewportHeight}
}

// ContainerSize is the CSS size of the sticky slot holding the surface.
func (p *Page) ContainerSize() (width, height float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opts.ViewportWidth, p.opts.ViewportHeight
}

func (p *Page) DevicePixelRatio() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opts.DevicePixelRatio
}

// MaxScroll is the largest scroll offset of the document, which ends with
// the pinned region.
func (p *Page) MaxScroll() float64 {
	r := p.Region()
	p.mu.Lock()
	defer p.mu.Unlock()
	m := r.Top + r.Height - p.opts.ViewportHeight
	if m < 0 {
		return 0
	}
	return m
}

// ScrollForProgress returns the scroll offset at which the region reports
// progress q under startOffset, for q in [0, 1].
func (p *Page) ScrollForProgress(q, startOffset float64) float64 {
	r := p.Region()
	v := p.Viewport()
	start := r.Top - startOffset
	end := r.Top + r.Height - v.Height
	return start + q*(end-start)
}

func (p *Page) ObserveScroll(fn func()) (disconnect func()) {
	return p.observe(p.onScroll, fn)
}

func (p *Page) ObserveResize(fn func()) (disconnect func()) {
	return p.observe(p.onResize, fn)
}

// Observers reports how many scroll and resize callbacks are registered.
func (p *Page) Observers() (scrollCount, resizeCount int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.onScroll), len(p.onResize)
}

func (p *Page) observe(set map[int]func(), fn func()) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	set[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(set, id)
			p.mu.Unlock()
		})
	}
}

// ScrollTo moves the viewport and notifies scroll observers.
func (p *Page) ScrollTo(y float64) {
	if y < 0 {
		y = 0
	}
	if m := p.MaxScroll(); y > m {
		y = m
	}
	p.mu.Lock()
	p.scrollY = y
	fns := snapshot(p.onScroll)
	p.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Resize changes the viewport size and notifies resize observers. An
// unchanged size notifies nobody.
func (p *Page) Resize(width, height float64) {
	p.mu.Lock()
	if width == p.opts.ViewportWidth && height == p.opts.ViewportHeight {
		p.mu.Unlock()
		return
	}
	p.opts.ViewportWidth = width
	p.opts.ViewportHeight = height
	fns := snapshot(p.onResize)
	p.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// SetDevicePixelRatio models moving the window to another display.
func (p *Page) SetDevicePixelRatio(dpr float64) {
	p.mu.Lock()
	if dpr <= 0 || dpr == p.opts.DevicePixelRatio {
		p.mu.Unlock()
		return
	}
	p.opts.DevicePixelRatio = dpr
	fns := snapshot(p.onResize)
	p.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// snapshot returns callbacks in registration order.
func snapshot(set map[int]func()) []func() {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, set[id])
	}
	return fns
}
