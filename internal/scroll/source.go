package scroll

import (
	"sync"
)

// Observable is the host page as seen by a Source. Observe methods register
// a callback and return a function that removes it.
type Observable interface {
	Region() Region
	Viewport() Viewport
	ObserveScroll(fn func()) (disconnect func())
	ObserveResize(fn func()) (disconnect func())
}

// Source keeps a Cell up to date with the host's scroll position and
// pushes each new value to its listeners. It never draws.
type Source struct {
	host        Observable
	startOffset float64
	cell        Cell

	mu          sync.Mutex
	listeners   map[int]func(float64)
	nextID      int
	disconnects []func()
}

// NewSource creates a detached source; call Start to begin observing.
func NewSource(host Observable, startOffset float64) *Source {
	return &Source{
		host:        host,
		startOffset: startOffset,
		listeners:   make(map[int]func(float64)),
	}
}

// Cell exposes the progress cell read by the draw loop.
func (s *Source) Cell() *Cell {
	return &s.cell
}

// Progress is the latest computed value.
func (s *Source) Progress() float64 {
	return s.cell.Load()
}

// Start computes the current progress and subscribes to scroll and resize
// notifications. Calling Start on a started source is a no-op.
func (s *Source) Start() {
	s.mu.Lock()
	if s.disconnects != nil {
		s.mu.Unlock()
		return
	}
	s.disconnects = []func(){
		s.host.ObserveScroll(s.update),
		s.host.ObserveResize(s.update),
	}
	s.mu.Unlock()

	s.update()
}

// Close detaches from the host. Listeners are kept but no longer notified.
func (s *Source) Close() {
	s.mu.Lock()
	disconnects := s.disconnects
	s.disconnects = nil
	s.mu.Unlock()

	for _, d := range disconnects {
		d()
	}
}

// Subscribe registers fn to receive every recomputed value.
func (s *Source) Subscribe(fn func(float64)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Source) update() {
	p := Progress(s.host.Region(), s.host.Viewport(), s.startOffset)
	s.cell.Store(p)

	s.mu.Lock()
	fns := make([]func(float64), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(p)
	}
}
