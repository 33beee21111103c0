package player

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/melody-ding/go-framescroll/internal/host"
	"github.com/melody-ding/go-framescroll/internal/loader"
	"github.com/melody-ding/go-framescroll/internal/source"
	"github.com/melody-ding/go-framescroll/internal/surface"
	"github.com/melody-ding/go-framescroll/internal/surface/surfacetest"
	"github.com/melody-ding/go-framescroll/internal/types"
)

func pngFrame(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 9))
	for y := 0; y < 9; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// gatedSource serves one PNG for every path. Paths under a gated prefix
// block until release is called, regardless of ctx.
type gatedSource struct {
	frame   []byte
	missing map[string]bool
	prefix  string
	gate    chan struct{}
	once    sync.Once
}

func (g *gatedSource) Fetch(_ context.Context, path string) ([]byte, error) {
	if g.prefix != "" && strings.HasPrefix(path, g.prefix) {
		<-g.gate
	}
	if g.missing[path] {
		return nil, source.ErrNotFound
	}
	return g.frame, nil
}

func (g *gatedSource) release() {
	g.once.Do(func() { close(g.gate) })
}

type fixture struct {
	page   *host.Page
	canvas *surfacetest.Canvas
	player *Player
}

func newFixture(t *testing.T, src source.Source) *fixture {
	t.Helper()
	ld, err := loader.New(src, loader.Options{Concurrency: 4})
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{page: host.NewPage(host.DefaultOptions())}
	f.player = New(f.page, Options{
		Loader:          ld,
		RefreshInterval: time.Millisecond,
		NewCanvas: func(w, h int) (surface.Canvas, error) {
			f.canvas = surfacetest.NewCanvas(w, h)
			return f.canvas, nil
		},
	})
	t.Cleanup(f.player.Dispose)
	return f
}

func waitReady(t *testing.T, p *Player) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.WaitReady(ctx); err != nil {
		t.Fatalf("WaitReady() = %v", err)
	}
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func seq(name, base string, n int) types.SequenceDescriptor {
	return types.NewSequenceDescriptor(name, "#ff0000", base, "png", n, 1)
}

func TestNewPlayerIsIdle(t *testing.T) {
	f := newFixture(t, &gatedSource{frame: pngFrame(t)})
	if got := f.player.State(); got != Idle {
		t.Errorf("State() = %v, want idle", got)
	}
	if f.player.ID() == "" {
		t.Error("ID() is empty")
	}
	w, h := f.canvas.Size()
	if w != 1280 || h != 800 {
		t.Errorf("canvas = %dx%d, want 1280x800", w, h)
	}
	if s, r := f.page.Observers(); s != 0 || r != 0 {
		t.Errorf("observers before any sequence = %d/%d", s, r)
	}
}

func TestPartialFailureStillReady(t *testing.T) {
	src := &gatedSource{frame: pngFrame(t), missing: map[string]bool{"/a/5.png": true}}
	f := newFixture(t, src)

	var (
		mu     sync.Mutex
		states []State
	)
	f.player.OnStateChange(func(s State, _ types.SequenceDescriptor) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, s)
	})

	f.player.SetSequence(seq("a", "/a", 10))
	waitReady(t, f.player)

	set := f.player.Frames()
	if set.Len() != 10 || set.Loaded() != 9 || set.At(4) != nil {
		t.Fatalf("frames: len=%d loaded=%d at(4)=%v", set.Len(), set.Loaded(), set.At(4))
	}
	if settled, total := f.player.LoadProgress(); settled != 10 || total != 10 {
		t.Errorf("LoadProgress() = %d/%d, want 10/10", settled, total)
	}
	if f.canvas.Count("loading") == 0 {
		t.Error("loading affordance never painted")
	}

	// Scroll onto frame index 4: the loop keeps ticking and skips it.
	f.page.ScrollTo(f.page.ScrollForProgress(4.5/9, 80))
	eventually(t, "skipped tick", func() bool { return f.player.RenderStats().Skipped > 0 })

	eventually(t, "ready notification", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(states) >= 2
	})
	mu.Lock()
	defer mu.Unlock()
	if len(states) != 2 || states[0] != Loading || states[1] != Ready {
		t.Errorf("transitions = %v, want [loading ready]", states)
	}
}

func TestReadyAttachesObserversAndDraws(t *testing.T) {
	f := newFixture(t, &gatedSource{frame: pngFrame(t)})
	f.player.SetSequence(seq("a", "/a", 5))
	waitReady(t, f.player)

	if s, r := f.page.Observers(); s != 1 || r != 2 {
		t.Errorf("observers = %d scroll / %d resize, want 1/2", s, r)
	}
	eventually(t, "a draw", func() bool { return f.canvas.Count("draw") > 0 })

	f.page.ScrollTo(f.page.MaxScroll())
	eventually(t, "last frame", func() bool { return f.player.RenderStats().LastIndex == 4 })
	if p := f.player.Progress(); p != 1 {
		t.Errorf("Progress() = %v at max scroll, want 1", p)
	}

	f.page.Resize(640, 480)
	if got := f.player.Surface().Transform(); got.BackingWidth != 640 || got.BackingHeight != 480 {
		t.Errorf("after resize transform = %+v", got)
	}
}

func TestSupersededLoadIsDiscarded(t *testing.T) {
	src := &gatedSource{frame: pngFrame(t), prefix: "/a/", gate: make(chan struct{})}
	t.Cleanup(src.release)
	f := newFixture(t, src)

	f.player.SetSequence(seq("a", "/a", 6))
	f.player.SetSequence(seq("b", "/b", 3))
	waitReady(t, f.player)

	b := f.player.Frames()
	if b.Descriptor().Name != "b" || b.Len() != 3 {
		t.Fatalf("ready with %+v, want b", b.Descriptor())
	}

	src.release()
	eventually(t, "stale load to finish", func() bool { return f.player.Discarded() == 1 })

	if f.player.Frames() != b {
		t.Error("stale load replaced the active frame set")
	}
	if got := f.player.Sequence().Name; got != "b" {
		t.Errorf("Sequence() = %q, want b", got)
	}
	if f.player.State() != Ready {
		t.Errorf("State() = %v, want ready", f.player.State())
	}
	if s, r := f.page.Observers(); s != 1 || r != 2 {
		t.Errorf("observers = %d/%d, want one set", s, r)
	}
}

func TestSwitchFromReadyTearsDown(t *testing.T) {
	src := &gatedSource{frame: pngFrame(t), prefix: "/b/", gate: make(chan struct{})}
	t.Cleanup(src.release)
	f := newFixture(t, src)

	f.player.SetSequence(seq("a", "/a", 4))
	waitReady(t, f.player)

	f.player.SetSequence(seq("b", "/b", 4))
	if f.player.State() != Loading || f.player.Frames() != nil {
		t.Fatalf("after switch: state=%v frames=%v", f.player.State(), f.player.Frames())
	}
	if s, r := f.page.Observers(); s != 0 || r != 0 {
		t.Errorf("observers while loading b = %d/%d, want 0/0", s, r)
	}

	draws := f.canvas.Count("draw")
	time.Sleep(10 * time.Millisecond)
	if got := f.canvas.Count("draw"); got != draws {
		t.Errorf("%d draws of a after switching to b", got-draws)
	}

	src.release()
	waitReady(t, f.player)
	if f.player.Sequence().Name != "b" {
		t.Errorf("Sequence() = %q, want b", f.player.Sequence().Name)
	}
}

func TestDispose(t *testing.T) {
	f := newFixture(t, &gatedSource{frame: pngFrame(t)})
	f.player.SetSequence(seq("a", "/a", 4))
	waitReady(t, f.player)
	eventually(t, "a draw", func() bool { return f.canvas.Count("draw") > 0 })

	f.player.Dispose()
	draws := f.canvas.Count("draw")
	time.Sleep(10 * time.Millisecond)
	if got := f.canvas.Count("draw"); got != draws {
		t.Errorf("%d draws after Dispose", got-draws)
	}
	if s, r := f.page.Observers(); s != 0 || r != 0 {
		t.Errorf("observers after Dispose = %d/%d", s, r)
	}
	if f.player.State() != Disposed {
		t.Errorf("State() = %v", f.player.State())
	}
	if err := f.player.WaitReady(context.Background()); !errors.Is(err, ErrDisposed) {
		t.Errorf("WaitReady() = %v, want ErrDisposed", err)
	}

	// Further calls are no-ops.
	f.player.SetSequence(seq("b", "/b", 2))
	f.player.Dispose()
	if f.player.State() != Disposed {
		t.Errorf("SetSequence revived a disposed player")
	}
}

func TestDisposeDuringLoad(t *testing.T) {
	src := &gatedSource{frame: pngFrame(t), prefix: "/a/", gate: make(chan struct{})}
	f := newFixture(t, src)

	f.player.SetSequence(seq("a", "/a", 3))
	f.player.Dispose()
	src.release()

	eventually(t, "stale load to finish", func() bool { return f.player.Discarded() == 1 })
	if f.player.Frames() != nil || f.player.State() != Disposed {
		t.Errorf("load completed into a disposed player")
	}
	if f.canvas.Count("draw") != 0 {
		t.Error("disposed player drew")
	}
}

func TestUnavailableSurface(t *testing.T) {
	ld, err := loader.New(&gatedSource{frame: pngFrame(t)}, loader.Options{})
	if err != nil {
		t.Fatal(err)
	}
	page := host.NewPage(host.DefaultOptions())
	p := New(page, Options{
		Loader: ld,
		NewCanvas: func(int, int) (surface.Canvas, error) {
			return nil, surface.ErrUnavailable
		},
	})
	defer p.Dispose()

	p.SetSequence(seq("a", "/a", 3))
	waitReady(t, p)

	if p.Surface() != nil {
		t.Error("Surface() should be nil")
	}
	if s, r := page.Observers(); s != 0 || r != 0 {
		t.Errorf("observers without a surface = %d/%d", s, r)
	}
	if got := p.RenderStats().LastIndex; got != -1 {
		t.Errorf("RenderStats().LastIndex = %d", got)
	}
}

func TestWaitReadyHonoursContext(t *testing.T) {
	src := &gatedSource{frame: pngFrame(t), prefix: "/a/", gate: make(chan struct{})}
	t.Cleanup(src.release)
	f := newFixture(t, src)
	f.player.SetSequence(seq("a", "/a", 2))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	if err := f.player.WaitReady(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitReady() = %v, want deadline exceeded", err)
	}
}
