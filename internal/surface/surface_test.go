package surface

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gg"

	"github.com/melody-ding/go-framescroll/internal/host"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name         string
		w, h, dpr    float64
		wantW, wantH int
		wantDPR      float64
	}{
		{name: "1x", w: 800, h: 600, dpr: 1, wantW: 800, wantH: 600, wantDPR: 1},
		{name: "retina", w: 390, h: 844, dpr: 3, wantW: 1170, wantH: 2532, wantDPR: 3},
		{name: "fractional floors", w: 333.7, h: 100.2, dpr: 1.5, wantW: 500, wantH: 150, wantDPR: 1.5},
		{name: "missing dpr", w: 10, h: 10, dpr: 0, wantW: 10, wantH: 10, wantDPR: 1},
		{name: "collapsed container", w: 0, h: 0, dpr: 2, wantW: 1, wantH: 1, wantDPR: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.w, tt.h, tt.dpr)
			if got.BackingWidth != tt.wantW || got.BackingHeight != tt.wantH || got.DPR != tt.wantDPR {
				t.Errorf("Compute() = %+v, want %dx%d @%v", got, tt.wantW, tt.wantH, tt.wantDPR)
			}
			if got.CSSWidth != tt.w || got.CSSHeight != tt.h {
				t.Errorf("Compute() CSS size = %vx%v", got.CSSWidth, got.CSSHeight)
			}
		})
	}
}

func newCanvas(t *testing.T, w, h int) *GGCanvas {
	t.Helper()
	c, err := NewGGCanvas(w, h)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSizerIdempotent(t *testing.T) {
	opts := host.DefaultOptions()
	opts.DevicePixelRatio = 2
	page := host.NewPage(opts)
	s := New(newCanvas(t, 1, 1))
	z := NewSizer(page, s)

	first, err := z.Resize()
	if err != nil {
		t.Fatal(err)
	}
	second, err := z.Resize()
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("second Resize() = %+v, want %+v", second, first)
	}
	if first.BackingWidth != 2560 || first.BackingHeight != 1600 {
		t.Errorf("backing = %dx%d, want 2560x1600", first.BackingWidth, first.BackingHeight)
	}
	if s.Resizes() != 1 {
		t.Errorf("canvas resized %d times, want 1", s.Resizes())
	}
}

func TestSizerFollowsContainer(t *testing.T) {
	page := host.NewPage(host.DefaultOptions())
	canvas := newCanvas(t, 1, 1)
	s := New(canvas)
	z := NewSizer(page, s)

	z.Attach()
	z.Attach()
	if _, r := page.Observers(); r != 1 {
		t.Fatalf("resize observers = %d, want 1", r)
	}
	if w, h := canvas.Size(); w != 1280 || h != 800 {
		t.Errorf("canvas = %dx%d after Attach, want 1280x800", w, h)
	}

	page.Resize(640, 480)
	if w, h := canvas.Size(); w != 640 || h != 480 {
		t.Errorf("canvas = %dx%d after resize, want 640x480", w, h)
	}

	page.SetDevicePixelRatio(2)
	if got := s.Transform(); got.BackingWidth != 1280 || got.BackingHeight != 960 || got.CSSWidth != 640 {
		t.Errorf("transform after dpr change = %+v", got)
	}

	z.Detach()
	page.Resize(100, 100)
	if w, _ := canvas.Size(); w != 1280 {
		t.Errorf("detached sizer still resizing: width %d", w)
	}
	if _, r := page.Observers(); r != 0 {
		t.Errorf("resize observers after Detach = %d", r)
	}
}

func TestNewGGCanvasUnavailable(t *testing.T) {
	if _, err := NewGGCanvas(0, 100); !errors.Is(err, ErrUnavailable) {
		t.Errorf("NewGGCanvas(0, 100) error = %v, want ErrUnavailable", err)
	}
}

// twoTone is left half red, right half blue.
func twoTone(w, h int) *gg.ImageBuf {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: 255, A: 255}
			if x >= w/2 {
				c = color.RGBA{B: 255, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	return gg.ImageBufFromImage(img)
}

func TestDrawImageCropsOverflow(t *testing.T) {
	canvas := newCanvas(t, 10, 10)
	// A 20x10 image covering a 10x10 canvas is drawn at x=-5 with its
	// original size: the visible part is source columns 5..15.
	canvas.DrawImage(twoTone(20, 10), Rect{X: -5, Y: 0, Width: 20, Height: 10})

	img := canvas.Image()
	if r, _, b, _ := img.At(1, 5).RGBA(); r>>8 != 255 || b != 0 {
		t.Errorf("pixel (1,5) = %v, want red", img.At(1, 5))
	}
	if r, _, b, _ := img.At(8, 5).RGBA(); b>>8 != 255 || r != 0 {
		t.Errorf("pixel (8,5) = %v, want blue", img.At(8, 5))
	}
}

func TestDrawImageScales(t *testing.T) {
	canvas := newCanvas(t, 40, 20)
	canvas.DrawImage(twoTone(4, 2), Rect{X: 0, Y: 0, Width: 40, Height: 20})

	img := canvas.Image()
	if r, _, _, _ := img.At(5, 10).RGBA(); r>>8 != 255 {
		t.Errorf("pixel (5,10) = %v, want red", img.At(5, 10))
	}
	if _, _, b, _ := img.At(35, 10).RGBA(); b>>8 != 255 {
		t.Errorf("pixel (35,10) = %v, want blue", img.At(35, 10))
	}
}

func TestClearAndLoading(t *testing.T) {
	canvas := newCanvas(t, 64, 64)
	canvas.DrawImage(twoTone(2, 2), Rect{Width: 64, Height: 64})
	canvas.Clear()
	if _, _, _, a := canvas.Image().At(10, 10).RGBA(); a != 0 {
		t.Errorf("Clear() left alpha %d", a)
	}

	canvas.DrawLoading(0.5, "#ff0000")
	if _, _, _, a := canvas.Image().At(1, 1).RGBA(); a == 0 {
		t.Error("DrawLoading() did not paint the background")
	}
}
