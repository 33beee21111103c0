package surface

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
)

var (
	loadingBackground = gg.RGBA2(0.07, 0.09, 0.11, 1)
	loadingTrack      = gg.RGBA2(1, 1, 1, 0.15)
	loadingAccent     = gg.Hex("#84cc16")
)

// GGCanvas is a Canvas backed by a gg raster context.
type GGCanvas struct {
	dc *gg.Context

	last    *gg.ImageBuf
	lastKey scaleKey
}

// NewGGCanvas creates a canvas of the given backing size.
func NewGGCanvas(width, height int) (*GGCanvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrUnavailable, width, height)
	}
	return &GGCanvas{dc: gg.NewContext(width, height)}, nil
}

func (c *GGCanvas) Size() (int, int) {
	return c.dc.Width(), c.dc.Height()
}

func (c *GGCanvas) Resize(width, height int) error {
	c.last = nil
	return c.dc.Resize(width, height)
}

func (c *GGCanvas) Clear() {
	c.dc.Clear()
}

// DrawImage draws img scaled into dst. Parts of dst outside the canvas are
// cropped from the source, so a cover-fit rectangle larger than the canvas
// shows the center of the image at the right scale.
func (c *GGCanvas) DrawImage(img *gg.ImageBuf, dst Rect) {
	if img == nil || dst.Width <= 0 || dst.Height <= 0 {
		return
	}
	iw, ih := img.Bounds()
	cw, ch := float64(c.dc.Width()), float64(c.dc.Height())

	x0, y0 := math.Max(dst.X, 0), math.Max(dst.Y, 0)
	x1, y1 := math.Min(dst.X+dst.Width, cw), math.Min(dst.Y+dst.Height, ch)
	dr := image.Rect(int(math.Round(x0)), int(math.Round(y0)), int(math.Round(x1)), int(math.Round(y1)))
	if dr.Empty() {
		return
	}

	sx := float64(iw) / dst.Width
	sy := float64(ih) / dst.Height
	sr := image.Rect(
		int(math.Round((x0-dst.X)*sx)),
		int(math.Round((y0-dst.Y)*sy)),
		int(math.Round((x1-dst.X)*sx)),
		int(math.Round((y1-dst.Y)*sy)),
	).Intersect(image.Rect(0, 0, iw, ih))
	if sr.Empty() {
		return
	}

	c.dc.DrawImage(c.scaled(img, sr, dr.Dx(), dr.Dy()), float64(dr.Min.X), float64(dr.Min.Y))
}

// scaled resamples the sr part of img to w x h. The last result is kept,
// since the draw loop repaints the same frame many times between scrolls.
func (c *GGCanvas) scaled(img *gg.ImageBuf, sr image.Rectangle, w, h int) *gg.ImageBuf {
	key := scaleKey{img: img, src: sr, w: w, h: h}
	if c.lastKey == key && c.last != nil {
		return c.last
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(out, out.Bounds(), stdImage(img), sr, xdraw.Src, nil)

	c.last = gg.ImageBufFromImage(out)
	c.lastKey = key
	return c.last
}

type scaleKey struct {
	img  *gg.ImageBuf
	src  image.Rectangle
	w, h int
}

// stdImage views an RGBA8 buffer as an image.Image without copying.
func stdImage(b *gg.ImageBuf) image.Image {
	if b.Format() == gg.FormatRGBA8 {
		w, h := b.Bounds()
		return &image.NRGBA{Pix: b.Data(), Stride: b.Stride(), Rect: image.Rect(0, 0, w, h)}
	}
	return b.ToStdImage()
}

// DrawLoading paints a progress ring centered on the canvas.
func (c *GGCanvas) DrawLoading(fraction float64, theme string) {
	fraction = math.Max(0, math.Min(1, fraction))
	w, h := float64(c.dc.Width()), float64(c.dc.Height())
	cx, cy := w/2, h/2
	r := math.Max(4, math.Min(w, h)/20)

	c.dc.ClearWithColor(loadingBackground)
	c.dc.SetLineWidth(math.Max(1, r/6))

	c.dc.SetRGBA(loadingTrack.R, loadingTrack.G, loadingTrack.B, loadingTrack.A)
	c.dc.DrawCircle(cx, cy, r)
	_ = c.dc.Stroke()

	if fraction == 0 {
		return
	}
	accent := loadingAccent
	if theme != "" {
		accent = gg.Hex(theme)
	}
	c.dc.SetRGBA(accent.R, accent.G, accent.B, accent.A)
	c.dc.DrawArc(cx, cy, r, -math.Pi/2, -math.Pi/2+2*math.Pi*fraction)
	_ = c.dc.Stroke()
}

// Image returns the current pixels.
func (c *GGCanvas) Image() image.Image {
	return c.dc.Image()
}

func (c *GGCanvas) SavePNG(path string) error {
	return c.dc.SavePNG(path)
}

func (c *GGCanvas) EncodePNG(w io.Writer) error {
	return c.dc.EncodePNG(w)
}

func (c *GGCanvas) Close() error {
	return c.dc.Close()
}
