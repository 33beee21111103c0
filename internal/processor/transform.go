package processor

import (
	"fmt"
	"strconv"
	"strings"
)

// Transform is one ffmpeg video filter applied while cutting frames.
type Transform interface {
	// Filter returns the filtergraph fragment, or "" to contribute nothing.
	Filter() string
}

// FPSTransform samples the clip at a fixed frame rate.
type FPSTransform struct {
	FPS int
}

func (t FPSTransform) Filter() string {
	if t.FPS <= 0 {
		return ""
	}
	return fmt.Sprintf("fps=%d", t.FPS)
}

// ScaleTransform resizes every frame. A zero dimension keeps the aspect
// ratio for that side.
type ScaleTransform struct {
	Size Dimensions
}

func (t ScaleTransform) Filter() string {
	if t.Size.IsZero() {
		return ""
	}
	w, h := t.Size.Width, t.Size.Height
	if w == 0 {
		w = -2
	}
	if h == 0 {
		h = -2
	}
	return fmt.Sprintf("scale=%d:%d", w, h)
}

// ComposeTransforms joins the non-empty filters into one filtergraph chain.
func ComposeTransforms(transforms ...Transform) string {
	var filters []string
	for _, t := range transforms {
		if f := t.Filter(); f != "" {
			filters = append(filters, f)
		}
	}
	return strings.Join(filters, ",")
}

// Dimensions is a frame size in pixels.
type Dimensions struct {
	Width  int
	Height int
}

func (d Dimensions) IsZero() bool {
	return d.Width == 0 && d.Height == 0
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// ParseDimensions parses "WIDTHxHEIGHT". An empty string means keep the
// source size. Either side may be 0 to follow the aspect ratio.
func ParseDimensions(size string) (Dimensions, error) {
	if size == "" {
		return Dimensions{}, nil
	}
	parts := strings.Split(strings.ToLower(size), "x")
	if len(parts) != 2 {
		return Dimensions{}, fmt.Errorf("invalid size format: %s", size)
	}
	width, err := strconv.Atoi(parts[0])
	if err != nil || width < 0 {
		return Dimensions{}, fmt.Errorf("invalid width: %s", parts[0])
	}
	height, err := strconv.Atoi(parts[1])
	if err != nil || height < 0 {
		return Dimensions{}, fmt.Errorf("invalid height: %s", parts[1])
	}
	return Dimensions{Width: width, Height: height}, nil
}
