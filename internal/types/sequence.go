package types

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultExt is the frame file extension used when a descriptor has none.
const DefaultExt = "jpg"

// ErrInvalidDescriptor is wrapped by Validate failures.
var ErrInvalidDescriptor = errors.New("invalid sequence descriptor")

// SequenceDescriptor identifies one playable frame sequence. It is a value:
// switching products replaces the whole descriptor.
type SequenceDescriptor struct {
	Name     string
	Theme    string
	BasePath string
	Ext      string

	// FrameCount is the number of frames, numbered 1..FrameCount on disk.
	FrameCount int

	// StartFrame is the 1-based frame shown at progress 0.
	StartFrame int
}

// NewSequenceDescriptor builds a descriptor, filling in the default
// extension and a start frame of 1 when start is zero.
func NewSequenceDescriptor(name, theme, basePath, ext string, frameCount, startFrame int) SequenceDescriptor {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = DefaultExt
	}
	if startFrame == 0 {
		startFrame = 1
	}
	return SequenceDescriptor{
		Name:       name,
		Theme:      theme,
		BasePath:   strings.TrimRight(basePath, "/"),
		Ext:        ext,
		FrameCount: frameCount,
		StartFrame: startFrame,
	}
}

// FramePath returns the location of 1-based frame n.
func (d SequenceDescriptor) FramePath(n int) string {
	ext := d.Ext
	if ext == "" {
		ext = DefaultExt
	}
	return fmt.Sprintf("%s/%d.%s", d.BasePath, n, ext)
}

// StartFrameIndex is the 0-based index shown at progress 0, clamped into
// [0, FrameCount-1]. Malformed descriptors yield 0.
func (d SequenceDescriptor) StartFrameIndex() int {
	if d.FrameCount < 1 {
		return 0
	}
	idx := d.StartFrame - 1
	if idx < 0 {
		return 0
	}
	if idx > d.FrameCount-1 {
		return d.FrameCount - 1
	}
	return idx
}

// Validate reports descriptors that callers should not construct.
func (d SequenceDescriptor) Validate() error {
	switch {
	case d.BasePath == "":
		return fmt.Errorf("%w: empty base path", ErrInvalidDescriptor)
	case d.FrameCount < 1:
		return fmt.Errorf("%w: frame count %d < 1", ErrInvalidDescriptor, d.FrameCount)
	case d.StartFrame < 1 || d.StartFrame > d.FrameCount:
		return fmt.Errorf("%w: start frame %d outside 1..%d", ErrInvalidDescriptor, d.StartFrame, d.FrameCount)
	}
	return nil
}

// String identifies the descriptor in logs.
func (d SequenceDescriptor) String() string {
	return fmt.Sprintf("%s(%s, %d frames)", d.Name, d.BasePath, d.FrameCount)
}
