package loader

import (
	"github.com/gogpu/gg"

	"github.com/melody-ding/go-framescroll/internal/types"
)

// LoadedFrameSet holds one decoded frame per index of a sequence, nil where
// the frame failed to load. It is read-only once Load returns.
type LoadedFrameSet struct {
	desc   types.SequenceDescriptor
	frames []*gg.ImageBuf
}

func newLoadedFrameSet(desc types.SequenceDescriptor, n int) *LoadedFrameSet {
	return &LoadedFrameSet{desc: desc, frames: make([]*gg.ImageBuf, n)}
}

// NewLoadedFrameSet wraps already-decoded frames, for callers that build
// sequences in memory.
func NewLoadedFrameSet(desc types.SequenceDescriptor, frames []*gg.ImageBuf) *LoadedFrameSet {
	return &LoadedFrameSet{desc: desc, frames: append([]*gg.ImageBuf(nil), frames...)}
}

// Descriptor is the sequence the set was loaded for.
func (s *LoadedFrameSet) Descriptor() types.SequenceDescriptor {
	return s.desc
}

// Len is the number of slots, equal to the descriptor's frame count.
func (s *LoadedFrameSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.frames)
}

// At returns frame i, or nil when i is out of range or the frame failed.
func (s *LoadedFrameSet) At(i int) *gg.ImageBuf {
	if s == nil || i < 0 || i >= len(s.frames) {
		return nil
	}
	return s.frames[i]
}

// Loaded counts the frames that are present.
func (s *LoadedFrameSet) Loaded() int {
	n := 0
	for i := 0; i < s.Len(); i++ {
		if s.frames[i] != nil {
			n++
		}
	}
	return n
}
