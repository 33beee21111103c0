package frameindex

import (
	"math"
	"testing"

	"github.com/melody-ding/go-framescroll/internal/types"
)

func seq(frameCount, startFrame int) types.SequenceDescriptor {
	return types.NewSequenceDescriptor("t", "", "/t", "", frameCount, startFrame)
}

func TestMapEndpoints(t *testing.T) {
	d := seq(10, 1)
	if got := Map(0, d); got != 0 {
		t.Errorf("Map(0) = %d, want 0", got)
	}
	if got := Map(1, d); got != 9 {
		t.Errorf("Map(1) = %d, want 9", got)
	}
	if got := Map(0.5, d); got != 4 {
		t.Errorf("Map(0.5) = %d, want 4", got)
	}
}

func TestMapStartFrame(t *testing.T) {
	d := seq(100, 21)
	if got := Map(0, d); got != 20 {
		t.Errorf("Map(0) = %d, want 20", got)
	}
	if got := Map(1, d); got != 99 {
		t.Errorf("Map(1) = %d, want 99", got)
	}
}

func TestMapRangeAndMonotonic(t *testing.T) {
	descs := []types.SequenceDescriptor{seq(1, 1), seq(2, 2), seq(10, 1), seq(10, 10), seq(97, 13), seq(240, 1)}
	for _, d := range descs {
		start := d.StartFrameIndex()
		prev := -1
		for i := 0; i <= 1000; i++ {
			p := float64(i) / 1000
			got := Map(p, d)
			if got < start || got > d.FrameCount-1 {
				t.Fatalf("%v: Map(%v) = %d outside [%d, %d]", d, p, got, start, d.FrameCount-1)
			}
			if got < prev {
				t.Fatalf("%v: Map(%v) = %d decreased from %d", d, p, got, prev)
			}
			prev = got
		}
	}
}

func TestMapOutOfRangeInputs(t *testing.T) {
	tests := []struct {
		name     string
		progress float64
		desc     types.SequenceDescriptor
		want     int
	}{
		{name: "NaN maps to start", progress: math.NaN(), desc: seq(10, 3), want: 2},
		{name: "+Inf maps to start", progress: math.Inf(1), desc: seq(10, 1), want: 0},
		{name: "negative clamps", progress: -0.5, desc: seq(10, 1), want: 0},
		{name: "overshoot clamps", progress: 1.0000001, desc: seq(10, 1), want: 9},
		{name: "no frames", progress: 0.5, desc: types.SequenceDescriptor{FrameCount: 0}, want: 0},
		{name: "negative frame count", progress: 0.5, desc: types.SequenceDescriptor{FrameCount: -4, StartFrame: 2}, want: 0},
		{name: "start beyond end", progress: 0, desc: types.SequenceDescriptor{FrameCount: 5, StartFrame: 9}, want: 4},
		{name: "start below one", progress: 1, desc: types.SequenceDescriptor{FrameCount: 5, StartFrame: -2}, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Map(tt.progress, tt.desc); got != tt.want {
				t.Errorf("Map() = %d, want %d", got, tt.want)
			}
		})
	}
}
