package sharding

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/melody-ding/go-framescroll/internal/processor"
	"github.com/melody-ding/go-framescroll/internal/source"
	"github.com/melody-ding/go-framescroll/internal/types"
)

func writeSequence(t *testing.T, root, key string, frames int) {
	t.Helper()
	dir := filepath.Join(root, key)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for n := 1; n <= frames; n++ {
		data := []byte(fmt.Sprintf("%s-%d", key, n))
		if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("%d.jpg", n)), data, 0644); err != nil {
			t.Fatal(err)
		}
	}
	meta := types.SequenceMetadata{Key: key, FPS: 8, FrameCount: frames, StartFrame: 1, Ext: "jpg"}
	if err := processor.WriteMetadata(dir, meta); err != nil {
		t.Fatal(err)
	}
}

func TestFindSequences(t *testing.T) {
	root := t.TempDir()
	writeSequence(t, root, "mint", 2)
	writeSequence(t, root, "berry", 1)
	if err := os.MkdirAll(filepath.Join(root, "scratch"), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := FindSequences(root)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(root, "berry"), filepath.Join(root, "mint")}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("FindSequences() = %v, want %v", got, want)
	}
}

func TestPackSequences(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeSequence(t, in, "berry", 2)
	writeSequence(t, in, "lemon", 3)
	writeSequence(t, in, "mint", 4)

	bundles, err := PackSequences(in, out, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(bundles) != 2 {
		t.Fatalf("got %d bundles, want 2", len(bundles))
	}
	if len(bundles[0].Sequences) != 2 || len(bundles[1].Sequences) != 1 {
		t.Errorf("bundle sizes = %d, %d", len(bundles[0].Sequences), len(bundles[1].Sequences))
	}
	if bundles[1].Sequences[0].Key != "mint" || bundles[1].Bytes == 0 {
		t.Errorf("second bundle = %+v", bundles[1])
	}

	// The bundle must serve frames to a descriptor rooted at the sequence name.
	src, err := source.OpenTarSource(bundles[0].Path)
	if err != nil {
		t.Fatal(err)
	}
	desc := bundles[0].Sequences[1].Descriptor("lemon")
	data, err := src.Fetch(context.Background(), desc.FramePath(3))
	if err != nil {
		t.Fatalf("Fetch(%s) = %v", desc.FramePath(3), err)
	}
	if string(data) != "lemon-3" {
		t.Errorf("frame data = %q", data)
	}
	if _, err := src.Fetch(context.Background(), "lemon/"+processor.MetadataFile); err != nil {
		t.Errorf("metadata not packed: %v", err)
	}
}

func TestPackSequencesRejectsZeroBundleSize(t *testing.T) {
	if _, err := PackSequences(t.TempDir(), t.TempDir(), 0); err == nil {
		t.Error("PackSequences() with perBundle 0 should fail")
	}
}
