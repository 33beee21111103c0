package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/melody-ding/go-framescroll/internal/logging"
	"github.com/melody-ding/go-framescroll/internal/processor"
	"github.com/melody-ding/go-framescroll/internal/sharding"
	"github.com/melody-ding/go-framescroll/internal/tar_reader"
)

func main() {
	tarPath := flag.String("tar", "", "Path to input .tar archive of .mp4 clips")
	videoPath := flag.String("video", "", "Path to a single input video (alternative to -tar)")
	key := flag.String("key", "", "Sequence name for -video (default: file name without extension)")
	outputDir := flag.String("out", "frames", "Directory to write numbered frame sequences")
	fps := flag.Int("fps", 24, "Target frames per second (0 keeps the source rate)")
	size := flag.String("size", "", "Resize frames to this resolution (e.g. 1920x1080, 1280x0)")
	ext := flag.String("ext", "jpg", "Frame image format: jpg or png")
	quality := flag.Int("quality", 2, "JPEG quality, 2 (best) to 31")
	pack := flag.Int("pack", 0, "Pack prepared sequences into tar bundles of this many sequences (0: no packing)")
	bundleDir := flag.String("bundles", "bundles", "Directory for tar bundles written by -pack")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	logging.SetLogger(logging.NewText(os.Stderr, *verbose))

	if err := run(*tarPath, *videoPath, *key, *outputDir, *fps, *size, *ext, *quality, *pack, *bundleDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(tarPath, videoPath, key, outputDir string, fps int, size, ext string, quality, pack int, bundleDir string) error {
	dims, err := processor.ParseDimensions(size)
	if err != nil {
		return err
	}
	opts := processor.Options{FPS: fps, Size: dims, Ext: ext, Quality: quality}

	switch {
	case videoPath != "" && tarPath != "":
		return fmt.Errorf("use either -video or -tar, not both")
	case videoPath != "":
		if key == "" {
			key = strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
		}
		fmt.Printf("Processing video: %s\n", videoPath)
		meta, err := processor.ExtractFrames(videoPath, filepath.Join(outputDir, key), key, opts)
		if err != nil {
			return err
		}
		fmt.Printf("  %s: %d frames\n", meta.Key, meta.FrameCount)
	case tarPath != "":
		clips, err := tar_reader.ExtractClipsFromTar(tarPath)
		if err != nil {
			return fmt.Errorf("error extracting tar: %w", err)
		}
		failed := 0
		for _, clip := range clips {
			fmt.Printf("Processing clip: %s (%s)\n", clip.Key, humanize.Bytes(uint64(len(clip.RawData))))
			meta, err := processor.ProcessClip(clip, outputDir, opts)
			if err != nil {
				fmt.Printf("Error processing %s: %v\n", clip.Key, err)
				failed++
				continue
			}
			fmt.Printf("  %s: %d frames\n", meta.Key, meta.FrameCount)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d clips failed", failed, len(clips))
		}
	case pack == 0:
		return fmt.Errorf("nothing to do: pass -video, -tar or -pack")
	}

	if pack > 0 {
		bundles, err := sharding.PackSequences(outputDir, bundleDir, pack)
		if err != nil {
			return err
		}
		for _, b := range bundles {
			fmt.Printf("Wrote %s: %d sequences, %s\n", b.Path, len(b.Sequences), humanize.Bytes(uint64(b.Bytes)))
		}
	}
	return nil
}
