package processor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/melody-ding/go-framescroll/internal/logging"
	"github.com/melody-ding/go-framescroll/internal/types"
)

// MetadataFile is written next to every prepared sequence.
const MetadataFile = "metadata.json"

// Options controls how a clip is cut into frames.
type Options struct {
	FPS  int
	Size Dimensions
	// Ext is the frame image format: jpg or png.
	Ext string
	// Quality is ffmpeg's JPEG qscale, 2 (best) to 31. Zero leaves the default.
	Quality int
}

func (o Options) ext() string {
	if o.Ext == "" {
		return types.DefaultExt
	}
	return strings.TrimPrefix(strings.ToLower(o.Ext), ".")
}

// extractStream builds the ffmpeg invocation that writes 1.ext, 2.ext, ...
// into outDir.
func extractStream(videoPath, outDir string, opts Options) *ffmpeg.Stream {
	kwargs := ffmpeg.KwArgs{"start_number": 1}
	if vf := ComposeTransforms(FPSTransform{FPS: opts.FPS}, ScaleTransform{Size: opts.Size}); vf != "" {
		kwargs["vf"] = vf
	}
	if opts.Quality > 0 && opts.ext() != "png" {
		kwargs["q:v"] = opts.Quality
	}
	return ffmpeg.Input(videoPath).
		Output(filepath.Join(outDir, "%d."+opts.ext()), kwargs).
		OverWriteOutput()
}

// ExtractFrames cuts the video at videoPath into a numbered sequence under
// outDir and writes its metadata.json. key names the sequence.
func ExtractFrames(videoPath, outDir, key string, opts Options) (types.SequenceMetadata, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return types.SequenceMetadata{}, err
	}

	var stderr bytes.Buffer
	stream := extractStream(videoPath, outDir, opts).WithErrorOutput(&stderr)
	logging.Logger().Debug("running ffmpeg", "args", strings.Join(stream.GetArgs(), " "))
	if err := stream.Run(); err != nil {
		return types.SequenceMetadata{}, fmt.Errorf("ffmpeg %s: %w: %s", videoPath, err, lastLine(stderr.String()))
	}

	count, err := CountFrames(outDir, opts.ext())
	if err != nil {
		return types.SequenceMetadata{}, err
	}
	if count == 0 {
		return types.SequenceMetadata{}, fmt.Errorf("ffmpeg produced no frames for %s", videoPath)
	}

	meta := types.SequenceMetadata{
		Key:        key,
		FPS:        opts.FPS,
		FrameCount: count,
		StartFrame: 1,
		Ext:        opts.ext(),
	}
	if !opts.Size.IsZero() {
		meta.Size = []int{opts.Size.Width, opts.Size.Height}
	}
	if err := WriteMetadata(outDir, meta); err != nil {
		return types.SequenceMetadata{}, err
	}
	return meta, nil
}

// ProcessClip cuts an in-memory clip into outputDir/clip.Key.
func ProcessClip(clip types.Clip, outputDir string, opts Options) (types.SequenceMetadata, error) {
	tmp, err := os.CreateTemp("", "framescroll-*.mp4")
	if err != nil {
		return types.SequenceMetadata{}, err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(clip.RawData); err != nil {
		tmp.Close()
		return types.SequenceMetadata{}, err
	}
	if err := tmp.Close(); err != nil {
		return types.SequenceMetadata{}, err
	}

	return ExtractFrames(tmp.Name(), filepath.Join(outputDir, clip.Key), clip.Key, opts)
}

// CountFrames returns n such that 1.ext through n.ext all exist in dir.
func CountFrames(dir, ext string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	present := make(map[int]bool, len(entries))
	suffix := "." + ext
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, suffix) {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSuffix(name, suffix)); err == nil && n > 0 {
			present[n] = true
		}
	}
	n := 0
	for present[n+1] {
		n++
	}
	return n, nil
}

func WriteMetadata(dir string, meta types.SequenceMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, MetadataFile), append(data, '\n'), 0644)
}

func ReadMetadata(dir string) (types.SequenceMetadata, error) {
	var meta types.SequenceMetadata
	data, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("parse %s: %w", filepath.Join(dir, MetadataFile), err)
	}
	return meta, nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
