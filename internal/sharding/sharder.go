package sharding

import (
	"archive/tar"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/melody-ding/go-framescroll/internal/processor"
	"github.com/melody-ding/go-framescroll/internal/types"
)

// Bundle is one tar written by PackSequences.
type Bundle struct {
	Path      string
	Sequences []types.SequenceMetadata
	Bytes     int64
}

// FindSequences returns every directory under inputDir holding a
// metadata.json, sorted by path.
func FindSequences(inputDir string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if _, err := os.Stat(filepath.Join(path, processor.MetadataFile)); err == nil {
				dirs = append(dirs, path)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(dirs)
	return dirs, nil
}

// PackSequences writes the prepared sequences under inputDir into tar
// bundles of at most perBundle sequences each. Inside a bundle every
// sequence lives under its directory name, so a descriptor whose base path
// is that name resolves against the bundle.
func PackSequences(inputDir, outputDir string, perBundle int) ([]Bundle, error) {
	if perBundle < 1 {
		return nil, fmt.Errorf("sequences per bundle must be positive, got %d", perBundle)
	}
	sequences, err := FindSequences(inputDir)
	if err != nil {
		return nil, fmt.Errorf("error scanning %s: %w", inputDir, err)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, err
	}

	var bundles []Bundle
	numBundles := (len(sequences) + perBundle - 1) / perBundle
	for i := 0; i < numBundles; i++ {
		start := i * perBundle
		end := min((i+1)*perBundle, len(sequences))

		bundlePath := filepath.Join(outputDir, fmt.Sprintf("frames_%05d.tar", i))
		b, err := createBundle(bundlePath, sequences[start:end])
		if err != nil {
			return nil, fmt.Errorf("error creating bundle %d: %w", i, err)
		}
		bundles = append(bundles, b)
	}
	return bundles, nil
}

// createBundle creates a tar file containing the given sequence directories.
func createBundle(bundlePath string, sequences []string) (Bundle, error) {
	b := Bundle{Path: bundlePath}

	tarFile, err := os.Create(bundlePath)
	if err != nil {
		return b, fmt.Errorf("error creating tar file: %w", err)
	}
	defer tarFile.Close()

	tw := tar.NewWriter(tarFile)
	for _, dir := range sequences {
		meta, err := processor.ReadMetadata(dir)
		if err != nil {
			return b, err
		}
		n, err := addDir(tw, dir)
		if err != nil {
			return b, fmt.Errorf("error adding sequence %s: %w", dir, err)
		}
		b.Sequences = append(b.Sequences, meta)
		b.Bytes += n
	}

	if err := tw.Close(); err != nil {
		return b, fmt.Errorf("error finishing tar: %w", err)
	}
	return b, tarFile.Close()
}

// addDir writes every file directly inside dir under base(dir)/.
func addDir(tw *tar.Writer, dir string) (int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	var written int64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return written, fmt.Errorf("error reading file %s: %w", e.Name(), err)
		}

		header := &tar.Header{
			Name: filepath.ToSlash(filepath.Join(filepath.Base(dir), e.Name())),
			Mode: 0644,
			Size: int64(len(data)),
		}
		if err := tw.WriteHeader(header); err != nil {
			return written, fmt.Errorf("error writing tar header: %w", err)
		}
		if _, err := tw.Write(data); err != nil {
			return written, fmt.Errorf("error writing tar data: %w", err)
		}
		written += int64(len(data))
	}
	return written, nil
}
