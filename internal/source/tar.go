package source

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/melody-ding/go-framescroll/internal/tar_reader"
)

// TarSource serves frames from a bundle written by frameprep -pack.
// Entries are looked up by their cleaned, slash-relative name, so a
// descriptor with base path "mint" finds "mint/1.jpg".
type TarSource struct {
	files map[string][]byte
}

// OpenTarSource reads the whole bundle into memory.
func OpenTarSource(bundlePath string) (*TarSource, error) {
	f, err := os.Open(bundlePath)
	if err != nil {
		return nil, fmt.Errorf("source: open bundle: %w", err)
	}
	defer f.Close()

	entries, err := tar_reader.ReadEntries(f, nil)
	if err != nil {
		return nil, fmt.Errorf("source: read bundle %s: %w", bundlePath, err)
	}
	return NewTarSource(entries), nil
}

// NewTarSource indexes already-read archive entries.
func NewTarSource(entries []tar_reader.Entry) *TarSource {
	files := make(map[string][]byte, len(entries))
	for _, e := range entries {
		files[bundleKey(e.Name)] = e.Data
	}
	return &TarSource{files: files}
}

func bundleKey(name string) string {
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}

// Len is the number of files in the bundle.
func (s *TarSource) Len() int {
	return len(s.files)
}

func (s *TarSource) Fetch(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, ok := s.files[bundleKey(p)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	return data, nil
}
