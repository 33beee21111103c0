package tar_reader

import (
	"archive/tar"
	"bytes"
	"io"
	"os"
	"path"
	"strings"

	"github.com/melody-ding/go-framescroll/internal/types"
)

// Entry is one regular file read from an archive.
type Entry struct {
	Name string
	Data []byte
}

// ReadEntries returns every regular file in the archive whose name passes
// keep. macOS resource forks ("._" files) are always skipped.
func ReadEntries(r io.Reader, keep func(name string) bool) ([]Entry, error) {
	tr := tar.NewReader(r)
	var entries []Entry

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if hdr.Typeflag != tar.TypeReg && hdr.Typeflag != tar.TypeRegA {
			continue
		}
		if strings.HasPrefix(path.Base(hdr.Name), "._") {
			continue
		}
		if keep != nil && !keep(hdr.Name) {
			continue
		}

		buf := new(bytes.Buffer)
		if _, err := io.Copy(buf, tr); err != nil {
			return nil, err
		}

		entries = append(entries, Entry{Name: hdr.Name, Data: buf.Bytes()})
	}

	return entries, nil
}

// ExtractClipsFromTar reads every .mp4 clip from the archive at tarPath.
func ExtractClipsFromTar(tarPath string) ([]types.Clip, error) {
	f, err := os.Open(tarPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := ReadEntries(f, func(name string) bool {
		return strings.HasSuffix(name, ".mp4")
	})
	if err != nil {
		return nil, err
	}

	clips := make([]types.Clip, 0, len(entries))
	for _, e := range entries {
		key := strings.TrimSuffix(path.Base(e.Name), ".mp4")
		clips = append(clips, types.Clip{Key: key, RawData: e.Data})
	}

	return clips, nil
}
