package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// FileSource reads frames from the local filesystem.
type FileSource struct{}

func (FileSource) Fetch(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return data, err
}
