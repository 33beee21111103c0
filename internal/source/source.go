// Package source fetches the raw bytes of frame images. A frame path is
// whatever a SequenceDescriptor renders: an http(s) URL, an s3:// URL or a
// filesystem path.
package source

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/melody-ding/go-framescroll/internal/config"
)

// ErrNotFound reports a frame that does not exist at its path.
var ErrNotFound = errors.New("source: frame not found")

// Source fetches one frame.
type Source interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, path string) ([]byte, error)

func (f SourceFunc) Fetch(ctx context.Context, path string) ([]byte, error) {
	return f(ctx, path)
}

// Router dispatches each path to a source by scheme.
type Router struct {
	HTTP Source
	File Source

	// S3 is built on first use so configurations without s3:// paths never
	// touch AWS credentials.
	newS3  func() (Source, error)
	s3Once sync.Once
	s3     Source
	s3Err  error
}

// New builds the router described by cfg. When cfg.TarBundle is set,
// plain paths are served from the bundle instead of the filesystem.
func New(cfg config.SourceConfig) (*Router, error) {
	r := &Router{
		HTTP: NewHTTPSource(cfg.HTTPTimeout()),
		File: FileSource{},
		newS3: func() (Source, error) {
			return NewS3Source(cfg.S3Region)
		},
	}
	if cfg.TarBundle != "" {
		tarSrc, err := OpenTarSource(cfg.TarBundle)
		if err != nil {
			return nil, err
		}
		r.File = tarSrc
	}
	return r, nil
}

func (r *Router) Fetch(ctx context.Context, path string) ([]byte, error) {
	switch {
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return r.HTTP.Fetch(ctx, path)
	case strings.HasPrefix(path, "s3://"):
		r.s3Once.Do(func() {
			if r.newS3 == nil {
				r.s3Err = errors.New("source: s3 not configured")
				return
			}
			r.s3, r.s3Err = r.newS3()
		})
		if r.s3Err != nil {
			return nil, r.s3Err
		}
		return r.s3.Fetch(ctx, path)
	default:
		return r.File.Fetch(ctx, path)
	}
}
