// Package loader fetches and decodes every frame of a sequence. Individual
// failures leave a hole in the result instead of failing the load.
package loader

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gogpu/gg"
	lru "github.com/hashicorp/golang-lru/v2"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/melody-ding/go-framescroll/internal/logging"
	"github.com/melody-ding/go-framescroll/internal/source"
	"github.com/melody-ding/go-framescroll/internal/types"
)

// DefaultConcurrency bounds parallel fetches when Options leaves it unset.
const DefaultConcurrency = 16

// ProgressFunc receives the number of settled frames out of total. It is
// called from loader goroutines and must be safe for concurrent use.
type ProgressFunc func(settled, total int)

// Options configures a Loader.
type Options struct {
	Concurrency int
	// CacheFrames is the number of decoded frames kept across loads,
	// keyed by frame path. Zero disables the cache.
	CacheFrames int
}

// Loader implements the join-all frame fetch.
type Loader struct {
	src         source.Source
	concurrency int
	cache       *lru.Cache[string, *gg.ImageBuf]
}

// New creates a loader reading from src.
func New(src source.Source, opts Options) (*Loader, error) {
	l := &Loader{src: src, concurrency: opts.Concurrency}
	if l.concurrency <= 0 {
		l.concurrency = DefaultConcurrency
	}
	if opts.CacheFrames > 0 {
		cache, err := lru.New[string, *gg.ImageBuf](opts.CacheFrames)
		if err != nil {
			return nil, fmt.Errorf("loader: frame cache: %w", err)
		}
		l.cache = cache
	}
	return l, nil
}

// Load fetches frames 1..FrameCount of desc and returns once every fetch
// has settled. A frame that fails to fetch or decode is nil in the result.
// Load never returns a partial set: cancelling ctx makes the remaining
// fetches fail fast, and the set is still complete in length.
func (l *Loader) Load(ctx context.Context, desc types.SequenceDescriptor, onProgress ProgressFunc) *LoadedFrameSet {
	total := desc.FrameCount
	if total < 1 {
		return newLoadedFrameSet(desc, 0)
	}
	set := newLoadedFrameSet(desc, total)
	start := time.Now()

	var (
		settled atomic.Int64
		failed  atomic.Int64
		fetched atomic.Int64
		g       errgroup.Group
	)
	g.SetLimit(l.concurrency)

	for i := 0; i < total; i++ {
		g.Go(func() error {
			framePath := desc.FramePath(i + 1)
			buf, n, err := l.loadFrame(ctx, framePath)
			if err != nil {
				failed.Add(1)
				logging.Logger().Debug("frame load failed", "sequence", desc.Name, "path", framePath, "err", err)
			} else {
				set.frames[i] = buf
				fetched.Add(int64(n))
			}
			done := settled.Add(1)
			if onProgress != nil {
				onProgress(int(done), total)
			}
			return nil
		})
	}
	_ = g.Wait()

	logging.Logger().Info("frame sequence loaded",
		"sequence", desc.Name,
		"loaded", total-int(failed.Load()),
		"failed", failed.Load(),
		"fetched", humanize.Bytes(uint64(fetched.Load())),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return set
}

// loadFrame returns the decoded frame and the number of bytes fetched
// (zero on a cache hit).
func (l *Loader) loadFrame(ctx context.Context, framePath string) (*gg.ImageBuf, int, error) {
	if l.cache != nil {
		if buf, ok := l.cache.Get(framePath); ok {
			return buf, 0, nil
		}
	}

	data, err := l.src.Fetch(ctx, framePath)
	if err != nil {
		return nil, 0, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, len(data), fmt.Errorf("decode %s: %w", framePath, err)
	}

	buf := gg.ImageBufFromImage(img)
	if l.cache != nil {
		l.cache.Add(framePath, buf)
	}
	return buf, len(data), nil
}
