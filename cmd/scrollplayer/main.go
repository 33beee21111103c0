package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/melody-ding/go-framescroll/internal/catalog"
	"github.com/melody-ding/go-framescroll/internal/config"
	"github.com/melody-ding/go-framescroll/internal/frameindex"
	"github.com/melody-ding/go-framescroll/internal/host"
	"github.com/melody-ding/go-framescroll/internal/loader"
	"github.com/melody-ding/go-framescroll/internal/logging"
	"github.com/melody-ding/go-framescroll/internal/player"
	"github.com/melody-ding/go-framescroll/internal/source"
	"github.com/melody-ding/go-framescroll/internal/surface"
	"github.com/melody-ding/go-framescroll/internal/types"
)

type options struct {
	configPath string
	productID  string
	outputDir  string
	steps      int
	width      float64
	height     float64
	switchNext bool
	importDB   bool
	timeout    time.Duration
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "framescroll.yaml", "Path to YAML configuration")
	flag.StringVar(&o.productID, "product", "", "Product id to play (default: first in catalog)")
	flag.StringVar(&o.outputDir, "out", "snapshots", "Directory for PNG snapshots")
	flag.IntVar(&o.steps, "steps", 5, "Scroll positions to snapshot, evenly spaced from top to bottom")
	flag.Float64Var(&o.width, "width", 1280, "Viewport width in CSS pixels")
	flag.Float64Var(&o.height, "height", 800, "Viewport height in CSS pixels")
	flag.BoolVar(&o.switchNext, "switch", false, "After the sweep, switch to the next product and sweep again")
	flag.BoolVar(&o.importDB, "import", false, "Import the config's products into the SQLite catalog first")
	flag.DurationVar(&o.timeout, "timeout", 2*time.Minute, "Maximum time to wait for a sequence to load")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	logging.SetLogger(logging.NewText(os.Stderr, *verbose))

	if err := run(o); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(o options) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	store, closeStore, err := openCatalog(cfg, o.importDB)
	if err != nil {
		return err
	}
	defer closeStore()

	products, err := store.List()
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return fmt.Errorf("catalog is empty")
	}
	current := products[0]
	if o.productID != "" {
		if current, err = store.Get(o.productID); err != nil {
			return fmt.Errorf("product %q: %w", o.productID, err)
		}
	}

	src, err := source.New(cfg.Source)
	if err != nil {
		return err
	}
	ld, err := loader.New(src, loader.Options{
		Concurrency: cfg.Player.LoadConcurrency,
		CacheFrames: cfg.Player.CacheFrames,
	})
	if err != nil {
		return err
	}

	page := host.NewPage(host.Options{
		ViewportWidth:    o.width,
		ViewportHeight:   o.height,
		DevicePixelRatio: cfg.Player.DevicePixelRatio,
		RegionTop:        cfg.Player.StartOffsetPx,
		RegionScreens:    5,
	})

	var canvas *surface.GGCanvas
	p := player.New(page, player.Options{
		Loader:          ld,
		RefreshInterval: cfg.Player.RefreshInterval(),
		StartOffset:     cfg.Player.StartOffsetPx,
		NewCanvas: func(w, h int) (surface.Canvas, error) {
			c, err := surface.NewGGCanvas(w, h)
			if err != nil {
				return nil, err
			}
			canvas = c
			return c, nil
		},
	})
	if canvas == nil {
		p.Dispose()
		return fmt.Errorf("drawing surface unavailable for %gx%g", o.width, o.height)
	}
	// The draw loop must stop before the canvas is released.
	defer func() {
		p.Dispose()
		canvas.Close()
	}()

	p.OnStateChange(func(s player.State, desc types.SequenceDescriptor) {
		logging.Logger().Info("player state", "state", s.String(), "sequence", desc.Name)
	})

	if err := os.MkdirAll(o.outputDir, 0755); err != nil {
		return err
	}

	sw := sweeper{opts: o, page: page, player: p, canvas: canvas, offset: cfg.Player.StartOffsetPx, interval: cfg.Player.RefreshInterval()}
	if err := sw.play(current); err != nil {
		return err
	}
	if o.switchNext {
		next, _ := catalog.Next(products, current.ID)
		if err := sw.play(next); err != nil {
			return err
		}
	}
	return nil
}

// openCatalog returns the SQLite catalog when one is configured, otherwise
// the products listed in the config file.
func openCatalog(cfg *config.Config, importProducts bool) (catalog.Store, func(), error) {
	fromConfig := catalog.FromConfig(cfg.Products)
	if cfg.Catalog.SQLitePath == "" {
		return catalog.NewMemoryStore(fromConfig), func() {}, nil
	}

	db, err := catalog.OpenSQLite(cfg.Catalog.SQLitePath)
	if err != nil {
		return nil, nil, err
	}
	if err := db.EnsureSchema(); err != nil {
		db.Close()
		return nil, nil, err
	}
	if importProducts {
		if err := db.Import(fromConfig); err != nil {
			db.Close()
			return nil, nil, err
		}
		fmt.Printf("Imported %d products into %s\n", len(fromConfig), cfg.Catalog.SQLitePath)
	}
	return db, func() { db.Close() }, nil
}

type sweeper struct {
	opts     options
	page     *host.Page
	player   *player.Player
	canvas   *surface.GGCanvas
	offset   float64
	interval time.Duration
}

// play loads product, scrolls through its region and writes one snapshot
// per step.
func (s sweeper) play(product catalog.Product) error {
	desc := product.Descriptor()
	s.page.ScrollTo(0)
	s.player.SetSequence(desc)

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.timeout)
	defer cancel()
	if err := s.player.WaitReady(ctx); err != nil {
		return fmt.Errorf("loading %s: %w", product.ID, err)
	}

	frames := s.player.Frames()
	fmt.Printf("%s: %d of %d frames loaded\n", product.ID, frames.Loaded(), frames.Len())

	steps := max(s.opts.steps, 1)
	for i := 0; i < steps; i++ {
		q := 0.0
		if steps > 1 {
			q = float64(i) / float64(steps-1)
		}
		s.page.ScrollTo(s.page.ScrollForProgress(q, s.offset))
		idx := frameindex.Map(s.player.Progress(), desc)
		s.waitForFrame(ctx, idx)

		path := filepath.Join(s.opts.outputDir, fmt.Sprintf("%s_%02d.png", product.ID, i))
		var err error
		s.player.Surface().Paint(func(surface.Canvas, surface.Transform) {
			err = s.canvas.SavePNG(path)
		})
		if err != nil {
			return fmt.Errorf("snapshot %s: %w", path, err)
		}
		fmt.Printf("  progress %.2f frame %d -> %s\n", q, idx+1, path)
	}
	return nil
}

// waitForFrame waits until the draw loop has painted idx. A frame that
// failed to load is never painted; the surface keeps its previous pixels,
// so a few refresh intervals is enough.
func (s sweeper) waitForFrame(ctx context.Context, idx int) {
	deadline := time.Now().Add(5 * s.interval)
	for time.Now().Before(deadline) && ctx.Err() == nil {
		if s.player.RenderStats().LastIndex == idx {
			return
		}
		time.Sleep(s.interval / 4)
	}
}
