package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/melody-ding/go-framescroll/internal/types"
)

// Config is the complete player configuration.
type Config struct {
	Player   PlayerConfig    `yaml:"player"`
	Source   SourceConfig    `yaml:"source"`
	Catalog  CatalogConfig   `yaml:"catalog"`
	Products []ProductConfig `yaml:"products"`
}

// PlayerConfig controls rendering and loading.
type PlayerConfig struct {
	RefreshHz        int     `yaml:"refresh_hz"`         // draw loop cadence (default: 60)
	DevicePixelRatio float64 `yaml:"device_pixel_ratio"` // default: 1
	StartOffsetPx    float64 `yaml:"start_offset_px"`    // region start offset below viewport top (default: 80)
	LoadConcurrency  int     `yaml:"load_concurrency"`   // parallel frame fetches (default: 16)
	CacheFrames      int     `yaml:"cache_frames"`       // decoded frame LRU size, 0 disables
}

// SourceConfig selects where frames are fetched from.
type SourceConfig struct {
	HTTPTimeoutS int    `yaml:"http_timeout_s"` // default: 30
	S3Region     string `yaml:"s3_region"`
	TarBundle    string `yaml:"tar_bundle"` // optional packed frames, read instead of BasePath
}

// CatalogConfig points at the product catalog.
type CatalogConfig struct {
	SQLitePath string `yaml:"sqlite_path"` // empty means use Products from this file
}

// ProductConfig is one catalog entry.
type ProductConfig struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	ThemeColor string `yaml:"theme_color"`
	FolderPath string `yaml:"folder_path"`
	Ext        string `yaml:"ext"`
	FrameCount int    `yaml:"frame_count"`
	StartFrame int    `yaml:"start_frame"`
}

// Descriptor converts the entry into a sequence descriptor.
func (p ProductConfig) Descriptor() types.SequenceDescriptor {
	return types.NewSequenceDescriptor(p.Name, p.ThemeColor, p.FolderPath, p.Ext, p.FrameCount, p.StartFrame)
}

// RefreshInterval is the draw loop period.
func (p PlayerConfig) RefreshInterval() time.Duration {
	return time.Second / time.Duration(p.RefreshHz)
}

// HTTPTimeout is the per-frame HTTP timeout.
func (s SourceConfig) HTTPTimeout() time.Duration {
	return time.Duration(s.HTTPTimeoutS) * time.Second
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and parses a YAML configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, applies defaults and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Player.RefreshHz <= 0 {
		cfg.Player.RefreshHz = 60
	}
	if cfg.Player.DevicePixelRatio <= 0 {
		cfg.Player.DevicePixelRatio = 1
	}
	if cfg.Player.StartOffsetPx == 0 {
		cfg.Player.StartOffsetPx = 80
	}
	if cfg.Player.LoadConcurrency <= 0 {
		cfg.Player.LoadConcurrency = 16
	}
	if cfg.Source.HTTPTimeoutS <= 0 {
		cfg.Source.HTTPTimeoutS = 30
	}
	for i := range cfg.Products {
		if cfg.Products[i].StartFrame == 0 {
			cfg.Products[i].StartFrame = 1
		}
		if cfg.Products[i].Ext == "" {
			cfg.Products[i].Ext = types.DefaultExt
		}
	}
}
