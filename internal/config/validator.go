package config

import (
	"fmt"
)

// Validate checks a configuration after defaults have been applied.
func Validate(cfg *Config) error {
	if cfg.Player.RefreshHz > 1000 {
		return fmt.Errorf("player.refresh_hz %d is above 1000", cfg.Player.RefreshHz)
	}
	if cfg.Player.CacheFrames < 0 {
		return fmt.Errorf("player.cache_frames must not be negative")
	}

	seen := make(map[string]bool, len(cfg.Products))
	for i, p := range cfg.Products {
		if p.ID == "" {
			return fmt.Errorf("products[%d]: id is required", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("products[%d]: duplicate id %q", i, p.ID)
		}
		seen[p.ID] = true

		if err := p.Descriptor().Validate(); err != nil {
			return fmt.Errorf("product %q: %w", p.ID, err)
		}
	}

	if cfg.Catalog.SQLitePath == "" && len(cfg.Products) == 0 {
		return fmt.Errorf("no products configured and no catalog.sqlite_path set")
	}

	return nil
}
