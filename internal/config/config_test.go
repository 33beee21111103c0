package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleConfig = `
player:
  device_pixel_ratio: 2
  cache_frames: 200
source:
  s3_region: eu-west-1
products:
  - id: mint
    name: Mint Mukhwas
    theme_color: "#a3e635"
    folder_path: /frames/mint
    frame_count: 120
  - id: chandan
    name: Chandan Mukhwas
    folder_path: /frames/chandan
    ext: webp
    frame_count: 90
    start_frame: 5
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Player.RefreshHz != 60 {
		t.Errorf("RefreshHz = %d, want default 60", cfg.Player.RefreshHz)
	}
	if cfg.Player.RefreshInterval() != time.Second/60 {
		t.Errorf("RefreshInterval() = %v", cfg.Player.RefreshInterval())
	}
	if cfg.Player.StartOffsetPx != 80 {
		t.Errorf("StartOffsetPx = %v, want default 80", cfg.Player.StartOffsetPx)
	}
	if cfg.Player.DevicePixelRatio != 2 {
		t.Errorf("DevicePixelRatio = %v, want 2", cfg.Player.DevicePixelRatio)
	}
	if len(cfg.Products) != 2 {
		t.Fatalf("got %d products, want 2", len(cfg.Products))
	}

	mint := cfg.Products[0].Descriptor()
	if mint.StartFrame != 1 || mint.Ext != "jpg" {
		t.Errorf("mint defaults not applied: %+v", mint)
	}
	chandan := cfg.Products[1].Descriptor()
	if chandan.FramePath(1) != "/frames/chandan/1.webp" || chandan.StartFrameIndex() != 4 {
		t.Errorf("unexpected chandan descriptor: %+v", chandan)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantMsg string
	}{
		{
			name:    "malformed yaml",
			yaml:    "player: [",
			wantMsg: "failed to parse config",
		},
		{
			name:    "no products",
			yaml:    "player:\n  refresh_hz: 30\n",
			wantMsg: "no products configured",
		},
		{
			name:    "duplicate id",
			yaml:    "products:\n  - {id: a, folder_path: /a, frame_count: 2}\n  - {id: a, folder_path: /b, frame_count: 2}\n",
			wantMsg: "duplicate id",
		},
		{
			name:    "bad start frame",
			yaml:    "products:\n  - {id: a, folder_path: /a, frame_count: 2, start_frame: 3}\n",
			wantMsg: "start frame 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() error = nil")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Parse() error = %v, want message containing %q", err, tt.wantMsg)
			}
		})
	}
}

func TestSQLiteCatalogNeedsNoProducts(t *testing.T) {
	cfg, err := Parse([]byte("catalog:\n  sqlite_path: catalog.db\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Catalog.SQLitePath != "catalog.db" {
		t.Errorf("SQLitePath = %q", cfg.Catalog.SQLitePath)
	}
}
