// Package catalog supplies the products whose frame sequences the player
// shows. Products come from the YAML configuration or a SQLite database.
package catalog

import (
	"errors"

	"github.com/melody-ding/go-framescroll/internal/config"
	"github.com/melody-ding/go-framescroll/internal/types"
)

// ErrNotFound is returned by Get for unknown product ids.
var ErrNotFound = errors.New("catalog: product not found")

// Product is one catalog entry.
type Product struct {
	ID         string
	Name       string
	ThemeColor string
	FolderPath string
	Ext        string
	FrameCount int
	StartFrame int
}

// Descriptor returns the sequence descriptor the player consumes.
func (p Product) Descriptor() types.SequenceDescriptor {
	return types.NewSequenceDescriptor(p.Name, p.ThemeColor, p.FolderPath, p.Ext, p.FrameCount, p.StartFrame)
}

// Store lists products in display order.
type Store interface {
	List() ([]Product, error)
	Get(id string) (Product, error)
}

// FromConfig converts configured products.
func FromConfig(entries []config.ProductConfig) []Product {
	products := make([]Product, 0, len(entries))
	for _, e := range entries {
		products = append(products, Product{
			ID:         e.ID,
			Name:       e.Name,
			ThemeColor: e.ThemeColor,
			FolderPath: e.FolderPath,
			Ext:        e.Ext,
			FrameCount: e.FrameCount,
			StartFrame: e.StartFrame,
		})
	}
	return products
}

// MemoryStore serves a fixed product list, typically from the config file.
type MemoryStore struct {
	products []Product
}

// NewMemoryStore copies products into a store.
func NewMemoryStore(products []Product) *MemoryStore {
	return &MemoryStore{products: append([]Product(nil), products...)}
}

func (s *MemoryStore) List() ([]Product, error) {
	return append([]Product(nil), s.products...), nil
}

func (s *MemoryStore) Get(id string) (Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

// Next returns the product after id, wrapping around; Prev the one before.
// They mirror the product selector arrows.
func Next(products []Product, id string) (Product, bool) {
	return step(products, id, 1)
}

func Prev(products []Product, id string) (Product, bool) {
	return step(products, id, -1)
}

func step(products []Product, id string, delta int) (Product, bool) {
	n := len(products)
	for i, p := range products {
		if p.ID == id {
			return products[((i+delta)%n+n)%n], true
		}
	}
	return Product{}, false
}
