package catalog

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const schemaVersion = 1

// SQLiteStore keeps the catalog in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the catalog database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open sqlite: %w", err)
	}
	if path == ":memory:" {
		// Every connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}
	s := &SQLiteStore{db: db}
	if err := s.EnsureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the catalog tables and records the schema version.
func (s *SQLiteStore) EnsureSchema() error {
	if s == nil || s.db == nil {
		return fmt.Errorf("catalog: missing database connection")
	}
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY
		);
		CREATE TABLE IF NOT EXISTS products (
			id          TEXT PRIMARY KEY,
			position    INTEGER NOT NULL,
			name        TEXT NOT NULL,
			theme_color TEXT NOT NULL DEFAULT '',
			folder_path TEXT NOT NULL,
			ext         TEXT NOT NULL DEFAULT 'jpg',
			frame_count INTEGER NOT NULL,
			start_frame INTEGER NOT NULL DEFAULT 1
		);
	`)
	if err != nil {
		return fmt.Errorf("catalog: create schema: %w", err)
	}
	if _, err := s.db.Exec(`INSERT OR IGNORE INTO schema_migrations (version) VALUES (?)`, schemaVersion); err != nil {
		return fmt.Errorf("catalog: record schema version: %w", err)
	}
	return nil
}

// Import upserts products, keeping their order as display position.
func (s *SQLiteStore) Import(products []Product) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(`
		INSERT INTO products (id, position, name, theme_color, folder_path, ext, frame_count, start_frame)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			position=excluded.position,
			name=excluded.name,
			theme_color=excluded.theme_color,
			folder_path=excluded.folder_path,
			ext=excluded.ext,
			frame_count=excluded.frame_count,
			start_frame=excluded.start_frame
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range products {
		if err := p.Descriptor().Validate(); err != nil {
			return fmt.Errorf("catalog: product %q: %w", p.ID, err)
		}
		_, err = stmt.Exec(p.ID, i, p.Name, p.ThemeColor, p.FolderPath, p.Descriptor().Ext, p.FrameCount, p.StartFrame)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) List() ([]Product, error) {
	rows, err := s.db.Query(`
		SELECT id, name, theme_color, folder_path, ext, frame_count, start_frame
		FROM products
		ORDER BY position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.ThemeColor, &p.FolderPath, &p.Ext, &p.FrameCount, &p.StartFrame); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *SQLiteStore) Get(id string) (Product, error) {
	var p Product
	err := s.db.QueryRow(`
		SELECT id, name, theme_color, folder_path, ext, frame_count, start_frame
		FROM products
		WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.ThemeColor, &p.FolderPath, &p.Ext, &p.FrameCount, &p.StartFrame)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("catalog: get %q: %w", id, err)
	}
	return p, nil
}
