package dfs

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration
)

// Catalog stores per-path attributes that a local directory cannot hold
// natively, such as the replication factor.
type Catalog struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenCatalog opens or creates the attribute catalog at path. An empty path
// keeps the catalog in memory.
func OpenCatalog(path string) (*Catalog, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	// A single connection keeps :memory: catalogs coherent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS attributes (
			path        TEXT PRIMARY KEY,
			replication INTEGER NOT NULL,
			updated_at  TEXT NOT NULL
		);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating catalog tables: %w", err)
	}
	return &Catalog{db: db}, nil
}

// SetReplication records the replication factor of path.
func (c *Catalog) SetReplication(path string, replication int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.db.Exec(`
		INSERT INTO attributes (path, replication, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET replication = excluded.replication, updated_at = excluded.updated_at
	`, path, replication, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("recording replication for %s: %w", path, err)
	}
	return nil
}

// Replication returns the recorded replication factor of path.
func (c *Catalog) Replication(path string) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int
	err := c.db.QueryRow(`SELECT replication FROM attributes WHERE path = ?`, path).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("reading replication for %s: %w", path, err)
	}
	return n, true, nil
}

// Forget drops the attributes of path and everything below it.
func (c *Catalog) Forget(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if path == "/" {
		if _, err := c.db.Exec(`DELETE FROM attributes`); err != nil {
			return fmt.Errorf("forgetting %s: %w", path, err)
		}
		return nil
	}
	// '0' sorts directly after '/', bounding the subtree range.
	_, err := c.db.Exec(`
		DELETE FROM attributes WHERE path = ? OR (path >= ? AND path < ?)
	`, path, path+"/", path+"0")
	if err != nil {
		return fmt.Errorf("forgetting %s: %w", path, err)
	}
	return nil
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}
