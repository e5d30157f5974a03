// Package sqlite implements the SQLite storage backend for Typekeep: the
// durable type registry, the per-type object tables, and the read-through
// schema cache.
package sqlite

import (
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	_ "modernc.org/sqlite"

	"github.com/typekeep/typekeep/pkg/types"
)

// DBFileName is the SQLite database file created inside the data directory.
const DBFileName = "typekeep.db"

// Compile-time interface check: Backend must implement Store.
var _ types.Store = (*Backend)(nil)

// Backend implements the Store interface on a single SQLite database. One
// connection serves all operations; registry mutations hold the write lock,
// every other operation holds the read lock.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB

	// cacheMu guards cache only, so object creation can fill the cache
	// while holding the backend read lock.
	cacheMu sync.RWMutex
	cache   map[string]*cachedType
}

// cachedType holds one type's in-memory schema: the decoded document and its
// compiled form. Table names are never cached; they are always read from the
// metadata row.
type cachedType struct {
	doc      map[string]any
	compiled *jsonschema.Schema
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{
		cache: make(map[string]*cachedType),
	}
}

// Attach opens the database under config.DataDir and ensures the type
// metadata table exists. Creates DataDir if needed.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(config.DataDir, 0755); err != nil {
		return types.NewStorageError("creating data dir", err)
	}

	dbPath := filepath.Join(config.DataDir, DBFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return types.NewStorageError("opening database", err)
	}

	// One shared connection: serializes statement execution and makes the
	// insert-then-read-identity sequence race-free.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(metadataDDL); err != nil {
		db.Close()
		return types.NewStorageError("creating metadata table", err)
	}

	b.db = db
	b.config = config
	b.attached = true

	slog.Debug("attached sqlite backend", "path", dbPath)
	return nil
}

// Detach closes the database. After Detach, all operations return
// ErrStoreDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil // idempotent
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return types.NewStorageError("closing database", err)
		}
		b.db = nil
	}

	b.attached = false
	b.cacheMu.Lock()
	b.cache = make(map[string]*cachedType)
	b.cacheMu.Unlock()

	slog.Debug("detached sqlite backend")
	return nil
}

// ResetCache drops every cached schema. Safe at any time: each read-through
// path re-derives from the durable metadata store on a miss.
func (b *Backend) ResetCache() {
	b.cacheMu.Lock()
	defer b.cacheMu.Unlock()
	b.cache = make(map[string]*cachedType)
}

// cacheGet returns the cached schema for a type id, or nil.
func (b *Backend) cacheGet(typeID string) *cachedType {
	b.cacheMu.RLock()
	defer b.cacheMu.RUnlock()
	return b.cache[typeID]
}

// cacheSet stores a type's schema in the cache.
func (b *Backend) cacheSet(typeID string, ct *cachedType) {
	b.cacheMu.Lock()
	defer b.cacheMu.Unlock()
	b.cache[typeID] = ct
}

// cachePurge removes a type from the cache, tolerant of absence.
func (b *Backend) cachePurge(typeID string) {
	b.cacheMu.Lock()
	defer b.cacheMu.Unlock()
	delete(b.cache, typeID)
}
