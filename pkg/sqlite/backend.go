// Package sqlite provides the public API for the SQLite store backend.
// It exposes the factory function for creating backends while keeping
// implementation details internal.
package sqlite

import (
	"github.com/typekeep/typekeep/internal/sqlite"
	"github.com/typekeep/typekeep/pkg/types"
)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend := sqlite.NewBackend()
//	err := backend.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".typekeep-db",
//	})
//	defer backend.Detach()
func NewBackend() types.Store {
	return sqlite.NewBackend()
}
