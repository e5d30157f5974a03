// Shared helpers for keeper CLI commands.
package main

import (
	"fmt"

	"github.com/typekeep/typekeep/internal/sqlite"
	"github.com/typekeep/typekeep/pkg/types"
)

// attachBackend resolves the data directory, creates a SQLite backend, and
// attaches it. The caller must defer backend.Detach().
func attachBackend() (*sqlite.Backend, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: dataDir,
	}

	backend := sqlite.NewBackend()
	if err := backend.Attach(config); err != nil {
		return nil, fmt.Errorf("attach backend: %w", err)
	}

	return backend, nil
}
