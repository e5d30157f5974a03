// Tests for the SQLite backend lifecycle.
package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/typekeep/typekeep/pkg/types"
)

// newAttachedBackend returns a backend attached to a fresh temp data dir.
func newAttachedBackend(t *testing.T) *Backend {
	t.Helper()

	b := NewBackend()
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}
	if err := b.Attach(config); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	t.Cleanup(func() { b.Detach() })
	return b
}

func TestBackend_Attach(t *testing.T) {
	tmpDir := t.TempDir()

	b := NewBackend()
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: tmpDir,
	}

	err := b.Attach(config)
	if err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	// Verify database file created
	dbPath := filepath.Join(tmpDir, DBFileName)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("%s not created", DBFileName)
	}

	// Verify double attach fails
	err = b.Attach(config)
	if err != types.ErrAlreadyAttached {
		t.Errorf("expected ErrAlreadyAttached, got %v", err)
	}

	b.Detach()
}

func TestBackend_AttachCreatesDataDir(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "nested", "store")

	b := NewBackend()
	err := b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dataDir})
	if err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	defer b.Detach()

	if _, err := os.Stat(dataDir); err != nil {
		t.Errorf("data dir not created: %v", err)
	}
}

func TestBackend_AttachRejectsBadConfig(t *testing.T) {
	b := NewBackend()

	err := b.Attach(types.Config{Backend: "postgres", DataDir: t.TempDir()})
	if err != types.ErrBackendUnknown {
		t.Errorf("expected ErrBackendUnknown, got %v", err)
	}

	err = b.Attach(types.Config{Backend: types.BackendSQLite})
	if err != types.ErrDataDirEmpty {
		t.Errorf("expected ErrDataDirEmpty, got %v", err)
	}
}

func TestBackend_Detach(t *testing.T) {
	tmpDir := t.TempDir()

	b := NewBackend()
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: tmpDir,
	}

	if err := b.Attach(config); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	err := b.Detach()
	if err != nil {
		t.Fatalf("Detach failed: %v", err)
	}

	// Verify idempotent
	err = b.Detach()
	if err != nil {
		t.Errorf("second Detach should not error, got %v", err)
	}
}

func TestBackend_OperationsAfterDetach(t *testing.T) {
	b := NewBackend()
	if err := b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	b.Detach()

	if _, err := b.ListTypes(); err != types.ErrStoreDetached {
		t.Errorf("ListTypes: expected ErrStoreDetached, got %v", err)
	}
	if _, err := b.GetType("book"); err != types.ErrStoreDetached {
		t.Errorf("GetType: expected ErrStoreDetached, got %v", err)
	}
	if err := b.DeleteType("book"); err != types.ErrStoreDetached {
		t.Errorf("DeleteType: expected ErrStoreDetached, got %v", err)
	}
	if _, err := b.RegisterType(map[string]any{}); err != types.ErrStoreDetached {
		t.Errorf("RegisterType: expected ErrStoreDetached, got %v", err)
	}
	if _, err := b.CreateObject("book", nil); err != types.ErrStoreDetached {
		t.Errorf("CreateObject: expected ErrStoreDetached, got %v", err)
	}
	if _, err := b.ListObjects("book", types.DefaultPage()); err != types.ErrStoreDetached {
		t.Errorf("ListObjects: expected ErrStoreDetached, got %v", err)
	}
	if _, err := b.GetObject("book", 1); err != types.ErrStoreDetached {
		t.Errorf("GetObject: expected ErrStoreDetached, got %v", err)
	}
	if err := b.DeleteObject("book", 1); err != types.ErrStoreDetached {
		t.Errorf("DeleteObject: expected ErrStoreDetached, got %v", err)
	}
	if _, err := b.Export(t.TempDir()); err != types.ErrStoreDetached {
		t.Errorf("Export: expected ErrStoreDetached, got %v", err)
	}
}

func TestBackend_ReattachKeepsData(t *testing.T) {
	tmpDir := t.TempDir()
	config := types.Config{Backend: types.BackendSQLite, DataDir: tmpDir}

	b := NewBackend()
	if err := b.Attach(config); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if _, err := b.RegisterType(taskSchema("book")); err != nil {
		t.Fatalf("RegisterType failed: %v", err)
	}
	b.Detach()

	b2 := NewBackend()
	if err := b2.Attach(config); err != nil {
		t.Fatalf("second Attach failed: %v", err)
	}
	defer b2.Detach()

	desc, err := b2.GetType("book")
	if err != nil {
		t.Fatalf("GetType after reattach failed: %v", err)
	}
	if desc.TableName != "objects_book" {
		t.Errorf("expected table objects_book, got %q", desc.TableName)
	}
}
