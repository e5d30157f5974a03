// This file implements the type registry operations: schema registration,
// listing, lookup, and deletion against the type_metadata table.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/typekeep/typekeep/internal/schema"
	"github.com/typekeep/typekeep/pkg/types"
)

// typeRow is one raw type_metadata row.
type typeRow struct {
	typeID     string
	schemaText string
	tableName  string
}

// RegisterType augments and validates doc, materializes the type's storage
// table, and persists the descriptor. The document is augmented in place.
// Registration is serialized behind the write lock so fallback ids and
// duplicate checks cannot race.
func (b *Backend) RegisterType(doc map[string]any) (*types.TypeDescriptor, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	return b.registerTypeLocked(doc)
}

func (b *Backend) registerTypeLocked(doc map[string]any) (*types.TypeDescriptor, error) {
	if err := schema.Augment(doc); err != nil {
		return nil, err
	}
	compiled, err := schema.Compile(doc)
	if err != nil {
		return nil, err
	}

	typeID, ok := schema.TitleOf(doc)
	if !ok {
		size, err := b.registrySizeLocked()
		if err != nil {
			return nil, err
		}
		typeID = fmt.Sprintf("type_%d", size+1)
	}

	if b.cacheGet(typeID) != nil {
		return nil, types.NewConflictError(typeID)
	}
	if _, found, err := b.typeRowLocked(typeID); err != nil {
		return nil, err
	} else if found {
		return nil, types.NewConflictError(typeID)
	}

	tableName, createStmt, err := buildCreateTable(typeID, doc)
	if err != nil {
		return nil, err
	}

	schemaJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, types.NewSchemaError("serializing schema", err)
	}

	// Table creation and metadata insert commit together; a failure leaves
	// no observable partial registration.
	tx, err := b.db.Begin()
	if err != nil {
		return nil, types.NewStorageError("beginning registration", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(createStmt); err != nil {
		return nil, types.NewStorageError("creating type table", err)
	}
	if _, err := tx.Exec(
		"INSERT INTO type_metadata (type_id, type_schema, table_name) VALUES (?, ?, ?)",
		typeID, string(schemaJSON), tableName,
	); err != nil {
		return nil, types.NewStorageError("persisting type metadata", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, types.NewStorageError("committing registration", err)
	}

	b.cacheSet(typeID, &cachedType{doc: doc, compiled: compiled})

	slog.Debug("registered type", "type_id", typeID, "table", tableName)
	return &types.TypeDescriptor{TypeID: typeID, Schema: doc, TableName: tableName}, nil
}

// ListTypes returns every registered type from the metadata table, never the
// cache. A single undecodable stored schema aborts the whole listing.
func (b *Backend) ListTypes() ([]types.TypeDescriptor, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	return b.listTypesLocked()
}

func (b *Backend) listTypesLocked() ([]types.TypeDescriptor, error) {
	rows, err := b.db.Query("SELECT type_id, type_schema, table_name FROM type_metadata")
	if err != nil {
		return nil, types.NewStorageError("listing types", err)
	}
	defer rows.Close()

	descriptors := []types.TypeDescriptor{}
	for rows.Next() {
		var row typeRow
		if err := rows.Scan(&row.typeID, &row.schemaText, &row.tableName); err != nil {
			return nil, types.NewStorageError("scanning type row", err)
		}
		desc, err := row.descriptor()
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, *desc)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewStorageError("iterating type rows", err)
	}
	return descriptors, nil
}

// GetType returns the descriptor for typeID from the metadata table.
// Returns NotFoundError if the type is not registered.
func (b *Backend) GetType(typeID string) (*types.TypeDescriptor, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	row, found, err := b.typeRowLocked(typeID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, types.NewTypeNotFoundError(typeID)
	}
	return row.descriptor()
}

// DeleteType drops the type's storage table, deletes its metadata row, and
// purges its cache entry. Returns NotFoundError if the type is not
// registered.
func (b *Backend) DeleteType(typeID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	row, found, err := b.typeRowLocked(typeID)
	if err != nil {
		return err
	}
	if !found {
		return types.NewTypeNotFoundError(typeID)
	}

	tx, err := b.db.Begin()
	if err != nil {
		return types.NewStorageError("beginning type deletion", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DROP TABLE IF EXISTS " + row.tableName); err != nil {
		return types.NewStorageError("dropping type table", err)
	}
	if _, err := tx.Exec("DELETE FROM type_metadata WHERE type_id = ?", typeID); err != nil {
		return types.NewStorageError("deleting type metadata", err)
	}
	if err := tx.Commit(); err != nil {
		return types.NewStorageError("committing type deletion", err)
	}

	b.cachePurge(typeID)

	slog.Debug("deleted type", "type_id", typeID, "table", row.tableName)
	return nil
}

// typeRowLocked reads one metadata row. The second return reports presence.
func (b *Backend) typeRowLocked(typeID string) (typeRow, bool, error) {
	var row typeRow
	err := b.db.QueryRow(
		"SELECT type_id, type_schema, table_name FROM type_metadata WHERE type_id = ?",
		typeID,
	).Scan(&row.typeID, &row.schemaText, &row.tableName)
	if err == sql.ErrNoRows {
		return typeRow{}, false, nil
	}
	if err != nil {
		return typeRow{}, false, types.NewStorageError("reading type metadata", err)
	}
	return row, true, nil
}

// registrySizeLocked counts registered types for fallback id synthesis.
func (b *Backend) registrySizeLocked() (int, error) {
	var n int
	if err := b.db.QueryRow("SELECT COUNT(*) FROM type_metadata").Scan(&n); err != nil {
		return 0, types.NewStorageError("counting types", err)
	}
	return n, nil
}

// descriptor deserializes the row's stored schema into a TypeDescriptor.
// An undecodable schema is a DataCorruptionError.
func (r typeRow) descriptor() (*types.TypeDescriptor, error) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(r.schemaText), &doc); err != nil {
		return nil, types.NewDataCorruptionError(r.typeID, err)
	}
	return &types.TypeDescriptor{TypeID: r.typeID, Schema: doc, TableName: r.tableName}, nil
}
