// This file implements the object store operations: validated insertion,
// paginated listing, lookup, and deletion against per-type tables.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/typekeep/typekeep/internal/schema"
	"github.com/typekeep/typekeep/pkg/types"
)

// CreateObject validates payload against the type's schema and inserts it,
// declared properties as columns and the remainder JSON-encoded into the
// overflow column. Returns the generated object id.
func (b *Backend) CreateObject(typeID string, payload map[string]any) (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return 0, types.ErrStoreDetached
	}

	row, ct, err := b.resolveTypeLocked(typeID)
	if err != nil {
		return 0, err
	}

	if err := schema.ValidatePayload(ct.compiled, payload); err != nil {
		return 0, err
	}

	declared := declaredColumns(ct.doc)
	declaredSet := make(map[string]bool, len(declared))
	args := make([]any, 0, len(declared)+1)
	for _, name := range declared {
		declaredSet[name] = true
		value, ok := payload[name]
		if !ok {
			args = append(args, nil)
			continue
		}
		bound, err := bindValue(value)
		if err != nil {
			return 0, types.NewStorageError("binding "+name, err)
		}
		args = append(args, bound)
	}

	extras := make(map[string]any)
	for key, value := range payload {
		if !declaredSet[key] {
			extras[key] = value
		}
	}
	if len(extras) == 0 {
		args = append(args, nil)
	} else {
		encoded, err := json.Marshal(extras)
		if err != nil {
			return 0, types.NewStorageError("encoding extra properties", err)
		}
		args = append(args, string(encoded))
	}

	columns := append(append([]string{}, declared...), types.ExtraProperties)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		row.tableName, strings.Join(columns, ", "), placeholders)

	result, err := b.db.Exec(stmt, args...)
	if err != nil {
		return 0, types.NewStorageError("inserting object", err)
	}
	objectID, err := result.LastInsertId()
	if err != nil {
		return 0, types.NewStorageError("reading inserted id", err)
	}

	slog.Debug("created object", "type_id", typeID, "object_id", objectID)
	return objectID, nil
}

// ListObjects returns a page of the type's objects in storage order.
func (b *Backend) ListObjects(typeID string, page types.Page) ([]types.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	return b.listObjectsLocked(typeID, page)
}

func (b *Backend) listObjectsLocked(typeID string, page types.Page) ([]types.Record, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}

	row, found, err := b.typeRowLocked(typeID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, types.NewTypeNotFoundError(typeID)
	}

	rows, err := b.db.Query(
		fmt.Sprintf("SELECT * FROM %s LIMIT ? OFFSET ?", row.tableName),
		page.Limit, page.Offset,
	)
	if err != nil {
		return nil, types.NewStorageError("listing objects", err)
	}
	defer rows.Close()

	return scanRecords(typeID, rows)
}

// GetObject returns the object with the given id.
// Returns NotFoundError naming both type and object when absent.
func (b *Backend) GetObject(typeID string, objectID int64) (types.Record, error) {
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

	rows, err := b.db.Query(
		fmt.Sprintf("SELECT * FROM %s WHERE id = ?", row.tableName), objectID,
	)
	if err != nil {
		return nil, types.NewStorageError("reading object", err)
	}
	defer rows.Close()

	records, err := scanRecords(typeID, rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, types.NewObjectNotFoundError(typeID, objectID)
	}
	return records[0], nil
}

// DeleteObject removes the object with the given id.
// Returns NotFoundError naming both type and object when absent.
func (b *Backend) DeleteObject(typeID string, objectID int64) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

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

	var exists int
	err = b.db.QueryRow(
		fmt.Sprintf("SELECT 1 FROM %s WHERE id = ?", row.tableName), objectID,
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return types.NewObjectNotFoundError(typeID, objectID)
	}
	if err != nil {
		return types.NewStorageError("checking object existence", err)
	}

	if _, err := b.db.Exec(
		fmt.Sprintf("DELETE FROM %s WHERE id = ?", row.tableName), objectID,
	); err != nil {
		return types.NewStorageError("deleting object", err)
	}

	slog.Debug("deleted object", "type_id", typeID, "object_id", objectID)
	return nil
}

// resolveTypeLocked resolves a type's metadata row and schema for object
// insertion: the schema comes from the cache when present, otherwise from
// the stored document, filling the cache. The table name always comes from
// the metadata row.
func (b *Backend) resolveTypeLocked(typeID string) (typeRow, *cachedType, error) {
	row, found, err := b.typeRowLocked(typeID)
	if err != nil {
		return typeRow{}, nil, err
	}
	if !found {
		return typeRow{}, nil, types.NewTypeNotFoundError(typeID)
	}

	if ct := b.cacheGet(typeID); ct != nil {
		return row, ct, nil
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(row.schemaText), &doc); err != nil {
		return typeRow{}, nil, types.NewDataCorruptionError(typeID, err)
	}
	compiled, err := schema.CompileRaw([]byte(row.schemaText))
	if err != nil {
		return typeRow{}, nil, types.NewDataCorruptionError(typeID, err)
	}

	ct := &cachedType{doc: doc, compiled: compiled}
	b.cacheSet(typeID, ct)
	return row, ct, nil
}

// bindValue converts a decoded JSON value into a driver-bindable one.
// Numbers decoded with UseNumber become int64 when integral, float64
// otherwise; non-scalar values are stored as JSON text.
func bindValue(v any) (any, error) {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("parsing number %q: %w", val.String(), err)
		}
		return f, nil
	case map[string]any, []any:
		encoded, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("encoding non-scalar value: %w", err)
		}
		return string(encoded), nil
	default:
		return val, nil
	}
}

// scanRecords reads every row into a Record, decoding the overflow column
// back into a mapping (empty when stored NULL).
func scanRecords(typeID string, rows *sql.Rows) ([]types.Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, types.NewStorageError("reading columns", err)
	}

	records := []types.Record{}
	for rows.Next() {
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, types.NewStorageError("scanning object row", err)
		}

		record := make(types.Record, len(cols))
		for i, col := range cols {
			record[col] = normalizeColumnValue(values[i])
		}
		if err := decodeExtraProperties(typeID, record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewStorageError("iterating object rows", err)
	}
	return records, nil
}

// normalizeColumnValue maps driver values to record values.
func normalizeColumnValue(v any) any {
	if raw, ok := v.([]byte); ok {
		return string(raw)
	}
	return v
}

// decodeExtraProperties replaces the record's raw overflow text with the
// decoded mapping.
func decodeExtraProperties(typeID string, record types.Record) error {
	raw, ok := record[types.ExtraProperties]
	if !ok || raw == nil {
		record[types.ExtraProperties] = map[string]any{}
		return nil
	}
	text, ok := raw.(string)
	if !ok {
		return types.NewDataCorruptionError(typeID,
			fmt.Errorf("extra properties column holds %T, not text", raw))
	}
	extras := map[string]any{}
	if err := json.Unmarshal([]byte(text), &extras); err != nil {
		return types.NewDataCorruptionError(typeID,
			fmt.Errorf("decoding extra properties: %w", err))
	}
	record[types.ExtraProperties] = extras
	return nil
}
