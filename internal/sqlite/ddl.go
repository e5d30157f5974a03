// This file maps registered schemas to storage DDL: table naming, property
// type mapping, and CREATE TABLE statement construction.
package sqlite

import (
	"fmt"
	"sort"
	"strings"

	"github.com/typekeep/typekeep/internal/schema"
	"github.com/typekeep/typekeep/pkg/types"
)

// tableNamePrefix prefixes every per-type object table.
const tableNamePrefix = "objects_"

// metadataDDL creates the durable type registry. Executed at Attach.
const metadataDDL = `CREATE TABLE IF NOT EXISTS type_metadata (
    type_id TEXT PRIMARY KEY,
    type_schema TEXT,
    table_name TEXT
);`

// reservedColumns are emitted by buildCreateTable itself and may not be
// declared as schema properties.
var reservedColumns = map[string]bool{
	"id":                  true,
	types.ExtraProperties: true,
}

// TableName derives the storage table for a type id: every character outside
// [A-Za-z0-9_] is replaced by an underscore and the result is prefixed. The
// derivation is pure and total; distinct type ids may map to the same table
// name, which duplicate registration checks surface as a conflict.
func TableName(typeID string) string {
	var b strings.Builder
	b.WriteString(tableNamePrefix)
	for _, r := range typeID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// columnType maps a JSON Schema property type to its storage column type.
// Unrecognized types, including union lists, fall back to TEXT.
func columnType(jsonType any) string {
	t, ok := jsonType.(string)
	if !ok {
		return "TEXT"
	}
	switch t {
	case "string":
		return "TEXT"
	case "integer":
		return "INTEGER"
	case "number":
		return "REAL"
	case "boolean":
		return "INTEGER"
	case "null":
		return "TEXT"
	default:
		return "TEXT"
	}
}

// buildCreateTable emits the idempotent CREATE TABLE statement for a type:
// an auto-incrementing id, one column per declared property in sorted name
// order, and a trailing extra_properties overflow column. Returns SchemaError
// when the schema declares no properties, a property name is unsafe as a
// column identifier, or a property collides with a reserved column.
func buildCreateTable(typeID string, doc map[string]any) (string, string, error) {
	props, ok := doc["properties"].(map[string]any)
	if !ok || len(props) == 0 {
		return "", "", types.NewSchemaError("schema declares no properties", nil)
	}

	names := make([]string, 0, len(props))
	for name := range props {
		if !schema.SafeName(name) {
			return "", "", types.NewSchemaError(
				fmt.Sprintf("property name %q is not usable as a column identifier", name), nil)
		}
		if reservedColumns[name] {
			return "", "", types.NewSchemaError(
				fmt.Sprintf("property name %q collides with a reserved column", name), nil)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	cols := make([]string, 0, len(names)+2)
	cols = append(cols, "id INTEGER PRIMARY KEY AUTOINCREMENT")
	for _, name := range names {
		var jsonType any
		if shape, ok := props[name].(map[string]any); ok {
			jsonType = shape["type"]
		}
		cols = append(cols, fmt.Sprintf("%s %s", name, columnType(jsonType)))
	}
	cols = append(cols, types.ExtraProperties+" TEXT")

	tableName := TableName(typeID)
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n    %s\n);", tableName, strings.Join(cols, ",\n    "))
	return tableName, stmt, nil
}

// declaredColumns returns a type's property names in the sorted order
// buildCreateTable emitted them.
func declaredColumns(doc map[string]any) []string {
	props, _ := doc["properties"].(map[string]any)
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
