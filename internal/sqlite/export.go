// This file implements the JSONL export: one file for the registered types,
// one file per type for its objects.
package sqlite

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/typekeep/typekeep/pkg/types"
)

// TypesFileName is the export file listing every registered type.
const TypesFileName = "types.jsonl"

// exportPageSize bounds each object read while exporting.
const exportPageSize = 500

// ExportSummary reports what an export wrote.
type ExportSummary struct {
	Dir     string `json:"dir"`
	Types   int    `json:"types"`
	Objects int    `json:"objects"`
}

// Export dumps every registered type and all of its objects into dir as
// JSONL: descriptors into TypesFileName, objects into <table_name>.jsonl.
// Each file is written atomically; on failure the files already written are
// best-effort removed.
func (b *Backend) Export(dir string) (ExportSummary, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return ExportSummary{}, types.ErrStoreDetached
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return ExportSummary{}, types.NewStorageError("creating export dir", err)
	}

	summary := ExportSummary{Dir: dir}
	var written []string
	cleanup := func() {
		for _, path := range written {
			os.Remove(path)
		}
	}

	descriptors, err := b.listTypesLocked()
	if err != nil {
		return ExportSummary{}, err
	}

	typeLines := make([]json.RawMessage, 0, len(descriptors))
	for _, desc := range descriptors {
		line, err := json.Marshal(desc)
		if err != nil {
			return ExportSummary{}, types.NewStorageError("encoding type descriptor", err)
		}
		typeLines = append(typeLines, line)
	}

	typesPath := filepath.Join(dir, TypesFileName)
	if err := writeJSONL(typesPath, typeLines); err != nil {
		return ExportSummary{}, types.NewStorageError("writing types export", err)
	}
	written = append(written, typesPath)
	summary.Types = len(descriptors)

	for _, desc := range descriptors {
		var lines []json.RawMessage
		page := types.Page{Limit: exportPageSize, Offset: 0}
		for {
			records, err := b.listObjectsLocked(desc.TypeID, page)
			if err != nil {
				cleanup()
				return ExportSummary{}, err
			}
			for _, record := range records {
				line, err := json.Marshal(record)
				if err != nil {
					cleanup()
					return ExportSummary{}, types.NewStorageError("encoding object record", err)
				}
				lines = append(lines, line)
			}
			if len(records) < page.Limit {
				break
			}
			page.Offset += page.Limit
		}

		objectsPath := filepath.Join(dir, desc.TableName+".jsonl")
		if err := writeJSONL(objectsPath, lines); err != nil {
			cleanup()
			return ExportSummary{}, types.NewStorageError("writing objects export", err)
		}
		written = append(written, objectsPath)
		summary.Objects += len(lines)
	}

	slog.Debug("exported store", "dir", dir, "types", summary.Types, "objects", summary.Objects)
	return summary, nil
}
