package types

import (
	"errors"
	"fmt"
	"strings"
)

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Sentinel errors for the standard failure kinds. Operations return typed
// errors that match these under errors.Is, so callers can branch on kind
// without losing the detail carried by the concrete type.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("type already registered")
	ErrNotFound   = errors.New("not found")
	ErrStorage    = errors.New("storage failure")
	ErrCorrupt    = errors.New("stored data is corrupt")
	ErrSchema     = errors.New("invalid schema")
)

// ValidationError reports a payload or schema-document violation. Path is the
// slash-joined path to the violating field, empty at the document root.
// Missing lists mandatory property names absent from a submitted schema; it is
// nil for object payload violations.
type ValidationError struct {
	Path    string
	Message string
	Missing []string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("validation failed: missing mandatory properties: %s", strings.Join(e.Missing, ", "))
	}
	if e.Path != "" {
		return fmt.Sprintf("validation failed at %q: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ConflictError reports an attempt to register a type id that already exists.
type ConflictError struct {
	TypeID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("type %q already registered", e.TypeID)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NotFoundError reports a missing type or, when ObjectID is non-zero, a
// missing object within a known type.
type NotFoundError struct {
	TypeID   string
	ObjectID int64
}

func (e *NotFoundError) Error() string {
	if e.ObjectID != 0 {
		return fmt.Sprintf("object %d of type %q not found", e.ObjectID, e.TypeID)
	}
	return fmt.Sprintf("type %q not found", e.TypeID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StorageError wraps a failure from the storage engine. Op names the
// operation that failed.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// DataCorruptionError reports a stored schema document that can no longer be
// deserialized.
type DataCorruptionError struct {
	TypeID string
	Err    error
}

func (e *DataCorruptionError) Error() string {
	return fmt.Sprintf("stored schema for type %q is corrupt: %v", e.TypeID, e.Err)
}

func (e *DataCorruptionError) Is(target error) bool {
	return target == ErrCorrupt
}

func (e *DataCorruptionError) Unwrap() error {
	return e.Err
}

// SchemaError reports a schema document the registry cannot accept: not
// well-formed JSON Schema, no declared properties, or a declared property
// name outside the safe identifier set.
type SchemaError struct {
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid schema: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid schema: %s", e.Reason)
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for a single field violation.
func NewValidationError(path, message string) error {
	return &ValidationError{Path: path, Message: message}
}

// NewMissingMandatoryError creates a ValidationError listing the mandatory
// properties absent from a submitted schema.
func NewMissingMandatoryError(missing []string) error {
	return &ValidationError{Missing: missing, Message: "missing mandatory properties"}
}

// NewConflictError creates a ConflictError for the given type id.
func NewConflictError(typeID string) error {
	return &ConflictError{TypeID: typeID}
}

// NewTypeNotFoundError creates a NotFoundError for a missing type.
func NewTypeNotFoundError(typeID string) error {
	return &NotFoundError{TypeID: typeID}
}

// NewObjectNotFoundError creates a NotFoundError for a missing object.
func NewObjectNotFoundError(typeID string, objectID int64) error {
	return &NotFoundError{TypeID: typeID, ObjectID: objectID}
}

// NewStorageError wraps err as a StorageError for the named operation.
func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// NewDataCorruptionError wraps err as a DataCorruptionError for the type.
func NewDataCorruptionError(typeID string, err error) error {
	return &DataCorruptionError{TypeID: typeID, Err: err}
}

// NewSchemaError creates a SchemaError with the given reason. err may be nil.
func NewSchemaError(reason string, err error) error {
	return &SchemaError{Reason: reason, Err: err}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsConflict reports whether err is a duplicate-registration conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsNotFound reports whether err is a missing type or object.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsStorage reports whether err is a storage engine failure.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}

// IsCorrupt reports whether err is a corrupt stored schema.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrCorrupt)
}

// IsSchema reports whether err is a rejected schema document.
func IsSchema(err error) bool {
	return errors.Is(err, ErrSchema)
}
