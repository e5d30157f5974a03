package types

// Registry manages type registrations: schema in, descriptor out, with the
// durable metadata and per-type tables kept consistent. Schemas are decoded
// JSON documents (map[string]any as produced by encoding/json).
type Registry interface {
	// RegisterType augments and validates the schema, materializes the
	// type's storage table, and persists the descriptor. Returns
	// ValidationError when mandatory properties are missing or malformed,
	// SchemaError when the document cannot be accepted, ConflictError when
	// the type id is already registered, StorageError on engine failure.
	RegisterType(schema map[string]any) (*TypeDescriptor, error)

	// ListTypes returns every registered type from durable metadata.
	// Returns DataCorruptionError if any stored schema fails to
	// deserialize.
	ListTypes() ([]TypeDescriptor, error)

	// GetType returns the descriptor for the given type id.
	// Returns NotFoundError if the type is not registered.
	GetType(typeID string) (*TypeDescriptor, error)

	// DeleteType removes the type: its storage table, its metadata row, and
	// its cache entry. Returns NotFoundError if the type is not registered.
	DeleteType(typeID string) error
}

// ObjectStore manages objects of registered types. Every operation resolves
// the type first and returns NotFoundError when it is not registered.
type ObjectStore interface {
	// CreateObject validates the payload against the type's schema and
	// inserts it, partitioning fields into declared columns and the
	// ExtraProperties overflow. Returns the generated object id.
	CreateObject(typeID string, payload map[string]any) (int64, error)

	// ListObjects returns a page of the type's objects in storage order.
	ListObjects(typeID string, page Page) ([]Record, error)

	// GetObject returns the object with the given id.
	// Returns NotFoundError naming both type and object when absent.
	GetObject(typeID string, objectID int64) (Record, error)

	// DeleteObject removes the object with the given id.
	// Returns NotFoundError naming both type and object when absent.
	DeleteObject(typeID string, objectID int64) error
}

// Store is the full backend interface: lifecycle plus registry plus objects.
// Callers attach to a backend, operate, and detach when done.
type Store interface {
	Registry
	ObjectStore

	// Attach connects the Store to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls
	// succeed. After Detach, operations return ErrStoreDetached.
	Detach() error
}
