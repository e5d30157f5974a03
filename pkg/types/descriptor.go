package types

// ExtraProperties is the record key and storage column holding the JSON
// overflow mapping: every payload field not declared by the type's schema.
const ExtraProperties = "extra_properties"

// TypeDescriptor describes one registered type: its identifier, the
// augmented schema document it was registered with, and the storage table
// holding its objects. Descriptors are immutable once registered.
type TypeDescriptor struct {
	TypeID    string         `json:"type_id"`
	Schema    map[string]any `json:"type_schema"`
	TableName string         `json:"table_name"`
}

// Record is one stored object as returned by reads: the generated "id", one
// key per schema-declared property (nil when the payload omitted it), and
// ExtraProperties holding the decoded overflow mapping (empty map when none
// was stored).
type Record map[string]any

// ID returns the record's generated identifier, or 0 when absent.
func (r Record) ID() int64 {
	id, ok := r["id"].(int64)
	if !ok {
		return 0
	}
	return id
}

// DefaultPageLimit is the page size applied when a caller does not specify
// one.
const DefaultPageLimit = 100

// Page bounds a listing. Limit and Offset must be non-negative; a Limit of
// zero returns an empty page.
type Page struct {
	Limit  int
	Offset int
}

// DefaultPage returns the standard page: the first DefaultPageLimit records.
func DefaultPage() Page {
	return Page{Limit: DefaultPageLimit, Offset: 0}
}

// Validate checks the page bounds. It returns a ValidationError naming the
// offending field when a bound is negative.
func (p Page) Validate() error {
	if p.Limit < 0 {
		return NewValidationError("limit", "must be non-negative")
	}
	if p.Offset < 0 {
		return NewValidationError("offset", "must be non-negative")
	}
	return nil
}
