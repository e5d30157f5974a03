package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/typekeep/typekeep/pkg/types"
)

// Compile serializes doc and compiles it as a Draft-7 schema. Compilation is
// the well-formedness check: a document the compiler rejects fails
// registration with SchemaError.
func Compile(doc map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, types.NewSchemaError("serializing schema", err)
	}
	return CompileRaw(raw)
}

// CompileRaw compiles an already-serialized schema document.
func CompileRaw(raw []byte) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource("schema.json", bytes.NewReader(raw)); err != nil {
		return nil, types.NewSchemaError("schema is not valid JSON", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, types.NewSchemaError("schema is not well-formed", err)
	}
	return compiled, nil
}

// ValidatePayload checks payload against the compiled schema. On failure it
// reports only the first violation as a ValidationError carrying the
// violating field's slash-joined path (empty at the document root) and the
// validator's message.
func ValidatePayload(compiled *jsonschema.Schema, payload map[string]any) error {
	if err := compiled.Validate(normalizeValue(payload)); err != nil {
		return firstViolation(err)
	}
	return nil
}

// firstViolation descends the validator's error tree along first causes and
// converts the leaf into the registry's ValidationError.
func firstViolation(err error) error {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return types.NewValidationError("", err.Error())
	}
	leaf := verr
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	return types.NewValidationError(pointerPath(leaf.InstanceLocation), leaf.Message)
}

// pointerPath converts a JSON pointer into the slash-joined field path used
// in validation errors. The document root maps to the empty string.
func pointerPath(ptr string) string {
	if ptr == "" {
		return ""
	}
	segments := strings.Split(strings.TrimPrefix(ptr, "/"), "/")
	for i, s := range segments {
		s = strings.ReplaceAll(s, "~1", "/")
		segments[i] = strings.ReplaceAll(s, "~0", "~")
	}
	return strings.Join(segments, "/")
}

// normalizeValue rewrites v into the decoded-JSON value set the validator
// accepts. Payloads decoded from request bodies already satisfy it; values
// built directly in Go may carry native ints and typed slices or maps.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case nil, bool, string, float64, json.Number:
		return val
	case int:
		return json.Number(strconv.Itoa(val))
	case int64:
		return json.Number(strconv.FormatInt(val, 10))
	case float32:
		return float64(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return val
	}
}
