// Package schema applies the registry's mandatory-property rules to
// submitted JSON Schema documents and validates object payloads against
// compiled schemas.
package schema

import (
	"fmt"
	"regexp"

	"github.com/typekeep/typekeep/pkg/types"
)

// PropertyNamePattern restricts property names to characters that are safe
// to use as storage column identifiers without escaping.
const PropertyNamePattern = "^[a-zA-Z0-9_]+$"

var propertyNameRe = regexp.MustCompile(PropertyNamePattern)

// SafeName reports whether name is usable as a storage column identifier.
func SafeName(name string) bool {
	return propertyNameRe.MatchString(name)
}

// mandatoryTypes lists the properties every registered type must declare.
// Each must appear in the schema with the exact shape {"type": <value>}.
var mandatoryTypes = map[string]string{
	"title":  "string",
	"icon":   "string",
	"status": "integer",
}

// mandatoryOrder fixes the reporting and required-append order.
var mandatoryOrder = []string{"title", "icon", "status"}

// Augment applies the registration rules to doc in place: verifies the
// mandatory properties are declared with their exact shapes, force-adds them
// to "required", and force-sets "propertyNames" to PropertyNamePattern,
// overwriting any caller value. Returns ValidationError when a mandatory
// property is missing or malformed, SchemaError when the document structure
// cannot be interpreted.
func Augment(doc map[string]any) error {
	props, err := declaredProperties(doc)
	if err != nil {
		return err
	}

	var missing []string
	for _, name := range mandatoryOrder {
		if _, ok := props[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return types.NewMissingMandatoryError(missing)
	}

	for _, name := range mandatoryOrder {
		if !shapeMatches(props[name], mandatoryTypes[name]) {
			return types.NewValidationError(name,
				fmt.Sprintf("mandatory property must be exactly {\"type\": %q}", mandatoryTypes[name]))
		}
	}

	required, err := requiredNames(doc)
	if err != nil {
		return err
	}
	for _, name := range mandatoryOrder {
		if !containsString(required, name) {
			required = append(required, name)
		}
	}
	doc["required"] = required

	doc["propertyNames"] = map[string]any{"pattern": PropertyNamePattern}
	return nil
}

// DeclaredProperties returns the names a schema declares under "properties",
// or a SchemaError when the keyword is absent or not an object.
func DeclaredProperties(doc map[string]any) ([]string, error) {
	props, err := declaredProperties(doc)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	return names, nil
}

func declaredProperties(doc map[string]any) (map[string]any, error) {
	raw, ok := doc["properties"]
	if !ok {
		return nil, types.NewSchemaError("schema declares no properties", nil)
	}
	props, ok := raw.(map[string]any)
	if !ok {
		return nil, types.NewSchemaError("properties must be an object", nil)
	}
	return props, nil
}

// requiredNames returns the caller-supplied "required" list. A present
// non-array value is a SchemaError; non-string entries are left for
// compilation to report.
func requiredNames(doc map[string]any) ([]any, error) {
	raw, ok := doc["required"]
	if !ok {
		return []any{}, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, types.NewSchemaError("required must be an array", nil)
	}
	return list, nil
}

// shapeMatches reports whether got is exactly {"type": wantType}.
func shapeMatches(got any, wantType string) bool {
	m, ok := got.(map[string]any)
	if !ok || len(m) != 1 {
		return false
	}
	return m["type"] == wantType
}

func containsString(list []any, name string) bool {
	for _, v := range list {
		if s, ok := v.(string); ok && s == name {
			return true
		}
	}
	return false
}

// TitleOf returns the schema's title when it is a present string. The second
// return reports presence.
func TitleOf(doc map[string]any) (string, bool) {
	raw, ok := doc["title"]
	if !ok {
		return "", false
	}
	title, ok := raw.(string)
	return title, ok
}
