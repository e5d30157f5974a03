package schema

import (
	"encoding/json"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typekeep/typekeep/pkg/types"
)

// compiledBook augments and compiles the shared book schema fixture.
func compiledBook(t *testing.T) *jsonschema.Schema {
	t.Helper()
	doc := bookSchema()
	require.NoError(t, Augment(doc))
	compiled, err := Compile(doc)
	require.NoError(t, err)
	return compiled
}

func TestCompileRejectsMalformedSchema(t *testing.T) {
	doc := map[string]any{
		"properties": map[string]any{
			"title": map[string]any{"type": "not-a-type"},
		},
	}
	_, err := Compile(doc)
	require.Error(t, err)
	assert.True(t, types.IsSchema(err))
}

func TestCompileRawRejectsInvalidJSON(t *testing.T) {
	_, err := CompileRaw([]byte(`{"properties": `))
	require.Error(t, err)
	assert.True(t, types.IsSchema(err))
}

func TestValidatePayloadAccepts(t *testing.T) {
	compiled := compiledBook(t)

	payload := map[string]any{
		"title":  "Dune",
		"icon":   "book.png",
		"status": json.Number("1"),
		"author": "Frank Herbert",
		"rating": json.Number("4.5"),
	}
	assert.NoError(t, ValidatePayload(compiled, payload))
}

func TestValidatePayloadAcceptsNativeInts(t *testing.T) {
	compiled := compiledBook(t)

	payload := map[string]any{
		"title":  "Dune",
		"icon":   "book.png",
		"status": 1,
		"pages":  int64(412),
	}
	assert.NoError(t, ValidatePayload(compiled, payload))
}

func TestValidatePayloadFirstViolation(t *testing.T) {
	compiled := compiledBook(t)

	tests := []struct {
		name     string
		payload  map[string]any
		wantPath string
	}{
		{
			name: "wrong type on declared property",
			payload: map[string]any{
				"title":  "Dune",
				"icon":   "book.png",
				"status": "shelved",
			},
			wantPath: "status",
		},
		{
			name: "missing required reported at root",
			payload: map[string]any{
				"title": "Dune",
				"icon":  "book.png",
			},
			wantPath: "",
		},
		{
			name: "fractional value for integer property",
			payload: map[string]any{
				"title":  "Dune",
				"icon":   "book.png",
				"status": json.Number("1.5"),
			},
			wantPath: "status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePayload(compiled, tt.payload)
			require.Error(t, err)
			assert.True(t, types.IsValidation(err))

			var verr *types.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantPath, verr.Path)
			assert.NotEmpty(t, verr.Message)
		})
	}
}

func TestValidatePayloadRejectsUnsafeExtraName(t *testing.T) {
	compiled := compiledBook(t)

	payload := map[string]any{
		"title":    "Dune",
		"icon":     "book.png",
		"status":   json.Number("1"),
		"bad-name": "x",
	}
	err := ValidatePayload(compiled, payload)
	require.Error(t, err)
	assert.True(t, types.IsValidation(err))
}

func TestPointerPath(t *testing.T) {
	tests := []struct {
		ptr  string
		want string
	}{
		{"", ""},
		{"/status", "status"},
		{"/a/b", "a/b"},
		{"/we~1ird", "we/ird"},
		{"/ti~0lde", "ti~lde"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, pointerPath(tt.ptr), "pointer %q", tt.ptr)
	}
}
