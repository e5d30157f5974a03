package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typekeep/typekeep/pkg/types"
)

func bookSchema() map[string]any {
	return map[string]any{
		"title": "book",
		"properties": map[string]any{
			"title":  map[string]any{"type": "string"},
			"icon":   map[string]any{"type": "string"},
			"status": map[string]any{"type": "integer"},
			"author": map[string]any{"type": "string"},
			"pages":  map[string]any{"type": "integer"},
		},
	}
}

func TestAugmentAddsMandatoryRequired(t *testing.T) {
	doc := bookSchema()
	require.NoError(t, Augment(doc))

	required, ok := doc["required"].([]any)
	require.True(t, ok, "required should be a list")
	assert.Equal(t, []any{"title", "icon", "status"}, required)
}

func TestAugmentPreservesCallerRequired(t *testing.T) {
	doc := bookSchema()
	doc["required"] = []any{"author", "title"}
	require.NoError(t, Augment(doc))

	required := doc["required"].([]any)
	assert.Equal(t, []any{"author", "title", "icon", "status"}, required)
}

func TestAugmentOverwritesPropertyNames(t *testing.T) {
	doc := bookSchema()
	doc["propertyNames"] = map[string]any{"pattern": ".*"}
	require.NoError(t, Augment(doc))

	assert.Equal(t, map[string]any{"pattern": PropertyNamePattern}, doc["propertyNames"])
}

func TestAugmentMissingMandatory(t *testing.T) {
	tests := []struct {
		name    string
		drop    []string
		missing []string
	}{
		{"missing status", []string{"status"}, []string{"status"}},
		{"missing icon and status", []string{"icon", "status"}, []string{"icon", "status"}},
		{"missing all three", []string{"title", "icon", "status"}, []string{"title", "icon", "status"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := bookSchema()
			props := doc["properties"].(map[string]any)
			for _, name := range tt.drop {
				delete(props, name)
			}

			err := Augment(doc)
			require.Error(t, err)
			assert.True(t, types.IsValidation(err))

			var verr *types.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.missing, verr.Missing)
		})
	}
}

func TestAugmentRejectsWrongShapes(t *testing.T) {
	tests := []struct {
		name  string
		prop  string
		shape any
	}{
		{"status as string", "status", map[string]any{"type": "string"}},
		{"title with extra keyword", "title", map[string]any{"type": "string", "maxLength": float64(10)}},
		{"icon not an object", "icon", "string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := bookSchema()
			doc["properties"].(map[string]any)[tt.prop] = tt.shape

			err := Augment(doc)
			require.Error(t, err)
			assert.True(t, types.IsValidation(err))

			var verr *types.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.prop, verr.Path)
		})
	}
}

func TestAugmentRejectsBadStructure(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
	}{
		{"no properties", map[string]any{"title": "bare"}},
		{"properties not an object", map[string]any{"properties": []any{"title"}}},
		{
			"required not an array",
			map[string]any{
				"properties": map[string]any{
					"title":  map[string]any{"type": "string"},
					"icon":   map[string]any{"type": "string"},
					"status": map[string]any{"type": "integer"},
				},
				"required": "title",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Augment(tt.doc)
			require.Error(t, err)
			assert.True(t, types.IsSchema(err))
		})
	}
}

func TestDeclaredProperties(t *testing.T) {
	doc := bookSchema()
	names, err := DeclaredProperties(doc)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"title", "icon", "status", "author", "pages"}, names)

	_, err = DeclaredProperties(map[string]any{})
	assert.True(t, types.IsSchema(err))
}

func TestTitleOf(t *testing.T) {
	title, ok := TitleOf(map[string]any{"title": "book"})
	assert.True(t, ok)
	assert.Equal(t, "book", title)

	title, ok = TitleOf(map[string]any{"title": ""})
	assert.True(t, ok)
	assert.Equal(t, "", title)

	_, ok = TitleOf(map[string]any{})
	assert.False(t, ok)

	_, ok = TitleOf(map[string]any{"title": float64(3)})
	assert.False(t, ok)
}

func TestSafeName(t *testing.T) {
	assert.True(t, SafeName("author"))
	assert.True(t, SafeName("page_count_2"))
	assert.False(t, SafeName("page-count"))
	assert.False(t, SafeName("drop table"))
	assert.False(t, SafeName(""))
}
