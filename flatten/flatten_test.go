package flatten

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"

	"github.com/siegeai/siegeingest/infer"
	"github.com/siegeai/siegeingest/jsonschema"
)

func mustInfer(t *testing.T, doc string) jsonschema.Schema {
	t.Helper()
	s, err := infer.InferBytes([]byte(doc), 0)
	require.NoError(t, err)
	return s
}

func mustRecord(t *testing.T, doc string, s jsonschema.Schema, maxDepth int) Row {
	t.Helper()
	row, err := Record(fastjson.MustParse(doc), s, maxDepth)
	require.NoError(t, err)
	return row
}

func TestFlattenSimpleObject(t *testing.T) {
	doc := `{"id": 1, "user": {"name": "ada", "admin": true}}`
	s := mustInfer(t, doc)

	cols := Schema(s, "", 0)
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"id", "user.name", "user.admin"}, names)

	row := mustRecord(t, doc, s, 0)
	m := row.Map()
	assert.Equal(t, int64(1), m["id"])
	assert.Equal(t, "ada", m["user.name"])
	assert.Equal(t, true, m["user.admin"])
}

func TestFlattenObjectArrayExpandsPerIndex(t *testing.T) {
	doc := `{"item": [{"x":1},{"x":2},{"x":3},{"x":4},{"x":5},{"x":6}]}`
	s := mustInfer(t, doc)

	row := mustRecord(t, doc, s, 0)
	m := row.Map()
	for i, want := range []int64{1, 2, 3, 4, 5, 6} {
		assert.Equal(t, want, m[indexPath("item", i)+".x"])
	}
	assert.NotContains(t, m, "item_count")
	assert.NotContains(t, m, "item_truncated")
}

func TestFlattenObjectArrayTruncatesPastLimit(t *testing.T) {
	doc := `{"item": [{"x":1},{"x":2},{"x":3},{"x":4},{"x":5},{"x":6},{"x":7},{"x":8},{"x":9},{"x":10},{"x":11},{"x":12}]}`
	s := mustInfer(t, doc)

	row := mustRecord(t, doc, s, 0)
	m := row.Map()
	assert.Contains(t, m, "item[9].x")
	assert.NotContains(t, m, "item[10].x")
	assert.Equal(t, int64(12), m["item_count"])
	assert.Equal(t, true, m["item_truncated"])
}

func TestFlattenShortPrimitiveArrayExpands(t *testing.T) {
	doc := `{"field": [1, 2, 3]}`
	s := mustInfer(t, doc)

	m := mustRecord(t, doc, s, 0).Map()
	assert.Equal(t, int64(1), m["field[0]"])
	assert.Equal(t, int64(2), m["field[1]"])
	assert.Equal(t, int64(3), m["field[2]"])
	assert.NotContains(t, m, "field_count")
}

func TestFlattenLongPrimitiveArraySummarizes(t *testing.T) {
	doc := `{"field": [1, 2, 3, 4, 5, 6, 7, 8]}`
	s := mustInfer(t, doc)

	m := mustRecord(t, doc, s, 0).Map()
	assert.Equal(t, int64(8), m["field_count"])
	assert.Equal(t, int64(1), m["field_first"])
	assert.Equal(t, int64(8), m["field_last"])
	assert.Equal(t, 36.0, m["field_sum"])
	assert.Equal(t, 4.5, m["field_avg"])
	assert.NotContains(t, m, "field[0]")
}

func TestFlattenMixedArrayCollapses(t *testing.T) {
	doc := `{"field": [1, "x", true]}`
	s := mustInfer(t, doc)

	m := mustRecord(t, doc, s, 0).Map()
	require.Contains(t, m, "field")
	_, isString := m["field"].(string)
	assert.True(t, isString, "mixed array should serialize to text")
	assert.NotContains(t, m, "field[0]")
}

func TestFlattenEmptyArrayIsSingleNullField(t *testing.T) {
	doc := `{"field": []}`
	s := mustInfer(t, doc)

	cols := Schema(s, "", 0)
	require.Len(t, cols, 1)
	assert.Equal(t, "field", cols[0].Name)
	assert.Equal(t, jsonschema.KindNull, cols[0].Kind)

	m := mustRecord(t, doc, s, 0).Map()
	require.Contains(t, m, "field")
	assert.Nil(t, m["field"])
}

func TestFlattenDepthCapCollapsesToPreview(t *testing.T) {
	doc := `{"a": {"b": {"c": {"d": {"deep": "treasure"}}}}}`
	s := mustInfer(t, doc)

	cols := Schema(s, "", 3)
	require.Len(t, cols, 1)
	assert.Equal(t, "a.b.c.d", cols[0].Name)
	assert.Equal(t, jsonschema.KindString, cols[0].Kind)

	row := mustRecord(t, doc, s, 3)
	require.Len(t, row, 1)
	assert.Equal(t, "a.b.c.d", row[0].Name)
	preview, ok := row[0].Value.(string)
	require.True(t, ok)
	assert.LessOrEqual(t, len(preview), previewLen)
	assert.Contains(t, preview, "treasure")
}

func TestFlattenRootArrayUsesItemBase(t *testing.T) {
	doc := `[{"x": 1}, {"x": 2}]`
	s := mustInfer(t, doc)

	m := mustRecord(t, doc, s, 0).Map()
	assert.Equal(t, int64(1), m["item[0].x"])
	assert.Equal(t, int64(2), m["item[1].x"])
}

func TestFlattenRootScalar(t *testing.T) {
	s := mustInfer(t, `42`)

	cols := Schema(s, "", 0)
	require.Len(t, cols, 1)
	assert.Equal(t, "value", cols[0].Name)

	m := mustRecord(t, `42`, s, 0).Map()
	assert.Equal(t, int64(42), m["value"])
}

func TestFlattenMixedFieldStaysOneColumn(t *testing.T) {
	a := mustInfer(t, `{"v": 1}`)
	b := mustInfer(t, `{"v": {"nested": true}}`)
	merged := jsonschema.Merge(a, b)

	cols := Schema(merged, "", 0)
	require.Len(t, cols, 1)
	assert.Equal(t, "v", cols[0].Name)
	assert.Equal(t, jsonschema.KindMixed, cols[0].Kind)

	// The object-shaped document serializes into the one mixed column
	// instead of sprouting v.nested.
	m := mustRecord(t, `{"v": {"nested": true}}`, merged, 0).Map()
	require.Contains(t, m, "v")
	assert.NotContains(t, m, "v.nested")
}

func TestRecordNamesSubsetOfSchemaNames(t *testing.T) {
	docs := []string{
		`{"id": 1, "tags": ["a", "b"], "meta": {"depth": {"deeper": 1}}}`,
		`{"id": 2, "tags": ["c"], "extra": null}`,
		`{"id": 3, "items": [{"x": 1}, {"x": 2}], "nums": [1,2,3,4,5,6,7]}`,
	}

	var schemas []jsonschema.Schema
	for _, d := range docs {
		schemas = append(schemas, mustInfer(t, d))
	}
	var merged jsonschema.Schema
	for _, s := range schemas {
		merged = jsonschema.Merge(merged, s)
	}

	colSet := make(map[string]struct{})
	for _, c := range Schema(merged, "", 4) {
		colSet[c.Name] = struct{}{}
	}

	for _, d := range docs {
		row := mustRecord(t, d, merged, 4)
		for _, name := range row.Names() {
			_, ok := colSet[name]
			assert.True(t, ok, "record field %q missing from schema columns (doc %s)", name, d)
		}
	}
}
