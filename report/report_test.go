package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"

	"github.com/siegeai/siegeingest/infer"
	"github.com/siegeai/siegeingest/ingest"
	"github.com/siegeai/siegeingest/jsonschema"
)

func mustInfer(t *testing.T, doc string) jsonschema.Schema {
	t.Helper()
	s, err := infer.InferBytes([]byte(doc), 0)
	require.NoError(t, err)
	return s
}

func TestForSchemaCountsColumns(t *testing.T) {
	s := mustInfer(t, `{"id": 1, "user": {"name": "a", "address": {"city": "x"}}, "tags": ["t1", "t2"]}`)
	rep := ForSchema("orders", s)

	assert.Equal(t, "orders", rep.Name)
	assert.Equal(t, "object", rep.RootKind)
	assert.Equal(t, 2, rep.MaxNesting)
	assert.Equal(t, 2, rep.ArrayColumns)
	assert.Equal(t, len(rep.Columns), rep.TotalColumns)
	assert.GreaterOrEqual(t, rep.Kinds["string"], 3)

	for i := 1; i < len(rep.Columns); i++ {
		assert.LessOrEqual(t, rep.Columns[i-1].Name, rep.Columns[i].Name)
	}
}

func TestForSchemaRecommendsOnNoRequiredKeys(t *testing.T) {
	s := jsonschema.Merge(mustInfer(t, `{"a": 1}`), mustInfer(t, `{"b": 2}`))
	rep := ForSchema("corpus", s)
	require.NotEmpty(t, rep.Recommendations)
	assert.Contains(t, rep.Recommendations[len(rep.Recommendations)-1], "required")
}

func TestForRun(t *testing.T) {
	src := ingest.NewValueSource(
		&ingest.Document{Name: "a.json", Value: fastjson.MustParse(`{"id": 1}`)},
		&ingest.Document{Name: "b.json", Value: fastjson.MustParse(`{"id": 2}`)},
	)
	res, err := (&ingest.Pipeline{}).Run(context.Background(), src, &ingest.MemorySink{})
	require.NoError(t, err)

	rep := ForRun(res, "processed_data")
	_, perr := uuid.Parse(rep.ID)
	assert.NoError(t, perr)
	assert.Equal(t, "processed_data", rep.Table)
	assert.Equal(t, 2, rep.Documents)
	assert.Equal(t, 2, rep.Rows)
	assert.Equal(t, 1, rep.Columns)
	assert.WithinDuration(t, time.Now().UTC(), rep.GeneratedAt, time.Minute)
	assert.True(t, rep.Consistency.Consistent)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, map[string]int{"rows": 3}))

	var out map[string]int
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, 3, out["rows"])
	assert.Contains(t, buf.String(), "\n")
}
