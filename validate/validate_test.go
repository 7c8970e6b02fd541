package validate

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

func hasViolation(r Result, path, code string) bool {
	for _, v := range r.Violations {
		if v.Path == path && v.Code == code {
			return true
		}
	}
	return false
}

func TestValidateConformingDocument(t *testing.T) {
	s := mustInfer(t, `{"id": 1, "name": "ada", "tags": ["x"]}`)
	r := Validate(fastjson.MustParse(`{"id": 2, "name": "bob", "tags": ["y"]}`), s)

	assert.True(t, r.Valid)
	assert.Empty(t, r.Violations)
}

func TestValidateMissingRequiredKey(t *testing.T) {
	s := mustInfer(t, `{"id": 1, "name": "ada"}`)
	r := Validate(fastjson.MustParse(`{"id": 2}`), s)

	assert.False(t, r.Valid)
	assert.True(t, hasViolation(r, "name", CodeRequired))
}

func TestValidateKindMismatch(t *testing.T) {
	s := mustInfer(t, `{"id": 1}`)
	r := Validate(fastjson.MustParse(`{"id": "seven"}`), s)

	assert.False(t, r.Valid)
	assert.True(t, hasViolation(r, "id", CodeInvalidType))
}

func TestValidateIntegerAcceptedWhereNumberDeclared(t *testing.T) {
	s := mustInfer(t, `{"price": 1.5}`)

	r := Validate(fastjson.MustParse(`{"price": 2}`), s)
	assert.True(t, r.Valid)

	// The reverse does not hold.
	s = mustInfer(t, `{"count": 2}`)
	r = Validate(fastjson.MustParse(`{"count": 2.5}`), s)
	assert.False(t, r.Valid)
}

func TestValidateNullAgainstNullability(t *testing.T) {
	nullable := jsonschema.Merge(
		mustInfer(t, `{"v": "x"}`),
		mustInfer(t, `{"v": null}`),
	)
	r := Validate(fastjson.MustParse(`{"v": null}`), nullable)
	assert.True(t, r.Valid)

	strict := mustInfer(t, `{"v": "x"}`)
	r = Validate(fastjson.MustParse(`{"v": null}`), strict)
	assert.False(t, r.Valid)
	assert.True(t, hasViolation(r, "v", CodeInvalidType))
}

func TestValidateMixedAcceptsAnything(t *testing.T) {
	s := jsonschema.Merge(
		mustInfer(t, `{"v": 1}`),
		mustInfer(t, `{"v": "x"}`),
	)

	for _, doc := range []string{`{"v": true}`, `{"v": [1]}`, `{"v": {"k": 1}}`} {
		r := Validate(fastjson.MustParse(doc), s)
		assert.True(t, r.Valid, doc)
	}
}

func TestValidateUnknownKeys(t *testing.T) {
	s := mustInfer(t, `{"id": 1}`)

	// Inferred objects are closed by default.
	r := Validate(fastjson.MustParse(`{"id": 2, "extra": true}`), s)
	assert.False(t, r.Valid)
	assert.True(t, hasViolation(r, "extra", CodeUnknownKey))

	s.AsObject().AllowAdditional = true
	r = Validate(fastjson.MustParse(`{"id": 2, "extra": true}`), s)
	assert.True(t, r.Valid)
}

func TestValidateArrayBounds(t *testing.T) {
	s := mustInfer(t, `{"tags": [1, 2, 3]}`)

	r := Validate(fastjson.MustParse(`{"tags": [1]}`), s)
	assert.True(t, hasViolation(r, "tags", CodeTooShort))

	r = Validate(fastjson.MustParse(`{"tags": [1, 2, 3, 4]}`), s)
	assert.True(t, hasViolation(r, "tags", CodeTooLong))
}

func TestValidateArrayElementPaths(t *testing.T) {
	s := mustInfer(t, `{"tags": ["a", "b", "c"]}`)
	r := Validate(fastjson.MustParse(`{"tags": ["a", 2, "c"]}`), s)

	assert.False(t, r.Valid)
	assert.True(t, hasViolation(r, "tags[1]", CodeInvalidType))
}

func TestValidateNestedPaths(t *testing.T) {
	s := mustInfer(t, `{"user": {"name": "ada"}}`)
	r := Validate(fastjson.MustParse(`{"user": {"name": 3}}`), s)

	assert.False(t, r.Valid)
	assert.True(t, hasViolation(r, "user.name", CodeInvalidType))
}

func TestValidateNilSchemaAcceptsEverything(t *testing.T) {
	r := Validate(fastjson.MustParse(`{"anything": [1, {"x": null}]}`), nil)
	assert.True(t, r.Valid)
}
