package jsonschema

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "integer", KindInteger.String())
	assert.Equal(t, "mixed", KindMixed.String())

	b, err := json.Marshal(KindString)
	require.NoError(t, err)
	assert.Equal(t, `"string"`, string(b))
}

func TestKindIsScalar(t *testing.T) {
	assert.True(t, KindBoolean.IsScalar())
	assert.True(t, KindNull.IsScalar())
	assert.False(t, KindObject.IsScalar())
	assert.False(t, KindArray.IsScalar())
	assert.False(t, KindMixed.IsScalar())
}

func TestCloneIsDeep(t *testing.T) {
	lo := 1.0
	orig := &ObjectSchema{
		Fields: []ObjectField{{
			Key:      "n",
			Value:    &ScalarSchema{K: KindInteger, Min: &lo, Max: &lo},
			Required: true,
		}},
	}

	c := orig.Clone().AsObject()
	*c.Fields[0].Value.AsScalar().Min = 99
	c.Fields[0].Required = false

	assert.Equal(t, 1.0, *orig.Fields[0].Value.AsScalar().Min)
	assert.True(t, orig.Fields[0].Required)
}

func TestAccessorsPanicOnWrongKind(t *testing.T) {
	s := &ScalarSchema{K: KindInteger}
	assert.Panics(t, func() { s.AsObject() })
	assert.Panics(t, func() { s.AsArray() })
	assert.NotPanics(t, func() { s.AsScalar() })
}

func TestObjectFieldLookup(t *testing.T) {
	o := &ObjectSchema{Fields: []ObjectField{
		{Key: "a", Value: &ScalarSchema{K: KindInteger}, Required: true},
		{Key: "b", Value: &ScalarSchema{K: KindString}},
	}}

	require.NotNil(t, o.Field("a"))
	assert.Nil(t, o.Field("missing"))
	assert.Equal(t, []string{"a"}, o.RequiredKeys())
}

func TestMixedHas(t *testing.T) {
	m := &MixedSchema{Candidates: []Kind{KindInteger, KindString}}
	assert.True(t, m.Has(KindInteger))
	assert.False(t, m.Has(KindBoolean))
}

func TestEqualIgnoresStatsAndFieldOrder(t *testing.T) {
	a := &ObjectSchema{Fields: []ObjectField{
		{Key: "x", Value: &ScalarSchema{K: KindInteger}, Required: true,
			Stats: &FieldStats{Seen: 1}},
		{Key: "y", Value: &ScalarSchema{K: KindString}},
	}}
	b := &ObjectSchema{Fields: []ObjectField{
		{Key: "y", Value: &ScalarSchema{K: KindString}},
		{Key: "x", Value: &ScalarSchema{K: KindInteger}, Required: true,
			Stats: &FieldStats{Seen: 42}},
	}}

	assert.True(t, Equal(a, b))

	b.Fields[0].Value = &ScalarSchema{K: KindBoolean}
	assert.False(t, Equal(a, b))
}
