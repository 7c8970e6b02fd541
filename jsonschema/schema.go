package jsonschema

import "strconv"

// Kind is the basic category of a JSON value.
type Kind int

const (
	KindNull    Kind = 0
	KindBoolean Kind = 1
	KindInteger Kind = 2
	KindNumber  Kind = 3
	KindString  Kind = 4
	KindArray   Kind = 5
	KindObject  Kind = 6
	KindMixed   Kind = 7
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindMixed:
		return "mixed"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// MarshalJSON renders kinds as their names; reports and HTTP responses
// carry "integer", not 2.
func (k Kind) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(k.String())), nil
}

// IsScalar reports whether k is one of the non-composite kinds.
func (k Kind) IsScalar() bool {
	switch k {
	case KindNull, KindBoolean, KindInteger, KindNumber, KindString:
		return true
	}
	return false
}

// Schema is the structural description of a JSON value. Exactly one concrete
// type backs every node; the AsX accessors panic on a kind mismatch so that
// a bad dispatch fails loudly instead of silently merging garbage.
type Schema interface {
	Kind() Kind

	// Nullable reports whether null has been observed (or admitted) where
	// this node applies.
	Nullable() bool

	AsScalar() *ScalarSchema
	AsArray() *ArraySchema
	AsObject() *ObjectSchema
	AsMixed() *MixedSchema

	// Clone returns a deep copy sharing no mutable state with the receiver.
	Clone() Schema
}

// ScalarSchema describes a Null, Boolean, Integer, Number or String value
// together with incrementally tracked constraints. Constraints are advisory
// for validation; patterns are never enforced.
type ScalarSchema struct {
	K    Kind
	Null bool

	// Numeric range, present once at least one numeric value was observed.
	Min *float64
	Max *float64

	// String length range.
	MinLen *int
	MaxLen *int

	// Detected string pattern: "email", "url" or "uuid". Empty when none
	// was detected or the observations disagreed.
	Pattern string
}

func (s *ScalarSchema) Kind() Kind              { return s.K }
func (s *ScalarSchema) Nullable() bool          { return s.Null || s.K == KindNull }
func (s *ScalarSchema) AsScalar() *ScalarSchema { return s }
func (s *ScalarSchema) AsArray() *ArraySchema   { panic("scalar is not an array") }
func (s *ScalarSchema) AsObject() *ObjectSchema { panic("scalar is not an object") }
func (s *ScalarSchema) AsMixed() *MixedSchema   { panic("scalar is not a mixed union") }

func (s *ScalarSchema) Clone() Schema {
	c := *s
	c.Min = cloneFloatPtr(s.Min)
	c.Max = cloneFloatPtr(s.Max)
	c.MinLen = cloneIntPtr(s.MinLen)
	c.MaxLen = cloneIntPtr(s.MaxLen)
	return &c
}

// ArraySchema describes a sequence. Item summarizes every sampled element
// and may itself be Mixed. Item is nil only when Empty.
type ArraySchema struct {
	Item Schema
	Null bool

	MinItems int
	MaxItems int

	// Homogeneous is true when every sampled element classified to the
	// same kind.
	Homogeneous bool

	// Empty marks an array inferred from zero elements.
	Empty bool

	// SampleCount/TotalCount record sampling truncation during inference.
	// Equal when every element was examined.
	SampleCount int
	TotalCount  int
}

func (a *ArraySchema) Kind() Kind              { return KindArray }
func (a *ArraySchema) Nullable() bool          { return a.Null }
func (a *ArraySchema) AsScalar() *ScalarSchema { panic("array is not a scalar") }
func (a *ArraySchema) AsArray() *ArraySchema   { return a }
func (a *ArraySchema) AsObject() *ObjectSchema { panic("array is not an object") }
func (a *ArraySchema) AsMixed() *MixedSchema   { panic("array is not a mixed union") }

func (a *ArraySchema) Clone() Schema {
	c := *a
	if a.Item != nil {
		c.Item = a.Item.Clone()
	}
	return &c
}

// ObjectSchema describes a keyed mapping. Field order follows first
// observation so flattened column order is stable across runs.
type ObjectSchema struct {
	Fields []ObjectField
	Null   bool

	// AllowAdditional admits keys beyond Fields during validation.
	AllowAdditional bool

	// Empty marks an object inferred from zero keys.
	Empty bool
}

// ObjectField is one property of an object schema. Required means the key
// was present in every contributing document; NonNull means it was present
// and non-null in every contributing document. The two are tracked
// separately: a key that is always present but sometimes null is Required
// yet not NonNull.
type ObjectField struct {
	Key      string
	Value    Schema
	Required bool
	NonNull  bool
	Stats    *FieldStats
}

func (o *ObjectSchema) Kind() Kind              { return KindObject }
func (o *ObjectSchema) Nullable() bool          { return o.Null }
func (o *ObjectSchema) AsScalar() *ScalarSchema { panic("object is not a scalar") }
func (o *ObjectSchema) AsArray() *ArraySchema   { panic("object is not an array") }
func (o *ObjectSchema) AsObject() *ObjectSchema { return o }
func (o *ObjectSchema) AsMixed() *MixedSchema   { panic("object is not a mixed union") }

func (o *ObjectSchema) Clone() Schema {
	c := *o
	c.Fields = make([]ObjectField, len(o.Fields))
	for i, f := range o.Fields {
		c.Fields[i] = f
		if f.Value != nil {
			c.Fields[i].Value = f.Value.Clone()
		}
		if f.Stats != nil {
			c.Fields[i].Stats = f.Stats.clone()
		}
	}
	return &c
}

// Field returns the property named key, or nil when absent.
func (o *ObjectSchema) Field(key string) *ObjectField {
	for i := range o.Fields {
		if o.Fields[i].Key == key {
			return &o.Fields[i]
		}
	}
	return nil
}

// RequiredKeys lists the keys required at this level, in field order.
func (o *ObjectSchema) RequiredKeys() []string {
	ks := make([]string, 0, len(o.Fields))
	for _, f := range o.Fields {
		if f.Required {
			ks = append(ks, f.Key)
		}
	}
	return ks
}

// MixedSchema records that incompatible kinds were observed at one
// position. Candidates never contains KindMixed or KindNull; null
// observations set Null instead.
type MixedSchema struct {
	Candidates []Kind
	Null       bool
}

func (m *MixedSchema) Kind() Kind              { return KindMixed }
func (m *MixedSchema) Nullable() bool          { return m.Null }
func (m *MixedSchema) AsScalar() *ScalarSchema { panic("mixed union is not a scalar") }
func (m *MixedSchema) AsArray() *ArraySchema   { panic("mixed union is not an array") }
func (m *MixedSchema) AsObject() *ObjectSchema { panic("mixed union is not an object") }
func (m *MixedSchema) AsMixed() *MixedSchema   { return m }

func (m *MixedSchema) Clone() Schema {
	c := *m
	c.Candidates = append([]Kind(nil), m.Candidates...)
	return &c
}

// Has reports whether k is an accepted candidate.
func (m *MixedSchema) Has(k Kind) bool {
	for _, c := range m.Candidates {
		if c == k {
			return true
		}
	}
	return false
}

// FieldStats accumulates per-property observations during inference and
// merge. Used by consistency scoring; never persisted downstream.
type FieldStats struct {
	Seen    int
	NonNull int
	Kinds   map[Kind]int
	Sample  string
}

func (s *FieldStats) clone() *FieldStats {
	c := *s
	c.Kinds = make(map[Kind]int, len(s.Kinds))
	for k, n := range s.Kinds {
		c.Kinds[k] = n
	}
	return &c
}

func cloneFloatPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// NewEmptyObject returns the neutral object schema: no fields, additional
// keys admitted. Consolidating an empty corpus yields this.
func NewEmptyObject() *ObjectSchema {
	return &ObjectSchema{Fields: []ObjectField{}, AllowAdditional: true, Empty: true}
}
