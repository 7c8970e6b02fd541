// Package export converts consolidated schemas into OpenAPI 3 schema
// objects so downstream spec tooling can consume inference results.
package export

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/siegeai/siegeingest/jsonschema"
)

// OpenAPI maps a schema node tree onto *openapi3.Schema. Field statistics
// and sampling bookkeeping are not carried over; they mean nothing to an
// OpenAPI consumer.
func OpenAPI(s jsonschema.Schema) *openapi3.Schema {
	if s == nil {
		return &openapi3.Schema{}
	}

	switch s.Kind() {
	case jsonschema.KindObject:
		return objectSchema(s.AsObject())
	case jsonschema.KindArray:
		return arraySchema(s.AsArray())
	case jsonschema.KindMixed:
		return mixedSchema(s.AsMixed())
	default:
		return scalarSchema(s.AsScalar())
	}
}

func objectSchema(o *jsonschema.ObjectSchema) *openapi3.Schema {
	ps := make(openapi3.Schemas, len(o.Fields))
	rs := make([]string, 0, len(o.Fields))
	for _, f := range o.Fields {
		ps[f.Key] = OpenAPI(f.Value).NewRef()
		if f.Required {
			rs = append(rs, f.Key)
		}
	}
	return &openapi3.Schema{
		Type:       openapi3.TypeObject,
		Properties: ps,
		Required:   rs,
		Nullable:   o.Null,
	}
}

func arraySchema(a *jsonschema.ArraySchema) *openapi3.Schema {
	out := &openapi3.Schema{
		Type:     openapi3.TypeArray,
		Nullable: a.Null,
		MinItems: uint64(a.MinItems),
	}
	if a.MaxItems > 0 {
		m := uint64(a.MaxItems)
		out.MaxItems = &m
	}
	if a.Item != nil {
		out.Items = OpenAPI(a.Item).NewRef()
	}
	return out
}

func mixedSchema(m *jsonschema.MixedSchema) *openapi3.Schema {
	refs := make(openapi3.SchemaRefs, 0, len(m.Candidates))
	for _, k := range m.Candidates {
		refs = append(refs, (&openapi3.Schema{Type: typeName(k)}).NewRef())
	}
	return &openapi3.Schema{OneOf: refs, Nullable: m.Null}
}

func scalarSchema(s *jsonschema.ScalarSchema) *openapi3.Schema {
	out := &openapi3.Schema{Nullable: s.Null}

	switch s.K {
	case jsonschema.KindNull:
		out.Nullable = true
		return out
	case jsonschema.KindBoolean:
		out.Type = openapi3.TypeBoolean
		return out
	case jsonschema.KindInteger:
		out.Type = openapi3.TypeInteger
	case jsonschema.KindNumber:
		out.Type = openapi3.TypeNumber
	case jsonschema.KindString:
		out.Type = openapi3.TypeString
	}

	if s.K == jsonschema.KindString {
		if s.MinLen != nil {
			out.MinLength = uint64(*s.MinLen)
		}
		if s.MaxLen != nil {
			m := uint64(*s.MaxLen)
			out.MaxLength = &m
		}
		out.Format = formatName(s.Pattern)
		return out
	}

	if s.Min != nil {
		v := *s.Min
		out.Min = &v
	}
	if s.Max != nil {
		v := *s.Max
		out.Max = &v
	}
	return out
}

func typeName(k jsonschema.Kind) string {
	switch k {
	case jsonschema.KindBoolean:
		return openapi3.TypeBoolean
	case jsonschema.KindInteger:
		return openapi3.TypeInteger
	case jsonschema.KindNumber:
		return openapi3.TypeNumber
	case jsonschema.KindString:
		return openapi3.TypeString
	case jsonschema.KindArray:
		return openapi3.TypeArray
	case jsonschema.KindObject:
		return openapi3.TypeObject
	}
	return ""
}

func formatName(pattern string) string {
	switch pattern {
	case "email":
		return "email"
	case "url":
		return "uri"
	case "uuid":
		return "uuid"
	}
	return ""
}
