package infer

import (
	"github.com/valyala/fastjson"

	"github.com/siegeai/siegeingest/jsonschema"
)

// DefaultMaxSamples bounds how many array elements inference examines when
// the caller passes no cap of its own.
const DefaultMaxSamples = 1000

// InferBytes parses b and infers a schema for the decoded value.
func InferBytes(b []byte, maxSamples int) (jsonschema.Schema, error) {
	v, err := fastjson.ParseBytes(b)
	if err != nil {
		return nil, err
	}
	return Infer(v, maxSamples)
}

// Infer builds a fresh schema node tree describing v. Arrays are sampled up
// to maxSamples elements and their element schemas reduced through
// jsonschema.Merge into one item schema. The returned tree shares no state
// with any previous call.
func Infer(v *fastjson.Value, maxSamples int) (jsonschema.Schema, error) {
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}
	return inferValue(v, maxSamples)
}

func inferValue(v *fastjson.Value, maxSamples int) (jsonschema.Schema, error) {
	kind, err := Classify(v)
	if err != nil {
		return nil, err
	}

	switch kind {
	case jsonschema.KindNull:
		return &jsonschema.ScalarSchema{K: jsonschema.KindNull}, nil
	case jsonschema.KindBoolean:
		return &jsonschema.ScalarSchema{K: jsonschema.KindBoolean}, nil
	case jsonschema.KindInteger, jsonschema.KindNumber:
		f, err := v.Float64()
		if err != nil {
			return nil, err
		}
		return &jsonschema.ScalarSchema{K: kind, Min: &f, Max: &f}, nil
	case jsonschema.KindString:
		s := string(v.GetStringBytes())
		l := len(s)
		lo, hi := l, l
		return &jsonschema.ScalarSchema{
			K:       jsonschema.KindString,
			MinLen:  &lo,
			MaxLen:  &hi,
			Pattern: detectPattern(s),
		}, nil
	case jsonschema.KindArray:
		vs, err := v.Array()
		if err != nil {
			return nil, err
		}
		return inferArray(vs, maxSamples)
	case jsonschema.KindObject:
		o, err := v.Object()
		if err != nil {
			return nil, err
		}
		return inferObject(o, maxSamples)
	}

	// Classify covers every fastjson type; anything else already errored.
	panic("should be unreachable")
}

func inferObject(o *fastjson.Object, maxSamples int) (jsonschema.Schema, error) {
	n := &jsonschema.ObjectSchema{Fields: make([]jsonschema.ObjectField, 0, o.Len())}

	var visitErr error
	o.Visit(func(key []byte, v *fastjson.Value) {
		if visitErr != nil {
			return
		}
		child, childErr := inferValue(v, maxSamples)
		if childErr != nil {
			visitErr = childErr
			return
		}

		nonNull := child.Kind() != jsonschema.KindNull
		n.Fields = append(n.Fields, jsonschema.ObjectField{
			Key:      string(key),
			Value:    child,
			Required: true,
			NonNull:  nonNull,
			Stats:    newFieldStats(v, child.Kind(), nonNull),
		})
	})
	if visitErr != nil {
		return nil, visitErr
	}

	if len(n.Fields) == 0 {
		n.Empty = true
		n.AllowAdditional = true
	}
	return n, nil
}

func newFieldStats(v *fastjson.Value, kind jsonschema.Kind, nonNull bool) *jsonschema.FieldStats {
	s := &jsonschema.FieldStats{
		Seen:   1,
		Kinds:  map[jsonschema.Kind]int{kind: 1},
		Sample: sampleText(v),
	}
	if nonNull {
		s.NonNull = 1
	}
	return s
}

const maxSampleLen = 50

func sampleText(v *fastjson.Value) string {
	b := v.MarshalTo(nil)
	if len(b) > maxSampleLen {
		b = b[:maxSampleLen]
	}
	return string(b)
}

func inferArray(vs []*fastjson.Value, maxSamples int) (jsonschema.Schema, error) {
	total := len(vs)
	if total == 0 {
		return &jsonschema.ArraySchema{Empty: true, Homogeneous: true}, nil
	}

	sampled := vs
	if total > maxSamples {
		sampled = vs[:maxSamples]
	}

	var item jsonschema.Schema
	homogeneous := true
	var firstKind jsonschema.Kind
	for i, e := range sampled {
		es, err := inferValue(e, maxSamples)
		if err != nil {
			return nil, err
		}
		k, err := Classify(e)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			firstKind = k
		} else if k != firstKind {
			homogeneous = false
		}
		item = jsonschema.Merge(item, es)
	}

	return &jsonschema.ArraySchema{
		Item:        item,
		MinItems:    total,
		MaxItems:    total,
		Homogeneous: homogeneous,
		SampleCount: len(sampled),
		TotalCount:  total,
	}, nil
}
