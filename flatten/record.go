package flatten

import (
	"github.com/valyala/fastjson"

	"github.com/siegeai/siegeingest/infer"
	"github.com/siegeai/siegeingest/jsonschema"
)

// Field is one flat scalar produced from a record: path, scalar kind and
// the scalar value (nil for null). Ephemeral; rows are handed to a sink and
// dropped.
type Field struct {
	Name  string
	Kind  jsonschema.Kind
	Value any
}

// Row is one flattened output record, in traversal order.
type Row []Field

// Map returns the row as path→value. Field order is lost.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r))
	for _, f := range r {
		m[f.Name] = f.Value
	}
	return m
}

// Names returns the row's paths in traversal order.
func (r Row) Names() []string {
	ns := make([]string, len(r))
	for i, f := range r {
		ns[i] = f.Name
	}
	return ns
}

// Record flattens one decoded document against its schema. The
// schema steers array policy and mixed-field collapsing so produced names
// stay within the columns Schema derives; values the schema does not cover
// are still flattened from their own shape, never dropped.
func Record(v *fastjson.Value, s jsonschema.Schema, maxDepth int) (Row, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	out := make(Row, 0, 16)

	var err error
	switch v.Type() {
	case fastjson.TypeObject:
		var hint *jsonschema.ObjectSchema
		if s != nil && s.Kind() == jsonschema.KindObject {
			hint = s.AsObject()
		}
		err = recordObject(v, hint, "", 0, maxDepth, &out)
	case fastjson.TypeArray:
		var hint *jsonschema.ArraySchema
		if s != nil && s.Kind() == jsonschema.KindArray {
			hint = s.AsArray()
		}
		err = recordArray(v, hint, rootArrayName, 0, maxDepth, &out)
	default:
		err = recordValue(v, s, rootScalarName, 0, maxDepth, &out)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func recordValue(v *fastjson.Value, hint jsonschema.Schema, path string, depth, maxDepth int, out *Row) error {
	// A mixed-kind position is one column; composite values serialize into
	// it instead of expanding to paths the schema never named.
	if hint != nil && hint.Kind() == jsonschema.KindMixed {
		switch v.Type() {
		case fastjson.TypeObject, fastjson.TypeArray:
			*out = append(*out, Field{Name: path, Kind: jsonschema.KindString, Value: preview(v, mixedPreviewLen)})
			return nil
		}
		return appendScalar(v, path, out)
	}

	switch v.Type() {
	case fastjson.TypeObject:
		var oh *jsonschema.ObjectSchema
		if hint != nil && hint.Kind() == jsonschema.KindObject {
			oh = hint.AsObject()
		}
		return recordObject(v, oh, path, depth, maxDepth, out)
	case fastjson.TypeArray:
		var ah *jsonschema.ArraySchema
		if hint != nil && hint.Kind() == jsonschema.KindArray {
			ah = hint.AsArray()
		}
		return recordArray(v, ah, path, depth, maxDepth, out)
	default:
		return appendScalar(v, path, out)
	}
}

func appendScalar(v *fastjson.Value, path string, out *Row) error {
	kind, err := infer.Classify(v)
	if err != nil {
		return err
	}

	var val any
	switch kind {
	case jsonschema.KindNull:
		val = nil
	case jsonschema.KindBoolean:
		b, err := v.Bool()
		if err != nil {
			return err
		}
		val = b
	case jsonschema.KindInteger:
		n, err := v.Int64()
		if err != nil {
			return err
		}
		val = n
	case jsonschema.KindNumber:
		f, err := v.Float64()
		if err != nil {
			return err
		}
		val = f
	case jsonschema.KindString:
		val = string(v.GetStringBytes())
	}

	*out = append(*out, Field{Name: path, Kind: kind, Value: val})
	return nil
}

func recordObject(v *fastjson.Value, hint *jsonschema.ObjectSchema, path string, depth, maxDepth int, out *Row) error {
	if depth > maxDepth {
		*out = append(*out, Field{Name: path, Kind: jsonschema.KindString, Value: preview(v, previewLen)})
		return nil
	}

	o, err := v.Object()
	if err != nil {
		return err
	}

	var visitErr error
	o.Visit(func(key []byte, cv *fastjson.Value) {
		if visitErr != nil {
			return
		}
		var childHint jsonschema.Schema
		if hint != nil {
			if f := hint.Field(string(key)); f != nil {
				childHint = f.Value
			}
		}
		visitErr = recordValue(cv, childHint, childPath(path, string(key)), depth+1, maxDepth, out)
	})
	return visitErr
}

func recordArray(v *fastjson.Value, hint *jsonschema.ArraySchema, path string, depth, maxDepth int, out *Row) error {
	if depth > maxDepth {
		*out = append(*out, Field{Name: path, Kind: jsonschema.KindString, Value: preview(v, previewLen)})
		return nil
	}

	vs, err := v.Array()
	if err != nil {
		return err
	}
	if len(vs) == 0 {
		*out = append(*out, Field{Name: path, Kind: jsonschema.KindNull, Value: nil})
		return nil
	}

	kind, err := arrayItemKind(hint, vs)
	if err != nil {
		return err
	}

	switch kind {
	case jsonschema.KindObject:
		return recordObjectArray(vs, hint, path, depth, maxDepth, out)
	case jsonschema.KindNull, jsonschema.KindBoolean, jsonschema.KindInteger,
		jsonschema.KindNumber, jsonschema.KindString:
		return recordPrimitiveArray(vs, kind, path, out)
	default:
		*out = append(*out, Field{Name: path, Kind: jsonschema.KindString, Value: preview(v, mixedPreviewLen)})
		return nil
	}
}

// arrayItemKind picks the expansion policy: the consolidated item schema
// when one exists, the elements' own uniform kind otherwise.
func arrayItemKind(hint *jsonschema.ArraySchema, vs []*fastjson.Value) (jsonschema.Kind, error) {
	if hint != nil && hint.Item != nil {
		return hint.Item.Kind(), nil
	}

	first, err := infer.Classify(vs[0])
	if err != nil {
		return 0, err
	}
	for _, e := range vs[1:] {
		k, err := infer.Classify(e)
		if err != nil {
			return 0, err
		}
		if k != first {
			return jsonschema.KindMixed, nil
		}
	}
	return first, nil
}

func recordObjectArray(vs []*fastjson.Value, hint *jsonschema.ArraySchema, path string, depth, maxDepth int, out *Row) error {
	var itemHint jsonschema.Schema
	if hint != nil {
		itemHint = hint.Item
	}

	n := len(vs)
	for i := 0; i < n && i < maxObjectElems; i++ {
		if err := recordValue(vs[i], itemHint, indexPath(path, i), depth+1, maxDepth, out); err != nil {
			return err
		}
	}
	if n > maxObjectElems {
		*out = append(*out, Field{Name: suffixPath(path, "count"), Kind: jsonschema.KindInteger, Value: int64(n)})
		*out = append(*out, Field{Name: suffixPath(path, "truncated"), Kind: jsonschema.KindBoolean, Value: true})
	}
	return nil
}

func recordPrimitiveArray(vs []*fastjson.Value, kind jsonschema.Kind, path string, out *Row) error {
	if len(vs) <= maxPrimitiveElems {
		for i, e := range vs {
			if err := appendScalar(e, indexPath(path, i), out); err != nil {
				return err
			}
		}
		return nil
	}

	// Lossy summary: bounded width wins over completeness on long arrays.
	*out = append(*out, Field{Name: suffixPath(path, "count"), Kind: jsonschema.KindInteger, Value: int64(len(vs))})
	if err := appendScalar(vs[0], suffixPath(path, "first"), out); err != nil {
		return err
	}
	if err := appendScalar(vs[len(vs)-1], suffixPath(path, "last"), out); err != nil {
		return err
	}

	if kind == jsonschema.KindInteger || kind == jsonschema.KindNumber {
		sum := 0.0
		n := 0
		for _, e := range vs {
			f, err := e.Float64()
			if err != nil {
				continue
			}
			sum += f
			n++
		}
		if n > 0 {
			*out = append(*out, Field{Name: suffixPath(path, "sum"), Kind: jsonschema.KindNumber, Value: sum})
			*out = append(*out, Field{Name: suffixPath(path, "avg"), Kind: jsonschema.KindNumber, Value: sum / float64(n)})
		}
	}
	return nil
}

func preview(v *fastjson.Value, n int) string {
	return clampText(string(v.MarshalTo(nil)), n)
}
