package flatten

import "github.com/siegeai/siegeingest/jsonschema"

// Column is one flat field a schema maps to: a dotted/bracketed path and
// the kind a sink should expect there.
type Column struct {
	Name string          `json:"name"`
	Kind jsonschema.Kind `json:"kind"`
}

// Schema flattens a schema node into its ordered column list. prefix seeds
// the path (usually empty); maxDepth bounds structural descent, with
// anything deeper collapsing to a single string preview column.
func Schema(s jsonschema.Schema, prefix string, maxDepth int) []Column {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if s == nil {
		return []Column{}
	}

	cols := make([]Column, 0, 16)
	switch s.Kind() {
	case jsonschema.KindObject:
		schemaObject(s.AsObject(), prefix, 0, maxDepth, &cols)
	case jsonschema.KindArray:
		base := prefix
		if base == "" {
			base = rootArrayName
		}
		schemaArray(s.AsArray(), base, 0, maxDepth, &cols)
	default:
		name := prefix
		if name == "" {
			name = rootScalarName
		}
		cols = append(cols, Column{Name: name, Kind: s.Kind()})
	}
	return cols
}

func schemaValue(s jsonschema.Schema, path string, depth, maxDepth int, out *[]Column) {
	switch s.Kind() {
	case jsonschema.KindObject:
		schemaObject(s.AsObject(), path, depth, maxDepth, out)
	case jsonschema.KindArray:
		schemaArray(s.AsArray(), path, depth, maxDepth, out)
	default:
		*out = append(*out, Column{Name: path, Kind: s.Kind()})
	}
}

func schemaObject(o *jsonschema.ObjectSchema, path string, depth, maxDepth int, out *[]Column) {
	if depth > maxDepth {
		*out = append(*out, Column{Name: path, Kind: jsonschema.KindString})
		return
	}
	for _, f := range o.Fields {
		if f.Value == nil {
			continue
		}
		schemaValue(f.Value, childPath(path, f.Key), depth+1, maxDepth, out)
	}
}

func schemaArray(a *jsonschema.ArraySchema, path string, depth, maxDepth int, out *[]Column) {
	if depth > maxDepth {
		*out = append(*out, Column{Name: path, Kind: jsonschema.KindString})
		return
	}

	if a.Item == nil {
		*out = append(*out, Column{Name: path, Kind: jsonschema.KindNull})
		return
	}

	switch a.Item.Kind() {
	case jsonschema.KindObject:
		// Per-index expansion plus the overflow markers a long record
		// would emit instead.
		for i := 0; i < maxObjectElems; i++ {
			schemaValue(a.Item, indexPath(path, i), depth+1, maxDepth, out)
		}
		*out = append(*out, Column{Name: suffixPath(path, "count"), Kind: jsonschema.KindInteger})
		*out = append(*out, Column{Name: suffixPath(path, "truncated"), Kind: jsonschema.KindBoolean})

	case jsonschema.KindNull, jsonschema.KindBoolean, jsonschema.KindInteger,
		jsonschema.KindNumber, jsonschema.KindString:
		k := a.Item.Kind()
		for i := 0; i < maxPrimitiveElems; i++ {
			*out = append(*out, Column{Name: indexPath(path, i), Kind: k})
		}
		*out = append(*out, Column{Name: suffixPath(path, "count"), Kind: jsonschema.KindInteger})
		*out = append(*out, Column{Name: suffixPath(path, "first"), Kind: k})
		*out = append(*out, Column{Name: suffixPath(path, "last"), Kind: k})
		if k == jsonschema.KindInteger || k == jsonschema.KindNumber {
			*out = append(*out, Column{Name: suffixPath(path, "sum"), Kind: jsonschema.KindNumber})
			*out = append(*out, Column{Name: suffixPath(path, "avg"), Kind: jsonschema.KindNumber})
		}

	default:
		// Mixed elements (or arrays of arrays) collapse to one serialized
		// text column.
		*out = append(*out, Column{Name: path, Kind: jsonschema.KindString})
	}
}
