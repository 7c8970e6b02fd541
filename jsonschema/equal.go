package jsonschema

// Equal reports structural equivalence: same kind, nullability, properties,
// required/non-null flags, item schemas and constraints. Observation
// bookkeeping (FieldStats, sample/total counts) is ignored, so a schema
// merged with itself stays Equal to itself.
func Equal(a, b Schema) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() || a.Nullable() != b.Nullable() {
		return false
	}

	switch a.Kind() {
	case KindObject:
		return equalObjects(a.AsObject(), b.AsObject())
	case KindArray:
		return equalArrays(a.AsArray(), b.AsArray())
	case KindMixed:
		return equalMixed(a.AsMixed(), b.AsMixed())
	default:
		return equalScalars(a.AsScalar(), b.AsScalar())
	}
}

func equalObjects(a, b *ObjectSchema) bool {
	if len(a.Fields) != len(b.Fields) || a.AllowAdditional != b.AllowAdditional {
		return false
	}
	for i := range a.Fields {
		fa := &a.Fields[i]
		fb := b.Field(fa.Key)
		if fb == nil || fa.Required != fb.Required || fa.NonNull != fb.NonNull {
			return false
		}
		if !Equal(fa.Value, fb.Value) {
			return false
		}
	}
	return true
}

func equalArrays(a, b *ArraySchema) bool {
	if a.MinItems != b.MinItems || a.MaxItems != b.MaxItems {
		return false
	}
	if a.Homogeneous != b.Homogeneous || a.Empty != b.Empty {
		return false
	}
	return Equal(a.Item, b.Item)
}

func equalMixed(a, b *MixedSchema) bool {
	if len(a.Candidates) != len(b.Candidates) {
		return false
	}
	for _, k := range a.Candidates {
		if !b.Has(k) {
			return false
		}
	}
	return true
}

func equalScalars(a, b *ScalarSchema) bool {
	return a.K == b.K &&
		a.Pattern == b.Pattern &&
		equalFloatPtr(a.Min, b.Min) &&
		equalFloatPtr(a.Max, b.Max) &&
		equalIntPtr(a.MinLen, b.MinLen) &&
		equalIntPtr(a.MaxLen, b.MaxLen)
}

func equalFloatPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
