package jsonschema

import "sort"

// Merge unifies two schema nodes into a node accepting every value either
// operand accepts. It never mutates its operands; the result shares no
// mutable state with them, so merged schemas stay safe across shared
// subtrees. Repeated application is effectively commutative and
// associative, which is what makes the consolidation fold order-insensitive.
func Merge(a, b Schema) Schema {
	if a == nil && b == nil {
		return nil
	}
	if a != nil && b == nil {
		return a.Clone()
	}
	if a == nil && b != nil {
		return b.Clone()
	}

	// A null operand never forces a mixed union; it marks the other side
	// nullable and is otherwise absorbed.
	if a.Kind() == KindNull && b.Kind() == KindNull {
		return &ScalarSchema{K: KindNull}
	}
	if a.Kind() == KindNull {
		return withNullable(b.Clone())
	}
	if b.Kind() == KindNull {
		return withNullable(a.Clone())
	}

	if a.Kind() == KindMixed || b.Kind() == KindMixed || a.Kind() != b.Kind() {
		return mergeIntoMixed(a, b)
	}

	switch a.Kind() {
	case KindObject:
		return mergeObjects(a.AsObject(), b.AsObject())
	case KindArray:
		return mergeArrays(a.AsArray(), b.AsArray())
	default:
		return mergeScalars(a.AsScalar(), b.AsScalar())
	}
}

func withNullable(s Schema) Schema {
	switch s.Kind() {
	case KindArray:
		s.AsArray().Null = true
	case KindObject:
		s.AsObject().Null = true
	case KindMixed:
		s.AsMixed().Null = true
	default:
		s.AsScalar().Null = true
	}
	return s
}

func mergeObjects(a, b *ObjectSchema) *ObjectSchema {
	out := &ObjectSchema{
		Fields:          make([]ObjectField, 0, len(a.Fields)),
		Null:            a.Null || b.Null,
		AllowAdditional: a.AllowAdditional || b.AllowAdditional,
		Empty:           a.Empty && b.Empty,
	}

	// a's field order wins; keys only b saw append afterwards. Keeps
	// column order stable under the left-to-right consolidation fold.
	for _, fa := range a.Fields {
		fb := b.Field(fa.Key)
		if fb == nil {
			out.Fields = append(out.Fields, carryField(fa))
			continue
		}
		out.Fields = append(out.Fields, ObjectField{
			Key:      fa.Key,
			Value:    Merge(fa.Value, fb.Value),
			Required: fa.Required && fb.Required,
			NonNull:  fa.NonNull && fb.NonNull,
			Stats:    mergeStats(fa.Stats, fb.Stats),
		})
	}

	for _, fb := range b.Fields {
		if a.Field(fb.Key) == nil {
			out.Fields = append(out.Fields, carryField(fb))
		}
	}

	return out
}

// carryField copies a field present on only one side of a merge. The other
// side never saw the key, so it stops being required and turns nullable.
func carryField(f ObjectField) ObjectField {
	out := ObjectField{Key: f.Key, Required: false, NonNull: false}
	if f.Value != nil {
		out.Value = withNullable(f.Value.Clone())
	}
	if f.Stats != nil {
		out.Stats = f.Stats.clone()
	}
	return out
}

func mergeStats(a, b *FieldStats) *FieldStats {
	if a == nil && b == nil {
		return nil
	}
	if a == nil {
		return b.clone()
	}
	if b == nil {
		return a.clone()
	}
	out := a.clone()
	out.Seen += b.Seen
	out.NonNull += b.NonNull
	for k, n := range b.Kinds {
		out.Kinds[k] += n
	}
	if out.Sample == "" {
		out.Sample = b.Sample
	}
	return out
}

func mergeArrays(a, b *ArraySchema) *ArraySchema {
	return &ArraySchema{
		Item:        Merge(a.Item, b.Item),
		Null:        a.Null || b.Null,
		MinItems:    min(a.MinItems, b.MinItems),
		MaxItems:    max(a.MaxItems, b.MaxItems),
		Homogeneous: a.Homogeneous && b.Homogeneous && sameItemKind(a.Item, b.Item),
		Empty:       a.Empty && b.Empty,
		SampleCount: a.SampleCount + b.SampleCount,
		TotalCount:  a.TotalCount + b.TotalCount,
	}
}

func sameItemKind(a, b Schema) bool {
	if a == nil || b == nil {
		return true
	}
	return a.Kind() == b.Kind()
}

func mergeScalars(a, b *ScalarSchema) *ScalarSchema {
	out := &ScalarSchema{
		K:      a.K,
		Null:   a.Null || b.Null,
		Min:    widenMin(a.Min, b.Min),
		Max:    widenMax(a.Max, b.Max),
		MinLen: widenMinLen(a.MinLen, b.MinLen),
		MaxLen: widenMaxLen(a.MaxLen, b.MaxLen),
	}
	// Pattern metadata survives only when both sides agree.
	if a.Pattern == b.Pattern {
		out.Pattern = a.Pattern
	}
	return out
}

func mergeIntoMixed(a, b Schema) *MixedSchema {
	set := make(map[Kind]struct{}, 4)
	addCandidates(set, a)
	addCandidates(set, b)

	cs := make([]Kind, 0, len(set))
	for k := range set {
		cs = append(cs, k)
	}
	sort.Slice(cs, func(i, j int) bool { return cs[i] < cs[j] })

	return &MixedSchema{Candidates: cs, Null: a.Nullable() || b.Nullable()}
}

// addCandidates flattens s into the candidate set; an existing mixed union
// contributes its candidates rather than nesting.
func addCandidates(set map[Kind]struct{}, s Schema) {
	if s.Kind() == KindMixed {
		for _, k := range s.AsMixed().Candidates {
			set[k] = struct{}{}
		}
		return
	}
	set[s.Kind()] = struct{}{}
}

// A constraint missing on one side means that side is unconstrained, so the
// union interval is unconstrained too.

func widenMin(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	v := *a
	if *b < v {
		v = *b
	}
	return &v
}

func widenMax(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	v := *a
	if *b > v {
		v = *b
	}
	return &v
}

func widenMinLen(a, b *int) *int {
	if a == nil || b == nil {
		return nil
	}
	v := *a
	if *b < v {
		v = *b
	}
	return &v
}

func widenMaxLen(a, b *int) *int {
	if a == nil || b == nil {
		return nil
	}
	v := *a
	if *b > v {
		v = *b
	}
	return &v
}
