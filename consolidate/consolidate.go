// Package consolidate folds many per-document schemas into one corpus
// schema and scores how consistently the corpus agrees on each field.
package consolidate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/siegeai/siegeingest/flatten"
	"github.com/siegeai/siegeingest/jsonschema"
)

// DefaultTolerance is the presence-rate threshold below which a field is
// flagged when the caller passes none.
const DefaultTolerance = 0.8

// Consolidate reduces schemas into one corpus schema with a strict
// left-to-right fold over jsonschema.Merge. Callers wanting parallelism
// should infer per-document schemas concurrently and fold afterwards; the
// merge itself is order-insensitive up to structural equivalence. An empty
// corpus is valid input and yields the neutral empty object schema.
func Consolidate(schemas []jsonschema.Schema) jsonschema.Schema {
	if len(schemas) == 0 {
		return jsonschema.NewEmptyObject()
	}
	if len(schemas) == 1 {
		return schemas[0].Clone()
	}

	acc := schemas[0]
	for _, s := range schemas[1:] {
		acc = jsonschema.Merge(acc, s)
	}
	return acc
}

// IssueKind categorizes a consistency finding.
type IssueKind string

const (
	IssueTypeInconsistency IssueKind = "type_inconsistency"
	IssueLowPresence       IssueKind = "low_presence"
)

// Issue is one flagged field.
type Issue struct {
	Field  string    `json:"field"`
	Kind   IssueKind `json:"kind"`
	Detail string    `json:"detail"`
}

// FieldScore holds the per-path consistency metrics, each in [0,1].
type FieldScore struct {
	PresenceRate    float64 `json:"presenceRate"`
	TypeConsistency float64 `json:"typeConsistency"`
	CompositeScore  float64 `json:"compositeScore"`
}

// Report is the corpus-wide consistency result.
type Report struct {
	// Consistent requires both the aggregate score meeting the tolerance
	// and an empty issue list.
	Consistent bool                  `json:"consistent"`
	Score      float64               `json:"score"`
	Tolerance  float64               `json:"tolerance"`
	Fields     map[string]FieldScore `json:"fields"`
	Issues     []Issue               `json:"issues"`
	Schemas    int                   `json:"schemas"`
}

// ValidateConsistency flattens every contributing schema independently and
// scores each observed field path: how often it is present, and how often
// its flattened kind agrees. The tolerance in [0,1] sets both the
// low-presence cutoff and the aggregate bar.
func ValidateConsistency(schemas []jsonschema.Schema, tolerance float64) Report {
	if tolerance < 0 {
		tolerance = 0
	} else if tolerance > 1 {
		tolerance = 1
	}

	rep := Report{
		Tolerance: tolerance,
		Fields:    make(map[string]FieldScore),
		Issues:    []Issue{},
		Schemas:   len(schemas),
	}
	if len(schemas) == 0 {
		rep.Consistent = true
		rep.Score = 1.0
		return rep
	}

	flat := make([]map[string]jsonschema.Kind, len(schemas))
	for i, s := range schemas {
		cols := flatten.Schema(s, "", flatten.DefaultMaxDepth)
		m := make(map[string]jsonschema.Kind, len(cols))
		for _, c := range cols {
			m[c.Name] = c.Kind
		}
		flat[i] = m
	}

	paths := make(map[string]struct{})
	for _, m := range flat {
		for p := range m {
			paths[p] = struct{}{}
		}
	}
	ordered := make([]string, 0, len(paths))
	for p := range paths {
		ordered = append(ordered, p)
	}
	sort.Strings(ordered)

	total := 0.0
	for _, path := range ordered {
		present := 0
		kinds := make(map[jsonschema.Kind]int)
		for _, m := range flat {
			if k, ok := m[path]; ok {
				present++
				kinds[k]++
			}
		}

		presenceRate := float64(present) / float64(len(schemas))
		// Every occurrence agreeing means one distinct kind and a score of
		// 1.0; each extra kind halves, thirds, ... the score.
		typeConsistency := 1.0 / float64(len(kinds))
		score := FieldScore{
			PresenceRate:    presenceRate,
			TypeConsistency: typeConsistency,
			CompositeScore:  (presenceRate + typeConsistency) / 2,
		}
		rep.Fields[path] = score
		total += score.CompositeScore

		if len(kinds) > 1 {
			rep.Issues = append(rep.Issues, Issue{
				Field:  path,
				Kind:   IssueTypeInconsistency,
				Detail: "kinds observed: " + kindList(kinds),
			})
		}
		if presenceRate < tolerance {
			rep.Issues = append(rep.Issues, Issue{
				Field:  path,
				Kind:   IssueLowPresence,
				Detail: fmt.Sprintf("present in %d of %d schemas", present, len(schemas)),
			})
		}
	}

	rep.Score = total / float64(len(ordered))
	if len(ordered) == 0 {
		rep.Score = 1.0
	}
	rep.Consistent = rep.Score >= tolerance && len(rep.Issues) == 0
	return rep
}

// HasIssue reports whether field was flagged with the given kind.
func (r Report) HasIssue(field string, kind IssueKind) bool {
	for _, is := range r.Issues {
		if is.Field == field && is.Kind == kind {
			return true
		}
	}
	return false
}

func kindList(kinds map[jsonschema.Kind]int) string {
	ks := make([]string, 0, len(kinds))
	for k := range kinds {
		ks = append(ks, k.String())
	}
	sort.Strings(ks)
	return strings.Join(ks, ", ")
}
