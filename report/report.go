// Package report renders schema analysis and ingestion run summaries.
package report

import (
	"io"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/siegeai/siegeingest/consolidate"
	"github.com/siegeai/siegeingest/flatten"
	"github.com/siegeai/siegeingest/ingest"
	"github.com/siegeai/siegeingest/jsonschema"
)

// SchemaReport is the analysis of one consolidated schema.
type SchemaReport struct {
	Name        string    `json:"name"`
	GeneratedAt time.Time `json:"generatedAt"`
	RootKind    string    `json:"rootKind"`

	TotalColumns int            `json:"totalColumns"`
	MaxNesting   int            `json:"maxNesting"`
	ArrayColumns int            `json:"arrayColumns"`
	Kinds        map[string]int `json:"kinds"`

	Columns         []Column `json:"columns"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// Column is one flattened column in the report.
type Column struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// ForSchema analyses s under the default flattening depth.
func ForSchema(name string, s jsonschema.Schema) SchemaReport {
	cols := flatten.Schema(s, "", flatten.DefaultMaxDepth)

	rep := SchemaReport{
		Name:        name,
		GeneratedAt: time.Now().UTC(),
		RootKind:    s.Kind().String(),
		Kinds:       make(map[string]int),
		Columns:     make([]Column, 0, len(cols)),
	}

	for _, c := range cols {
		rep.Columns = append(rep.Columns, Column{Name: c.Name, Kind: c.Kind.String()})
		rep.Kinds[c.Kind.String()]++
		if n := strings.Count(c.Name, "."); n > rep.MaxNesting {
			rep.MaxNesting = n
		}
		if strings.Contains(c.Name, "[") {
			rep.ArrayColumns++
		}
	}
	rep.TotalColumns = len(cols)
	rep.Recommendations = recommendations(s, rep)

	sort.Slice(rep.Columns, func(i, j int) bool { return rep.Columns[i].Name < rep.Columns[j].Name })
	return rep
}

func recommendations(s jsonschema.Schema, rep SchemaReport) []string {
	var rs []string
	if rep.MaxNesting > 5 {
		rs = append(rs, "deeply nested structure; consider lowering maxDepth or normalizing upstream")
	}
	if rep.TotalColumns > 100 {
		rs = append(rs, "wide table; consider splitting the corpus or normalizing")
	}
	if rep.TotalColumns > 0 && rep.ArrayColumns*3 > rep.TotalColumns {
		rs = append(rs, "array-heavy corpus; review the array expansion policy")
	}
	if s.Kind() == jsonschema.KindObject && len(s.AsObject().RequiredKeys()) == 0 {
		rs = append(rs, "no field is required across the corpus; presence is inconsistent")
	}
	return rs
}

// RunReport summarizes one ingestion run for export.
type RunReport struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generatedAt"`
	Table       string    `json:"table"`

	Documents int `json:"documents"`
	Skipped   int `json:"skipped"`
	Invalid   int `json:"invalid"`
	Rows      int `json:"rows"`
	Columns   int `json:"columns"`

	ElapsedSeconds float64            `json:"elapsedSeconds"`
	Consistency    consolidate.Report `json:"consistency"`
}

// ForRun builds the exportable summary of res.
func ForRun(res *ingest.RunResult, table string) RunReport {
	return RunReport{
		ID:             uuid.NewString(),
		GeneratedAt:    time.Now().UTC(),
		Table:          table,
		Documents:      res.Documents,
		Skipped:        res.Skipped,
		Invalid:        res.Invalid,
		Rows:           res.Rows,
		Columns:        len(res.Columns),
		ElapsedSeconds: res.Elapsed.Seconds(),
		Consistency:    res.Report,
	}
}

// WriteJSON renders any report value as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
