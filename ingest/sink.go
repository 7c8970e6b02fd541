package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/siegeai/siegeingest/flatten"
)

// TableSink receives the flattened output: one table definition, then row
// batches. Create/insert idempotency and conflict policy belong to the
// sink, not the engine.
type TableSink interface {
	EnsureTable(name string, cols []flatten.Column) error
	WriteBatch(rows []flatten.Row) error
	Close() error
}

// MemorySink collects everything in memory. Used by tests and the inspect
// command.
type MemorySink struct {
	Table   string
	Columns []flatten.Column
	Rows    []flatten.Row
}

func (s *MemorySink) EnsureTable(name string, cols []flatten.Column) error {
	s.Table = name
	s.Columns = cols
	return nil
}

func (s *MemorySink) WriteBatch(rows []flatten.Row) error {
	s.Rows = append(s.Rows, rows...)
	return nil
}

func (s *MemorySink) Close() error { return nil }

// CSVSink writes the table as CSV: a header of column names, then one line
// per record with cells matched to columns by path. Fields a row lacks stay
// empty; fields outside the column list are dropped, matching how a
// relational sink would behave.
type CSVSink struct {
	w    *csv.Writer
	c    io.Closer
	cols []flatten.Column
}

// NewCSVSink writes to w. When w is also an io.Closer, Close closes it.
func NewCSVSink(w io.Writer) *CSVSink {
	s := &CSVSink{w: csv.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		s.c = c
	}
	return s
}

func (s *CSVSink) EnsureTable(name string, cols []flatten.Column) error {
	s.cols = cols
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Name
	}
	return s.w.Write(header)
}

func (s *CSVSink) WriteBatch(rows []flatten.Row) error {
	if s.cols == nil {
		return fmt.Errorf("csv sink: EnsureTable not called")
	}
	for _, row := range rows {
		m := row.Map()
		cells := make([]string, len(s.cols))
		for i, c := range s.cols {
			if v, ok := m[c.Name]; ok {
				cells[i] = formatCell(v)
			}
		}
		if err := s.w.Write(cells); err != nil {
			return err
		}
	}
	s.w.Flush()
	return s.w.Error()
}

func (s *CSVSink) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return err
	}
	if s.c != nil {
		return s.c.Close()
	}
	return nil
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
