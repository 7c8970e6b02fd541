package ingest

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/valyala/fastjson"
)

// Document is one decoded JSON value plus the name it came from.
type Document struct {
	Name  string
	Value *fastjson.Value
}

// DocumentSource yields decoded documents. Next returns io.EOF when the
// source is exhausted; any other error concerns the current document only
// and the source stays usable.
type DocumentSource interface {
	Next() (*Document, error)
}

// DirectorySource walks a directory for *.json files and decodes them one
// at a time. Files are visited in sorted path order so runs are
// reproducible.
type DirectorySource struct {
	files []string
	idx   int
}

// NewDirectorySource discovers the JSON files under dir. With recursive
// set, subdirectories are walked too.
func NewDirectorySource(dir string, recursive bool) (*DirectorySource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan %s: not a directory", dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	sort.Strings(files)
	return &DirectorySource{files: files}, nil
}

// Len reports how many files were discovered.
func (s *DirectorySource) Len() int {
	return len(s.files)
}

func (s *DirectorySource) Next() (*Document, error) {
	if s.idx >= len(s.files) {
		return nil, io.EOF
	}
	path := s.files[s.idx]
	s.idx++

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	// ParseBytes gives each document its own arena; values from earlier
	// documents stay valid while the corpus is held in memory.
	v, err := fastjson.ParseBytes(b)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &Document{Name: filepath.Base(path), Value: v}, nil
}

// ValueSource adapts already-decoded values, mainly for tests and embedding.
type ValueSource struct {
	docs []*Document
	idx  int
}

func NewValueSource(docs ...*Document) *ValueSource {
	return &ValueSource{docs: docs}
}

func (s *ValueSource) Next() (*Document, error) {
	if s.idx >= len(s.docs) {
		return nil, io.EOF
	}
	d := s.docs[s.idx]
	s.idx++
	return d, nil
}
