// Package source reads book review rows from the data directory.
// Files matching the configured patterns are read in sorted order; CSV and parquet are supported.
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Row is one raw review record.
type Row struct {
	ID       string `parquet:"id"`
	Author   string `parquet:"author"`
	Title    string `parquet:"title"`
	Text     string `parquet:"text"`
	Category string `parquet:"category"`
}

// RowFunc receives each row with its file. Returning false stops reading.
type RowFunc func(file string, row Row) bool

// Source lists and reads review files.
type Source struct {
	dir      string
	patterns []string
}

// New creates a source over dir. Patterns are globs relative to dir.
func New(dir string, patterns []string) *Source {
	return &Source{dir: dir, patterns: patterns}
}

// Files returns every matching file, sorted and deduplicated.
func (s *Source) Files() ([]string, error) {
	var files []string
	for _, p := range s.patterns {
		matches, err := filepath.Glob(filepath.Join(s.dir, p))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", p, err)
		}
		files = append(files, matches...)
	}
	slices.Sort(files)
	files = slices.Compact(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("no review files in %s matching %v", s.dir, s.patterns)
	}
	return files, nil
}

// Read streams rows of every file to fn.
func (s *Source) Read(ctx context.Context, fn RowFunc) error {
	files, err := s.Files()
	if err != nil {
		return err
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		var (
			more bool
			err  error
		)
		switch strings.ToLower(filepath.Ext(f)) {
		case ".csv":
			more, err = readCSV(ctx, f, fn)
		case ".parquet":
			more, err = readParquet(ctx, f, fn)
		default:
			err = fmt.Errorf("unsupported file type")
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", filepath.Base(f), err)
		}
		if !more {
			return nil
		}
	}
	return nil
}

func readCSV(ctx context.Context, path string, fn RowFunc) (bool, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return false, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return false, fmt.Errorf("read header: %w", err)
	}
	cols := resolveColumns(header)
	if cols.id < 0 || cols.text < 0 {
		return false, fmt.Errorf("header must contain id and text columns, got %v", header)
	}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		if err != nil {
			return false, fmt.Errorf("read record: %w", err)
		}
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if !fn(path, cols.row(rec)) {
			return false, nil
		}
	}
}

func readParquet(ctx context.Context, path string, fn RowFunc) (bool, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return false, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("stat: %w", err)
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return false, fmt.Errorf("open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[Row](pf)
	defer func() { _ = reader.Close() }()

	buf := make([]Row, 256)
	for {
		n, readErr := reader.Read(buf)
		for i := 0; i < n; i++ {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			if !fn(path, buf[i]) {
				return false, nil
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return true, nil
			}
			return false, fmt.Errorf("read rows: %w", readErr)
		}
	}
}

// columns holds CSV header positions; -1 means absent.
type columns struct {
	id, author, title, text, category int
}

func resolveColumns(header []string) columns {
	c := columns{id: -1, author: -1, title: -1, text: -1, category: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "id":
			c.id = i
		case "author":
			c.author = i
		case "title":
			c.title = i
		case "text":
			c.text = i
		case "category":
			c.category = i
		}
	}
	return c
}

func (c columns) row(rec []string) Row {
	get := func(i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	return Row{
		ID:       get(c.id),
		Author:   get(c.author),
		Title:    get(c.title),
		Text:     get(c.text),
		Category: get(c.category),
	}
}
