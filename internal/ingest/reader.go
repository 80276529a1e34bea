// Package ingest loads the catalogue CSV exports into the database in
// foreign-key order.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"ytcatalog-backend/internal/apperrors"
)

// Row is one CSV record keyed by header name. Line is the 1-based line the
// record starts on.
type Row struct {
	Line   int
	Values map[string]string
}

// Warning describes a malformed record that was skipped.
type Warning struct {
	File    string
	Line    int
	Message string
}

// Source opens CSV files by name.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// DirSource reads files from a local directory.
type DirSource struct {
	Root string
}

func (d DirSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(d.Root, name))
}

// ReadCSV parses r with its first line as the header. Records with the wrong
// number of fields or broken quoting are reported as warnings and skipped.
// Empty lines are ignored.
func ReadCSV(r io.Reader, name string) ([]Row, []Warning, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(decoded)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var (
		rows     []Row
		warnings []Warning
	)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				warnings = append(warnings, Warning{File: name, Line: pe.StartLine, Message: pe.Err.Error()})
				continue
			}
			return nil, nil, err
		}

		line, _ := cr.FieldPos(0)
		values := make(map[string]string, len(header))
		for i, col := range header {
			values[col] = record[i]
		}
		rows = append(rows, Row{Line: line, Values: values})
	}

	return rows, warnings, nil
}

// ParseFile opens name through src and parses it. Any failure to open or
// read the file is returned as *apperrors.ParseError.
func ParseFile(ctx context.Context, src Source, name string) ([]Row, []Warning, error) {
	f, err := src.Open(ctx, name)
	if err != nil {
		return nil, nil, &apperrors.ParseError{Path: name, Err: err}
	}
	defer f.Close()

	rows, warnings, err := ReadCSV(f, name)
	if err != nil {
		return nil, nil, &apperrors.ParseError{Path: name, Err: err}
	}
	return rows, warnings, nil
}
