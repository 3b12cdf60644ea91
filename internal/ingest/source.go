// Package ingest turns a CSV edge file into normalized edge records.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/yungbote/edgehound/internal/domain"
	"github.com/yungbote/edgehound/internal/platform/importerr"
)

const utf8BOM = "\ufeff"

// Opener returns a fresh reader positioned at the start of the input.
type Opener func() (io.ReadCloser, error)

// Source is a validated, restartable input. Every call to Records re-opens
// the input, so two passes yield the same sequence.
type Source struct {
	name string
	open Opener
	spec domain.EdgeSpec
}

// Open validates the header of the file at path against spec.
func Open(path string, spec domain.EdgeSpec) (*Source, error) {
	return NewSource(path, func() (io.ReadCloser, error) { return os.Open(path) }, spec)
}

// NewSource validates the header read from open against spec. Only the
// header line is consumed.
func NewSource(name string, open Opener, spec domain.EdgeSpec) (*Source, error) {
	s := &Source{name: name, open: open, spec: spec}
	rc, err := open()
	if err != nil {
		return nil, importerr.New(importerr.KindSchema, "open", err)
	}
	defer rc.Close()

	header, err := headerReader(rc).Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("input is empty")
		}
		return nil, importerr.New(importerr.KindSchema, "header", fmt.Errorf("%s: %w", name, err))
	}
	if err := checkHeader(header, spec.Header()); err != nil {
		return nil, importerr.New(importerr.KindSchema, "header", fmt.Errorf("%s: %w", name, err))
	}
	return s, nil
}

func (s *Source) Name() string { return s.name }

// Records yields one record per data row. Malformed rows yield a row-scoped
// schema error and iteration continues; an I/O failure yields a final error.
func (s *Source) Records() iter.Seq2[domain.EdgeRecord, error] {
	return func(yield func(domain.EdgeRecord, error) bool) {
		rc, err := s.open()
		if err != nil {
			yield(domain.EdgeRecord{}, importerr.New(importerr.KindSchema, "open", err))
			return
		}
		defer rc.Close()

		r := newReader(rc)
		if _, err := r.Read(); err != nil {
			yield(domain.EdgeRecord{}, importerr.New(importerr.KindSchema, "header", err))
			return
		}
		for {
			fields, err := r.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				if !yield(domain.EdgeRecord{}, importerr.AtLine(importerr.KindSchema, "parse", pe.StartLine, pe.Err)) {
					return
				}
				continue
			}
			if err != nil {
				yield(domain.EdgeRecord{}, importerr.New(importerr.KindSchema, "read", err))
				return
			}
			if blank(fields) {
				continue
			}
			line, _ := r.FieldPos(0)
			rec, err := Normalize(fields, line, s.spec)
			if !yield(rec, err) {
				return
			}
		}
	}
}

// Count drains a fresh pass and returns the number of valid and skipped rows.
func (s *Source) Count() (valid, skipped int, err error) {
	for _, err := range s.Records() {
		switch {
		case err == nil:
			valid++
		case importerr.RowScoped(err):
			skipped++
		default:
			return valid, skipped, err
		}
	}
	return valid, skipped, nil
}

// headerReader keeps whitespace so the header must match byte for byte.
func headerReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return cr
}

// newReader reads data rows. Normalize trims every field anyway.
func newReader(r io.Reader) *csv.Reader {
	cr := headerReader(r)
	cr.TrimLeadingSpace = true
	return cr
}

func checkHeader(got, want []string) error {
	if len(got) > 0 {
		got[0] = strings.TrimPrefix(got[0], utf8BOM)
	}
	if len(got) != len(want) {
		return fmt.Errorf("header must be %q, found %q", strings.Join(want, ","), strings.Join(got, ","))
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("header must be %q, found %q", strings.Join(want, ","), strings.Join(got, ","))
		}
	}
	return nil
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
