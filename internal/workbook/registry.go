package workbook

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Opener loads a statement file into an in-memory workbook.
type Opener interface {
	Open(path string) (*excelize.File, error)
	Format() string
}

// Registry holds openers keyed by file extension without the dot.
type Registry struct {
	openers map[string]Opener
}

// NewRegistry creates an empty opener registry.
func NewRegistry() *Registry {
	return &Registry{openers: make(map[string]Opener)}
}

// Register adds an opener. Panics on duplicate format.
func (r *Registry) Register(o Opener) {
	key := strings.ToLower(o.Format())
	if _, ok := r.openers[key]; ok {
		panic("duplicate opener format: " + key)
	}
	r.openers[key] = o
}

// Get returns the opener for format, or nil.
func (r *Registry) Get(format string) Opener {
	return r.openers[strings.ToLower(format)]
}

// Open picks an opener by the extension of path.
func (r *Registry) Open(path string) (*Book, error) {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	o := r.Get(format)
	if o == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
	f, err := o.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	return &Book{f: f, path: path}, nil
}

// DefaultRegistry returns a registry with the built-in openers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(XLSXOpener{})
	r.Register(CSVOpener{})
	return r
}

// XLSXOpener reads Office Open XML workbooks.
type XLSXOpener struct{}

func (XLSXOpener) Format() string { return "xlsx" }

func (XLSXOpener) Open(path string) (*excelize.File, error) {
	return excelize.OpenFile(path)
}

// CSVSheet is the sheet name a CSV statement is loaded into.
const CSVSheet = "Statement"

// CSVOpener loads a CSV export as a single-sheet workbook.
type CSVOpener struct{}

func (CSVOpener) Format() string { return "csv" }

func (CSVOpener) Open(path string) (*excelize.File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	cr := csv.NewReader(fh)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), CSVSheet); err != nil {
		f.Close()
		return nil, err
	}
	for i, rec := range records {
		cells := make([]any, len(rec))
		for j, v := range rec {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(CSVSheet, cell, &cells); err != nil {
			f.Close()
			return nil, fmt.Errorf("loading row %d: %w", i+1, err)
		}
	}
	return f, nil
}
