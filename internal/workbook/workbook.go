// Package workbook reads statement workbooks and writes derived sheets back
// with a single atomic save.
package workbook

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrSheetNotFound means a named sheet does not exist.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrUnsupportedFormat means no opener handles the file extension.
	ErrUnsupportedFormat = errors.New("unsupported statement format")
)

// Book is an open workbook. All edits stay in memory until SaveAs.
type Book struct {
	f    *excelize.File
	path string
}

// Open loads path with the default registry.
func Open(path string) (*Book, error) {
	return DefaultRegistry().Open(path)
}

// New returns an empty workbook with a single default sheet.
func New() *Book {
	return &Book{f: excelize.NewFile()}
}

// Path is the file the book was opened from, or "".
func (b *Book) Path() string { return b.path }

// SheetNames lists sheets in workbook order.
func (b *Book) SheetNames() []string {
	return b.f.GetSheetList()
}

// FirstSheet returns the first sheet name.
func (b *Book) FirstSheet() string {
	return b.f.GetSheetName(0)
}

// Has reports whether sheet exists.
func (b *Book) Has(sheet string) bool {
	return slices.Contains(b.SheetNames(), sheet)
}

// RawRows returns unformatted cell values: numbers keep full precision and
// date cells come back as Excel serial numbers rather than display text.
func (b *Book) RawRows(sheet string) ([][]string, error) {
	if !b.Has(sheet) {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}
	rows, err := b.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// Replace overwrites sheet with rows, creating it if needed. A nil or empty
// row leaves a blank line.
func (b *Book) Replace(sheet string, rows [][]any) error {
	if b.Has(sheet) {
		if len(b.SheetNames()) == 1 {
			return fmt.Errorf("replacing %q: cannot drop the only sheet", sheet)
		}
		if err := b.f.DeleteSheet(sheet); err != nil {
			return fmt.Errorf("clearing sheet %q: %w", sheet, err)
		}
	}
	if _, err := b.f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet %q: %w", sheet, err)
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := b.f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

// Remove deletes sheet if present. The last remaining sheet is never removed.
func (b *Book) Remove(sheet string) error {
	if !b.Has(sheet) {
		return nil
	}
	if err := b.f.DeleteSheet(sheet); err != nil {
		return fmt.Errorf("removing sheet %q: %w", sheet, err)
	}
	return nil
}

// SaveAs writes the whole workbook to a temp file next to path and renames
// it into place, so readers never observe a partial file.
func (b *Book) SaveAs(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".stmtdash-*.xlsx")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := b.f.SaveAs(tmpPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing workbook: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}
	b.path = path
	return nil
}

// Close releases the workbook's temp resources.
func (b *Book) Close() error {
	return b.f.Close()
}
