package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stmtdash/stmtdash/internal/model"
)

// Column is a canonical statement column name.
type Column string

const (
	ColReference   Column = "Transaction Reference"
	ColTransDate   Column = "Trans. Date"
	ColDescription Column = "Description"
	ColDebit       Column = "Debit"
	ColCredit      Column = "Credit"
	ColBalance     Column = "Balance After"
	ColChannel     Column = "Channel"
	ColValueDate   Column = "Value Date"
)

// DefaultHeaderRow is the zero-based row holding column names; the rows
// above it carry account details.
const DefaultHeaderRow = 6

// PrimaryColumns must all be present on the transaction sheet.
var PrimaryColumns = []Column{
	ColReference, ColTransDate, ColDescription, ColDebit,
	ColCredit, ColBalance, ColChannel, ColValueDate,
}

// SavingsColumns must all be present on the savings sheet.
var SavingsColumns = []Column{
	ColTransDate, ColDescription, ColDebit, ColCredit,
	ColBalance, ColChannel, ColReference,
}

var knownColumns = []Column{
	ColReference, ColTransDate, ColDescription, ColDebit,
	ColCredit, ColBalance, ColChannel, ColValueDate,
}

// ErrHeaderNotFound means the sheet ends before the header row.
var ErrHeaderNotFound = errors.New("header row not found")

// MissingColumnsError lists required columns absent from a sheet header.
type MissingColumnsError struct {
	Sheet   string
	Missing []Column
}

func (e *MissingColumnsError) Error() string {
	names := make([]string, len(e.Missing))
	for i, c := range e.Missing {
		names[i] = string(c)
	}
	return fmt.Sprintf("sheet %q is missing required columns: %s", e.Sheet, strings.Join(names, ", "))
}

// canonical normalizes a header cell for matching: trimmed, lower-cased,
// inner whitespace collapsed, and a trailing "(…)" currency suffix dropped,
// so "Debit(₦)" matches Debit.
func canonical(h string) string {
	h = strings.TrimSpace(h)
	if strings.HasSuffix(h, ")") {
		if i := strings.LastIndex(h, "("); i > 0 {
			h = h[:i]
		}
	}
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

// ResolveColumns maps known columns to their position in header. The first
// matching header cell wins.
func ResolveColumns(sheet string, header []string, required []Column) (map[Column]int, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		key := canonical(h)
		if _, dup := byName[key]; !dup && key != "" {
			byName[key] = i
		}
	}

	cols := make(map[Column]int, len(knownColumns))
	for _, c := range knownColumns {
		if i, ok := byName[canonical(string(c))]; ok {
			cols[c] = i
		}
	}

	var missing []Column
	for _, c := range required {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Sheet: sheet, Missing: missing}
	}
	return cols, nil
}

// ReadRows turns a sheet grid into raw rows. The header sits at headerRow;
// every later non-blank row is a transaction.
func ReadRows(sheet string, grid [][]string, headerRow int, required []Column) ([]model.RawRow, error) {
	if headerRow < 0 || len(grid) <= headerRow {
		return nil, fmt.Errorf("sheet %q: %w at row %d", sheet, ErrHeaderNotFound, headerRow)
	}

	cols, err := ResolveColumns(sheet, grid[headerRow], required)
	if err != nil {
		return nil, err
	}

	var rows []model.RawRow
	for _, rec := range grid[headerRow+1:] {
		if isBlank(rec) {
			continue
		}
		get := func(c Column) string {
			i, ok := cols[c]
			if !ok || i >= len(rec) {
				return ""
			}
			return rec[i]
		}
		rows = append(rows, model.RawRow{
			Reference:   get(ColReference),
			Timestamp:   get(ColTransDate),
			Description: get(ColDescription),
			Debit:       get(ColDebit),
			Credit:      get(ColCredit),
			Balance:     get(ColBalance),
			Channel:     get(ColChannel),
			ValueDate:   get(ColValueDate),
		})
	}
	return rows, nil
}

// ReadPrimary reads the transaction sheet.
func ReadPrimary(sheet string, grid [][]string, headerRow int) ([]model.RawRow, error) {
	return ReadRows(sheet, grid, headerRow, PrimaryColumns)
}

// ReadSavings reads the savings sheet.
func ReadSavings(sheet string, grid [][]string, headerRow int) ([]model.RawRow, error) {
	return ReadRows(sheet, grid, headerRow, SavingsColumns)
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
