// Package layout places several tables on one sheet and reads them back.
//
// A section is a one-cell title row, a header row, data rows and a blank
// separator row. Cells are returned as strings or float64 so the workbook
// writer can store numbers as numbers.
package layout

import (
	"strconv"
	"strings"

	"github.com/stmtdash/stmtdash/internal/model"
)

// SectionColumn is the leading column of a stacked sheet.
const SectionColumn = "Section"

// Serialize lays out tables top to bottom in the given order.
func Serialize(tables []model.Table) [][]any {
	var grid [][]any
	for _, t := range tables {
		grid = append(grid, []any{t.Title})
		grid = append(grid, stringCells(t.Columns))
		for _, row := range t.Rows {
			grid = append(grid, typedRow(t, row))
		}
		grid = append(grid, []any{})
	}
	return grid
}

// Stack concatenates labeled blocks vertically under a shared header. The
// header is SectionColumn followed by the union of block columns in order of
// first appearance; each data row starts with its block's title. Blocks are
// separated by a blank row.
func Stack(blocks []model.Table) [][]any {
	var columns []string
	index := make(map[string]int)
	numeric := make(map[string]bool)
	for _, b := range blocks {
		for i, c := range b.Columns {
			if _, ok := index[c]; !ok {
				index[c] = len(columns) + 1
				columns = append(columns, c)
			}
			if b.IsNumeric(i) {
				numeric[c] = true
			}
		}
	}

	grid := [][]any{stringCells(append([]string{SectionColumn}, columns...))}
	for bi, b := range blocks {
		if bi > 0 {
			grid = append(grid, []any{})
		}
		for _, row := range b.Rows {
			out := make([]any, len(columns)+1)
			out[0] = b.Title
			for i, cell := range row {
				if i >= len(b.Columns) {
					break
				}
				name := b.Columns[i]
				out[index[name]] = typedCell(cell, numeric[name])
			}
			grid = append(grid, out)
		}
	}
	return grid
}

func stringCells(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func typedRow(t model.Table, row []string) []any {
	out := make([]any, len(row))
	for i, cell := range row {
		out[i] = typedCell(cell, t.IsNumeric(i))
	}
	return out
}

// typedCell converts numeric cells to float64; anything unparseable stays text.
func typedCell(cell string, numeric bool) any {
	if !numeric {
		return cell
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return cell
	}
	return f
}
