package model

// Table is a named summary with a fixed column schema.
type Table struct {
	Title   string
	Columns []string
	// Numeric marks columns whose cells are written as numbers. It may be
	// nil, e.g. for tables read back from a sheet.
	Numeric []bool
	Rows    [][]string
}

// ColumnIndex returns the position of name in Columns, or -1.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// IsNumeric reports whether column i is numeric.
func (t Table) IsNumeric(i int) bool {
	return i >= 0 && i < len(t.Numeric) && t.Numeric[i]
}

// Column returns the cells of the named column, or nil if absent.
func (t Table) Column(name string) []string {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out
}
