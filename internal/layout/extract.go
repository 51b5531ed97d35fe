package layout

import (
	"strings"

	"github.com/stmtdash/stmtdash/internal/model"
)

// Sections are the tables recovered from a sheet, in sheet order.
type Sections []model.Table

// Get returns the section with the given title.
func (s Sections) Get(title string) (model.Table, bool) {
	return s.Find(func(t string) bool { return t == title })
}

// Find returns the first section whose title satisfies match.
func (s Sections) Find(match func(title string) bool) (model.Table, bool) {
	for _, t := range s {
		if match(t.Title) {
			return t, true
		}
	}
	return model.Table{}, false
}

// Titles lists section titles in order.
func (s Sections) Titles() []string {
	out := make([]string, len(s))
	for i, t := range s {
		out[i] = t.Title
	}
	return out
}

type rowKind int

const (
	blankRow rowKind = iota
	titleRow
	dataRow
)

// classify counts the non-empty cells of a row: none is blank, exactly one
// is a section title, more is data.
func classify(row []string) (rowKind, string) {
	n := 0
	var first string
	for _, c := range row {
		if c = strings.TrimSpace(c); c != "" {
			if n == 0 {
				first = c
			}
			n++
		}
	}
	switch n {
	case 0:
		return blankRow, ""
	case 1:
		return titleRow, first
	default:
		return dataRow, ""
	}
}

type extractState int

const (
	noSection extractState = iota
	inSection
)

// extractor is the row-scanning state machine behind Extract.
//
//	noSection --title--> inSection
//	inSection --title--> inSection (previous section flushed)
//	inSection --data---> inSection (row buffered)
//	any       --blank--> unchanged
//	noSection --data---> noSection (row ignored)
type extractor struct {
	state extractState
	title string
	rows  [][]string
	out   Sections
}

func (x *extractor) feed(row []string) {
	kind, title := classify(row)
	switch kind {
	case blankRow:
		return
	case titleRow:
		if x.state == inSection {
			x.flush()
		}
		x.state = inSection
		x.title = title
		x.rows = nil
	case dataRow:
		if x.state == inSection {
			x.rows = append(x.rows, row)
		}
	}
}

func (x *extractor) flush() {
	t := model.Table{Title: x.title}
	if len(x.rows) > 0 {
		t.Columns = header(x.rows[0])
		t.Rows = make([][]string, 0, len(x.rows)-1)
		for _, r := range x.rows[1:] {
			t.Rows = append(t.Rows, fit(r, len(t.Columns)))
		}
	}
	x.out = append(x.out, t)
}

// Extract parses a sheet laid out by Serialize back into sections. Sections
// without rows become tables without columns; rows before the first title
// are ignored.
func Extract(rows [][]string) Sections {
	x := &extractor{}
	for _, row := range rows {
		x.feed(row)
	}
	if x.state == inSection {
		x.flush()
	}
	return x.out
}

// Flat reads a sheet whose first row is its header, such as Cleaned_Data,
// as a single table. Blank rows are skipped.
func Flat(title string, rows [][]string) model.Table {
	t := model.Table{Title: title}
	if len(rows) == 0 {
		return t
	}
	t.Columns = header(rows[0])
	t.Rows = make([][]string, 0, len(rows)-1)
	for _, r := range rows[1:] {
		if kind, _ := classify(r); kind == blankRow {
			continue
		}
		t.Rows = append(t.Rows, fit(r, len(t.Columns)))
	}
	return t
}

// header trims cells and drops trailing empty ones.
func header(row []string) []string {
	cols := make([]string, len(row))
	last := -1
	for i, c := range row {
		cols[i] = strings.TrimSpace(c)
		if cols[i] != "" {
			last = i
		}
	}
	return cols[:last+1]
}

// fit pads or truncates a data row to width cells.
func fit(row []string, width int) []string {
	out := make([]string, width)
	for i := 0; i < width && i < len(row); i++ {
		out[i] = strings.TrimSpace(row[i])
	}
	return out
}
