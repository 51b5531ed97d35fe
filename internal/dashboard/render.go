package dashboard

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/stmtdash/stmtdash/internal/model"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"num": func(v float64) string { return fmt.Sprintf("%.1f", v) },
}).ParseFS(templatesFS, "templates/dashboard.html"))

type page struct {
	Title   string
	Metrics []Metric
	Plots   []plot
	Dataset *grid
}

type cell struct {
	Value   string
	Numeric bool
}

type grid struct {
	Columns []string
	Rows    [][]cell
}

func newGrid(t model.Table) *grid {
	if len(t.Columns) == 0 {
		return nil
	}
	g := &grid{Columns: t.Columns, Rows: make([][]cell, len(t.Rows))}
	for i, row := range t.Rows {
		g.Rows[i] = make([]cell, len(row))
		for j, v := range row {
			g.Rows[i][j] = cell{Value: v, Numeric: t.IsNumeric(j)}
		}
	}
	return g
}

// Render writes v as a self-contained HTML page.
func Render(w io.Writer, v View) error {
	p := page{Title: v.Title, Metrics: v.Metrics, Dataset: newGrid(v.Dataset)}
	for _, c := range v.Charts {
		p.Plots = append(p.Plots, layoutChart(c))
	}
	if err := pageTemplate.Execute(w, p); err != nil {
		return fmt.Errorf("rendering dashboard: %w", err)
	}
	return nil
}
