// Package dashboard turns the sections of an Analysis sheet into a static
// HTML report.
package dashboard

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/stmtdash/stmtdash/internal/analysis"
	"github.com/stmtdash/stmtdash/internal/cleaned"
	"github.com/stmtdash/stmtdash/internal/layout"
	"github.com/stmtdash/stmtdash/internal/model"
)

// ErrUnknownCurrency means the currency code is not ISO 4217.
var ErrUnknownCurrency = errors.New("unknown currency")

// Kind selects how a chart is drawn.
type Kind string

const (
	KindGroupedBar    Kind = "grouped-bar"
	KindHorizontalBar Kind = "horizontal-bar"
	KindLine          Kind = "line"
)

// Tones color a series.
const (
	ToneCredit = "credit"
	ToneDebit  = "debit"
)

// Series is one named run of values, aligned with Chart.Categories.
type Series struct {
	Name   string
	Tone   string
	Values []float64
}

// Chart is a chart before layout.
type Chart struct {
	Title      string
	Kind       Kind
	Categories []string
	Series     []Series
}

// Metric is a headline figure.
type Metric struct {
	Label string
	Value string
}

// View is everything the page shows.
type View struct {
	Title   string
	Metrics []Metric
	Charts  []Chart
	Dataset model.Table // cleaned transactions; no columns when absent
}

// Options configure Build.
type Options struct {
	Title    string
	Currency string      // ISO 4217 code, e.g. NGN
	Dataset  model.Table // optional Cleaned_Data table shown under Dataset
}

// Build maps extracted sections to a view. Sections that are missing or
// have no rows are left out.
func Build(sections layout.Sections, opts Options) (View, error) {
	currency := money.GetCurrency(strings.ToUpper(opts.Currency))
	if currency == nil {
		return View{}, fmt.Errorf("%w: %q", ErrUnknownCurrency, opts.Currency)
	}

	v := View{Title: opts.Title, Dataset: dataset(opts.Dataset)}
	if t, ok := sections.Get(analysis.TitleOverall); ok {
		v.Metrics = metrics(t, currency)
	}
	if t, ok := sections.Get(analysis.TitleMonthly); ok && len(t.Rows) > 0 {
		v.Charts = append(v.Charts, flowChart("Monthly Cash Flow", KindGroupedBar, t, analysis.ColMonth))
	}
	if t, ok := sections.Get(analysis.TitlePlatform); ok && len(t.Rows) > 0 {
		cats := cells(t, analysis.ColPlatform)
		v.Charts = append(v.Charts,
			Chart{
				Title:      "Credit by Platform",
				Kind:       KindHorizontalBar,
				Categories: cats,
				Series:     []Series{{Name: analysis.ColCredit, Tone: ToneCredit, Values: numbers(cells(t, analysis.ColCredit))}},
			},
			Chart{
				Title:      "Debit by Platform",
				Kind:       KindHorizontalBar,
				Categories: cats,
				Series:     []Series{{Name: analysis.ColDebit, Tone: ToneDebit, Values: numbers(cells(t, analysis.ColDebit))}},
			},
		)
	}
	if t, ok := sections.Find(analysis.IsTopSpendingTitle); ok && len(t.Rows) > 0 {
		v.Charts = append(v.Charts, rankedChart("Spending by Recipient", ToneDebit, t))
	}
	if t, ok := sections.Find(analysis.IsTopIncomeTitle); ok && len(t.Rows) > 0 {
		v.Charts = append(v.Charts, rankedChart("Income by Source", ToneCredit, t))
	}
	if t, ok := sections.Get(analysis.TitleDaily); ok && len(t.Rows) > 0 {
		v.Charts = append(v.Charts, flowChart("Daily Trend", KindLine, t, analysis.ColDate))
	}
	return v, nil
}

var metricLabels = []struct {
	metric string
	label  string
	money  bool
}{
	{analysis.MetricTotalDebit, "Total Debit", true},
	{analysis.MetricTotalCredit, "Total Credit", true},
	{analysis.MetricDebitCount, "Debit Transactions", false},
	{analysis.MetricCreditCount, "Credit Transactions", false},
	{analysis.MetricCurrentBalance, "Account Balance", true},
}

func metrics(t model.Table, currency *money.Currency) []Metric {
	values := make(map[string]string, len(t.Rows))
	names, vals := cells(t, analysis.ColMetric), cells(t, analysis.ColValue)
	for i := range names {
		values[names[i]] = vals[i]
	}

	var out []Metric
	for _, m := range metricLabels {
		raw, ok := values[m.metric]
		if !ok {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			continue
		}
		value := d.StringFixed(0)
		if m.money {
			value = formatMoney(d, currency)
		}
		out = append(out, Metric{Label: m.label, Value: value})
	}
	return out
}

// dataset marks the amount columns numeric and shows them to two places.
func dataset(t model.Table) model.Table {
	if len(t.Columns) == 0 {
		return model.Table{}
	}
	out := model.Table{Title: t.Title, Columns: t.Columns, Numeric: make([]bool, len(t.Columns))}
	for i, c := range t.Columns {
		out.Numeric[i] = c == cleaned.HeaderAmount || c == cleaned.HeaderBalance
	}
	out.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		r := append([]string(nil), row...)
		for j := range r {
			if !out.IsNumeric(j) {
				continue
			}
			if d, err := decimal.NewFromString(strings.TrimSpace(r[j])); err == nil {
				r[j] = d.StringFixed(2)
			}
		}
		out.Rows[i] = r
	}
	return out
}

// formatMoney renders d in currency, rounding to its minor unit.
func formatMoney(d decimal.Decimal, currency *money.Currency) string {
	minor := d.Shift(int32(currency.Fraction)).Round(0).IntPart()
	return money.New(minor, currency.Code).Display()
}

// flowChart plots the Credit and Debit columns against key.
func flowChart(title string, kind Kind, t model.Table, key string) Chart {
	return Chart{
		Title:      title,
		Kind:       kind,
		Categories: cells(t, key),
		Series: []Series{
			{Name: analysis.ColCredit, Tone: ToneCredit, Values: numbers(cells(t, analysis.ColCredit))},
			{Name: analysis.ColDebit, Tone: ToneDebit, Values: numbers(cells(t, analysis.ColDebit))},
		},
	}
}

// rankedChart plots a top-N table sorted ascending, so the largest amount is
// drawn on top.
func rankedChart(title, tone string, t model.Table) Chart {
	names := cells(t, analysis.ColCounterparty)
	amounts := numbers(cells(t, analysis.ColAmount))

	idx := make([]int, len(names))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return amounts[idx[a]] < amounts[idx[b]] })

	c := Chart{Title: title, Kind: KindHorizontalBar, Categories: make([]string, len(idx))}
	s := Series{Name: analysis.ColAmount, Tone: tone, Values: make([]float64, len(idx))}
	for i, j := range idx {
		c.Categories[i] = names[j]
		s.Values[i] = amounts[j]
	}
	c.Series = []Series{s}
	return c
}

// cells returns the named column, or blanks when the column is absent.
func cells(t model.Table, name string) []string {
	if c := t.Column(name); c != nil {
		return c
	}
	return make([]string, len(t.Rows))
}

// numbers parses cells; blanks and text become 0.
func numbers(column []string) []float64 {
	out := make([]float64, len(column))
	for i, c := range column {
		if d, err := decimal.NewFromString(strings.TrimSpace(c)); err == nil {
			out[i] = d.InexactFloat64()
		}
	}
	return out
}
