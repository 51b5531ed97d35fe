// Package analysis derives the summary tables from normalized transactions.
package analysis

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stmtdash/stmtdash/internal/model"
)

// DefaultTopN is the number of rows in the top spending and income tables.
const DefaultTopN = 10

// ErrInvalidTopN is returned for a non-positive top-N.
var ErrInvalidTopN = errors.New("top-n must be a positive integer")

var hundred = decimal.NewFromInt(100)

// Engine computes the summaries for one statement.
type Engine struct {
	topN int
}

// New creates an Engine that keeps topN rows in the ranked tables.
func New(topN int) (*Engine, error) {
	if topN <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTopN, topN)
	}
	return &Engine{topN: topN}, nil
}

// TopN returns the configured ranked-table size.
func (e *Engine) TopN() int { return e.topN }

// Overall holds the headline metrics.
type Overall struct {
	TotalDebit     decimal.Decimal
	TotalCredit    decimal.Decimal
	DebitCount     int
	CreditCount    int
	CurrentBalance decimal.Decimal
}

// FlowRow is one group of a debit/credit pivot with its percentage shares.
type FlowRow struct {
	Key       string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	PctDebit  decimal.Decimal
	PctCredit decimal.Decimal
	PctFlow   decimal.Decimal
}

// DailyRow is one calendar day of the daily trend.
type DailyRow struct {
	Date   string
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// RankedRow is a counterparty in a top-N table.
type RankedRow struct {
	Name   string
	Amount decimal.Decimal
	Pct    decimal.Decimal // share of the displayed rows' total
}

// Report is the full set of summaries for a statement.
type Report struct {
	TopN        int
	Overall     Overall
	Monthly     []FlowRow
	Platforms   []FlowRow
	Daily       []DailyRow
	TopSpending []RankedRow
	TopIncome   []RankedRow
}

// Run computes every summary. It never fails; an empty input yields zero
// metrics and empty tables.
func (e *Engine) Run(txns []model.Transaction) Report {
	return Report{
		TopN:        e.topN,
		Overall:     OverallSummary(txns),
		Monthly:     MonthlyCashFlow(txns),
		Platforms:   PlatformPerformance(txns),
		Daily:       DailyTrend(txns),
		TopSpending: TopCounterparties(txns, model.TypeDebit, e.topN),
		TopIncome:   TopCounterparties(txns, model.TypeCredit, e.topN),
	}
}

// OverallSummary totals debits and credits and finds the current balance.
func OverallSummary(txns []model.Transaction) Overall {
	o := Overall{
		TotalDebit:     decimal.Zero,
		TotalCredit:    decimal.Zero,
		CurrentBalance: decimal.Zero,
	}
	var latest time.Time
	found := false
	for _, t := range txns {
		switch t.Type {
		case model.TypeDebit:
			o.TotalDebit = o.TotalDebit.Add(t.Amount)
			o.DebitCount++
		case model.TypeCredit:
			o.TotalCredit = o.TotalCredit.Add(t.Amount)
			o.CreditCount++
		}
		if !t.HasTimestamp() {
			continue
		}
		// Equal timestamps keep the later row.
		if !found || !t.Timestamp.Before(latest) {
			latest = t.Timestamp
			o.CurrentBalance = t.BalanceAfter
			found = true
		}
	}
	return o
}

// MonthlyCashFlow pivots amounts by calendar month, January first. Months
// without transactions are omitted. Rows with a null timestamp are skipped.
func MonthlyCashFlow(txns []model.Transaction) []FlowRow {
	var acc flowAccumulator
	for _, t := range txns {
		if !t.HasTimestamp() {
			continue
		}
		acc.add(t.Timestamp.Month().String(), t)
	}
	rows := acc.rows()
	sort.SliceStable(rows, func(i, j int) bool {
		return monthIndex(rows[i].Key) < monthIndex(rows[j].Key)
	})
	return withPercentages(rows)
}

// PlatformPerformance pivots amounts by platform, keys ascending. Rows with
// no platform are skipped.
func PlatformPerformance(txns []model.Transaction) []FlowRow {
	var acc flowAccumulator
	for _, t := range txns {
		if t.Platform == "" {
			continue
		}
		acc.add(t.Platform, t)
	}
	rows := acc.rows()
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return withPercentages(rows)
}

// DailyTrend pivots amounts by calendar date, ascending.
func DailyTrend(txns []model.Transaction) []DailyRow {
	var acc flowAccumulator
	for _, t := range txns {
		if !t.HasTimestamp() {
			continue
		}
		acc.add(t.Date(), t)
	}
	flows := acc.rows()
	sort.SliceStable(flows, func(i, j int) bool { return flows[i].Key < flows[j].Key })

	out := make([]DailyRow, len(flows))
	for i, f := range flows {
		out[i] = DailyRow{Date: f.Key, Debit: f.Debit, Credit: f.Credit}
	}
	return out
}

// TopCounterparties ranks counterparties of one transaction type by total
// amount and keeps the first n.
func TopCounterparties(txns []model.Transaction, typ model.TxnType, n int) []RankedRow {
	totals := make(map[string]decimal.Decimal)
	for _, t := range txns {
		if t.Type != typ {
			continue
		}
		totals[t.Counterparty] = totals[t.Counterparty].Add(t.Amount)
	}

	rows := make([]RankedRow, 0, len(totals))
	for name, amt := range totals {
		rows = append(rows, RankedRow{Name: name, Amount: amt})
	}
	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].Amount.Cmp(rows[j].Amount); c != 0 {
			return c > 0
		}
		return rows[i].Name < rows[j].Name
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}

	shown := decimal.Zero
	for _, r := range rows {
		shown = shown.Add(r.Amount)
	}
	for i := range rows {
		rows[i].Pct = percent(rows[i].Amount, shown)
	}
	return rows
}

// flowAccumulator sums debit and credit amounts per key in first-seen order.
type flowAccumulator struct {
	order []string
	byKey map[string]*FlowRow
}

func (a *flowAccumulator) add(key string, t model.Transaction) {
	if a.byKey == nil {
		a.byKey = make(map[string]*FlowRow)
	}
	row, ok := a.byKey[key]
	if !ok {
		row = &FlowRow{Key: key, Debit: decimal.Zero, Credit: decimal.Zero}
		a.byKey[key] = row
		a.order = append(a.order, key)
	}
	switch t.Type {
	case model.TypeDebit:
		row.Debit = row.Debit.Add(t.Amount)
	case model.TypeCredit:
		row.Credit = row.Credit.Add(t.Amount)
	}
}

func (a *flowAccumulator) rows() []FlowRow {
	out := make([]FlowRow, 0, len(a.order))
	for _, k := range a.order {
		out = append(out, *a.byKey[k])
	}
	return out
}

// withPercentages fills each row's share of the column totals.
func withPercentages(rows []FlowRow) []FlowRow {
	totalDebit, totalCredit := decimal.Zero, decimal.Zero
	for _, r := range rows {
		totalDebit = totalDebit.Add(r.Debit)
		totalCredit = totalCredit.Add(r.Credit)
	}
	totalFlow := totalDebit.Add(totalCredit)
	for i := range rows {
		rows[i].PctDebit = percent(rows[i].Debit, totalDebit)
		rows[i].PctCredit = percent(rows[i].Credit, totalCredit)
		rows[i].PctFlow = percent(rows[i].Debit.Add(rows[i].Credit), totalFlow)
	}
	return rows
}

// percent returns part as a percentage of total rounded to 2 places, or 0
// when total is zero.
func percent(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(total).Round(2)
}

func monthIndex(name string) int {
	for m := time.January; m <= time.December; m++ {
		if m.String() == name {
			return int(m)
		}
	}
	return 13
}
