package analysis

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stmtdash/stmtdash/internal/model"
)

// ErrNoSavingsRows means no savings row survived date parsing.
var ErrNoSavingsRows = errors.New("no valid savings rows")

// Savings block titles, in Savings_Analysis order.
const (
	TitleTotalInterest  = "TOTAL INTEREST"
	TitleLatestBalance  = "LATEST SAVINGS BALANCE"
	TitleInterestByType = "INTEREST BY SAVINGS TYPE"
	TitleBalanceByType  = "BALANCE BY SAVINGS TYPE"
)

const (
	MetricTotalInterest = "Total Interest Earned"
	MetricLatestSavings = "Latest Savings Balance"
	ColDescription      = "Description"
	ColBalanceAfter     = "Balance After"
)

const interestKeyword = "interest"

// GroupAmount is an amount keyed by savings description.
type GroupAmount struct {
	Description string
	Amount      decimal.Decimal
}

// SavingsSummary is the secondary-account analysis.
type SavingsSummary struct {
	Count          int // entries summarized
	TotalInterest  decimal.Decimal
	LatestBalance  decimal.Decimal
	InterestByType []GroupAmount // credit sums of interest rows
	BalanceByType  []GroupAmount // max balance per description
}

// Savings summarizes savings entries. It returns ErrNoSavingsRows when
// entries is empty.
func Savings(entries []model.SavingsEntry) (*SavingsSummary, error) {
	if len(entries) == 0 {
		return nil, ErrNoSavingsRows
	}

	s := &SavingsSummary{Count: len(entries), TotalInterest: decimal.Zero}
	interest := make(map[string]decimal.Decimal)
	maxBalance := make(map[string]decimal.Decimal)
	var latest time.Time

	for i, e := range entries {
		if isInterest(e.Description) {
			s.TotalInterest = s.TotalInterest.Add(e.Credit)
			interest[e.Description] = interest[e.Description].Add(e.Credit)
		}
		if cur, ok := maxBalance[e.Description]; !ok || e.BalanceAfter.GreaterThan(cur) {
			maxBalance[e.Description] = e.BalanceAfter
		}
		if i == 0 || !e.Timestamp.Before(latest) {
			latest = e.Timestamp
			s.LatestBalance = e.BalanceAfter
		}
	}

	s.InterestByType = sortedGroups(interest)
	s.BalanceByType = sortedGroups(maxBalance)
	return s, nil
}

func isInterest(desc string) bool {
	return strings.Contains(strings.ToLower(desc), interestKeyword)
}

func sortedGroups(m map[string]decimal.Decimal) []GroupAmount {
	out := make([]GroupAmount, 0, len(m))
	for k, v := range m {
		out = append(out, GroupAmount{Description: k, Amount: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Description < out[j].Description })
	return out
}

// Blocks returns the four labeled blocks of the Savings_Analysis sheet.
func (s SavingsSummary) Blocks() []model.Table {
	return []model.Table{
		{
			Title:   TitleTotalInterest,
			Columns: []string{ColMetric, ColValue},
			Numeric: []bool{false, true},
			Rows:    [][]string{{MetricTotalInterest, s.TotalInterest.StringFixed(2)}},
		},
		{
			Title:   TitleLatestBalance,
			Columns: []string{ColMetric, ColValue},
			Numeric: []bool{false, true},
			Rows:    [][]string{{MetricLatestSavings, s.LatestBalance.StringFixed(2)}},
		},
		groupTable(TitleInterestByType, ColCredit, s.InterestByType),
		groupTable(TitleBalanceByType, ColBalanceAfter, s.BalanceByType),
	}
}

func groupTable(title, valueCol string, groups []GroupAmount) model.Table {
	t := model.Table{
		Title:   title,
		Columns: []string{ColDescription, valueCol},
		Numeric: []bool{false, true},
		Rows:    make([][]string, 0, len(groups)),
	}
	for _, g := range groups {
		t.Rows = append(t.Rows, []string{g.Description, g.Amount.StringFixed(2)})
	}
	return t
}
