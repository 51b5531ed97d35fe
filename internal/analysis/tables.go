package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stmtdash/stmtdash/internal/model"
)

// Section titles as they appear in the Analysis sheet.
const (
	TitleOverall  = "OVERALL FINANCIAL SUMMARY"
	TitleMonthly  = "MONTHLY CASH FLOW SUMMARY"
	TitlePlatform = "PLATFORM PERFORMANCE SUMMARY"
	TitleDaily    = "DAILY TRANSACTION TREND"

	topSpendingSuffix = "SPENDING RECIPIENTS"
	topIncomeSuffix   = "INCOME SOURCES"
)

// Column names shared by the summary tables.
const (
	ColMetric       = "Metric"
	ColValue        = "Value"
	ColMonth        = "Month"
	ColPlatform     = "Platform"
	ColDate         = "Date"
	ColDebit        = "Debit"
	ColCredit       = "Credit"
	ColPctDebit     = "% Debit"
	ColPctCredit    = "% Credit"
	ColPctFlow      = "% Total Flow"
	ColCounterparty = "Transaction To/From"
	ColAmount       = "Amount"
	ColPctTotal     = "% of Total"
)

// Overall metric labels.
const (
	MetricTotalDebit     = "Total Debit Amount"
	MetricTotalCredit    = "Total Credit Amount"
	MetricDebitCount     = "Number of Debit Transactions"
	MetricCreditCount    = "Number of Credit Transactions"
	MetricCurrentBalance = "Current Balance"
)

// TitleTopSpending returns the title of the top spending table for n rows.
func TitleTopSpending(n int) string {
	return fmt.Sprintf("TOP %d %s", n, topSpendingSuffix)
}

// TitleTopIncome returns the title of the top income table for n rows.
func TitleTopIncome(n int) string {
	return fmt.Sprintf("TOP %d %s", n, topIncomeSuffix)
}

// IsTopSpendingTitle reports whether title names a top spending table of any size.
func IsTopSpendingTitle(title string) bool {
	return isTopTitle(title, topSpendingSuffix)
}

// IsTopIncomeTitle reports whether title names a top income table of any size.
func IsTopIncomeTitle(title string) bool {
	return isTopTitle(title, topIncomeSuffix)
}

func isTopTitle(title, suffix string) bool {
	rest, ok := strings.CutPrefix(title, "TOP ")
	if !ok {
		return false
	}
	num, tail, ok := strings.Cut(rest, " ")
	if !ok || tail != suffix {
		return false
	}
	_, err := strconv.Atoi(num)
	return err == nil
}

// Tables returns the six summaries in Analysis sheet order.
func (r Report) Tables() []model.Table {
	return []model.Table{
		r.OverallTable(),
		flowTable(TitleMonthly, ColMonth, r.Monthly),
		flowTable(TitlePlatform, ColPlatform, r.Platforms),
		r.DailyTable(),
		rankedTable(TitleTopSpending(r.TopN), r.TopSpending),
		rankedTable(TitleTopIncome(r.TopN), r.TopIncome),
	}
}

// OverallTable renders the headline metrics as Metric/Value rows.
func (r Report) OverallTable() model.Table {
	o := r.Overall
	return model.Table{
		Title:   TitleOverall,
		Columns: []string{ColMetric, ColValue},
		Numeric: []bool{false, true},
		Rows: [][]string{
			{MetricTotalDebit, o.TotalDebit.StringFixed(2)},
			{MetricTotalCredit, o.TotalCredit.StringFixed(2)},
			{MetricDebitCount, strconv.Itoa(o.DebitCount)},
			{MetricCreditCount, strconv.Itoa(o.CreditCount)},
			{MetricCurrentBalance, o.CurrentBalance.StringFixed(2)},
		},
	}
}

// DailyTable renders the daily trend.
func (r Report) DailyTable() model.Table {
	t := model.Table{
		Title:   TitleDaily,
		Columns: []string{ColDate, ColDebit, ColCredit},
		Numeric: []bool{false, true, true},
		Rows:    make([][]string, 0, len(r.Daily)),
	}
	for _, d := range r.Daily {
		t.Rows = append(t.Rows, []string{d.Date, d.Debit.StringFixed(2), d.Credit.StringFixed(2)})
	}
	return t
}

func flowTable(title, keyCol string, rows []FlowRow) model.Table {
	t := model.Table{
		Title:   title,
		Columns: []string{keyCol, ColDebit, ColCredit, ColPctDebit, ColPctCredit, ColPctFlow},
		Numeric: []bool{false, true, true, true, true, true},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Key,
			r.Debit.StringFixed(2),
			r.Credit.StringFixed(2),
			r.PctDebit.StringFixed(2),
			r.PctCredit.StringFixed(2),
			r.PctFlow.StringFixed(2),
		})
	}
	return t
}

func rankedTable(title string, rows []RankedRow) model.Table {
	t := model.Table{
		Title:   title,
		Columns: []string{ColCounterparty, ColAmount, ColPctTotal},
		Numeric: []bool{false, true, true},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Name, r.Amount.StringFixed(2), r.Pct.StringFixed(2)})
	}
	return t
}
