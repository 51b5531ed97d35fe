package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/stmtdash/stmtdash/internal/model"
)

// Statement timestamps look like "05 Mar 2024 14:03:22".
var timestampLayouts = []string{
	"2 Jan 2006 15:04:05",
	"2 January 2006 15:04:05",
}

// The savings export is less consistent, so a few more layouts are tried.
var savingsLayouts = append(append([]string{}, timestampLayouts...),
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
	"2 Jan 2006",
	"2 January 2006",
)

// amountPlaceholder marks an empty debit or credit cell.
const amountPlaceholder = "--"

// amountNoise strips thousands separators, the naira sign and spacing.
var amountNoise = strings.NewReplacer(",", "", "₦", "", " ", "", "\u00a0", "")

// ParseTimestamp parses a statement timestamp. ok is false when s is malformed.
// A date cell read unformatted arrives as an Excel serial number and is
// accepted too.
func ParseTimestamp(s string) (time.Time, bool) {
	if t, ok := parseWithLayouts(s, timestampLayouts); ok {
		return t, true
	}
	return parseSerial(s)
}

// ParseSavingsDate parses a savings-sheet date using the wider layout set,
// falling back to an Excel serial number.
func ParseSavingsDate(s string) (time.Time, bool) {
	if t, ok := parseWithLayouts(s, savingsLayouts); ok {
		return t, true
	}
	return parseSerial(s)
}

// parseSerial converts an Excel date serial (days since 1899-12-30, time of
// day as the fraction) to a time, rounded to the second.
func parseSerial(s string) (time.Time, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f <= 0 {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return time.Time{}, false
	}
	return t.Round(time.Second), true
}

func parseWithLayouts(s string, layouts []string) (time.Time, bool) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseAmount coerces a statement amount to a non-negative decimal.
// The "--" placeholder, blanks and anything unparseable become zero.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" || s == amountPlaceholder {
		return decimal.Zero
	}
	s = amountNoise.Replace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d.Abs()
}

// ParseBalance parses a running balance. Unlike amounts it keeps its sign.
func ParseBalance(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	negative := strings.HasPrefix(s, "-") || (strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"))
	d := ParseAmount(s)
	if negative {
		return d.Neg()
	}
	return d
}

// ResolveType picks the transaction type and unified amount from the debit
// and credit columns. A row with both nonzero resolves to Debit.
func ResolveType(debit, credit decimal.Decimal) (model.TxnType, decimal.Decimal) {
	if debit.IsPositive() {
		return model.TypeDebit, debit
	}
	return model.TypeCredit, credit
}
