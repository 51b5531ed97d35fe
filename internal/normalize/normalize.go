// Package normalize turns raw statement rows into transactions.
//
// Malformed fields never fail a row: timestamps become null and amounts zero,
// so the output always has one transaction per input row.
package normalize

import (
	"strings"

	"github.com/stmtdash/stmtdash/internal/model"
)

// Transaction normalizes a single row.
func Transaction(row model.RawRow) model.Transaction {
	ts, _ := ParseTimestamp(row.Timestamp)
	typ, amount := ResolveType(ParseAmount(row.Debit), ParseAmount(row.Credit))
	fields := CorrectSwap(SplitDescription(row.Description))

	return model.Transaction{
		Reference:       strings.TrimSpace(row.Reference),
		Timestamp:       ts,
		Type:            typ,
		Amount:          amount,
		Counterparty:    ExtractCounterparty(row.Description),
		CounterpartyRaw: fields.CounterpartyRaw,
		Platform:        fields.Platform,
		Account:         fields.Account,
		ExtraInfo:       fields.ExtraInfo,
		Channel:         strings.TrimSpace(row.Channel),
		BalanceAfter:    ParseBalance(row.Balance),
	}
}

// Transactions normalizes rows, preserving order and count.
func Transactions(rows []model.RawRow) []model.Transaction {
	txns := make([]model.Transaction, len(rows))
	for i, row := range rows {
		txns[i] = Transaction(row)
	}
	return txns
}

// Savings coerces savings-sheet rows. Rows whose date does not parse are
// dropped, unlike the primary path.
func Savings(rows []model.RawRow) []model.SavingsEntry {
	var entries []model.SavingsEntry
	for _, row := range rows {
		ts, ok := ParseSavingsDate(row.Timestamp)
		if !ok {
			continue
		}
		entries = append(entries, model.SavingsEntry{
			Reference:    strings.TrimSpace(row.Reference),
			Timestamp:    ts,
			Description:  strings.TrimSpace(row.Description),
			Debit:        ParseAmount(row.Debit),
			Credit:       ParseAmount(row.Credit),
			BalanceAfter: ParseBalance(row.Balance),
			Channel:      strings.TrimSpace(row.Channel),
		})
	}
	return entries
}
