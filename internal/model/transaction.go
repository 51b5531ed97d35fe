package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TxnType is the direction of a transaction relative to the account holder.
type TxnType string

const (
	TypeDebit  TxnType = "Debit"
	TypeCredit TxnType = "Credit"
)

const (
	DateFormat = "2006-01-02"
	TimeFormat = "15:04:05"
)

// RawRow is one statement row exactly as exported by the bank.
type RawRow struct {
	Reference   string
	Timestamp   string
	Description string
	Debit       string
	Credit      string
	Balance     string
	Channel     string
	ValueDate   string
}

// Transaction is a normalized statement row.
type Transaction struct {
	Reference       string
	Timestamp       time.Time // zero if the source timestamp did not parse
	Type            TxnType
	Amount          decimal.Decimal // always >= 0
	Counterparty    string          // keyword-extracted, title-cased
	CounterpartyRaw string          // first description field
	Platform        string
	Account         string // account number or phone
	ExtraInfo       string
	Channel         string
	BalanceAfter    decimal.Decimal
}

// HasTimestamp reports whether the source timestamp parsed.
func (t Transaction) HasTimestamp() bool {
	return !t.Timestamp.IsZero()
}

// Date returns the date part, or "" when the timestamp is null.
func (t Transaction) Date() string {
	if !t.HasTimestamp() {
		return ""
	}
	return t.Timestamp.Format(DateFormat)
}

// Time returns the time-of-day part, or "" when the timestamp is null.
func (t Transaction) Time() string {
	if !t.HasTimestamp() {
		return ""
	}
	return t.Timestamp.Format(TimeFormat)
}

// SavingsEntry is a row of the secondary savings sheet after coercion.
// Entries only exist for rows whose date parsed.
type SavingsEntry struct {
	Reference    string
	Timestamp    time.Time
	Description  string
	Debit        decimal.Decimal
	Credit       decimal.Decimal
	BalanceAfter decimal.Decimal
	Channel      string
}
