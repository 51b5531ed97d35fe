// Package cleaned converts transactions to and from Cleaned_Data rows.
package cleaned

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stmtdash/stmtdash/internal/model"
)

// Numeric column names.
const (
	HeaderAmount  = "Amount"
	HeaderBalance = "Balance After"
)

// Header lists the Cleaned_Data columns in sheet order.
var Header = []string{
	"Transaction Reference",
	"Date",
	"Time",
	"Transaction Type",
	"Transaction To/From",
	"Transaction Name",
	"Account/Phone",
	"Platform",
	"Channel",
	"Extra Info",
	HeaderAmount,
	HeaderBalance,
}

const (
	numFields  = 12
	colRef     = 0
	colDate    = 1
	colTime    = 2
	colType    = 3
	colToFrom  = 4
	colName    = 5
	colAccount = 6
	colPlat    = 7
	colChannel = 8
	colExtra   = 9
	colAmount  = 10
	colBalance = 11
)

// MarshalRecord converts a Transaction to a row of strings.
func MarshalRecord(t model.Transaction) []string {
	row := make([]string, numFields)
	row[colRef] = t.Reference
	row[colDate] = t.Date()
	row[colTime] = t.Time()
	row[colType] = string(t.Type)
	row[colToFrom] = t.CounterpartyRaw
	row[colName] = t.Counterparty
	row[colAccount] = t.Account
	row[colPlat] = t.Platform
	row[colChannel] = t.Channel
	row[colExtra] = t.ExtraInfo
	row[colAmount] = t.Amount.StringFixed(2)
	row[colBalance] = t.BalanceAfter.StringFixed(2)
	return row
}

// MarshalCells converts a Transaction to sheet cells. Amount and balance are
// numbers so spreadsheet formulas work on them.
func MarshalCells(t model.Transaction) []any {
	rec := MarshalRecord(t)
	cells := make([]any, numFields)
	for i, v := range rec {
		cells[i] = v
	}
	cells[colAmount] = t.Amount.InexactFloat64()
	cells[colBalance] = t.BalanceAfter.InexactFloat64()
	return cells
}

// Rows returns the header followed by one row per transaction.
func Rows(txns []model.Transaction) [][]any {
	out := make([][]any, 0, len(txns)+1)
	hdr := make([]any, len(Header))
	for i, h := range Header {
		hdr[i] = h
	}
	out = append(out, hdr)
	for _, t := range txns {
		out = append(out, MarshalCells(t))
	}
	return out
}

// UnmarshalRecord converts a row of strings back to a Transaction.
func UnmarshalRecord(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	var ts time.Time
	if record[colDate] != "" {
		layout, value := model.DateFormat, record[colDate]
		if record[colTime] != "" {
			layout += " " + model.TimeFormat
			value += " " + record[colTime]
		}
		var err error
		ts, err = time.Parse(layout, value)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing date %q: %w", value, err)
		}
	}

	typ := model.TxnType(record[colType])
	if typ != model.TypeDebit && typ != model.TypeCredit {
		return model.Transaction{}, fmt.Errorf("unknown transaction type %q", record[colType])
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}
	balance, err := decimal.NewFromString(record[colBalance])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing balance %q: %w", record[colBalance], err)
	}

	return model.Transaction{
		Reference:       record[colRef],
		Timestamp:       ts,
		Type:            typ,
		Amount:          amount,
		Counterparty:    record[colName],
		CounterpartyRaw: record[colToFrom],
		Platform:        record[colPlat],
		Account:         record[colAccount],
		ExtraInfo:       record[colExtra],
		Channel:         record[colChannel],
		BalanceAfter:    balance,
	}, nil
}

// WriteCSV writes transactions to w, header first.
func WriteCSV(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, t := range txns {
		if err := cw.Write(MarshalRecord(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads transactions written by WriteCSV.
func ReadCSV(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading cleaned CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	// Skip header row.
	var txns []model.Transaction
	for i, rec := range records[1:] {
		t, err := UnmarshalRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}
