package cleaned

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stmtdash/stmtdash/internal/model"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func sample() []model.Transaction {
	return []model.Transaction{
		{
			Reference:       "REF1",
			Timestamp:       time.Date(2024, 3, 5, 14, 3, 22, 0, time.UTC),
			Type:            model.TypeDebit,
			Amount:          dec("1500"),
			Counterparty:    "Ada Obi",
			CounterpartyRaw: "Transfer to Ada Obi",
			Platform:        "OPay",
			Account:         "08012345678",
			ExtraInfo:       "rent, march",
			Channel:         "Mobile",
			BalanceAfter:    dec("8500.5"),
		},
		{
			Reference:       "REF2",
			Type:            model.TypeCredit,
			Amount:          dec("20000"),
			Counterparty:    "Employer Ltd",
			CounterpartyRaw: "Employer Ltd",
			Channel:         "Web",
			BalanceAfter:    dec("-12.25"),
		},
	}
}

func TestMarshalRecord(t *testing.T) {
	rec := MarshalRecord(sample()[0])
	assert.Equal(t, []string{
		"REF1", "2024-03-05", "14:03:22", "Debit", "Transfer to Ada Obi", "Ada Obi",
		"08012345678", "OPay", "Mobile", "rent, march", "1500.00", "8500.50",
	}, rec)
}

func TestMarshalRecord_NullTimestamp(t *testing.T) {
	rec := MarshalRecord(sample()[1])
	assert.Empty(t, rec[colDate])
	assert.Empty(t, rec[colTime])
}

func TestRows(t *testing.T) {
	rows := Rows(sample())
	require.Len(t, rows, 3)
	assert.Equal(t, "Transaction Reference", rows[0][0])
	assert.Equal(t, "Balance After", rows[0][numFields-1])
	assert.Equal(t, 1500.0, rows[1][colAmount])
	assert.Equal(t, 8500.5, rows[1][colBalance])
	assert.Equal(t, "Debit", rows[1][colType])
	assert.Equal(t, -12.25, rows[2][colBalance])
}

func TestCSVRoundTrip(t *testing.T) {
	txns := sample()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, txns))
	assert.True(t, strings.HasPrefix(buf.String(), "Transaction Reference,Date,Time,"))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, got, len(txns))

	for i := range txns {
		assert.Equal(t, txns[i].Reference, got[i].Reference)
		assert.True(t, txns[i].Timestamp.Equal(got[i].Timestamp), "timestamp row %d", i)
		assert.Equal(t, txns[i].Type, got[i].Type)
		assert.True(t, txns[i].Amount.Equal(got[i].Amount), "amount row %d", i)
		assert.True(t, txns[i].BalanceAfter.Equal(got[i].BalanceAfter), "balance row %d", i)
		assert.Equal(t, txns[i].Counterparty, got[i].Counterparty)
		assert.Equal(t, txns[i].CounterpartyRaw, got[i].CounterpartyRaw)
		assert.Equal(t, txns[i].Platform, got[i].Platform)
		assert.Equal(t, txns[i].Account, got[i].Account)
		assert.Equal(t, txns[i].ExtraInfo, got[i].ExtraInfo)
		assert.Equal(t, txns[i].Channel, got[i].Channel)
	}
	assert.False(t, got[1].HasTimestamp())
}

func TestReadCSV_Empty(t *testing.T) {
	got, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUnmarshalRecord_Errors(t *testing.T) {
	good := MarshalRecord(sample()[0])

	tests := []struct {
		name  string
		patch func([]string) []string
		want  string
	}{
		{"short row", func(r []string) []string { return r[:5] }, "expected 12 fields"},
		{"bad date", func(r []string) []string { r[colDate] = "05/03/2024"; return r }, "parsing date"},
		{"bad type", func(r []string) []string { r[colType] = "Transfer"; return r }, "unknown transaction type"},
		{"bad amount", func(r []string) []string { r[colAmount] = "abc"; return r }, "parsing amount"},
		{"bad balance", func(r []string) []string { r[colBalance] = ""; return r }, "parsing balance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := append([]string(nil), good...)
			_, err := UnmarshalRecord(tt.patch(rec))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
