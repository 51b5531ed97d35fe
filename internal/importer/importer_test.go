package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// statementGrid builds a sheet with six preamble rows, a header, and rows.
func statementGrid(header []string, rows ...[]string) [][]string {
	grid := [][]string{
		{"Account Name", "ADA OBI"},
		{"Account Number", "0123456789"},
		{},
		{"Period", "01 Mar 2024 - 31 Mar 2024"},
		{},
		{},
		header,
	}
	return append(grid, rows...)
}

var bankHeader = []string{
	"Trans. Date", "Value Date", "Description", "Debit(₦)", "Credit(₦)",
	"Balance After(₦)", "Channel", "Transaction Reference",
}

func TestReadPrimary(t *testing.T) {
	grid := statementGrid(bankHeader,
		[]string{"05 Mar 2024 14:03:22", "05 Mar 2024", "Transfer to Ada|OPay|0801", "1,500.00", "--", "8,500.00", "Mobile", "REF1"},
		[]string{},
		[]string{"06 Mar 2024 09:00:00", "06 Mar 2024", "Salary", "--", "20,000.00", "28,500.00", "Web"},
	)

	rows, err := ReadPrimary("Statement", grid, DefaultHeaderRow)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "REF1", rows[0].Reference)
	assert.Equal(t, "05 Mar 2024 14:03:22", rows[0].Timestamp)
	assert.Equal(t, "Transfer to Ada|OPay|0801", rows[0].Description)
	assert.Equal(t, "1,500.00", rows[0].Debit)
	assert.Equal(t, "--", rows[0].Credit)
	assert.Equal(t, "8,500.00", rows[0].Balance)
	assert.Equal(t, "Mobile", rows[0].Channel)
	assert.Equal(t, "05 Mar 2024", rows[0].ValueDate)

	// Short rows leave trailing fields empty.
	assert.Equal(t, "", rows[1].Reference)
	assert.Equal(t, "20,000.00", rows[1].Credit)
}

func TestReadPrimary_MissingColumns(t *testing.T) {
	grid := statementGrid([]string{"Trans. Date", "Description", "Debit", "Credit"})
	_, err := ReadPrimary("Statement", grid, DefaultHeaderRow)
	require.Error(t, err)

	var mce *MissingColumnsError
	require.ErrorAs(t, err, &mce)
	assert.Equal(t, "Statement", mce.Sheet)
	assert.ElementsMatch(t, []Column{ColReference, ColBalance, ColChannel, ColValueDate}, mce.Missing)
	assert.Contains(t, err.Error(), "Balance After")
}

func TestReadPrimary_HeaderNotFound(t *testing.T) {
	_, err := ReadPrimary("Statement", [][]string{{"only"}}, DefaultHeaderRow)
	assert.ErrorIs(t, err, ErrHeaderNotFound)
}

func TestReadSavings_ValueDateOptional(t *testing.T) {
	header := []string{"Trans. Date", "Description", "Debit", "Credit", "Balance After", "Channel", "Transaction Reference"}
	grid := statementGrid(header, []string{"31 Jan 2024 00:00:00", "Interest Earned", "--", "12.50", "1,012.50", "System", "S1"})

	rows, err := ReadSavings("Savings Account Transactions", grid, DefaultHeaderRow)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Interest Earned", rows[0].Description)
	assert.Empty(t, rows[0].ValueDate)
}

func TestReadSavings_MissingChannel(t *testing.T) {
	header := []string{"Trans. Date", "Description", "Debit", "Credit", "Balance After", "Transaction Reference"}
	_, err := ReadSavings("Savings Account Transactions", statementGrid(header), DefaultHeaderRow)

	var mce *MissingColumnsError
	require.ErrorAs(t, err, &mce)
	assert.Equal(t, []Column{ColChannel}, mce.Missing)
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Debit(₦)", "debit"},
		{" Balance After (₦) ", "balance after"},
		{"Trans.  Date", "trans. date"},
		{"CHANNEL", "channel"},
		{"(x)", "(x)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, canonical(tt.in), "canonical(%q)", tt.in)
	}
}

func TestResolveColumns_FirstMatchWins(t *testing.T) {
	cols, err := ResolveColumns("s", []string{"Debit", "Debit(₦)"}, []Column{ColDebit})
	require.NoError(t, err)
	assert.Equal(t, 0, cols[ColDebit])
}

func TestScan_FindsStatements(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))

	for _, name := range []string{"march.xlsx", "april.CSV", "notes.txt", "~$march.xlsx"} {
		require.NoError(t, os.WriteFile(filepath.Join(importDir, name), []byte("data"), 0o644))
	}

	files, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "april.CSV", files[0].Name)
	assert.Equal(t, "march.xlsx", files[1].Name)
	assert.Equal(t, int64(4), files[1].Size)
}

func TestScan_IgnoresProcessedDir(t *testing.T) {
	dir := t.TempDir()
	processed := ProcessedDir(dir)
	require.NoError(t, os.MkdirAll(processed, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(ImportDir(dir), "new.xlsx"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(processed, "old.xlsx"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, "new.xlsx", files[0].Name)
}

func TestScan_EmptyDir(t *testing.T) {
	files, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(ImportDir(dir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(ImportDir(dir), "bank.xlsx"), []byte("data"), 0o644))

	require.NoError(t, MarkProcessed(dir, "bank.xlsx"))

	_, err := os.Stat(filepath.Join(ImportDir(dir), "bank.xlsx"))
	assert.True(t, os.IsNotExist(err))

	_, err = os.Stat(filepath.Join(ProcessedDir(dir), "bank.xlsx"))
	assert.NoError(t, err)
}
