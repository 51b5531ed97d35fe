package workbook

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeXLSX builds a workbook fixture with the given sheets.
func writeXLSX(t *testing.T, path string, sheets map[string][][]any, order ...string) {
	t.Helper()
	b := New()
	defaultSheet := b.FirstSheet()
	for _, name := range order {
		require.NoError(t, b.Replace(name, sheets[name]))
	}
	require.NoError(t, b.Remove(defaultSheet))
	require.NoError(t, b.SaveAs(path))
	require.NoError(t, b.Close())
}

func TestOpenXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statement.xlsx")
	writeXLSX(t, path, map[string][][]any{
		"Transactions": {{"Trans. Date", "Debit"}, {"05 Mar 2024 14:03:22", 1500.5}},
		"Savings":      {{"x"}},
	}, "Transactions", "Savings")

	b, err := Open(path)
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, []string{"Transactions", "Savings"}, b.SheetNames())
	assert.Equal(t, "Transactions", b.FirstSheet())
	assert.Equal(t, path, b.Path())
	assert.True(t, b.Has("Savings"))
	assert.False(t, b.Has("Missing"))

	rows, err := b.RawRows("Transactions")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Trans. Date", "Debit"}, {"05 Mar 2024 14:03:22", "1500.5"}}, rows)
}

func TestOpenCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statement.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n\"1,500.00\",x\nonly\n"), 0o644))

	b, err := Open(path)
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, []string{CSVSheet}, b.SheetNames())
	rows, err := b.RawRows(CSVSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"1,500.00", "x"}, {"only"}}, rows)
}

func TestOpen_UnsupportedFormat(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "statement.pdf"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}

func TestRows_SheetNotFound(t *testing.T) {
	b := New()
	defer b.Close()
	_, err := b.RawRows("Analysis")
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestReplace_OverwritesExisting(t *testing.T) {
	b := New()
	defer b.Close()

	require.NoError(t, b.Replace("Analysis", [][]any{{"OLD"}, {"a", "b"}, {"1", "2"}, {"3", "4"}}))
	require.NoError(t, b.Replace("Analysis", [][]any{{"NEW"}, {}, {"k", 1.25}}))

	rows, err := b.RawRows("Analysis")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"NEW"}, rows[0])
	assert.Empty(t, rows[1])
	assert.Equal(t, []string{"k", "1.25"}, rows[2])
}

func TestReplace_OnlySheet(t *testing.T) {
	b := New()
	defer b.Close()
	err := b.Replace(b.FirstSheet(), [][]any{{"x"}})
	assert.Error(t, err)
}

func TestRemove(t *testing.T) {
	b := New()
	defer b.Close()
	require.NoError(t, b.Replace("Savings_Analysis", [][]any{{"x"}}))
	require.True(t, b.Has("Savings_Analysis"))

	require.NoError(t, b.Remove("Savings_Analysis"))
	assert.False(t, b.Has("Savings_Analysis"))
	assert.NoError(t, b.Remove("Savings_Analysis"))
}

func TestSaveAs_Atomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("previous contents"), 0o644))

	b := New()
	require.NoError(t, b.Replace("Cleaned_Data", [][]any{{"h"}, {"v"}}))
	require.NoError(t, b.SaveAs(path))
	require.NoError(t, b.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file should be renamed away")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("Cleaned_Data", "A2")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestSaveAs_MissingDir(t *testing.T) {
	b := New()
	defer b.Close()
	err := b.SaveAs(filepath.Join(t.TempDir(), "no", "such", "out.xlsx"))
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r.Get("XLSX"))
	assert.NotNil(t, r.Get("csv"))
	assert.Nil(t, r.Get("ods"))
	assert.Panics(t, func() { r.Register(CSVOpener{}) })
}
