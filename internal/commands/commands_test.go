package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stmtdash/stmtdash/internal/cleaned"
	"github.com/stmtdash/stmtdash/internal/config"
	"github.com/stmtdash/stmtdash/internal/runlog"
	"github.com/stmtdash/stmtdash/internal/workbook"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "stmtdash-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "stmtdash")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/stmtdash")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

// runStmtdash runs the binary in dir with STMTDASH_* variables cleared.
func runStmtdash(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = dir
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, "STMTDASH_") {
			cmd.Env = append(cmd.Env, kv)
		}
	}
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// writeStatement saves a minimal bank export with the header at row 7.
func writeStatement(t *testing.T, path string) {
	t.Helper()
	rows := [][]any{
		{"Account Name", "ADA OBI"},
		{"Account Number", "0123456789"},
		{}, {}, {}, {},
		{"Trans. Date", "Value Date", "Description", "Debit(₦)", "Credit(₦)", "Balance After(₦)", "Channel", "Transaction Reference"},
		{"05 Mar 2024 14:03:22", "05 Mar 2024", "Transfer to Ada Obi|OPay|0801", "1,500.00", "--", "8,500.00", "Mobile", "REF1"},
		{"06 Mar 2024 09:00:00", "06 Mar 2024", "Transfer from Employer Ltd|Kuda|1234567890", "--", "20,000.00", "28,500.00", "Web", "REF2"},
	}
	b := workbook.New()
	def := b.FirstSheet()
	require.NoError(t, b.Replace("Transactions", rows))
	require.NoError(t, b.Remove(def))
	require.NoError(t, b.SaveAs(path))
	require.NoError(t, b.Close())
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	out, err := runStmtdash(t, dir, "init", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Initialized stmtdash workspace")

	for _, d := range []string{"import", filepath.Join("import", "processed"), "reports", "logs"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestInit_KeepsExistingConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Analysis.TopN = 3
	require.NoError(t, config.Save(filepath.Join(dir, config.FileName), cfg))

	out, err := runStmtdash(t, dir, "init", dir)
	require.NoError(t, err, out)

	got, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, 3, got.Analysis.TopN)
}

func TestAnalyze_WritesSheetsAndExports(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "march.xlsx")
	writeStatement(t, input)

	csvPath := filepath.Join(dir, "cleaned.csv")
	htmlPath := filepath.Join(dir, "march.html")
	out, err := runStmtdash(t, dir, "analyze", input, "--top-n", "5", "--csv", csvPath, "--html", htmlPath, "--run-log", "runs.csv")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Analyzed 2 transactions")

	b, err := workbook.Open(input)
	require.NoError(t, err)
	defer b.Close()
	assert.True(t, b.Has("Cleaned_Data"))
	assert.True(t, b.Has("Analysis"))
	assert.False(t, b.Has("Savings_Analysis"))

	rows, err := b.RawRows("Analysis")
	require.NoError(t, err)
	var titles []string
	for _, r := range rows {
		if len(r) == 1 {
			titles = append(titles, r[0])
		}
	}
	assert.Contains(t, titles, "TOP 5 SPENDING RECIPIENTS")

	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer f.Close()
	txns, err := cleaned.ReadCSV(f)
	require.NoError(t, err)
	assert.Len(t, txns, 2)

	html, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "₦1,500.00")

	entries, err := runlog.Read(filepath.Join(dir, "runs.csv"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 5, entries[0].TopN)
}

func TestAnalyze_InvalidTopN(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "march.xlsx")
	writeStatement(t, input)

	out, err := runStmtdash(t, dir, "analyze", input, "--top-n", "0")
	require.Error(t, err)
	assert.Contains(t, out, "top_n")
}

func TestAnalyze_MissingColumns(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "bad.xlsx")
	b := workbook.New()
	require.NoError(t, b.Replace("Transactions", [][]any{{}, {}, {}, {}, {}, {}, {"Trans. Date", "Description"}}))
	require.NoError(t, b.SaveAs(input))
	require.NoError(t, b.Close())

	cfg := config.Default()
	cfg.Statement.PrimarySheet = "Transactions"
	require.NoError(t, config.Save(filepath.Join(dir, config.FileName), cfg))

	out, err := runStmtdash(t, dir, "analyze", input)
	require.Error(t, err)
	assert.Contains(t, out, "missing required columns")
}

func TestAnalyze_EnvOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "march.xlsx")
	writeStatement(t, input)

	cmd := exec.Command(binaryPath, "analyze", input)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "STMTDASH_TOP_N=2")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))

	b, err := workbook.Open(input)
	require.NoError(t, err)
	defer b.Close()
	rows, err := b.RawRows("Analysis")
	require.NoError(t, err)
	found := false
	for _, r := range rows {
		if len(r) == 1 && r[0] == "TOP 2 INCOME SOURCES" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestDashboard_RendersHTML(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "march.xlsx")
	writeStatement(t, input)

	out, err := runStmtdash(t, dir, "analyze", input)
	require.NoError(t, err, out)

	out, err = runStmtdash(t, dir, "dashboard", input)
	require.NoError(t, err, out)

	html, err := os.ReadFile(filepath.Join(dir, "march.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "Monthly Cash Flow")
	assert.Contains(t, string(html), "Income by Source")
	assert.Contains(t, string(html), `<section id="dataset">`)
	assert.Contains(t, string(html), "<th>Transaction Name</th>")
}

func TestDashboard_UnprocessedWorkbook(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "march.xlsx")
	writeStatement(t, input)

	out, err := runStmtdash(t, dir, "dashboard", input, "-o", filepath.Join(dir, "d.html"))
	require.Error(t, err)
	assert.Contains(t, out, "sheet not found")
}

func TestBatch_ProcessesImportDir(t *testing.T) {
	dir := t.TempDir()
	out, err := runStmtdash(t, dir, "init", dir)
	require.NoError(t, err, out)

	writeStatement(t, filepath.Join(dir, "import", "march.xlsx"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "broken.csv"), []byte("nothing useful\n"), 0o644))

	out, err = runStmtdash(t, dir, "batch", dir)
	require.Error(t, err, "one file fails")
	assert.Contains(t, out, "Processed march.xlsx")
	assert.Contains(t, out, "FAILED broken.csv")

	_, err = os.Stat(filepath.Join(dir, "reports", "march.xlsx"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "reports", "march.html"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "import", "processed", "march.xlsx"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "import", "broken.csv"))
	assert.NoError(t, err, "failed file stays in import/")

	entries, err := runlog.Read(filepath.Join(dir, runlog.DefaultFile))
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestBatch_Empty(t *testing.T) {
	dir := t.TempDir()
	out, err := runStmtdash(t, dir, "batch", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "No statements to process.")
}
