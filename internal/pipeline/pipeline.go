// Package pipeline runs one statement through normalization, analysis and
// write-back.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stmtdash/stmtdash/internal/analysis"
	"github.com/stmtdash/stmtdash/internal/cleaned"
	"github.com/stmtdash/stmtdash/internal/config"
	"github.com/stmtdash/stmtdash/internal/importer"
	"github.com/stmtdash/stmtdash/internal/layout"
	"github.com/stmtdash/stmtdash/internal/logger"
	"github.com/stmtdash/stmtdash/internal/model"
	"github.com/stmtdash/stmtdash/internal/normalize"
	"github.com/stmtdash/stmtdash/internal/runlog"
	"github.com/stmtdash/stmtdash/internal/workbook"
)

// Options configures a single run.
type Options struct {
	Input     string
	Output    string // "" writes back to Input, or beside it as .xlsx for CSV input
	CSVOut    string // optional Cleaned_Data CSV export
	RunLog    string // optional run log CSV
	Config    *config.Config
	Now       func() time.Time
	Workbooks *workbook.Registry
}

// Result summarizes a completed run.
type Result struct {
	RunID        string
	Output       string
	Transactions []model.Transaction
	Report       analysis.Report
	Savings      *analysis.SavingsSummary // nil when skipped
	SavingsErr   error                    // why savings was skipped, if it was
}

// OutputPath returns where a run writes when no output is given.
func OutputPath(input string) string {
	if strings.EqualFold(filepath.Ext(input), ".xlsx") {
		return input
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".xlsx"
}

// Run processes one statement file. Derived sheets are built in memory and
// saved in a single write; a savings failure is logged and skipped.
func Run(ctx context.Context, opts Options) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	output := opts.Output
	if output == "" {
		output = OutputPath(opts.Input)
	}

	res := &Result{RunID: uuid.NewString(), Output: output}
	log := logger.FromContext(ctx).With().
		Str("run_id", res.RunID).
		Str("input", opts.Input).
		Logger()

	err := run(ctx, log, cfg, opts, res)

	if opts.RunLog != "" {
		entry := runlog.Entry{
			Timestamp:    now(),
			RunID:        res.RunID,
			Input:        opts.Input,
			Output:       output,
			Transactions: len(res.Transactions),
			TopN:         cfg.Analysis.TopN,
			Status:       runlog.StatusOK,
		}
		if res.Savings != nil {
			entry.Savings = res.Savings.Count
		}
		switch {
		case err != nil:
			entry.Status = runlog.StatusFailed
			entry.Details = err.Error()
		case res.SavingsErr != nil:
			entry.Status = runlog.StatusSavingsSkipped
			entry.Details = res.SavingsErr.Error()
		}
		if lerr := runlog.Append(opts.RunLog, []runlog.Entry{entry}); lerr != nil {
			log.Warn().Err(lerr).Msg("appending run log")
		}
	}

	if err != nil {
		return nil, err
	}
	return res, nil
}

func run(ctx context.Context, log zerolog.Logger, cfg *config.Config, opts Options, res *Result) error {
	registry := opts.Workbooks
	if registry == nil {
		registry = workbook.DefaultRegistry()
	}
	book, err := registry.Open(opts.Input)
	if err != nil {
		return fmt.Errorf("reading workbook: %w", err)
	}
	defer book.Close()
	log.Debug().Str("path", book.Path()).Strs("sheets", book.SheetNames()).Msg("opened workbook")

	primary := cfg.Statement.PrimarySheet
	if primary == "" {
		primary = book.FirstSheet()
	}
	grid, err := book.RawRows(primary)
	if err != nil {
		return fmt.Errorf("reading transactions: %w", err)
	}
	raw, err := importer.ReadPrimary(primary, grid, cfg.Statement.HeaderRow)
	if err != nil {
		return fmt.Errorf("reading transactions: %w", err)
	}

	res.Transactions = normalize.Transactions(raw)
	log.Info().Str("sheet", primary).Int("rows", len(res.Transactions)).Msg("normalized transactions")

	engine, err := analysis.New(cfg.Analysis.TopN)
	if err != nil {
		return err
	}
	res.Report = engine.Run(res.Transactions)
	log.Info().Int("top_n", engine.TopN()).Msg("analyzed transactions")

	res.Savings, res.SavingsErr = savings(book, cfg)
	switch {
	case res.SavingsErr == nil:
		log.Info().Int("entries", res.Savings.Count).Msg("analyzed savings")
	case errors.Is(res.SavingsErr, workbook.ErrSheetNotFound):
		log.Debug().Str("sheet", cfg.Statement.SavingsSheet).Msg("no savings sheet")
	default:
		log.Warn().Err(res.SavingsErr).Msg("skipping savings analysis")
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := book.Replace(cfg.Output.CleanedSheet, cleaned.Rows(res.Transactions)); err != nil {
		return fmt.Errorf("building cleaned sheet: %w", err)
	}
	if err := book.Replace(cfg.Output.AnalysisSheet, layout.Serialize(res.Report.Tables())); err != nil {
		return fmt.Errorf("building analysis sheet: %w", err)
	}
	if res.Savings != nil {
		err = book.Replace(cfg.Output.SavingsSheet, layout.Stack(res.Savings.Blocks()))
	} else {
		err = book.Remove(cfg.Output.SavingsSheet)
	}
	if err != nil {
		return fmt.Errorf("building savings sheet: %w", err)
	}

	if err := book.SaveAs(res.Output); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	log.Info().Str("output", res.Output).Msg("wrote workbook")

	if opts.CSVOut != "" {
		if err := writeCSV(opts.CSVOut, res.Transactions); err != nil {
			return fmt.Errorf("exporting cleaned CSV: %w", err)
		}
		log.Info().Str("csv", opts.CSVOut).Msg("exported cleaned data")
	}
	return nil
}

// savings reads and analyzes the savings sheet. Any error means the savings
// output is skipped; the run continues.
func savings(book *workbook.Book, cfg *config.Config) (*analysis.SavingsSummary, error) {
	sheet := cfg.Statement.SavingsSheet
	grid, err := book.RawRows(sheet)
	if err != nil {
		return nil, err
	}
	raw, err := importer.ReadSavings(sheet, grid, cfg.Statement.HeaderRow)
	if err != nil {
		return nil, err
	}
	return analysis.Savings(normalize.Savings(raw))
}

func writeCSV(path string, txns []model.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := cleaned.WriteCSV(f, txns); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadSections reads the analysis sheet of a processed workbook.
func LoadSections(path, sheet string) (layout.Sections, error) {
	book, err := workbook.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading workbook: %w", err)
	}
	defer book.Close()

	rows, err := book.RawRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading analysis: %w", err)
	}
	return layout.Extract(rows), nil
}

// LoadDataset reads the cleaned transaction sheet of a processed workbook.
func LoadDataset(path, sheet string) (model.Table, error) {
	book, err := workbook.Open(path)
	if err != nil {
		return model.Table{}, fmt.Errorf("reading workbook: %w", err)
	}
	defer book.Close()

	rows, err := book.RawRows(sheet)
	if err != nil {
		return model.Table{}, fmt.Errorf("reading cleaned data: %w", err)
	}
	return layout.Flat(sheet, rows), nil
}
