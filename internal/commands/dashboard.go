package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stmtdash/stmtdash/internal/config"
	"github.com/stmtdash/stmtdash/internal/dashboard"
	"github.com/stmtdash/stmtdash/internal/pipeline"
	"github.com/stmtdash/stmtdash/internal/workbook"
)

func newDashboardCommand(g *globals) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "dashboard <file>",
		Short: "Render the Analysis sheet of a processed workbook as HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = htmlPath(args[0])
			}
			if err := renderDashboard(args[0], out, g.cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Dashboard written to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output HTML file (default: <file>.html)")

	return cmd
}

func htmlPath(workbookPath string) string {
	return strings.TrimSuffix(workbookPath, filepath.Ext(workbookPath)) + ".html"
}

func renderDashboard(workbookPath, out string, cfg *config.Config) error {
	sections, err := pipeline.LoadSections(workbookPath, cfg.Output.AnalysisSheet)
	if err != nil {
		return err
	}
	// Workbooks analyzed elsewhere may lack the cleaned sheet.
	data, err := pipeline.LoadDataset(workbookPath, cfg.Output.CleanedSheet)
	if err != nil && !errors.Is(err, workbook.ErrSheetNotFound) {
		return err
	}
	view, err := dashboard.Build(sections, dashboard.Options{
		Title:    cfg.Dashboard.Title,
		Currency: cfg.Dashboard.Currency,
		Dataset:  data,
	})
	if err != nil {
		return fmt.Errorf("building dashboard: %w", err)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	if err := dashboard.Render(f, view); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
