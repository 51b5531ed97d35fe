package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stmtdash/stmtdash/internal/config"
	"github.com/stmtdash/stmtdash/internal/importer"
	"github.com/stmtdash/stmtdash/internal/logger"
	"github.com/stmtdash/stmtdash/internal/pipeline"
	"github.com/stmtdash/stmtdash/internal/runlog"
)

// reportsDir holds batch outputs, relative to the batch root.
const reportsDir = "reports"

func newBatchCommand(g *globals) *cobra.Command {
	var noHTML bool

	cmd := &cobra.Command{
		Use:   "batch [directory]",
		Short: "Process every statement in <directory>/import",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runBatch(cmd.Context(), cmd.OutOrStdout(), g.cfg, absDir, !noHTML)
		},
	}

	cmd.Flags().BoolVar(&noHTML, "no-html", false, "skip dashboard rendering")

	return cmd
}

// runBatch processes files one at a time. A failed file stays in import/
// and the remaining files are still processed.
func runBatch(ctx context.Context, w io.Writer, cfg *config.Config, root string, html bool) error {
	files, err := importer.Scan(root)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(w, "No statements to process.")
		return nil
	}

	log := logger.FromContext(ctx)
	var failed int
	for _, f := range files {
		stem := strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
		out := filepath.Join(root, reportsDir, stem+".xlsx")

		if err := processOne(ctx, cfg, root, f, out, html); err != nil {
			failed++
			log.Error().Err(err).Str("file", f.Name).Msg("processing statement")
			fmt.Fprintf(w, "FAILED %s: %v\n", f.Name, err)
			continue
		}
		fmt.Fprintf(w, "Processed %s -> %s\n", f.Name, out)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d statements failed", failed, len(files))
	}
	return nil
}

func processOne(ctx context.Context, cfg *config.Config, root string, f importer.FileInfo, out string, html bool) error {
	if err := ensureDir(filepath.Dir(out)); err != nil {
		return err
	}
	if _, err := pipeline.Run(ctx, pipeline.Options{
		Input:  f.Path,
		Output: out,
		RunLog: filepath.Join(root, runlog.DefaultFile),
		Config: cfg,
	}); err != nil {
		return err
	}
	if html {
		if err := renderDashboard(out, htmlPath(out), cfg); err != nil {
			return err
		}
	}
	return importer.MarkProcessed(root, f.Name)
}
