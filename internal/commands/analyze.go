package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/stmtdash/stmtdash/internal/config"
	"github.com/stmtdash/stmtdash/internal/pipeline"
)

type analyzeOptions struct {
	out    string
	topN   int
	html   string
	csv    string
	runLog string
}

func newAnalyzeCommand(g *globals) *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Clean and summarize a statement, writing results into the workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("top-n") {
				g.cfg.Analysis.TopN = opts.topN
			}
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), g.cfg, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output workbook (default: the input, or <input>.xlsx for CSV)")
	cmd.Flags().IntVar(&opts.topN, "top-n", 10, "rows in the top spending and income tables")
	cmd.Flags().StringVar(&opts.html, "html", "", "also render the dashboard to this HTML file")
	cmd.Flags().StringVar(&opts.csv, "csv", "", "also export cleaned transactions to this CSV file")
	cmd.Flags().StringVar(&opts.runLog, "run-log", "", "append a row per run to this CSV file")

	return cmd
}

func runAnalyze(ctx context.Context, w io.Writer, cfg *config.Config, input string, opts analyzeOptions) error {
	res, err := pipeline.Run(ctx, pipeline.Options{
		Input:  input,
		Output: opts.out,
		CSVOut: opts.csv,
		RunLog: opts.runLog,
		Config: cfg,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Analyzed %d transactions from %s into %s\n", len(res.Transactions), input, res.Output)
	if res.Savings != nil {
		fmt.Fprintf(w, "Savings: %d entries, total interest %s\n", res.Savings.Count, res.Savings.TotalInterest.StringFixed(2))
	}

	if opts.html != "" {
		if err := renderDashboard(res.Output, opts.html, cfg); err != nil {
			return err
		}
		fmt.Fprintf(w, "Dashboard written to %s\n", opts.html)
	}
	return nil
}
