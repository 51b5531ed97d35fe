package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/stmtdash/stmtdash/internal/buildinfo"
	"github.com/stmtdash/stmtdash/internal/config"
	"github.com/stmtdash/stmtdash/internal/logger"
)

// globals holds state shared by subcommands after flag parsing.
type globals struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg *config.Config
	log zerolog.Logger
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:     "stmtdash",
		Short:   "Bank statement analysis and dashboards",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := g.setup(cmd); err != nil {
				return err
			}
			cmd.SetContext(logger.WithContext(cmd.Context(), g.log))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", config.FileName, "config file")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "log format (console, json)")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newAnalyzeCommand(g))
	rootCmd.AddCommand(newDashboardCommand(g))
	rootCmd.AddCommand(newBatchCommand(g))

	return rootCmd
}

// setup loads config with precedence file < environment < flags, then
// builds the logger.
func (g *globals) setup(cmd *cobra.Command) error {
	config.LoadDotenv()

	var err error
	if cmd.Flags().Changed("config") {
		g.cfg, err = config.Load(g.configPath)
	} else {
		g.cfg, err = config.LoadOrDefault(g.configPath)
	}
	if err != nil {
		return err
	}
	if err := config.ApplyEnv(g.cfg, os.LookupEnv); err != nil {
		return err
	}
	if g.logLevel != "" {
		g.cfg.Log.Level = g.logLevel
	}
	if g.logFormat != "" {
		g.cfg.Log.Format = g.logFormat
	}

	g.log, err = logger.NewFromOptions(cmd.ErrOrStderr(), logger.Options{
		Level:  g.cfg.Log.Level,
		Format: g.cfg.Log.Format,
	})
	return err
}
