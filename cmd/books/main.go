package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aluiziolira/go-books-report/config"
	"github.com/aluiziolira/go-books-report/logging"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "books",
		Short:         "Crawl books.toscrape.com and build PDF reports",
		Long:          `Collects catalog records into CSV/JSON snapshots and composes filtered PDF reports from them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML configuration file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(newScrapeCmd(opts), newReportCmd(opts))
	return cmd
}

// load applies defaults, then the config file, then the environment.
// Subcommands apply their own flags afterwards.
func (o *rootOptions) load() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if o.configPath != "" {
		if err := cfg.LoadFile(o.configPath); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if o.verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

func setupLogger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	logger, closer, err := logging.Setup(cfg.LogDir, cfg.Verbose)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return logger, closer, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
