package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aluiziolira/go-books-report/config"
	"github.com/aluiziolira/go-books-report/fetcher"
	"github.com/aluiziolira/go-books-report/metrics"
	"github.com/aluiziolira/go-books-report/scraper"
)

type scrapeFlags struct {
	target      int
	details     bool
	baseURL     string
	outputDir   string
	metricsAddr string
}

func newScrapeCmd(root *rootOptions) *cobra.Command {
	flags := &scrapeFlags{}
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Crawl the catalog and write books.csv and books.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			flags.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runScrape(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}

	defaults := config.DefaultConfig()
	cmd.Flags().IntVar(&flags.target, "target", defaults.TargetCount, "Number of unique books to collect")
	cmd.Flags().BoolVar(&flags.details, "details", defaults.IncludeDetails, "Fetch each book page for stock and description")
	cmd.Flags().StringVar(&flags.baseURL, "base-url", defaults.BaseURL, "Catalog base URL")
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", defaults.OutputDir, "Directory for snapshots")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", defaults.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	return cmd
}

// apply copies explicitly set flags over cfg.
func (f *scrapeFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	set := cmd.Flags().Changed
	if set("target") {
		cfg.TargetCount = f.target
	}
	if set("details") {
		cfg.IncludeDetails = f.details
	}
	if set("base-url") {
		cfg.BaseURL = f.baseURL
	}
	if set("output-dir") {
		cfg.OutputDir = f.outputDir
	}
	if set("metrics-addr") {
		cfg.MetricsAddr = f.metricsAddr
	}
}

func runScrape(parent context.Context, out io.Writer, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	logger, closer, err := setupLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	m := metrics.New()
	f, err := fetcher.New(cfg, logger, m)
	if err != nil {
		return fmt.Errorf("initialising fetcher: %w", err)
	}
	s, err := scraper.New(cfg, f, logger, m)
	if err != nil {
		return fmt.Errorf("initialising scraper: %w", err)
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsServer := startMetricsServer(cfg.MetricsAddr, m, logger)
	defer shutdownMetricsServer(metricsServer, logger)

	res, err := s.Scrape(ctx, cfg.TargetCount, cfg.IncludeDetails)
	if res != nil {
		printSummary(out, res, m, cfg)
	}
	if err != nil {
		return fmt.Errorf("scraping failed: %w", err)
	}
	return nil
}

func startMetricsServer(addr string, m *metrics.Metrics, logger *slog.Logger) *http.Server {
	if addr == "" {
		return nil
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	logger.Info("metrics server enabled", slog.String("addr", addr))
	return server
}

func shutdownMetricsServer(server *http.Server, logger *slog.Logger) {
	if server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("metrics server shutdown failed", slog.Any("error", err))
	}
}

func printSummary(out io.Writer, res *scraper.Result, m *metrics.Metrics, cfg *config.Config) {
	separator := "--------------------------------------------------"
	duration := res.EndTime.Sub(res.StartTime)
	count := res.Dataset.Len()
	itemsPerSec := 0.0
	if duration.Seconds() > 0 {
		itemsPerSec = float64(count) / duration.Seconds()
	}

	fmt.Fprintln(out, "\n"+separator)
	fmt.Fprintln(out, "Scrape complete")
	fmt.Fprintf(out, "  Books:         %d\n", count)
	fmt.Fprintf(out, "  Pages:         %d\n", res.PageCount)
	fmt.Fprintf(out, "  Stop reason:   %s\n", res.StopReason)
	fmt.Fprintf(out, "  Duplicates:    %d\n", res.DuplicateCount)
	fmt.Fprintf(out, "  Skipped:       %d\n", res.SkippedCount)
	fmt.Fprintf(out, "  Detail fails:  %d\n", res.DetailFailures)
	fmt.Fprintf(out, "  Retries:       %d\n", m.Retries())
	fmt.Fprintf(out, "  Failed URLs:   %d\n", len(res.FailedURLs))
	fmt.Fprintf(out, "  Duration:      %v\n", duration.Round(time.Millisecond))
	fmt.Fprintf(out, "  Items/sec:     %.2f\n", itemsPerSec)
	fmt.Fprintf(out, "  Output files:  %s, %s\n", cfg.CSVPath(), cfg.JSONPath())
	fmt.Fprintln(out, separator)
}
