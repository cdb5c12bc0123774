package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aluiziolira/go-books-report/catalog"
	"github.com/aluiziolira/go-books-report/config"
	"github.com/aluiziolira/go-books-report/pipeline"
	"github.com/aluiziolira/go-books-report/report"
)

var errReportFailed = errors.New("report generation failed, see log for details")

type reportFlags struct {
	input    string
	output   string
	title    string
	minPrice float64
	maxPrice float64
	ratings  []int
	featured []string
}

func newReportCmd(root *rootOptions) *cobra.Command {
	flags := &reportFlags{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compose a PDF report from a catalog snapshot",
		Long: `Loads books.csv (or a .json snapshot), keeps the books matching the filters,
and writes the analysis section plus one block per --feature URL found in the
filtered set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			input := flags.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger, closer, err := setupLogger(cfg)
			if err != nil {
				return err
			}
			defer closer.Close()

			all, err := pipeline.Load(input)
			if err != nil {
				return fmt.Errorf("loading snapshot: %w", err)
			}
			filtered := all.Filter(flags.criteria().Match)
			featured := selectFeatured(filtered, flags.featured, logger)

			logger.Info("composing report",
				slog.String("input", input),
				slog.Int("books", all.Len()),
				slog.Int("filtered", filtered.Len()),
				slog.Int("featured", featured.Len()),
			)
			composer := report.NewComposer(report.DefaultOptions(), logger)
			if !composer.Generate(filtered, featured, cfg.ReportPath) {
				return errReportFailed
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s (%d books, %d featured)\n",
				cfg.ReportPath, filtered.Len(), featured.Len())
			return nil
		},
	}

	defaults := config.DefaultConfig()
	cmd.Flags().StringVar(&flags.input, "input", "", "Snapshot to load (default <output-dir>/books.csv)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", defaults.ReportPath, "PDF output path")
	cmd.Flags().StringVar(&flags.title, "title", "", "Keep books whose title contains this text")
	cmd.Flags().Float64Var(&flags.minPrice, "min-price", 0, "Minimum price")
	cmd.Flags().Float64Var(&flags.maxPrice, "max-price", 0, "Maximum price")
	cmd.Flags().IntSliceVar(&flags.ratings, "ratings", nil, "Allowed star ratings (e.g. 4,5)")
	cmd.Flags().StringArrayVar(&flags.featured, "feature", nil, "Product URL to feature (repeatable)")
	return cmd
}

// apply copies explicitly set flags over cfg and returns the snapshot path.
func (f *reportFlags) apply(cmd *cobra.Command, cfg *config.Config) string {
	if cmd.Flags().Changed("output") {
		cfg.ReportPath = f.output
	}
	if f.input != "" {
		return f.input
	}
	return cfg.CSVPath()
}

func (f *reportFlags) criteria() catalog.Criteria {
	return catalog.Criteria{
		Title:    f.title,
		MinPrice: f.minPrice,
		MaxPrice: f.maxPrice,
		Ratings:  f.ratings,
	}
}

// selectFeatured keeps the requested URLs present in filtered, in dataset
// order, and logs the ones that are not.
func selectFeatured(filtered *catalog.Dataset, urls []string, logger *slog.Logger) *catalog.Dataset {
	for _, u := range urls {
		if !filtered.Has(u) {
			logger.Warn("featured book not in filtered dataset", slog.String("url", u))
		}
	}
	return filtered.Select(urls)
}
