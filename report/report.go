// Package report lays out the catalog analysis and featured books as a PDF.
package report

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aluiziolira/go-books-report/catalog"
	"github.com/aluiziolira/go-books-report/models"
)

// Options configures a Composer.
type Options struct {
	// Header and Footer run on every page. Nil hooks draw nothing.
	Header PageHook
	Footer PageHook
	// ChartDir holds the temporary chart image. Empty means os.TempDir().
	ChartDir string
	// NewCanvas creates the drawing surface for one document.
	NewCanvas func(header, footer PageHook) Canvas
	// RenderChart draws the price histogram to a file.
	RenderChart func(prices []float64, path string) error
}

// DefaultOptions returns the standard header, page-number footer and the
// fpdf canvas.
func DefaultOptions() Options {
	return Options{
		Header:      DefaultHeader,
		Footer:      DefaultFooter,
		NewCanvas:   NewPDFCanvas,
		RenderChart: RenderHistogram,
	}
}

// DefaultHeader prints the report name, right aligned.
func DefaultHeader(c Canvas) {
	c.SetFont("B", 10)
	c.SetTextColor(150, 150, 150)
	c.Cell(10, "Report - Books to Scrape", "R")
	c.Ln(5)
}

// DefaultFooter prints the page number at the bottom of the page.
func DefaultFooter(c Canvas) {
	c.SetY(-15)
	c.SetFont("I", 8)
	c.SetTextColor(128, 128, 128)
	c.Cell(10, fmt.Sprintf("Page %d", c.PageNo()), "C")
}

// Composer builds one report per Write call. Concurrent Writes are safe
// only with distinct output paths.
type Composer struct {
	opts   Options
	logger *slog.Logger
}

// NewComposer fills unset options with the defaults.
func NewComposer(opts Options, logger *slog.Logger) *Composer {
	defaults := DefaultOptions()
	if opts.NewCanvas == nil {
		opts.NewCanvas = defaults.NewCanvas
	}
	if opts.RenderChart == nil {
		opts.RenderChart = defaults.RenderChart
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{opts: opts, logger: logger}
}

// Generate writes the report for filtered and featured to outputPath and
// reports whether it succeeded. Failures are logged, never returned.
func Generate(filtered, featured *catalog.Dataset, outputPath string) bool {
	return NewComposer(DefaultOptions(), nil).Generate(filtered, featured, outputPath)
}

// Generate is Write reduced to a success flag.
func (c *Composer) Generate(filtered, featured *catalog.Dataset, outputPath string) bool {
	if err := c.Write(filtered, featured, outputPath); err != nil {
		c.logger.Error("report generation failed", slog.String("path", outputPath), slog.Any("error", err))
		return false
	}
	c.logger.Info("report generated",
		slog.String("path", outputPath),
		slog.Int("books", datasetLen(filtered)),
		slog.Int("featured", datasetLen(featured)),
	)
	return true
}

// Write renders the analysis section when filtered is non-empty and the
// featured section when featured is non-empty, then saves the document,
// creating parent directories. The chart image is removed before Write
// returns, whatever the outcome.
func (c *Composer) Write(filtered, featured *catalog.Dataset, outputPath string) (err error) {
	if filtered == nil {
		filtered = catalog.New()
	}
	if featured == nil {
		featured = catalog.New()
	}

	chart, err := os.CreateTemp(c.opts.ChartDir, "price-chart-*.png")
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	chartPath := chart.Name()
	chart.Close()
	defer func() {
		if rmErr := os.Remove(chartPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			c.logger.Warn("removing chart image failed", slog.String("path", chartPath), slog.Any("error", rmErr))
		}
	}()

	canvas := c.opts.NewCanvas(c.opts.Header, c.opts.Footer)
	if filtered.Len() > 0 {
		c.renderAnalysis(canvas, filtered, chartPath)
	}
	if featured.Len() > 0 {
		renderFeatured(canvas, featured.Books())
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory %q: %w", dir, err)
		}
	}
	return canvas.Save(outputPath)
}

func (c *Composer) renderAnalysis(canvas Canvas, filtered *catalog.Dataset, chartPath string) {
	canvas.AddPage()

	canvas.SetFont("B", 18)
	canvas.SetTextColor(44, 62, 80)
	canvas.Cell(15, "Market Overview", "L")
	canvas.Ln(5)

	summary := Summarize(filtered)
	canvas.SetFont("", 11)
	canvas.SetTextColor(0, 0, 0)
	canvas.TextBlock(8, fmt.Sprintf(
		"This report analyses a total of %d books matching the selected criteria. "+
			"The average price is £%.2f, with a mean rating of %.1f stars.",
		summary.Count, summary.MeanPrice, summary.MeanRating,
	))
	canvas.Ln(5)

	if err := c.opts.RenderChart(filtered.Prices(), chartPath); err != nil {
		c.logger.Warn("price chart skipped", slog.Any("error", err))
		return
	}
	if err := canvas.Image(chartPath, 25, 160); err != nil {
		c.logger.Warn("price chart skipped", slog.Any("error", err))
		return
	}
	canvas.Ln(10)
}

func renderFeatured(canvas Canvas, books []models.Book) {
	canvas.AddPage()
	canvas.SetFont("B", 16)
	canvas.SetTextColor(192, 57, 43)
	canvas.Cell(15, "Featured Books", "L")
	canvas.Ln(5)

	for _, b := range books {
		canvas.SetFont("B", 11)
		canvas.SetTextColor(41, 128, 185)
		canvas.TextBlock(7, "TITLE: "+b.Title)

		canvas.SetFont("B", 9)
		canvas.SetTextColor(0, 0, 0)
		canvas.Cell(6, infoLine(b), "L")

		canvas.SetFont("", 9)
		canvas.TextBlock(5, "Description: "+description(b))

		canvas.SetFont("I", 8)
		canvas.SetTextColor(100, 100, 100)
		canvas.LinkCell(5, "URL: "+b.ProductURL, b.ProductURL)

		canvas.Ln(3)
		canvas.Rule(190)
		canvas.Ln(5)
	}
}

func infoLine(b models.Book) string {
	return fmt.Sprintf("Price: £%.2f | Rating: %d | Stock: %d", b.Price, b.Rating, b.StockQuantity)
}

func description(b models.Book) string {
	if b.Description == "" {
		return "No description available."
	}
	return Truncate(b.Description, DescriptionLimit)
}

func datasetLen(d *catalog.Dataset) int {
	if d == nil {
		return 0
	}
	return d.Len()
}
