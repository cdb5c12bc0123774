package report

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// HistogramBins is the fixed bin count of the price chart.
const HistogramBins = 12

var barColor = color.RGBA{R: 0x34, G: 0x98, B: 0xdb, A: 0xff}

// RenderHistogram draws a price histogram to path. The image format follows
// the file extension.
func RenderHistogram(prices []float64, path string) error {
	if len(prices) == 0 {
		return errors.New("no prices to plot")
	}

	p := plot.New()
	p.Title.Text = "Price Distribution (Filtered Catalog)"
	p.X.Label.Text = "Price (£)"
	p.Y.Label.Text = "Count"

	h, err := plotter.NewHist(plotter.Values(prices), HistogramBins)
	if err != nil {
		return fmt.Errorf("build histogram: %w", err)
	}
	h.FillColor = barColor
	h.LineStyle.Color = color.White
	p.Add(h)

	if err := p.Save(7*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}
