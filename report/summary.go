package report

import (
	"gonum.org/v1/gonum/stat"

	"github.com/aluiziolira/go-books-report/catalog"
)

// Summary holds the headline numbers of the analysis section.
type Summary struct {
	Count      int
	MeanPrice  float64
	MeanRating float64
}

// Summarize computes count and means over d. An empty dataset yields a
// zero Summary.
func Summarize(d *catalog.Dataset) Summary {
	books := d.Books()
	if len(books) == 0 {
		return Summary{}
	}
	prices := make([]float64, len(books))
	ratings := make([]float64, len(books))
	for i, b := range books {
		prices[i] = b.Price
		ratings[i] = float64(b.Rating)
	}
	return Summary{
		Count:      len(books),
		MeanPrice:  stat.Mean(prices, nil),
		MeanRating: stat.Mean(ratings, nil),
	}
}
