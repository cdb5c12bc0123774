package scraper

import (
	"context"
	"fmt"

	"github.com/aluiziolira/go-books-report/models"
	"github.com/aluiziolira/go-books-report/parser"
)

// DetailEnricher fetches the fields only present on a product page. The
// orchestrator calls it once per new book, serially, and treats any error
// as "use defaults" for that book alone.
type DetailEnricher interface {
	Enrich(ctx context.Context, productURL string) (models.Detail, error)
}

// PageEnricher fetches and parses product pages one at a time.
type PageEnricher struct {
	fetcher Fetcher
}

// NewPageEnricher returns an enricher backed by fetcher.
func NewPageEnricher(fetcher Fetcher) *PageEnricher {
	return &PageEnricher{fetcher: fetcher}
}

// Enrich fetches productURL and extracts stock and description.
func (e *PageEnricher) Enrich(ctx context.Context, productURL string) (detail models.Detail, err error) {
	defer func() {
		if r := recover(); r != nil {
			detail, err = models.Detail{}, fmt.Errorf("parse detail %s: %v", productURL, r)
		}
	}()

	body, err := e.fetcher.Fetch(ctx, productURL)
	if err != nil {
		return models.Detail{}, err
	}
	detail, err = parser.ParseDetail(body)
	if err != nil {
		return models.Detail{}, fmt.Errorf("detail %s: %w", productURL, err)
	}
	return detail, nil
}
