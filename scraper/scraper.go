// Package scraper drives catalog pagination and builds the book dataset.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/aluiziolira/go-books-report/catalog"
	"github.com/aluiziolira/go-books-report/config"
	"github.com/aluiziolira/go-books-report/metrics"
	"github.com/aluiziolira/go-books-report/models"
	"github.com/aluiziolira/go-books-report/parser"
	"github.com/aluiziolira/go-books-report/pipeline"
)

// Stop reasons reported in models.ScrapeResult.StopReason.
const (
	StopTargetReached   = "target_reached"
	StopEndOfCatalog    = "end_of_catalog"
	StopPageFetchFailed = "page_fetch_failed"
	StopPageParseFailed = "page_parse_failed"
	StopPaginationCycle = "pagination_cycle"
)

// ErrInvalidTarget is returned when the requested count is not positive.
var ErrInvalidTarget = errors.New("scraper: target count must be positive")

// Fetcher returns the body stored at a URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Result is the dataset built by one crawl plus its run statistics.
type Result struct {
	Dataset *catalog.Dataset
	models.ScrapeResult
}

// Option customises a Scraper.
type Option func(*Scraper)

// WithEnricher replaces the detail step used when details are requested.
func WithEnricher(e DetailEnricher) Option {
	return func(s *Scraper) {
		s.enricher = e
	}
}

// WithoutPersistence skips writing snapshots at the end of a run.
func WithoutPersistence() Option {
	return func(s *Scraper) {
		s.persist = false
	}
}

// Scraper crawls the catalog one page at a time. One Scrape call owns its
// dataset; a Scraper must not run two crawls at once.
type Scraper struct {
	cfg      *config.Config
	fetcher  Fetcher
	enricher DetailEnricher
	base     *url.URL
	logger   *slog.Logger
	metrics  *metrics.Metrics
	persist  bool
}

// New builds a scraper. m may be nil.
func New(cfg *config.Config, fetcher Fetcher, logger *slog.Logger, m *metrics.Metrics, opts ...Option) (*Scraper, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scraper{
		cfg:     cfg,
		fetcher: fetcher,
		base:    base,
		logger:  logger,
		metrics: m,
		persist: true,
	}
	s.enricher = NewPageEnricher(fetcher)
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type state int

const (
	stateAwaitingPage state = iota
	stateFetchingPage
	stateParsingItems
	stateFetchingDetail
	statePaginationCheck
	stateDone
)

func (st state) String() string {
	switch st {
	case stateAwaitingPage:
		return "awaiting_page"
	case stateFetchingPage:
		return "fetching_page"
	case stateParsingItems:
		return "parsing_items"
	case stateFetchingDetail:
		return "fetching_detail"
	case statePaginationCheck:
		return "pagination_check"
	case stateDone:
		return "done"
	default:
		return "unknown"
	}
}

// crawl is the mutable state of a single Scrape call.
type crawl struct {
	target         int
	includeDetails bool
	dataset        *catalog.Dataset
	visited        map[string]struct{}
	pageURL        string
	body           []byte
	nextURL        string
	result         models.ScrapeResult
}

// Scrape collects up to targetCount unique books, starting at the first
// catalog page. It stops when the target is reached, a page cannot be
// fetched, or pagination ends. Failures truncate the dataset rather than
// discarding it; the returned error is non-nil only for an invalid target
// or when the snapshot could not be written, and in the latter case the
// result is still returned.
func (s *Scraper) Scrape(ctx context.Context, targetCount int, includeDetails bool) (*Result, error) {
	if targetCount <= 0 {
		return nil, ErrInvalidTarget
	}
	if ctx == nil {
		ctx = context.Background()
	}

	c := &crawl{
		target:         targetCount,
		includeDetails: includeDetails,
		dataset:        catalog.New(),
		visited:        make(map[string]struct{}),
		nextURL:        s.cfg.StartURL(),
	}
	c.result.StartTime = time.Now()

	s.logger.Info("starting scrape",
		slog.String("start_url", c.nextURL),
		slog.Int("target", targetCount),
		slog.Bool("details", includeDetails),
	)

	for st := stateAwaitingPage; st != stateDone; {
		s.logger.Debug("crawl state", slog.String("state", st.String()), slog.Int("count", c.dataset.Len()))
		st = s.step(ctx, st, c)
	}
	c.result.EndTime = time.Now()

	res := &Result{Dataset: c.dataset, ScrapeResult: c.result}
	s.logger.Info("scrape completed",
		slog.Int("count", c.dataset.Len()),
		slog.Int("pages", c.result.PageCount),
		slog.String("stop_reason", c.result.StopReason),
		slog.Duration("duration", c.result.EndTime.Sub(c.result.StartTime)),
	)

	if !s.persist {
		return res, nil
	}
	if err := pipeline.SaveSnapshot(s.cfg.CSVPath(), s.cfg.JSONPath(), c.dataset.Books()); err != nil {
		s.logger.Error("saving snapshot failed", slog.String("dir", s.cfg.OutputDir), slog.Any("error", err))
		return res, fmt.Errorf("save snapshot: %w", err)
	}
	s.logger.Info("snapshot saved",
		slog.String("csv", s.cfg.CSVPath()),
		slog.String("json", s.cfg.JSONPath()),
	)
	return res, nil
}

func (s *Scraper) step(ctx context.Context, st state, c *crawl) state {
	switch st {
	case stateAwaitingPage:
		if c.dataset.Len() >= c.target {
			c.result.StopReason = StopTargetReached
			return stateDone
		}
		c.pageURL, c.nextURL = c.nextURL, ""
		c.visited[c.pageURL] = struct{}{}
		return stateFetchingPage

	case stateFetchingPage:
		body, err := s.fetcher.Fetch(ctx, c.pageURL)
		if err != nil {
			s.logger.Error("page fetch failed, stopping crawl",
				slog.String("url", c.pageURL),
				slog.Int("count", c.dataset.Len()),
				slog.Any("error", err),
			)
			c.result.FailedURLs = append(c.result.FailedURLs, c.pageURL)
			c.result.StopReason = StopPageFetchFailed
			return stateDone
		}
		c.body = body
		return stateParsingItems

	case stateParsingItems:
		page, err := parser.ParseListing(c.body, s.base)
		c.body = nil
		if err != nil {
			s.logger.Error("page parse failed, stopping crawl",
				slog.String("url", c.pageURL),
				slog.Any("error", err),
			)
			c.result.StopReason = StopPageParseFailed
			return stateDone
		}
		c.result.PageCount++
		s.metrics.IncPages()
		s.collect(ctx, c, page.Items)
		c.nextURL = page.NextURL
		return statePaginationCheck

	case statePaginationCheck:
		s.logger.Info("page processed",
			slog.Int("page", c.result.PageCount),
			slog.String("url", c.pageURL),
			slog.Int("count", c.dataset.Len()),
		)
		if c.dataset.Len() >= c.target {
			c.result.StopReason = StopTargetReached
			return stateDone
		}
		if c.nextURL == "" {
			c.result.StopReason = StopEndOfCatalog
			return stateDone
		}
		if _, seen := c.visited[c.nextURL]; seen {
			s.logger.Warn("pagination revisits a page, stopping crawl", slog.String("url", c.nextURL))
			c.result.StopReason = StopPaginationCycle
			return stateDone
		}
		return stateAwaitingPage
	}
	return stateDone
}

// collect adds the page's items in order until the target is reached.
// Items already in the dataset are skipped before any detail request.
func (s *Scraper) collect(ctx context.Context, c *crawl, items []parser.ListingItem) {
	for _, item := range items {
		if c.dataset.Len() >= c.target {
			return
		}
		if item.Err != nil {
			s.logger.Warn("skipping unparsable item",
				slog.String("page", c.pageURL),
				slog.Any("error", item.Err),
			)
			c.result.SkippedCount++
			s.metrics.IncSkipped("parse_error")
			continue
		}

		book := item.Book
		if c.dataset.Has(book.ProductURL) {
			c.result.DuplicateCount++
			s.metrics.IncSkipped("duplicate")
			continue
		}

		if c.includeDetails {
			book = s.withDetail(ctx, c, book)
		}
		if c.dataset.Add(book) {
			s.metrics.IncBooks()
		}
	}
}

// withDetail runs the detail step for one book. A failure leaves the
// zero stock and empty description in place.
func (s *Scraper) withDetail(ctx context.Context, c *crawl, book models.Book) models.Book {
	s.logger.Debug("crawl state", slog.String("state", stateFetchingDetail.String()), slog.String("url", book.ProductURL))
	detail, err := s.enricher.Enrich(ctx, book.ProductURL)
	if err != nil {
		s.logger.Warn("detail extraction failed, using defaults",
			slog.String("url", book.ProductURL),
			slog.Any("error", err),
		)
		c.result.DetailFailures++
		s.metrics.IncDetailFailures()
		return book
	}
	book.StockQuantity = detail.StockQuantity
	book.Description = detail.Description
	return book
}
