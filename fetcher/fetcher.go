// Package fetcher issues GET requests with a flat retry policy.
package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aluiziolira/go-books-report/config"
	"github.com/aluiziolira/go-books-report/metrics"
)

const (
	bodyKey   = "body"
	statusKey = "status"
)

// SleepFunc waits d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Option customises a Fetcher.
type Option func(*Fetcher)

// WithTransport replaces the HTTP transport used by the collector.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *Fetcher) {
		f.collector.WithTransport(rt)
	}
}

// WithSleep replaces the wait between attempts.
func WithSleep(sleep SleepFunc) Option {
	return func(f *Fetcher) {
		f.sleep = sleep
	}
}

// Fetcher retrieves page bodies through a synchronous colly collector.
// It is not safe for concurrent use.
type Fetcher struct {
	collector   *colly.Collector
	cache       *lru.Cache[string, []byte]
	maxAttempts int
	retryDelay  time.Duration
	sleep       SleepFunc
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// New builds a fetcher configured from cfg. m may be nil.
func New(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics, opts ...Option) (*Fetcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(cfg.Timeout)
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        16,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})
	collector.OnResponse(func(r *colly.Response) {
		r.Ctx.Put(bodyKey, r.Body)
	})
	collector.OnError(func(r *colly.Response, _ error) {
		if r != nil && r.Ctx != nil {
			r.Ctx.Put(statusKey, r.StatusCode)
		}
	})

	f := &Fetcher{
		collector:   collector,
		maxAttempts: cfg.MaxAttempts,
		retryDelay:  cfg.RetryDelay,
		sleep:       sleepContext,
		logger:      logger,
		metrics:     m,
	}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, []byte](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create fetch cache: %w", err)
		}
		f.cache = cache
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.maxAttempts <= 0 {
		f.maxAttempts = 1
	}
	return f, nil
}

// Fetch returns the body at rawURL. After the last failed attempt it
// returns a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if f.cache != nil {
		if body, ok := f.cache.Get(rawURL); ok {
			f.metrics.IncRequest("cached")
			return body, nil
		}
	}

	var lastErr error
	attempts := 0
	for attempts < f.maxAttempts {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		attempts++

		start := time.Now()
		body, err := f.get(rawURL)
		f.metrics.ObserveDuration(time.Since(start))
		if err == nil {
			f.metrics.IncRequest("ok")
			if f.cache != nil {
				f.cache.Add(rawURL, body)
			}
			return body, nil
		}

		lastErr = err
		category := Classify(err)
		f.metrics.IncRequest(category)
		f.logger.Warn("fetch attempt failed",
			slog.String("url", rawURL),
			slog.Int("attempt", attempts),
			slog.Int("max_attempts", f.maxAttempts),
			slog.String("category", category),
			slog.Any("error", err),
		)

		if attempts >= f.maxAttempts {
			break
		}
		f.metrics.IncRetries()
		if err := f.sleep(ctx, f.retryDelay); err != nil {
			lastErr = err
			break
		}
	}

	f.logger.Error("fetch failed",
		slog.String("url", rawURL),
		slog.Int("attempts", attempts),
		slog.Any("error", lastErr),
	)
	return nil, &FetchError{URL: rawURL, Attempts: attempts, Err: lastErr}
}

func (f *Fetcher) get(rawURL string) ([]byte, error) {
	cctx := colly.NewContext()
	err := f.collector.Request(http.MethodGet, rawURL, nil, cctx, nil)
	if code, ok := cctx.GetAny(statusKey).(int); ok && code != 0 && (code < 200 || code >= 300) {
		return nil, &StatusError{StatusCode: code}
	}
	if err != nil {
		return nil, err
	}
	body, _ := cctx.GetAny(bodyKey).([]byte)
	return body, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
