package fetcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aluiziolira/go-books-report/config"
	"github.com/aluiziolira/go-books-report/metrics"
)

const pageURL = "http://example.test/catalogue/page-1.html"

type recordedSleep struct {
	delays []time.Duration
}

func (r *recordedSleep) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func newTestFetcher(t *testing.T, transport http.RoundTripper, cacheSize int) (*Fetcher, *recordedSleep, *metrics.Metrics) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.CacheSize = cacheSize
	rec := &recordedSleep{}
	m := metrics.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f, err := New(cfg, logger, m, WithTransport(transport), WithSleep(rec.sleep))
	require.NoError(t, err)
	return f, rec, m
}

func TestFetchSuccess(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", pageURL, httpmock.NewStringResponder(200, "<html>ok</html>"))

	f, rec, m := newTestFetcher(t, transport, 0)
	body, err := f.Fetch(context.Background(), pageURL)

	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", string(body))
	assert.Empty(t, rec.delays)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("ok")))
}

func TestFetchRetriesWithFixedDelayThenFails(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", pageURL, httpmock.NewStringResponder(http.StatusServiceUnavailable, ""))

	f, rec, m := newTestFetcher(t, transport, 0)
	body, err := f.Fetch(context.Background(), pageURL)

	require.Error(t, err)
	assert.Nil(t, body)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, 3, fetchErr.Attempts)
	assert.Equal(t, pageURL, fetchErr.URL)

	var status *StatusError
	require.True(t, errors.As(err, &status))
	assert.Equal(t, http.StatusServiceUnavailable, status.StatusCode)

	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, rec.delays)
	assert.Equal(t, 3, transport.GetCallCountInfo()["GET "+pageURL])
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RetriesTotal))
}

func TestFetchRecoversOnSecondAttempt(t *testing.T) {
	transport := httpmock.NewMockTransport()
	calls := 0
	transport.RegisterResponder("GET", pageURL, func(req *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			return nil, &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
		}
		return httpmock.NewStringResponse(200, "second"), nil
	})

	f, rec, _ := newTestFetcher(t, transport, 0)
	body, err := f.Fetch(context.Background(), pageURL)

	require.NoError(t, err)
	assert.Equal(t, "second", string(body))
	assert.Len(t, rec.delays, 1)
}

func TestFetchCacheServesRepeatedURL(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", pageURL, httpmock.NewStringResponder(200, "cached body"))

	f, _, m := newTestFetcher(t, transport, 4)
	for i := 0; i < 3; i++ {
		body, err := f.Fetch(context.Background(), pageURL)
		require.NoError(t, err)
		assert.Equal(t, "cached body", string(body))
	}

	assert.Equal(t, 1, transport.GetCallCountInfo()["GET "+pageURL])
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("cached")))
}

func TestFetchStopsOnCanceledContext(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", pageURL, httpmock.NewStringResponder(200, "never"))

	f, _, _ := newTestFetcher(t, transport, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fetch(ctx, pageURL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, transport.GetCallCountInfo()["GET "+pageURL])
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil", err: nil, expected: "ok"},
		{name: "context timeout", err: context.DeadlineExceeded, expected: "timeout"},
		{name: "canceled", err: context.Canceled, expected: "canceled"},
		{name: "net timeout", err: &net.DNSError{IsTimeout: true}, expected: "timeout"},
		{name: "connection", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, expected: "connection"},
		{name: "forbidden", err: &StatusError{StatusCode: http.StatusForbidden}, expected: "forbidden"},
		{name: "not found", err: &StatusError{StatusCode: http.StatusNotFound}, expected: "not_found"},
		{name: "rate limited", err: &StatusError{StatusCode: http.StatusTooManyRequests}, expected: "rate_limited"},
		{name: "server error", err: &StatusError{StatusCode: http.StatusBadGateway}, expected: "status"},
		{name: "wrapped", err: &FetchError{URL: "u", Attempts: 3, Err: &StatusError{StatusCode: 404}}, expected: "not_found"},
		{name: "other", err: errors.New("some other error"), expected: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.expected {
				t.Fatalf("Classify(%v) = %q, want %q", tt.err, got, tt.expected)
			}
		})
	}
}
