package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"

	"sanctions-sync/internal/observability/logging"
	"sanctions-sync/internal/observability/metrics"
	"sanctions-sync/internal/observability/tracing"
	"sanctions-sync/internal/resilience/circuitbreaker"
	"sanctions-sync/internal/resilience/retry"
)

// HTTPFetcher downloads documents with a plain GET.
// Calls go through a circuit breaker and, when Config.MaxAttempts > 1, a retry loop.
type HTTPFetcher struct {
	client         *http.Client
	cfg            Config
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewHTTPClient creates the HTTP client used for downloads.
// TLS 1.2+ is enforced; redirects follow the net/http defaults.
func NewHTTPClient(cfg Config) *http.Client {
	return &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

// NewHTTPFetcher creates a fetcher using client. A nil client gets NewHTTPClient(cfg).
func NewHTTPFetcher(client *http.Client, cfg Config) *HTTPFetcher {
	if client == nil {
		client = NewHTTPClient(cfg)
	}
	return &HTTPFetcher{
		client:         client,
		cfg:            cfg,
		circuitBreaker: circuitbreaker.New(circuitbreaker.DownloadConfig()),
		retryConfig:    retry.DownloadConfig(cfg.MaxAttempts),
	}
}

// CircuitBreaker exposes the download breaker for health reporting.
func (f *HTTPFetcher) CircuitBreaker() *circuitbreaker.CircuitBreaker {
	return f.circuitBreaker
}

// Fetch downloads rawURL and never returns an error directly: failures are
// logged and reported through Result.Status and Result.Err (wrapping
// ErrFetchFailed), with a nil Body.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) Result {
	logger := logging.FromContext(ctx)
	start := time.Now()
	host := hostOf(rawURL)

	ctx, span := tracing.StartSpan(ctx, "fetcher.Fetch", attribute.String("http.url", rawURL))

	var (
		body       []byte
		statusCode int
	)
	err := validateURL(rawURL)
	if err == nil {
		err = retry.WithBackoff(ctx, f.retryConfig, func() error {
			cbResult, cbErr := f.circuitBreaker.Execute(func() (interface{}, error) {
				return f.doFetch(ctx, rawURL)
			})
			if cbErr != nil {
				if errors.Is(cbErr, gobreaker.ErrOpenState) {
					logger.Warn("download circuit breaker open, request rejected",
						slog.String("url", rawURL),
						slog.String("state", f.circuitBreaker.State().String()))
				}
				var httpErr *retry.HTTPError
				if errors.As(cbErr, &httpErr) {
					statusCode = httpErr.StatusCode
				}
				return cbErr
			}
			body = cbResult.([]byte)
			statusCode = http.StatusOK
			return nil
		})
	}

	duration := time.Since(start)
	tracing.EndSpan(span, err)

	if err != nil {
		metrics.RecordDownload(host, false, duration, 0)
		logger.Error("error downloading file",
			slog.String("url", rawURL),
			slog.Int("status_code", statusCode),
			slog.Duration("duration", duration),
			slog.Any("error", err))
		return Result{
			URL:        rawURL,
			Status:     StatusFailed,
			StatusCode: statusCode,
			Err:        fmt.Errorf("%w: %s: %w", ErrFetchFailed, rawURL, err),
			Duration:   duration,
		}
	}

	metrics.RecordDownload(host, true, duration, len(body))
	logger.Debug("download completed",
		slog.String("url", rawURL),
		slog.Int("bytes", len(body)),
		slog.Duration("duration", duration))
	return Result{
		URL:        rawURL,
		Status:     StatusOK,
		StatusCode: statusCode,
		Body:       body,
		Duration:   duration,
	}
}

// doFetch performs one GET without retry or circuit breaker.
func (f *HTTPFetcher) doFetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain a little so the connection can be reused
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	limit := f.cfg.MaxBodySize
	if limit <= 0 {
		limit = DefaultConfig().MaxBodySize
	}
	var buf bytes.Buffer
	if resp.ContentLength > 0 && resp.ContentLength <= limit {
		buf.Grow(int(resp.ContentLength))
	}
	n, err := buf.ReadFrom(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if n > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, limit)
	}

	// A 2xx with an empty body is still a successful download of an empty document.
	body := buf.Bytes()
	if body == nil {
		body = []byte{}
	}
	return body, nil
}

// validateURL accepts only absolute http and https URLs.
func validateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: parse error: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme '%s' not allowed (only http/https)", ErrInvalidURL, u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("%w: empty hostname", ErrInvalidURL)
	}
	return nil
}

// hostOf returns the URL host for metric labels, or "invalid".
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "invalid"
	}
	return u.Host
}
