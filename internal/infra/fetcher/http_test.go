package fetcher_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanctions-sync/internal/infra/fetcher"
	"sanctions-sync/internal/resilience/retry"
)

func testConfig() fetcher.Config {
	cfg := fetcher.DefaultConfig()
	cfg.Timeout = 2 * time.Second
	return cfg
}

func TestHTTPFetcher_Fetch_Success(t *testing.T) {
	const doc = `<sdnList xmlns="http://tempuri.org/sdnList.xsd"></sdnList>`
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(doc))
	}))
	defer server.Close()

	f := fetcher.NewHTTPFetcher(server.Client(), testConfig())
	res := f.Fetch(context.Background(), server.URL)

	require.True(t, res.OK(), "unexpected error: %v", res.Err)
	assert.Equal(t, fetcher.StatusOK, res.Status)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, doc, string(res.Body))
	assert.NoError(t, res.Err)
	assert.Equal(t, "sanctions-sync/1.0", userAgent)
}

func TestHTTPFetcher_Fetch_EmptyBodyIsNotNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	res := fetcher.NewHTTPFetcher(server.Client(), testConfig()).Fetch(context.Background(), server.URL)

	require.True(t, res.OK())
	assert.NotNil(t, res.Body)
	assert.Empty(t, res.Body)
}

func TestHTTPFetcher_Fetch_Non2xx(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusInternalServerError} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", code)
			}))
			defer server.Close()

			res := fetcher.NewHTTPFetcher(server.Client(), testConfig()).Fetch(context.Background(), server.URL)

			assert.False(t, res.OK())
			assert.Equal(t, fetcher.StatusFailed, res.Status)
			assert.Nil(t, res.Body, "failed download must carry no data")
			assert.Equal(t, code, res.StatusCode)
			assert.ErrorIs(t, res.Err, fetcher.ErrFetchFailed)

			var httpErr *retry.HTTPError
			require.True(t, errors.As(res.Err, &httpErr))
			assert.Equal(t, code, httpErr.StatusCode)
		})
	}
}

func TestHTTPFetcher_Fetch_SingleAttemptByDefault(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	res := fetcher.NewHTTPFetcher(server.Client(), testConfig()).Fetch(context.Background(), server.URL)

	assert.False(t, res.OK())
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPFetcher_Fetch_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	res := fetcher.NewHTTPFetcher(nil, testConfig()).Fetch(context.Background(), url)

	assert.False(t, res.OK())
	assert.Nil(t, res.Body)
	assert.ErrorIs(t, res.Err, fetcher.ErrFetchFailed)
}

func TestHTTPFetcher_Fetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := server.Client()
	client.Timeout = 50 * time.Millisecond
	res := fetcher.NewHTTPFetcher(client, testConfig()).Fetch(context.Background(), server.URL)

	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Err, fetcher.ErrFetchFailed)
}

func TestHTTPFetcher_Fetch_BodyTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.MaxBodySize = 1024
	res := fetcher.NewHTTPFetcher(server.Client(), cfg).Fetch(context.Background(), server.URL)

	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Err, fetcher.ErrBodyTooLarge)
}

func TestHTTPFetcher_Fetch_InvalidURL(t *testing.T) {
	f := fetcher.NewHTTPFetcher(nil, testConfig())
	for _, u := range []string{"", "ftp://example.com/sdn.xml", "://bad", "https://"} {
		t.Run(u, func(t *testing.T) {
			res := f.Fetch(context.Background(), u)
			assert.False(t, res.OK())
			assert.ErrorIs(t, res.Err, fetcher.ErrInvalidURL)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := fetcher.DefaultConfig()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Timeout = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.MaxAttempts = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.MaxBodySize = 10
	assert.Error(t, bad.Validate())
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "ok", fetcher.StatusOK.String())
	assert.Equal(t, "failed", fetcher.StatusFailed.String())
}
