package engine

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// maxPageBytes caps how much of any single upstream body is read.
const maxPageBytes = 6 * 1024 * 1024

// FetchBody performs a GET with exponential backoff and returns the (decompressed) body.
// isHTML controls Accept headers: HTML for watch pages, XML/plain for caption tracks.
// The whole call, retries included, is bounded by cfg.FetchTimeout.
func FetchBody(ctx context.Context, fetchURL string, isHTML bool) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()

	resp, err := fetchWithRetry(ctx, fetchURL, isHTML)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return readResponseBody(resp)
}

// fetchWithRetry performs an HTTP GET with retry logic using exponential backoff.
func fetchWithRetry(ctx context.Context, fetchURL string, isHTML bool) (*http.Response, error) {
	operation := func() (*http.Response, error) {
		if err := WaitYouTube(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		if isHTML {
			for k, v := range ChromeHeaders() {
				req.Header.Set(k, v)
			}
		} else {
			req.Header.Set("User-Agent", RandomUserAgent())
			req.Header.Set("Accept", "text/xml,application/xml,text/plain,*/*;q=0.9")
		}
		req.Header.Set("Accept-Encoding", "gzip")

		resp, err := cfg.HTTPClient.Do(req)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		if isRetryableStatus(resp.StatusCode) {
			resp.Body.Close()
			return nil, &HTTPStatusError{StatusCode: resp.StatusCode}
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, backoff.Permanent(&HTTPStatusError{StatusCode: resp.StatusCode})
		}

		return resp, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 4 * time.Second

	resp, err := backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(3), backoff.WithMaxElapsedTime(cfg.FetchTimeout))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", fetchURL, err)
	}
	return resp, nil
}

// readResponseBody reads the response body, handling gzip decompression if needed.
func readResponseBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(io.LimitReader(r, maxPageBytes))
}
