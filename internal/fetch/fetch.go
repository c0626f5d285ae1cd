// Package fetch resolves the export source argument into a byte stream.
// The source is either a local file path or an http(s) URL; remote fetches
// retry transient failures with exponential backoff before the parser ever
// sees a byte.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/sievetools/jirasieve/internal/debug"
)

const fetchMaxElapsed = 2 * time.Minute

func newFetchBackoff() backoff.BackOff {
	// BackOff implementations are stateful; always return a fresh instance.
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = fetchMaxElapsed
	return bo
}

// IsURL reports whether source names a remote stream rather than a file.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Open returns a reader over the dump named by source. The caller owns the
// returned ReadCloser. For URLs, only establishing the response is retried;
// a failure mid-body is fatal like any other parse-phase error, since the
// run is atomic anyway.
func Open(ctx context.Context, source string, timeout time.Duration) (io.ReadCloser, error) {
	if !IsURL(source) {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open dump: %w", err)
		}
		return f, nil
	}
	return openURL(ctx, source, timeout)
}

func openURL(ctx context.Context, url string, timeout time.Duration) (io.ReadCloser, error) {
	client := &http.Client{Timeout: timeout}

	var body io.ReadCloser
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			debug.Logf("fetch: %v (retrying)\n", err)
			return err // network errors are transient - retry
		}
		switch {
		case resp.StatusCode == http.StatusOK:
			body = resp.Body
			return nil
		case resp.StatusCode >= 500:
			resp.Body.Close()
			debug.Logf("fetch: server returned %s (retrying)\n", resp.Status)
			return fmt.Errorf("server error: %s", resp.Status)
		default:
			// 4xx will not get better by asking again.
			resp.Body.Close()
			return backoff.Permanent(fmt.Errorf("fetch failed: %s", resp.Status))
		}
	}

	if err := backoff.Retry(operation, backoff.WithContext(newFetchBackoff(), ctx)); err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	return body, nil
}
