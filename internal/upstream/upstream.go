// Package upstream provides the clients for the external data sources the
// dashboard depends on: the Disdagkopukm commodity price API, the BMKG
// public weather forecast API, OpenWeather current conditions, the
// Disdukcapil region registry, and weather/agriculture RSS bulletins.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// --- Sentinel errors ---

// ErrNotFound is returned when an upstream resource cannot be resolved.
var ErrNotFound = fmt.Errorf("resource not found")

// ErrBadPayload is returned when an upstream response does not match any
// of the shapes the client understands.
var ErrBadPayload = fmt.Errorf("unrecognized upstream payload")

// ErrRateLimited is returned when a source rate-limits the request.
var ErrRateLimited = fmt.Errorf("rate limited by upstream")

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// --- Shared HTTP client helpers ---

// DefaultUserAgent identifies requests to the public APIs.
const DefaultUserAgent = "EcoScope/1.0 (+https://github.com/ecoscope-id/ecoscope)"

// HTTPClient is a pre-configured HTTP client with reasonable timeouts.
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}

// doGet performs a GET request and returns the response body. The caller
// is responsible for closing the returned ReadCloser.
func doGet(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json, text/html, */*")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := HTTPClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP GET %s: %w", url, err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, resp.StatusCode, fmt.Errorf("%w: %s", ErrRateLimited, url)
		}
		return nil, resp.StatusCode, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	return resp.Body, resp.StatusCode, nil
}

// GetJSON fetches a URL and reads the whole body. Exported for sibling
// packages that call JSON services through the shared client.
func GetJSON(ctx context.Context, url string) ([]byte, error) {
	return getJSON(ctx, url)
}

// getJSON fetches a URL and reads the whole body.
func getJSON(ctx context.Context, url string) ([]byte, error) {
	body, _, err := doGet(ctx, url, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}
