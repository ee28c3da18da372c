package worldbank

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrFetch classifies every failure to obtain a response body.
var ErrFetch = errors.New("indicator fetch failed")

// FetchError describes a failed retrieval. It matches ErrFetch with errors.Is.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status code: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// Client provides access to the World Bank indicator API
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient creates a new indicator client. Every fetch is bounded by timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Fetch performs exactly one GET for spec and returns the body as text.
// It does not retry: any failure is returned as a *FetchError.
func (c *Client) Fetch(ctx context.Context, spec RequestSpec) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, spec.URL, nil)
	if err != nil {
		return "", &FetchError{URL: spec.URL, Err: err}
	}
	for key, values := range spec.Headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &FetchError{URL: spec.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", &FetchError{URL: spec.URL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{URL: spec.URL, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	return string(body), nil
}
