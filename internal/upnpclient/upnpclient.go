// Package upnpclient is the one HTTP client shared by grammar
// bootstrap (device description + SCPD fetch) and the liveness probe.
// It wraps github.com/hashicorp/go-retryablehttp with retries disabled
// — bootstrap and probing are each meant to fail fast on the first
// attempt (§7), not retry, but a real client library keeps this
// ambient concern consistent with the rest of the dependency stack
// instead of a hand-rolled net/http.Client.
package upnpclient

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"

	retryablehttp "github.com/hashicorp/go-retryablehttp"
)

// Client performs single-attempt, timeout-bounded GET requests.
type Client struct {
	hc *retryablehttp.Client
}

// New builds a Client with the given per-request timeout.
func New(timeout time.Duration) *Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 0
	c.Logger = log.New(io.Discard, "", 0)
	c.HTTPClient.Timeout = timeout
	return &Client{hc: c}
}

// Fetch issues a GET and returns the response body.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// Alive issues a GET and reports whether it completed without error.
// The response body is discarded: only reachability matters.
func (c *Client) Alive(ctx context.Context, url string) bool {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}
