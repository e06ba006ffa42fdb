// Package upstream is the JSON-over-HTTP client used for every collaborator
// call. Each call gets its own timeout and is never retried; a per-collaborator
// circuit breaker fails calls fast while the collaborator is down.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/tradecart/pkg/apperr"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultTimeout = 5 * time.Second
	maxErrorBody   = 4 << 10

	// DefaultBreakerFailures consecutive failures open the breaker, which
	// stays open for DefaultBreakerCooldown before letting one call through.
	DefaultBreakerFailures = 5
	DefaultBreakerCooldown = 30 * time.Second
)

// StatusError records a non-2xx answer. The body is kept for logs only.
type StatusError struct {
	Service string
	Code    int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Service, e.Code, e.Body)
}

// Client calls one collaborator rooted at BaseURL.
type Client struct {
	name    string
	baseURL string
	timeout time.Duration
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
}

func New(name, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	return c.WithBreaker(DefaultBreakerFailures, DefaultBreakerCooldown)
}

// WithBreaker replaces the circuit breaker: it opens after failures
// consecutive collaborator failures and half-opens after cooldown.
func (c *Client) WithBreaker(failures uint32, cooldown time.Duration) *Client {
	c.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        c.name,
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: collaboratorHealthy,
	})
	return c
}

// WithHTTPClient swaps the transport, mainly for tests.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

func (c *Client) Name() string { return c.name }

// Do sends body as JSON (when non-nil) and decodes a 2xx response into out
// (when non-nil). Errors are classified with apperr and name the collaborator.
// While the breaker is open Do returns UpstreamUnavailable without calling out.
func (c *Client) Do(ctx context.Context, method, path string, header http.Header, body, out any) error {
	_, err := c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, c.do(ctx, method, path, header, body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperr.Wrap(apperr.UpstreamUnavailable, err, fmt.Sprintf("%s unavailable", c.name))
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, header http.Header, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", c.name, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", c.name, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return apperr.Wrap(apperr.UpstreamTimeout, err, fmt.Sprintf("%s timed out", c.name))
		}
		return apperr.Wrap(apperr.UpstreamUnavailable, err, fmt.Sprintf("%s unavailable", c.name))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return c.classify(&StatusError{Service: c.name, Code: resp.StatusCode, Body: string(snippet)})
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Wrap(apperr.UpstreamUnavailable, err, fmt.Sprintf("%s returned an invalid response", c.name))
	}
	return nil
}

func (c *Client) classify(se *StatusError) error {
	switch se.Code {
	case http.StatusUnauthorized:
		return apperr.Wrap(apperr.Unauthorized, se, fmt.Sprintf("%s rejected the credentials", c.name))
	case http.StatusForbidden:
		return apperr.Wrap(apperr.Forbidden, se, fmt.Sprintf("%s denied access", c.name))
	case http.StatusNotFound:
		return apperr.Wrap(apperr.NotFound, se, fmt.Sprintf("%s: resource not found", c.name))
	default:
		return apperr.Wrap(apperr.UpstreamUnavailable, se, fmt.Sprintf("%s returned %d", c.name, se.Code))
	}
}

// collaboratorHealthy reports whether err says nothing about the
// collaborator's health: client errors and caller cancellation do not count.
func collaboratorHealthy(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	if code := StatusCode(err); code != 0 {
		return code < http.StatusInternalServerError
	}
	switch apperr.KindOf(err) {
	case apperr.UpstreamUnavailable, apperr.UpstreamTimeout:
		return false
	default:
		return true
	}
}

// StatusCode returns the collaborator's HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// Bearer is a header set carrying an Authorization value.
func Bearer(authorization string) http.Header {
	h := http.Header{}
	if authorization != "" {
		h.Set("Authorization", authorization)
	}
	return h
}
