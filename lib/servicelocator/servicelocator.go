// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package servicelocator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/bureau-foundation/gcli/lib/netutil"
)

// DefaultURL is where the Service Locator listens on every LabVIEW host.
const DefaultURL = "http://localhost:3580"

// DefaultRetryBudget bounds how long connection failures are retried.
const DefaultRetryBudget = 5 * time.Second

// cannedHeader precedes the body of the response the locator replays.
// Content-Length is right for five-digit ports, which is what the
// ephemeral range hands out; LabVIEW reads the body up to the line end.
const cannedHeader = "HTTP/1.0 200 OK\r\n" +
	"Server: Service Locator\r\n" +
	"Pragma: no-cache\r\n" +
	"Connection: Close\r\n" +
	"Content-Length: 12\r\n" +
	"Content-Type: text/html\r\n" +
	"\r\n"

// ResponseError is a locator reply with a status above 299.
type ResponseError struct {
	// Operation is "publish" or "delete".
	Operation string
	Status    int
	Body      string
}

func (e *ResponseError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("service locator %s failed with status %d", e.Operation, e.Status)
	}
	return fmt.Sprintf("service locator %s failed with status %d: %s", e.Operation, e.Status, e.Body)
}

// Client talks to one Service Locator.
type Client struct {
	// BaseURL is the locator's root. Empty means DefaultURL.
	BaseURL string

	// HTTPClient sends the requests. Nil means a client with a 10 second
	// timeout.
	HTTPClient *http.Client

	// RetryBudget bounds retries of connection failures. Zero means
	// DefaultRetryBudget.
	RetryBudget time.Duration

	// Logger receives retry and registration events. Nil means
	// slog.Default().
	Logger *slog.Logger
}

// Registration is a published port. It holds nothing but the identifier
// it was published under.
type Registration struct {
	client *Client
	id     string

	mu        sync.Mutex
	withdrawn bool
}

// RegistrationID derives the locator name for a VI launched by a given
// LabVIEW install: "cli/<major>/<bitness>/<path>" with path separators,
// drive colons, dots, spaces, and question marks removed.
func RegistrationID(viPath, majorVersion, bitness string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '.', ' ', '/', '?':
			return -1
		}
		return r
	}, viPath)
	return fmt.Sprintf("cli/%s/%s/%s", majorVersion, bitness, name)
}

// CannedResponse is the HTTP response the locator replays for port.
func CannedResponse(port int) string {
	return fmt.Sprintf("%sPort=%d\r\n", cannedHeader, port)
}

// Register publishes port under id.
func (c *Client) Register(ctx context.Context, id string, port int) (*Registration, error) {
	query := queryComponent(id) + "=" + queryComponent(CannedResponse(port))
	if err := c.get(ctx, "publish", query); err != nil {
		return nil, err
	}
	c.logger().Debug("registered with service locator", "registration_id", id, "port", port)
	return &Registration{client: c, id: id}, nil
}

// ID returns the name the port was published under.
func (r *Registration) ID() string {
	return r.id
}

// Unregister withdraws the registration. Only the first successful call
// contacts the locator.
func (r *Registration) Unregister(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.withdrawn {
		return nil
	}
	if err := r.client.get(ctx, "delete", queryComponent(r.id)); err != nil {
		return err
	}
	r.withdrawn = true
	r.client.logger().Debug("unregistered from service locator", "registration_id", r.id)
	return nil
}

// get issues GET <base>/<operation>?<rawQuery>, retrying connection
// failures within the retry budget.
func (c *Client) get(ctx context.Context, operation, rawQuery string) error {
	base := c.BaseURL
	if base == "" {
		base = DefaultURL
	}
	target := strings.TrimSuffix(base, "/") + "/" + operation + "?" + rawQuery

	attempt := 0
	send := func() error {
		attempt++
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("building service locator %s request: %w", operation, err))
		}
		response, err := c.httpClient().Do(request)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			c.logger().Debug("service locator unreachable, retrying",
				"operation", operation, "attempt", attempt, "error", err)
			return fmt.Errorf("contacting service locator for %s: %w", operation, err)
		}
		defer response.Body.Close()

		if response.StatusCode > 299 {
			return backoff.Permanent(&ResponseError{
				Operation: operation,
				Status:    response.StatusCode,
				Body:      strings.TrimSpace(netutil.ErrorBody(response.Body)),
			})
		}
		_, _ = io.Copy(io.Discard, response.Body)
		return nil
	}

	budget := c.RetryBudget
	if budget <= 0 {
		budget = DefaultRetryBudget
	}
	policy := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(100*time.Millisecond),
		backoff.WithMultiplier(2),
		backoff.WithRandomizationFactor(0.1),
		backoff.WithMaxElapsedTime(budget),
	)
	return backoff.Retry(send, backoff.WithContext(policy, ctx))
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// queryComponent percent-encodes s for the raw query. Spaces become %20
// rather than "+", and slashes are kept so identifiers stay readable in
// the locator's listing.
func queryComponent(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	return strings.ReplaceAll(escaped, "%2F", "/")
}
