// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package servicelocator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bureau-foundation/gcli/lib/testutil"
)

// fakeLocator records the raw request targets it receives.
type fakeLocator struct {
	mu       sync.Mutex
	requests []*url.URL
	status   int
	body     string
}

func (f *fakeLocator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.URL)
	status, body := f.status, f.body
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func (f *fakeLocator) recorded() []*url.URL {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*url.URL(nil), f.requests...)
}

func newClient(t *testing.T, locator *fakeLocator) *Client {
	t.Helper()
	server := httptest.NewServer(locator)
	t.Cleanup(server.Close)
	return &Client{
		BaseURL:     server.URL,
		RetryBudget: 200 * time.Millisecond,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestRegistrationID(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		bitness string
		want    string
	}{
		{name: "windows path 32bit", path: `C:\myVI.vi`, bitness: "32bit", want: "cli/2011/32bit/CmyVIvi"},
		{name: "windows path 64bit", path: `C:\myVI.vi`, bitness: "64bit", want: "cli/2011/64bit/CmyVIvi"},
		{name: "forward slashes", path: "/C/myVI.vi", bitness: "64bit", want: "cli/2011/64bit/CmyVIvi"},
		{name: "extended length prefix", path: `\\?\C:\myVI.vi`, bitness: "64bit", want: "cli/2011/64bit/CmyVIvi"},
		{name: "spaces removed", path: `C:\My Project\Build It.vi`, bitness: "32bit", want: "cli/2011/32bit/CMyProjectBuildItvi"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, RegistrationID(test.path, "2011", test.bitness))
		})
	}
}

func TestCannedResponse(t *testing.T) {
	response := CannedResponse(52341)
	assert.True(t, strings.HasPrefix(response, "HTTP/1.0 200 OK\r\n"))
	assert.True(t, strings.HasSuffix(response, "\r\n\r\nPort=52341\r\n"))
	assert.Len(t, "Port=52341\r\n", 12, "Content-Length header assumes a five-digit port")
}

func TestRegister_PublishesPort(t *testing.T) {
	locator := &fakeLocator{}
	client := newClient(t, locator)
	id := "cli/2024/64bit/" + testutil.UniqueID("CprojectsmainVIvi")

	registration, err := client.Register(context.Background(), id, 52341)
	require.NoError(t, err)
	assert.Equal(t, id, registration.ID())

	requests := locator.recorded()
	require.Len(t, requests, 1)
	assert.Equal(t, "/publish", requests[0].Path)

	key, value, found := strings.Cut(requests[0].RawQuery, "=")
	require.True(t, found, "raw query %q has no '='", requests[0].RawQuery)
	assert.Equal(t, id, key)
	assert.NotContains(t, value, "+", "spaces must be sent as %20")

	decoded, err := url.QueryUnescape(value)
	require.NoError(t, err)
	assert.Equal(t, CannedResponse(52341), decoded)
}

func TestRegister_ErrorStatus(t *testing.T) {
	locator := &fakeLocator{status: http.StatusInternalServerError, body: "locator broke\n"}
	client := newClient(t, locator)

	_, err := client.Register(context.Background(), "cli/2024/64bit/x", 50000)

	var responseError *ResponseError
	require.ErrorAs(t, err, &responseError)
	assert.Equal(t, "publish", responseError.Operation)
	assert.Equal(t, http.StatusInternalServerError, responseError.Status)
	assert.Equal(t, "locator broke", responseError.Body)
	assert.Len(t, locator.recorded(), 1, "status errors are not retried")
}

func TestRegister_RedirectStatusIsAnError(t *testing.T) {
	locator := &fakeLocator{status: http.StatusNotModified}
	client := newClient(t, locator)

	_, err := client.Register(context.Background(), "cli/2024/64bit/x", 50000)

	var responseError *ResponseError
	require.ErrorAs(t, err, &responseError)
	assert.Equal(t, http.StatusNotModified, responseError.Status)
}

// flakyTransport fails the first failures round trips, then delegates.
type flakyTransport struct {
	mu       sync.Mutex
	failures int
	attempts int
	next     http.RoundTripper
}

func (f *flakyTransport) RoundTrip(request *http.Request) (*http.Response, error) {
	f.mu.Lock()
	f.attempts++
	fail := f.attempts <= f.failures
	f.mu.Unlock()
	if fail {
		return nil, errors.New("connection refused")
	}
	return f.next.RoundTrip(request)
}

func TestRegister_RetriesConnectionFailures(t *testing.T) {
	locator := &fakeLocator{}
	client := newClient(t, locator)
	transport := &flakyTransport{failures: 2, next: http.DefaultTransport}
	client.HTTPClient = &http.Client{Transport: transport}
	client.RetryBudget = 5 * time.Second

	_, err := client.Register(context.Background(), "cli/2024/64bit/x", 50000)
	require.NoError(t, err)
	assert.Equal(t, 3, transport.attempts)
	assert.Len(t, locator.recorded(), 1)
}

func TestRegister_GivesUpAfterBudget(t *testing.T) {
	client := &Client{
		BaseURL:     "http://127.0.0.1:1",
		HTTPClient:  &http.Client{Transport: &flakyTransport{failures: 1 << 30}},
		RetryBudget: 150 * time.Millisecond,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	_, err := client.Register(context.Background(), "cli/2024/64bit/x", 50000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRegister_CancelledContext(t *testing.T) {
	locator := &fakeLocator{}
	client := newClient(t, locator)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Register(ctx, "cli/2024/64bit/x", 50000)
	require.ErrorIs(t, err, context.Canceled)
}

func TestUnregister_DeletesOnce(t *testing.T) {
	locator := &fakeLocator{}
	client := newClient(t, locator)
	id := "cli/2024/32bit/CmainVIvi"

	registration, err := client.Register(context.Background(), id, 50000)
	require.NoError(t, err)

	require.NoError(t, registration.Unregister(context.Background()))
	require.NoError(t, registration.Unregister(context.Background()))

	requests := locator.recorded()
	require.Len(t, requests, 2)
	assert.Equal(t, "/delete", requests[1].Path)
	assert.Equal(t, id, requests[1].RawQuery)
}

func TestUnregister_ErrorStatus(t *testing.T) {
	locator := &fakeLocator{}
	client := newClient(t, locator)

	registration, err := client.Register(context.Background(), "cli/2024/32bit/x", 50000)
	require.NoError(t, err)

	locator.mu.Lock()
	locator.status = http.StatusNotFound
	locator.mu.Unlock()

	err = registration.Unregister(context.Background())
	var responseError *ResponseError
	require.ErrorAs(t, err, &responseError)
	assert.Equal(t, "delete", responseError.Operation)
	assert.Equal(t, http.StatusNotFound, responseError.Status)
}
