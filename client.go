// Package pkghub is a client for the pkghub package-hosting API. It
// authenticates, manages package and release metadata, and transfers
// package distribution files with integrity verification and
// bandwidth-conscious streaming.
//
// # Thread Safety
//
// All Client methods are safe for concurrent use by multiple goroutines.
// Concurrent transfers share only the HTTP connection pools; each transfer
// owns its own staging grant and source stream.
package pkghub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"

	"golang.org/x/mod/semver"

	huberrors "github.com/pkghub/pkghub-go/errors"
	"github.com/pkghub/pkghub-go/internal/transfer"
)

// Version is the protocol version this client speaks. It is sent on every
// request and compared against the server's version header.
const Version = "0.9.2"

// headerAPIVersion carries the protocol version in both directions.
const headerAPIVersion = "X-Pkghub-Api-Version"

// errorBodyLimit caps how much of a failed response is read for its message.
const errorBodyLimit = 1 << 20

// Client is a pkghub API client. Configuration is explicit and per-instance;
// there is no process-wide session state.
type Client struct {
	baseURL string

	// httpClient serves the metadata plane; its pool is shared by
	// concurrent transfers
	httpClient *http.Client

	// noRedirect is httpClient with redirect following suppressed, used
	// for the conditional download validator request
	noRedirect *http.Client

	logger *slog.Logger

	// coordinator runs the distribution transfer protocol
	coordinator *transfer.Coordinator

	// mu protects token, which Authenticate and SetToken may replace
	mu    sync.RWMutex
	token string

	// skewOnce limits the version-skew warning to once per client
	skewOnce sync.Once
}

// New creates a Client with the given options.
//
// Example usage:
//
//	client, err := pkghub.New(
//	    pkghub.WithToken(token),
//	    pkghub.WithLogger(slog.Default()),
//	)
func New(opts ...ClientOption) (*Client, error) {
	options := DefaultClientOptions()
	for _, opt := range opts {
		opt(options)
	}

	if options.BaseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	if _, err := url.Parse(options.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", options.BaseURL, err)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultRequestTimeout}
	}

	client := &Client{
		baseURL:    strings.TrimRight(options.BaseURL, "/"),
		token:      options.Token,
		httpClient: httpClient,
		noRedirect: noRedirectClient(httpClient),
		logger:     options.Logger,
	}
	client.coordinator = transfer.New(apiBridge{client}, options.StoreTimeout, options.Logger)

	return client, nil
}

// SetToken replaces the authentication token used by subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the authentication token currently in use.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// noRedirectClient derives a client that surfaces redirect responses
// instead of following them, so the validator comparison happens before
// committing to a second, larger transfer.
func noRedirectClient(base *http.Client) *http.Client {
	clone := *base
	clone.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &clone
}

// newRequest builds a request against the API with the shared default
// headers applied.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set(headerAPIVersion, Version)
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "token "+token)
	}
	return req, nil
}

// doJSON performs a JSON request/response round trip. The allowed statuses
// default to 200; anything else is classified into a typed error. out may
// be nil when the response body is not needed.
func (c *Client) doJSON(ctx context.Context, op, method, path string, payload, out any, allowed ...int) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return huberrors.NewError(op, fmt.Errorf("encoding request body: %w", err))
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return huberrors.NewError(op, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return huberrors.NewError(op, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if err := c.checkResponse(op, resp, allowed); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &huberrors.Error{
			Op:      op,
			Message: "decoding response body",
			Err:     fmt.Errorf("%w: %w", huberrors.ErrInvalidResponse, err),
		}
	}
	return nil
}

// checkResponse compares protocol versions and classifies non-allowed
// statuses into typed errors, extracting the server's error message from
// the body when present.
func (c *Client) checkResponse(op string, resp *http.Response, allowed []int) error {
	c.warnOnVersionSkew(resp)

	if len(allowed) == 0 {
		allowed = []int{http.StatusOK}
	}
	if slices.Contains(allowed, resp.StatusCode) {
		return nil
	}

	var message string
	data, err := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	if err == nil && len(data) > 0 {
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
			message = payload.Error
		}
	}

	return huberrors.FromStatus(op, resp.StatusCode, message)
}

// warnOnVersionSkew logs a non-fatal warning when the server speaks a newer
// protocol version than this client. Skew never aborts a transfer.
func (c *Client) warnOnVersionSkew(resp *http.Response) {
	server := resp.Header.Get(headerAPIVersion)
	if server == "" {
		return
	}
	if !semver.IsValid("v"+server) || semver.Compare("v"+server, "v"+Version) <= 0 {
		return
	}
	c.skewOnce.Do(func() {
		c.logger.Warn("server speaks a newer protocol version; please update the client",
			"server_version", server,
			"client_version", Version)
	})
}

// apiPath joins path segments into an escaped API path.
func apiPath(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}
