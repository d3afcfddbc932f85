// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

const (
	// DefaultTimeout bounds how long a unary call waits for a reply
	// before it is treated as failed with "no response".
	DefaultTimeout = 10 * time.Second

	// MaxResponseSize caps a unary response body.
	MaxResponseSize = 10 * 1024 * 1024
)

// RequestOptions are per-call knobs. The zero value is correct for
// almost every call.
type RequestOptions struct {
	// SkipErrorHandler suppresses error presentation for this call: the
	// classifier does not run, but the session guard still does, and
	// the error is still returned to the caller.
	SkipErrorHandler bool

	// Headers are extra request headers, set after the standard ones.
	Headers map[string]string
}

// Client is the unary request pipeline. Every business call goes
// through it: credential injection outbound, session guard and payload
// normalization inbound, envelope check, then classification of any
// failure. It is safe for concurrent use.
type Client struct {
	baseURL string

	// mu guards the pieces Reconfigure swaps at runtime; in-flight
	// requests keep the snapshot they started with.
	mu sync.RWMutex

	// httpClient carries the unary timeout; streamClient has none, a
	// generation stream is bounded by its context instead.
	httpClient   *http.Client
	streamClient *http.Client
	guard        *SessionGuard

	store      CredentialStore
	classifier *Classifier
}

// NewClient builds the pipeline around a server base URL and the
// injected collaborators.
func NewClient(baseURL string, store CredentialStore, nav Navigator, presenter Presenter) *Client {
	return &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		streamClient: &http.Client{},
		store:        store,
		guard:        &SessionGuard{Navigator: nav, Presenter: presenter},
		classifier:   &Classifier{Presenter: presenter, Navigator: nav},
	}
}

// WithTimeout sets the unary reply deadline.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.httpClient.Timeout = timeout
	return c
}

// WithLoginPath overrides the route expired sessions are sent to.
func (c *Client) WithLoginPath(path string) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.guard.LoginPath = path
	return c
}

// WithPublicPaths overrides the route prefixes exempt from the login
// redirect.
func (c *Client) WithPublicPaths(paths []string) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.guard.PublicPaths = paths
	return c
}

// Reconfigure applies reloaded settings to a running client. The config
// watcher calls it from its own goroutine, so the timeout and guard are
// swapped whole rather than mutated in place.
func (c *Client) Reconfigure(timeout time.Duration, loginPath string, publicPaths []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.httpClient = &http.Client{Timeout: timeout}
	c.guard = &SessionGuard{
		Navigator:   c.guard.Navigator,
		Presenter:   c.guard.Presenter,
		LoginPath:   loginPath,
		PublicPaths: publicPaths,
	}
}

// snapshot reads the swappable collaborators consistently.
func (c *Client) snapshot() (unary, stream *http.Client, guard *SessionGuard) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.httpClient, c.streamClient, c.guard
}

// BaseURL returns the configured server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// UNARY OPERATIONS
// =============================================================================

// GetJSON issues a GET and decodes the envelope content into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any, opts *RequestOptions) error {
	return c.do(ctx, http.MethodGet, path, "", nil, out, opts)
}

// PostJSON issues a POST with a JSON body and decodes the envelope
// content into out. body may be nil.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any, opts *RequestOptions) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			err = fmt.Errorf("failed to marshal request: %w", err)
			c.classify(err, opts)
			return err
		}
		reader = bytes.NewReader(encoded)
	}
	return c.do(ctx, http.MethodPost, path, "application/json", reader, out, opts)
}

// PostForm issues a form-encoded POST (the login endpoint's shape) and
// decodes the envelope content into out.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out any, opts *RequestOptions) error {
	reader := strings.NewReader(form.Encode())
	return c.do(ctx, http.MethodPost, path, "application/x-www-form-urlencoded;charset=UTF-8", reader, out, opts)
}

// Delete issues a DELETE and decodes the envelope content into out.
func (c *Client) Delete(ctx context.Context, path string, out any, opts *RequestOptions) error {
	return c.do(ctx, http.MethodDelete, path, "", nil, out, opts)
}

// =============================================================================
// PIPELINE
// =============================================================================

// do runs one unary call through the full pipeline and hands any
// failure to the classifier exactly once. The error is returned either
// way; presentation has already happened unless the call was marked
// skip.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any, opts *RequestOptions) error {
	if opts == nil {
		opts = &RequestOptions{}
	}

	err := c.doOnce(ctx, method, path, contentType, body, out, opts)
	if err != nil {
		c.classify(err, opts)
	}
	return err
}

func (c *Client) classify(err error, opts *RequestOptions) {
	if c.classifier != nil && c.classifier.Presenter != nil {
		c.classifier.Handle(err, opts)
	}
}

func (c *Client) doOnce(ctx context.Context, method, path, contentType string, body io.Reader, out any, opts *RequestOptions) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.injectCredential(req)
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	log.Printf("API request: %s %s", method, path)
	start := time.Now()

	httpClient, _, guard := c.snapshot()
	resp, err := httpClient.Do(req)
	if err != nil {
		// Sent (or attempted), no reply. Timeouts land here too.
		return fmt.Errorf("%w: %v", ErrNoResponse, err)
	}
	defer resp.Body.Close()

	raw, err := readLimited(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoResponse, err)
	}

	log.Printf("API response: %d %s (%v)", resp.StatusCode, path, time.Since(start))

	// Session expiry is detected here, before any error classification,
	// on success and failure paths alike.
	guard.Intercept(resp.StatusCode, opts)

	// Downstream code only ever sees camelCase keys.
	normalized := camelizeJSON(raw)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{Status: resp.StatusCode, Body: normalized}
	}

	var env Envelope
	if err := json.Unmarshal(normalized, &env); err != nil {
		// Not an envelope: contract deviation, degrade to the generic
		// transport path.
		return &TransportError{Status: resp.StatusCode, Body: normalized}
	}

	if !env.Success {
		return bizErrorFromContent(env.Content)
	}

	if out != nil && len(env.Content) > 0 {
		if err := json.Unmarshal(env.Content, out); err != nil {
			return fmt.Errorf("failed to parse response content: %w", err)
		}
	}
	return nil
}

// injectCredential attaches the Authorization header when a credential
// is present. It never blocks and never fails.
func (c *Client) injectCredential(req *http.Request) {
	if c.store == nil {
		return
	}
	if cred, ok := c.store.Get(); ok {
		req.Header.Set("Authorization", cred.AuthorizationValue())
	}
}

// bizErrorFromContent turns a failed envelope's content into the typed
// business error: an array becomes the bulk-validation shape, anything
// else (including malformed content) a single BizError.
func bizErrorFromContent(content json.RawMessage) error {
	if items, ok := validationItemsFromBody(content); ok {
		return &BizErrorList{Items: items}
	}

	var ec ErrorContent
	if len(content) > 0 {
		if err := json.Unmarshal(content, &ec); err != nil {
			ec = ErrorContent{ShowType: ShowErrorMessage}
		}
	} else {
		ec = ErrorContent{ShowType: ShowErrorMessage}
	}
	return &BizError{Content: ec}
}

// readLimited reads a response body with a size cap.
func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxResponseSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return data, nil
}

// camelizeJSON rewrites a JSON body with camelCase keys. Non-JSON or
// empty bodies come back untouched; normalization never fails.
func camelizeJSON(raw []byte) []byte {
	if len(raw) == 0 {
		return raw
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return raw
	}
	normalized, err := json.Marshal(CamelizeKeys(v))
	if err != nil {
		return raw
	}
	return normalized
}
