// Package wiremockclient is a client for WireMock's admin REST API.
//
// Every operation is a single HTTP call against {baseURL}/__admin/..., except
// ClearAll and ClearAllExceptDefault, which issue two calls concurrently.
// There are no retries; timeouts and cancellation come from the context and
// the underlying *http.Client.
package wiremockclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/getmockd/captain/pkg/logging"
	"github.com/getmockd/captain/pkg/requestlog"
	"github.com/getmockd/captain/pkg/stub"
)

// Admin API paths.
const (
	mappingsPath         = "/__admin/mappings"
	mappingsResetPath    = "/__admin/mappings/reset"
	findByMetadataPath   = "/__admin/mappings/find-by-metadata"
	removeByMetadataPath = "/__admin/mappings/remove-by-metadata"
	requestsPath         = "/__admin/requests"
	unmatchedPath        = "/__admin/requests/unmatched"
	scenariosPath        = "/__admin/scenarios"
	scenariosResetPath   = "/__admin/scenarios/reset"
)

// Client is an HTTP client for one WireMock instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
	headers    http.Header
	defaults   *stub.Features
	logger     *slog.Logger
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets a timeout on every admin call. It applies to a copy of the
// HTTP client, so a client passed to WithHTTPClient is left untouched.
// Without it the client imposes no timeout beyond the context's.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithHeader adds a header to every admin request, e.g. for an auth proxy.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Add(key, value)
	}
}

// WithDefaultFeatures sets features merged under the per-call features of Register.
func WithDefaultFeatures(f *stub.Features) Option {
	return func(c *Client) {
		c.defaults = f
	}
}

// WithLogger sets the logger used for debug tracing of admin calls.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for the WireMock instance at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		headers:    make(http.Header),
		logger:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// BaseURL returns the WireMock base URL the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// DefaultFeatures returns the client's default features (may be nil).
func (c *Client) DefaultFeatures() *stub.Features {
	return c.defaults
}

// Register creates a stub mapping from req, resp and f (merged over the client defaults).
// The returned mapping's ID is what DeleteMapping expects.
func (c *Client) Register(ctx context.Context, req stub.Request, resp stub.Response, f *stub.Features) (*stub.StubMapping, error) {
	mapping, err := stub.BuildMapping(req, resp, stub.MergeFeatures(c.defaults, f))
	if err != nil {
		return nil, fmt.Errorf("build mapping: %w", err)
	}
	return c.CreateMapping(ctx, mapping)
}

// CreateMapping posts an already built mapping.
func (c *Client) CreateMapping(ctx context.Context, mapping *stub.Mapping) (*stub.StubMapping, error) {
	var created stub.StubMapping
	if err := c.call(ctx, http.MethodPost, mappingsPath, mapping, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ClearAllMappings removes every stub mapping.
func (c *Client) ClearAllMappings(ctx context.Context) error {
	return c.call(ctx, http.MethodDelete, mappingsPath, nil, nil)
}

// ClearAllRequests empties the request journal.
func (c *Client) ClearAllRequests(ctx context.Context) error {
	return c.call(ctx, http.MethodDelete, requestsPath, nil, nil)
}

// ClearAll removes every mapping and empties the request journal.
// Both calls run concurrently; there is no atomicity between them.
func (c *Client) ClearAll(ctx context.Context) error {
	return c.parallel(ctx, c.ClearAllMappings, c.ClearAllRequests)
}

// ResetMappings restores the mappings defined in the server's backing store,
// dropping everything registered at runtime.
func (c *Client) ResetMappings(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, mappingsResetPath, nil, nil)
}

// ClearAllExceptDefault resets mappings to the backing-store defaults and
// empties the request journal, concurrently.
func (c *Client) ClearAllExceptDefault(ctx context.Context) error {
	return c.parallel(ctx, c.ResetMappings, c.ClearAllRequests)
}

// DeleteMapping deletes the mapping with the given id.
func (c *Client) DeleteMapping(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, mappingsPath+"/"+url.PathEscape(id), nil, nil)
}

// GetAllMappings returns every mapping on the server.
func (c *Client) GetAllMappings(ctx context.Context) ([]stub.StubMapping, error) {
	var env mappingsEnvelope
	if err := c.call(ctx, http.MethodGet, mappingsPath, nil, &env); err != nil {
		return nil, err
	}
	return env.Mappings, nil
}

// GetMapping returns a single mapping.
func (c *Client) GetMapping(ctx context.Context, id string) (*stub.StubMapping, error) {
	var m stub.StubMapping
	if err := c.call(ctx, http.MethodGet, mappingsPath+"/"+url.PathEscape(id), nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetAllRequests returns the whole request journal.
func (c *Client) GetAllRequests(ctx context.Context) ([]requestlog.ServeEvent, error) {
	var env requestsEnvelope
	if err := c.call(ctx, http.MethodGet, requestsPath, nil, &env); err != nil {
		return nil, err
	}
	return env.Requests, nil
}

// GetUnmatchedRequests returns the requests no mapping matched.
func (c *Client) GetUnmatchedRequests(ctx context.Context) ([]requestlog.LoggedRequest, error) {
	var env unmatchedEnvelope
	if err := c.call(ctx, http.MethodGet, unmatchedPath, nil, &env); err != nil {
		return nil, err
	}
	return env.Requests, nil
}

// GetRequestsForAPI returns the journal entries whose method and url equal
// method and endpoint exactly. Filtering happens client-side.
func (c *Client) GetRequestsForAPI(ctx context.Context, method stub.Method, endpoint string) ([]requestlog.ServeEvent, error) {
	events, err := c.GetAllRequests(ctx)
	if err != nil {
		return nil, err
	}
	return requestlog.ByMethodURL(events, string(method), endpoint), nil
}

// GetAllScenarios returns every scenario and its current state.
func (c *Client) GetAllScenarios(ctx context.Context) ([]Scenario, error) {
	var env scenariosEnvelope
	if err := c.call(ctx, http.MethodGet, scenariosPath, nil, &env); err != nil {
		return nil, err
	}
	return env.Scenarios, nil
}

// ResetAllScenarios moves every scenario back to "Started".
func (c *Client) ResetAllScenarios(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, scenariosResetPath, nil, nil)
}

// FindMappingsByMetadata returns the mappings whose metadata satisfies
// {matchType: match}, e.g. ("equalToJson", map[string]any{"team": "a"}).
func (c *Client) FindMappingsByMetadata(ctx context.Context, matchType string, match any) ([]stub.StubMapping, error) {
	var env mappingsEnvelope
	if err := c.call(ctx, http.MethodPost, findByMetadataPath, map[string]any{matchType: match}, &env); err != nil {
		return nil, err
	}
	return env.Mappings, nil
}

// RemoveMappingsByMetadata deletes the mappings whose metadata satisfies {matchType: match}.
func (c *Client) RemoveMappingsByMetadata(ctx context.Context, matchType string, match any) error {
	return c.call(ctx, http.MethodPost, removeByMetadataPath, map[string]any{matchType: match}, nil)
}

// Endpoint returns a wrapper bound to method and endpoint. See NewEndpoint.
func (c *Client) Endpoint(method stub.Method, endpoint string, defaults *stub.Features) *EndpointClient {
	return NewEndpoint(c, method, endpoint, defaults)
}

// parallel runs the calls concurrently and returns the first error. A failing
// call does not cancel the others; each runs to completion.
func (c *Client) parallel(ctx context.Context, calls ...func(context.Context) error) error {
	var g errgroup.Group
	for _, call := range calls {
		g.Go(func() error { return call(ctx) })
	}
	return g.Wait()
}

// HTTP helpers

// call issues one admin request. body is JSON-encoded when non-nil; out, when
// non-nil, receives the decoded response body.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("wiremock admin call failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("wiremock admin call",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(method, path, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func parseError(method, path string, resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	apiErr := &APIError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
	var errs wiremockErrors
	if json.Unmarshal(body, &errs) == nil && len(errs.Errors) > 0 {
		titles := make([]string, 0, len(errs.Errors))
		for _, e := range errs.Errors {
			titles = append(titles, e.Title)
		}
		apiErr.Message = strings.Join(titles, "; ")
	}
	return apiErr
}
