// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway is the single path from the portal client to the EduPortal
// REST API.
//
// Every request carries the bearer token from the auth context, a request id
// and passes an outbound rate limiter. Answers are classified into the fault
// taxonomy. Failures that end the session (transport errors, HTTP 401 and a
// negative session-status answer) are also reported to the session-failure
// hook so the session clock can expire.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jeranaias/eduportal-tui/internal/auth"
	"github.com/jeranaias/eduportal-tui/internal/fault"
)

const (
	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 15 * time.Second

	// MaxResponseSize caps a response body.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB

	// SessionStatusPath is the authoritative remaining-time endpoint.
	SessionStatusPath = "/api/auth/session-status"

	userAgent = "eduportal-tui"
)

// ErrResponseTooLarge is returned when a body exceeds MaxResponseSize.
var ErrResponseTooLarge = errors.New("response exceeds size limit")

// TokenSource supplies the bearer token. *auth.Context satisfies it.
type TokenSource interface {
	Token() string
}

// Options tunes a Client.
type Options struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	HTTPClient        *http.Client
}

// Client talks to one portal server.
type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger

	mu        sync.RWMutex
	onFailure func(error)
}

// New creates a client for baseURL. tokens may be nil for unauthenticated use.
func New(baseURL string, tokens TokenSource, opts Options, log zerolog.Logger) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    httpClient,
		limiter: rate.NewLimiter(limit, burst),
		log:     log.With().Str("component", "gateway").Logger(),
	}
}

// BaseURL returns the server root.
func (c *Client) BaseURL() string { return c.baseURL }

// SetSessionFailureHook registers fn for failures that end the session. fn
// runs on the goroutine that issued the request.
func (c *Client) SetSessionFailureHook(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFailure = fn
}

func (c *Client) fail(err error) {
	c.mu.RLock()
	fn := c.onFailure
	c.mu.RUnlock()
	if fn != nil {
		fn(err)
	}
}

// =============================================================================
// RESULT
// =============================================================================

// Result is a decoded portal answer.
type Result struct {
	Success bool
	Message string
	Status  int
	fields  map[string]json.RawMessage
}

// Has reports whether the answer carried key.
func (r *Result) Has(key string) bool {
	if r == nil {
		return false
	}
	_, ok := r.fields[key]
	return ok
}

// Decode unmarshals the field key into v.
func (r *Result) Decode(key string, v any) error {
	if r == nil {
		return fmt.Errorf("decode %q: no result", key)
	}
	raw, ok := r.fields[key]
	if !ok {
		return fmt.Errorf("decode %q: field missing", key)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %q: %w", key, err)
	}
	return nil
}

// String returns the string field key, or "".
func (r *Result) String(key string) string {
	var s string
	if err := r.Decode(key, &s); err != nil {
		return ""
	}
	return s
}

// =============================================================================
// REQUESTS
// =============================================================================

type request struct {
	method   string
	endpoint string
	body     any
	auth     bool // send the bearer token; 401 means the session is gone
	hook     bool // report session-ending failures
}

// Call issues an authenticated request. A success=false answer returns the
// result together with a *fault.Rejection.
func (c *Client) Call(ctx context.Context, method, endpoint string, body any) (*Result, error) {
	res, err := c.do(ctx, request{method: method, endpoint: endpoint, body: body, auth: true, hook: true})
	if err != nil {
		return res, err
	}
	if endpoint == SessionStatusPath && !res.Success {
		err = fmt.Errorf("%w: %s", fault.ErrAuthExpired, res.Message)
		c.fail(err)
		return res, err
	}
	if !res.Success {
		return res, &fault.Rejection{Status: res.Status, Message: res.Message}
	}
	return res, nil
}

// Get is Call with GET.
func (c *Client) Get(ctx context.Context, endpoint string) (*Result, error) {
	return c.Call(ctx, http.MethodGet, endpoint, nil)
}

// Post is Call with POST.
func (c *Client) Post(ctx context.Context, endpoint string, body any) (*Result, error) {
	return c.Call(ctx, http.MethodPost, endpoint, body)
}

// Put is Call with PUT.
func (c *Client) Put(ctx context.Context, endpoint string, body any) (*Result, error) {
	return c.Call(ctx, http.MethodPut, endpoint, body)
}

// Delete is Call with DELETE and no body.
func (c *Client) Delete(ctx context.Context, endpoint string) (*Result, error) {
	return c.Call(ctx, http.MethodDelete, endpoint, nil)
}

func (c *Client) do(ctx context.Context, req request) (*Result, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := readResponse(resp.Body)
	if err != nil {
		err = fmt.Errorf("%w: read %s: %v", fault.ErrNetwork, req.endpoint, err)
		if req.hook {
			c.fail(err)
		}
		return nil, err
	}
	return c.classify(req, resp.StatusCode, data)
}

// send builds and sends req. Errors are already classified.
func (c *Client) send(ctx context.Context, req request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	var body io.Reader
	if req.body != nil && hasBody(req.method) {
		data, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", req.endpoint, err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	c.setHeaders(httpReq, req, requestID, body != nil)

	start := time.Now()
	c.log.Debug().
		Str("event", "api_request").
		Str("request_id", requestID).
		Str("method", req.method).
		Str("endpoint", req.endpoint).
		Msg("request")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Warn().
			Str("event", "api_response").
			Str("request_id", requestID).
			Str("endpoint", req.endpoint).
			Err(err).
			Msg("transport failure")
		err = fmt.Errorf("%w: %s %s: %v", fault.ErrNetwork, req.method, req.endpoint, err)
		if req.hook {
			c.fail(err)
		}
		return nil, err
	}

	c.log.Debug().
		Str("event", "api_response").
		Str("request_id", requestID).
		Str("endpoint", req.endpoint).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("response")
	return resp, nil
}

func (c *Client) setHeaders(r *http.Request, req request, requestID string, hasJSON bool) {
	r.Header.Set("Accept", "application/json")
	r.Header.Set("User-Agent", userAgent)
	r.Header.Set("X-Request-ID", requestID)
	if hasJSON {
		r.Header.Set("Content-Type", "application/json")
	}
	if req.auth && c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			r.Header.Set("Authorization", "Bearer "+tok)
		}
	}
}

// classify maps a raw answer to a Result or a fault.
func (c *Client) classify(req request, status int, data []byte) (*Result, error) {
	if status == http.StatusUnauthorized && req.auth {
		err := fmt.Errorf("%w: %s returned 401", fault.ErrAuthExpired, req.endpoint)
		if req.hook {
			c.fail(err)
		}
		return nil, err
	}

	res := &Result{Status: status}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &res.fields); err != nil {
			if status >= 400 {
				return nil, &fault.Rejection{Status: status}
			}
			return nil, fmt.Errorf("decode %s response: %w", req.endpoint, err)
		}
	}
	if raw, ok := res.fields["success"]; ok {
		_ = json.Unmarshal(raw, &res.Success)
	} else {
		res.Success = status < 400
	}
	res.Message = res.String("message")
	if res.Message == "" {
		res.Message = res.String("error")
	}
	if status >= 400 {
		res.Success = false
	}
	return res, nil
}

// hasBody reports whether method carries a JSON body. GET and DELETE never do,
// even when Call is given one.
func hasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut:
		return true
	}
	return false
}

// readResponse reads at most MaxResponseSize bytes.
func readResponse(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxResponseSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxResponseSize {
		return nil, ErrResponseTooLarge
	}
	return data, nil
}

// =============================================================================
// SESSION ENDPOINTS
// =============================================================================

// LoginResult is the answer to a successful login.
type LoginResult struct {
	Token   string
	User    auth.User
	Message string
}

// Login exchanges credentials for a session token. It never reports to the
// session-failure hook; bad credentials come back as a *fault.Rejection.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	res, err := c.do(ctx, request{
		method:   http.MethodPost,
		endpoint: "/api/auth/login",
		body:     map[string]string{"username": username, "password": password},
	})
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, &fault.Rejection{Status: res.Status, Message: res.Message}
	}
	out := &LoginResult{Token: res.String("session_token"), Message: res.Message}
	if err := res.Decode("user", &out.User); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, fmt.Errorf("login: server returned no session token")
	}
	return out, nil
}

// Logout ends the server session. Failures are returned but never reported
// to the hook: the caller is already tearing the session down.
func (c *Client) Logout(ctx context.Context) error {
	res, err := c.do(ctx, request{method: http.MethodPost, endpoint: "/api/auth/logout", auth: true})
	if err != nil {
		return err
	}
	if !res.Success {
		return &fault.Rejection{Status: res.Status, Message: res.Message}
	}
	return nil
}

// ForgotPassword resets a password after checking the year of birth on
// record. It needs no session and returns the server's confirmation.
func (c *Client) ForgotPassword(ctx context.Context, username, dobYear, newPassword string) (string, error) {
	res, err := c.do(ctx, request{
		method:   http.MethodPost,
		endpoint: "/api/auth/forgot-password",
		body: map[string]string{
			"username":     username,
			"dob_year":     dobYear,
			"new_password": newPassword,
		},
	})
	if err != nil {
		return "", err
	}
	if !res.Success {
		return "", &fault.Rejection{Status: res.Status, Message: res.Message}
	}
	return res.Message, nil
}

// Status is the answer of the session-status endpoint.
type Status struct {
	Remaining int
	Total     int
	Username  string
	Role      auth.Role
}

// SessionStatus asks the server how long the session has left.
func (c *Client) SessionStatus(ctx context.Context) (Status, error) {
	res, err := c.Get(ctx, SessionStatusPath)
	if err != nil {
		return Status{}, err
	}
	var st Status
	if err := res.Decode("remaining_seconds", &st.Remaining); err != nil {
		err = fmt.Errorf("%w: %v", fault.ErrAuthExpired, err)
		c.fail(err)
		return Status{}, err
	}
	_ = res.Decode("total_seconds", &st.Total)
	var user struct {
		Username string    `json:"username"`
		Role     auth.Role `json:"role"`
	}
	if res.Decode("user", &user) == nil {
		st.Username, st.Role = user.Username, user.Role
	}
	return st, nil
}

// Remaining adapts SessionStatus to the session clock's fetch signature.
func (c *Client) Remaining(ctx context.Context) (int, error) {
	st, err := c.SessionStatus(ctx)
	return st.Remaining, err
}

// =============================================================================
// DOWNLOADS
// =============================================================================

// Download is a fetched export.
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Download fetches a non-JSON resource such as a CSV export. A JSON answer
// is returned as-is so callers can decode report payloads.
func (c *Client) Download(ctx context.Context, endpoint string) (*Download, error) {
	resp, err := c.send(ctx, request{method: http.MethodGet, endpoint: endpoint, auth: true, hook: true})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := readResponse(resp.Body)
	if err != nil {
		err = fmt.Errorf("%w: read %s: %v", fault.ErrNetwork, endpoint, err)
		c.fail(err)
		return nil, err
	}
	if resp.StatusCode >= 400 {
		req := request{method: http.MethodGet, endpoint: endpoint, auth: true, hook: true}
		res, err := c.classify(req, resp.StatusCode, data)
		if err != nil {
			return nil, err
		}
		return nil, &fault.Rejection{Status: res.Status, Message: res.Message}
	}

	d := &Download{ContentType: resp.Header.Get("Content-Type"), Data: data}
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			d.Filename = params["filename"]
		}
	}
	return d, nil
}

// IsJSON reports whether the download is a JSON document.
func (d *Download) IsJSON() bool {
	mediaType, _, err := mime.ParseMediaType(d.ContentType)
	return err == nil && mediaType == "application/json"
}
