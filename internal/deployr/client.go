// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package deployr is a thin client for the DeployR public HTTP API.
//
// Every call is a form-encoded POST to a path under the server endpoint
// (for example /r/user/login) with format=json. The server answers with a
// JSON envelope {"deployr":{"response":{...}}} whose "success" flag decides
// between the call-specific payload and an error message with code.
//
// A Client starts anonymous: it can execute repository scripts without a
// session. Login upgrades it to an authenticated User, which can create
// stateful Projects. The HTTP session cookie issued at login is kept in the
// client's cookie jar, so every later call on the same Client is made as
// that user. Release ends the session and makes the Client unusable.
package deployr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"dataio/cli/internal/manifest"
)

// DefaultTimeout bounds a single HTTP call. Script executions are
// synchronous on the server, so this is generous.
const DefaultTimeout = 5 * time.Minute

// Client is a connection to one DeployR server.
type Client struct {
	// baseURL is the server endpoint without trailing slash,
	// e.g. "http://localhost:8000/deployr".
	baseURL string
	// calls holds the path of each API call relative to baseURL.
	calls manifest.HTTPEndpoints
	// http carries the session cookie jar.
	http      *http.Client
	userAgent string

	mu       sync.Mutex
	released bool
	user     *User
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A cookie jar is added
// when the given client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}
		cp := *hc
		c.http = &cp
	}
}

// WithUserAgent sets the User-Agent header sent on every call.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithCalls overrides API call paths. Empty paths keep their default.
func WithCalls(calls manifest.HTTPEndpoints) Option {
	return func(c *Client) { c.calls = manifest.Default().WithOverrides(calls).HTTP }
}

// New creates an anonymous client for endpoint. It fails when the endpoint
// is not an absolute http(s) URL. No request is made.
func New(endpoint string, opts ...Option) (*Client, error) {
	base, err := manifest.BaseURL(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	c := &Client{
		baseURL:   base,
		calls:     manifest.Default().HTTP,
		http:      &http.Client{Timeout: DefaultTimeout},
		userAgent: "dataio-cli",
	}
	for _, o := range opts {
		o(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.http.Jar = jar
	}
	return c, nil
}

// Endpoint returns the normalized server endpoint.
func (c *Client) Endpoint() string { return c.baseURL }

// User returns the authenticated user, or nil for an anonymous client.
func (c *Client) User() *User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// Released reports whether Release has been called.
func (c *Client) Released() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.released
}

// Release logs out an authenticated session, drops idle connections and
// marks the client unusable. Only the first call does any work; the logout
// error, if any, is returned from that call.
func (c *Client) Release(ctx context.Context) error {
	c.mu.Lock()
	if c.released {
		c.mu.Unlock()
		return nil
	}
	user := c.user
	c.mu.Unlock()

	var err error
	if user != nil {
		_, err = c.post(ctx, c.calls.UserLogout, url.Values{})
	}

	c.mu.Lock()
	c.released = true
	c.user = nil
	c.mu.Unlock()
	c.http.CloseIdleConnections()
	return err
}

func (c *Client) checkOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return ErrReleased
	}
	return nil
}

// envelope is the outer shape of every DeployR JSON response.
type envelope struct {
	DeployR struct {
		Response *response `json:"response"`
	} `json:"deployr"`
}

type response struct {
	Call       string          `json:"call"`
	Success    bool            `json:"success"`
	Error      string          `json:"error"`
	ErrorCode  int             `json:"errorCode"`
	User       *userInfo       `json:"user"`
	Project    *projectInfo    `json:"project"`
	Execution  *executionInfo  `json:"execution"`
	Workspace  *workspaceInfo  `json:"workspace"`
	Repository *repositoryInfo `json:"repository"`
	Directory  *directoryInfo  `json:"directory"`
}

// post issues a form-encoded call and returns the decoded response.
func (c *Client) post(ctx context.Context, call string, params url.Values) (*response, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	params.Set("format", "json")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+call, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, call)
}

// postMultipart issues a multipart call carrying one file part.
func (c *Client) postMultipart(ctx context.Context, call string, params url.Values, field, filename string, content io.Reader) (*response, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	params.Set("format", "json")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vs := range params {
		for _, v := range vs {
			if err := mw.WriteField(k, v); err != nil {
				return nil, err
			}
		}
	}
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("read upload content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+call, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, call)
}

func (c *Client) do(req *http.Request, call string) (*response, error) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug().Str("call", call).Err(err).Msg("deployr call failed")
		return nil, err
	}
	defer resp.Body.Close()
	log.Debug().Str("call", call).Int("status", resp.StatusCode).Dur("took", time.Since(start)).Msg("deployr call")

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	r, decodeErr := decodeEnvelope(b)
	if decodeErr != nil || r == nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &CallError{Call: call, HTTPStatus: resp.StatusCode, Message: snippet(b)}
		}
		if decodeErr == nil {
			decodeErr = fmt.Errorf("missing deployr response")
		}
		return nil, fmt.Errorf("%s: decode response: %w", call, decodeErr)
	}
	if !r.Success || resp.StatusCode != http.StatusOK {
		msg := r.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &CallError{Call: call, Code: r.ErrorCode, HTTPStatus: resp.StatusCode, Message: msg}
	}
	return r, nil
}

func decodeEnvelope(b []byte) (*response, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, err
	}
	return env.DeployR.Response, nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	if s == "" {
		return "empty response"
	}
	return s
}

// stream issues a call whose successful answer is raw file content rather
// than a JSON envelope. The caller owns the returned body.
func (c *Client) stream(ctx context.Context, call string, params url.Values) (io.ReadCloser, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+call, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.openBody(req, call)
}

// fetch downloads an absolute or server-relative URL returned by the
// server, sending the session cookie.
func (c *Client) fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	u, err := c.resolve(rawURL)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return c.openBody(req, u)
}

func (c *Client) openBody(req *http.Request, call string) (io.ReadCloser, error) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("call", call).Int("status", resp.StatusCode).Msg("deployr download")
	if resp.StatusCode == http.StatusOK {
		return resp.Body, nil
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if r, err := decodeEnvelope(b); err == nil && r != nil {
		return nil, &CallError{Call: call, Code: r.ErrorCode, HTTPStatus: resp.StatusCode, Message: r.Error}
	}
	return nil, &CallError{Call: call, HTTPStatus: resp.StatusCode, Message: snippet(b)}
}

func (c *Client) resolve(ref string) (string, error) {
	base, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return "", err
	}
	u, err := base.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid file url %q: %w", ref, err)
	}
	return u.String(), nil
}
