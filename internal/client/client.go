// Package client is the REST client the admin tools use to reach the auth
// and sales backends.
//
// Any 401 clears the token store and reports ErrUnauthorized, so callers
// only have to send the user back to the login screen.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/jordymora1978/dropux-admin/internal/config"
	"github.com/jordymora1978/dropux-admin/internal/logger"
)

var ErrUnauthorized = errors.New("session expired, sign in again")

// APIError is a non-2xx response other than 401.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details json.RawMessage
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// TokenStore holds the bearer token between requests.
type TokenStore interface {
	Token() string
	SetToken(token string)
	Clear()
}

// MemoryTokenStore keeps the token in process memory.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

func (m *MemoryTokenStore) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *MemoryTokenStore) SetToken(token string) {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
}

func (m *MemoryTokenStore) Clear() {
	m.SetToken("")
}

type Client struct {
	endpoints      config.Endpoints
	httpClient     *http.Client
	tokens         TokenStore
	onUnauthorized func()
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithOnUnauthorized registers a hook run after a 401 purged the token.
func WithOnUnauthorized(fn func()) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

func New(endpoints config.Endpoints, tokens TokenStore, opts ...Option) *Client {
	if tokens == nil {
		tokens = &MemoryTokenStore{}
	}
	c := &Client{
		endpoints:  endpoints,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
	Detail string `json:"detail"`
}

// do sends a JSON request and decodes the raw response body into out.
func (c *Client) do(ctx context.Context, method, base, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		logger.WithModule("client").Warnf("🔒 %s %s returned 401, clearing session", method, path)
		c.tokens.Clear()
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return ErrUnauthorized
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var env envelope
		if json.Unmarshal(raw, &env) == nil {
			switch {
			case env.Error != nil:
				apiErr.Code = env.Error.Code
				apiErr.Message = env.Error.Message
				apiErr.Details = env.Error.Details
			case env.Detail != "":
				apiErr.Message = env.Detail
			}
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// data sends a request to an endpoint answering with the standard envelope
// and decodes its data field into out.
func (c *Client) data(ctx context.Context, method, base, path string, body, out interface{}) error {
	var env envelope
	if err := c.do(ctx, method, base, path, body, &env); err != nil {
		return err
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

// Login exchanges credentials for a token and stores it.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.data(ctx, http.MethodPost, c.endpoints.Auth, "/auth/login", body, &out); err != nil {
		return err
	}
	c.tokens.SetToken(out.AccessToken)
	return nil
}

func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, c.endpoints.Auth, "/auth/logout", nil, nil)
	c.tokens.Clear()
	return err
}
