// Package api is the HTTP client for the taskkeeper server.
//
// Protected calls take the session token explicitly; the client itself is
// stateless and safe for concurrent use. Responses are mapped to the
// sentinel errors below (match with errors.Is) or to *Error carrying the
// server's message.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// Error is a non-2xx reply that maps to no sentinel.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemInput is the body of create and update requests.
type ItemInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
}

type AuthResult struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the server at baseURL (e.g. "http://localhost:3001").
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", baseURL)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// Ping checks that the server answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", "", nil, nil)
}

func (c *Client) Register(ctx context.Context, email string, password []byte, name string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": string(password), "name": name}
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Login(ctx context.Context, email string, password []byte) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": string(password)}
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var res struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", token, nil, &res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

func (c *Client) ListItems(ctx context.Context, token string) ([]Item, error) {
	var res struct {
		Items []Item `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/items", token, nil, &res); err != nil {
		return nil, err
	}
	return res.Items, nil
}

func (c *Client) GetItem(ctx context.Context, token, id string) (*Item, error) {
	var res struct {
		Item Item `json:"item"`
	}
	if err := c.do(ctx, http.MethodGet, itemPath(id), token, nil, &res); err != nil {
		return nil, err
	}
	return &res.Item, nil
}

func (c *Client) CreateItem(ctx context.Context, token string, in ItemInput) (*Item, error) {
	var res struct {
		Item Item `json:"item"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/items", token, in, &res); err != nil {
		return nil, err
	}
	return &res.Item, nil
}

func (c *Client) UpdateItem(ctx context.Context, token, id string, in ItemInput) (*Item, error) {
	var res struct {
		Item Item `json:"item"`
	}
	if err := c.do(ctx, http.MethodPut, itemPath(id), token, in, &res); err != nil {
		return nil, err
	}
	return &res.Item, nil
}

func (c *Client) DeleteItem(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, itemPath(id), token, nil, nil)
}

func itemPath(id string) string {
	return "/api/items/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var e struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&e)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 500 && e.Error == "":
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if e.Error == "" {
		e.Error = http.StatusText(resp.StatusCode)
	}
	return &Error{Status: resp.StatusCode, Message: e.Error}
}
