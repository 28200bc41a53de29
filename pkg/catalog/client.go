// Package catalog is a small REST client for the live-catalog HTTP surface.
// Reads carry an opaque cache-busting query parameter supplied by a
// TokenSource, typically the livefeed client, so an intermediary HTTP cache
// never answers with a view older than the last invalidation notice.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avatarctic/live-catalog/internal/core/domain/product"
	"github.com/google/uuid"
)

// TokenSource supplies the cache-busting value attached to read requests and
// refreshes it after local mutations.
type TokenSource interface {
	BypassToken() string
	Bump() string
}

// localTokenSource is the fallback when no live feed is wired in.
type localTokenSource struct{ token string }

func (l *localTokenSource) BypassToken() string { return l.token }
func (l *localTokenSource) Bump() string {
	l.token = uuid.NewString()
	return l.token
}

// MutationResult is the body of PUT and DELETE responses.
type MutationResult struct {
	Message string          `json:"message"`
	Product product.Product `json:"product"`
}

// RefreshResult is the body of POST /api/products/refresh.
type RefreshResult struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenSource wires an external bypass-token source, usually the
// livefeed client so notices and reads share one token.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		tokens:  &localTokenSource{token: uuid.NewString()},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) List(ctx context.Context) ([]product.Product, error) {
	var out []product.Product
	if err := c.do(ctx, http.MethodGet, c.readURL("/api/products"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id string) (*product.Product, error) {
	var out product.Product
	if err := c.do(ctx, http.MethodGet, c.readURL("/api/products/"+url.PathEscape(id)), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Create(ctx context.Context, req *product.CreateProductRequest) (*product.Product, error) {
	var out product.Product
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/api/products", req, &out); err != nil {
		return nil, err
	}
	c.tokens.Bump()
	return &out, nil
}

func (c *Client) Update(ctx context.Context, id string, req *product.UpdateProductRequest) (*MutationResult, error) {
	var out MutationResult
	if err := c.do(ctx, http.MethodPut, c.baseURL+"/api/products/"+url.PathEscape(id), req, &out); err != nil {
		return nil, err
	}
	c.tokens.Bump()
	return &out, nil
}

func (c *Client) Delete(ctx context.Context, id string) (*MutationResult, error) {
	var out MutationResult
	if err := c.do(ctx, http.MethodDelete, c.baseURL+"/api/products/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	c.tokens.Bump()
	return &out, nil
}

func (c *Client) Refresh(ctx context.Context) (*RefreshResult, error) {
	var out RefreshResult
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/api/products/refresh", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// readURL appends the bypass token to a read path.
func (c *Client) readURL(p string) string {
	return c.baseURL + p + "?v=" + url.QueryEscape(c.tokens.BypassToken())
}

func (c *Client) do(ctx context.Context, method, rawURL string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return product.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("catalog: %s (status %d)", apiErr.Message, resp.StatusCode)
		}
		if apiErr.Error != "" {
			return fmt.Errorf("catalog: %s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("catalog: unexpected status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
