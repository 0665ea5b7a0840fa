// Package client talks to the items HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"items-api/backend/internal/items"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

type Health struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
	Error  string    `json:"error,omitempty"`
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	err := c.do(ctx, http.MethodGet, "/api/health", nil, &h)
	return h, err
}

func (c *Client) List(ctx context.Context) ([]items.Item, error) {
	var out []items.Item
	err := c.do(ctx, http.MethodGet, "/api/items", nil, &out)
	return out, err
}

func (c *Client) Get(ctx context.Context, id int64) (items.Item, error) {
	var it items.Item
	err := c.do(ctx, http.MethodGet, itemPath(id), nil, &it)
	return it, err
}

func (c *Client) Create(ctx context.Context, in items.Input) (items.Item, error) {
	var it items.Item
	err := c.do(ctx, http.MethodPost, "/api/items", in, &it)
	return it, err
}

func (c *Client) Update(ctx context.Context, id int64, in items.Input) (items.Item, error) {
	var it items.Item
	err := c.do(ctx, http.MethodPut, itemPath(id), in, &it)
	return it, err
}

func (c *Client) Delete(ctx context.Context, id int64) (items.Item, error) {
	var out struct {
		Message string     `json:"message"`
		Item    items.Item `json:"item"`
	}
	err := c.do(ctx, http.MethodDelete, itemPath(id), nil, &out)
	return out.Item, err
}

func itemPath(id int64) string {
	return "/api/items/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
