// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package taskclient is a thin HTTP client for the task resource. Every call
// is one request with no retry, caching or coalescing.
package taskclient

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
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:5000/api"

const maxErrorBody = 4096

// Task is passed through verbatim; the client does not interpret it.
type Task = map[string]any

type Client struct {
	baseURL   string
	http      *http.Client
	token     string
	userAgent string
	logger    *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

func WithBearerToken(token string) Option {
	return func(cl *Client) { cl.token = token }
}

func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(cl *Client) { cl.userAgent = ua }
}

// New returns a client for the API rooted at baseURL, e.g.
// "https://tasks.example.com/api".
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 10 * time.Second},
		userAgent: "taskboard-taskclient",
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the root all task paths are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) ListTasks(ctx context.Context, f Filter) ([]Task, error) {
	var out []Task
	if err := c.do(ctx, http.MethodGet, "/tasks"+f.query(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (Task, error) {
	var out Task
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTask(ctx context.Context, task Task) (Task, error) {
	var out Task
	if err := c.do(ctx, http.MethodPost, "/tasks", task, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, task Task) (Task, error) {
	var out Task
	if err := c.do(ctx, http.MethodPut, taskPath(id), task, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteTask returns whatever the server answered with, decoded as JSON.
// An empty body yields nil.
func (c *Client) DeleteTask(ctx context.Context, id string) (any, error) {
	var out any
	if err := c.do(ctx, http.MethodDelete, taskPath(id), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func taskPath(id string) string {
	return "/tasks/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	target := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("taskclient: marshal body: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return fmt.Errorf("taskclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "task api request failed",
			slog.String("method", method),
			slog.String("url", target),
			slog.Any("error", err),
		)
		return err
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "task api request",
		slog.String("method", method),
		slog.String("url", target),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       bytes.TrimSpace(slurp),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("taskclient: read response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("taskclient: decode response: %w", err)
	}
	return nil
}
