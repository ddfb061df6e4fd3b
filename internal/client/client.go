// Package client talks to the project backend over HTTP+JSON.
package client

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

	"golang.org/x/oauth2"

	"taskboard/internal/kanban"
	"taskboard/internal/model"
)

// DefaultTimeout bounds every backend call.
const DefaultTimeout = 10 * time.Second

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// Client implements kanban.Backend against the REST API.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

var _ kanban.Backend = (*Client)(nil)

// New creates a client that sends token as a bearer credential.
// An empty token sends no Authorization header.
func New(baseURL, token string, timeout time.Duration) *Client {
	if token == "" {
		return NewWithHTTPClient(baseURL, &http.Client{}, timeout)
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	return NewWithTokenSource(baseURL, src, timeout)
}

// NewWithTokenSource creates a client whose bearer token is read from src on
// every request. src is not wrapped in a reuse cache, so a source that swaps
// its token takes effect on the next call.
func NewWithTokenSource(baseURL string, src oauth2.TokenSource, timeout time.Duration) *Client {
	httpClient := &http.Client{
		Transport: &oauth2.Transport{Source: src, Base: http.DefaultTransport},
	}
	return NewWithHTTPClient(baseURL, httpClient, timeout)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		timeout: timeout,
	}
}

// FetchBoard returns the ordered columns and tasks of a project.
func (c *Client) FetchBoard(ctx context.Context, projectID string) (*model.Board, error) {
	var resp boardResponse
	path := "/projects/" + url.PathEscape(projectID) + "/tasks"
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch board: %w", err)
	}
	return resp.toModel(projectID), nil
}

// MoveTask persists a task's final column and position.
func (c *Client) MoveTask(ctx context.Context, move kanban.Move) error {
	path := "/tasks/" + url.PathEscape(move.TaskID) + "/move"
	body := moveRequest{ColumnID: move.ColumnID, Position: move.Position}
	if err := c.do(ctx, http.MethodPatch, path, body, nil); err != nil {
		return fmt.Errorf("move task: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var e errorResponse
		if json.Unmarshal(data, &e) == nil {
			apiErr.Message = e.Error
			if apiErr.Message == "" {
				apiErr.Message = e.Message
			}
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
