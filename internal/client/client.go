// Package client is a small Go client for the tasklane REST API, used by the
// smoke checker and by tests.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tasklane.dev/internal/apperr"
	"tasklane.dev/internal/tasks"
)

// Client talks to one API base URL, e.g. http://localhost:3001/api. A Client
// carries at most one bearer token and is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// Option configures Client.
type Option func(*Client)

// WithHTTPClient replaces the default 10s-timeout client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy of c that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// Error is a non-2xx response. It unwraps to the apperr sentinel matching the
// status code so callers can use errors.Is.
type Error struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

func (e *Error) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("%d %s (request %s)", e.Status, e.Message, e.RequestID)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return apperr.ErrUnauthorized
	case http.StatusConflict:
		return apperr.ErrConflict
	case http.StatusNotFound:
		return apperr.ErrNotFound
	case http.StatusBadRequest:
		return apperr.ErrBadRequest
	case http.StatusInternalServerError:
		return apperr.ErrInternal
	default:
		return nil
	}
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// Session is what register and login hand back. RefreshToken is empty after
// login.
type Session struct {
	User         User
	AccessToken  string
	RefreshToken string
}

func (c *Client) Register(ctx context.Context, name, email, password string) (Session, error) {
	var out struct {
		Data         User   `json:"data"`
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/register", map[string]string{
		"name": name, "email": email, "password": password,
	}, &out)
	if err != nil {
		return Session{}, err
	}
	return Session{User: out.Data, AccessToken: out.AccessToken, RefreshToken: out.RefreshToken}, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var out struct {
		AccessToken string `json:"accessToken"`
		User        User   `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email": email, "password": password,
	}, &out)
	if err != nil {
		return Session{}, err
	}
	return Session{User: out.User, AccessToken: out.AccessToken}, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// NewTask is the create payload; Deadline is optional.
type NewTask struct {
	Title       string     `json:"title"`
	Difficulty  string     `json:"difficulty"`
	Status      string     `json:"status,omitempty"`
	Description string     `json:"description,omitempty"`
	Comment     string     `json:"comment,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// TaskUpdate carries only the fields to change.
type TaskUpdate struct {
	Title       *string    `json:"title,omitempty"`
	Difficulty  *string    `json:"difficulty,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Description *string    `json:"description,omitempty"`
	Comment     *string    `json:"comment,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

func (c *Client) ListTasks(ctx context.Context) ([]tasks.Task, error) {
	var out []tasks.Task
	err := c.do(ctx, http.MethodGet, "/todolists", nil, &out)
	return out, err
}

func (c *Client) GetTask(ctx context.Context, id string) (tasks.Task, error) {
	var out tasks.Task
	err := c.do(ctx, http.MethodGet, "/todolists/"+id, nil, &out)
	return out, err
}

func (c *Client) CreateTask(ctx context.Context, in NewTask) (tasks.Task, error) {
	var out tasks.Task
	err := c.do(ctx, http.MethodPost, "/todolists", in, &out)
	return out, err
}

func (c *Client) UpdateTask(ctx context.Context, id string, in TaskUpdate) (tasks.Task, error) {
	var out tasks.Task
	err := c.do(ctx, http.MethodPut, "/todolists/"+id, in, &out)
	return out, err
}

func (c *Client) AssignTask(ctx context.Context, id, email string) (tasks.Task, error) {
	var out tasks.Task
	err := c.do(ctx, http.MethodPut, "/todolists/"+id+"/assign", map[string]string{"email": email}, &out)
	return out, err
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/todolists/"+id, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
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
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &Error{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
