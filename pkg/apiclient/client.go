// Package apiclient talks to the joke bot REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/harveywai/jokeadmin/pkg/models"
)

// DefaultBaseURL is where the bot API listens in a local setup.
const DefaultBaseURL = "http://localhost:8080"

// ErrRequestFailed is the single failure kind reported for any unsuccessful call:
// transport errors, non-2xx statuses and undecodable bodies alike.
var ErrRequestFailed = errors.New("request failed")

// RequestError describes a failed call for diagnostics.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	Err        error
}

func (e *RequestError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: request failed", e.Method, e.Path)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (%d)", e.StatusCode)
	}
	if e.Body != "" {
		fmt.Fprintf(&b, ": %s", e.Body)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Is makes every RequestError match ErrRequestFailed.
func (e *RequestError) Is(target error) bool { return target == ErrRequestFailed }

func (e *RequestError) Unwrap() error { return e.Err }

// Client is a typed client for the bot API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New returns a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// ListTriggers handles GET /api/triggers.
func (c *Client) ListTriggers(ctx context.Context) ([]models.Trigger, error) {
	var out []models.Trigger
	if err := c.request(ctx, http.MethodGet, "/api/triggers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTrigger handles POST /api/triggers.
func (c *Client) CreateTrigger(ctx context.Context, value string) error {
	return c.request(ctx, http.MethodPost, "/api/triggers", models.CreateTriggerRequest{Value: value}, nil)
}

// DeleteTrigger handles DELETE /api/triggers/:id.
func (c *Client) DeleteTrigger(ctx context.Context, id uint) error {
	return c.request(ctx, http.MethodDelete, "/api/triggers/"+idString(id), nil, nil)
}

// ListJokes handles GET /api/triggers/:id/jokes.
func (c *Client) ListJokes(ctx context.Context, triggerID uint) ([]models.Joke, error) {
	var out []models.Joke
	if err := c.request(ctx, http.MethodGet, "/api/triggers/"+idString(triggerID)+"/jokes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateJoke handles POST /api/triggers/:id/jokes.
func (c *Client) CreateJoke(ctx context.Context, triggerID uint, text string) error {
	return c.request(ctx, http.MethodPost, "/api/triggers/"+idString(triggerID)+"/jokes", models.CreateJokeRequest{Text: text}, nil)
}

// DeleteJoke handles DELETE /api/jokes/:id.
func (c *Client) DeleteJoke(ctx context.Context, id uint) error {
	return c.request(ctx, http.MethodDelete, "/api/jokes/"+idString(id), nil, nil)
}

// ListStandaloneJokes handles GET /api/jokes-x.
func (c *Client) ListStandaloneJokes(ctx context.Context) ([]models.StandaloneJoke, error) {
	var out []models.StandaloneJoke
	if err := c.request(ctx, http.MethodGet, "/api/jokes-x", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateStandaloneJoke handles POST /api/jokes-x.
func (c *Client) CreateStandaloneJoke(ctx context.Context, text string) error {
	return c.request(ctx, http.MethodPost, "/api/jokes-x", models.CreateJokeRequest{Text: text}, nil)
}

// DeleteStandaloneJoke handles DELETE /api/jokes-x/:id.
func (c *Client) DeleteStandaloneJoke(ctx context.Context, id uint) error {
	return c.request(ctx, http.MethodDelete, "/api/jokes-x/"+idString(id), nil, nil)
}

func (c *Client) request(ctx context.Context, method, path string, in, out any) error {
	fail := func(status int, body string, err error) error {
		return &RequestError{Method: method, Path: path, StatusCode: status, Body: body, Err: err}
	}

	var body io.Reader
	if in != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return fail(0, "", err)
		}
		body = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fail(0, "", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(0, "", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fail(resp.StatusCode, strings.TrimSpace(string(payload)), nil)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fail(resp.StatusCode, "", fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
