// Package supabase reads the shop directory from a Supabase project through
// its PostgREST endpoint.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/supabase-community/postgrest-go"
)

const restPrefix = "/rest/v1"

// APIError is a non-2xx PostgREST response.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("supabase %s: %d %s", e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("supabase %s: %d", e.Path, e.Status)
}

// Query narrows a table read built by postgrest-go.
type Query func(q *postgrest.QueryBuilder) *postgrest.FilterBuilder

// Client wraps postgrest-go with the anon key. postgrest-go has no context
// support, so every call gets its own client bound to the caller's context.
type Client struct {
	restURL   string
	apiKey    string
	timeout   time.Duration
	transport http.RoundTripper
}

// NewClient creates a client. A nil transport uses http.DefaultTransport.
func NewClient(baseURL, apiKey string, timeout time.Duration, transport http.RoundTripper) *Client {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Client{
		restURL:   strings.TrimRight(baseURL, "/") + restPrefix,
		apiKey:    apiKey,
		timeout:   timeout,
		transport: transport,
	}
}

// Select reads table and decodes the JSON array into out.
func (c *Client) Select(ctx context.Context, table string, query Query, out any) error {
	rest, bound, cancel, err := c.bind(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	_, err = query(rest.From(table)).ExecuteTo(out)
	return bound.wrap(table, err)
}

// RPC calls a Postgres function through POST /rest/v1/rpc/{fn}.
func (c *Client) RPC(ctx context.Context, fn string, args any, out any) error {
	rest, bound, cancel, err := c.bind(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	if args == nil {
		args = struct{}{}
	}
	path := "rpc/" + fn
	body := rest.Rpc(fn, "", args)
	if err := bound.wrap(path, rest.ClientError); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Ping checks that the REST endpoint answers with the configured key.
func (c *Client) Ping(ctx context.Context) error {
	var rows []json.RawMessage
	return c.Select(ctx, "shops", func(q *postgrest.QueryBuilder) *postgrest.FilterBuilder {
		return q.Select("id", "", false).Limit(1, "")
	}, &rows)
}

func (c *Client) bind(ctx context.Context) (*postgrest.Client, *boundTransport, context.CancelFunc, error) {
	rest := postgrest.NewClient(c.restURL, "", map[string]string{"apikey": c.apiKey})
	if rest.ClientError != nil {
		return nil, nil, nil, fmt.Errorf("supabase url: %w", rest.ClientError)
	}
	rest.SetAuthToken(c.apiKey)

	cancel := context.CancelFunc(func() {})
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	}
	bound := &boundTransport{ctx: ctx, next: c.transport}
	rest.Transport.Parent = bound
	return rest, bound, cancel, nil
}

// boundTransport sends postgrest-go requests under ctx and keeps the body of
// a failed response, which postgrest-go reduces to a bare message.
type boundTransport struct {
	ctx    context.Context
	next   http.RoundTripper
	failed *APIError
}

func (t *boundTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req.WithContext(t.ctx))
	if err != nil || resp.StatusCode < 300 {
		return resp, err
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	_ = resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(raw))

	apiErr := &APIError{Status: resp.StatusCode}
	_ = json.Unmarshal(raw, apiErr)
	t.failed = apiErr
	return resp, nil
}

func (t *boundTransport) wrap(path string, err error) error {
	if t.failed != nil {
		t.failed.Path = path
		return t.failed
	}
	if err != nil {
		return fmt.Errorf("supabase %s: %w", path, err)
	}
	return nil
}
