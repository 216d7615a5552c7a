// Package api is the typed client for the content REST API: record CRUD per
// entity, the multipart media upload gateway, and the auth endpoints. Every
// response travels in a {data, meta, message} envelope; failures surface as
// *Error with the server's message when one was given.
package api

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

	"github.com/google/uuid"

	"github.com/pointzapp/bhakti-console/internal/record"
	"github.com/pointzapp/bhakti-console/internal/session"
)

// DefaultTimeout bounds a single request when the caller supplies no client.
const DefaultTimeout = 30 * time.Second

// Client issues authenticated requests against the content API.
type Client struct {
	base    string
	http    *http.Client
	session *session.Session
	logger  *slog.Logger
}

// New creates a client rooted at baseURL. The session supplies the bearer
// token and receives the logout broadcast when the server rejects it.
func New(baseURL string, httpClient *http.Client, sess *session.Session, log *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		base:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    httpClient,
		session: sess,
		logger:  log.With(slog.String("component", "api")),
	}
}

// Mantras returns the mantra record endpoints.
func (c *Client) Mantras() *MantraService { return &MantraService{c: c} }

// Stories returns the story record endpoints.
func (c *Client) Stories() *StoryService { return &StoryService{c: c} }

// envelope is the wire shape every endpoint responds with.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Meta    *meta           `json:"meta"`
	Message string          `json:"message"`
}

type meta struct {
	Pagination record.Pagination `json:"pagination"`
}

// getJSON performs a read. Reads are idempotent and retried once on transport
// errors and 5xx responses; auth rejections and client errors are final.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) (record.Pagination, error) {
	env, err := c.do(ctx, http.MethodGet, path, query, nil, "", true)
	if err != nil {
		return record.Pagination{}, err
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return record.Pagination{}, fmt.Errorf("decode %s response: %w", path, err)
		}
	}
	if env.Meta != nil {
		return env.Meta.Pagination, nil
	}
	return record.Pagination{}, nil
}

// sendJSON performs a mutation with a JSON body. Mutations are never retried;
// the user resubmits.
func (c *Client) sendJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		reader = bytes.NewReader(encoded)
	}
	env, err := c.do(ctx, method, path, nil, reader, "application/json", false)
	if err != nil {
		return err
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, retriable bool) (*envelope, error) {
	var payload []byte
	if body != nil {
		// Buffer the body so a retried read can replay it. Mutations never
		// retry, but the buffer also feeds the error path's request log.
		var err error
		payload, err = io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
	}

	attempts := 1
	if retriable {
		attempts = 2
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		env, err, final := c.doOnce(ctx, method, path, query, payload, contentType)
		if err == nil {
			return env, nil
		}
		lastErr = err
		if final || ctx.Err() != nil {
			return nil, err
		}
		if attempt < attempts {
			c.logger.Warn("retrying read",
				slog.String("method", method),
				slog.String("path", path),
				slog.Any("error", err))
		}
	}
	return nil, lastErr
}

// doOnce runs a single HTTP exchange. final reports whether the error must
// not be retried (client errors, auth rejections, decode failures).
func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, payload []byte, contentType string) (*envelope, error, bool) {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err), true
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.session != nil {
		if token := c.session.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err), false
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", method, path, err), false
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		// The server no longer accepts the credentials: terminate the
		// session globally and fail the in-flight operation.
		if c.session != nil {
			c.session.Logout()
		}
		return nil, newError(resp.StatusCode, raw), true
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newError(resp.StatusCode, raw), resp.StatusCode < 500
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("decode %s %s envelope: %w", method, path, err), true
		}
	}
	return &env, nil, false
}
