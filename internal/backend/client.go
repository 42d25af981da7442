// Package backend is the storefront's client for the shop's REST API.
package backend

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

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// HeaderRequestID carries the storefront request ID to the backend.
const HeaderRequestID = "X-Request-ID"

// ErrUnavailable means the backend could not be reached or the breaker
// is refusing calls.
var ErrUnavailable = errors.New("backend unavailable")

// APIError is a non-2xx answer. Reason holds the backend's {"error": ...}
// text when it sent one.
type APIError struct {
	StatusCode int
	Reason     string
}

func (e *APIError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("backend returned %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Reason)
}

// IsUnauthenticated reports whether err says the visitor is not logged in:
// a 401/403 status, or a reason asking the user to log in.
func IsUnauthenticated(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden {
		return true
	}
	reason := strings.ToLower(apiErr.Reason)
	return strings.Contains(reason, "giriş") || strings.Contains(reason, "login")
}

// Reason returns the message to show the user for err, or fallback when
// the backend gave none.
func Reason(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Reason != "" {
		return apiErr.Reason
	}
	return fallback
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// Client talks to one backend base URL. Calls carry the visitor's backend
// session cookies found on the context.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*response]
	log     *zap.Logger
}

func NewClient(baseURL string, httpClient *http.Client, log *zap.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q: scheme and host required", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	c := &Client{baseURL: u, http: httpClient, log: log}
	c.breaker = gobreaker.NewCircuitBreaker[*response](gobreaker.Settings{
		Name:        "backend",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Client errors are the caller's problem, not the backend's health.
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.StatusCode < http.StatusInternalServerError
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return c, nil
}

// do sends one request and returns the raw 2xx response. Non-2xx answers
// become *APIError; transport failures and an open breaker wrap
// ErrUnavailable.
func (c *Client) do(ctx context.Context, method, path string, in any) (*response, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.ResolveReference(&url.URL{Path: path}).String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := RequestID(ctx); id != "" {
		req.Header.Set(HeaderRequestID, id)
	}
	for _, ck := range Cookies(ctx) {
		req.AddCookie(ck)
	}

	resp, err := c.breaker.Execute(func() (*response, error) {
		httpResp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer httpResp.Body.Close()

		data, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return nil, err
		}
		r := &response{status: httpResp.StatusCode, header: httpResp.Header, body: data}
		if r.status < 200 || r.status > 299 {
			return r, &APIError{StatusCode: r.status, Reason: errorReason(data)}
		}
		return r, nil
	})
	if err != nil {
		var apiErr *APIError
		switch {
		case errors.As(err, &apiErr):
			c.log.Debug("backend rejected request",
				zap.String("method", method),
				zap.String("path", path),
				zap.Int("status", apiErr.StatusCode))
			return resp, apiErr
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			c.log.Warn("backend call failed",
				zap.String("method", method),
				zap.String("path", path),
				zap.Error(err))
			return nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
		}
	}
	return resp, nil
}

// call performs a request and decodes a 2xx JSON body into out (when non-nil).
func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	resp, err := c.do(ctx, method, path, in)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func errorReason(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}
