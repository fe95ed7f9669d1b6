// Package api provides the HTTP request wrapper for the ifconnect REST
// backend. It serializes bodies, attaches the bearer token, and normalizes
// success and error payloads; it does not cache, retry, or deduplicate.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ifconnect/client/internal/domain/shared"
	"github.com/ifconnect/client/internal/infrastructure/metrics"
)

// Response bodies larger than this are rejected.
const maxBodySize = 8 << 20

// TokenSource supplies the bearer token attached to every request. An empty
// token means the current session is tokenless and no header is attached.
type TokenSource interface {
	Token() string
}

// Config holds client configuration.
type Config struct {
	// BaseURL is the base URL for API requests, e.g. http://localhost:8080/api.
	BaseURL string

	// Timeout is the per-request timeout. Default: 30s.
	Timeout time.Duration

	// HTTPClient overrides the underlying HTTP client, mainly for tests.
	HTTPClient *http.Client

	// Tokens supplies the Authorization bearer token. Optional.
	Tokens TokenSource

	// Metrics records request outcomes. Optional.
	Metrics *metrics.Requests

	Logger *zap.Logger
}

// Client issues requests against the ifconnect REST backend.
//
// Thread Safety: safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	metrics    *metrics.Requests
	logger     *zap.Logger
}

// New creates a new API client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "api base URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		tokens:     cfg.Tokens,
		metrics:    cfg.Metrics,
		logger:     logger.Named("api"),
	}, nil
}

// Get performs a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST request with an optional body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put performs a PUT request with an optional body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do executes one request. body may be nil, a *Multipart form, or any
// JSON-marshalable value. out may be nil when no response payload is
// expected; when out is non-nil a missing or malformed payload is an error
// rather than a silent empty result.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.buildRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		if c.metrics != nil {
			c.metrics.Observe(method, 0, elapsed)
		}
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &shared.DomainError{
			Code:    shared.CodeConnectivity,
			Message: fmt.Sprintf("%s %s: backend unreachable", method, path),
		}
	}
	defer resp.Body.Close()

	if c.metrics != nil {
		c.metrics.Observe(method, resp.StatusCode, elapsed)
	}
	c.logger.Debug("request settled",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed),
		zap.String("request_id", requestID))

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &shared.DomainError{
			Code:    shared.CodeConnectivity,
			Message: fmt.Sprintf("%s %s: reading response: %v", method, path, err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return shared.NewRequestError(resp.StatusCode, serverMessage(payload))
	}

	return decodePayload(method, path, payload, out)
}

func (c *Client) buildRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	contentType := ""

	switch b := body.(type) {
	case nil:
	case *Multipart:
		encoded, ct, err := b.encode()
		if err != nil {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("encode multipart body: %v", err))
		}
		reader = encoded
		contentType = ct
	default:
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("encode request body: %v", err))
		}
		reader = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("build request: %v", err))
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return req, nil
}

// decodePayload applies the loud schema boundary: a success response that
// cannot satisfy the expected shape fails instead of becoming an empty value.
func decodePayload(method, path string, payload []byte, out any) error {
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return &shared.DomainError{
			Code:    shared.CodeDecodeFailed,
			Message: fmt.Sprintf("%s %s: empty response body", method, path),
		}
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &shared.DomainError{
			Code:    shared.CodeDecodeFailed,
			Message: fmt.Sprintf("%s %s: %v", method, path, err),
		}
	}
	return nil
}

// serverMessage extracts the backend's error message from a failure payload.
func serverMessage(payload []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return body.Message
}
