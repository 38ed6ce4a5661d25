package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/lgbarn/chess-trainer-go/internal/errors"
)

// maxBodyBytes caps how much of an agent reply is read.
const maxBodyBytes = 4 << 20

// HTTPClient POSTs requests to a generic JSON agent endpoint.
//
// Transport errors, 429 and 5xx answers are retried with exponential
// backoff. Other non-2xx answers fail immediately.
type HTTPClient struct {
	endpoint   string
	apiKey     string
	maxRetries int
	timeout    time.Duration
	backoff    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithAPIKey sends key as a bearer token.
func WithAPIKey(key string) HTTPOption {
	return func(c *HTTPClient) { c.apiKey = key }
}

// WithMaxRetries sets how many times a failed call is retried.
func WithMaxRetries(n int) HTTPOption {
	return func(c *HTTPClient) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithTimeout bounds each Invoke call when the context has no deadline.
func WithTimeout(d time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithBackoff sets the delay before the first retry. It doubles per attempt.
func WithBackoff(d time.Duration) HTTPOption {
	return func(c *HTTPClient) { c.backoff = d }
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(logger *zap.Logger) HTTPOption {
	return func(c *HTTPClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewHTTPClient creates a client for endpoint.
func NewHTTPClient(endpoint string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		endpoint:   endpoint,
		maxRetries: 2,
		timeout:    90 * time.Second,
		backoff:    500 * time.Millisecond,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Invoke sends req and decodes the reply.
func (c *HTTPClient) Invoke(ctx context.Context, req Request) (Document, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	start := time.Now()
	var lastErr error
	lastStatus := 0
	attempts := 0

	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			delay := c.backoff << uint(i-1)
			c.logger.Debug("retrying agent call",
				zap.String("agent", req.AgentID),
				zap.Int("attempt", i+1),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
			if err := sleepCtx(ctx, delay); err != nil {
				lastErr = err
				break
			}
		}
		attempts++

		body, status, err := c.post(ctx, payload)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", errors.ErrAgentUnavailable, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		lastStatus = status

		if status == http.StatusTooManyRequests || status >= 500 {
			lastErr = fmt.Errorf("%w: %s", errors.ErrAgentStatus, http.StatusText(status))
			continue
		}
		if status < 200 || status > 299 {
			return nil, &errors.AgentError{
				Err:        fmt.Errorf("%w: %s", errors.ErrAgentStatus, snippet(body)),
				AgentID:    req.AgentID,
				StatusCode: status,
				Attempts:   attempts,
			}
		}

		doc, err := Decode(body)
		if err != nil {
			return nil, &errors.AgentError{Err: err, AgentID: req.AgentID, StatusCode: status, Attempts: attempts}
		}
		c.logger.Debug("agent call completed",
			zap.String("agent", req.AgentID),
			zap.Int("attempts", attempts),
			zap.Duration("duration", time.Since(start)))
		return doc, nil
	}

	return nil, &errors.AgentError{
		Err:        lastErr,
		AgentID:    req.AgentID,
		StatusCode: lastStatus,
		Attempts:   attempts,
	}
}

func (c *HTTPClient) post(ctx context.Context, payload []byte) ([]byte, int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", errors.ErrAgentUnavailable, ctx.Err())
	case <-t.C:
		return nil
	}
}

func snippet(body []byte) string {
	const limit = 200
	s := string(bytes.TrimSpace(body))
	if len(s) > limit {
		s = s[:limit] + "..."
	}
	return s
}
