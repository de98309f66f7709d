// Package webhook calls the conversational assistant endpoint with bounded
// retries. Call never returns an error; every outcome is a CallResult.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/lalithlochan/officebell/internal/metrics"
)

const (
	DefaultTimeout          = 30 * time.Second
	DefaultMaxRetryAttempts = 3
	DefaultRetryDelay       = time.Second

	maxResponseBytes = 1 << 20
	userAgent        = "officebell-assistant/1"
)

// Config controls a single Call.
type Config struct {
	Endpoint         string
	Timeout          time.Duration // per attempt
	MaxRetryAttempts int
	RetryDelay       time.Duration // fixed, between attempts
	AuthToken        string
}

// DefaultConfig returns the defaults for endpoint.
func DefaultConfig(endpoint string) Config {
	return Config{
		Endpoint:         endpoint,
		Timeout:          DefaultTimeout,
		MaxRetryAttempts: DefaultMaxRetryAttempts,
		RetryDelay:       DefaultRetryDelay,
	}
}

func (c Config) normalized() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetryAttempts < 1 {
		c.MaxRetryAttempts = 1
	}
	if c.RetryDelay < 0 {
		c.RetryDelay = 0
	}
	return c
}

func (c Config) validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("assistant endpoint is required")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid assistant endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("assistant endpoint must use http or https scheme, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("assistant endpoint must include a host")
	}
	return nil
}

// Client posts payloads to the assistant. It keeps no per-call state and is
// safe for concurrent use.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Client. A nil httpClient gets a private transport;
// attempt deadlines come from Config.Timeout, not from the http.Client.
func NewClient(logger *zap.Logger, httpClient *http.Client) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		}
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger.Named("assistant-webhook"),
	}
}

// Call posts payload to cfg.Endpoint, retrying timeouts, transport failures
// and application failures up to cfg.MaxRetryAttempts with cfg.RetryDelay
// between attempts. Cancelling ctx stops further attempts.
func (c *Client) Call(ctx context.Context, payload Payload, cfg Config) CallResult {
	start := time.Now()
	cfg = cfg.normalized()

	finish := func(res CallResult) CallResult {
		res.Duration = time.Since(start)
		metrics.RecordWebhookCall(res.Success, res.Duration)
		return res
	}

	if err := cfg.validate(); err != nil {
		return finish(CallResult{
			Error:   fmt.Sprintf("%s: %v", FailureTransport, err),
			Failure: FailureTransport,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return finish(CallResult{
			Error:   fmt.Sprintf("%s: marshal payload: %v", FailureApplication, err),
			Failure: FailureApplication,
		})
	}

	var lastErr *AttemptError
	attempts := 0
	for attempt := 1; attempt <= cfg.MaxRetryAttempts; attempt++ {
		if attempt > 1 {
			if !wait(ctx, cfg.RetryDelay) {
				c.logger.Debug("assistant call cancelled between attempts",
					zap.Int("attempts", attempts),
				)
				break
			}
		}

		attempts = attempt
		resp, aerr := c.attempt(ctx, attempt, body, cfg)
		if aerr == nil {
			metrics.RecordWebhookAttempt(string(FailureNone))
			c.logger.Debug("assistant call succeeded",
				zap.String("url", RedactURL(cfg.Endpoint)),
				zap.Int("attempts", attempts),
			)
			return finish(CallResult{
				Success:  true,
				Response: resp,
				Failure:  FailureNone,
				Attempts: attempts,
			})
		}

		lastErr = aerr
		metrics.RecordWebhookAttempt(string(aerr.Kind))
		c.logger.Warn("assistant call attempt failed",
			zap.String("url", RedactURL(cfg.Endpoint)),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", cfg.MaxRetryAttempts),
			zap.String("failure", string(aerr.Kind)),
			zap.Error(aerr),
		)

		if ctx.Err() != nil {
			break
		}
	}

	res := CallResult{
		Attempts: attempts,
		Failure:  lastErr.Kind,
		Error:    lastErr.Error(),
	}
	var appErr *applicationError
	if errors.As(lastErr, &appErr) {
		res.Response = appErr.response
	}
	c.logger.Error("assistant call failed",
		zap.String("url", RedactURL(cfg.Endpoint)),
		zap.Int("attempts", attempts),
		zap.String("error", res.Error),
	)
	return finish(res)
}

func (c *Client) attempt(ctx context.Context, n int, body []byte, cfg Config) (*Response, *AttemptError) {
	attemptCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &AttemptError{Kind: FailureTransport, Attempt: n, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if cfg.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.AuthToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &AttemptError{Kind: classify(ctx, attemptCtx, err), Attempt: n, Err: err}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &AttemptError{Kind: classify(ctx, attemptCtx, err), Attempt: n, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &AttemptError{
			Kind:       FailureApplication,
			Attempt:    n,
			StatusCode: resp.StatusCode,
			Err:        &applicationError{msg: preview(raw)},
		}
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &AttemptError{
			Kind:    FailureApplication,
			Attempt: n,
			Err:     &applicationError{msg: fmt.Sprintf("invalid response body: %v", err)},
		}
	}
	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = out.Message
		}
		if msg == "" {
			msg = "assistant reported success=false"
		}
		return nil, &AttemptError{
			Kind:    FailureApplication,
			Attempt: n,
			Err:     &applicationError{msg: msg, response: &out},
		}
	}
	return &out, nil
}

// applicationError carries the assistant's own failure description and,
// when the body parsed, the response itself.
type applicationError struct {
	msg      string
	response *Response
}

func (e *applicationError) Error() string { return e.msg }

// classify separates attempt deadlines from other transport failures. A
// cancelled caller context is reported as transport.
func classify(parent, attemptCtx context.Context, err error) FailureKind {
	if parent.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return FailureTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(parent.Err(), context.Canceled) {
		return FailureTimeout
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() && parent.Err() == nil {
		return FailureTimeout
	}
	return FailureTransport
}

// wait sleeps for d unless ctx is done first. It reports whether the full
// delay elapsed.
func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func preview(raw []byte) string {
	const limit = 256
	if len(raw) == 0 {
		return "empty response body"
	}
	if len(raw) > limit {
		return string(raw[:limit]) + "..."
	}
	return string(raw)
}

// RedactURL masks credentials in a URL for safe logging. Userinfo passwords
// and query parameter values are replaced.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	if u.RawQuery != "" {
		q := u.Query()
		for key := range q {
			q.Set(key, "REDACTED")
		}
		u.RawQuery = q.Encode()
	}
	return u.Redacted()
}
