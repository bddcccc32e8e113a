package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// defaultTimeout bounds each network attempt.
const defaultTimeout = 30 * time.Second

// Client is the statement backend HTTP client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      *RetryConfig
	logger     zerolog.Logger
}

// Option configures the API client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithRetryConfig sets the retry behavior for transient failures.
func WithRetryConfig(cfg *RetryConfig) Option {
	return func(c *Client) {
		c.retry = cfg
	}
}

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a new API client for the given backend base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		retry:  DefaultRetryConfig(),
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Do sends a JSON request and decodes the JSON response into result,
// retrying transient failures per the client's retry configuration.
func (c *Client) Do(ctx context.Context, method, path string, body, result interface{}) error {
	return c.do(ctx, method, path, body, result, c.retry)
}

// DoOnce sends a single request with no retry. Registration goes through
// this path because its attempt policy lives with the caller.
func (c *Client) DoOnce(ctx context.Context, method, path string, body, result interface{}) error {
	return c.do(ctx, method, path, body, result, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}, retry *RetryConfig) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		payload = data
	}

	maxAttempts := 1
	if retry != nil {
		maxAttempts = retry.MaxRetries + 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if err := retry.Wait(ctx, attempt-1); err != nil {
				return err
			}
			c.logger.Debug().Int("attempt", attempt+1).Str("path", path).Msg("retrying backend request")
		}

		err := c.doAttempt(ctx, method, path, payload, result, attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		if retry == nil || !retryable(err, retry) {
			return err
		}
	}

	return lastErr
}

func (c *Client) doAttempt(ctx context.Context, method, path string, payload []byte, result interface{}, attempt int) error {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err, URL: c.baseURL + path, Attempt: attempt}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return parseErrorResponse(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

// retryable reports whether the error warrants another attempt.
func retryable(err error, retry *RetryConfig) bool {
	if _, ok := err.(*NetworkError); ok {
		return true
	}
	if apiErr, ok := err.(*APIError); ok {
		return retry.ShouldRetryStatus(apiErr.StatusCode)
	}
	return false
}

func parseErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Error     string `json:"error"`
		Message   string `json:"message"`
		RequestID string `json:"requestId"`
	}

	if err := json.Unmarshal(body, &errResp); err == nil {
		msg := errResp.Error
		if msg == "" {
			msg = errResp.Message
		}
		if msg != "" {
			return &APIError{
				StatusCode: resp.StatusCode,
				Message:    msg,
				RequestID:  errResp.RequestID,
			}
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    string(body),
	}
}
