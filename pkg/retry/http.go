package retry

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gemscan/gemscan-backend/pkg/logging"
)

// drainLimit bounds how much of a discarded retryable response body is read
// before closing, enough to let the connection be reused.
const drainLimit = 4 << 10

// HTTPRetryConfig configures the retrying HTTP client. The feed clients only
// tune the request timeout and the retry schedule; transport details stay
// fixed.
type HTTPRetryConfig struct {
	RetryConfig *RetryConfig
	Timeout     time.Duration
}

func DefaultHTTPRetryConfig() *HTTPRetryConfig {
	return &HTTPRetryConfig{
		RetryConfig: DefaultRetryConfig(),
		Timeout:     10 * time.Second,
	}
}

func (c *HTTPRetryConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.RetryConfig == nil {
		return fmt.Errorf("retry config is required")
	}
	if c.RetryConfig.MaxRetries < 1 {
		return fmt.Errorf("MaxRetries must be >= 1")
	}
	return c.RetryConfig.Validate()
}

// HTTPClient retries requests whose status code appears in the configured
// StatusCodes list, backing off between attempts. Requests with a body must
// carry GetBody so attempts can be replayed; http.NewRequest sets it for the
// common body types.
type HTTPClient struct {
	client *http.Client
	config *HTTPRetryConfig
	logger logging.Logger
}

func NewHTTPClient(config *HTTPRetryConfig, logger logging.Logger) (*HTTPClient, error) {
	if config == nil {
		config = DefaultHTTPRetryConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid HTTP retry config: %w", err)
	}

	// Own transport per client so Close does not drop connections shared
	// with the rest of the process.
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 4

	return &HTTPClient{
		client: &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
		},
		config: config,
		logger: logger,
	}, nil
}

// DoWithRetry performs req, retrying transport errors and retryable status
// codes up to MaxRetries attempts. On a final retryable status the response
// is returned alongside the error with its body intact; the caller closes it
// either way.
func (c *HTTPClient) DoWithRetry(req *http.Request) (*http.Response, error) {
	if req.Body != nil && req.GetBody == nil {
		return nil, fmt.Errorf("request body is not replayable")
	}

	cfg := c.config.RetryConfig
	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 1; ; attempt++ {
		resp, err := c.attempt(req)
		if err == nil && !c.retryable(resp.StatusCode) {
			return resp, nil
		}

		if err != nil {
			lastErr = fmt.Errorf("http request failed: %w", err)
		} else {
			lastErr = fmt.Errorf("received retryable status code: %d", resp.StatusCode)
			if attempt == cfg.MaxRetries {
				return resp, lastErr
			}
			c.drain(resp)
		}

		if attempt == cfg.MaxRetries {
			break
		}

		if cfg.LogRetryAttempt {
			c.logger.Warnf("Attempt %d/%d failed: %v. Retrying in %v...",
				attempt, cfg.MaxRetries, lastErr, delay)
		}

		select {
		case <-time.After(CalculateDelayWithJitter(delay, cfg.JitterFactor)):
			delay = CalculateNextDelay(delay, cfg.BackoffFactor, cfg.MaxDelay)
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", cfg.MaxRetries, lastErr)
}

// attempt clones req so each try gets a fresh body and untouched headers.
func (c *HTTPClient) attempt(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("failed to rewind request body: %w", err)
		}
		clone.Body = body
	}
	return c.client.Do(clone)
}

func (c *HTTPClient) retryable(statusCode int) bool {
	for _, code := range c.config.RetryConfig.StatusCodes {
		if statusCode == code {
			return true
		}
	}
	return false
}

func (c *HTTPClient) drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))
	_ = resp.Body.Close()
}

func (c *HTTPClient) Close() {
	c.client.CloseIdleConnections()
}
