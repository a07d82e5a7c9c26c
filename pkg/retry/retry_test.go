package retry

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gemscan/gemscan-backend/pkg/logging"
)

func fastConfig(maxRetries int) *RetryConfig {
	return &RetryConfig{
		MaxRetries:      maxRetries,
		InitialDelay:    time.Millisecond,
		MaxDelay:        10 * time.Millisecond,
		BackoffFactor:   2.0,
		JitterFactor:    0.1,
		LogRetryAttempt: false,
		StatusCodes:     []int{http.StatusTooManyRequests, http.StatusServiceUnavailable},
	}
}

func TestRetry(t *testing.T) {
	logger := logging.NoopLogger{}
	ctx := context.Background()

	t.Run("success on first try", func(t *testing.T) {
		result, err := Retry(ctx, func() (string, error) {
			return "success", nil
		}, fastConfig(3), logger)

		assert.NoError(t, err)
		assert.Equal(t, "success", result)
	})

	t.Run("success after retries", func(t *testing.T) {
		attempts := 0
		result, err := Retry(ctx, func() (string, error) {
			attempts++
			if attempts < 3 {
				return "", errors.New("temporary error")
			}
			return "success", nil
		}, fastConfig(5), logger)

		assert.NoError(t, err)
		assert.Equal(t, "success", result)
		assert.Equal(t, 3, attempts)
	})

	t.Run("failure after all retries", func(t *testing.T) {
		result, err := Retry(ctx, func() (string, error) {
			return "", errors.New("operation failed")
		}, fastConfig(2), logger)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed after 2 attempts")
		assert.Empty(t, result)
	})

	t.Run("honors ShouldRetry predicate", func(t *testing.T) {
		fatal := errors.New("fatal error")
		config := fastConfig(5)
		config.ShouldRetry = func(err error, attempt int) bool {
			return !errors.Is(err, fatal)
		}

		attempts := 0
		_, err := Retry(ctx, func() (string, error) {
			attempts++
			return "", fatal
		}, config, logger)

		assert.ErrorIs(t, err, fatal)
		assert.Equal(t, 1, attempts)
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		attempts := 0
		_, err := Retry(ctx, func() (string, error) {
			attempts++
			cancel()
			return "", errors.New("keep going")
		}, fastConfig(5), logger)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, attempts)
	})

	t.Run("invalid config rejected", func(t *testing.T) {
		config := fastConfig(3)
		config.BackoffFactor = 0.5

		_, err := Retry(ctx, func() (string, error) {
			return "never", nil
		}, config, logger)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid retry config")
	})
}

func TestRetryFunc(t *testing.T) {
	logger := logging.NoopLogger{}

	attempts := 0
	err := RetryFunc(context.Background(), func() error {
		attempts++
		if attempts < 2 {
			return errors.New("not yet")
		}
		return nil
	}, fastConfig(3), logger)

	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestRetryWithDifferentTypes(t *testing.T) {
	logger := logging.NoopLogger{}
	ctx := context.Background()

	t.Run("int type", func(t *testing.T) {
		result, err := Retry(ctx, func() (int, error) {
			return 42, nil
		}, fastConfig(3), logger)

		assert.NoError(t, err)
		assert.Equal(t, 42, result)
	})

	t.Run("struct type", func(t *testing.T) {
		type quote struct {
			Price float64
		}

		result, err := Retry(ctx, func() (quote, error) {
			return quote{Price: 67000.5}, nil
		}, fastConfig(3), logger)

		assert.NoError(t, err)
		assert.Equal(t, 67000.5, result.Price)
	})
}

func TestRetryConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RetryConfig)
		wantErr bool
	}{
		{"defaults are valid", func(c *RetryConfig) {}, false},
		{"negative MaxRetries", func(c *RetryConfig) { c.MaxRetries = -1 }, true},
		{"zero InitialDelay", func(c *RetryConfig) { c.InitialDelay = 0 }, true},
		{"zero MaxDelay", func(c *RetryConfig) { c.MaxDelay = 0 }, true},
		{"backoff below one", func(c *RetryConfig) { c.BackoffFactor = 0.9 }, true},
		{"jitter above one", func(c *RetryConfig) { c.JitterFactor = 1.1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultRetryConfig()
			tt.mutate(config)
			err := config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCalculateNextDelay(t *testing.T) {
	assert.Equal(t, 2*time.Second, CalculateNextDelay(time.Second, 2.0, 30*time.Second))
	assert.Equal(t, 30*time.Second, CalculateNextDelay(20*time.Second, 2.0, 30*time.Second))
}

func TestHTTPClientDoWithRetry(t *testing.T) {
	logger := logging.NoopLogger{}

	t.Run("retries on 503 then succeeds", func(t *testing.T) {
		var hits int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&hits, 1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		config := DefaultHTTPRetryConfig()
		config.RetryConfig = fastConfig(5)
		config.RetryConfig.StatusCodes = []int{http.StatusServiceUnavailable}

		client, err := NewHTTPClient(config, logger)
		require.NoError(t, err)
		defer client.Close()

		req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
		require.NoError(t, err)

		resp, err := client.DoWithRetry(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
	})

	t.Run("does not retry non-retryable status", func(t *testing.T) {
		var hits int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		config := DefaultHTTPRetryConfig()
		config.RetryConfig = fastConfig(5)

		client, err := NewHTTPClient(config, logger)
		require.NoError(t, err)
		defer client.Close()

		req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
		require.NoError(t, err)

		resp, err := client.DoWithRetry(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	})

	t.Run("exhausts retries and returns last response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		config := DefaultHTTPRetryConfig()
		config.RetryConfig = fastConfig(2)

		client, err := NewHTTPClient(config, logger)
		require.NoError(t, err)
		defer client.Close()

		req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
		require.NoError(t, err)

		resp, err := client.DoWithRetry(req)
		require.Error(t, err)
		require.NotNil(t, resp)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		assert.Contains(t, err.Error(), "retryable status code: 429")
	})

	t.Run("replays request body on each attempt", func(t *testing.T) {
		const payload = `{"symbol":"PEPEUSDT"}`
		var hits int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Equal(t, payload, string(body))
			if atomic.AddInt32(&hits, 1) < 2 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		config := DefaultHTTPRetryConfig()
		config.RetryConfig = fastConfig(3)

		client, err := NewHTTPClient(config, logger)
		require.NoError(t, err)
		defer client.Close()

		// http.NewRequest sets GetBody for *strings.Reader bodies.
		req, err := http.NewRequest(http.MethodPost, srv.URL, strings.NewReader(payload))
		require.NoError(t, err)

		resp, err := client.DoWithRetry(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	})

	t.Run("rejects body that cannot be replayed", func(t *testing.T) {
		config := DefaultHTTPRetryConfig()
		config.RetryConfig = fastConfig(2)

		client, err := NewHTTPClient(config, logger)
		require.NoError(t, err)
		defer client.Close()

		req, err := http.NewRequest(http.MethodPost, "http://localhost:0", nil)
		require.NoError(t, err)
		req.Body = io.NopCloser(strings.NewReader("one-shot stream"))

		_, err = client.DoWithRetry(req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not replayable")
	})

	t.Run("rejects config without attempts", func(t *testing.T) {
		config := DefaultHTTPRetryConfig()
		config.RetryConfig = fastConfig(0)

		_, err := NewHTTPClient(config, logger)
		assert.ErrorContains(t, err, "MaxRetries")
	})
}
