package httputil

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/wonny/predictarena/pkg/logger"
	"github.com/wonny/predictarena/pkg/redis"
)

// Client is an HTTP client wrapper with retry, rate limiting and logging
// ⭐ SSOT: 모든 외부 HTTP 요청은 이 클라이언트를 통해서만 수행
type Client struct {
	rc           *resty.Client
	logger       *logger.Logger
	limiter      *rate.Limiter
	rateLimiter  *redis.RateLimiter
	rateLimitCfg *redis.RateLimitConfig
}

// Options configures a Client
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryWait      time.Duration
	RequestsPerSec int
	Headers        map[string]string
}

// HTTPStatusError is returned for non-2xx responses after retries
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("http %d from %s: %s", e.StatusCode, e.URL, truncate(e.Body, 200))
}

// New creates a new HTTP client
func New(opts Options, log *logger.Logger) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RetryWait == 0 {
		opts.RetryWait = time.Second
	}

	rc := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.MaxRetries).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(10 * opts.RetryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return IsRetryableStatus(r.StatusCode())
		})
	if opts.BaseURL != "" {
		rc.SetBaseURL(opts.BaseURL)
	}
	for k, v := range opts.Headers {
		rc.SetHeader(k, v)
	}

	c := &Client{rc: rc, logger: log}
	if opts.RequestsPerSec > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.RequestsPerSec)
	}
	return c
}

// WithRateLimiter adds a shared (cross-process) Redis limiter
func (c *Client) WithRateLimiter(limiter *redis.RateLimiter, cfg redis.RateLimitConfig) *Client {
	c.rateLimiter = limiter
	c.rateLimitCfg = &cfg
	return c
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait failed: %w", err)
		}
	}
	if c.rateLimiter != nil && c.rateLimitCfg != nil {
		if err := c.rateLimiter.Wait(ctx, *c.rateLimitCfg); err != nil {
			return fmt.Errorf("rate limit wait failed: %w", err)
		}
	}
	return nil
}

// GetJSON performs a GET and decodes a JSON body into dest
func (c *Client) GetJSON(ctx context.Context, path string, query map[string]string, dest interface{}) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	req := c.rc.R().SetContext(ctx).SetQueryParams(query)
	if dest != nil {
		req.SetResult(dest)
	}
	return c.finish(req.Get(path))
}

// PostJSON performs a POST with a JSON body and decodes the response into dest
func (c *Client) PostJSON(ctx context.Context, path string, body, dest interface{}) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	req := c.rc.R().SetContext(ctx).SetHeader("Content-Type", "application/json").SetBody(body)
	if dest != nil {
		req.SetResult(dest)
	}
	return c.finish(req.Post(path))
}

// PostRaw performs a POST with a JSON body and returns the raw response body
// (producers may answer with prose wrapping a JSON document)
func (c *Client) PostRaw(ctx context.Context, path string, body interface{}) ([]byte, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.rc.R().SetContext(ctx).SetHeader("Content-Type", "application/json").SetBody(body).Post(path)
	if err := c.finish(resp, err); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func (c *Client) finish(resp *resty.Response, err error) error {
	if err != nil {
		c.logger.WithError(err).Error("HTTP request failed")
		return err
	}

	c.logger.WithFields(map[string]interface{}{
		"method":      resp.Request.Method,
		"url":         resp.Request.URL,
		"status_code": resp.StatusCode(),
		"duration":    resp.Time(),
	}).Debug("HTTP request completed")

	if resp.IsError() {
		return &HTTPStatusError{
			StatusCode: resp.StatusCode(),
			URL:        resp.Request.URL,
			Body:       string(resp.Body()),
		}
	}
	return nil
}

// IsRetryableStatus checks if a status code should be retried
func IsRetryableStatus(statusCode int) bool {
	// Retry on 5xx server errors and 429 Too Many Requests
	return statusCode >= 500 || statusCode == http.StatusTooManyRequests
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
