package fulfillment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/donaldgifford/pickup-monitor/internal/metrics"
	"github.com/donaldgifford/pickup-monitor/internal/storefront"
)

const (
	messagesPath = "/shop/fulfillment-messages"
	refererPath  = "/shop/buy-iphone/iphone-14-pro/"

	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

var (
	// ErrUnexpectedStatus is matched by every *StatusError.
	ErrUnexpectedStatus = errors.New("unexpected upstream status")

	// ErrNoStoreList means the response had no pickupMessage.stores key,
	// which usually indicates a product code the storefront does not sell.
	ErrNoStoreList = errors.New("response has no store list")
)

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fulfillment API error (status %d)", e.Code)
}

// Is makes errors.Is(err, ErrUnexpectedStatus) hold for any StatusError.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// HTTPClient implements Client against the live storefront.
type HTTPClient struct {
	client      *http.Client
	rateLimiter *RateLimiter
	userAgent   string
	resolve     func(country string) string
}

// Option configures the HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		c.client = hc
	}
}

// WithRateLimiter injects a rate limiter. When set, every call goes
// through Wait() first.
func WithRateLimiter(r *RateLimiter) Option {
	return func(c *HTTPClient) {
		c.rateLimiter = r
	}
}

// WithUserAgent sets the User-Agent header. Empty keeps Go's default.
func WithUserAgent(ua string) Option {
	return func(c *HTTPClient) {
		c.userAgent = ua
	}
}

// WithBaseURLResolver replaces the storefront lookup, mainly so tests can
// point the client at an httptest server.
func WithBaseURLResolver(f func(country string) string) Option {
	return func(c *HTTPClient) {
		c.resolve = f
	}
}

// NewHTTPClient creates a fulfillment client.
func NewHTTPClient(opts ...Option) *HTTPClient {
	c := &HTTPClient{
		client:  &http.Client{Timeout: defaultTimeout},
		resolve: storefront.BaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RateLimiter returns the configured limiter, or nil.
func (c *HTTPClient) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// PickupMessages implements Client.PickupMessages.
func (c *HTTPClient) PickupMessages(ctx context.Context, q Query) (*Response, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			if errors.Is(err, ErrDailyLimitReached) {
				metrics.UpstreamDailyLimitHits.Inc()
			}
			metrics.UpstreamRequestsTotal.WithLabelValues("rate_limited").Inc()
			return nil, fmt.Errorf("rate limit: %w", err)
		}
		metrics.UpstreamDailyUsage.Set(float64(c.rateLimiter.DailyCount()))
	}

	base := c.resolve(q.Country)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, MessagesURL(base, q), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Referer", base+refererPath+q.Code)
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.UpstreamRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("executing fulfillment request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.UpstreamRequestsTotal.WithLabelValues("rejected").Inc()
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("parsing fulfillment response: %w", err)
	}

	if out.Stores() == nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("no_store_list").Inc()
		return &out, ErrNoStoreList
	}

	metrics.UpstreamRequestsTotal.WithLabelValues("ok").Inc()
	return &out, nil
}

// MessagesURL builds the fulfillment-messages URL for q under base.
func MessagesURL(base string, q Query) string {
	params := url.Values{}
	params.Set("pl", "true")
	params.Set("mts.0", "regular")
	params.Set("parts.0", q.Code)
	params.Set("location", q.Location)

	return base + messagesPath + "?" + params.Encode()
}
