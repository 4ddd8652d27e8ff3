package wfs

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/olgasafonova/volcano-mcp-server/internal/base"
	apierrors "github.com/olgasafonova/volcano-mcp-server/internal/errors"
	"github.com/olgasafonova/volcano-mcp-server/internal/infra"
	"github.com/olgasafonova/volcano-mcp-server/metrics"
	"github.com/olgasafonova/volcano-mcp-server/tracing"
)

// DefaultCacheTTL for cached response bodies
const DefaultCacheTTL = 5 * time.Minute

// maxErrorBody bounds how much of an upstream error body is echoed back
const maxErrorBody = 500

// Config holds feature service settings
type Config struct {
	BaseURL   string        // defaults to DefaultBaseURL
	UserAgent string        // defaults to base.DefaultUserAgent
	CacheTTL  time.Duration // 0 disables response caching
}

// Client issues GetFeature requests through the shared base client
type Client struct {
	*base.Client
	baseURL   string
	userAgent string
	cacheTTL  time.Duration
}

// NewClient creates a feature service client
func NewClient(cfg Config, opts ...base.ClientOption) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	c := &Client{
		Client:    base.NewClient(opts...),
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		cacheTTL:  cfg.CacheTTL,
	}
	c.CircuitBreaker.OnStateChange(func(_, to infra.CircuitState) {
		metrics.SetCircuitState(int(to))
	})
	return c
}

// BaseURL returns the feature service endpoint in use
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetFeatures runs q and decodes the body. Bodies without a features array
// come back as a raw Response rather than an error.
func (c *Client) GetFeatures(ctx context.Context, q Query) (*Response, error) {
	reqURL, err := q.URL(c.baseURL)
	if err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "wfs.get_feature")
	defer span.End()

	filter, _ := q.Filter.Encode() // validated by q.URL
	count := q.Count
	if count <= 0 {
		count = DefaultCount
	}
	tracing.AddUpstreamAttributes(span, q.Layer, filter, count)

	body, cached, err := c.fetch(ctx, q.Layer, reqURL)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	resp, err := DecodeResponse(body)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	metrics.RecordFeatures(q.Layer, resp.Count())
	tracing.AddResultAttributes(span, resp.Count(), cached)
	c.Logger.Debug("Feature request completed",
		"layer", q.Layer,
		"features", resp.Count(),
		"cached", cached)

	return resp, nil
}

// fetch returns the body for reqURL from the cache, an identical in-flight
// request, or the network, in that order
func (c *Client) fetch(ctx context.Context, layer, reqURL string) ([]byte, bool, error) {
	if c.cacheTTL > 0 {
		if body, ok := c.Cache.Get(reqURL); ok {
			metrics.RecordCacheAccess(true)
			return body, true, nil
		}
		metrics.RecordCacheAccess(false)
	}

	body, shared, err := c.Dedup.Do(ctx, reqURL, func(ctx context.Context) ([]byte, error) {
		return c.get(ctx, layer, reqURL)
	})
	if shared {
		metrics.DedupShared.Inc()
	}
	return body, false, err
}

func (c *Client) get(ctx context.Context, layer, reqURL string) ([]byte, error) {
	start := time.Now()
	body, statusCode, err := c.DoRequest(ctx, base.RequestConfig{
		URL:       reqURL,
		UserAgent: c.userAgent,
		Action:    layer,
	})
	elapsed := time.Since(start).Seconds()
	if err != nil {
		metrics.RecordAPICall(layer, elapsed, false, errorKind(err))
		return nil, err
	}

	// 4xx means a bad query, not an unhealthy service
	c.RecordSuccess()

	if statusCode >= 400 {
		metrics.RecordAPICall(layer, elapsed, false, "http_"+strconv.Itoa(statusCode))
		return nil, &apierrors.UpstreamError{
			StatusCode: statusCode,
			Body:       base.Truncate(string(body), maxErrorBody),
		}
	}

	metrics.RecordAPICall(layer, elapsed, true, "")
	if c.cacheTTL > 0 {
		c.Cache.Set(reqURL, body, c.cacheTTL)
		metrics.SetCacheSize(c.Cache.Size())
	}
	return body, nil
}

func errorKind(err error) string {
	var open *infra.ErrCircuitOpen
	switch {
	case errors.As(err, &open):
		return "circuit_open"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "transport"
	}
}
