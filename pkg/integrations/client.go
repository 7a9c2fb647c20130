package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blueprint/pkg/cache"
	bperrors "github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/httputil"
	"github.com/matzehuels/blueprint/pkg/observability"
)

// Client provides shared HTTP functionality for the service clients.
// It handles caching, retry logic, and common request headers.
//
// A Client is safe for concurrent use once configured.
type Client struct {
	http      *http.Client
	stream    *http.Client
	cache     cache.Cache
	keyer     cache.Keyer
	namespace string
	ttl       time.Duration
	headers   map[string]string
	policy    httputil.Policy
	logger    *log.Logger
}

// NewClient creates a Client. Cached entries are stored under namespace
// with the given default ttl; a nil cache disables caching. Headers are
// applied to all requests made through this client.
func NewClient(c cache.Cache, namespace string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:      NewHTTPClient(),
		stream:    &http.Client{},
		cache:     c,
		keyer:     cache.NewDefaultKeyer(),
		namespace: namespace,
		ttl:       ttl,
		headers:   headers,
		policy:    httputil.DefaultPolicy,
		logger:    log.New(io.Discard),
	}
}

// SetHTTPClient replaces the client used for regular and streamed requests.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.http = hc
	c.stream = hc
}

// SetKeyer replaces the cache keyer.
func (c *Client) SetKeyer(k cache.Keyer) {
	if k != nil {
		c.keyer = k
	}
}

// SetRetryPolicy replaces the retry policy of cached reads.
func (c *Client) SetRetryPolicy(p httputil.Policy) { c.policy = p }

// SetLogger sets the request logger.
func (c *Client) SetLogger(l *log.Logger) {
	if l != nil {
		c.logger = l
	}
}

// Cached retrieves a value from cache or executes fetch and caches the result
// with the client's default TTL. If refresh is true, the cache is bypassed.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	return c.CachedFor(ctx, key, c.ttl, refresh, v, fetch)
}

// CachedFor is Cached with an explicit TTL. fetch should populate v; it is
// retried with backoff on transient failures. Cache read and write errors
// are logged and otherwise ignored.
func (c *Client) CachedFor(ctx context.Context, key string, ttl time.Duration, refresh bool, v any, fetch func() error) error {
	ck := c.keyer.HTTPKey(c.namespace, key)
	if !refresh {
		ok, err := cache.GetJSON(ctx, c.cache, ck, v)
		if err != nil {
			c.logger.Warn("cache read failed", "key", ck, "error", err)
		}
		if ok {
			c.logger.Debug("cache hit", "key", ck)
			observability.Cache().OnCacheHit(ctx, "http")
			return nil
		}
		observability.Cache().OnCacheMiss(ctx, "http")
	}
	if err := httputil.Retry(ctx, c.policy, fetch); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err == nil {
		err = c.cache.Set(ctx, ck, data, ttl)
	}
	if err != nil {
		c.logger.Warn("cache write failed", "key", ck, "error", err)
		return nil
	}
	observability.Cache().OnCacheSet(ctx, "http", len(data))
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	return c.Do(ctx, http.MethodGet, url, headers, nil, v)
}

// Send performs a request with a JSON body (nil for none) and decodes the
// JSON response into v (nil to discard it). It does not retry.
func (c *Client) Send(ctx context.Context, method, url string, body, v any) error {
	return c.Do(ctx, method, url, nil, body, v)
}

// Do performs a JSON request. An empty response body is ErrNoContent when
// v is non-nil.
func (c *Client) Do(ctx context.Context, method, url string, headers map[string]string, body, v any) error {
	resp, err := c.doRequest(ctx, c.http, method, url, headers, body)
	if err != nil {
		return err
	}
	defer resp.Close()

	if v == nil {
		_, _ = io.Copy(io.Discard, resp)
		return nil
	}
	data, err := io.ReadAll(resp)
	if err != nil {
		return transportError(ctx, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return bperrors.Wrap(bperrors.ErrCodeNotFound, ErrNoContent, "%s %s", method, url)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return bperrors.Wrap(bperrors.ErrCodeInvalidInput, err, "decode %s %s", method, url)
	}
	return nil
}

// GetText performs an HTTP GET request and returns the response body as a string.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	body, err := c.doRequest(ctx, c.http, http.MethodGet, url, nil, nil)
	if err != nil {
		return "", err
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	return string(data), err
}

// Stream performs a GET and returns the open body. The request has no
// overall timeout; cancel ctx to abandon the stream. The caller closes it.
func (c *Client) Stream(ctx context.Context, url string) (io.ReadCloser, error) {
	return c.doRequest(ctx, c.stream, http.MethodGet, url, map[string]string{"Accept": "text/plain"}, nil)
}

func (c *Client) doRequest(ctx context.Context, hc *http.Client, method, url string, headers map[string]string, body any) (io.ReadCloser, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, bperrors.Wrap(bperrors.ErrCodeInvalidInput, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, method, req.URL.Host, req.URL.Path)
	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "url", url, "error", err)
		hooks.OnError(ctx, method, req.URL.Host, req.URL.Path, err)
		return nil, transportError(ctx, err)
	}
	took := time.Since(start)
	c.logger.Debug("request", "method", method, "url", url, "status", resp.StatusCode, "took", took)
	hooks.OnResponse(ctx, method, req.URL.Host, req.URL.Path, resp.StatusCode, took)

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	return resp.Body, nil
}
