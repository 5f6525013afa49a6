package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/modulesync/internal/metrics"
	"github.com/nhle/modulesync/internal/source"
)

// Options configures a Client.
type Options struct {
	// BaseURL is the root URL of the Canvas instance
	// (e.g., https://canvas.example.edu).
	BaseURL string

	// Token is an API access token used for Bearer authentication.
	Token string

	PerPage    int
	Timeout    time.Duration
	MaxRetries int

	// CacheDir enables the on-disk response cache when non-empty.
	CacheDir      string
	CacheMaxBytes uint64

	// HTTPClient overrides the default client.
	HTTPClient *http.Client

	Logger *zap.SugaredLogger
}

// Client is a thin HTTP client for the Canvas REST API.
// It handles Bearer token authentication, JSON marshaling, Link header
// pagination, response caching, and automatic retry with exponential
// backoff on HTTP 429.
type Client struct {
	baseURL    string
	token      string
	perPage    int
	httpClient *http.Client
	maxRetries int
	cache      *responseCache
	log        *zap.SugaredLogger
}

// NewClient creates a new Canvas HTTP client.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = 50
	}

	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      opts.Token,
		perPage:    perPage,
		httpClient: httpClient,
		maxRetries: maxRetries,
		cache:      newResponseCache(opts.CacheDir, opts.CacheMaxBytes),
		log:        log,
	}
}

// resolve turns an API path into an absolute URL. Absolute URLs, such as
// next links, are returned unchanged.
func (c *Client) resolve(ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return c.baseURL + ref
}

// Get performs a cached HTTP GET request, unmarshals the JSON response
// into result and returns the rel="next" link, if any. forceNetwork drops
// any cached copy first.
func (c *Client) Get(
	ctx context.Context,
	op string,
	ref string,
	forceNetwork bool,
	result interface{},
) (string, error) {
	url := c.resolve(ref)

	if forceNetwork {
		c.cache.erase(url)
	} else if cached, ok := c.cache.get(url); ok {
		metrics.CacheHit()
		if err := json.Unmarshal(cached.Body, result); err == nil {
			return cached.Next, nil
		}
		// A corrupt entry is refetched.
		c.cache.erase(url)
	}
	if c.cache != nil {
		metrics.CacheMiss()
	}

	body, header, err := c.do(ctx, op, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	next, err := ParseNextLink(header.Get("Link"))
	if err != nil {
		return "", source.Errorf(source.KindProtocol, op, "parsing Link header: %w", err)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return "", source.Errorf(source.KindProtocol, op, "unmarshaling response from GET %s: %w", url, err)
	}

	if err := c.cache.put(url, cachedResponse{Body: body, Next: next}); err != nil {
		c.log.Debugw("caching response failed", "url", url, "error", err)
	}

	return next, nil
}

// Put performs an HTTP PUT request with a JSON body and unmarshals the
// JSON response. On success every cached response of the course the path
// belongs to is dropped, since listings embed the mutated objects.
func (c *Client) Put(
	ctx context.Context,
	op string,
	path string,
	body interface{},
	result interface{},
) error {
	url := c.resolve(path)
	respBody, _, err := c.do(ctx, op, http.MethodPut, url, body)
	if err != nil {
		return err
	}

	if n := c.cache.eraseScope(url); n > 0 {
		c.log.Debugw("invalidated cached responses", "scope", cacheScope(url), "entries", n)
	}

	if result == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return source.Errorf(source.KindProtocol, op, "unmarshaling response from PUT %s: %w", path, err)
	}
	return nil
}

// do is the core HTTP method that builds the request, handles auth,
// rate limiting with exponential backoff, and status classification.
func (c *Client) do(
	ctx context.Context,
	op string,
	method string,
	url string,
	body interface{},
) (respBody []byte, header http.Header, err error) {
	started := time.Now()
	defer func() { metrics.ObserveRequest(op, started, err) }()

	var data []byte
	if body != nil {
		data, err = json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("marshaling request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		var bodyReader io.Reader
		if data != nil {
			bodyReader = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return nil, nil, fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")
		if data != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, nil, &source.Error{
				Kind: source.KindNetwork,
				Op:   op,
				Err:  fmt.Errorf("executing request %s %s: %w", method, url, err),
			}
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, nil, &source.Error{
				Kind: source.KindNetwork,
				Op:   op,
				Err:  fmt.Errorf("reading response body: %w", readErr),
			}
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			waitDuration := retryAfterDuration(resp, attempt)
			lastErr = fmt.Errorf("rate limited (429) on %s %s", method, url)
			c.log.Debugw("rate limited", "op", op, "attempt", attempt, "wait", waitDuration)

			select {
			case <-ctx.Done():
				return nil, nil, &source.Error{Kind: source.KindNetwork, Op: op, Err: ctx.Err()}
			case <-time.After(waitDuration):
				continue
			}
		}

		if resp.StatusCode == http.StatusUnauthorized {
			return nil, nil, &source.AuthError{
				SourceType: source.SourceTypeCanvas,
				Message: fmt.Sprintf(
					"authentication failed (401): check your "+
						"access token for %s", c.baseURL,
				),
			}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, nil, &source.Error{
				Kind: classifyStatus(method, resp.StatusCode),
				Op:   op,
				Err: fmt.Errorf(
					"unexpected status %d on %s %s: %s",
					resp.StatusCode, method, url, errorMessage(respBody),
				),
			}
		}

		return respBody, resp.Header, nil
	}

	return nil, nil, &source.Error{
		Kind: source.KindNetwork,
		Op:   op,
		Err:  fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr),
	}
}

func classifyStatus(method string, status int) source.Kind {
	switch {
	case status == http.StatusNotFound || status == http.StatusGone:
		return source.KindNotFound
	case method != http.MethodGet && status >= 400 && status < 500:
		return source.KindMutationRejected
	default:
		return source.KindNetwork
	}
}

// errorMessage extracts the Canvas error text, falling back to the raw body.
func errorMessage(body []byte) string {
	var resp ErrorResponse
	if json.Unmarshal(body, &resp) == nil {
		if len(resp.Errors) > 0 {
			msgs := make([]string, 0, len(resp.Errors))
			for _, e := range resp.Errors {
				msgs = append(msgs, e.Message)
			}
			return strings.Join(msgs, "; ")
		}
		if resp.Message != "" {
			return resp.Message
		}
	}
	return string(body)
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	// Exponential backoff: 1s, 2s, 4s, ...
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}
