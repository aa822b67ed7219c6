package bookclub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTimeout   = 2 * time.Minute
	defaultUserAgent = "bookclub-go"
	// maxErrorBody bounds how much of a non-JSON error body is kept.
	maxErrorBody = 4 << 10
)

// Client calls the bookclub HTTP API. Safe for concurrent use.
type Client struct {
	base   *url.URL
	http   *http.Client
	apiKey string
	ua     string
	obs    *observer
}

// New creates a Client for the server at baseURL ("http://host:8080").
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{timeout: defaultTimeout, userAgent: defaultUserAgent}
	for _, o := range opts {
		o.apply(cfg)
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("bookclub: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("bookclub: base url must be http or https, got %q", baseURL)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{base: u, http: hc, apiKey: cfg.apiKey, ua: cfg.userAgent, obs: obs}, nil
}

// Answer asks one question. Server errors unwrap to the package sentinels.
func (c *Client) Answer(ctx context.Context, req AnswerRequest) (_ *Answer, err error) {
	start := time.Now()
	defer func() { c.obs.observe("answer", start, err) }()

	if strings.TrimSpace(req.Question) == "" {
		return nil, fmt.Errorf("%w: question is required", ErrInvalidRequest)
	}

	var ans Answer
	hdr, err := c.do(ctx, http.MethodPost, "/api/v1/answer", req, &ans)
	if err != nil {
		return nil, err
	}

	ans.EmbeddingTokens = -1
	if v := hdr.Get("X-Embedding-Tokens"); v != "" {
		if n, convErr := strconv.Atoi(v); convErr == nil {
			ans.EmbeddingTokens = n
		}
	}
	return &ans, nil
}

// Categories lists the category table.
func (c *Client) Categories(ctx context.Context) (_ []Category, err error) {
	start := time.Now()
	defer func() { c.obs.observe("categories", start, err) }()

	var resp struct {
		Categories []Category `json:"categories"`
	}
	if _, err = c.do(ctx, http.MethodGet, "/api/v1/categories", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

// Authors lists reviewed authors in a category given by name or code.
func (c *Client) Authors(ctx context.Context, category string) (_ []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("authors", start, err) }()

	var resp struct {
		Authors []string `json:"authors"`
	}
	path := "/api/v1/categories/" + url.PathEscape(category) + "/authors"
	if _, err = c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Authors, nil
}

// Models returns the model catalog.
func (c *Client) Models(ctx context.Context) (_ Models, err error) {
	start := time.Now()
	defer func() { c.obs.observe("models", start, err) }()

	var m Models
	if _, err = c.do(ctx, http.MethodGet, "/api/v1/models", nil, &m); err != nil {
		return Models{}, err
	}
	return m, nil
}

// Health returns the server health report. A degraded server answers 503 with a
// valid report, which is returned without error.
func (c *Client) Health(ctx context.Context) (_ HealthStatus, err error) {
	start := time.Now()
	defer func() { c.obs.observe("health", start, err) }()

	var h HealthStatus
	_, err = c.do(ctx, http.MethodGet, "/health", nil, &h)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable && h.Status != "" {
		return h, nil
	}
	if err != nil {
		return HealthStatus{}, err
	}
	return h, nil
}

// do sends one JSON request and decodes a JSON response into out.
// Non-2xx responses become *APIError; a 503 body is still decoded into out.
func (c *Client) do(ctx context.Context, method, path string, in, out any) (http.Header, error) {
	var body io.Reader = http.NoBody
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("bookclub: encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return nil, fmt.Errorf("bookclub: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.ua)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bookclub: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("bookclub: read response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, fmt.Errorf("bookclub: decode response: %w", err)
		}
		return resp.Header, nil
	}

	if resp.StatusCode == http.StatusServiceUnavailable {
		_ = json.Unmarshal(raw, out)
	}
	return resp.Header, decodeAPIError(resp, raw)
}

func decodeAPIError(resp *http.Response, raw []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, RequestID: resp.Header.Get("X-Request-ID")}

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Code != "" {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
		return apiErr
	}

	apiErr.Code = strings.ToLower(strings.ReplaceAll(http.StatusText(resp.StatusCode), " ", "_"))
	if len(raw) > maxErrorBody {
		raw = raw[:maxErrorBody]
	}
	apiErr.Message = strings.TrimSpace(string(raw))
	return apiErr
}
