package reduction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single reduction request.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 32 << 20

// Request is the JSON body sent to the reduction service.
type Request struct {
	InputHTML string `json:"inputHtml"`
	InputCSS  string `json:"inputCss"`
}

// Response is the JSON body of a successful reduction.
type Response struct {
	OutputCSS string `json:"outputCss"`
}

// ErrorResponse is the JSON body the service sends when it rejects a request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Client talks to one reduction service endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout. It bounds the request context,
// so a client passed with WithHTTPClient is never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient returns a client for the service at endpoint, which must be an
// absolute http or https URL.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid reduction endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid reduction endpoint %q: scheme must be http or https", endpoint)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid reduction endpoint %q: missing host", endpoint)
	}

	c := &Client{
		endpoint: u.String(),
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the configured service URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Reduce sends html and css to the service and returns the reduced
// stylesheet. Every failure is an *Error of kind KindService or
// KindTransport. A single attempt is made.
func (c *Client) Reduce(ctx context.Context, html, css string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(Request{InputHTML: html, InputCSS: css})
	if err != nil {
		return "", Transport(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", Transport(err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("reduction request failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		return "", Transport(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", Transport(err)
	}

	c.logger.Debug("reduction response",
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		return "", classifyFailure(resp.StatusCode, data)
	}

	var out struct {
		OutputCSS *string `json:"outputCss"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", Transportf("malformed response: %v", err)
	}
	if out.OutputCSS == nil {
		return "", Transportf("malformed response: missing outputCss")
	}
	return *out.OutputCSS, nil
}

// classifyFailure maps a non-200 response to a service error when the body
// carries a structured error message, and to a transport error otherwise.
func classifyFailure(status int, body []byte) *Error {
	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		return Service(er.Error)
	}
	return Transportf("request failed with status code %d", status)
}
