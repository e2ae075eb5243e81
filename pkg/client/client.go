package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 8 << 20

// Request describes one call to the BookNStay API.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	// Body is JSON-encoded unless it is a *Multipart.
	Body any
}

// Response is the success envelope every call returns.
type Response struct {
	Status int
	Data   json.RawMessage
}

// Decode unmarshals the response payload into out.
func (r *Response) Decode(out any) error {
	if r == nil || len(r.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// RequestObserver receives one call per finished request. Status is 0 when no response arrived.
type RequestObserver interface {
	ObserveRequest(method string, status int, elapsed time.Duration)
}

// Client is the BookNStay API transport. Every request goes through Do, which attaches the
// current bearer token and normalizes failures into *APIError.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	token          func() string
	onUnauthorized func()
	log            logrus.FieldLogger
	observer       RequestObserver
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithTokenSource sets the function consulted for the bearer token on every request.
func WithTokenSource(fn func() string) Option {
	return func(c *Client) { c.token = fn }
}

// WithUnauthorizedHandler sets the hook run when the server answers 401.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithLogger sets the request logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithObserver reports request outcomes to o.
func WithObserver(o RequestObserver) Option {
	return func(c *Client) { c.observer = o }
}

// New creates a new API client.
func New(baseURL string, opts ...Option) *Client {
	silent := logrus.New()
	silent.SetOutput(io.Discard)

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		token: func() string { return "" },
		log:   silent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs r and returns the response envelope or an *APIError.
// A 401 runs the unauthorized handler before the error is returned.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	if r.Method == "" {
		r.Method = http.MethodGet
	}
	reqID := uuid.NewString()
	start := time.Now()

	resp, err := c.doRequest(ctx, r, reqID)

	status := 0
	if resp != nil {
		status = resp.Status
	} else if apiErr, ok := AsAPIError(err); ok {
		status = apiErr.Status
	}
	elapsed := time.Since(start)
	if c.observer != nil {
		c.observer.ObserveRequest(r.Method, status, elapsed)
	}

	entry := c.log.WithFields(logrus.Fields{
		"method":     r.Method,
		"path":       r.Path,
		"status":     status,
		"elapsed":    elapsed.String(),
		"request_id": reqID,
	})
	if err != nil {
		entry.WithError(err).Debug("api request failed")
	} else {
		entry.Debug("api request")
	}

	if status == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized()
	}
	return resp, err
}

func (c *Client) doRequest(ctx context.Context, r Request, reqID string) (*Response, error) {
	var (
		reqBody     io.Reader
		contentType string
	)
	switch body := r.Body.(type) {
	case nil:
	case *Multipart:
		rd, ct, err := body.encode()
		if err != nil {
			return nil, networkError(fmt.Errorf("encode multipart: %w", err))
		}
		reqBody, contentType = rd, ct
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, networkError(fmt.Errorf("marshal body: %w", err))
		}
		reqBody, contentType = bytes.NewReader(data), "application/json"
	}

	target := c.baseURL + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, reqBody)
	if err != nil {
		return nil, networkError(fmt.Errorf("create request: %w", err))
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	// Caller headers never decide authorization.
	req.Header.Del("Authorization")
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, networkError(fmt.Errorf("do request: %w", err))
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		if resp.StatusCode >= 400 {
			return nil, &APIError{Status: resp.StatusCode, Data: fmt.Sprintf("failed to read body: %v", err)}
		}
		return nil, networkError(fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{Status: resp.StatusCode, Data: errorPayload(resp.StatusCode, data)}
	}
	return &Response{Status: resp.StatusCode, Data: data}, nil
}

// errorPayload keeps JSON payloads verbatim and falls back to the body text.
func errorPayload(status int, body []byte) any {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return http.StatusText(status)
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	return string(trimmed)
}
