package api

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

	"github.com/juju/clock"
	"go.uber.org/zap"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// Options configures a Client.
type Options struct {
	// BaseURL is the backend root, e.g. "http://localhost:8080".
	BaseURL string

	// HTTPClient overrides the transport. Defaults to a fresh http.Client.
	HTTPClient *http.Client

	// Jar stores cookies between requests (the admin session).
	Jar http.CookieJar

	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration

	// Latency is an artificial delay before each request, used to exercise
	// loading states. Zero disables it.
	Latency time.Duration

	// Clock drives Latency. Defaults to the wall clock.
	Clock clock.Clock

	Logger *zap.Logger
}

// Client talks to the storefront backend.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	latency time.Duration
	clock   clock.Clock
	logger  *zap.Logger
}

// New validates opts and returns a Client.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", opts.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	if opts.Jar != nil {
		clone := *hc
		clone.Jar = opts.Jar
		hc = &clone
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.WallClock
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		base:    base,
		http:    hc,
		timeout: opts.Timeout,
		latency: opts.Latency,
		clock:   clk,
		logger:  logger.Named("api"),
	}, nil
}

// request describes one backend call.
type request struct {
	method      string
	path        string
	contentType string
	body        []byte
	header      http.Header

	// allowEmpty accepts a 2xx reply with a blank body, leaving out as is.
	allowEmpty bool
}

// response is a fully read backend reply.
type response struct {
	status   int
	finalURL *url.URL
	body     []byte
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// send performs req and reads the body. Transport failures are returned as
// errors; HTTP statuses are left to the caller.
func (c *Client) send(ctx context.Context, req request) (*response, error) {
	if c.latency > 0 {
		select {
		case <-c.clock.After(c.latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.base.String()+req.path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", req.method, req.path, err)
	}
	for k, vs := range req.header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debug("request", zap.String("method", req.method), zap.String("path", req.path))
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("request failed", zap.String("method", req.method), zap.String("path", req.path), zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", req.method, req.path, err)
	}
	c.logger.Debug("response", zap.String("path", req.path), zap.Int("status", resp.StatusCode))

	return &response{status: resp.StatusCode, finalURL: resp.Request.URL, body: data}, nil
}

// do sends req, turns non-2xx replies into *HTTPError and decodes a JSON
// body into out when out is non-nil.
func (c *Client) do(ctx context.Context, req request, out any) error {
	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	if !resp.ok() {
		return newHTTPError(req.method, req.path, resp.status, resp.body)
	}
	if out == nil {
		return nil
	}
	if req.allowEmpty && len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("decode %s %s: %w: %v", req.method, req.path, ErrMalformedResponse, err)
	}
	return nil
}

func jsonRequest(method, path string, payload any) (request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return request{}, fmt.Errorf("encode %s %s: %w", method, path, err)
	}
	return request{method: method, path: path, contentType: "application/json", body: data}, nil
}
