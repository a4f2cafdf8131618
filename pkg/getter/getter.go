/*
Copyright The Gamebird Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package getter provides the HTTP transport for the store client.
//
// It knows nothing about catalogs or manifests; it fetches JSON documents
// and byte streams from paths below a base URL, with timeouts, exponential
// backoff on transient failures, and dedicated handling for rate-limit
// responses. It holds no state beyond its configuration.
package getter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/suntank/gamebird-os/internal/version"
)

var (
	// ErrNetworkUnavailable indicates the endpoint could not be reached
	// within the retry budget.
	ErrNetworkUnavailable = errors.New("network unavailable")
	// ErrRateLimited indicates the endpoint kept refusing with HTTP 429
	// past the rate-limit wait cap.
	ErrRateLimited = errors.New("rate limited by server")
	// ErrMalformedResponse indicates a successful response whose body could
	// not be decoded as JSON.
	ErrMalformedResponse = errors.New("malformed response body")
)

const (
	backoffBase = 1 * time.Second
	backoffMax  = 16 * time.Second

	// rateLimitFallback is how long to wait on a 429 that carries no
	// Retry-After header.
	rateLimitFallback = 30 * time.Second
	// maxRateLimitWaits bounds how many 429 responses a single request
	// will sit out. Rate-limit waits do not consume the transport retry
	// budget.
	maxRateLimitWaits = 3
)

type options struct {
	timeout           time.Duration
	maxRetries        int
	userAgent         string
	transport         http.RoundTripper
	backoffBase       time.Duration
	backoffMax        time.Duration
	rateLimitFallback time.Duration
	logger            logrus.FieldLogger
}

// Option configures a Client.
type Option func(*options)

// WithTimeout sets the per-request timeout for JSON calls. Streams are not
// subject to it; they are bounded by their context instead.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithMaxRetries sets the transport-level retry budget.
func WithMaxRetries(n int) Option {
	return func(o *options) { o.maxRetries = n }
}

// WithUserAgent overrides the default user agent.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithTransport sets a custom round tripper, mostly for tests.
func WithTransport(t http.RoundTripper) Option {
	return func(o *options) { o.transport = t }
}

// WithBackoff overrides the retry backoff curve.
func WithBackoff(base, max time.Duration) Option {
	return func(o *options) {
		o.backoffBase = base
		o.backoffMax = max
	}
}

// WithRateLimitFallback overrides the wait applied to a 429 response that
// has no usable Retry-After header.
func WithRateLimitFallback(d time.Duration) Option {
	return func(o *options) { o.rateLimitFallback = d }
}

// WithLogger sets the logger used for retry chatter.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.logger = l }
}

// Client fetches JSON documents and byte streams from a single base URL.
type Client struct {
	baseURL string
	opts    options
	// jsonClient enforces the overall request timeout; streamClient does
	// not, since archive downloads legitimately run for minutes.
	jsonClient   *http.Client
	streamClient *http.Client
}

// New constructs a Client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	o := options{
		timeout:           10 * time.Second,
		maxRetries:        3,
		userAgent:         version.GetUserAgent(),
		backoffBase:       backoffBase,
		backoffMax:        backoffMax,
		rateLimitFallback: rateLimitFallback,
		logger:            logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	// Streams have no overall deadline (archive downloads legitimately run
	// for minutes), so the transport itself must bound the connect and the
	// wait for response headers. A stalled body read is bounded by ctx.
	streamTransport := o.transport
	if streamTransport == nil {
		streamTransport = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: o.timeout}).DialContext,
			TLSHandshakeTimeout:   o.timeout,
			ResponseHeaderTimeout: o.timeout,
		}
	}

	return &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		opts:         o,
		jsonClient:   &http.Client{Timeout: o.timeout, Transport: o.transport},
		streamClient: &http.Client{Transport: streamTransport},
	}
}

// GetJSON fetches path and decodes the response body into v.
func (c *Client) GetJSON(ctx context.Context, path string, v interface{}) error {
	resp, err := c.get(ctx, c.jsonClient, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Wrapf(ErrMalformedResponse, "decoding response from %s: %v", path, err)
	}
	return nil
}

// GetStream fetches path and returns the response body along with the
// declared content length (-1 when unknown). The stream is finite and not
// restartable; retrying means issuing a fresh request. The caller owns the
// returned ReadCloser.
func (c *Client) GetStream(ctx context.Context, path string) (io.ReadCloser, int64, error) {
	resp, err := c.get(ctx, c.streamClient, path)
	if err != nil {
		return nil, 0, err
	}
	return resp.Body, resp.ContentLength, nil
}

// PostJSON sends body as JSON to path and decodes the response into v.
// Writes are sent exactly once; they are not retried.
func (c *Client) PostJSON(ctx context.Context, path string, body, v interface{}) error {
	return c.send(ctx, http.MethodPost, path, body, v)
}

// DeleteJSON issues a DELETE with a JSON body to path and decodes the
// response into v. Not retried, like PostJSON.
func (c *Client) DeleteJSON(ctx context.Context, path string, body, v interface{}) error {
	return c.send(ctx, http.MethodDelete, path, body, v)
}

func (c *Client) get(ctx context.Context, client *http.Client, path string) (*http.Response, error) {
	url := c.url(path)
	log := c.opts.logger.WithField("url", url)

	attempts := 0
	rateWaits := 0
	var lastErr error
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.opts.userAgent)

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
		} else {
			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				resp.Body.Close()
				rateWaits++
				if rateWaits > maxRateLimitWaits {
					return nil, errors.Wrapf(ErrRateLimited, "GET %s", url)
				}
				wait := retryAfter(resp, c.opts.rateLimitFallback)
				log.Warnf("rate limited, waiting %s", wait)
				if err := sleep(ctx, wait); err != nil {
					return nil, err
				}
				// Does not consume the transport retry budget.
				continue
			case resp.StatusCode >= 500:
				resp.Body.Close()
				lastErr = errors.Errorf("server error: %s", resp.Status)
			case resp.StatusCode != http.StatusOK:
				resp.Body.Close()
				return nil, errors.Errorf("unexpected status fetching %s: %s", url, resp.Status)
			default:
				return resp, nil
			}
		}

		attempts++
		if attempts > c.opts.maxRetries {
			return nil, errors.Wrapf(ErrNetworkUnavailable, "GET %s failed after %d attempts: %v", url, attempts, lastErr)
		}
		delay := c.backoff(attempts)
		log.WithField("attempt", attempts).Warnf("request failed (%v), retrying in %s", lastErr, delay)
		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

func (c *Client) send(ctx context.Context, method, path string, body, v interface{}) error {
	url := c.url(path)

	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "encoding request body")
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.opts.userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.jsonClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrapf(ErrNetworkUnavailable, "%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected status from %s %s: %s", method, url, resp.Status)
	}
	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Wrapf(ErrMalformedResponse, "decoding response from %s: %v", path, err)
	}
	return nil
}

func (c *Client) url(path string) string {
	return c.baseURL + "/" + strings.TrimPrefix(path, "/")
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.backoffBase << (attempt - 1)
	if d > c.opts.backoffMax {
		return c.opts.backoffMax
	}
	return d
}

// retryAfter honors an integral Retry-After header, falling back to the
// configured fixed wait.
func retryAfter(resp *http.Response, fallback time.Duration) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
