// Package fetch is the shared HTTP layer. One Client serves the whole
// process; it applies the identity headers, follows redirects, retries
// transient failures with capped jittered backoff, and classifies every
// failure onto the fault taxonomy. Politeness (per-host pacing) is the
// orchestrator's job, not the client's.
package fetch

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/charmap"

	"github.com/quantfetch/quantfetch/config"
	"github.com/quantfetch/quantfetch/pkg/fault"
)

const (
	maxAttempts    = 3
	baseBackoff    = 500 * time.Millisecond
	maxBackoff     = 5 * time.Second
	defaultTimeout = 30 * time.Second
)

// Client issues GET requests with the process identity. Safe for concurrent
// use.
type Client struct {
	http     *http.Client
	identity config.Identity
}

// NewClient builds a client around the identity. The underlying transport is
// shared and follows redirects.
func NewClient(id config.Identity) *Client {
	return &Client{
		http:     &http.Client{Timeout: defaultTimeout},
		identity: id,
	}
}

// NewClientWithHTTP injects a custom http.Client; used by tests.
func NewClientWithHTTP(id config.Identity, hc *http.Client) *Client {
	return &Client{http: hc, identity: id}
}

// Identity returns the identity the client was built with.
func (c *Client) Identity() config.Identity { return c.identity }

// Response is the outcome of a successful GET.
type Response struct {
	Status      int
	Body        []byte
	FinalURL    string
	ContentType string
}

// Options adjusts a single request.
type Options struct {
	// Headers merge over the identity defaults; a per-call header wins.
	Headers map[string]string
	// Params are appended to the query string.
	Params url.Values
	// SEC switches the identity to the EDGAR contact string. The request
	// fails with a Configuration fault when none is configured.
	SEC bool
}

// Get fetches a URL. Transient 5xx and connect failures are retried up to
// maxAttempts with jittered exponential backoff; 4xx are never retried.
func (c *Client) Get(ctx context.Context, rawURL string, opts Options) (*Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fault.Wrap(fault.InvalidInput, "fetch", "get", err)
	}
	if len(opts.Params) > 0 {
		q := u.Query()
		for k, vs := range opts.Params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	ua := c.identity.UserAgent()
	if opts.SEC {
		ua, err = c.identity.RequireSECIdentity()
		if err != nil {
			return nil, err
		}
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepBackoff(ctx, attempt); err != nil {
				return nil, classify(err)
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, fault.Wrap(fault.InvalidInput, "fetch", "get", err)
		}
		req.Header.Set("User-Agent", ua)
		req.Header.Set("Accept", "*/*")
		for k, v := range opts.Headers {
			req.Header.Set(k, v)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = classify(err)
			if retryable(lastErr) {
				continue
			}
			return nil, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = fault.Wrap(fault.Transport, "fetch", "read", readErr)
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			final := rawURL
			if resp.Request != nil && resp.Request.URL != nil {
				final = resp.Request.URL.String()
			}
			return &Response{
				Status:      resp.StatusCode,
				Body:        body,
				FinalURL:    final,
				ContentType: resp.Header.Get("Content-Type"),
			}, nil
		case resp.StatusCode >= 500:
			lastErr = fault.Newf(fault.Upstream5xx, "fetch", "get", "%s returned %d", u.Host, resp.StatusCode)
			continue // transient
		default:
			return nil, fault.Newf(fault.Upstream4xx, "fetch", "get", "%s returned %d", u.Host, resp.StatusCode)
		}
	}
	return nil, lastErr
}

// JSON decodes the body into dest, classifying decode failures as Parse.
func (r *Response) JSON(dest any) error {
	if err := json.Unmarshal(r.Body, dest); err != nil {
		return fault.Wrap(fault.Parse, "fetch", "json", err)
	}
	return nil
}

// Text decodes the body to a string, honoring the HTTP-declared charset and
// falling back to UTF-8, then Windows-1252 for legacy archives.
func (r *Response) Text() string {
	if r.ContentType != "" {
		if rd, err := charset.NewReader(bytes.NewReader(r.Body), r.ContentType); err == nil {
			if b, err := io.ReadAll(rd); err == nil {
				return string(b)
			}
		}
	}
	if utf8.Valid(r.Body) {
		return string(r.Body)
	}
	if b, err := io.ReadAll(charmap.Windows1252.NewDecoder().Reader(bytes.NewReader(r.Body))); err == nil {
		return string(b)
	}
	return string(r.Body)
}

// sleepBackoff waits 2^(attempt-1) * base with ±25% jitter, capped.
func sleepBackoff(ctx context.Context, attempt int) error {
	d := baseBackoff << (attempt - 1)
	if d > maxBackoff {
		d = maxBackoff
	}
	jitter := time.Duration(rand.Int63n(int64(d) / 2))
	d = d*3/4 + jitter
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func retryable(err error) bool {
	switch fault.KindOf(err) {
	case fault.Upstream5xx:
		return true
	case fault.Transport:
		// Connect-level failures are retried; TLS handshake failures are not.
		var tlsErr *tls.CertificateVerificationError
		return !errors.As(err, &tlsErr)
	default:
		return false
	}
}

// classify maps transport-layer errors onto the taxonomy.
func classify(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return fault.Wrap(fault.Cancelled, "fetch", "get", err)
	case errors.Is(err, context.DeadlineExceeded):
		return fault.Wrap(fault.Timeout, "fetch", "get", err)
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fault.Wrap(fault.Timeout, "fetch", "get", err)
	}

	var dnsErr *net.DNSError
	var tlsErr *tls.CertificateVerificationError
	var opErr *net.OpError
	switch {
	case errors.As(err, &dnsErr), errors.As(err, &tlsErr), errors.As(err, &opErr):
		return fault.Wrap(fault.Transport, "fetch", "get", err)
	}

	var ue *url.Error
	if errors.As(err, &ue) {
		return fault.Wrap(fault.Transport, "fetch", "get", err)
	}
	return fault.Wrap(fault.Transport, "fetch", "get", err)
}
