package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/storysync/internal/logging"
)

// OfflineBody is the body of the synthesized response returned when a shell
// request can be served neither from the network nor from the cache.
const OfflineBody = "Offline - content unavailable"

// Transport routes requests through the cache. See the package documentation
// for the policies.
type Transport struct {
	base        http.RoundTripper
	cache       *Cache
	apiOrigin   string
	shellOrigin string
	logger      logging.Logger
}

// NewTransport wraps base (http.DefaultTransport when nil). apiBaseURL
// selects the network-first origin. shellOrigin limits which cache-first
// responses are stored; empty means any origin.
func NewTransport(base http.RoundTripper, c *Cache, apiBaseURL, shellOrigin string, logger logging.Logger) (*Transport, error) {
	if base == nil {
		base = http.DefaultTransport
	}

	apiURL, err := url.Parse(apiBaseURL)
	if err != nil || apiURL.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", apiBaseURL)
	}

	t := &Transport{
		base:      base,
		cache:     c,
		apiOrigin: origin(apiURL),
		logger:    logger,
	}

	if shellOrigin != "" {
		u, err := url.Parse(shellOrigin)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid shell origin %q", shellOrigin)
		}
		t.shellOrigin = origin(u)
	}

	return t, nil
}

func origin(u *url.URL) string {
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	switch strings.ToLower(req.URL.Scheme) {
	case "http", "https":
	default:
		return t.base.RoundTrip(req)
	}

	if origin(req.URL) == t.apiOrigin {
		if req.Method != http.MethodGet {
			return t.base.RoundTrip(req)
		}
		return t.networkFirst(req)
	}
	return t.cacheFirst(req)
}

func (t *Transport) networkFirst(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	resp, err := t.base.RoundTrip(req)
	if err == nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return resp, nil
		}
		resp, err = t.store(req, resp)
		if err == nil {
			return resp, nil
		}
	}

	if callerCanceled(ctx) {
		return nil, err
	}

	// The request context may already be past its deadline.
	cached, cerr := t.cache.Match(context.WithoutCancel(ctx), req)
	if cerr == nil {
		t.logger.Debug(ctx, "network failed, serving cached response", "url", req.URL.String(), "error", err)
		return cached, nil
	}
	if !errors.Is(cerr, ErrNotCached) {
		t.logger.Warn(ctx, "cache lookup failed", "url", req.URL.String(), "error", cerr)
	}
	return nil, err
}

func (t *Transport) cacheFirst(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if req.Method == http.MethodGet {
		cached, err := t.cache.Match(ctx, req)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, ErrNotCached) {
			t.logger.Warn(ctx, "cache lookup failed", "url", req.URL.String(), "error", err)
		}
	}

	resp, err := t.base.RoundTrip(req)
	if err == nil && req.Method == http.MethodGet && resp.StatusCode == http.StatusOK && t.cacheable(req.URL) {
		resp, err = t.store(req, resp)
	}
	if err != nil {
		if callerCanceled(ctx) {
			return nil, err
		}
		t.logger.Debug(ctx, "network failed, serving offline response", "url", req.URL.String(), "error", err)
		return offlineResponse(req), nil
	}
	return resp, nil
}

// callerCanceled tells an explicit cancellation apart from a timeout. A
// timed-out request, including one cut short by http.Client.Timeout, is a
// network failure and still gets the cache or offline fallback.
func callerCanceled(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.Canceled)
}

func (t *Transport) cacheable(u *url.URL) bool {
	return t.shellOrigin == "" || origin(u) == t.shellOrigin
}

// store buffers the body, saves a copy and returns an equivalent response.
// A failed cache write is logged; the live response is still returned.
func (t *Transport) store(req *http.Request, resp *http.Response) (*http.Response, error) {
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	if err := t.cache.Put(req.Context(), req, resp.StatusCode, resp.Header, body); err != nil {
		t.logger.Warn(req.Context(), "cache write failed", "url", req.URL.String(), "error", err)
	}
	return resp, nil
}

func offlineResponse(req *http.Request) *http.Response {
	return &http.Response{
		Status:        "503 Service Unavailable",
		StatusCode:    http.StatusServiceUnavailable,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"Content-Type": {"text/plain"}},
		Body:          io.NopCloser(strings.NewReader(OfflineBody)),
		ContentLength: int64(len(OfflineBody)),
		Request:       req,
	}
}
