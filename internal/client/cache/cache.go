package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrijs2005/storysync/internal/logging"
)

// Cache is the current generation of cached responses: a Store plus the
// version tag naming the active bucket.
type Cache struct {
	store   Store
	version string
	logger  logging.Logger
	now     func() time.Time
}

func New(store Store, version string, logger logging.Logger) *Cache {
	return &Cache{store: store, version: version, logger: logger, now: time.Now}
}

// Version is the name of the active bucket.
func (c *Cache) Version() string {
	return c.version
}

// Match returns the cached response for req or ErrNotCached.
func (c *Cache) Match(ctx context.Context, req *http.Request) (*http.Response, error) {
	e, err := c.store.Match(ctx, c.version, KeyFor(req))
	if err != nil {
		return nil, err
	}
	return e.Response(req), nil
}

// Put stores a response for req in the active bucket, replacing any
// previous entry for the same key.
func (c *Cache) Put(ctx context.Context, req *http.Request, status int, header http.Header, body []byte) error {
	return c.store.Put(ctx, c.version, &Entry{
		Key:      KeyFor(req),
		Status:   status,
		Header:   header.Clone(),
		Body:     body,
		StoredAt: c.now().UTC(),
	})
}

// Install preloads urls into the active bucket through rt. It is all or
// nothing: when any fetch fails or answers with a non-2xx status nothing is
// stored.
func (c *Cache) Install(ctx context.Context, rt http.RoundTripper, urls []string) error {
	type fetched struct {
		req    *http.Request
		status int
		header http.Header
		body   []byte
	}

	results := make([]fetched, 0, len(urls))
	for _, u := range urls {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return fmt.Errorf("precache %s: %w", u, err)
		}

		resp, err := rt.RoundTrip(req)
		if err != nil {
			return fmt.Errorf("precache %s: %w", u, err)
		}
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return fmt.Errorf("precache %s: %w", u, err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("precache %s: unexpected status %s", u, resp.Status)
		}

		results = append(results, fetched{req: req, status: resp.StatusCode, header: resp.Header, body: body})
	}

	for _, r := range results {
		if err := c.Put(ctx, r.req, r.status, r.header, r.body); err != nil {
			return err
		}
	}

	c.logger.Info(ctx, "precached shell", "bucket", c.version, "count", len(results))
	return nil
}

// Activate deletes every bucket other than the active one and returns the
// names it removed.
func (c *Cache) Activate(ctx context.Context) ([]string, error) {
	buckets, err := c.store.Buckets(ctx)
	if err != nil {
		return nil, err
	}

	var deleted []string
	var errs []error
	for _, b := range buckets {
		if b == c.version {
			continue
		}
		c.logger.Info(ctx, "deleting old cache", "bucket", b)
		if err := c.store.DeleteBucket(ctx, b); err != nil {
			errs = append(errs, err)
			continue
		}
		deleted = append(deleted, b)
	}
	return deleted, errors.Join(errs...)
}

// ResolveURLs resolves possibly relative refs against base.
func ResolveURLs(base string, refs []string) ([]string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		u, err := url.Parse(ref)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", ref, err)
		}
		out = append(out, b.ResolveReference(u).String())
	}
	return out, nil
}
