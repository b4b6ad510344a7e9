package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var ErrNotCached = errors.New("not cached")

// HeaderCache marks responses served from a bucket.
const HeaderCache = "X-Cache"

// Key identifies a cached request.
type Key struct {
	Method string
	URL    string
}

func (k Key) String() string {
	return k.Method + " " + k.URL
}

func KeyFor(req *http.Request) Key {
	return Key{Method: req.Method, URL: req.URL.String()}
}

// Entry is a stored response.
type Entry struct {
	Key      Key         `json:"-"`
	Status   int         `json:"status"`
	Header   http.Header `json:"header"`
	Body     []byte      `json:"body"`
	StoredAt time.Time   `json:"stored_at"`
}

// Response rebuilds an *http.Response for req from the entry.
func (e *Entry) Response(req *http.Request) *http.Response {
	h := e.Header.Clone()
	if h == nil {
		h = http.Header{}
	}
	h.Set(HeaderCache, "HIT")

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status)),
		StatusCode:    e.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        h,
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}

// Store persists entries grouped by bucket. At most one entry exists per
// bucket and key; Put overwrites.
type Store interface {
	// Match returns ErrNotCached when nothing is stored for key.
	Match(ctx context.Context, bucket string, key Key) (*Entry, error)
	Put(ctx context.Context, bucket string, e *Entry) error
	Delete(ctx context.Context, bucket string, key Key) error
	Buckets(ctx context.Context) ([]string, error)
	DeleteBucket(ctx context.Context, bucket string) error
}
