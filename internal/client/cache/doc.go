// Package cache keeps copies of HTTP responses so the client keeps working
// while the network is down.
//
// Responses live in named buckets, one per release version of the client.
// Cache.Activate drops every bucket except the current one; there is no
// per-entry expiry. Transport is an http.RoundTripper applying two policies:
//
//   - requests to the story API origin are network-first and only GET is
//     cached; on a network failure the last cached response is served, or
//     the error is returned when there is none;
//   - everything else (application shell, story photos) is cache-first;
//     fresh 200 responses are stored, and a network failure produces a
//     synthesized 503 response instead of an error.
//
// Requests with schemes other than http and https pass straight through.
// Buckets are kept in the local SQLite store (SQLiteStore) or, when several
// clients share one cache, in Redis (RedisStore).
package cache
