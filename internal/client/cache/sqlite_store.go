package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/storysync/internal/client/storage"
	"github.com/dmitrijs2005/storysync/internal/dbx"
)

// SQLiteStore keeps buckets in the cache_entries table of the local store.
type SQLiteStore struct {
	db dbx.DBTX
}

func NewSQLiteStore(db dbx.DBTX) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Match(ctx context.Context, bucket string, key Key) (*Entry, error) {
	var (
		e        = Entry{Key: key}
		header   []byte
		storedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT status, header, body, stored_at FROM cache_entries
		WHERE bucket = ? AND method = ? AND url = ?`,
		bucket, key.Method, key.URL).Scan(&e.Status, &header, &e.Body, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("match %s in %s: %w", key, bucket, storage.Classify(err))
	}

	if err := json.Unmarshal(header, &e.Header); err != nil {
		return nil, fmt.Errorf("decode cached header: %w", err)
	}
	if e.StoredAt, err = storage.ParseTime(storedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *SQLiteStore) Put(ctx context.Context, bucket string, e *Entry) error {
	header, err := json.Marshal(e.Header)
	if err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	body := e.Body
	if body == nil {
		body = []byte{}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cache_entries (bucket, method, url, status, header, body, stored_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(bucket, method, url) DO UPDATE SET
			status = excluded.status,
			header = excluded.header,
			body = excluded.body,
			stored_at = excluded.stored_at`,
		bucket, e.Key.Method, e.Key.URL, e.Status, header, body, storage.FormatTime(e.StoredAt))
	if err != nil {
		return fmt.Errorf("put %s in %s: %w", e.Key, bucket, storage.Classify(err))
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, bucket string, key Key) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE bucket = ? AND method = ? AND url = ?`,
		bucket, key.Method, key.URL)
	if err != nil {
		return fmt.Errorf("delete %s from %s: %w", key, bucket, storage.Classify(err))
	}
	return nil
}

func (s *SQLiteStore) Buckets(ctx context.Context) ([]string, error) {
	scan := func(rows *sql.Rows) (string, error) {
		var b string
		err := rows.Scan(&b)
		return b, err
	}
	buckets, err := dbx.QueryAll(ctx, s.db, scan, `SELECT DISTINCT bucket FROM cache_entries ORDER BY bucket`)
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", storage.Classify(err))
	}
	return buckets, nil
}

func (s *SQLiteStore) DeleteBucket(ctx context.Context, bucket string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE bucket = ?`, bucket); err != nil {
		return fmt.Errorf("delete bucket %s: %w", bucket, storage.Classify(err))
	}
	return nil
}
