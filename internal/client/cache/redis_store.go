package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each bucket in a Redis hash (field = request key) and the
// bucket names in a set, so several clients can share one response cache.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// DialRedis connects to addr and checks the connection with PING.
func DialRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "storysync:cache"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) bucketsKey() string {
	return s.prefix + ":buckets"
}

func (s *RedisStore) bucketKey(bucket string) string {
	return s.prefix + ":bucket:" + bucket
}

func (s *RedisStore) Match(ctx context.Context, bucket string, key Key) (*Entry, error) {
	raw, err := s.client.HGet(ctx, s.bucketKey(bucket), key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("match %s in %s: %w", key, bucket, err)
	}

	e := &Entry{Key: key}
	if err := json.Unmarshal(raw, e); err != nil {
		return nil, fmt.Errorf("decode cached entry: %w", err)
	}
	return e, nil
}

func (s *RedisStore) Put(ctx context.Context, bucket string, e *Entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, s.bucketKey(bucket), e.Key.String(), raw)
		p.SAdd(ctx, s.bucketsKey(), bucket)
		return nil
	})
	if err != nil {
		return fmt.Errorf("put %s in %s: %w", e.Key, bucket, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, bucket string, key Key) error {
	if err := s.client.HDel(ctx, s.bucketKey(bucket), key.String()).Err(); err != nil {
		return fmt.Errorf("delete %s from %s: %w", key, bucket, err)
	}
	return nil
}

func (s *RedisStore) Buckets(ctx context.Context) ([]string, error) {
	buckets, err := s.client.SMembers(ctx, s.bucketsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	sort.Strings(buckets)
	return buckets, nil
}

func (s *RedisStore) DeleteBucket(ctx context.Context, bucket string) error {
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.bucketKey(bucket))
		p.SRem(ctx, s.bucketsKey(), bucket)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete bucket %s: %w", bucket, err)
	}
	return nil
}
