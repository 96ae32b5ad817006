package mw

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to addr and returns nil when the server does not
// answer a ping, in which case callers fall back to the memory store.
func NewRedisClient(addr string, db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: redis at %s unavailable: %v", addr, err)
		client.Close()
		return nil
	}
	return client
}

type redisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore returns a store shared between all instances using rdb.
// Keys are namespaced with prefix.
func NewRedisStore(rdb *redis.Client, prefix string) ResponseStore {
	return &redisStore{rdb: rdb, prefix: prefix + ":resp:"}
}

func (r *redisStore) Get(ctx context.Context, key string) (CachedResponse, bool) {
	bs, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		return CachedResponse{}, false
	}
	var resp CachedResponse
	if err := json.Unmarshal(bs, &resp); err != nil {
		return CachedResponse{}, false
	}
	return resp, true
}

func (r *redisStore) Set(ctx context.Context, key string, resp CachedResponse, ttl time.Duration) {
	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := r.rdb.SetEx(ctx, r.prefix+key, payload, ttl).Err(); err != nil {
		log.Printf("Warning: failed to cache %s: %v", key, err)
	}
}

// Flush deletes every key under the prefix.
func (r *redisStore) Flush(ctx context.Context) error {
	iter := r.rdb.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.rdb.Del(ctx, keys...).Err()
}
