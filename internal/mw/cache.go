package mw

import (
	"bytes"
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// CachedResponse is a captured GET response.
type CachedResponse struct {
	Status int         `json:"status"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"body"`
}

// ResponseStore keeps cached responses. Flush drops every entry and is called
// after each successful write so that no occupancy view outlives a change.
type ResponseStore interface {
	Get(ctx context.Context, key string) (CachedResponse, bool)
	Set(ctx context.Context, key string, resp CachedResponse, ttl time.Duration)
	Flush(ctx context.Context) error
}

type memoryStore struct {
	c *cache.Cache
}

// NewMemoryStore returns a process-local store backed by go-cache.
func NewMemoryStore(defaultTTL time.Duration) ResponseStore {
	return &memoryStore{c: cache.New(defaultTTL, 2*defaultTTL)}
}

func (m *memoryStore) Get(_ context.Context, key string) (CachedResponse, bool) {
	v, found := m.c.Get(key)
	if !found {
		return CachedResponse{}, false
	}
	resp, ok := v.(CachedResponse)
	return resp, ok
}

func (m *memoryStore) Set(_ context.Context, key string, resp CachedResponse, ttl time.Duration) {
	m.c.Set(key, resp, ttl)
}

func (m *memoryStore) Flush(context.Context) error {
	m.c.Flush()
	return nil
}

type bodyCacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyCacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w bodyCacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Cache serves GET requests from store and flushes it after any successful
// non-GET request. A GET that was in flight while a flush happened is served
// but not stored.
func Cache(store ResponseStore, ttl time.Duration) gin.HandlerFunc {
	var generation atomic.Uint64

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if c.Request.Method != http.MethodGet {
			c.Next()
			if s := c.Writer.Status(); s >= 200 && s < 300 {
				generation.Add(1)
				if err := store.Flush(ctx); err != nil {
					_ = c.Error(err)
				}
			}
			return
		}

		key := c.Request.RequestURI
		if cached, found := store.Get(ctx, key); found {
			for k, v := range cached.Header {
				c.Writer.Header()[k] = v
			}
			c.Writer.Header().Set("X-Cache", "HIT")
			c.Writer.WriteHeader(cached.Status)
			c.Writer.Write(cached.Body)
			c.Abort()
			return
		}

		started := generation.Load()
		blw := &bodyCacheWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = blw
		c.Header("X-Cache", "MISS")

		c.Next()

		// Only cache successful responses
		if blw.Status() >= 200 && blw.Status() < 300 && generation.Load() == started {
			header := blw.Header().Clone()
			header.Del("X-Cache")
			store.Set(ctx, key, CachedResponse{
				Status: blw.Status(),
				Header: header,
				Body:   blw.body.Bytes(),
			}, ttl)
		}
	}
}
