package querycache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/esodm/internal/db"
	"github.com/kailas-cloud/esodm/internal/domain"
)

var (
	entryPrefix      = domain.KeyPrefix + "search:"
	generationPrefix = domain.KeyPrefix + "gen:"
)

// minGenerationTTL keeps generation counters alive well past any cached entry.
const minGenerationTTL = 24 * time.Hour

// sharedSearchTimeout bounds an engine call shared by several callers; it runs
// detached from any single caller's cancellation.
const sharedSearchTimeout = 30 * time.Second

// store is the consumer interface for the cache backend (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// searcher runs a raw search request.
type searcher interface {
	Search(ctx context.Context, index string, body []byte) ([]byte, error)
}

// Cache caches raw search responses in a key-value store.
//
// Entries are keyed by index, the index's write generation and a hash of the
// request body. Invalidate bumps the generation so older entries are never read
// again and expire on their own.
type Cache struct {
	inner      searcher
	store      store
	ttl        time.Duration
	group      singleflight.Group
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner searcher,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Search returns a cached response or runs the search. Concurrent identical
// misses share one engine call.
func (c *Cache) Search(ctx context.Context, index string, body []byte) ([]byte, error) {
	gen := c.generation(ctx, index)
	key := entryKey(index, gen, body)

	if data, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return data, nil
	}
	c.incCache("miss")

	ch := c.group.DoChan(key, func() (any, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedSearchTimeout)
		defer cancel()

		data, err := c.inner.Search(sctx, index, body)
		if err != nil {
			return nil, err
		}
		c.putToCache(sctx, key, data)
		return data, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// Invalidate makes every cached response for the index stale.
func (c *Cache) Invalidate(ctx context.Context, index string) error {
	key := generationPrefix + index
	if _, err := c.store.IncrBy(ctx, key, 1); err != nil {
		return fmt.Errorf("bump generation %s: %w", index, err)
	}
	ttl := c.ttl * 10
	if ttl < minGenerationTTL {
		ttl = minGenerationTTL
	}
	if err := c.store.Expire(ctx, key, ttl, false); err != nil {
		c.logger.Warn("Failed to set generation ttl", zap.String("index", index), zap.Error(err))
	}
	return nil
}

func (c *Cache) generation(ctx context.Context, index string) int64 {
	data, err := c.store.Get(ctx, generationPrefix+index)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to read cache generation", zap.String("index", index), zap.Error(err))
		}
		return 0
	}
	gen, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		c.logger.Warn("Invalid cache generation", zap.String("index", index), zap.ByteString("value", data))
		return 0
	}
	return gen
}

func (c *Cache) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func entryKey(index string, gen int64, body []byte) string {
	h := sha256.Sum256(body)
	return entryPrefix + index + ":" + strconv.FormatInt(gen, 10) + ":" + hex.EncodeToString(h[:])
}

func (c *Cache) getFromCache(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached search", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}
	return data, true
}

func (c *Cache) putToCache(ctx context.Context, key string, data []byte) {
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache search", zap.String("key", key), zap.Error(err))
	}
}
