package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"ComplyCheck/internal/retrieval/schema"
	"ComplyCheck/pkg/logger"
)

// ResultCache is an optional redis-backed cache of retrieval results.
// Cache failures are logged and otherwise invisible to callers: a miss
// and a broken cache look the same.
type ResultCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

// New creates a ResultCache with the given TTL.
func New(rdb *redis.Client, ttl time.Duration, log *logger.Logger) *ResultCache {
	return &ResultCache{rdb: rdb, ttl: ttl, log: log}
}

// Get returns the cached result for the query, if present.
func (c *ResultCache) Get(ctx context.Context, query string, topK int, standards []string) (*schema.RetrievalResult, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}

	data, err := c.rdb.Get(ctx, c.key(query, topK, standards)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Debug(fmt.Sprintf("Result cache get failed: %v", err))
		}
		return nil, false
	}

	var res schema.RetrievalResult
	if err := json.Unmarshal(data, &res); err != nil {
		c.log.Debug(fmt.Sprintf("Result cache decode failed: %v", err))
		return nil, false
	}
	return &res, true
}

// Put stores a result under its query key. Degraded results carrying an
// error are not cached, so a transient backend failure does not pin an
// empty answer for the TTL.
func (c *ResultCache) Put(ctx context.Context, query string, topK int, standards []string, res *schema.RetrievalResult) {
	if c == nil || c.rdb == nil || res == nil || res.Error != "" {
		return
	}

	data, err := json.Marshal(res)
	if err != nil {
		c.log.Debug(fmt.Sprintf("Result cache encode failed: %v", err))
		return
	}
	if err := c.rdb.Set(ctx, c.key(query, topK, standards), data, c.ttl).Err(); err != nil {
		c.log.Debug(fmt.Sprintf("Result cache set failed: %v", err))
	}
}

func (c *ResultCache) key(query string, topK int, standards []string) string {
	sorted := make([]string, len(standards))
	copy(sorted, standards)
	sort.Strings(sorted)

	sum := sha1.Sum([]byte(fmt.Sprintf("%s|%d|%s", query, topK, strings.Join(sorted, ","))))
	return "retrieval:" + hex.EncodeToString(sum[:])
}
