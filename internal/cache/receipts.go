package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/application/dto"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ReceiptCache is the redis fast path in front of the dispatch_receipts
// table. It is read-through only: a miss or a redis outage falls back to
// the durable table, so losing the cache never loses idempotency.
type ReceiptCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *logrus.Logger
}

func NewReceiptCache(rdb *redis.Client, ttl time.Duration, log *logrus.Logger) *ReceiptCache {
	return &ReceiptCache{rdb: rdb, ttl: ttl, log: log}
}

func key(correlationID string) string {
	return fmt.Sprintf("dispatch:receipt:%s", correlationID)
}

func (c *ReceiptCache) Get(ctx context.Context, correlationID string) (*dto.DispatchResult, bool) {
	val, err := c.rdb.Get(ctx, key(correlationID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Warnf("[CACHE] - Receipt lookup failed: %v", err)
		}
		return nil, false
	}

	var result dto.DispatchResult
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		c.log.Warnf("[CACHE] - Corrupt receipt for %s: %v", correlationID, err)
		return nil, false
	}
	return &result, true
}

func (c *ReceiptCache) Set(ctx context.Context, correlationID string, result *dto.DispatchResult) {
	b, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key(correlationID), b, c.ttl).Err(); err != nil {
		c.log.Warnf("[CACHE] - Failed to store receipt for %s: %v", correlationID, err)
	}
}
