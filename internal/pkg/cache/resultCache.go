package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"face-enhancer/internal/entity"
)

// ResultCache keeps finished enhancement results keyed by payload and
// parameters, so repeated uploads of the same image skip the pipeline. A nil
// *ResultCache is valid and always misses, covering deployments without
// redis.
type ResultCache struct {
	client *redis.Client
	ctx    context.Context
	ttl    time.Duration
}

func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{
		client: client,
		ctx:    context.Background(),
		ttl:    ttl,
	}
}

// Key is deterministic over the payload bytes and the full parameter record.
func Key(payload entity.ImagePayload, params entity.EnhanceParams) string {
	h := sha256.New()
	h.Write([]byte(payload))

	p, _ := json.Marshal(params)
	h.Write(p)

	return "enhance:" + hex.EncodeToString(h.Sum(nil))
}

func (c *ResultCache) Get(key string) (*entity.EnhanceResult, bool) {
	if c == nil {
		return nil, false
	}

	data, err := c.client.Get(c.ctx, key).Result()
	if err != nil {
		return nil, false
	}

	var result entity.EnhanceResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, false
	}
	return &result, true
}

// Set is best effort, a failed write only costs the next request a recompute.
func (c *ResultCache) Set(key string, result *entity.EnhanceResult) {
	if c == nil {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		return
	}

	if err := c.client.Set(c.ctx, key, data, c.ttl).Err(); err != nil {
		logrus.Debugf("result cache set failed: %s", err.Error())
	}
}
