package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"thesis-verification-api/config"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// ReportCache stores finished verification reports keyed by upload.
type ReportCache interface {
	Get(ctx context.Context, key string) (*VerificationReport, bool)
	Set(ctx context.Context, key string, report *VerificationReport)
}

// RedisReportCache keeps reports in Redis with a fixed TTL. Errors only log:
// a cache miss must never fail a verification.
type RedisReportCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisReportCache(rdb *redis.Client, ttl time.Duration) *RedisReportCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisReportCache{rdb: rdb, ttl: ttl, prefix: "thesis:report:"}
}

func (c *RedisReportCache) Get(ctx context.Context, key string) (*VerificationReport, bool) {
	raw, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			config.Logger().Warnw("report cache get failed", "error", err)
		}
		return nil, false
	}
	var report VerificationReport
	if err := json.Unmarshal(raw, &report); err != nil {
		config.Logger().Warnw("report cache entry unreadable", "error", err)
		return nil, false
	}
	return &report, true
}

func (c *RedisReportCache) Set(ctx context.Context, key string, report *VerificationReport) {
	raw, err := json.Marshal(report)
	if err != nil {
		config.Logger().Warnw("report cache encode failed", "error", err)
		return
	}
	if err := c.rdb.Set(ctx, c.prefix+key, raw, c.ttl).Err(); err != nil {
		config.Logger().Warnw("report cache set failed", "error", err)
	}
}

// reportCacheKey binds a report to the upload, its declared title, the viewer
// role and the corpus size. A submitter never receives a reviewer's report and
// any corpus append changes the key.
func reportCacheKey(fileHash, title, role string, corpusSize int) string {
	sum := sha256.Sum256([]byte(fileHash + "\x00" + NormalizeTitle(title) + "\x00" + role + "\x00" + strconv.Itoa(corpusSize)))
	return hex.EncodeToString(sum[:])
}
