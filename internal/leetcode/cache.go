package leetcode

import (
	"context"
	"encoding/json"
	"time"

	"github.com/codeclimbers/leetboard/internal/infrastructure/driver"
	"github.com/codeclimbers/leetboard/internal/weekly"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "leetboard:calendar:"

// CachedProvider read-through calendar cache in front of the client, so
// the live board endpoint and the snapshot job don't hammer the upstream
// for the same user within the TTL. The cache is best effort: any kv
// failure falls through to the client
type CachedProvider struct {
	Next   weekly.ActivityProvider
	KV     driver.KeyValueDB
	TTL    time.Duration
	Logger *zap.Logger
}

var _ weekly.ActivityProvider = &CachedProvider{}

// NewCachedProvider .
func NewCachedProvider(next weekly.ActivityProvider, kv driver.KeyValueDB, ttl time.Duration, logger *zap.Logger) *CachedProvider {
	return &CachedProvider{Next: next, KV: kv, TTL: ttl, Logger: logger}
}

// Fetch implement weekly.ActivityProvider
func (p *CachedProvider) Fetch(ctx context.Context, username string) (weekly.Calendar, error) {
	key := cacheKeyPrefix + username

	if raw, err := p.KV.Get(key); err == nil {
		var cal weekly.Calendar
		if err := json.Unmarshal([]byte(raw), &cal); err == nil {
			return cal, nil
		}
		p.Logger.Debug("dropping undecodable cached calendar", zap.String("user.name", username))
	}

	cal, err := p.Next.Fetch(ctx, username)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(cal); err == nil {
		if err := p.KV.SetEX(key, string(raw), p.TTL); err != nil {
			p.Logger.Debug("calendar cache write failed", zap.String("user.name", username), zap.Error(err))
		}
	}
	return cal, nil
}
