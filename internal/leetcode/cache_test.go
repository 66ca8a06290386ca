package leetcode

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/codeclimbers/leetboard/internal/infrastructure/driver"
	"github.com/codeclimbers/leetboard/internal/weekly"
)

type memoryKV struct {
	data    map[string]string
	getErr  error
	setErr  error
	setKeys []string
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: make(map[string]string)}
}

func (kv *memoryKV) SetEX(key string, value string, expiration time.Duration) error {
	if kv.setErr != nil {
		return kv.setErr
	}
	kv.data[key] = value
	kv.setKeys = append(kv.setKeys, key)
	return nil
}

func (kv *memoryKV) Get(key string) (string, error) {
	if kv.getErr != nil {
		return "", kv.getErr
	}
	value, ok := kv.data[key]
	if !ok {
		return "", driver.ErrKeyNotFound
	}
	return value, nil
}

func (kv *memoryKV) Exists(key string) (bool, error) {
	_, ok := kv.data[key]
	return ok, nil
}

func (kv *memoryKV) Ping() error { return nil }

type countingProvider struct {
	cal   weekly.Calendar
	err   error
	calls int
}

func (p *countingProvider) Fetch(ctx context.Context, username string) (weekly.Calendar, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.cal, nil
}

func TestCachedProvider_Fetch(t *testing.T) {
	cal := weekly.Calendar{"1704067200": 3}

	t.Run("second fetch within the TTL is served from cache", func(t *testing.T) {
		next := &countingProvider{cal: cal}
		cache := NewCachedProvider(next, newMemoryKV(), time.Minute, zap.NewNop())

		first, err := cache.Fetch(context.Background(), "alice")
		require.NoError(t, err)
		second, err := cache.Fetch(context.Background(), "alice")
		require.NoError(t, err)

		assert.Equal(t, cal, first)
		assert.Equal(t, cal, second)
		assert.Equal(t, 1, next.calls)
	})

	t.Run("kv read failure falls through to the provider", func(t *testing.T) {
		next := &countingProvider{cal: cal}
		kv := newMemoryKV()
		kv.getErr = errors.New("connection refused")
		cache := NewCachedProvider(next, kv, time.Minute, zap.NewNop())

		got, err := cache.Fetch(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, cal, got)
		assert.Equal(t, 1, next.calls)
	})

	t.Run("kv write failure does not fail the fetch", func(t *testing.T) {
		next := &countingProvider{cal: cal}
		kv := newMemoryKV()
		kv.setErr = errors.New("readonly replica")
		cache := NewCachedProvider(next, kv, time.Minute, zap.NewNop())

		got, err := cache.Fetch(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, cal, got)
	})

	t.Run("undecodable cache entry is refetched", func(t *testing.T) {
		next := &countingProvider{cal: cal}
		kv := newMemoryKV()
		kv.data[cacheKeyPrefix+"alice"] = "{not json"
		cache := NewCachedProvider(next, kv, time.Minute, zap.NewNop())

		got, err := cache.Fetch(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, cal, got)
		assert.Equal(t, 1, next.calls)
	})

	t.Run("provider failures are not cached", func(t *testing.T) {
		next := &countingProvider{err: errors.New("upstream 502")}
		kv := newMemoryKV()
		cache := NewCachedProvider(next, kv, time.Minute, zap.NewNop())

		_, err := cache.Fetch(context.Background(), "alice")
		require.Error(t, err)
		assert.Empty(t, kv.setKeys)
	})
}
