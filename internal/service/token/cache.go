package token

import (
	"context"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

// Cache 발급받은 액세스 토큰을 만료 시각까지 보관합니다.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, token string, ttl time.Duration) error
	Close() error
}

// maxMemoryEntryTTL 메모리 캐시 항목의 상한 수명. 실제 만료는 항목별 expiresAt으로 판단합니다.
const maxMemoryEntryTTL = 2 * time.Hour

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// memoryCache hashicorp expirable LRU 기반 캐시입니다.
//
// expirable.LRU는 모든 항목에 같은 TTL을 적용하므로, 항목별 만료 시각을 함께 저장하여 조회 시 검사합니다.
type memoryCache struct {
	lru *expirable.LRU[string, memoryEntry]
	now func() time.Time
}

// NewMemoryCache 최대 size개의 토큰을 보관하는 메모리 캐시를 생성합니다.
func NewMemoryCache(size int) Cache {
	if size <= 0 {
		size = 1024
	}
	return &memoryCache{
		lru: expirable.NewLRU[string, memoryEntry](size, nil, maxMemoryEntryTTL),
		now: time.Now,
	}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, bool) {
	entry, ok := c.lru.Get(key)
	if !ok {
		return "", false
	}
	if !c.now().Before(entry.expiresAt) {
		c.lru.Remove(key)
		return "", false
	}
	return entry.token, true
}

func (c *memoryCache) Set(_ context.Context, key, token string, ttl time.Duration) error {
	c.lru.Add(key, memoryEntry{token: token, expiresAt: c.now().Add(ttl)})
	return nil
}

func (c *memoryCache) Close() error {
	c.lru.Purge()
	return nil
}

// redisCache go-redis/cache 기반 캐시입니다. 여러 인스턴스가 같은 토큰을 공유합니다.
//
// 프로세스 로컬 TinyLFU 캐시를 앞단에 두어 Redis 왕복을 줄입니다.
type redisCache struct {
	client *redis.Client
	cache  *cache.Cache
}

// localCacheTTL 로컬 TinyLFU 캐시 항목의 수명
const localCacheTTL = time.Minute

// NewRedisCache redisURL(redis://...)에 연결하는 캐시를 생성합니다.
func NewRedisCache(redisURL string, localSize int) (Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, newErrInvalidRedisURL(err)
	}
	return newRedisCache(redis.NewClient(opts), localSize), nil
}

func newRedisCache(client *redis.Client, localSize int) *redisCache {
	if localSize <= 0 {
		localSize = 1024
	}
	return &redisCache{
		client: client,
		cache: cache.New(&cache.Options{
			Redis:      client,
			LocalCache: cache.NewTinyLFU(localSize, localCacheTTL),
		}),
	}
}

func (c *redisCache) Get(ctx context.Context, key string) (string, bool) {
	var token string
	if err := c.cache.Get(ctx, key, &token); err != nil {
		return "", false
	}
	return token, true
}

func (c *redisCache) Set(ctx context.Context, key, token string, ttl time.Duration) error {
	err := c.cache.Set(&cache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: token,
		TTL:   ttl,
	})
	if err != nil {
		return newErrCacheWrite(err)
	}
	return nil
}

func (c *redisCache) Close() error {
	return c.client.Close()
}
