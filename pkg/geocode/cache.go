package geocode

import (
	"container/list"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/foodmap/internal/logger"
)

// Cache 地理编码结果缓存，实现需并发安全；读写失败只影响命中率
type Cache interface {
	Get(ctx context.Context, key string) (Candidate, bool)
	Set(ctx context.Context, key string, c Candidate, ttl time.Duration)
}

// LRU 进程内缓存，容量满时淘汰最久未使用的条目，过期条目在读取时清除
type LRU struct {
	mu   sync.Mutex
	cap  int
	lst  *list.List
	dict map[string]*list.Element
	now  func() time.Time
}

type lruEntry struct {
	k   string
	v   Candidate
	exp time.Time
}

// NewLRU 创建容量为 capacity 的缓存
func NewLRU(capacity int) *LRU {
	if capacity <= 0 {
		capacity = 1024
	}
	return &LRU{cap: capacity, lst: list.New(), dict: make(map[string]*list.Element), now: time.Now}
}

func (c *LRU) Get(_ context.Context, k string) (Candidate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.dict[k]; ok {
		it := e.Value.(lruEntry)
		if c.now().Before(it.exp) {
			c.lst.MoveToFront(e)
			return it.v, true
		}
		c.lst.Remove(e)
		delete(c.dict, k)
	}
	return Candidate{}, false
}

func (c *LRU) Set(_ context.Context, k string, v Candidate, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	exp := c.now().Add(ttl)
	if e, ok := c.dict[k]; ok {
		e.Value = lruEntry{k: k, v: v, exp: exp}
		c.lst.MoveToFront(e)
		return
	}
	c.dict[k] = c.lst.PushFront(lruEntry{k: k, v: v, exp: exp})
	for c.lst.Len() > c.cap {
		back := c.lst.Back()
		if back == nil {
			break
		}
		delete(c.dict, back.Value.(lruEntry).k)
		c.lst.Remove(back)
	}
}

// Len 当前条目数（含未清除的过期条目）
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lst.Len()
}

// RedisCache 以 JSON 保存候选结果，键统一加前缀
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache client 为 nil 时返回 nil
func NewRedisCache(client *redis.Client) *RedisCache {
	if client == nil {
		return nil
	}
	return &RedisCache{client: client, prefix: "foodmap:geocode:"}
}

func (c *RedisCache) Get(ctx context.Context, k string) (Candidate, bool) {
	raw, err := c.client.Get(ctx, c.prefix+k).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.L().Warn("geocode_cache_get_error", "key", k, "err", err)
		}
		return Candidate{}, false
	}
	var cand Candidate
	if err := json.Unmarshal(raw, &cand); err != nil {
		logger.L().Warn("geocode_cache_decode_error", "key", k, "err", err)
		return Candidate{}, false
	}
	return cand, true
}

func (c *RedisCache) Set(ctx context.Context, k string, v Candidate, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.prefix+k, raw, ttl).Err(); err != nil {
		logger.L().Warn("geocode_cache_set_error", "key", k, "err", err)
	}
}

// OpenRedis 打开 Redis 客户端并探活，未配置地址时返回 nil
func OpenRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	logger.L().Debug("redis_connected", "addr", addr, "db", db)
	return client, nil
}

// NewCache 有 Redis 时使用 Redis，否则回退到进程内 LRU
func NewCache(client *redis.Client) Cache {
	if rc := NewRedisCache(client); rc != nil {
		return rc
	}
	return NewLRU(1024)
}
