package middleware

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	radix "github.com/mediocregopher/radix/v3"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/metrics"
)

// 路由分组，读写接口分开计数
const (
	GroupRead  = "read"
	GroupWrite = "write"
)

// Store 滑动窗口日志：记录每次请求时间，窗口内超过 limit 则拒绝
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (bool, error)
}

// MemoryStore 进程内实现，单实例部署使用
type MemoryStore struct {
	mu        sync.Mutex
	hits      map[string][]time.Time
	lastSweep time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{hits: make(map[string][]time.Time)}
}

func (s *MemoryStore) Allow(_ context.Context, key string, limit int, window time.Duration, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-window)
	if now.Sub(s.lastSweep) >= window {
		s.sweep(cutoff)
		s.lastSweep = now
	}

	log := trim(s.hits[key], cutoff)
	if len(log) >= limit {
		s.hits[key] = log
		return false, nil
	}
	s.hits[key] = append(log, now)
	return true, nil
}

// sweep 每个窗口最多一次，清掉整段记录都已过期的 key
func (s *MemoryStore) sweep(cutoff time.Time) {
	for key, log := range s.hits {
		if len(trim(log, cutoff)) == 0 {
			delete(s.hits, key)
		}
	}
}

func trim(log []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(log) && !log[i].After(cutoff) {
		i++
	}
	return log[i:]
}

// slidingWindowScript 清理窗口外记录、计数、写入，一次往返完成
const slidingWindowScript = `
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1] - ARGV[2])
if redis.call('ZCARD', KEYS[1]) >= tonumber(ARGV[3]) then
  return 0
end
redis.call('ZADD', KEYS[1], ARGV[1], ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return 1
`

var slidingWindow = radix.NewEvalScript(1, slidingWindowScript)

// RedisStore 基于 sorted set，多实例共享计数
type RedisStore struct {
	client radix.Client
	prefix string
}

func NewRedisStore(client radix.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Allow(_ context.Context, key string, limit int, window time.Duration, now time.Time) (bool, error) {
	var allowed int
	err := s.client.Do(slidingWindow.Cmd(&allowed,
		s.prefix+":"+key,
		strconv.FormatInt(now.UnixMilli(), 10),
		strconv.FormatInt(window.Milliseconds(), 10),
		strconv.Itoa(limit),
		uuid.NewString(),
	))
	if err != nil {
		return false, err
	}
	return allowed == 1, nil
}

// NewStore 按配置选择存储，redis 不可用时退回进程内
func NewStore(cfg *config.RateLimitConfig, client radix.Client) Store {
	if cfg.UseRedis && client != nil {
		return NewRedisStore(client, cfg.KeyPrefix)
	}
	return NewMemoryStore()
}

// RateLimiter 按 客户端 IP + 分组 限流
type RateLimiter struct {
	store   Store
	group   string
	limit   int
	window  time.Duration
	message string
	now     func() time.Time
}

func NewRateLimiter(store Store, group string, limit int, window time.Duration, message string) *RateLimiter {
	return &RateLimiter{store: store, group: group, limit: limit, window: window, message: message, now: time.Now}
}

// ReadLimit 读接口限流
func ReadLimit(store Store, cfg *config.RateLimitConfig) iris.Handler {
	return NewRateLimiter(store, GroupRead, cfg.ReadMax, cfg.Window,
		"Too many get requests, please try again later.").Handler()
}

// WriteLimit 写接口限流
func WriteLimit(store Store, cfg *config.RateLimitConfig) iris.Handler {
	return NewRateLimiter(store, GroupWrite, cfg.WriteMax, cfg.Window,
		"Too many post requests, please try again later.").Handler()
}

func (l *RateLimiter) Handler() iris.Handler {
	return func(ctx iris.Context) {
		key := l.group + ":" + ctx.RemoteAddr()
		ok, err := l.store.Allow(ctx.Request().Context(), key, l.limit, l.window, l.now())
		if err != nil {
			// 限流存储故障时放行
			zap.L().Warn("rate limit store failed", zap.String("group", l.group), zap.Error(err))
			ctx.Next()
			return
		}
		if !ok {
			metrics.RateLimited.WithLabelValues(l.group).Inc()
			ctx.StopWithJSON(iris.StatusTooManyRequests, iris.Map{"message": l.message})
			return
		}
		ctx.Next()
	}
}
