package redis

import (
	"sync"

	radix "github.com/mediocregopher/radix/v3"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/config"
)

var (
	client radix.Client
	once   sync.Once
)

// Init 初始化 Redis 连接池，未配置地址时返回 nil（令牌缓存与分布式限流随之关闭）
func Init(cfg *config.RedisConfig) radix.Client {
	once.Do(func() {
		if cfg.Addr == "" {
			zap.L().Info("redis disabled")
			return
		}
		size := cfg.PoolSize
		if size <= 0 {
			size = 10
		}
		pool, err := radix.NewPool("tcp", cfg.Addr, size)
		if err != nil {
			zap.L().Fatal("failed to connect redis", zap.String("addr", cfg.Addr), zap.Error(err))
		}
		client = pool
	})
	return client
}

// Client 获取 Redis 客户端
func Client() radix.Client {
	return client
}
