package auth

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"time"

	radix "github.com/mediocregopher/radix/v3"
)

const tokenCacheKey = "auth:jwt:"

// TokenCache 缓存 JWT 解析结果，redis 为 nil 时所有操作为空操作
type TokenCache struct {
	redis radix.Client
}

// NewTokenCache 构建缓存器
func NewTokenCache(redis radix.Client) *TokenCache {
	return &TokenCache{redis: redis}
}

func (c *TokenCache) cacheKey(token string) string {
	sum := sha1.Sum([]byte(token))
	return tokenCacheKey + hex.EncodeToString(sum[:])
}

// Get 尝试命中缓存的 claims
func (c *TokenCache) Get(ctx context.Context, token string) (*Claims, bool, error) {
	if c == nil || c.redis == nil {
		return nil, false, nil
	}
	key := c.cacheKey(token)
	var raw string
	if err := c.redis.Do(radix.Cmd(&raw, "GET", key)); err != nil {
		return nil, false, err
	}
	if raw == "" {
		return nil, false, nil
	}
	var claims Claims
	if err := json.Unmarshal([]byte(raw), &claims); err != nil {
		// 数据损坏，清理后走正常解析
		_ = c.redis.Do(radix.Cmd(nil, "DEL", key))
		return nil, false, nil
	}
	// 缓存条目与令牌同时过期，这里再兜底检查一次
	if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
		return nil, false, nil
	}
	return &claims, true, nil
}

// Set 缓存解析结果，TTL 为令牌剩余有效期
func (c *TokenCache) Set(ctx context.Context, token string, claims *Claims) error {
	if c == nil || c.redis == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < time.Second {
		return nil
	}
	body, err := json.Marshal(claims)
	if err != nil {
		return err
	}
	return c.redis.Do(radix.FlatCmd(nil, "SETEX", c.cacheKey(token), int64(ttl/time.Second), body))
}
