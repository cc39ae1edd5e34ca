// Package ratelimit 基于 redis_rate（GCRA）的分布式限流
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

// Decision 单次限流判定结果
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter 按 key 做限流判定
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// RedisLimiter 把每秒配额与突发上限固化在实例里，所有 key 共用同一条规则
type RedisLimiter struct {
	inner *redis_rate.Limiter
	limit redis_rate.Limit
}

// NewRedisLimiter 创建限流器，burst 小于 qps 时取 qps
func NewRedisLimiter(rdb *redis.Client, qps, burst int) *RedisLimiter {
	if burst < qps {
		burst = qps
	}
	return &RedisLimiter{
		inner: redis_rate.NewLimiter(rdb),
		limit: redis_rate.Limit{Rate: qps, Period: time.Second, Burst: burst},
	}
}

// Burst 返回突发上限，用于响应头展示
func (l *RedisLimiter) Burst() int { return l.limit.Burst }

// Allow 判定 key 当前是否放行
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	res, err := l.inner.Allow(ctx, key, l.limit)
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit check: %w", err)
	}
	return Decision{
		Allowed:    res.Allowed > 0,
		Remaining:  res.Remaining,
		RetryAfter: res.RetryAfter,
	}, nil
}
