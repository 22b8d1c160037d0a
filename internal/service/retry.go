package service

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// RetryStrategy 重试策略
type RetryStrategy string

const (
	RetryStrategyFixed       RetryStrategy = "fixed"       // 固定间隔
	RetryStrategyExponential RetryStrategy = "exponential" // 指数退避
	RetryStrategyLinear      RetryStrategy = "linear"      // 线性退避
)

// RetryConfig 重试配置
type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts" validate:"gte=1"` // 最大尝试次数
	InitialInterval time.Duration `mapstructure:"initial_interval"`              // 初始间隔
	MaxInterval     time.Duration `mapstructure:"max_interval"`                  // 最大间隔
	Multiplier      float64       `mapstructure:"multiplier"`                    // 间隔乘数
	Strategy        RetryStrategy `mapstructure:"strategy" validate:"oneof=fixed exponential linear"`
	EnableJitter    bool          `mapstructure:"enable_jitter"` // 启用抖动
}

// Retry 重试器
type Retry struct {
	config RetryConfig
	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRetry 创建重试器实例
func NewRetry(config RetryConfig, logger *zap.Logger) *Retry {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	return &Retry{
		config: config,
		logger: logger,
		sleep:  sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do 执行 fn，失败时按策略重试，直到成功、次数用尽或 ctx 结束
func (r *Retry) Do(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: retry aborted: %w", name, err)
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == r.config.MaxAttempts {
			break
		}

		interval := r.interval(attempt)
		r.logger.Warn("retrying",
			zap.String("operation", name),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", interval),
			zap.Error(lastErr))
		if err := r.sleep(ctx, interval); err != nil {
			return fmt.Errorf("%s: retry aborted: %w", name, err)
		}
	}

	r.logger.Error("all retry attempts failed",
		zap.String("operation", name),
		zap.Int("attempts", r.config.MaxAttempts),
		zap.Error(lastErr))
	return fmt.Errorf("%s: %w", name, lastErr)
}

// interval 计算第 attempt 次失败后的等待时间
func (r *Retry) interval(attempt int) time.Duration {
	var d float64
	switch r.config.Strategy {
	case RetryStrategyExponential:
		mult := r.config.Multiplier
		if mult <= 0 {
			mult = 2
		}
		d = float64(r.config.InitialInterval) * math.Pow(mult, float64(attempt-1))
	case RetryStrategyLinear:
		d = float64(r.config.InitialInterval) * float64(attempt)
	default:
		d = float64(r.config.InitialInterval)
	}
	if r.config.MaxInterval > 0 {
		d = math.Min(d, float64(r.config.MaxInterval))
	}
	if r.config.EnableJitter {
		d += d * 0.2 * (2*rand.Float64() - 1)
	}
	return time.Duration(d)
}
