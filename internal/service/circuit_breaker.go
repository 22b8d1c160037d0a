package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CircuitState 熔断器状态
type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"    // 闭合状态（正常）
	CircuitStateOpen     CircuitState = "open"      // 断开状态（熔断）
	CircuitStateHalfOpen CircuitState = "half_open" // 半开状态（恢复中）
)

// ErrCircuitOpen 熔断期间拒绝请求
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitConfig 熔断器配置
type CircuitConfig struct {
	FailureThreshold int           `mapstructure:"failure_threshold" validate:"gte=0"` // 连续失败多少次后熔断，0 表示不熔断
	ResetTimeout     time.Duration `mapstructure:"reset_timeout"`                      // 熔断多久后进入半开
}

// CircuitBreaker 熔断器
type CircuitBreaker struct {
	name     string
	config   CircuitConfig
	logger   *zap.Logger
	mu       sync.Mutex
	state    CircuitState
	failures int
	openedAt time.Time
	probing  bool
	now      func() time.Time
}

// NewCircuitBreaker 创建熔断器实例
func NewCircuitBreaker(name string, config CircuitConfig, logger *zap.Logger) *CircuitBreaker {
	return &CircuitBreaker{
		name:   name,
		config: config,
		logger: logger,
		state:  CircuitStateClosed,
		now:    time.Now,
	}
}

// Execute 执行请求，熔断期间直接返回 ErrCircuitOpen
func (b *CircuitBreaker) Execute(fn func() error) error {
	if !b.allow() {
		return ErrCircuitOpen
	}
	err := fn()
	b.record(err)
	return err
}

// allow 检查是否允许请求，半开状态只放行一个探测请求
func (b *CircuitBreaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateOpen:
		if b.now().Sub(b.openedAt) < b.config.ResetTimeout {
			return false
		}
		b.state = CircuitStateHalfOpen
		b.logger.Info("circuit breaker half-open", zap.String("breaker", b.name))
		fallthrough
	case CircuitStateHalfOpen:
		if b.probing {
			return false
		}
		b.probing = true
	}
	return true
}

func (b *CircuitBreaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.probing = false
	if err == nil {
		if b.state != CircuitStateClosed {
			b.logger.Info("circuit breaker closed", zap.String("breaker", b.name))
		}
		b.state = CircuitStateClosed
		b.failures = 0
		return
	}

	b.failures++
	if b.state == CircuitStateHalfOpen ||
		(b.config.FailureThreshold > 0 && b.failures >= b.config.FailureThreshold) {
		if b.state != CircuitStateOpen {
			b.logger.Warn("circuit breaker tripped",
				zap.String("breaker", b.name),
				zap.Int("failures", b.failures),
				zap.Error(err))
		}
		b.state = CircuitStateOpen
		b.openedAt = b.now()
	}
}

// State 当前状态
func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// BreakerViewStore 给视图状态存储加上熔断，存储不可用时快速失败
type BreakerViewStore struct {
	store   ViewStateStore
	breaker *CircuitBreaker
}

// NewBreakerViewStore 包装存储
func NewBreakerViewStore(store ViewStateStore, breaker *CircuitBreaker) *BreakerViewStore {
	return &BreakerViewStore{store: store, breaker: breaker}
}

// Load 读取视图状态
func (s *BreakerViewStore) Load(ctx context.Context, sessionID, baniID string) (*ViewState, bool, error) {
	var (
		state *ViewState
		ok    bool
	)
	err := s.breaker.Execute(func() error {
		var err error
		state, ok, err = s.store.Load(ctx, sessionID, baniID)
		return err
	})
	return state, ok, err
}

// Save 保存视图状态
func (s *BreakerViewStore) Save(ctx context.Context, sessionID string, state *ViewState) error {
	return s.breaker.Execute(func() error {
		return s.store.Save(ctx, sessionID, state)
	})
}

// Delete 删除视图状态
func (s *BreakerViewStore) Delete(ctx context.Context, sessionID, baniID string) error {
	return s.breaker.Execute(func() error {
		return s.store.Delete(ctx, sessionID, baniID)
	})
}

// Close 关闭底层存储
func (s *BreakerViewStore) Close() error {
	return s.store.Close()
}
