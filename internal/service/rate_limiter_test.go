package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_PerClientBurst(t *testing.T) {
	l := NewRateLimiter(RateLimitConfig{Enabled: true, Rate: 1, Burst: 2})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))

	// 其他客户端有自己的桶
	assert.True(t, l.Allow("10.0.0.2"))

	now = now.Add(time.Second)
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
}

func TestRateLimiter_Disabled(t *testing.T) {
	l := NewRateLimiter(RateLimitConfig{Enabled: false, Rate: 0, Burst: 0})
	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("x"))
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	l := NewRateLimiter(RateLimitConfig{Enabled: true, Rate: 1, Burst: 1, IdleTTL: time.Minute})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("a")
	assert.False(t, l.Allow("a"))

	l.Allow("b")
	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, l.Cleanup())
	assert.Equal(t, 0, l.Cleanup())

	// 清理后重新分配一个满的桶
	assert.True(t, l.Allow("a"))
}
