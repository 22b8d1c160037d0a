package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"silsilah_go/internal/family"
)

// ViewState 一个浏览会话在某个 Bani 上的视图状态
type ViewState struct {
	BaniID      string             `json:"bani_id"`
	Fingerprint string             `json:"fingerprint"` // 成员列表指纹，变化后状态重置
	Expanded    family.ExpandState `json:"expanded"`
	Drill       family.DrillState  `json:"drill"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// ViewStateStore 视图状态存储
type ViewStateStore interface {
	Load(ctx context.Context, sessionID, baniID string) (*ViewState, bool, error)
	Save(ctx context.Context, sessionID string, state *ViewState) error
	Delete(ctx context.Context, sessionID, baniID string) error
	Close() error
}

func viewKey(sessionID, baniID string) string {
	return fmt.Sprintf("silsilah:view:%s:%s", baniID, sessionID)
}

// RedisViewStore 基于 Redis 的视图状态存储
type RedisViewStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisViewStore 创建 Redis 存储实例
func NewRedisViewStore(cfg RedisConfig) *RedisViewStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisViewStore{client: client, ttl: cfg.SessionTTL}
}

// Ping 检查连接
func (s *RedisViewStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Load 读取视图状态
func (s *RedisViewStore) Load(ctx context.Context, sessionID, baniID string) (*ViewState, bool, error) {
	data, err := s.client.Get(ctx, viewKey(sessionID, baniID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get view state: %w", err)
	}

	var state ViewState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, false, fmt.Errorf("failed to decode view state: %w", err)
	}
	return &state, true, nil
}

// Save 保存视图状态，每次保存刷新过期时间
func (s *RedisViewStore) Save(ctx context.Context, sessionID string, state *ViewState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal view state: %w", err)
	}
	return s.client.Set(ctx, viewKey(sessionID, state.BaniID), data, s.ttl).Err()
}

// Delete 删除视图状态
func (s *RedisViewStore) Delete(ctx context.Context, sessionID, baniID string) error {
	return s.client.Del(ctx, viewKey(sessionID, baniID)).Err()
}

// Close 关闭连接
func (s *RedisViewStore) Close() error {
	return s.client.Close()
}

type memoryItem struct {
	data     []byte
	expireAt time.Time
}

// MemoryViewStore 进程内视图状态存储，单实例部署和测试使用
type MemoryViewStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]memoryItem
	now   func() time.Time
}

// NewMemoryViewStore 创建内存存储实例
func NewMemoryViewStore(ttl time.Duration) *MemoryViewStore {
	return &MemoryViewStore{
		ttl:   ttl,
		items: make(map[string]memoryItem),
		now:   time.Now,
	}
}

// Load 读取视图状态
func (s *MemoryViewStore) Load(ctx context.Context, sessionID, baniID string) (*ViewState, bool, error) {
	key := viewKey(sessionID, baniID)

	s.mu.RLock()
	item, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	// 检查过期
	if !item.expireAt.IsZero() && s.now().After(item.expireAt) {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return nil, false, nil
	}

	// 每次返回新的副本
	var state ViewState
	if err := json.Unmarshal(item.data, &state); err != nil {
		return nil, false, fmt.Errorf("failed to decode view state: %w", err)
	}
	return &state, true, nil
}

// Save 保存视图状态
func (s *MemoryViewStore) Save(ctx context.Context, sessionID string, state *ViewState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal view state: %w", err)
	}

	item := memoryItem{data: data}
	if s.ttl > 0 {
		item.expireAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	s.items[viewKey(sessionID, state.BaniID)] = item
	s.mu.Unlock()
	return nil
}

// Delete 删除视图状态
func (s *MemoryViewStore) Delete(ctx context.Context, sessionID, baniID string) error {
	s.mu.Lock()
	delete(s.items, viewKey(sessionID, baniID))
	s.mu.Unlock()
	return nil
}

// Close 清空存储
func (s *MemoryViewStore) Close() error {
	s.mu.Lock()
	s.items = make(map[string]memoryItem)
	s.mu.Unlock()
	return nil
}
