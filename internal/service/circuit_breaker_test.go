package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCircuitBreaker_TripsAndRecovers(t *testing.T) {
	b := NewCircuitBreaker("redis", CircuitConfig{FailureThreshold: 2, ResetTimeout: time.Second}, zap.NewNop())
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	fail := errors.New("down")
	calls := 0
	failing := func() error { calls++; return fail }

	assert.ErrorIs(t, b.Execute(failing), fail)
	assert.Equal(t, CircuitStateClosed, b.State())
	assert.ErrorIs(t, b.Execute(failing), fail)
	assert.Equal(t, CircuitStateOpen, b.State())

	assert.ErrorIs(t, b.Execute(failing), ErrCircuitOpen)
	assert.Equal(t, 2, calls)

	// 半开探测失败，重新熔断
	now = now.Add(time.Second)
	assert.ErrorIs(t, b.Execute(failing), fail)
	assert.Equal(t, CircuitStateOpen, b.State())
	assert.Equal(t, 3, calls)

	now = now.Add(time.Second)
	require.NoError(t, b.Execute(func() error { return nil }))
	assert.Equal(t, CircuitStateClosed, b.State())
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	b := NewCircuitBreaker("redis", CircuitConfig{FailureThreshold: 2, ResetTimeout: time.Second}, zap.NewNop())
	fail := errors.New("down")

	b.Execute(func() error { return fail })
	b.Execute(func() error { return nil })
	b.Execute(func() error { return fail })
	assert.Equal(t, CircuitStateClosed, b.State())
}

type brokenStore struct {
	calls int
}

func (s *brokenStore) Load(ctx context.Context, sessionID, baniID string) (*ViewState, bool, error) {
	s.calls++
	return nil, false, errors.New("connection refused")
}

func (s *brokenStore) Save(ctx context.Context, sessionID string, state *ViewState) error {
	s.calls++
	return errors.New("connection refused")
}

func (s *brokenStore) Delete(ctx context.Context, sessionID, baniID string) error {
	s.calls++
	return errors.New("connection refused")
}

func (s *brokenStore) Close() error { return nil }

func TestBreakerViewStore_FailsFast(t *testing.T) {
	inner := &brokenStore{}
	store := NewBreakerViewStore(inner, NewCircuitBreaker("redis", CircuitConfig{FailureThreshold: 1, ResetTimeout: time.Hour}, zap.NewNop()))
	ctx := context.Background()

	_, _, err := store.Load(ctx, "s1", "b1")
	require.Error(t, err)
	assert.ErrorIs(t, store.Save(ctx, "s1", &ViewState{BaniID: "b1"}), ErrCircuitOpen)
	assert.ErrorIs(t, store.Delete(ctx, "s1", "b1"), ErrCircuitOpen)
	assert.Equal(t, 1, inner.calls)
}

func TestTreeService_SurvivesBrokenStore(t *testing.T) {
	svc, _, _ := newTestService(t, familyFixture())
	svc.store = NewBreakerViewStore(&brokenStore{}, NewCircuitBreaker("redis", CircuitConfig{FailureThreshold: 1, ResetTimeout: time.Hour}, zap.NewNop()))

	res, err := svc.Drill(context.Background(), "bani-1", "s1", member(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.State.Generation)
}
