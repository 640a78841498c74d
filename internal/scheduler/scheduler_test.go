package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"TB_telegram_miniapp/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBoostExpirer struct {
	mock.Mock
}

func (m *mockBoostExpirer) ExpireBoosts(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockTaskResetter struct {
	mock.Mock
}

func (m *mockTaskResetter) ResetByType(ctx context.Context, taskType model.TaskType) (int64, error) {
	args := m.Called(ctx, taskType)
	return args.Get(0).(int64), args.Error(1)
}

func TestScheduler_RunWeeklyResetOnlyWeekly(t *testing.T) {
	boosts := &mockBoostExpirer{}
	tasks := &mockTaskResetter{}
	tasks.On("ResetByType", mock.Anything, model.TaskTypeWeekly).Return(int64(3), nil).Once()

	s := New(Config{}, boosts, tasks)
	s.RunWeeklyReset()

	tasks.AssertExpectations(t)
	boosts.AssertNotCalled(t, "ExpireBoosts", mock.Anything)
}

func TestScheduler_RunBoostExpiryHasDeadline(t *testing.T) {
	boosts := &mockBoostExpirer{}
	boosts.On("ExpireBoosts", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	})).Return(int64(0), errors.New("store down")).Once()

	s := New(Config{JobTimeout: time.Second}, boosts, &mockTaskResetter{})
	s.RunBoostExpiry()

	boosts.AssertExpectations(t)
}

type countingExpirer struct {
	calls atomic.Int32
}

func (c *countingExpirer) ExpireBoosts(ctx context.Context) (int64, error) {
	c.calls.Add(1)
	return 1, nil
}

func TestScheduler_StartRunsBoostExpiry(t *testing.T) {
	boosts := &countingExpirer{}
	s := New(Config{
		Enabled:             true,
		BoostExpiryInterval: 20 * time.Millisecond,
		WeeklyResetCron:     "0 0 * * 1",
	}, boosts, &mockTaskResetter{})

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return boosts.calls.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_StartRejectsBadCron(t *testing.T) {
	s := New(Config{WeeklyResetCron: "not a cron"}, &countingExpirer{}, &mockTaskResetter{})
	assert.Error(t, s.Start())
}
