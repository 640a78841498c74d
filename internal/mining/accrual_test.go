package mining

import (
	"testing"
	"time"

	"TB_telegram_miniapp/internal/model"

	"github.com/stretchr/testify/assert"
)

func boost(id int64, start time.Time, multiplier int64, end time.Time) *model.UserBoost {
	return &model.UserBoost{
		ID:        id,
		StartTime: start,
		EndTime:   end,
		IsActive:  true,
		BoostType: &model.BoostType{ID: id, Multiplier: multiplier},
	}
}

func TestEffectiveSpeed(t *testing.T) {
	tests := []struct {
		name        string
		base        int64
		multipliers []int64
		expected    int64
	}{
		{name: "No boosts", base: 10, multipliers: nil, expected: 10},
		{name: "Single x1.5", base: 10, multipliers: []int64{150}, expected: 15},
		{name: "Two x1.5 floor each step", base: 10, multipliers: []int64{150, 150}, expected: 22},
		{name: "Order matters 150 then 110", base: 7, multipliers: []int64{150, 110}, expected: 11},
		{name: "Order matters 110 then 150", base: 7, multipliers: []int64{110, 150}, expected: 10},
		{name: "Zero speed", base: 0, multipliers: []int64{200}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EffectiveSpeed(tt.base, tt.multipliers))
		})
	}
}

func TestCalculate(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	farFuture := now.Add(24 * time.Hour)

	t.Run("Whole hours only", func(t *testing.T) {
		last := now.Add(-(3*time.Hour + 40*time.Minute))

		accrual, ok := Calculate(last, 10, now, nil)

		assert.True(t, ok)
		assert.Equal(t, int64(3), accrual.ElapsedHours)
		assert.Equal(t, int64(10), accrual.EffectiveSpeed)
		assert.Equal(t, int64(30), accrual.EarnedPoints)
		assert.Equal(t, last.Add(3*time.Hour), accrual.NextMiningTime)
		assert.Equal(t, 40*time.Minute, now.Sub(accrual.NextMiningTime))
	})

	t.Run("Fraction carries into next call", func(t *testing.T) {
		last := now.Add(-(3*time.Hour + 40*time.Minute))
		first, ok := Calculate(last, 10, now, nil)
		assert.True(t, ok)

		_, ok = Calculate(first.NextMiningTime, 10, now.Add(10*time.Minute), nil)
		assert.False(t, ok)

		second, ok := Calculate(first.NextMiningTime, 10, now.Add(20*time.Minute), nil)
		assert.True(t, ok)
		assert.Equal(t, int64(1), second.ElapsedHours)
		assert.Equal(t, int64(10), second.EarnedPoints)
		assert.Equal(t, now.Add(20*time.Minute), second.NextMiningTime)
	})

	t.Run("Less than an hour is a no-op", func(t *testing.T) {
		last := now.Add(-59 * time.Minute)

		accrual, ok := Calculate(last, 10, now, nil)

		assert.False(t, ok)
		assert.Equal(t, int64(0), accrual.EarnedPoints)
		assert.Equal(t, last, accrual.NextMiningTime)
	})

	t.Run("Baseline in the future is a no-op", func(t *testing.T) {
		accrual, ok := Calculate(now.Add(time.Hour), 10, now, nil)

		assert.False(t, ok)
		assert.Equal(t, int64(0), accrual.ElapsedHours)
	})

	t.Run("Boosts applied in purchase order regardless of input order", func(t *testing.T) {
		last := now.Add(-2 * time.Hour)
		early := boost(2, now.Add(-3*time.Hour), 150, farFuture)
		late := boost(1, now.Add(-1*time.Hour), 110, farFuture)

		a, ok := Calculate(last, 7, now, []*model.UserBoost{late, early})
		assert.True(t, ok)
		b, _ := Calculate(last, 7, now, []*model.UserBoost{early, late})

		assert.Equal(t, int64(11), a.EffectiveSpeed)
		assert.Equal(t, a, b)
		assert.Equal(t, int64(22), a.EarnedPoints)
	})

	t.Run("Same start time falls back to id", func(t *testing.T) {
		start := now.Add(-time.Hour)
		first := boost(1, start, 110, farFuture)
		second := boost(2, start, 150, farFuture)

		accrual, _ := Calculate(now.Add(-time.Hour), 7, now, []*model.UserBoost{second, first})

		assert.Equal(t, int64(10), accrual.EffectiveSpeed)
	})

	t.Run("Expired and inactive boosts ignored", func(t *testing.T) {
		expired := boost(1, now.Add(-5*time.Hour), 200, now.Add(-time.Minute))
		inactive := boost(2, now.Add(-5*time.Hour), 200, farFuture)
		inactive.IsActive = false
		endsNow := boost(3, now.Add(-5*time.Hour), 200, now)

		accrual, ok := Calculate(now.Add(-time.Hour), 10, now, []*model.UserBoost{expired, inactive, endsNow})

		assert.True(t, ok)
		assert.Equal(t, int64(10), accrual.EffectiveSpeed)
	})

	t.Run("Two x1.5 boosts on speed 10", func(t *testing.T) {
		boosts := []*model.UserBoost{
			boost(1, now.Add(-2*time.Hour), 150, farFuture),
			boost(2, now.Add(-time.Hour), 150, farFuture),
		}

		accrual, ok := Calculate(now.Add(-time.Hour), 10, now, boosts)

		assert.True(t, ok)
		assert.Equal(t, int64(22), accrual.EffectiveSpeed)
		assert.Equal(t, int64(22), accrual.EarnedPoints)
	})
}

func TestSortBoosts(t *testing.T) {
	now := time.Now()
	boosts := []*model.UserBoost{
		{ID: 3, StartTime: now},
		{ID: 1, StartTime: now.Add(time.Minute)},
		{ID: 2, StartTime: now},
	}

	SortBoosts(boosts)

	assert.Equal(t, []int64{2, 3, 1}, []int64{boosts[0].ID, boosts[1].ID, boosts[2].ID})
}
