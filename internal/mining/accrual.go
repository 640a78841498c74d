// Package mining computes passive point accrual.
//
// Everything here is pure: callers load the user and the boosts active at a
// single instant, call Calculate, and persist the result themselves.
package mining

import (
	"sort"
	"time"

	"TB_telegram_miniapp/internal/model"
)

// SortBoosts puts boosts in the order multipliers are applied: purchase time
// ascending, then id ascending. Integer flooring after every step makes the
// order observable, so it must not depend on how the store returns rows.
func SortBoosts(boosts []*model.UserBoost) {
	sort.SliceStable(boosts, func(i, j int) bool {
		if !boosts[i].StartTime.Equal(boosts[j].StartTime) {
			return boosts[i].StartTime.Before(boosts[j].StartTime)
		}
		return boosts[i].ID < boosts[j].ID
	})
}

// EffectiveSpeed applies each multiplier in turn, flooring after every step.
func EffectiveSpeed(base int64, multipliers []int64) int64 {
	speed := base
	for _, m := range multipliers {
		speed = speed * m / model.MultiplierScale
	}
	if speed < 0 {
		return 0
	}
	return speed
}

// ElapsedHours is the number of whole hours between last and now, zero when
// now is not after last.
func ElapsedHours(last, now time.Time) int64 {
	if !now.After(last) {
		return 0
	}
	return int64(now.Sub(last) / time.Hour)
}

// Calculate returns the accrual for a user whose baseline is last and whose
// base speed is speed. Boosts that are not active at now are ignored; the
// rest are applied in SortBoosts order. The second result is false when no
// whole hour has elapsed, in which case the baseline must stay where it is.
func Calculate(last time.Time, speed int64, now time.Time, boosts []*model.UserBoost) (model.Accrual, bool) {
	hours := ElapsedHours(last, now)

	active := make([]*model.UserBoost, 0, len(boosts))
	for _, b := range boosts {
		if b.BoostType != nil && b.ActiveAt(now) {
			active = append(active, b)
		}
	}
	SortBoosts(active)

	multipliers := make([]int64, len(active))
	for i, b := range active {
		multipliers[i] = b.BoostType.Multiplier
	}
	effective := EffectiveSpeed(speed, multipliers)

	if hours <= 0 {
		return model.Accrual{EffectiveSpeed: effective, NextMiningTime: last}, false
	}

	return model.Accrual{
		ElapsedHours:   hours,
		EffectiveSpeed: effective,
		EarnedPoints:   hours * effective,
		NextMiningTime: last.Add(time.Duration(hours) * time.Hour),
	}, true
}
