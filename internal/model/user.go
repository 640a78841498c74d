package model

import "time"

type User struct {
	ID                  int64
	TelegramID          string
	Username            *string
	FirstName           string
	LastName            *string
	PhotoURL            *string
	Level               int
	Points              int64
	MiningSpeed         int64
	LastMiningTime      time.Time
	ReferralCode        string
	ReferredBy          *string
	JoinDate            time.Time
	CompletedTasksCount int
	BoostUsageCount     int
}

// UserSummary is a user after accrual has been applied.
type UserSummary struct {
	User          *User
	ReferralCount int
	Accrual       Accrual
}

// Accrual describes one application of passive mining to a user balance.
type Accrual struct {
	ElapsedHours   int64
	EffectiveSpeed int64
	EarnedPoints   int64
	// NextMiningTime is the baseline after accrual: the previous baseline
	// advanced by ElapsedHours whole hours.
	NextMiningTime time.Time
}

func (a Accrual) Applied() bool {
	return a.ElapsedHours > 0
}
