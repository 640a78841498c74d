package model

import "time"

type Referral struct {
	ID         int64
	ReferrerID int64
	ReferredID int64
	Points     int64
	CreatedAt  time.Time
	Referred   *User
}
