package model

import "time"

// MultiplierScale is the multiplier value meaning x1.00.
const MultiplierScale = 100

type BoostType struct {
	ID            int64
	Name          string
	Description   string
	Multiplier    int64
	DurationHours int64
	Price         int64
	IsActive      bool
	IconName      string
	ColorClass    string
	IsPopular     bool
}

func (b *BoostType) Duration() time.Duration {
	return time.Duration(b.DurationHours) * time.Hour
}

type UserBoost struct {
	ID          int64
	UserID      int64
	BoostTypeID int64
	StartTime   time.Time
	EndTime     time.Time
	IsActive    bool
	BoostType   *BoostType
}

// ActiveAt reports whether the boost counts toward mining speed at t.
func (b *UserBoost) ActiveAt(t time.Time) bool {
	return b.IsActive && b.EndTime.After(t)
}

type BoostPurchase struct {
	UserBoost *UserBoost
	User      *User
}

type CreateBoostTypeRequest struct {
	Name          string
	Description   string
	Multiplier    int64
	DurationHours int64
	Price         int64
	IsActive      *bool
	IconName      string
	ColorClass    string
	IsPopular     bool
}

type UpdateBoostTypeRequest struct {
	Name          *string
	Description   *string
	Multiplier    *int64
	DurationHours *int64
	Price         *int64
	IsActive      *bool
	IconName      *string
	ColorClass    *string
	IsPopular     *bool
}

func (r *UpdateBoostTypeRequest) Empty() bool {
	return r.Name == nil && r.Description == nil && r.Multiplier == nil && r.DurationHours == nil &&
		r.Price == nil && r.IsActive == nil && r.IconName == nil && r.ColorClass == nil && r.IsPopular == nil
}
