package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"TB_telegram_miniapp/internal/mining"
	"TB_telegram_miniapp/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type User struct {
	ID                  int64     `db:"id"`
	TelegramID          string    `db:"telegram_id"`
	Username            *string   `db:"username"`
	FirstName           string    `db:"first_name"`
	LastName            *string   `db:"last_name"`
	PhotoURL            *string   `db:"photo_url"`
	Level               int       `db:"level"`
	Points              int64     `db:"points"`
	MiningSpeed         int64     `db:"mining_speed"`
	LastMiningTime      time.Time `db:"last_mining_time"`
	ReferralCode        string    `db:"referral_code"`
	ReferredBy          *string   `db:"referred_by"`
	JoinDate            time.Time `db:"join_date"`
	CompletedTasksCount int       `db:"completed_tasks_count"`
	BoostUsageCount     int       `db:"boost_usage_count"`
}

var userColumns = []string{
	"id",
	"telegram_id",
	"username",
	"first_name",
	"last_name",
	"photo_url",
	"level",
	"points",
	"mining_speed",
	"last_mining_time",
	"referral_code",
	"referred_by",
	"join_date",
	"completed_tasks_count",
	"boost_usage_count",
}

func returningUser() string {
	return "RETURNING " + strings.Join(userColumns, ", ")
}

func (u *User) toModel() *model.User {
	return &model.User{
		ID:                  u.ID,
		TelegramID:          u.TelegramID,
		Username:            u.Username,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		PhotoURL:            u.PhotoURL,
		Level:               u.Level,
		Points:              u.Points,
		MiningSpeed:         u.MiningSpeed,
		LastMiningTime:      u.LastMiningTime,
		ReferralCode:        u.ReferralCode,
		ReferredBy:          u.ReferredBy,
		JoinDate:            u.JoinDate,
		CompletedTasksCount: u.CompletedTasksCount,
		BoostUsageCount:     u.BoostUsageCount,
	}
}

// CreateUser inserts a new user. A duplicate telegram id yields
// ErrAlreadyExists, a duplicate referral code ErrReferralCodeTaken.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query, args, err := squirrel.
		Insert("users").
		SetMap(map[string]interface{}{
			"telegram_id":           user.TelegramID,
			"username":              user.Username,
			"first_name":            user.FirstName,
			"last_name":             user.LastName,
			"photo_url":             user.PhotoURL,
			"level":                 user.Level,
			"points":                user.Points,
			"mining_speed":          user.MiningSpeed,
			"last_mining_time":      user.LastMiningTime,
			"referral_code":         user.ReferralCode,
			"referred_by":           user.ReferredBy,
			"join_date":             user.JoinDate,
			"completed_tasks_count": 0,
			"boost_usage_count":     0,
		}).
		Suffix(returningUser()).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user insert query: %w", err)
	}

	var created User
	err = r.db.GetContext(ctx, &created, query, args...)
	if err != nil {
		switch uniqueViolation(err) {
		case "users_telegram_id_key":
			return nil, ErrAlreadyExists
		case "users_referral_code_key":
			return nil, ErrReferralCodeTaken
		}
		return nil, fmt.Errorf("failed to insert user: %w", classify(err))
	}

	return created.toModel(), nil
}

func (r *Repository) getUser(ctx context.Context, q sqlx.QueryerContext, where squirrel.Sqlizer, forUpdate bool) (*model.User, error) {
	builder := squirrel.
		Select(userColumns...).
		From("users").
		Where(where).
		PlaceholderFormat(squirrel.Dollar)
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	var user User
	err = sqlx.GetContext(ctx, q, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, classify(err)
	}

	return user.toModel(), nil
}

func (r *Repository) GetUserByTelegramID(ctx context.Context, telegramID string) (*model.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.getUser(ctx, r.db, squirrel.Eq{"telegram_id": telegramID}, false)
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.getUser(ctx, r.db, squirrel.Eq{"id": id}, false)
}

// addPointsWithTx moves a balance by delta with an in-place expression so
// concurrent writers never overwrite each other.
func (r *Repository) addPointsWithTx(ctx context.Context, tx *sqlx.Tx, userID int64, delta int64) error {
	query, args, err := squirrel.
		Update("users").
		Set("points", squirrel.Expr("points + ?", delta)).
		Where(squirrel.Eq{"id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// ApplyAccrual credits mining earned since the user's baseline. The user row
// is locked and the active boosts are read once, so one call sees a single
// consistent boost set. The baseline moves by whole hours only.
func (r *Repository) ApplyAccrual(ctx context.Context, userID int64, now time.Time) (*model.User, model.Accrual, error) {
	var (
		user    *model.User
		accrual model.Accrual
	)

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		var err error
		user, err = r.getUser(ctx, tx, squirrel.Eq{"id": userID}, true)
		if err != nil {
			return err
		}

		boosts, err := r.listUserBoosts(ctx, tx, userID, &now)
		if err != nil {
			return err
		}

		var ok bool
		accrual, ok = mining.Calculate(user.LastMiningTime, user.MiningSpeed, now, boosts)
		if !ok {
			return nil
		}

		query, args, err := squirrel.
			Update("users").
			Set("points", squirrel.Expr("points + ?", accrual.EarnedPoints)).
			Set("last_mining_time", accrual.NextMiningTime).
			Where(squirrel.Eq{
				"id":               userID,
				"last_mining_time": user.LastMiningTime,
			}).
			Suffix(returningUser()).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		var updated User
		err = tx.GetContext(ctx, &updated, query, args...)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrConflict
			}
			return err
		}
		user = updated.toModel()

		return nil
	})
	if err != nil {
		return nil, model.Accrual{}, err
	}

	return user, accrual, nil
}

func (r *Repository) GetTopUsers(ctx context.Context, limit int) ([]*model.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query, args, err := squirrel.
		Select(userColumns...).
		From("users").
		OrderBy("points DESC", "id ASC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var users []User
	err = r.db.SelectContext(ctx, &users, query, args...)
	if err != nil {
		return nil, classify(err)
	}

	userList := make([]*model.User, len(users))
	for i := range users {
		userList[i] = users[i].toModel()
	}

	return userList, nil
}
