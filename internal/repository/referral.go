package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"TB_telegram_miniapp/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type Referral struct {
	ID         int64     `db:"id"`
	ReferrerID int64     `db:"referrer_id"`
	ReferredID int64     `db:"referred_id"`
	Points     int64     `db:"points"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r *Referral) toModel() *model.Referral {
	return &model.Referral{
		ID:         r.ID,
		ReferrerID: r.ReferrerID,
		ReferredID: r.ReferredID,
		Points:     r.Points,
		CreatedAt:  r.CreatedAt,
	}
}

// RecordReferral links referredID to the owner of code and credits the
// owner bonus points. The second result is false when nothing was recorded:
// the code is unknown, belongs to referredID itself, or the pair already
// exists. The pair's unique constraint decides duplicates, so two racing
// calls credit the bonus once.
func (r *Repository) RecordReferral(ctx context.Context, code string, referredID int64, bonus int64, now time.Time) (*model.Referral, bool, error) {
	var (
		referral *model.Referral
		recorded bool
	)

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		referrer, err := r.getUser(ctx, tx, squirrel.Eq{"referral_code": code}, false)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			return err
		}
		if referrer.ID == referredID {
			return nil
		}

		query, args, err := squirrel.
			Insert("referrals").
			SetMap(map[string]interface{}{
				"referrer_id": referrer.ID,
				"referred_id": referredID,
				"points":      bonus,
				"created_at":  now,
			}).
			Suffix("ON CONFLICT ON CONSTRAINT referrals_pair_key DO NOTHING RETURNING id, referrer_id, referred_id, points, created_at").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build referral insert query: %w", err)
		}

		var inserted Referral
		err = tx.GetContext(ctx, &inserted, query, args...)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("failed to insert referral: %w", err)
		}

		if err := r.addPointsWithTx(ctx, tx, referrer.ID, bonus); err != nil {
			return fmt.Errorf("failed to credit referral bonus: %w", err)
		}

		markQuery, markArgs, err := squirrel.
			Update("users").
			Set("referred_by", code).
			Where(squirrel.Eq{
				"id":          referredID,
				"referred_by": nil,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, markQuery, markArgs...); err != nil {
			return fmt.Errorf("failed to mark referred user: %w", err)
		}

		referral = inserted.toModel()
		recorded = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return referral, recorded, nil
}

func (r *Repository) CountReferrals(ctx context.Context, userID int64) (int, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query, args, err := squirrel.
		Select("COUNT(*)").
		From("referrals").
		Where(squirrel.Eq{"referrer_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count referrals: %w", classify(err))
	}

	return count, nil
}

type referralWithUser struct {
	Referral
	TelegramID     string    `db:"u_telegram_id"`
	Username       *string   `db:"u_username"`
	FirstName      string    `db:"u_first_name"`
	LastName       *string   `db:"u_last_name"`
	PhotoURL       *string   `db:"u_photo_url"`
	Level          int       `db:"u_level"`
	UserPoints     int64     `db:"u_points"`
	MiningSpeed    int64     `db:"u_mining_speed"`
	LastMiningTime time.Time `db:"u_last_mining_time"`
	ReferralCode   string    `db:"u_referral_code"`
	JoinDate       time.Time `db:"u_join_date"`
}

// ListReferrals returns the users referred by userID, newest first.
func (r *Repository) ListReferrals(ctx context.Context, userID int64) ([]*model.Referral, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query, args, err := squirrel.
		Select(
			"r.id",
			"r.referrer_id",
			"r.referred_id",
			"r.points",
			"r.created_at",
			"u.telegram_id AS u_telegram_id",
			"u.username AS u_username",
			"u.first_name AS u_first_name",
			"u.last_name AS u_last_name",
			"u.photo_url AS u_photo_url",
			"u.level AS u_level",
			"u.points AS u_points",
			"u.mining_speed AS u_mining_speed",
			"u.last_mining_time AS u_last_mining_time",
			"u.referral_code AS u_referral_code",
			"u.join_date AS u_join_date",
		).
		From("referrals r").
		Join("users u ON u.id = r.referred_id").
		Where(squirrel.Eq{"r.referrer_id": userID}).
		OrderBy("r.created_at DESC", "r.id DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build referrals query: %w", err)
	}

	var rows []referralWithUser
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", classify(err))
	}

	out := make([]*model.Referral, len(rows))
	for i := range rows {
		row := rows[i]
		referral := row.Referral.toModel()
		referral.Referred = &model.User{
			ID:             row.ReferredID,
			TelegramID:     row.TelegramID,
			Username:       row.Username,
			FirstName:      row.FirstName,
			LastName:       row.LastName,
			PhotoURL:       row.PhotoURL,
			Level:          row.Level,
			Points:         row.UserPoints,
			MiningSpeed:    row.MiningSpeed,
			LastMiningTime: row.LastMiningTime,
			ReferralCode:   row.ReferralCode,
			JoinDate:       row.JoinDate,
		}
		out[i] = referral
	}

	return out, nil
}
