package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"TB_telegram_miniapp/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type BoostType struct {
	ID            int64  `db:"id"`
	Name          string `db:"name"`
	Description   string `db:"description"`
	Multiplier    int64  `db:"multiplier"`
	DurationHours int64  `db:"duration_hours"`
	Price         int64  `db:"price"`
	IsActive      bool   `db:"is_active"`
	IconName      string `db:"icon_name"`
	ColorClass    string `db:"color_class"`
	IsPopular     bool   `db:"is_popular"`
}

var boostTypeColumns = []string{
	"id",
	"name",
	"description",
	"multiplier",
	"duration_hours",
	"price",
	"is_active",
	"icon_name",
	"color_class",
	"is_popular",
}

func (b *BoostType) toModel() *model.BoostType {
	return &model.BoostType{
		ID:            b.ID,
		Name:          b.Name,
		Description:   b.Description,
		Multiplier:    b.Multiplier,
		DurationHours: b.DurationHours,
		Price:         b.Price,
		IsActive:      b.IsActive,
		IconName:      b.IconName,
		ColorClass:    b.ColorClass,
		IsPopular:     b.IsPopular,
	}
}

type userBoostWithType struct {
	ID            int64     `db:"id"`
	UserID        int64     `db:"user_id"`
	BoostTypeID   int64     `db:"boost_type_id"`
	StartTime     time.Time `db:"start_time"`
	EndTime       time.Time `db:"end_time"`
	IsActive      bool      `db:"is_active"`
	Name          string    `db:"bt_name"`
	Description   string    `db:"bt_description"`
	Multiplier    int64     `db:"bt_multiplier"`
	DurationHours int64     `db:"bt_duration_hours"`
	Price         int64     `db:"bt_price"`
	TypeActive    bool      `db:"bt_is_active"`
	IconName      string    `db:"bt_icon_name"`
	ColorClass    string    `db:"bt_color_class"`
	IsPopular     bool      `db:"bt_is_popular"`
}

func (b *userBoostWithType) toModel() *model.UserBoost {
	return &model.UserBoost{
		ID:          b.ID,
		UserID:      b.UserID,
		BoostTypeID: b.BoostTypeID,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		IsActive:    b.IsActive,
		BoostType: &model.BoostType{
			ID:            b.BoostTypeID,
			Name:          b.Name,
			Description:   b.Description,
			Multiplier:    b.Multiplier,
			DurationHours: b.DurationHours,
			Price:         b.Price,
			IsActive:      b.TypeActive,
			IconName:      b.IconName,
			ColorClass:    b.ColorClass,
			IsPopular:     b.IsPopular,
		},
	}
}

func (r *Repository) ListBoostTypes(ctx context.Context, activeOnly bool) ([]*model.BoostType, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	builder := squirrel.
		Select(boostTypeColumns...).
		From("boost_types").
		OrderBy("price ASC", "id ASC").
		PlaceholderFormat(squirrel.Dollar)
	if activeOnly {
		builder = builder.Where(squirrel.Eq{"is_active": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var boostTypes []BoostType
	err = r.db.SelectContext(ctx, &boostTypes, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list boost types: %w", classify(err))
	}

	out := make([]*model.BoostType, len(boostTypes))
	for i := range boostTypes {
		out[i] = boostTypes[i].toModel()
	}

	return out, nil
}

func (r *Repository) getBoostType(ctx context.Context, q sqlx.QueryerContext, id int64) (*model.BoostType, error) {
	query, args, err := squirrel.
		Select(boostTypeColumns...).
		From("boost_types").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var boostType BoostType
	err = sqlx.GetContext(ctx, q, &boostType, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, classify(err)
	}

	return boostType.toModel(), nil
}

func (r *Repository) CreateBoostType(ctx context.Context, req *model.CreateBoostTypeRequest) (*model.BoostType, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	query, args, err := squirrel.
		Insert("boost_types").
		SetMap(map[string]interface{}{
			"name":           req.Name,
			"description":    req.Description,
			"multiplier":     req.Multiplier,
			"duration_hours": req.DurationHours,
			"price":          req.Price,
			"is_active":      isActive,
			"icon_name":      req.IconName,
			"color_class":    req.ColorClass,
			"is_popular":     req.IsPopular,
		}).
		Suffix("RETURNING " + strings.Join(boostTypeColumns, ", ")).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build boost type insert query: %w", err)
	}

	var created BoostType
	if err := r.db.GetContext(ctx, &created, query, args...); err != nil {
		return nil, fmt.Errorf("failed to insert boost type: %w", classify(err))
	}

	return created.toModel(), nil
}

func (r *Repository) UpdateBoostType(ctx context.Context, id int64, req *model.UpdateBoostTypeRequest) (*model.BoostType, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	set := map[string]interface{}{}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Multiplier != nil {
		set["multiplier"] = *req.Multiplier
	}
	if req.DurationHours != nil {
		set["duration_hours"] = *req.DurationHours
	}
	if req.Price != nil {
		set["price"] = *req.Price
	}
	if req.IsActive != nil {
		set["is_active"] = *req.IsActive
	}
	if req.IconName != nil {
		set["icon_name"] = *req.IconName
	}
	if req.ColorClass != nil {
		set["color_class"] = *req.ColorClass
	}
	if req.IsPopular != nil {
		set["is_popular"] = *req.IsPopular
	}
	if len(set) == 0 {
		return r.getBoostType(ctx, r.db, id)
	}

	query, args, err := squirrel.
		Update("boost_types").
		SetMap(set).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(boostTypeColumns, ", ")).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build boost type update query: %w", err)
	}

	var updated BoostType
	err = r.db.GetContext(ctx, &updated, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update boost type: %w", classify(err))
	}

	return updated.toModel(), nil
}

// DeleteBoostType removes a boost type nobody has bought; purchased types
// stay referenced by user boosts and can only be deactivated.
func (r *Repository) DeleteBoostType(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query, args, err := squirrel.
		Delete("boost_types").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if foreignKeyViolation(err) {
			return ErrReferenced
		}
		return classify(err)
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

func userBoostsQuery() squirrel.SelectBuilder {
	return squirrel.Select(
		"ub.id",
		"ub.user_id",
		"ub.boost_type_id",
		"ub.start_time",
		"ub.end_time",
		"ub.is_active",
		"bt.name AS bt_name",
		"bt.description AS bt_description",
		"bt.multiplier AS bt_multiplier",
		"bt.duration_hours AS bt_duration_hours",
		"bt.price AS bt_price",
		"bt.is_active AS bt_is_active",
		"bt.icon_name AS bt_icon_name",
		"bt.color_class AS bt_color_class",
		"bt.is_popular AS bt_is_popular",
	).
		From("user_boosts ub").
		Join("boost_types bt ON bt.id = ub.boost_type_id").
		OrderBy("ub.start_time ASC", "ub.id ASC").
		PlaceholderFormat(squirrel.Dollar)
}

// listUserBoosts returns the user's flagged-active boosts; with activeAt set
// only those whose end time is after it.
func (r *Repository) listUserBoosts(ctx context.Context, q sqlx.QueryerContext, userID int64, activeAt *time.Time) ([]*model.UserBoost, error) {
	builder := userBoostsQuery().
		Where(squirrel.Eq{
			"ub.user_id":   userID,
			"ub.is_active": true,
		})
	if activeAt != nil {
		builder = builder.Where(squirrel.Gt{"ub.end_time": *activeAt})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user boosts query: %w", err)
	}

	var rows []userBoostWithType
	err = sqlx.SelectContext(ctx, q, &rows, query, args...)
	if err != nil {
		return nil, classify(err)
	}

	boosts := make([]*model.UserBoost, len(rows))
	for i := range rows {
		boosts[i] = rows[i].toModel()
	}

	return boosts, nil
}

func (r *Repository) ListUserBoosts(ctx context.Context, userID int64, activeAt *time.Time) ([]*model.UserBoost, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.listUserBoosts(ctx, r.db, userID, activeAt)
}

// PurchaseBoost debits the boost price and records the boost in one
// transaction. The debit is conditional on the balance covering the price,
// so concurrent purchases cannot overdraw.
func (r *Repository) PurchaseBoost(ctx context.Context, userID, boostTypeID int64, now time.Time) (*model.BoostPurchase, error) {
	var purchase model.BoostPurchase

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		boostType, err := r.getBoostType(ctx, tx, boostTypeID)
		if err != nil {
			return err
		}
		if !boostType.IsActive {
			return ErrNotFound
		}

		debitQuery, debitArgs, err := squirrel.
			Update("users").
			Set("points", squirrel.Expr("points - ?", boostType.Price)).
			Set("boost_usage_count", squirrel.Expr("boost_usage_count + 1")).
			Where(squirrel.And{
				squirrel.Eq{"id": userID},
				squirrel.GtOrEq{"points": boostType.Price},
			}).
			Suffix(returningUser()).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build debit query: %w", err)
		}

		var user User
		err = tx.GetContext(ctx, &user, debitQuery, debitArgs...)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("failed to debit user: %w", err)
			}
			if _, err := r.getUser(ctx, tx, squirrel.Eq{"id": userID}, false); err != nil {
				return err
			}
			return ErrInsufficientFunds
		}

		insertQuery, insertArgs, err := squirrel.
			Insert("user_boosts").
			SetMap(map[string]interface{}{
				"user_id":       userID,
				"boost_type_id": boostType.ID,
				"start_time":    now,
				"end_time":      now.Add(boostType.Duration()),
				"is_active":     true,
			}).
			Suffix("RETURNING id, start_time, end_time").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build user boost insert query: %w", err)
		}

		var inserted struct {
			ID        int64     `db:"id"`
			StartTime time.Time `db:"start_time"`
			EndTime   time.Time `db:"end_time"`
		}
		if err := tx.GetContext(ctx, &inserted, insertQuery, insertArgs...); err != nil {
			return fmt.Errorf("failed to insert user boost: %w", err)
		}

		purchase.User = user.toModel()
		purchase.UserBoost = &model.UserBoost{
			ID:          inserted.ID,
			UserID:      userID,
			BoostTypeID: boostType.ID,
			StartTime:   inserted.StartTime,
			EndTime:     inserted.EndTime,
			IsActive:    true,
			BoostType:   boostType,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &purchase, nil
}

// ExpireBoosts deactivates every boost whose end time has passed. It is a
// single statement: it either applies to all matching rows or to none.
func (r *Repository) ExpireBoosts(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query, args, err := squirrel.
		Update("user_boosts").
		Set("is_active", false).
		Where(squirrel.And{
			squirrel.Eq{"is_active": true},
			squirrel.Lt{"end_time": now},
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build expire query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to expire boosts: %w", classify(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows, nil
}
