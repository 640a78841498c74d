package service

import (
	"context"
	"errors"
	"fmt"

	"TB_telegram_miniapp/internal/metrics"
	"TB_telegram_miniapp/internal/model"
	"TB_telegram_miniapp/internal/repository"
	"TB_telegram_miniapp/pkg/logger"

	"go.uber.org/zap"
)

type BoostService struct {
	repo BoostRepository
	now  Clock
}

func NewBoostService(repo BoostRepository) *BoostService {
	return &BoostService{
		repo: repo,
		now:  systemClock,
	}
}

// ListBoostTypes returns the boost types currently for sale.
func (s *BoostService) ListBoostTypes(ctx context.Context) ([]*model.BoostType, error) {
	boostTypes, err := s.repo.ListBoostTypes(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list boost types: %w", storeError(err, ErrBoostTypeNotFound))
	}
	return boostTypes, nil
}

// ListUserBoosts returns boosts still flagged active. With activeOnly set it
// narrows them to the ones that count toward mining right now.
func (s *BoostService) ListUserBoosts(ctx context.Context, userID int64, activeOnly bool) ([]*model.UserBoost, error) {
	var boosts []*model.UserBoost
	var err error
	if activeOnly {
		now := s.now()
		boosts, err = s.repo.ListUserBoosts(ctx, userID, &now)
	} else {
		boosts, err = s.repo.ListUserBoosts(ctx, userID, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list user boosts: %w", storeError(err, ErrUserNotFound))
	}
	return boosts, nil
}

func (s *BoostService) PurchaseBoost(ctx context.Context, userID, boostTypeID int64) (*model.BoostPurchase, error) {
	purchase, err := s.repo.PurchaseBoost(ctx, userID, boostTypeID, s.now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientFunds):
			metrics.BoostPurchasesTotal.WithLabelValues(metrics.OutcomeInsufficient).Inc()
			return nil, ErrInsufficientFunds
		case errors.Is(err, repository.ErrNotFound):
			metrics.BoostPurchasesTotal.WithLabelValues(metrics.OutcomeNotFound).Inc()
			return nil, ErrBoostTypeNotFound
		default:
			metrics.BoostPurchasesTotal.WithLabelValues(metrics.OutcomeError).Inc()
			return nil, fmt.Errorf("failed to purchase boost: %w", storeError(err, ErrBoostTypeNotFound))
		}
	}

	metrics.BoostPurchasesTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	if purchase.UserBoost.BoostType != nil {
		metrics.PointsDebitedTotal.Add(float64(purchase.UserBoost.BoostType.Price))
	}

	logger.Logger().Info("Boost purchased",
		zap.Int64("user_id", userID),
		zap.Int64("boost_type_id", boostTypeID),
		zap.Int64("user_boost_id", purchase.UserBoost.ID),
		zap.Time("end_time", purchase.UserBoost.EndTime),
	)

	return purchase, nil
}

// ExpireBoosts deactivates every boost whose end time has passed and returns
// how many were deactivated.
func (s *BoostService) ExpireBoosts(ctx context.Context) (int64, error) {
	expired, err := s.repo.ExpireBoosts(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to expire boosts: %w", storeError(err, ErrBoostTypeNotFound))
	}
	if expired > 0 {
		logger.Logger().Info("Expired boosts deactivated", zap.Int64("count", expired))
	}
	return expired, nil
}
