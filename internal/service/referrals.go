package service

import (
	"context"
	"fmt"
	"strings"

	"TB_telegram_miniapp/internal/metrics"
	"TB_telegram_miniapp/internal/model"
	"TB_telegram_miniapp/pkg/logger"

	"go.uber.org/zap"
)

type ReferralService struct {
	repo  ReferralRepository
	bonus int64
	now   Clock
}

func NewReferralService(repo ReferralRepository, bonus int64) *ReferralService {
	return &ReferralService{
		repo:  repo,
		bonus: bonus,
		now:   systemClock,
	}
}

// RecordReferral credits the owner of referrerCode for bringing in
// newUserID. Unknown codes, self-referrals and repeated pairs record nothing
// and are not errors; the second result tells whether a bonus was paid.
func (s *ReferralService) RecordReferral(ctx context.Context, referrerCode string, newUserID int64) (*model.Referral, bool, error) {
	code := strings.TrimSpace(referrerCode)
	if code == "" {
		return nil, false, nil
	}

	referral, recorded, err := s.repo.RecordReferral(ctx, code, newUserID, s.bonus, s.now())
	if err != nil {
		return nil, false, fmt.Errorf("failed to record referral: %w", storeError(err, ErrUserNotFound))
	}
	if !recorded {
		logger.Logger().Debug("Referral not recorded",
			zap.String("code", code),
			zap.Int64("referred_id", newUserID),
		)
		return nil, false, nil
	}

	metrics.ReferralsRecordedTotal.Inc()
	metrics.PointsCreditedTotal.WithLabelValues(metrics.SourceReferral).Add(float64(referral.Points))
	logger.Logger().Info("Referral bonus credited",
		zap.Int64("referrer_id", referral.ReferrerID),
		zap.Int64("referred_id", referral.ReferredID),
		zap.Int64("points", referral.Points),
	)

	return referral, true, nil
}

func (s *ReferralService) CountReferrals(ctx context.Context, userID int64) (int, error) {
	count, err := s.repo.CountReferrals(ctx, userID)
	if err != nil {
		return 0, storeError(err, ErrUserNotFound)
	}
	return count, nil
}

func (s *ReferralService) ListReferrals(ctx context.Context, userID int64) ([]*model.Referral, error) {
	referrals, err := s.repo.ListReferrals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", storeError(err, ErrUserNotFound))
	}
	return referrals, nil
}
