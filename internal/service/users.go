package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"TB_telegram_miniapp/internal/metrics"
	"TB_telegram_miniapp/internal/model"
	"TB_telegram_miniapp/internal/repository"
	"TB_telegram_miniapp/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	referralCodeLength   = 8
	referralCodeAttempts = 3
	leaderboardSize      = 100
)

type EconomyConfig struct {
	DefaultMiningSpeed int64 `json:"defaultMiningSpeed"`
	ReferralBonus      int64 `json:"referralBonus"`
}

// RegisterUserRequest carries what the identity provider knows about a user
// at first contact. ReferralCode is the code the new user wants for
// themselves; ReferredBy is the code of whoever invited them.
type RegisterUserRequest struct {
	TelegramID   string
	Username     *string
	FirstName    string
	LastName     *string
	PhotoURL     *string
	ReferralCode *string
	ReferredBy   *string
}

type ReferralRecorder interface {
	RecordReferral(ctx context.Context, referrerCode string, newUserID int64) (*model.Referral, bool, error)
}

type UserService struct {
	repo      UserRepository
	referrals ReferralRecorder
	economy   EconomyConfig
	now       Clock
}

func NewUserService(repo UserRepository, referrals ReferralRecorder, economy EconomyConfig) *UserService {
	return &UserService{
		repo:      repo,
		referrals: referrals,
		economy:   economy,
		now:       systemClock,
	}
}

// RegisterUser returns the user for req.TelegramID, creating it when absent.
// The second result reports whether a new user was created.
func (s *UserService) RegisterUser(ctx context.Context, req *RegisterUserRequest) (*model.User, bool, error) {
	if strings.TrimSpace(req.TelegramID) == "" {
		return nil, false, ErrMissingTelegramID
	}

	existing, err := s.repo.GetUserByTelegramID(ctx, req.TelegramID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to look up user: %w", storeError(err, ErrUserNotFound))
	}

	now := s.now()
	user := &model.User{
		TelegramID:     req.TelegramID,
		Username:       req.Username,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		PhotoURL:       req.PhotoURL,
		Level:          1,
		Points:         0,
		MiningSpeed:    s.economy.DefaultMiningSpeed,
		LastMiningTime: now,
		JoinDate:       now,
	}
	if req.ReferralCode != nil && *req.ReferralCode != "" {
		user.ReferralCode = *req.ReferralCode
	} else {
		user.ReferralCode = newReferralCode()
	}

	var created *model.User
	for attempt := 0; attempt < referralCodeAttempts; attempt++ {
		created, err = s.repo.CreateUser(ctx, user)
		if !errors.Is(err, repository.ErrReferralCodeTaken) {
			break
		}
		user.ReferralCode = newReferralCode()
	}
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			// Lost a race with a concurrent registration of the same user.
			existing, err := s.repo.GetUserByTelegramID(ctx, req.TelegramID)
			if err != nil {
				return nil, false, fmt.Errorf("failed to get concurrently created user: %w", storeError(err, ErrUserNotFound))
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to create user: %w", storeError(err, ErrUserNotFound))
	}

	logger.Logger().Info("User registered",
		zap.String("telegram_id", created.TelegramID),
		zap.Int64("user_id", created.ID),
		zap.String("referral_code", created.ReferralCode),
	)

	if req.ReferredBy != nil && *req.ReferredBy != "" && s.referrals != nil {
		if _, _, err := s.referrals.RecordReferral(ctx, *req.ReferredBy, created.ID); err != nil {
			logger.Logger().Error("Failed to record referral",
				zap.Error(err),
				zap.Int64("user_id", created.ID),
				zap.String("referred_by", *req.ReferredBy),
			)
		}
	}

	return created, true, nil
}

func newReferralCode() string {
	code := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(code[:referralCodeLength])
}

// GetUserWithAccrual credits mining earned since the last visit and returns
// the updated user with their referral count.
func (s *UserService) GetUserWithAccrual(ctx context.Context, telegramID string) (*model.UserSummary, error) {
	user, err := s.repo.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, storeError(err, ErrUserNotFound)
	}

	updated, accrual, err := s.repo.ApplyAccrual(ctx, user.ID, s.now())
	switch {
	case err == nil:
		user = updated
	case errors.Is(err, repository.ErrConflict):
		// Another request moved the baseline first and already credited it.
		user, err = s.repo.GetUserByTelegramID(ctx, telegramID)
		if err != nil {
			return nil, storeError(err, ErrUserNotFound)
		}
		accrual = model.Accrual{NextMiningTime: user.LastMiningTime}
	default:
		return nil, fmt.Errorf("failed to apply accrual: %w", storeError(err, ErrUserNotFound))
	}

	if accrual.Applied() {
		metrics.PointsCreditedTotal.WithLabelValues(metrics.SourceMining).Add(float64(accrual.EarnedPoints))
		logger.Logger().Info("Mining accrual applied",
			zap.Int64("user_id", user.ID),
			zap.Int64("hours", accrual.ElapsedHours),
			zap.Int64("speed", accrual.EffectiveSpeed),
			zap.Int64("earned", accrual.EarnedPoints),
		)
	}

	count, err := s.repo.CountReferrals(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count referrals: %w", storeError(err, ErrUserNotFound))
	}

	return &model.UserSummary{
		User:          user,
		ReferralCount: count,
		Accrual:       accrual,
	}, nil
}

func (s *UserService) GetUserByTelegramID(ctx context.Context, telegramID string) (*model.User, error) {
	user, err := s.repo.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, storeError(err, ErrUserNotFound)
	}
	return user, nil
}

func (s *UserService) GetLeaderboard(ctx context.Context) ([]*model.User, error) {
	users, err := s.repo.GetTopUsers(ctx, leaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", storeError(err, ErrUserNotFound))
	}
	return users, nil
}
