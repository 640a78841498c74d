package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"TB_telegram_miniapp/internal/model"
	"TB_telegram_miniapp/internal/repository"
	"TB_telegram_miniapp/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestBoostService(repo *mocks.MockBoostRepository) *BoostService {
	s := NewBoostService(repo)
	s.now = fixedClock
	return s
}

func TestBoostService_PurchaseBoost(t *testing.T) {
	turbo := &model.BoostType{ID: 3, Name: "Turbo", Multiplier: 150, DurationHours: 24, Price: 100, IsActive: true}

	tests := []struct {
		name          string
		repoResult    *model.BoostPurchase
		repoErr       error
		expectedError error
	}{
		{
			name: "Purchased",
			repoResult: &model.BoostPurchase{
				UserBoost: &model.UserBoost{
					ID:          1,
					UserID:      5,
					BoostTypeID: 3,
					StartTime:   testNow,
					EndTime:     testNow.Add(24 * time.Hour),
					IsActive:    true,
					BoostType:   turbo,
				},
				User: &model.User{ID: 5, Points: 0, BoostUsageCount: 1},
			},
		},
		{
			name:          "Insufficient funds",
			repoErr:       repository.ErrInsufficientFunds,
			expectedError: ErrInsufficientFunds,
		},
		{
			name:          "Unknown boost type",
			repoErr:       repository.ErrNotFound,
			expectedError: ErrBoostTypeNotFound,
		},
		{
			name:          "Timeout is retryable",
			repoErr:       errors.Join(repository.ErrStoreUnavailable, context.DeadlineExceeded),
			expectedError: ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockBoostRepository{}
			service := newTestBoostService(repo)

			if tt.repoResult != nil {
				repo.On("PurchaseBoost", mock.Anything, int64(5), int64(3), testNow).Return(tt.repoResult, nil)
			} else {
				repo.On("PurchaseBoost", mock.Anything, int64(5), int64(3), testNow).Return(nil, tt.repoErr)
			}

			purchase, err := service.PurchaseBoost(context.Background(), 5, 3)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, purchase)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, 1, purchase.User.BoostUsageCount)
			assert.True(t, purchase.UserBoost.EndTime.Equal(testNow.Add(turbo.Duration())))
			repo.AssertExpectations(t)
		})
	}
}

func TestBoostService_ListUserBoosts(t *testing.T) {
	t.Run("Active only uses current time", func(t *testing.T) {
		repo := &mocks.MockBoostRepository{}
		service := newTestBoostService(repo)

		repo.On("ListUserBoosts", mock.Anything, int64(5), mock.MatchedBy(func(at *time.Time) bool {
			return at != nil && at.Equal(testNow)
		})).Return([]*model.UserBoost{{ID: 1}}, nil)

		boosts, err := service.ListUserBoosts(context.Background(), 5, true)
		require.NoError(t, err)
		assert.Len(t, boosts, 1)
		repo.AssertExpectations(t)
	})

	t.Run("All flagged boosts", func(t *testing.T) {
		repo := &mocks.MockBoostRepository{}
		service := newTestBoostService(repo)

		repo.On("ListUserBoosts", mock.Anything, int64(5), (*time.Time)(nil)).
			Return([]*model.UserBoost{{ID: 1}, {ID: 2}}, nil)

		boosts, err := service.ListUserBoosts(context.Background(), 5, false)
		require.NoError(t, err)
		assert.Len(t, boosts, 2)
	})
}

func TestBoostService_ExpireBoosts(t *testing.T) {
	repo := &mocks.MockBoostRepository{}
	service := newTestBoostService(repo)

	repo.On("ExpireBoosts", mock.Anything, testNow).Return(int64(4), nil).Once()
	repo.On("ExpireBoosts", mock.Anything, testNow).Return(int64(0), nil).Once()

	expired, err := service.ExpireBoosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), expired)

	expired, err = service.ExpireBoosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), expired)

	repo.On("ExpireBoosts", mock.Anything, testNow).Return(int64(0), repository.ErrStoreUnavailable)
	_, err = service.ExpireBoosts(context.Background())
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestBoostService_ListBoostTypes(t *testing.T) {
	repo := &mocks.MockBoostRepository{}
	service := newTestBoostService(repo)

	repo.On("ListBoostTypes", mock.Anything, true).Return([]*model.BoostType{{ID: 1}}, nil)

	boostTypes, err := service.ListBoostTypes(context.Background())
	require.NoError(t, err)
	assert.Len(t, boostTypes, 1)
}
