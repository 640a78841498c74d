package api

import (
	"context"

	"TB_telegram_miniapp/internal/model"
	"TB_telegram_miniapp/internal/service"

	"github.com/stretchr/testify/mock"
)

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) RegisterUser(ctx context.Context, req *service.RegisterUserRequest) (*model.User, bool, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.User), args.Bool(1), args.Error(2)
}

func (m *mockUserService) GetUserWithAccrual(ctx context.Context, telegramID string) (*model.UserSummary, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserSummary), args.Error(1)
}

func (m *mockUserService) GetUserByTelegramID(ctx context.Context, telegramID string) (*model.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserService) GetLeaderboard(ctx context.Context) ([]*model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.User), args.Error(1)
}

type mockReferralService struct {
	mock.Mock
}

func (m *mockReferralService) RecordReferral(ctx context.Context, referrerCode string, newUserID int64) (*model.Referral, bool, error) {
	args := m.Called(ctx, referrerCode, newUserID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.Referral), args.Bool(1), args.Error(2)
}

func (m *mockReferralService) CountReferrals(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockReferralService) ListReferrals(ctx context.Context, userID int64) ([]*model.Referral, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Referral), args.Error(1)
}

type mockTaskService struct {
	mock.Mock
}

func (m *mockTaskService) ListTasks(ctx context.Context, taskType *model.TaskType) ([]*model.Task, error) {
	args := m.Called(ctx, taskType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Task), args.Error(1)
}

func (m *mockTaskService) ListUserTasks(ctx context.Context, userID int64) ([]*model.UserTask, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.UserTask), args.Error(1)
}

func (m *mockTaskService) GetTaskProgress(ctx context.Context, userID, taskID int64) (*model.UserTask, error) {
	args := m.Called(ctx, userID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserTask), args.Error(1)
}

func (m *mockTaskService) SetProgress(ctx context.Context, userID, taskID, progress int64) (*model.ProgressResult, error) {
	args := m.Called(ctx, userID, taskID, progress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProgressResult), args.Error(1)
}

func (m *mockTaskService) IncrementProgress(ctx context.Context, userID, taskID, amount int64) (*model.ProgressResult, error) {
	args := m.Called(ctx, userID, taskID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProgressResult), args.Error(1)
}

func (m *mockTaskService) CompleteTask(ctx context.Context, userID, taskID int64) (*model.ProgressResult, error) {
	args := m.Called(ctx, userID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProgressResult), args.Error(1)
}

func (m *mockTaskService) GetTask(ctx context.Context, taskID int64) (*model.Task, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *mockTaskService) ResetByType(ctx context.Context, taskType model.TaskType) (int64, error) {
	args := m.Called(ctx, taskType)
	return args.Get(0).(int64), args.Error(1)
}

type mockBoostService struct {
	mock.Mock
}

func (m *mockBoostService) ListBoostTypes(ctx context.Context) ([]*model.BoostType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.BoostType), args.Error(1)
}

func (m *mockBoostService) ListUserBoosts(ctx context.Context, userID int64, activeOnly bool) ([]*model.UserBoost, error) {
	args := m.Called(ctx, userID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.UserBoost), args.Error(1)
}

func (m *mockBoostService) PurchaseBoost(ctx context.Context, userID, boostTypeID int64) (*model.BoostPurchase, error) {
	args := m.Called(ctx, userID, boostTypeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BoostPurchase), args.Error(1)
}

func (m *mockBoostService) ExpireBoosts(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockCatalogService struct {
	mock.Mock
}

func (m *mockCatalogService) ListAllTasks(ctx context.Context, taskType *model.TaskType) ([]*model.Task, error) {
	args := m.Called(ctx, taskType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Task), args.Error(1)
}

func (m *mockCatalogService) CreateTask(ctx context.Context, req *model.CreateTaskRequest) (*model.Task, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *mockCatalogService) UpdateTask(ctx context.Context, id int64, req *model.UpdateTaskRequest) (*model.Task, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *mockCatalogService) DeleteTask(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCatalogService) SeedDefaultTasks(ctx context.Context) ([]*model.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Task), args.Error(1)
}

func (m *mockCatalogService) ListAllBoostTypes(ctx context.Context) ([]*model.BoostType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.BoostType), args.Error(1)
}

func (m *mockCatalogService) CreateBoostType(ctx context.Context, req *model.CreateBoostTypeRequest) (*model.BoostType, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BoostType), args.Error(1)
}

func (m *mockCatalogService) UpdateBoostType(ctx context.Context, id int64, req *model.UpdateBoostTypeRequest) (*model.BoostType, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BoostType), args.Error(1)
}

func (m *mockCatalogService) DeleteBoostType(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) IsMember(userID int64, target string) (bool, error) {
	args := m.Called(userID, target)
	return args.Bool(0), args.Error(1)
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(ctx context.Context) error {
	return p.err
}
