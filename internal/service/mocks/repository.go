package mocks

import (
	"context"
	"time"

	"TB_telegram_miniapp/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByTelegramID(ctx context.Context, telegramID string) (*model.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) ApplyAccrual(ctx context.Context, userID int64, now time.Time) (*model.User, model.Accrual, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Get(1).(model.Accrual), args.Error(2)
	}
	return args.Get(0).(*model.User), args.Get(1).(model.Accrual), args.Error(2)
}

func (m *MockUserRepository) CountReferrals(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) GetTopUsers(ctx context.Context, limit int) ([]*model.User, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.User), args.Error(1)
}

type MockReferralRecorder struct {
	mock.Mock
}

func (m *MockReferralRecorder) RecordReferral(ctx context.Context, referrerCode string, newUserID int64) (*model.Referral, bool, error) {
	args := m.Called(ctx, referrerCode, newUserID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.Referral), args.Bool(1), args.Error(2)
}

type MockBoostRepository struct {
	mock.Mock
}

func (m *MockBoostRepository) ListBoostTypes(ctx context.Context, activeOnly bool) ([]*model.BoostType, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.BoostType), args.Error(1)
}

func (m *MockBoostRepository) ListUserBoosts(ctx context.Context, userID int64, activeAt *time.Time) ([]*model.UserBoost, error) {
	args := m.Called(ctx, userID, activeAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.UserBoost), args.Error(1)
}

func (m *MockBoostRepository) PurchaseBoost(ctx context.Context, userID, boostTypeID int64, now time.Time) (*model.BoostPurchase, error) {
	args := m.Called(ctx, userID, boostTypeID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BoostPurchase), args.Error(1)
}

func (m *MockBoostRepository) ExpireBoosts(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) ListTasks(ctx context.Context, filter model.TaskFilter) ([]*model.Task, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Task), args.Error(1)
}

func (m *MockTaskRepository) GetTask(ctx context.Context, id int64) (*model.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskRepository) ListUserTasks(ctx context.Context, userID int64, taskType *model.TaskType) ([]*model.UserTask, error) {
	args := m.Called(ctx, userID, taskType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.UserTask), args.Error(1)
}

func (m *MockTaskRepository) GetUserTask(ctx context.Context, userID, taskID int64) (*model.UserTask, error) {
	args := m.Called(ctx, userID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserTask), args.Error(1)
}

func (m *MockTaskRepository) AdvanceTaskProgress(ctx context.Context, userID, taskID int64, update model.ProgressUpdate, now time.Time) (*model.ProgressResult, error) {
	args := m.Called(ctx, userID, taskID, update, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProgressResult), args.Error(1)
}

func (m *MockTaskRepository) ResetTasksByType(ctx context.Context, taskType model.TaskType) (int64, error) {
	args := m.Called(ctx, taskType)
	return args.Get(0).(int64), args.Error(1)
}

type MockReferralRepository struct {
	mock.Mock
}

func (m *MockReferralRepository) RecordReferral(ctx context.Context, code string, referredID int64, bonus int64, now time.Time) (*model.Referral, bool, error) {
	args := m.Called(ctx, code, referredID, bonus, now)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.Referral), args.Bool(1), args.Error(2)
}

func (m *MockReferralRepository) CountReferrals(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockReferralRepository) ListReferrals(ctx context.Context, userID int64) ([]*model.Referral, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Referral), args.Error(1)
}

type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) ListTasks(ctx context.Context, filter model.TaskFilter) ([]*model.Task, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Task), args.Error(1)
}

func (m *MockCatalogRepository) CreateTask(ctx context.Context, req *model.CreateTaskRequest) (*model.Task, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockCatalogRepository) UpdateTask(ctx context.Context, id int64, req *model.UpdateTaskRequest) (*model.Task, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockCatalogRepository) DeleteTask(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCatalogRepository) ListBoostTypes(ctx context.Context, activeOnly bool) ([]*model.BoostType, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.BoostType), args.Error(1)
}

func (m *MockCatalogRepository) CreateBoostType(ctx context.Context, req *model.CreateBoostTypeRequest) (*model.BoostType, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BoostType), args.Error(1)
}

func (m *MockCatalogRepository) UpdateBoostType(ctx context.Context, id int64, req *model.UpdateBoostTypeRequest) (*model.BoostType, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BoostType), args.Error(1)
}

func (m *MockCatalogRepository) DeleteBoostType(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
