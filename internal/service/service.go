package service

import (
	"context"
	"time"

	"TB_telegram_miniapp/internal/model"
)

type Service struct {
	*UserService
	*BoostService
	*TaskService
	*ReferralService
	*CatalogService
}

func NewService(
	userService *UserService,
	boostService *BoostService,
	taskService *TaskService,
	referralService *ReferralService,
	catalogService *CatalogService,
) *Service {
	return &Service{
		UserService:     userService,
		BoostService:    boostService,
		TaskService:     taskService,
		ReferralService: referralService,
		CatalogService:  catalogService,
	}
}

// Clock returns the current instant. Services take one so tests can pin time.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

type UserServiceI interface {
	RegisterUser(ctx context.Context, req *RegisterUserRequest) (*model.User, bool, error)
	GetUserWithAccrual(ctx context.Context, telegramID string) (*model.UserSummary, error)
	GetUserByTelegramID(ctx context.Context, telegramID string) (*model.User, error)
	GetLeaderboard(ctx context.Context) ([]*model.User, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUserByTelegramID(ctx context.Context, telegramID string) (*model.User, error)
	ApplyAccrual(ctx context.Context, userID int64, now time.Time) (*model.User, model.Accrual, error)
	CountReferrals(ctx context.Context, userID int64) (int, error)
	GetTopUsers(ctx context.Context, limit int) ([]*model.User, error)
}

type BoostServiceI interface {
	ListBoostTypes(ctx context.Context) ([]*model.BoostType, error)
	ListUserBoosts(ctx context.Context, userID int64, activeOnly bool) ([]*model.UserBoost, error)
	PurchaseBoost(ctx context.Context, userID, boostTypeID int64) (*model.BoostPurchase, error)
	ExpireBoosts(ctx context.Context) (int64, error)
}

type BoostRepository interface {
	ListBoostTypes(ctx context.Context, activeOnly bool) ([]*model.BoostType, error)
	ListUserBoosts(ctx context.Context, userID int64, activeAt *time.Time) ([]*model.UserBoost, error)
	PurchaseBoost(ctx context.Context, userID, boostTypeID int64, now time.Time) (*model.BoostPurchase, error)
	ExpireBoosts(ctx context.Context, now time.Time) (int64, error)
}

type TaskServiceI interface {
	ListTasks(ctx context.Context, taskType *model.TaskType) ([]*model.Task, error)
	ListUserTasks(ctx context.Context, userID int64) ([]*model.UserTask, error)
	GetTaskProgress(ctx context.Context, userID, taskID int64) (*model.UserTask, error)
	SetProgress(ctx context.Context, userID, taskID, progress int64) (*model.ProgressResult, error)
	IncrementProgress(ctx context.Context, userID, taskID, amount int64) (*model.ProgressResult, error)
	CompleteTask(ctx context.Context, userID, taskID int64) (*model.ProgressResult, error)
	GetTask(ctx context.Context, taskID int64) (*model.Task, error)
	ResetByType(ctx context.Context, taskType model.TaskType) (int64, error)
}

type TaskRepository interface {
	ListTasks(ctx context.Context, filter model.TaskFilter) ([]*model.Task, error)
	GetTask(ctx context.Context, id int64) (*model.Task, error)
	ListUserTasks(ctx context.Context, userID int64, taskType *model.TaskType) ([]*model.UserTask, error)
	GetUserTask(ctx context.Context, userID, taskID int64) (*model.UserTask, error)
	AdvanceTaskProgress(ctx context.Context, userID, taskID int64, update model.ProgressUpdate, now time.Time) (*model.ProgressResult, error)
	ResetTasksByType(ctx context.Context, taskType model.TaskType) (int64, error)
}

type ReferralServiceI interface {
	RecordReferral(ctx context.Context, referrerCode string, newUserID int64) (*model.Referral, bool, error)
	CountReferrals(ctx context.Context, userID int64) (int, error)
	ListReferrals(ctx context.Context, userID int64) ([]*model.Referral, error)
}

type ReferralRepository interface {
	RecordReferral(ctx context.Context, code string, referredID int64, bonus int64, now time.Time) (*model.Referral, bool, error)
	CountReferrals(ctx context.Context, userID int64) (int, error)
	ListReferrals(ctx context.Context, userID int64) ([]*model.Referral, error)
}

type CatalogServiceI interface {
	ListAllTasks(ctx context.Context, taskType *model.TaskType) ([]*model.Task, error)
	CreateTask(ctx context.Context, req *model.CreateTaskRequest) (*model.Task, error)
	UpdateTask(ctx context.Context, id int64, req *model.UpdateTaskRequest) (*model.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	SeedDefaultTasks(ctx context.Context) ([]*model.Task, error)
	ListAllBoostTypes(ctx context.Context) ([]*model.BoostType, error)
	CreateBoostType(ctx context.Context, req *model.CreateBoostTypeRequest) (*model.BoostType, error)
	UpdateBoostType(ctx context.Context, id int64, req *model.UpdateBoostTypeRequest) (*model.BoostType, error)
	DeleteBoostType(ctx context.Context, id int64) error
}

type CatalogRepository interface {
	ListTasks(ctx context.Context, filter model.TaskFilter) ([]*model.Task, error)
	CreateTask(ctx context.Context, req *model.CreateTaskRequest) (*model.Task, error)
	UpdateTask(ctx context.Context, id int64, req *model.UpdateTaskRequest) (*model.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	ListBoostTypes(ctx context.Context, activeOnly bool) ([]*model.BoostType, error)
	CreateBoostType(ctx context.Context, req *model.CreateBoostTypeRequest) (*model.BoostType, error)
	UpdateBoostType(ctx context.Context, id int64, req *model.UpdateBoostTypeRequest) (*model.BoostType, error)
	DeleteBoostType(ctx context.Context, id int64) error
}
