package service

import (
	"context"
	"fmt"
	"strings"

	"TB_telegram_miniapp/internal/model"
	"TB_telegram_miniapp/pkg/logger"

	"go.uber.org/zap"
)

// Telegram actions understood by the mini app client.
const (
	ActionJoinChannel   = "join_channel"
	ActionSendMessage   = "send_message"
	ActionInviteFriends = "invite_friends"
	ActionOpenApp       = "open_app"
)

func strPtr(s string) *string {
	return &s
}

var defaultTasks = []model.CreateTaskRequest{
	{
		Title:          "Join the Telegram channel",
		Description:    "Join our official Telegram channel to get news and announcements.",
		Type:           model.TaskTypeSocial,
		Points:         150,
		RequiredAmount: 1,
		TelegramAction: strPtr(ActionJoinChannel),
		TelegramTarget: strPtr("https://t.me/taskboostofficial"),
	},
	{
		Title:          "Join the Telegram group",
		Description:    "Join our community group and talk to other miners.",
		Type:           model.TaskTypeSocial,
		Points:         100,
		RequiredAmount: 1,
		TelegramAction: strPtr(ActionJoinChannel),
		TelegramTarget: strPtr("https://t.me/taskboostcommunity"),
	},
	{
		Title:          "Invite your friends",
		Description:    "Invite 3 friends with your referral code.",
		Type:           model.TaskTypeReferral,
		Points:         300,
		RequiredAmount: 3,
		TelegramAction: strPtr(ActionInviteFriends),
	},
	{
		Title:          "Message the bot",
		Description:    "Send /start to the bot.",
		Type:           model.TaskTypeDaily,
		Points:         50,
		RequiredAmount: 1,
		TelegramAction: strPtr(ActionSendMessage),
		TelegramTarget: strPtr("https://t.me/taskboost_bot"),
	},
	{
		Title:          "Daily login",
		Description:    "Open the app every day.",
		Type:           model.TaskTypeDaily,
		Points:         50,
		RequiredAmount: 1,
		TelegramAction: strPtr(ActionOpenApp),
	},
	{
		Title:          "Go mining",
		Description:    "Collect your mining rewards five times.",
		Type:           model.TaskTypeDaily,
		Points:         100,
		RequiredAmount: 5,
	},
	{
		Title:          "Weekly goal",
		Description:    "Collect 500 points this week.",
		Type:           model.TaskTypeWeekly,
		Points:         200,
		RequiredAmount: 500,
	},
	{
		Title:          "Complete your profile",
		Description:    "Fill in every profile field.",
		Type:           model.TaskTypeMilestone,
		Points:         300,
		RequiredAmount: 100,
	},
	{
		Title:          "Grow your team",
		Description:    "Invite 5 friends and earn extra points.",
		Type:           model.TaskTypeReferral,
		Points:         500,
		RequiredAmount: 5,
		TelegramAction: strPtr(ActionInviteFriends),
	},
}

// CatalogService maintains the task and boost type definitions on behalf of
// administrators.
type CatalogService struct {
	repo CatalogRepository
}

func NewCatalogService(repo CatalogRepository) *CatalogService {
	return &CatalogService{
		repo: repo,
	}
}

func (s *CatalogService) ListAllTasks(ctx context.Context, taskType *model.TaskType) ([]*model.Task, error) {
	tasks, err := s.repo.ListTasks(ctx, model.TaskFilter{Type: taskType})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", storeError(err, ErrTaskNotFound))
	}
	return tasks, nil
}

// CreateTask validates req and fills the reward and target from the task
// type defaults when they are left at zero.
func (s *CatalogService) CreateTask(ctx context.Context, req *model.CreateTaskRequest) (*model.Task, error) {
	if err := prepareCreateTask(req); err != nil {
		return nil, err
	}

	task, err := s.repo.CreateTask(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", storeError(err, ErrTaskNotFound))
	}

	logger.Logger().Info("Task created",
		zap.Int64("task_id", task.ID),
		zap.String("type", string(task.Type)),
		zap.String("kind", task.Kind().String()),
	)

	return task, nil
}

func prepareCreateTask(req *model.CreateTaskRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return ErrMissingTitle
	}
	if _, err := model.ParseTaskType(string(req.Type)); err != nil {
		return storeError(err, ErrTaskNotFound)
	}
	if req.Points < 0 {
		return ErrInvalidPoints
	}
	if req.RequiredAmount < 0 {
		return ErrInvalidTask
	}

	defaults := req.Type.Defaults()
	if req.Points == 0 {
		req.Points = defaults.Points
	}
	if req.RequiredAmount == 0 {
		req.RequiredAmount = defaults.RequiredAmount
	}

	return nil
}

func (s *CatalogService) UpdateTask(ctx context.Context, id int64, req *model.UpdateTaskRequest) (*model.Task, error) {
	if req.Empty() {
		return nil, ErrEmptyUpdate
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return nil, ErrMissingTitle
	}
	if req.Type != nil {
		if _, err := model.ParseTaskType(string(*req.Type)); err != nil {
			return nil, storeError(err, ErrTaskNotFound)
		}
	}
	if req.Points != nil && *req.Points < 0 {
		return nil, ErrInvalidPoints
	}
	if req.RequiredAmount != nil && *req.RequiredAmount < 1 {
		return nil, ErrInvalidTask
	}

	task, err := s.repo.UpdateTask(ctx, id, req)
	if err != nil {
		return nil, storeError(err, ErrTaskNotFound)
	}
	return task, nil
}

func (s *CatalogService) DeleteTask(ctx context.Context, id int64) error {
	if err := s.repo.DeleteTask(ctx, id); err != nil {
		return storeError(err, ErrTaskNotFound)
	}
	logger.Logger().Info("Task deleted", zap.Int64("task_id", id))
	return nil
}

// SeedDefaultTasks creates the built-in Telegram and progress tasks that do
// not exist yet, matched by title, and returns the ones it created.
func (s *CatalogService) SeedDefaultTasks(ctx context.Context) ([]*model.Task, error) {
	existing, err := s.repo.ListTasks(ctx, model.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", storeError(err, ErrTaskNotFound))
	}

	titles := make(map[string]struct{}, len(existing))
	for _, task := range existing {
		titles[task.Title] = struct{}{}
	}

	var created []*model.Task
	for _, def := range defaultTasks {
		if _, ok := titles[def.Title]; ok {
			continue
		}
		req := def
		task, err := s.repo.CreateTask(ctx, &req)
		if err != nil {
			return created, fmt.Errorf("failed to seed task %q: %w", def.Title, storeError(err, ErrTaskNotFound))
		}
		created = append(created, task)
	}

	logger.Logger().Info("Default tasks seeded", zap.Int("created", len(created)))
	return created, nil
}

func (s *CatalogService) ListAllBoostTypes(ctx context.Context) ([]*model.BoostType, error) {
	boostTypes, err := s.repo.ListBoostTypes(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list boost types: %w", storeError(err, ErrBoostTypeNotFound))
	}
	return boostTypes, nil
}

func (s *CatalogService) CreateBoostType(ctx context.Context, req *model.CreateBoostTypeRequest) (*model.BoostType, error) {
	req.Name = strings.TrimSpace(req.Name)
	switch {
	case req.Name == "":
		return nil, ErrMissingName
	case req.Multiplier <= 0:
		return nil, ErrInvalidMultiplier
	case req.DurationHours < 1:
		return nil, ErrInvalidDuration
	case req.Price < 0:
		return nil, ErrInvalidPrice
	}
	if req.IconName == "" {
		req.IconName = "rocket"
	}
	if req.ColorClass == "" {
		req.ColorClass = "blue"
	}

	boostType, err := s.repo.CreateBoostType(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create boost type: %w", storeError(err, ErrBoostTypeNotFound))
	}

	logger.Logger().Info("Boost type created",
		zap.Int64("boost_type_id", boostType.ID),
		zap.Int64("multiplier", boostType.Multiplier),
	)

	return boostType, nil
}

func (s *CatalogService) UpdateBoostType(ctx context.Context, id int64, req *model.UpdateBoostTypeRequest) (*model.BoostType, error) {
	switch {
	case req.Empty():
		return nil, ErrEmptyUpdate
	case req.Name != nil && strings.TrimSpace(*req.Name) == "":
		return nil, ErrMissingName
	case req.Multiplier != nil && *req.Multiplier <= 0:
		return nil, ErrInvalidMultiplier
	case req.DurationHours != nil && *req.DurationHours < 1:
		return nil, ErrInvalidDuration
	case req.Price != nil && *req.Price < 0:
		return nil, ErrInvalidPrice
	}

	boostType, err := s.repo.UpdateBoostType(ctx, id, req)
	if err != nil {
		return nil, storeError(err, ErrBoostTypeNotFound)
	}
	return boostType, nil
}

func (s *CatalogService) DeleteBoostType(ctx context.Context, id int64) error {
	if err := s.repo.DeleteBoostType(ctx, id); err != nil {
		return storeError(err, ErrBoostTypeNotFound)
	}
	logger.Logger().Info("Boost type deleted", zap.Int64("boost_type_id", id))
	return nil
}
