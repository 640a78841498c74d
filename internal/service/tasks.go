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

type TaskService struct {
	repo TaskRepository
	now  Clock
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{
		repo: repo,
		now:  systemClock,
	}
}

// ListTasks returns active tasks, optionally of a single type.
func (s *TaskService) ListTasks(ctx context.Context, taskType *model.TaskType) ([]*model.Task, error) {
	tasks, err := s.repo.ListTasks(ctx, model.TaskFilter{Type: taskType, ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", storeError(err, ErrTaskNotFound))
	}
	return tasks, nil
}

func (s *TaskService) GetTask(ctx context.Context, taskID int64) (*model.Task, error) {
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, storeError(err, ErrTaskNotFound)
	}
	return task, nil
}

func (s *TaskService) ListUserTasks(ctx context.Context, userID int64) ([]*model.UserTask, error) {
	userTasks, err := s.repo.ListUserTasks(ctx, userID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list user tasks: %w", storeError(err, ErrUserNotFound))
	}
	return userTasks, nil
}

// GetTaskProgress returns the user's row for a task, ErrTaskNotStarted when
// the user never advanced it.
func (s *TaskService) GetTaskProgress(ctx context.Context, userID, taskID int64) (*model.UserTask, error) {
	userTask, err := s.repo.GetUserTask(ctx, userID, taskID)
	if err != nil {
		return nil, storeError(err, ErrTaskNotStarted)
	}
	return userTask, nil
}

func (s *TaskService) SetProgress(ctx context.Context, userID, taskID, progress int64) (*model.ProgressResult, error) {
	return s.advance(ctx, userID, taskID, model.ProgressUpdate{Mode: model.ProgressSet, Amount: progress})
}

func (s *TaskService) IncrementProgress(ctx context.Context, userID, taskID, amount int64) (*model.ProgressResult, error) {
	return s.advance(ctx, userID, taskID, model.ProgressUpdate{Mode: model.ProgressIncrement, Amount: amount})
}

// CompleteTask finishes a task whose completion happens outside the app.
// Progress tasks reject it.
func (s *TaskService) CompleteTask(ctx context.Context, userID, taskID int64) (*model.ProgressResult, error) {
	return s.advance(ctx, userID, taskID, model.ProgressUpdate{Mode: model.ProgressComplete})
}

func (s *TaskService) advance(ctx context.Context, userID, taskID int64, update model.ProgressUpdate) (*model.ProgressResult, error) {
	if err := update.Validate(); err != nil {
		return nil, storeError(err, ErrTaskNotFound)
	}

	result, err := s.repo.AdvanceTaskProgress(ctx, userID, taskID, update, s.now())
	if errors.Is(err, repository.ErrConflict) {
		// A concurrent update changed the row under us. Report what is stored
		// now instead of failing, so retried calls stay idempotent.
		return s.currentState(ctx, userID, taskID)
	}
	if err != nil {
		return nil, s.progressError(ctx, taskID, err)
	}

	if result.Completed {
		metrics.TaskCompletionsTotal.WithLabelValues(string(result.Task.Type)).Inc()
		metrics.PointsCreditedTotal.WithLabelValues(metrics.SourceTask).Add(float64(result.Task.Points))
		logger.Logger().Info("Task completed",
			zap.Int64("user_id", userID),
			zap.Int64("task_id", taskID),
			zap.String("type", string(result.Task.Type)),
			zap.Int64("points", result.Task.Points),
		)
	}

	return result, nil
}

func (s *TaskService) currentState(ctx context.Context, userID, taskID int64) (*model.ProgressResult, error) {
	userTask, err := s.repo.GetUserTask(ctx, userID, taskID)
	if err != nil {
		return nil, storeError(err, ErrTaskNotFound)
	}
	return &model.ProgressResult{UserTask: userTask, Task: userTask.Task}, nil
}

// progressError tells a missing task apart from a missing user; the store
// reports both as not found.
func (s *TaskService) progressError(ctx context.Context, taskID int64, err error) error {
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to advance task progress: %w", storeError(err, ErrTaskNotFound))
	}
	if _, getErr := s.repo.GetTask(ctx, taskID); errors.Is(getErr, repository.ErrNotFound) {
		return ErrTaskNotFound
	}
	return ErrUserNotFound
}

// ResetByType clears per-user progress for every task of taskType so those
// tasks can be completed again. Rewards already issued stay.
func (s *TaskService) ResetByType(ctx context.Context, taskType model.TaskType) (int64, error) {
	if _, err := model.ParseTaskType(string(taskType)); err != nil {
		return 0, storeError(err, ErrTaskNotFound)
	}

	reset, err := s.repo.ResetTasksByType(ctx, taskType)
	if err != nil {
		return 0, fmt.Errorf("failed to reset tasks: %w", storeError(err, ErrTaskNotFound))
	}

	logger.Logger().Info("Task progress reset",
		zap.String("type", string(taskType)),
		zap.Int64("rows", reset),
	)

	return reset, nil
}
