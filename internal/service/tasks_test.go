package service

import (
	"context"
	"testing"

	"TB_telegram_miniapp/internal/model"
	"TB_telegram_miniapp/internal/repository"
	"TB_telegram_miniapp/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestTaskService(repo *mocks.MockTaskRepository) *TaskService {
	s := NewTaskService(repo)
	s.now = fixedClock
	return s
}

func TestTaskService_IncrementProgress(t *testing.T) {
	weekly := &model.Task{ID: 7, Type: model.TaskTypeWeekly, Points: 200, RequiredAmount: 5}

	tests := []struct {
		name          string
		amount        int64
		setupMocks    func(repo *mocks.MockTaskRepository)
		expectedError error
		checkResult   func(t *testing.T, result *model.ProgressResult)
	}{
		{
			name:          "Zero amount rejected",
			amount:        0,
			setupMocks:    func(repo *mocks.MockTaskRepository) {},
			expectedError: ErrInvalidArgument,
		},
		{
			name:          "Negative amount rejected",
			amount:        -3,
			setupMocks:    func(repo *mocks.MockTaskRepository) {},
			expectedError: ErrInvalidAmount,
		},
		{
			name:   "Completion is reported",
			amount: 1000,
			setupMocks: func(repo *mocks.MockTaskRepository) {
				completedAt := testNow
				repo.On("AdvanceTaskProgress", mock.Anything, int64(1), int64(7),
					model.ProgressUpdate{Mode: model.ProgressIncrement, Amount: 1000}, testNow).
					Return(&model.ProgressResult{
						UserTask:  &model.UserTask{UserID: 1, TaskID: 7, Progress: 5, IsCompleted: true, CompletedAt: &completedAt},
						Task:      weekly,
						Changed:   true,
						Completed: true,
					}, nil)
			},
			checkResult: func(t *testing.T, result *model.ProgressResult) {
				assert.True(t, result.Completed)
				assert.Equal(t, int64(5), result.UserTask.Progress)
			},
		},
		{
			name:   "Concurrent update returns stored state",
			amount: 1,
			setupMocks: func(repo *mocks.MockTaskRepository) {
				repo.On("AdvanceTaskProgress", mock.Anything, int64(1), int64(7), mock.Anything, testNow).
					Return(nil, repository.ErrConflict)
				repo.On("GetUserTask", mock.Anything, int64(1), int64(7)).
					Return(&model.UserTask{UserID: 1, TaskID: 7, Progress: 5, IsCompleted: true, Task: weekly}, nil)
			},
			checkResult: func(t *testing.T, result *model.ProgressResult) {
				assert.False(t, result.Changed)
				assert.False(t, result.Completed)
				assert.True(t, result.UserTask.IsCompleted)
				assert.Equal(t, weekly, result.Task)
			},
		},
		{
			name:   "Unknown task",
			amount: 1,
			setupMocks: func(repo *mocks.MockTaskRepository) {
				repo.On("AdvanceTaskProgress", mock.Anything, int64(1), int64(7), mock.Anything, testNow).
					Return(nil, repository.ErrNotFound)
				repo.On("GetTask", mock.Anything, int64(7)).
					Return(nil, repository.ErrNotFound)
			},
			expectedError: ErrTaskNotFound,
		},
		{
			name:   "Unknown user",
			amount: 1,
			setupMocks: func(repo *mocks.MockTaskRepository) {
				repo.On("AdvanceTaskProgress", mock.Anything, int64(1), int64(7), mock.Anything, testNow).
					Return(nil, repository.ErrNotFound)
				repo.On("GetTask", mock.Anything, int64(7)).
					Return(weekly, nil)
			},
			expectedError: ErrUserNotFound,
		},
		{
			name:   "Invalid task definition",
			amount: 1,
			setupMocks: func(repo *mocks.MockTaskRepository) {
				repo.On("AdvanceTaskProgress", mock.Anything, int64(1), int64(7), mock.Anything, testNow).
					Return(nil, model.ErrInvalidRequiredAmount)
			},
			expectedError: ErrInvalidArgument,
		},
		{
			name:   "Store unavailable",
			amount: 1,
			setupMocks: func(repo *mocks.MockTaskRepository) {
				repo.On("AdvanceTaskProgress", mock.Anything, int64(1), int64(7), mock.Anything, testNow).
					Return(nil, repository.ErrStoreUnavailable)
			},
			expectedError: ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockTaskRepository{}
			tt.setupMocks(repo)
			service := newTestTaskService(repo)

			result, err := service.IncrementProgress(context.Background(), 1, 7, tt.amount)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
				repo.AssertExpectations(t)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, result)
			if tt.checkResult != nil {
				tt.checkResult(t, result)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestTaskService_SetProgress(t *testing.T) {
	t.Run("Negative progress rejected before store access", func(t *testing.T) {
		repo := &mocks.MockTaskRepository{}
		service := newTestTaskService(repo)

		_, err := service.SetProgress(context.Background(), 1, 2, -1)
		assert.ErrorIs(t, err, ErrNegativeProgress)
		assert.ErrorIs(t, err, ErrInvalidArgument)
		repo.AssertNotCalled(t, "AdvanceTaskProgress", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Absolute value passed through", func(t *testing.T) {
		repo := &mocks.MockTaskRepository{}
		service := newTestTaskService(repo)

		repo.On("AdvanceTaskProgress", mock.Anything, int64(1), int64(2),
			model.ProgressUpdate{Mode: model.ProgressSet, Amount: 3}, testNow).
			Return(&model.ProgressResult{UserTask: &model.UserTask{Progress: 3}, Task: &model.Task{ID: 2}, Changed: true}, nil)

		result, err := service.SetProgress(context.Background(), 1, 2, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(3), result.UserTask.Progress)
		repo.AssertExpectations(t)
	})
}

func TestTaskService_CompleteTask(t *testing.T) {
	repo := &mocks.MockTaskRepository{}
	service := newTestTaskService(repo)

	repo.On("AdvanceTaskProgress", mock.Anything, int64(1), int64(3),
		model.ProgressUpdate{Mode: model.ProgressComplete}, testNow).
		Return(nil, model.ErrNotExternalTask)

	_, err := service.CompleteTask(context.Background(), 1, 3)
	assert.ErrorIs(t, err, ErrNotExternalTask)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestTaskService_ListTasks(t *testing.T) {
	repo := &mocks.MockTaskRepository{}
	service := newTestTaskService(repo)

	daily := model.TaskTypeDaily
	repo.On("ListTasks", mock.Anything, model.TaskFilter{Type: &daily, ActiveOnly: true}).
		Return([]*model.Task{{ID: 1, Type: daily}}, nil)

	tasks, err := service.ListTasks(context.Background(), &daily)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
	repo.AssertExpectations(t)
}

func TestTaskService_GetTaskProgress(t *testing.T) {
	repo := &mocks.MockTaskRepository{}
	service := newTestTaskService(repo)

	repo.On("GetUserTask", mock.Anything, int64(1), int64(9)).
		Return(nil, repository.ErrNotFound)

	_, err := service.GetTaskProgress(context.Background(), 1, 9)
	assert.ErrorIs(t, err, ErrTaskNotStarted)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskService_ResetByType(t *testing.T) {
	t.Run("Weekly reset", func(t *testing.T) {
		repo := &mocks.MockTaskRepository{}
		service := newTestTaskService(repo)

		repo.On("ResetTasksByType", mock.Anything, model.TaskTypeWeekly).Return(int64(12), nil)

		reset, err := service.ResetByType(context.Background(), model.TaskTypeWeekly)
		require.NoError(t, err)
		assert.Equal(t, int64(12), reset)
		repo.AssertExpectations(t)
	})

	t.Run("Unknown type rejected", func(t *testing.T) {
		repo := &mocks.MockTaskRepository{}
		service := newTestTaskService(repo)

		_, err := service.ResetByType(context.Background(), model.TaskType("monthly"))
		assert.ErrorIs(t, err, ErrInvalidArgument)
		repo.AssertNotCalled(t, "ResetTasksByType", mock.Anything, mock.Anything)
	})
}
