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

func TestCatalogService_CreateTask(t *testing.T) {
	tests := []struct {
		name           string
		req            model.CreateTaskRequest
		expectedError  error
		expectedPoints int64
		expectedAmount int64
	}{
		{
			name:           "Weekly defaults applied",
			req:            model.CreateTaskRequest{Title: "Weekly goal", Type: model.TaskTypeWeekly},
			expectedPoints: 200,
			expectedAmount: 5,
		},
		{
			name:           "Explicit values kept",
			req:            model.CreateTaskRequest{Title: "Big one", Type: model.TaskTypeSpecial, Points: 7, RequiredAmount: 3},
			expectedPoints: 7,
			expectedAmount: 3,
		},
		{
			name:          "Missing title",
			req:           model.CreateTaskRequest{Title: " ", Type: model.TaskTypeDaily},
			expectedError: ErrMissingTitle,
		},
		{
			name:          "Unknown type",
			req:           model.CreateTaskRequest{Title: "x", Type: "monthly"},
			expectedError: ErrInvalidArgument,
		},
		{
			name:          "Negative required amount",
			req:           model.CreateTaskRequest{Title: "x", Type: model.TaskTypeDaily, RequiredAmount: -1},
			expectedError: ErrInvalidTask,
		},
		{
			name:          "Negative points",
			req:           model.CreateTaskRequest{Title: "x", Type: model.TaskTypeDaily, Points: -5},
			expectedError: ErrInvalidPoints,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockCatalogRepository{}
			service := NewCatalogService(repo)
			req := tt.req

			if tt.expectedError == nil {
				repo.On("CreateTask", mock.Anything, mock.MatchedBy(func(r *model.CreateTaskRequest) bool {
					return r.Points == tt.expectedPoints && r.RequiredAmount == tt.expectedAmount
				})).Return(&model.Task{ID: 1, Type: req.Type, Points: tt.expectedPoints, RequiredAmount: tt.expectedAmount}, nil)
			}

			task, err := service.CreateTask(context.Background(), &req)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.ErrorIs(t, err, ErrInvalidArgument)
				repo.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedPoints, task.Points)
			repo.AssertExpectations(t)
		})
	}
}

func TestCatalogService_UpdateTask(t *testing.T) {
	repo := &mocks.MockCatalogRepository{}
	service := NewCatalogService(repo)

	_, err := service.UpdateTask(context.Background(), 1, &model.UpdateTaskRequest{})
	assert.ErrorIs(t, err, ErrEmptyUpdate)

	zero := int64(0)
	_, err = service.UpdateTask(context.Background(), 1, &model.UpdateTaskRequest{RequiredAmount: &zero})
	assert.ErrorIs(t, err, ErrInvalidTask)

	title := "Renamed"
	req := &model.UpdateTaskRequest{Title: &title}
	repo.On("UpdateTask", mock.Anything, int64(2), req).Return(nil, repository.ErrNotFound)
	_, err = service.UpdateTask(context.Background(), 2, req)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestCatalogService_DeleteBoostType(t *testing.T) {
	repo := &mocks.MockCatalogRepository{}
	service := NewCatalogService(repo)

	repo.On("DeleteBoostType", mock.Anything, int64(1)).Return(repository.ErrReferenced)
	repo.On("DeleteBoostType", mock.Anything, int64(2)).Return(repository.ErrNotFound)
	repo.On("DeleteBoostType", mock.Anything, int64(3)).Return(nil)

	assert.ErrorIs(t, service.DeleteBoostType(context.Background(), 1), ErrConflict)
	assert.ErrorIs(t, service.DeleteBoostType(context.Background(), 2), ErrBoostTypeNotFound)
	assert.NoError(t, service.DeleteBoostType(context.Background(), 3))
}

func TestCatalogService_CreateBoostType(t *testing.T) {
	repo := &mocks.MockCatalogRepository{}
	service := NewCatalogService(repo)

	invalid := []struct {
		req model.CreateBoostTypeRequest
		err error
	}{
		{model.CreateBoostTypeRequest{Multiplier: 150, DurationHours: 1}, ErrMissingName},
		{model.CreateBoostTypeRequest{Name: "x", DurationHours: 1}, ErrInvalidMultiplier},
		{model.CreateBoostTypeRequest{Name: "x", Multiplier: 150}, ErrInvalidDuration},
		{model.CreateBoostTypeRequest{Name: "x", Multiplier: 150, DurationHours: 1, Price: -1}, ErrInvalidPrice},
	}
	for _, tc := range invalid {
		req := tc.req
		_, err := service.CreateBoostType(context.Background(), &req)
		assert.ErrorIs(t, err, tc.err)
	}

	repo.On("CreateBoostType", mock.Anything, mock.MatchedBy(func(r *model.CreateBoostTypeRequest) bool {
		return r.IconName == "rocket" && r.ColorClass == "blue"
	})).Return(&model.BoostType{ID: 1, Name: "Turbo", Multiplier: 150}, nil)

	boostType, err := service.CreateBoostType(context.Background(), &model.CreateBoostTypeRequest{
		Name:          "Turbo",
		Multiplier:    150,
		DurationHours: 24,
		Price:         500,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), boostType.ID)
	repo.AssertExpectations(t)
}

func TestCatalogService_SeedDefaultTasks(t *testing.T) {
	repo := &mocks.MockCatalogRepository{}
	service := NewCatalogService(repo)

	repo.On("ListTasks", mock.Anything, model.TaskFilter{}).
		Return([]*model.Task{{ID: 1, Title: defaultTasks[0].Title}}, nil)
	repo.On("CreateTask", mock.Anything, mock.MatchedBy(func(r *model.CreateTaskRequest) bool {
		return r.Title != defaultTasks[0].Title
	})).Return(&model.Task{ID: 2}, nil)

	created, err := service.SeedDefaultTasks(context.Background())
	require.NoError(t, err)
	assert.Len(t, created, len(defaultTasks)-1)
	repo.AssertNumberOfCalls(t, "CreateTask", len(defaultTasks)-1)

	for _, def := range defaultTasks {
		task := &model.Task{TelegramAction: def.TelegramAction}
		if def.TelegramAction == nil {
			assert.Equal(t, model.TaskKindProgress, task.Kind(), def.Title)
		} else {
			assert.Equal(t, model.TaskKindExternal, task.Kind(), def.Title)
		}
	}
}
