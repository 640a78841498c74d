package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"TB_telegram_miniapp/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type Task struct {
	ID             int64   `db:"id"`
	Title          string  `db:"title"`
	Description    string  `db:"description"`
	Type           string  `db:"type"`
	Points         int64   `db:"points"`
	RequiredAmount int64   `db:"required_amount"`
	IsActive       bool    `db:"is_active"`
	TelegramAction *string `db:"telegram_action"`
	TelegramTarget *string `db:"telegram_target"`
}

var taskColumns = []string{
	"id",
	"title",
	"description",
	"type",
	"points",
	"required_amount",
	"is_active",
	"telegram_action",
	"telegram_target",
}

func (t *Task) toModel() *model.Task {
	return &model.Task{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Type:           model.TaskType(t.Type),
		Points:         t.Points,
		RequiredAmount: t.RequiredAmount,
		IsActive:       t.IsActive,
		TelegramAction: t.TelegramAction,
		TelegramTarget: t.TelegramTarget,
	}
}

type UserTask struct {
	ID          int64      `db:"id"`
	UserID      int64      `db:"user_id"`
	TaskID      int64      `db:"task_id"`
	Progress    int64      `db:"progress"`
	IsCompleted bool       `db:"is_completed"`
	CompletedAt *time.Time `db:"completed_at"`
	CreatedAt   time.Time  `db:"created_at"`
}

var userTaskColumns = []string{
	"id",
	"user_id",
	"task_id",
	"progress",
	"is_completed",
	"completed_at",
	"created_at",
}

func (ut *UserTask) toModel() *model.UserTask {
	return &model.UserTask{
		ID:          ut.ID,
		UserID:      ut.UserID,
		TaskID:      ut.TaskID,
		Progress:    ut.Progress,
		IsCompleted: ut.IsCompleted,
		CompletedAt: ut.CompletedAt,
		CreatedAt:   ut.CreatedAt,
	}
}

type userTaskWithTask struct {
	UserTask
	Title          string  `db:"t_title"`
	Description    string  `db:"t_description"`
	Type           string  `db:"t_type"`
	Points         int64   `db:"t_points"`
	RequiredAmount int64   `db:"t_required_amount"`
	TaskActive     bool    `db:"t_is_active"`
	TelegramAction *string `db:"t_telegram_action"`
	TelegramTarget *string `db:"t_telegram_target"`
}

func (ut *userTaskWithTask) toModel() *model.UserTask {
	userTask := ut.UserTask.toModel()
	userTask.Task = &model.Task{
		ID:             ut.TaskID,
		Title:          ut.Title,
		Description:    ut.Description,
		Type:           model.TaskType(ut.Type),
		Points:         ut.Points,
		RequiredAmount: ut.RequiredAmount,
		IsActive:       ut.TaskActive,
		TelegramAction: ut.TelegramAction,
		TelegramTarget: ut.TelegramTarget,
	}
	return userTask
}

func (r *Repository) ListTasks(ctx context.Context, filter model.TaskFilter) ([]*model.Task, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	builder := squirrel.
		Select(taskColumns...).
		From("tasks").
		OrderBy("id ASC").
		PlaceholderFormat(squirrel.Dollar)
	if filter.Type != nil {
		builder = builder.Where(squirrel.Eq{"type": string(*filter.Type)})
	}
	if filter.ActiveOnly {
		builder = builder.Where(squirrel.Eq{"is_active": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var tasks []Task
	err = r.db.SelectContext(ctx, &tasks, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", classify(err))
	}

	out := make([]*model.Task, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].toModel()
	}

	return out, nil
}

func (r *Repository) getTask(ctx context.Context, q sqlx.QueryerContext, id int64) (*model.Task, error) {
	query, args, err := squirrel.
		Select(taskColumns...).
		From("tasks").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var task Task
	err = sqlx.GetContext(ctx, q, &task, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, classify(err)
	}

	return task.toModel(), nil
}

func (r *Repository) GetTask(ctx context.Context, id int64) (*model.Task, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.getTask(ctx, r.db, id)
}

func (r *Repository) CreateTask(ctx context.Context, req *model.CreateTaskRequest) (*model.Task, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	query, args, err := squirrel.
		Insert("tasks").
		SetMap(map[string]interface{}{
			"title":           req.Title,
			"description":     req.Description,
			"type":            string(req.Type),
			"points":          req.Points,
			"required_amount": req.RequiredAmount,
			"is_active":       isActive,
			"telegram_action": req.TelegramAction,
			"telegram_target": req.TelegramTarget,
		}).
		Suffix("RETURNING " + strings.Join(taskColumns, ", ")).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build task insert query: %w", err)
	}

	var created Task
	if err := r.db.GetContext(ctx, &created, query, args...); err != nil {
		return nil, fmt.Errorf("failed to insert task: %w", classify(err))
	}

	return created.toModel(), nil
}

func (r *Repository) UpdateTask(ctx context.Context, id int64, req *model.UpdateTaskRequest) (*model.Task, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	set := map[string]interface{}{}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Type != nil {
		set["type"] = string(*req.Type)
	}
	if req.Points != nil {
		set["points"] = *req.Points
	}
	if req.RequiredAmount != nil {
		set["required_amount"] = *req.RequiredAmount
	}
	if req.IsActive != nil {
		set["is_active"] = *req.IsActive
	}
	if req.TelegramAction != nil {
		set["telegram_action"] = nullIfEmpty(*req.TelegramAction)
	}
	if req.TelegramTarget != nil {
		set["telegram_target"] = nullIfEmpty(*req.TelegramTarget)
	}
	if len(set) == 0 {
		return r.getTask(ctx, r.db, id)
	}

	query, args, err := squirrel.
		Update("tasks").
		SetMap(set).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(taskColumns, ", ")).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build task update query: %w", err)
	}

	var updated Task
	err = r.db.GetContext(ctx, &updated, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", classify(err))
	}

	return updated.toModel(), nil
}

// nullIfEmpty lets an update clear an optional column with "".
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// DeleteTask removes a task together with its progress rows.
func (r *Repository) DeleteTask(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query, args, err := squirrel.
		Delete("tasks").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return classify(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func userTasksQuery() squirrel.SelectBuilder {
	return squirrel.Select(
		"ut.id",
		"ut.user_id",
		"ut.task_id",
		"ut.progress",
		"ut.is_completed",
		"ut.completed_at",
		"ut.created_at",
		"t.title AS t_title",
		"t.description AS t_description",
		"t.type AS t_type",
		"t.points AS t_points",
		"t.required_amount AS t_required_amount",
		"t.is_active AS t_is_active",
		"t.telegram_action AS t_telegram_action",
		"t.telegram_target AS t_telegram_target",
	).
		From("user_tasks ut").
		Join("tasks t ON t.id = ut.task_id").
		PlaceholderFormat(squirrel.Dollar)
}

// ListUserTasks returns the progress rows a user has, each with its task.
// Tasks the user never touched have no row and are not listed.
func (r *Repository) ListUserTasks(ctx context.Context, userID int64, taskType *model.TaskType) ([]*model.UserTask, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	builder := userTasksQuery().
		Where(squirrel.Eq{"ut.user_id": userID}).
		OrderBy("ut.task_id ASC")
	if taskType != nil {
		builder = builder.Where(squirrel.Eq{"t.type": string(*taskType)})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user tasks query: %w", err)
	}

	var rows []userTaskWithTask
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list user tasks: %w", classify(err))
	}

	out := make([]*model.UserTask, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}

	return out, nil
}

func (r *Repository) GetUserTask(ctx context.Context, userID, taskID int64) (*model.UserTask, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query, args, err := userTasksQuery().
		Where(squirrel.Eq{
			"ut.user_id": userID,
			"ut.task_id": taskID,
		}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var row userTaskWithTask
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, classify(err)
	}

	return row.toModel(), nil
}

// lockUserTask returns the user's row for the task, creating an empty one
// first if needed, and holds a row lock on it until the transaction ends.
func (r *Repository) lockUserTask(ctx context.Context, tx *sqlx.Tx, userID, taskID int64, now time.Time) (*model.UserTask, error) {
	insertQuery, insertArgs, err := squirrel.
		Insert("user_tasks").
		SetMap(map[string]interface{}{
			"user_id":      userID,
			"task_id":      taskID,
			"progress":     0,
			"is_completed": false,
			"created_at":   now,
		}).
		Suffix("ON CONFLICT (user_id, task_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user task insert query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return nil, fmt.Errorf("failed to ensure user task: %w", err)
	}

	selectQuery, selectArgs, err := squirrel.
		Select(userTaskColumns...).
		From("user_tasks").
		Where(squirrel.Eq{
			"user_id": userID,
			"task_id": taskID,
		}).
		Suffix("FOR UPDATE").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var userTask UserTask
	if err := tx.GetContext(ctx, &userTask, selectQuery, selectArgs...); err != nil {
		return nil, fmt.Errorf("failed to lock user task: %w", err)
	}

	return userTask.toModel(), nil
}

// AdvanceTaskProgress applies a progress update to the (user, task) row and,
// when the update completes the task, credits the reward in the same
// transaction. The progress write is conditional on the row still being
// incomplete with the progress that was read; a completed row is returned
// unchanged.
func (r *Repository) AdvanceTaskProgress(ctx context.Context, userID, taskID int64, update model.ProgressUpdate, now time.Time) (*model.ProgressResult, error) {
	result := &model.ProgressResult{}

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		task, err := r.getTask(ctx, tx, taskID)
		if err != nil {
			return err
		}
		if _, err := r.getUser(ctx, tx, squirrel.Eq{"id": userID}, false); err != nil {
			return err
		}

		current, err := r.lockUserTask(ctx, tx, userID, taskID, now)
		if err != nil {
			return err
		}

		next, completed, err := model.Advance(task, *current, update, now)
		if err != nil {
			return err
		}

		result.Task = task
		if next.Progress == current.Progress && next.IsCompleted == current.IsCompleted {
			current.Task = task
			result.UserTask = current
			return nil
		}

		query, args, err := squirrel.
			Update("user_tasks").
			Set("progress", next.Progress).
			Set("is_completed", next.IsCompleted).
			Set("completed_at", next.CompletedAt).
			Where(squirrel.Eq{
				"id":           current.ID,
				"is_completed": false,
				"progress":     current.Progress,
			}).
			Suffix("RETURNING " + strings.Join(userTaskColumns, ", ")).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build user task update query: %w", err)
		}

		var updated UserTask
		err = tx.GetContext(ctx, &updated, query, args...)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrConflict
			}
			return fmt.Errorf("failed to update user task: %w", err)
		}

		if completed {
			if err := r.creditTaskRewardWithTx(ctx, tx, userID, task.Points); err != nil {
				return err
			}
		}

		result.UserTask = updated.toModel()
		result.UserTask.Task = task
		result.Changed = true
		result.Completed = completed

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *Repository) creditTaskRewardWithTx(ctx context.Context, tx *sqlx.Tx, userID int64, points int64) error {
	query, args, err := squirrel.
		Update("users").
		Set("points", squirrel.Expr("points + ?", points)).
		Set("completed_tasks_count", squirrel.Expr("completed_tasks_count + 1")).
		Where(squirrel.Eq{"id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to credit task reward: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// ResetTasksByType clears progress on every user row whose task has the
// given type. Points already awarded are left alone.
func (r *Repository) ResetTasksByType(ctx context.Context, taskType model.TaskType) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	subQuery := squirrel.
		Select("id").
		From("tasks").
		Where(squirrel.Eq{"type": string(taskType)})

	query, args, err := squirrel.
		Update("user_tasks").
		Set("progress", 0).
		Set("is_completed", false).
		Set("completed_at", nil).
		Where(squirrel.Expr("task_id IN (?)", subQuery)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build reset query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to reset %s tasks: %w", taskType, classify(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows, nil
}
