package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidTaskType       = errors.New("invalid task type")
	ErrInvalidRequiredAmount = errors.New("task required amount must be at least 1")
	ErrInvalidAmount         = errors.New("progress increment must be positive")
	ErrNegativeProgress      = errors.New("progress must not be negative")
	ErrNotExternalTask       = errors.New("task is completed by progress, not by an external action")
)

type TaskType string

const (
	TaskTypeDaily     TaskType = "daily"
	TaskTypeWeekly    TaskType = "weekly"
	TaskTypeSocial    TaskType = "social"
	TaskTypeReferral  TaskType = "referral"
	TaskTypeMilestone TaskType = "milestone"
	TaskTypeSpecial   TaskType = "special"
)

var TaskTypes = []TaskType{
	TaskTypeDaily,
	TaskTypeWeekly,
	TaskTypeSocial,
	TaskTypeReferral,
	TaskTypeMilestone,
	TaskTypeSpecial,
}

func ParseTaskType(s string) (TaskType, error) {
	for _, t := range TaskTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTaskType, s)
}

// TaskDefaults holds the reward and target a new task gets when the
// creator leaves them empty.
type TaskDefaults struct {
	Points         int64
	RequiredAmount int64
}

func (t TaskType) Defaults() TaskDefaults {
	switch t {
	case TaskTypeSocial:
		return TaskDefaults{Points: 100, RequiredAmount: 1}
	case TaskTypeWeekly:
		return TaskDefaults{Points: 200, RequiredAmount: 5}
	case TaskTypeReferral:
		return TaskDefaults{Points: 300, RequiredAmount: 1}
	case TaskTypeMilestone:
		return TaskDefaults{Points: 500, RequiredAmount: 1}
	case TaskTypeSpecial:
		return TaskDefaults{Points: 1000, RequiredAmount: 1}
	default:
		return TaskDefaults{Points: 50, RequiredAmount: 1}
	}
}

// TaskKind separates tasks whose progress is reported by the engine's callers
// from tasks finished by an action outside the app (joining a channel,
// messaging a bot).
type TaskKind int

const (
	TaskKindProgress TaskKind = iota
	TaskKindExternal
)

func (k TaskKind) String() string {
	if k == TaskKindExternal {
		return "external"
	}
	return "progress"
}

type Task struct {
	ID             int64
	Title          string
	Description    string
	Type           TaskType
	Points         int64
	RequiredAmount int64
	IsActive       bool
	TelegramAction *string
	TelegramTarget *string
}

func (t *Task) Kind() TaskKind {
	if t.TelegramAction != nil && *t.TelegramAction != "" {
		return TaskKindExternal
	}
	return TaskKindProgress
}

type TaskFilter struct {
	Type       *TaskType
	ActiveOnly bool
}

type CreateTaskRequest struct {
	Title          string
	Description    string
	Type           TaskType
	Points         int64
	RequiredAmount int64
	IsActive       *bool
	TelegramAction *string
	TelegramTarget *string
}

// UpdateTaskRequest lists the task fields an administrator may change; nil
// fields are left as they are.
type UpdateTaskRequest struct {
	Title          *string
	Description    *string
	Type           *TaskType
	Points         *int64
	RequiredAmount *int64
	IsActive       *bool
	TelegramAction *string
	TelegramTarget *string
}

func (r *UpdateTaskRequest) Empty() bool {
	return r.Title == nil && r.Description == nil && r.Type == nil && r.Points == nil &&
		r.RequiredAmount == nil && r.IsActive == nil && r.TelegramAction == nil && r.TelegramTarget == nil
}

type TaskState int

const (
	TaskStateNotStarted TaskState = iota
	TaskStateInProgress
	TaskStateCompleted
)

func (s TaskState) String() string {
	switch s {
	case TaskStateInProgress:
		return "in_progress"
	case TaskStateCompleted:
		return "completed"
	default:
		return "not_started"
	}
}

type UserTask struct {
	ID          int64
	UserID      int64
	TaskID      int64
	Progress    int64
	IsCompleted bool
	CompletedAt *time.Time
	CreatedAt   time.Time
	Task        *Task
}

func (ut *UserTask) State() TaskState {
	switch {
	case ut.IsCompleted:
		return TaskStateCompleted
	case ut.Progress > 0:
		return TaskStateInProgress
	default:
		return TaskStateNotStarted
	}
}
