package api

import (
	"time"

	"TB_telegram_miniapp/internal/model"
)

type UserResponse struct {
	ID                  int64     `json:"id"`
	TelegramID          string    `json:"telegram_id"`
	Username            *string   `json:"username,omitempty"`
	FirstName           string    `json:"first_name"`
	LastName            *string   `json:"last_name,omitempty"`
	PhotoURL            *string   `json:"photo_url,omitempty"`
	Level               int       `json:"level"`
	Points              int64     `json:"points"`
	MiningSpeed         int64     `json:"mining_speed"`
	LastMiningTime      time.Time `json:"last_mining_time"`
	ReferralCode        string    `json:"referral_code"`
	ReferredBy          *string   `json:"referred_by,omitempty"`
	JoinDate            time.Time `json:"join_date"`
	CompletedTasksCount int       `json:"completed_tasks_count"`
	BoostUsageCount     int       `json:"boost_usage_count"`
}

func newUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:                  u.ID,
		TelegramID:          u.TelegramID,
		Username:            u.Username,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		PhotoURL:            u.PhotoURL,
		Level:               u.Level,
		Points:              u.Points,
		MiningSpeed:         u.MiningSpeed,
		LastMiningTime:      u.LastMiningTime,
		ReferralCode:        u.ReferralCode,
		ReferredBy:          u.ReferredBy,
		JoinDate:            u.JoinDate,
		CompletedTasksCount: u.CompletedTasksCount,
		BoostUsageCount:     u.BoostUsageCount,
	}
}

type AccrualResponse struct {
	ElapsedHours   int64     `json:"elapsed_hours"`
	EffectiveSpeed int64     `json:"effective_speed"`
	EarnedPoints   int64     `json:"earned_points"`
	NextMiningTime time.Time `json:"next_mining_time"`
}

type UserSummaryResponse struct {
	User          UserResponse    `json:"user"`
	ReferralCount int             `json:"referral_count"`
	Accrual       AccrualResponse `json:"accrual"`
}

type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	Username    *string `json:"username,omitempty"`
	FirstName   string  `json:"first_name"`
	PhotoURL    *string `json:"photo_url,omitempty"`
	Points      int64   `json:"points"`
	Level       int     `json:"level"`
	MiningSpeed int64   `json:"mining_speed"`
}

type TaskResponse struct {
	ID             int64   `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Type           string  `json:"type"`
	Kind           string  `json:"kind"`
	Points         int64   `json:"points"`
	RequiredAmount int64   `json:"required_amount"`
	IsActive       bool    `json:"is_active"`
	TelegramAction *string `json:"telegram_action,omitempty"`
	TelegramTarget *string `json:"telegram_target,omitempty"`
}

func newTaskResponse(t *model.Task) TaskResponse {
	return TaskResponse{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Type:           string(t.Type),
		Kind:           t.Kind().String(),
		Points:         t.Points,
		RequiredAmount: t.RequiredAmount,
		IsActive:       t.IsActive,
		TelegramAction: t.TelegramAction,
		TelegramTarget: t.TelegramTarget,
	}
}

func newTaskResponses(tasks []*model.Task) []TaskResponse {
	out := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = newTaskResponse(t)
	}
	return out
}

type UserTaskResponse struct {
	ID          int64         `json:"id"`
	TaskID      int64         `json:"task_id"`
	Progress    int64         `json:"progress"`
	IsCompleted bool          `json:"is_completed"`
	State       string        `json:"state"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	Task        *TaskResponse `json:"task,omitempty"`
}

func newUserTaskResponse(ut *model.UserTask) UserTaskResponse {
	out := UserTaskResponse{
		ID:          ut.ID,
		TaskID:      ut.TaskID,
		Progress:    ut.Progress,
		IsCompleted: ut.IsCompleted,
		State:       ut.State().String(),
		CompletedAt: ut.CompletedAt,
		CreatedAt:   ut.CreatedAt,
	}
	if ut.Task != nil {
		task := newTaskResponse(ut.Task)
		out.Task = &task
	}
	return out
}

type ProgressResponse struct {
	UserTask  UserTaskResponse `json:"user_task"`
	Changed   bool             `json:"changed"`
	Completed bool             `json:"completed"`
	Reward    int64            `json:"reward"`
}

func newProgressResponse(res *model.ProgressResult) ProgressResponse {
	ut := *res.UserTask
	if ut.Task == nil {
		ut.Task = res.Task
	}
	out := ProgressResponse{
		UserTask:  newUserTaskResponse(&ut),
		Changed:   res.Changed,
		Completed: res.Completed,
	}
	if res.Completed && res.Task != nil {
		out.Reward = res.Task.Points
	}
	return out
}

type BoostTypeResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Multiplier    int64  `json:"multiplier"`
	DurationHours int64  `json:"duration_hours"`
	Price         int64  `json:"price"`
	IsActive      bool   `json:"is_active"`
	IconName      string `json:"icon_name"`
	ColorClass    string `json:"color_class"`
	IsPopular     bool   `json:"is_popular"`
}

func newBoostTypeResponse(b *model.BoostType) BoostTypeResponse {
	return BoostTypeResponse{
		ID:            b.ID,
		Name:          b.Name,
		Description:   b.Description,
		Multiplier:    b.Multiplier,
		DurationHours: b.DurationHours,
		Price:         b.Price,
		IsActive:      b.IsActive,
		IconName:      b.IconName,
		ColorClass:    b.ColorClass,
		IsPopular:     b.IsPopular,
	}
}

func newBoostTypeResponses(types []*model.BoostType) []BoostTypeResponse {
	out := make([]BoostTypeResponse, len(types))
	for i, b := range types {
		out[i] = newBoostTypeResponse(b)
	}
	return out
}

type UserBoostResponse struct {
	ID          int64              `json:"id"`
	BoostTypeID int64              `json:"boost_type_id"`
	StartTime   time.Time          `json:"start_time"`
	EndTime     time.Time          `json:"end_time"`
	IsActive    bool               `json:"is_active"`
	BoostType   *BoostTypeResponse `json:"boost_type,omitempty"`
}

func newUserBoostResponse(ub *model.UserBoost) UserBoostResponse {
	out := UserBoostResponse{
		ID:          ub.ID,
		BoostTypeID: ub.BoostTypeID,
		StartTime:   ub.StartTime,
		EndTime:     ub.EndTime,
		IsActive:    ub.IsActive,
	}
	if ub.BoostType != nil {
		bt := newBoostTypeResponse(ub.BoostType)
		out.BoostType = &bt
	}
	return out
}

type PurchaseResponse struct {
	Boost       UserBoostResponse `json:"boost"`
	Points      int64             `json:"points"`
	MiningSpeed int64             `json:"mining_speed"`
}

type ReferralResponse struct {
	ID        int64     `json:"id"`
	Points    int64     `json:"points"`
	CreatedAt time.Time `json:"created_at"`
	Username  *string   `json:"username,omitempty"`
	FirstName string    `json:"first_name,omitempty"`
	PhotoURL  *string   `json:"photo_url,omitempty"`
	Level     int       `json:"level"`
}

func newReferralResponse(r *model.Referral) ReferralResponse {
	out := ReferralResponse{
		ID:        r.ID,
		Points:    r.Points,
		CreatedAt: r.CreatedAt,
	}
	if r.Referred != nil {
		out.Username = r.Referred.Username
		out.FirstName = r.Referred.FirstName
		out.PhotoURL = r.Referred.PhotoURL
		out.Level = r.Referred.Level
	}
	return out
}
