package api

import (
	"errors"
	"net/http"

	"TB_telegram_miniapp/internal/model"
	"TB_telegram_miniapp/internal/service"
	"TB_telegram_miniapp/pkg/auth"
	"TB_telegram_miniapp/pkg/logger"
	"TB_telegram_miniapp/pkg/telegram"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

// MembershipVerifier confirms that a Telegram user belongs to a chat.
type MembershipVerifier interface {
	IsMember(userID int64, target string) (bool, error)
}

type taskRoutes struct {
	ts       service.TaskServiceI
	us       service.UserServiceI
	verifier MembershipVerifier
	a        *auth.TelegramAuth
}

// NewTaskRoutes registers the catalog and per-user task routes. A nil
// verifier accepts join_channel completions without asking Telegram.
func NewTaskRoutes(handler *gin.RouterGroup, ts service.TaskServiceI, us service.UserServiceI, verifier MembershipVerifier, a *auth.TelegramAuth) {
	r := &taskRoutes{ts: ts, us: us, verifier: verifier, a: a}

	tasks := handler.Group("/tasks")
	tasks.Use(a.TelegramAuthMiddleware())
	{
		tasks.GET("", r.ListTasks)
	}

	h := handler.Group("/users/me/tasks")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.GET("", r.ListUserTasks)
		h.GET("/:task_id", r.GetTaskProgress)
		h.POST("/:task_id/progress", r.SetProgress)
		h.POST("/:task_id/increment", r.IncrementProgress)
		h.POST("/:task_id/complete", r.CompleteTask)
	}
}

func (r *taskRoutes) ListTasks(c *gin.Context) {
	log := logger.Logger()

	var taskType *model.TaskType
	if raw := c.Query("type"); raw != "" {
		parsed, err := model.ParseTaskType(raw)
		if err != nil {
			log.Info("invalid task type filter", zap.String("type", raw))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		taskType = &parsed
	}

	tasks, err := r.ts.ListTasks(c.Request.Context(), taskType)
	if err != nil {
		log.Error("failed to list tasks", zap.Error(err))
		respondError(c, err, "failed to list tasks")
		return
	}

	c.JSON(http.StatusOK, newTaskResponses(tasks))
}

func (r *taskRoutes) ListUserTasks(c *gin.Context) {
	log := logger.Logger()

	telegramUser, userID, ok := currentUser(c, r.us)
	if !ok {
		return
	}

	userTasks, err := r.ts.ListUserTasks(c.Request.Context(), userID)
	if err != nil {
		log.Error("failed to list user tasks", zap.Error(err), zap.Int64("telegram_id", telegramUser.ID))
		respondError(c, err, "failed to list user tasks")
		return
	}

	out := make([]UserTaskResponse, len(userTasks))
	for i, ut := range userTasks {
		out[i] = newUserTaskResponse(ut)
	}

	c.JSON(http.StatusOK, out)
}

func (r *taskRoutes) GetTaskProgress(c *gin.Context) {
	log := logger.Logger()

	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}
	telegramUser, userID, ok := currentUser(c, r.us)
	if !ok {
		return
	}

	userTask, err := r.ts.GetTaskProgress(c.Request.Context(), userID, taskID)
	if err != nil {
		log.Info("failed to get task progress", zap.Error(err),
			zap.Int64("telegram_id", telegramUser.ID), zap.Int64("task_id", taskID))
		respondError(c, err, "failed to get task progress")
		return
	}

	c.JSON(http.StatusOK, newUserTaskResponse(userTask))
}

type SetProgressRequest struct {
	Progress *int64 `json:"progress" binding:"required"`
}

func (r *taskRoutes) SetProgress(c *gin.Context) {
	log := logger.Logger()

	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}

	var req SetProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	telegramUser, userID, ok := currentUser(c, r.us)
	if !ok {
		return
	}

	res, err := r.ts.SetProgress(c.Request.Context(), userID, taskID, *req.Progress)
	if err != nil {
		log.Error("failed to set task progress", zap.Error(err),
			zap.Int64("telegram_id", telegramUser.ID), zap.Int64("task_id", taskID))
		respondError(c, err, "failed to set task progress")
		return
	}

	c.JSON(http.StatusOK, newProgressResponse(res))
}

type IncrementProgressRequest struct {
	Amount *int64 `json:"amount"`
}

// IncrementProgress adds amount to the caller's progress; amount defaults to 1.
func (r *taskRoutes) IncrementProgress(c *gin.Context) {
	log := logger.Logger()

	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}

	var req IncrementProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil && !isEmptyBody(err) {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	amount := int64(1)
	if req.Amount != nil {
		amount = *req.Amount
	}

	telegramUser, userID, ok := currentUser(c, r.us)
	if !ok {
		return
	}

	res, err := r.ts.IncrementProgress(c.Request.Context(), userID, taskID, amount)
	if err != nil {
		log.Error("failed to increment task progress", zap.Error(err),
			zap.Int64("telegram_id", telegramUser.ID), zap.Int64("task_id", taskID))
		respondError(c, err, "failed to increment task progress")
		return
	}

	c.JSON(http.StatusOK, newProgressResponse(res))
}

// CompleteTask finishes an externally completed task. join_channel tasks are
// checked against the chat's member list first.
func (r *taskRoutes) CompleteTask(c *gin.Context) {
	log := logger.Logger()

	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}
	telegramUser, userID, ok := currentUser(c, r.us)
	if !ok {
		return
	}

	task, err := r.ts.GetTask(c.Request.Context(), taskID)
	if err != nil {
		log.Error("failed to get task", zap.Error(err), zap.Int64("task_id", taskID))
		respondError(c, err, "failed to get task")
		return
	}

	if r.needsMembershipCheck(task) {
		member, err := r.verifier.IsMember(telegramUser.ID, *task.TelegramTarget)
		switch {
		case errors.Is(err, telegram.ErrUnverifiableTarget):
			log.Info("skipping membership check for unverifiable target",
				zap.Int64("task_id", taskID), zap.String("target", *task.TelegramTarget))
		case err != nil:
			log.Error("failed to verify channel membership", zap.Error(err),
				zap.Int64("telegram_id", telegramUser.ID), zap.Int64("task_id", taskID))
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to verify channel membership"})
			return
		case !member:
			log.Info("channel membership not confirmed",
				zap.Int64("telegram_id", telegramUser.ID), zap.Int64("task_id", taskID))
			c.JSON(http.StatusForbidden, gin.H{"error": "join the channel first"})
			return
		}
	}

	res, err := r.ts.CompleteTask(c.Request.Context(), userID, taskID)
	if err != nil {
		log.Error("failed to complete task", zap.Error(err),
			zap.Int64("telegram_id", telegramUser.ID), zap.Int64("task_id", taskID))
		respondError(c, err, "failed to complete task")
		return
	}

	c.JSON(http.StatusOK, newProgressResponse(res))
}

func (r *taskRoutes) needsMembershipCheck(task *model.Task) bool {
	if r.verifier == nil {
		return false
	}
	return task.TelegramAction != nil && *task.TelegramAction == service.ActionJoinChannel &&
		task.TelegramTarget != nil && *task.TelegramTarget != ""
}
