package api

import (
	"net/http"

	"TB_telegram_miniapp/internal/middleware"
	"TB_telegram_miniapp/internal/model"
	"TB_telegram_miniapp/internal/service"
	"TB_telegram_miniapp/pkg/auth"
	"TB_telegram_miniapp/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type adminRoutes struct {
	cs service.CatalogServiceI
	bs service.BoostServiceI
	ts service.TaskServiceI
}

func NewAdminRoutes(
	handler *gin.RouterGroup,
	cs service.CatalogServiceI,
	bs service.BoostServiceI,
	ts service.TaskServiceI,
	a *auth.TelegramAuth,
	authz *middleware.Authorization,
) {
	r := &adminRoutes{cs: cs, bs: bs, ts: ts}
	h := handler.Group("/admin")
	h.Use(a.TelegramAuthMiddleware(), authz.AdminOnly())
	{
		h.GET("/tasks", r.ListTasks)
		h.POST("/tasks", r.CreateTask)
		h.PATCH("/tasks/:task_id", r.UpdateTask)
		h.DELETE("/tasks/:task_id", r.DeleteTask)
		h.POST("/tasks/seed", r.SeedTasks)
		h.POST("/tasks/reset", r.ResetTasks)

		h.GET("/boosts", r.ListBoostTypes)
		h.POST("/boosts", r.CreateBoostType)
		h.PATCH("/boosts/:boost_type_id", r.UpdateBoostType)
		h.DELETE("/boosts/:boost_type_id", r.DeleteBoostType)
		h.POST("/boosts/expire", r.ExpireBoosts)
	}
}

type CreateTaskRequest struct {
	Title          string  `json:"title" binding:"required"`
	Description    string  `json:"description"`
	Type           string  `json:"type" binding:"required"`
	Points         int64   `json:"points"`
	RequiredAmount int64   `json:"required_amount"`
	IsActive       *bool   `json:"is_active"`
	TelegramAction *string `json:"telegram_action"`
	TelegramTarget *string `json:"telegram_target"`
}

type UpdateTaskRequest struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	Type           *string `json:"type"`
	Points         *int64  `json:"points"`
	RequiredAmount *int64  `json:"required_amount"`
	IsActive       *bool   `json:"is_active"`
	TelegramAction *string `json:"telegram_action"`
	TelegramTarget *string `json:"telegram_target"`
}

type ResetTasksRequest struct {
	Type string `json:"type" binding:"required"`
}

type CreateBoostTypeRequest struct {
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
	Multiplier    int64  `json:"multiplier"`
	DurationHours int64  `json:"duration_hours"`
	Price         int64  `json:"price"`
	IsActive      *bool  `json:"is_active"`
	IconName      string `json:"icon_name"`
	ColorClass    string `json:"color_class"`
	IsPopular     bool   `json:"is_popular"`
}

type UpdateBoostTypeRequest struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	Multiplier    *int64  `json:"multiplier"`
	DurationHours *int64  `json:"duration_hours"`
	Price         *int64  `json:"price"`
	IsActive      *bool   `json:"is_active"`
	IconName      *string `json:"icon_name"`
	ColorClass    *string `json:"color_class"`
	IsPopular     *bool   `json:"is_popular"`
}

func (r *adminRoutes) ListTasks(c *gin.Context) {
	log := logger.Logger()

	var taskType *model.TaskType
	if raw := c.Query("type"); raw != "" {
		parsed, err := model.ParseTaskType(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		taskType = &parsed
	}

	tasks, err := r.cs.ListAllTasks(c.Request.Context(), taskType)
	if err != nil {
		log.Error("failed to list tasks", zap.Error(err))
		respondError(c, err, "failed to list tasks")
		return
	}

	c.JSON(http.StatusOK, newTaskResponses(tasks))
}

func (r *adminRoutes) CreateTask(c *gin.Context) {
	log := logger.Logger()

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	task, err := r.cs.CreateTask(c.Request.Context(), &model.CreateTaskRequest{
		Title:          req.Title,
		Description:    req.Description,
		Type:           model.TaskType(req.Type),
		Points:         req.Points,
		RequiredAmount: req.RequiredAmount,
		IsActive:       req.IsActive,
		TelegramAction: req.TelegramAction,
		TelegramTarget: req.TelegramTarget,
	})
	if err != nil {
		log.Error("failed to create task", zap.Error(err))
		respondError(c, err, "failed to create task")
		return
	}

	c.JSON(http.StatusCreated, newTaskResponse(task))
}

func (r *adminRoutes) UpdateTask(c *gin.Context) {
	log := logger.Logger()

	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	update := &model.UpdateTaskRequest{
		Title:          req.Title,
		Description:    req.Description,
		Points:         req.Points,
		RequiredAmount: req.RequiredAmount,
		IsActive:       req.IsActive,
		TelegramAction: req.TelegramAction,
		TelegramTarget: req.TelegramTarget,
	}
	if req.Type != nil {
		taskType := model.TaskType(*req.Type)
		update.Type = &taskType
	}

	task, err := r.cs.UpdateTask(c.Request.Context(), taskID, update)
	if err != nil {
		log.Error("failed to update task", zap.Error(err), zap.Int64("task_id", taskID))
		respondError(c, err, "failed to update task")
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (r *adminRoutes) DeleteTask(c *gin.Context) {
	log := logger.Logger()

	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}

	if err := r.cs.DeleteTask(c.Request.Context(), taskID); err != nil {
		log.Error("failed to delete task", zap.Error(err), zap.Int64("task_id", taskID))
		respondError(c, err, "failed to delete task")
		return
	}

	c.Status(http.StatusNoContent)
}

func (r *adminRoutes) SeedTasks(c *gin.Context) {
	log := logger.Logger()

	created, err := r.cs.SeedDefaultTasks(c.Request.Context())
	if err != nil {
		log.Error("failed to seed tasks", zap.Error(err))
		respondError(c, err, "failed to seed tasks")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"created": len(created),
		"tasks":   newTaskResponses(created),
	})
}

func (r *adminRoutes) ResetTasks(c *gin.Context) {
	log := logger.Logger()

	var req ResetTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	reset, err := r.ts.ResetByType(c.Request.Context(), model.TaskType(req.Type))
	if err != nil {
		log.Error("failed to reset tasks", zap.Error(err), zap.String("type", req.Type))
		respondError(c, err, "failed to reset tasks")
		return
	}

	c.JSON(http.StatusOK, gin.H{"reset": reset})
}

func (r *adminRoutes) ListBoostTypes(c *gin.Context) {
	log := logger.Logger()

	boostTypes, err := r.cs.ListAllBoostTypes(c.Request.Context())
	if err != nil {
		log.Error("failed to list boost types", zap.Error(err))
		respondError(c, err, "failed to list boost types")
		return
	}

	c.JSON(http.StatusOK, newBoostTypeResponses(boostTypes))
}

func (r *adminRoutes) CreateBoostType(c *gin.Context) {
	log := logger.Logger()

	var req CreateBoostTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	boostType, err := r.cs.CreateBoostType(c.Request.Context(), &model.CreateBoostTypeRequest{
		Name:          req.Name,
		Description:   req.Description,
		Multiplier:    req.Multiplier,
		DurationHours: req.DurationHours,
		Price:         req.Price,
		IsActive:      req.IsActive,
		IconName:      req.IconName,
		ColorClass:    req.ColorClass,
		IsPopular:     req.IsPopular,
	})
	if err != nil {
		log.Error("failed to create boost type", zap.Error(err))
		respondError(c, err, "failed to create boost type")
		return
	}

	c.JSON(http.StatusCreated, newBoostTypeResponse(boostType))
}

func (r *adminRoutes) UpdateBoostType(c *gin.Context) {
	log := logger.Logger()

	boostTypeID, ok := parseIDParam(c, "boost_type_id")
	if !ok {
		return
	}

	var req UpdateBoostTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	boostType, err := r.cs.UpdateBoostType(c.Request.Context(), boostTypeID, &model.UpdateBoostTypeRequest{
		Name:          req.Name,
		Description:   req.Description,
		Multiplier:    req.Multiplier,
		DurationHours: req.DurationHours,
		Price:         req.Price,
		IsActive:      req.IsActive,
		IconName:      req.IconName,
		ColorClass:    req.ColorClass,
		IsPopular:     req.IsPopular,
	})
	if err != nil {
		log.Error("failed to update boost type", zap.Error(err), zap.Int64("boost_type_id", boostTypeID))
		respondError(c, err, "failed to update boost type")
		return
	}

	c.JSON(http.StatusOK, newBoostTypeResponse(boostType))
}

func (r *adminRoutes) DeleteBoostType(c *gin.Context) {
	log := logger.Logger()

	boostTypeID, ok := parseIDParam(c, "boost_type_id")
	if !ok {
		return
	}

	if err := r.cs.DeleteBoostType(c.Request.Context(), boostTypeID); err != nil {
		log.Error("failed to delete boost type", zap.Error(err), zap.Int64("boost_type_id", boostTypeID))
		respondError(c, err, "failed to delete boost type")
		return
	}

	c.Status(http.StatusNoContent)
}

func (r *adminRoutes) ExpireBoosts(c *gin.Context) {
	log := logger.Logger()

	expired, err := r.bs.ExpireBoosts(c.Request.Context())
	if err != nil {
		log.Error("failed to expire boosts", zap.Error(err))
		respondError(c, err, "failed to expire boosts")
		return
	}

	c.JSON(http.StatusOK, gin.H{"expired": expired})
}
