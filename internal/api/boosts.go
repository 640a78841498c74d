package api

import (
	"net/http"
	"strconv"

	"TB_telegram_miniapp/internal/service"
	"TB_telegram_miniapp/pkg/auth"
	"TB_telegram_miniapp/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type boostRoutes struct {
	bs service.BoostServiceI
	us service.UserServiceI
	a  *auth.TelegramAuth
}

func NewBoostRoutes(handler *gin.RouterGroup, bs service.BoostServiceI, us service.UserServiceI, a *auth.TelegramAuth) {
	r := &boostRoutes{bs: bs, us: us, a: a}

	boosts := handler.Group("/boosts")
	boosts.Use(a.TelegramAuthMiddleware())
	{
		boosts.GET("", r.ListBoostTypes)
	}

	h := handler.Group("/users/me/boosts")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.GET("", r.ListUserBoosts)
		h.POST("", r.PurchaseBoost)
	}
}

func (r *boostRoutes) ListBoostTypes(c *gin.Context) {
	log := logger.Logger()

	boostTypes, err := r.bs.ListBoostTypes(c.Request.Context())
	if err != nil {
		log.Error("failed to list boost types", zap.Error(err))
		respondError(c, err, "failed to list boost types")
		return
	}

	c.JSON(http.StatusOK, newBoostTypeResponses(boostTypes))
}

func (r *boostRoutes) ListUserBoosts(c *gin.Context) {
	log := logger.Logger()

	activeOnly := false
	if raw := c.Query("active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			log.Info("invalid active filter", zap.String("active", raw))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid active"})
			return
		}
		activeOnly = parsed
	}

	telegramUser, userID, ok := currentUser(c, r.us)
	if !ok {
		return
	}

	boosts, err := r.bs.ListUserBoosts(c.Request.Context(), userID, activeOnly)
	if err != nil {
		log.Error("failed to list user boosts", zap.Error(err), zap.Int64("telegram_id", telegramUser.ID))
		respondError(c, err, "failed to list user boosts")
		return
	}

	out := make([]UserBoostResponse, len(boosts))
	for i, b := range boosts {
		out[i] = newUserBoostResponse(b)
	}

	c.JSON(http.StatusOK, out)
}

type PurchaseBoostRequest struct {
	BoostTypeID int64 `json:"boost_type_id" binding:"required"`
}

func (r *boostRoutes) PurchaseBoost(c *gin.Context) {
	log := logger.Logger()

	var req PurchaseBoostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	telegramUser, userID, ok := currentUser(c, r.us)
	if !ok {
		return
	}

	purchase, err := r.bs.PurchaseBoost(c.Request.Context(), userID, req.BoostTypeID)
	if err != nil {
		log.Error("failed to purchase boost", zap.Error(err),
			zap.Int64("telegram_id", telegramUser.ID), zap.Int64("boost_type_id", req.BoostTypeID))
		respondError(c, err, "failed to purchase boost")
		return
	}

	c.JSON(http.StatusCreated, PurchaseResponse{
		Boost:       newUserBoostResponse(purchase.UserBoost),
		Points:      purchase.User.Points,
		MiningSpeed: purchase.User.MiningSpeed,
	})
}
