package api

import (
	"net/http"

	"TB_telegram_miniapp/internal/service"
	"TB_telegram_miniapp/pkg/auth"
	"TB_telegram_miniapp/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type userRoutes struct {
	us service.UserServiceI
	rs service.ReferralServiceI
	a  *auth.TelegramAuth
}

func NewUserRoutes(handler *gin.RouterGroup, us service.UserServiceI, rs service.ReferralServiceI, a *auth.TelegramAuth) {
	r := &userRoutes{us: us, rs: rs, a: a}
	h := handler.Group("/users")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.POST("", r.RegisterUser)
		h.GET("/me", r.GetMe)
		h.GET("/leaderboard", r.GetLeaderboard)
		h.GET("/me/referrals", r.GetReferrals)
		h.GET("/me/referrals/count", r.GetReferralCount)
	}
}

type RegisterUserRequest struct {
	ReferralCode *string `json:"referral_code"`
	ReferredBy   *string `json:"referred_by"`
}

type RegisterUserResponse struct {
	User    UserResponse `json:"user"`
	Created bool         `json:"created"`
}

// RegisterUser creates the caller's account on first contact. The inviter's
// code comes from the body or, failing that, from the Mini App start param.
func (r *userRoutes) RegisterUser(c *gin.Context) {
	log := logger.Logger()

	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil && !isEmptyBody(err) {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	telegramUser, ok := auth.UserFromContext(c)
	if !ok {
		log.Error(errMissingIdentity.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	referredBy := req.ReferredBy
	if referredBy == nil && telegramUser.StartParam != "" {
		startParam := telegramUser.StartParam
		referredBy = &startParam
	}

	user, created, err := r.us.RegisterUser(c.Request.Context(), &service.RegisterUserRequest{
		TelegramID:   telegramUser.TelegramID(),
		Username:     optional(telegramUser.Username),
		FirstName:    telegramUser.FirstName,
		LastName:     optional(telegramUser.LastName),
		PhotoURL:     optional(telegramUser.PhotoURL),
		ReferralCode: req.ReferralCode,
		ReferredBy:   referredBy,
	})
	if err != nil {
		log.Error("failed to register user", zap.Error(err), zap.Int64("telegram_id", telegramUser.ID))
		respondError(c, err, "failed to register user")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	c.JSON(status, RegisterUserResponse{
		User:    newUserResponse(user),
		Created: created,
	})
}

// GetMe settles passive mining for the caller and returns the result.
func (r *userRoutes) GetMe(c *gin.Context) {
	log := logger.Logger()

	telegramUser, ok := auth.UserFromContext(c)
	if !ok {
		log.Error(errMissingIdentity.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	summary, err := r.us.GetUserWithAccrual(c.Request.Context(), telegramUser.TelegramID())
	if err != nil {
		log.Error("failed to get user", zap.Error(err), zap.Int64("telegram_id", telegramUser.ID))
		respondError(c, err, "failed to get user")
		return
	}

	c.JSON(http.StatusOK, UserSummaryResponse{
		User:          newUserResponse(summary.User),
		ReferralCount: summary.ReferralCount,
		Accrual: AccrualResponse{
			ElapsedHours:   summary.Accrual.ElapsedHours,
			EffectiveSpeed: summary.Accrual.EffectiveSpeed,
			EarnedPoints:   summary.Accrual.EarnedPoints,
			NextMiningTime: summary.Accrual.NextMiningTime,
		},
	})
}

func (r *userRoutes) GetLeaderboard(c *gin.Context) {
	log := logger.Logger()

	users, err := r.us.GetLeaderboard(c.Request.Context())
	if err != nil {
		log.Error("failed to get leaderboard", zap.Error(err))
		respondError(c, err, "failed to get leaderboard")
		return
	}

	response := make([]LeaderboardEntry, len(users))
	for i, user := range users {
		response[i] = LeaderboardEntry{
			Rank:        i + 1,
			Username:    user.Username,
			FirstName:   user.FirstName,
			PhotoURL:    user.PhotoURL,
			Points:      user.Points,
			Level:       user.Level,
			MiningSpeed: user.MiningSpeed,
		}
	}

	c.JSON(http.StatusOK, response)
}

func (r *userRoutes) GetReferrals(c *gin.Context) {
	log := logger.Logger()

	telegramUser, userID, ok := currentUser(c, r.us)
	if !ok {
		return
	}

	referrals, err := r.rs.ListReferrals(c.Request.Context(), userID)
	if err != nil {
		log.Error("failed to get user referrals", zap.Error(err), zap.Int64("telegram_id", telegramUser.ID))
		respondError(c, err, "failed to get user referrals")
		return
	}

	out := make([]ReferralResponse, len(referrals))
	for i, ref := range referrals {
		out[i] = newReferralResponse(ref)
	}

	c.JSON(http.StatusOK, out)
}

func (r *userRoutes) GetReferralCount(c *gin.Context) {
	log := logger.Logger()

	telegramUser, userID, ok := currentUser(c, r.us)
	if !ok {
		return
	}

	count, err := r.rs.CountReferrals(c.Request.Context(), userID)
	if err != nil {
		log.Error("failed to count user referrals", zap.Error(err), zap.Int64("telegram_id", telegramUser.ID))
		respondError(c, err, "failed to count user referrals")
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
