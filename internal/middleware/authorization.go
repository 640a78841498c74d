package middleware

import (
	"net/http"

	"TB_telegram_miniapp/pkg/auth"
	"TB_telegram_miniapp/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type AdminConfig struct {
	TelegramIDs []int64 `json:"telegramIds"`
}

type Authorization struct {
	admins map[int64]struct{}
}

func NewAuthorization(cfg AdminConfig) *Authorization {
	admins := make(map[int64]struct{}, len(cfg.TelegramIDs))
	for _, id := range cfg.TelegramIDs {
		admins[id] = struct{}{}
	}
	return &Authorization{
		admins: admins,
	}
}

func (a *Authorization) IsAdmin(telegramID int64) bool {
	_, ok := a.admins[telegramID]
	return ok
}

// AdminOnly must run after the Telegram auth middleware.
func (a *Authorization) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		telegramUser, ok := auth.UserFromContext(c)
		if !ok {
			log.Error("telegram user data not found in context")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if !a.IsAdmin(telegramUser.ID) {
			log.Info("unauthorized access attempt to admin endpoint",
				zap.Int64("telegram_id", telegramUser.ID))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}

		c.Set("is_admin", true)
		c.Next()
	}
}
