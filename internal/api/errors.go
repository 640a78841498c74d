package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"TB_telegram_miniapp/internal/service"
	"TB_telegram_miniapp/pkg/auth"
	"TB_telegram_miniapp/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

const retryAfterSeconds = "1"

var errMissingIdentity = errors.New("telegram user data not found in context")

// respondError writes the status matching err's class. Unclassified errors
// become 500 with msg as the body; classified ones expose the error text.
func respondError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInsufficientFunds):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "insufficient points"})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrStoreUnavailable):
		c.Header("Retry-After", retryAfterSeconds)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

// currentUser resolves the authenticated caller to a stored user. It writes
// the error response itself and reports false when the handler must stop.
func currentUser(c *gin.Context, us service.UserServiceI) (*auth.TelegramUserData, int64, bool) {
	log := logger.Logger()

	telegramUser, ok := auth.UserFromContext(c)
	if !ok {
		log.Error(errMissingIdentity.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return nil, 0, false
	}

	user, err := us.GetUserByTelegramID(c.Request.Context(), telegramUser.TelegramID())
	if err != nil {
		log.Error("failed to get user", zap.Error(err), zap.Int64("telegram_id", telegramUser.ID))
		respondError(c, err, "failed to get user")
		return nil, 0, false
	}

	return telegramUser, user.ID, true
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		logger.Logger().Info("failed to parse path id", zap.String("param", name), zap.String("value", c.Param(name)))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// isEmptyBody reports a bind failure caused only by a request without a body.
func isEmptyBody(err error) bool {
	return errors.Is(err, io.EOF)
}
