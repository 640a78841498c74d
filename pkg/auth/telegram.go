package auth

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"TB_telegram_miniapp/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	initdata "github.com/telegram-mini-apps/init-data-golang"
)

var errMissingUser = errors.New("init data carries no user")

const (
	expTime = 24 * time.Hour

	// ContextKey is where the middleware stores *TelegramUserData.
	ContextKey = "telegram_user"

	authScheme = "Telegram "
)

type Config struct {
	TelegramBotToken string `json:"telegramBotToken"`
	DebugMode        bool   `json:"debugMode"`
}

type TelegramAuth struct {
	botToken  string
	debugMode bool
}

func NewTelegramAuth(botToken string, debugMode bool) *TelegramAuth {
	return &TelegramAuth{
		botToken:  botToken,
		debugMode: debugMode,
	}
}

// TelegramAuthMiddleware authenticates requests carrying Mini App init data
// in an "Authorization: Telegram <init data>" header. Debug mode skips the
// signature check.
func (t *TelegramAuth) TelegramAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Info("missing authorization header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}

		if !strings.HasPrefix(authHeader, authScheme) {
			log.Info("invalid authorization header format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}

		initData := strings.TrimPrefix(authHeader, authScheme)
		if !t.debugMode {
			if err := initdata.Validate(initData, t.botToken, expTime); err != nil {
				log.Info("invalid telegram init data", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid telegram auth data"})
				return
			}
		}

		telegramUserData, err := ExtractTelegramData(initData)
		if err != nil {
			log.Error("failed to extract telegram data", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid telegram data"})
			return
		}

		c.Set(ContextKey, telegramUserData)
		c.Next()
	}
}

// TelegramUserData is the identity taken from validated init data. The
// engine uses TelegramID as the stable external user id.
type TelegramUserData struct {
	ID         int64
	Username   string
	FirstName  string
	LastName   string
	PhotoURL   string
	StartParam string
	AuthDate   time.Time
}

func (d *TelegramUserData) TelegramID() string {
	return strconv.FormatInt(d.ID, 10)
}

func ExtractTelegramData(raw string) (*TelegramUserData, error) {
	data, err := initdata.Parse(raw)
	if err != nil {
		return nil, err
	}
	if data.User.ID == 0 {
		return nil, errMissingUser
	}

	return &TelegramUserData{
		ID:         data.User.ID,
		Username:   data.User.Username,
		FirstName:  data.User.FirstName,
		LastName:   data.User.LastName,
		PhotoURL:   data.User.PhotoURL,
		StartParam: data.StartParam,
		AuthDate:   data.AuthDate(),
	}, nil
}

// UserFromContext returns the identity stored by TelegramAuthMiddleware.
func UserFromContext(c *gin.Context) (*TelegramUserData, bool) {
	value, exists := c.Get(ContextKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*TelegramUserData)
	return user, ok
}
