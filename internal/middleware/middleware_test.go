package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"TB_telegram_miniapp/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newAdminRouter(a *Authorization, user *auth.TelegramUserData) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestLogger(), Metrics())
	router.GET("/admin", func(c *gin.Context) {
		if user != nil {
			c.Set(auth.ContextKey, user)
		}
		c.Next()
	}, a.AdminOnly(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestAuthorization_AdminOnly(t *testing.T) {
	a := NewAuthorization(AdminConfig{TelegramIDs: []int64{1, 2}})

	tests := []struct {
		name       string
		user       *auth.TelegramUserData
		wantStatus int
	}{
		{name: "No identity", user: nil, wantStatus: http.StatusUnauthorized},
		{name: "Regular user", user: &auth.TelegramUserData{ID: 3}, wantStatus: http.StatusForbidden},
		{name: "Admin", user: &auth.TelegramUserData{ID: 2}, wantStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newAdminRouter(a, tt.user).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRequestLogger_RequestID(t *testing.T) {
	router := newAdminRouter(NewAuthorization(AdminConfig{}), nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}
