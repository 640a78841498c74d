package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := writeConfig(t, `
telegramAuth:
  debugMode: true
`)

	cfg, err := loadConfig(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, int64(10), cfg.Economy.DefaultMiningSpeed)
	assert.Equal(t, int64(100), cfg.Economy.ReferralBonus)
	assert.Equal(t, time.Minute, cfg.Scheduler.BoostExpiryInterval)
	assert.Equal(t, "0 0 * * 1", cfg.Scheduler.WeeklyResetCron)
	assert.Equal(t, 5*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := writeConfig(t, `
database:
  host: db
  sslMode: require
telegramAuth:
  telegramBotToken: "123:abc"
economy:
  referralBonus: 250
scheduler:
  boostExpiryInterval: 30s
admin:
  telegramIds: [42, 1001]
`)
	t.Setenv("APP_ECONOMY_DEFAULTMININGSPEED", "25")
	t.Setenv("APP_SERVER_PORT", "9090")

	cfg, err := loadConfig(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, "require", cfg.Database.SSLMode)
	assert.Equal(t, "123:abc", cfg.TelegramAuth.TelegramBotToken)
	assert.Equal(t, int64(250), cfg.Economy.ReferralBonus)
	assert.Equal(t, int64(25), cfg.Economy.DefaultMiningSpeed)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Scheduler.BoostExpiryInterval)
	assert.Equal(t, []int64{42, 1001}, cfg.Admin.TelegramIDs)
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "Zero referral bonus",
			content: `
telegramAuth:
  debugMode: true
economy:
  referralBonus: 0
`,
		},
		{
			name: "Negative mining speed",
			content: `
telegramAuth:
  debugMode: true
economy:
  defaultMiningSpeed: -1
`,
		},
		{
			name:    "Missing bot token",
			content: "logLevel: debug\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(viper.New(), writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}
