package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"TB_telegram_miniapp/internal/middleware"
	"TB_telegram_miniapp/internal/repository"
	"TB_telegram_miniapp/internal/scheduler"
	"TB_telegram_miniapp/internal/service"
	"TB_telegram_miniapp/pkg/auth"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
	envFile      = ".env"
)

type Config struct {
	Database repository.Config `yaml:"database"`
	Server   ServerConfig      `yaml:"server"`

	TelegramAuth auth.Config           `yaml:"telegramAuth"`
	Economy      service.EconomyConfig `yaml:"economy"`
	Scheduler    scheduler.Config      `yaml:"scheduler"`
	Admin        middleware.AdminConfig `yaml:"admin"`

	LogLevel string `yaml:"logLevel"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "miniapp")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 20)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.queryTimeout", 5*time.Second)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdownTimeout", 10*time.Second)

	v.SetDefault("telegramAuth.telegramBotToken", "")
	v.SetDefault("telegramAuth.debugMode", false)

	v.SetDefault("economy.defaultMiningSpeed", 10)
	v.SetDefault("economy.referralBonus", 100)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.boostExpiryInterval", time.Minute)
	v.SetDefault("scheduler.weeklyResetCron", "0 0 * * 1")
	v.SetDefault("scheduler.jobTimeout", 30*time.Second)

	v.SetDefault("admin.telegramIds", []int64{})

	v.SetDefault("logLevel", "info")
}

// LoadConfig reads ./config.yaml when present. Every key can be overridden
// with an APP_ prefixed variable, from the environment or a .env file.
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load(envFile)
	return loadConfig(viper.New(), configPath)
}

func loadConfig(v *viper.Viper, path string) (*Config, error) {
	v.SetConfigName(configName)
	v.AddConfigPath(path)
	v.SetConfigType(configFormat)

	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Economy.DefaultMiningSpeed <= 0:
		return errors.New("economy.defaultMiningSpeed must be positive")
	case c.Economy.ReferralBonus <= 0:
		return errors.New("economy.referralBonus must be positive")
	case c.Database.QueryTimeout <= 0:
		return errors.New("database.queryTimeout must be positive")
	case c.Server.ShutdownTimeout <= 0:
		return errors.New("server.shutdownTimeout must be positive")
	case c.Scheduler.Enabled && c.Scheduler.BoostExpiryInterval <= 0:
		return errors.New("scheduler.boostExpiryInterval must be positive")
	case c.Scheduler.JobTimeout <= 0:
		return errors.New("scheduler.jobTimeout must be positive")
	case !c.TelegramAuth.DebugMode && c.TelegramAuth.TelegramBotToken == "":
		return errors.New("telegramAuth.telegramBotToken is required outside debug mode")
	}
	return nil
}
