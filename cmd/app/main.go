package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"TB_telegram_miniapp/internal/api"
	"TB_telegram_miniapp/internal/middleware"
	"TB_telegram_miniapp/internal/repository"
	"TB_telegram_miniapp/internal/scheduler"
	"TB_telegram_miniapp/internal/service"
	"TB_telegram_miniapp/pkg/auth"
	"TB_telegram_miniapp/pkg/logger"
	"TB_telegram_miniapp/pkg/telegram"
	"go.uber.org/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	if err := repository.RunMigrations(cfg.Database.GetDatabaseURL()); err != nil {
		zapLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	referralService := service.NewReferralService(repo, cfg.Economy.ReferralBonus)
	userService := service.NewUserService(repo, referralService, cfg.Economy)
	boostService := service.NewBoostService(repo)
	taskService := service.NewTaskService(repo)
	catalogService := service.NewCatalogService(repo)
	svc := service.NewService(userService, boostService, taskService, referralService, catalogService)

	telegramAuth := auth.NewTelegramAuth(cfg.TelegramAuth.TelegramBotToken, cfg.TelegramAuth.DebugMode)
	authz := middleware.NewAuthorization(cfg.Admin)

	var verifier api.MembershipVerifier
	if !cfg.TelegramAuth.DebugMode {
		membership, err := telegram.NewMembershipVerifier(cfg.TelegramAuth.TelegramBotToken, false)
		if err != nil {
			zapLogger.Fatal("Failed to initialize membership verifier", zap.Error(err))
		}
		verifier = membership
	} else {
		zapLogger.Warn("Debug mode: init data signatures and channel membership are not verified")
	}

	if cfg.Scheduler.Enabled {
		jobs := scheduler.New(cfg.Scheduler, svc.BoostService, svc.TaskService)
		if err := jobs.Start(); err != nil {
			zapLogger.Fatal("Failed to start scheduler", zap.Error(err))
		}
		defer jobs.Stop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	config.AllowHeaders = []string{"*"}
	config.ExposeHeaders = []string{middleware.RequestIDHeader, "Retry-After"}
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	a := router.Group("/api/v1")
	api.NewHealthRoutes(a, repo)
	api.NewUserRoutes(a, svc.UserService, svc.ReferralService, telegramAuth)
	api.NewTaskRoutes(a, svc.TaskService, svc.UserService, verifier, telegramAuth)
	api.NewBoostRoutes(a, svc.BoostService, svc.UserService, telegramAuth)
	api.NewAdminRoutes(a, svc.CatalogService, svc.BoostService, svc.TaskService, telegramAuth, authz)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		zapLogger.Info("Starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shut down", zap.Error(err))
	}
}
