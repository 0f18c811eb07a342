package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/joyworks/workshop-api/api/swagger"
	"github.com/joyworks/workshop-api/internal/events"
	"github.com/joyworks/workshop-api/internal/handler"
	"github.com/joyworks/workshop-api/internal/notifier"
	"github.com/joyworks/workshop-api/internal/repository"
	"github.com/joyworks/workshop-api/internal/service"
	"github.com/joyworks/workshop-api/pkg/cache"
	"github.com/joyworks/workshop-api/pkg/config"
	"github.com/joyworks/workshop-api/pkg/database"
	"github.com/joyworks/workshop-api/pkg/logger"
	corsmiddleware "github.com/joyworks/workshop-api/pkg/middleware/cors"
	reqidmiddleware "github.com/joyworks/workshop-api/pkg/middleware/requestid"
)

// @title Workshop API
// @version 1.0.0
// @description Workshop registration, attendance and completion rewards
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}

	validate := validator.New()

	workshopRepo := repository.NewWorkshopRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	certificateRepo := repository.NewCertificateRepository(db)
	joycoinRepo := repository.NewJoyCoinRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	bus := events.NewBus(logr)
	notify := notifier.New(cfg.Notifications, logr)
	if cfg.Notifications.Enabled {
		notify.Start(ctx, bus)
		defer notify.Stop()
	}

	metrics := service.NewMetricsService()
	ledger := service.NewCapacityLedger(workshopRepo, registrationRepo, logr)

	authSvc := service.NewAuthService(cfg.JWT.Secret, logr)
	workshopSvc := service.NewWorkshopService(workshopRepo, cacheRepo, ledger, cfg.Workshops.CacheTTL, cfg.Rewards.DefaultAmount, validate, logr)
	registrationSvc := service.NewRegistrationService(registrationRepo, workshopRepo, ledger, bus, metrics, validate, logr)
	completionSvc := service.NewCompletionService(workshopRepo, certificateRepo, joycoinRepo, bus, metrics, cfg.Rewards.CertificateBonus, logr)
	attendanceSvc := service.NewAttendanceService(registrationRepo, workshopRepo, certificateRepo, completionSvc, bus, metrics, validate, logr)
	certificateSvc := service.NewCertificateService(certificateRepo, logr)
	joycoinSvc := service.NewJoyCoinService(joycoinRepo, validate, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Deps{
		Auth:          authSvc,
		Metrics:       metrics,
		Workshops:     handler.NewWorkshopHandler(workshopSvc),
		Registrations: handler.NewRegistrationHandler(registrationSvc),
		Attendance:    handler.NewAttendanceHandler(attendanceSvc),
		Certificates:  handler.NewCertificateHandler(certificateSvc),
		JoyCoins:      handler.NewJoyCoinHandler(joycoinSvc),
		Observability: handler.NewMetricsHandler(metrics, db),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
