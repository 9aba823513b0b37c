package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/claims-api/api/swagger"
	"github.com/noah-isme/claims-api/internal/handler"
	"github.com/noah-isme/claims-api/internal/repository"
	"github.com/noah-isme/claims-api/internal/service"
	"github.com/noah-isme/claims-api/pkg/cache"
	"github.com/noah-isme/claims-api/pkg/config"
	"github.com/noah-isme/claims-api/pkg/database"
	"github.com/noah-isme/claims-api/pkg/geo"
	"github.com/noah-isme/claims-api/pkg/jobs"
	"github.com/noah-isme/claims-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// @title Lecturer Claims API
// @version 1.0.0
// @description Submission, approval and monthly reporting of lecturer claims.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.EnsureSchema(ctx, db); err != nil {
			logr.Fatal("failed to ensure schema", zap.Error(err))
		}
	}

	var redisClient *redis.Client
	if client, err := cache.NewRedis(ctx, cfg.Redis); err != nil {
		logr.Warn("redis unavailable, distance cache disabled", zap.Error(err))
	} else {
		redisClient = client
	}

	metricsSvc := service.NewMetricsService()

	claimRepo := repository.NewClaimRepository(db)
	centerRepo := repository.NewCenterRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)
	defer cacheRepo.Close() //nolint:errcheck

	var locator geo.Locator = geo.NoopLocator{}
	if cfg.Geo.Enabled {
		locator = geo.NewClient(cfg.Geo, &http.Client{Timeout: cfg.Geo.Timeout})
	}

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Geo.CacheTTL, logr, redisClient != nil)
	distanceSvc := service.NewDistanceService(locator, cacheSvc, cfg.Geo.CacheTTL, metricsSvc, logr)
	claimValidator := service.NewClaimValidator(validator.New(), distanceSvc)
	authz := service.NewAuthorizationResolver()

	audit := service.NewAuditDispatcher(auditRepo, jobs.QueueConfig{Workers: 2, BufferSize: 256, MaxRetries: 3}, logr)
	audit.Start(ctx)

	claimSvc := service.NewClaimService(claimRepo, claimValidator, authz, audit, metricsSvc, logr)
	summarySvc := service.NewSummaryService(claimRepo, centerRepo, authz, logr)
	exportSvc := service.NewExportService(summarySvc, logr)
	authSvc := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	actorSvc := service.NewActorService(userRepo, logr)

	deps := routerDeps{
		apiPrefix:      cfg.APIPrefix,
		allowedOrigins: cfg.CORS.AllowedOrigins,
		exports:        cfg.Exports.Enabled,
		logger:         logr,
		metrics:        metricsSvc,
		auth:           authSvc,
		actors:         actorSvc,
		claims:         handler.NewClaimHandler(claimSvc),
		summaries:      handler.NewSummaryHandler(summarySvc, exportSvc),
		ops:            handler.NewMetricsHandler(metricsSvc, db),
	}
	if cfg.Env != config.EnvProduction {
		deps.docs = ginSwagger.WrapHandler(swaggerFiles.Handler)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "geo_enabled", cfg.Geo.Enabled, "exports", cfg.Exports.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("http shutdown", zap.Error(err))
	}
	if err := audit.Stop(shutdownCtx); err != nil {
		logr.Warn("audit queue not drained", zap.Error(err))
	}
}
