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
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/edu-crm-api/api/swagger"
	"github.com/noah-isme/edu-crm-api/internal/handler"
	"github.com/noah-isme/edu-crm-api/internal/middleware"
	"github.com/noah-isme/edu-crm-api/internal/models"
	"github.com/noah-isme/edu-crm-api/internal/repository"
	"github.com/noah-isme/edu-crm-api/internal/service"
	"github.com/noah-isme/edu-crm-api/pkg/cache"
	"github.com/noah-isme/edu-crm-api/pkg/config"
	"github.com/noah-isme/edu-crm-api/pkg/database"
	"github.com/noah-isme/edu-crm-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/edu-crm-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/edu-crm-api/pkg/middleware/requestid"
	"github.com/noah-isme/edu-crm-api/pkg/schema"
	"github.com/noah-isme/edu-crm-api/pkg/storage"
	"github.com/noah-isme/edu-crm-api/pkg/validation"
)

// @title Edu CRM API
// @version 1.0.0
// @description Detailed enquiry profile wizard for the overseas education CRM
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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, catalog cache disabled", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	files, local, err := storage.New(ctx, cfg.Storage, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init document storage", "error", err)
	}

	schemas, err := schema.NewRegistry()
	if err != nil {
		logr.Sugar().Fatalw("failed to compile document schemas", "error", err)
	}
	validator := validation.New()
	metrics := service.NewMetricsService()

	enquiryRepo := repository.NewEnquiryRepository(db)
	serviceRepo := repository.NewServiceCatalogRepository(db)
	documentRepo := repository.NewDocumentRepository(db, schemas)
	auditRepo := repository.NewAuditRepository(db)

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, "edu-crm", logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.CatalogTTL, logr, redisClient != nil)
	catalogSvc := service.NewCatalogService(serviceRepo, cacheSvc, cfg.Cache.CatalogTTL, logr)

	auditDispatcher := service.NewAuditDispatcher(auditRepo, service.AuditConfig{
		Workers: cfg.Audit.Workers,
		Retries: cfg.Audit.Retries,
	}, metrics, logr)
	auditDispatcher.Start(ctx)

	wizardSvc := service.NewProfileWizardService(service.WizardDependencies{
		Enquiries: enquiryRepo,
		Profiles:  service.NewProfileDocumentStore(documentRepo),
		Files:     files,
		Catalog:   catalogSvc,
		Audit:     auditDispatcher,
		Checker:   validator,
	}, service.WizardConfig{
		SessionTTL:      cfg.Wizard.SessionTTL,
		JanitorInterval: cfg.Wizard.JanitorInterval,
		MaxFileSize:     cfg.Wizard.MaxFileSizeBytes,
		Collection:      cfg.Wizard.ProfileCollection,
	}, metrics, logr)
	wizardSvc.Start(ctx)

	authSvc := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
	})

	r := gin.New()
	r.MaxMultipartMemory = cfg.Wizard.MaxFileSizeBytes + 1<<20
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	checks := map[string]handler.Pinger{"postgres": pingDB(db)}
	if cacheRepo != nil {
		checks["redis"] = cacheRepo.(handler.Pinger)
	}
	metricsHandler := handler.NewMetricsHandler(metrics, checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	if local != nil {
		api.GET("/files/*key", handler.NewFileHandler(local, logr).Download)
	}

	secured := api.Group("")
	secured.Use(middleware.JWT(authSvc))
	secured.Use(middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleCounsellor))

	handler.RegisterWizardRoutes(secured, handler.NewProfileWizardHandler(wizardSvc, validator, cfg.Wizard.MaxFileSizeBytes, logr))
	handler.RegisterCatalogRoutes(secured, handler.NewCatalogHandler(catalogSvc),
		middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("http shutdown incomplete", zap.Error(err))
	}
	wizardSvc.Shutdown()
	auditDispatcher.Stop(shutdownCtx)
}

func pingDB(db *sqlx.DB) handler.PingFunc {
	return func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
}
