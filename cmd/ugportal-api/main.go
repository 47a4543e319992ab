package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/ugportal-api/api/swagger"
	"github.com/noah-isme/ugportal-api/internal/handler"
	"github.com/noah-isme/ugportal-api/internal/middleware"
	"github.com/noah-isme/ugportal-api/internal/repository"
	"github.com/noah-isme/ugportal-api/internal/service"
	"github.com/noah-isme/ugportal-api/pkg/cache"
	"github.com/noah-isme/ugportal-api/pkg/config"
	"github.com/noah-isme/ugportal-api/pkg/database"
	"github.com/noah-isme/ugportal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/ugportal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/ugportal-api/pkg/middleware/requestid"
)

// @title UG Portal API
// @version 1.0.0
// @description Student and professor portal: enrolment, attendance marking and attendance reports.
// @BasePath /api
// @schemes http
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

	startupCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	db, err := database.NewPostgres(startupCtx, cfg.Database, logr)
	if err != nil {
		cancel()
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	metrics := service.NewMetricsService()

	var redisClient *redis.Client
	if cfg.Attendance.CacheEnabled {
		redisClient, err = cache.NewRedis(startupCtx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, attendance views will not be cached", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}
	cancel()

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Attendance.CacheTTL, logr, redisClient != nil)

	attendanceRepo := repository.NewAttendanceRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	professorRepo := repository.NewProfessorRepository(db)
	markRepo := repository.NewMarkRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	validate := validator.New()
	authSvc := service.NewAuthService(studentRepo, professorRepo, auditRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	attendanceSvc := service.NewAttendanceService(attendanceRepo, auditRepo, cacheSvc, metrics, cfg.Attendance.Location, validate, logr)
	summarySvc := service.NewAttendanceSummaryService(attendanceRepo, studentRepo, cacheSvc, metrics, cfg.Attendance, validate, logr)
	exportSvc := service.NewExportService(summarySvc, cfg.Attendance.Location, logr)
	studentSvc := service.NewStudentService(studentRepo, subjectRepo, cacheSvc, validate, logr)
	professorSvc := service.NewProfessorService(professorRepo, subjectRepo, studentRepo, markRepo, validate, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, middleware.LogFields))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	ops := handler.NewMetricsHandler(metrics, db)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Routes{
		Auth:       handler.NewAuthHandler(authSvc),
		Students:   handler.NewStudentHandler(studentSvc),
		Professors: handler.NewProfessorHandler(professorSvc),
		Attendance: handler.NewAttendanceHandler(attendanceSvc, summarySvc, exportSvc),
		Tokens:     authSvc,
		Audit:      auditRepo,
		Logger:     logr,
	}.Register(r.Group(cfg.APIPrefix))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Info("shutting down server")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server forced shutdown", zap.Error(err))
	}
}
