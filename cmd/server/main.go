// Package main runs the signage kiosk HTTP server with WebSocket broadcast
// and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lumina-signage/backend/config"
	"github.com/lumina-signage/backend/internal/admin"
	"github.com/lumina-signage/backend/internal/auth"
	"github.com/lumina-signage/backend/internal/middleware"
	"github.com/lumina-signage/backend/internal/realtime"
	"github.com/lumina-signage/backend/internal/session"
	"github.com/lumina-signage/backend/internal/signage"
	"github.com/lumina-signage/backend/internal/tokens"
	"github.com/lumina-signage/backend/internal/validation"
	"github.com/lumina-signage/backend/pkg/database"
	"github.com/lumina-signage/backend/pkg/queue"
	"github.com/lumina-signage/backend/pkg/redis"
	"github.com/lumina-signage/backend/pkg/response"
	"github.com/lumina-signage/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			AssetsBucket:         cfg.AWS.AssetsBucket,
			ExportsBucket:        cfg.AWS.ExportsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.AdminExpireHours, cfg.JWT.SuperAdminExpireMins)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)

	tokenStore := tokens.NewStore(time.Duration(cfg.Token.TTLMinutes) * time.Minute)
	tokenHandler := tokens.NewHandler(tokenStore, cfg.App.PlayBaseURL, logger)

	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, cfg.SuperAdmin, logger)

	signageRepo := signage.NewRepository(pool)
	signageHandler := signage.NewHandler(signageRepo, hub, s3Client, logger)

	validationRepo := validation.NewRepository(pool)
	validationHandler := validation.NewHandler(validationRepo, logger)

	sessionRepo := session.NewRepository(pool)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	coordinator := session.NewCoordinator(tokenStore, hub, signageRepo, sessionRepo, jobQueue, logger)
	sessionHandler := session.NewHandler(coordinator, logger)

	adminRepo := admin.NewRepository(pool)
	adminHandler := admin.NewHandler(adminRepo, s3Client, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health (degraded while the database is down; tokens and broadcast stay up)
	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		if !database.Available(c.Request.Context(), pool) {
			status = "degraded"
		}
		response.OK(c, gin.H{"status": status})
	})

	// Public: the signage display and phone flow. Token endpoints stay up even
	// when the database is down.
	api := router.Group("/api")
	{
		api.GET("/token/generate", tokenHandler.Generate)
		api.GET("/token/validate", tokenHandler.Validate)
		api.GET("/token/qr", tokenHandler.QR)

		api.GET("/signage/:signageId/config", signageHandler.GetConfig)

		api.POST("/questionnaire/broadcast-question", sessionHandler.BroadcastQuestion)
		api.POST("/submit-questionnaire", sessionHandler.Submit)

		api.POST("/auth/superadmin/login", authHandler.SuperAdminLogin)
		api.POST("/auth/admin/login", authHandler.InstanceAdminLogin)
	}

	// Admin API (JWT required)
	adminAPI := router.Group("/api")
	adminAPI.Use(middleware.JWT(jwtService))
	{
		adminAPI.GET("/auth/verify", authHandler.Verify)

		// Superadmin-only instance lifecycle
		adminAPI.GET("/admin/signage", middleware.RequireSuperAdmin(), signageHandler.List)
		adminAPI.POST("/admin/signage", middleware.RequireSuperAdmin(), signageHandler.Create)
		adminAPI.DELETE("/admin/signage/:signageId", middleware.RequireSuperAdmin(), signageHandler.Delete)
		adminAPI.PUT("/admin/signage/:signageId/credentials", middleware.RequireSuperAdmin(), authHandler.SetInstanceCredentials)

		// Instance-scoped admin (superadmin or that instance's admin)
		instance := adminAPI.Group("/admin/signage/:signageId")
		instance.Use(middleware.RequireInstanceAccess("signageId"))
		{
			instance.PUT("", signageHandler.Update)
			instance.GET("/stats", signageHandler.Stats)
			instance.GET("/background", signageHandler.GetBackground)
			instance.PUT("/background", signageHandler.UpdateBackground)
			instance.POST("/logo", signageHandler.UploadLogo)
			instance.GET("/validation", validationHandler.Get)
			instance.PUT("/validation", validationHandler.Update)
			instance.GET("/submissions", adminHandler.ListSubmissions)
			instance.GET("/export", adminHandler.Export)
			instance.GET("/export/snapshot", adminHandler.SnapshotURL)
		}
	}

	// WebSocket (public; one channel per signage instance)
	router.GET("/ws/:signageId", realtime.ServeWs(hub, logger))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
