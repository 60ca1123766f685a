package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/naturespot/naturespot/backend/internal/api"
	"github.com/naturespot/naturespot/backend/internal/auth"
	"github.com/naturespot/naturespot/backend/internal/config"
	"github.com/naturespot/naturespot/backend/internal/database"
	"github.com/naturespot/naturespot/backend/internal/logger"
	"github.com/naturespot/naturespot/backend/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Close() }()

	logger.Log.Info("=== NatureSpot translation server starting ===")
	services.SetTranslationDebug(cfg.Translation.Debug)

	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.RunMigrations(db, cfg.Translation.CacheTTL); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	front, closeFront := services.OpenFrontCache(ctx, cfg.RedisAddr, cfg.Translation.MemoryTTL)
	defer func() { _ = closeFront() }()

	providers, err := services.BuildProviders(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to configure translation providers", zap.Error(err))
	}
	if len(providers) == 0 {
		logger.Log.Warn("No translation providers available; every request will use mock translations")
	}

	store := services.NewTranslationCacheService(db, cfg.Translation.CacheTTL)
	translations := services.NewTranslationService(providers, store, front, services.TranslationServiceOptions{
		SourceLanguage: cfg.Translation.SourceLanguage,
		ChunkDelay:     cfg.Translation.ChunkDelay,
	})

	sweeper := services.NewCacheSweeper(store, front, cfg.Translation.MemorySweepInterval, cfg.Translation.StoreSweepInterval)
	go sweeper.Start(ctx)

	if cfg.Auth.JWTSecret == "" {
		logger.Log.Warn("SUPABASE_JWT_SECRET not set; /translate will reject every token")
	}
	if cfg.AdminKey == "" {
		logger.Log.Warn("ADMIN_KEY not set; admin endpoints are unauthenticated")
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.Dependencies{
		Verifier:     auth.NewJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTAudience),
		Translations: translations,
		Posts:        services.NewPostTranslator(translations),
		Store:        store,
		Sweeper:      sweeper,
		AdminKey:     cfg.AdminKey,
		CORSOrigins:  cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Log.Info("Server exited")
}
