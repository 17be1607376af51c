package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"accountability/config"
	"accountability/handler"
	"accountability/middleware"
	"accountability/service"
	"accountability/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func init() {
	// store and compare timestamps in UTC
	time.Local = time.UTC
}

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer utils.SyncLogger()
	logger := utils.Logger()

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := utils.InitDB(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer utils.CloseDB()

	if err := utils.InitRedis(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB); err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer utils.CloseRedis()

	middleware.InitAuth(cfg.JWTSecret)

	db := utils.GetDB()
	rdb := utils.GetRedis()
	cache := service.NewAuthorCache(rdb, cfg.Feed.CacheTTL)
	admins := service.NewAdminPolicy(cfg.AdminUserIDs)

	router := handler.NewRouter(handler.Services{
		Users:       service.NewUserService(db),
		Follow:      service.NewFollowService(db, cache),
		Buddy:       service.NewBuddyService(db, cache, service.NewLocker(rdb)),
		Circle:      service.NewCircleService(db, cache, admins),
		Leaderboard: service.NewLeaderboardService(db),
		Feed:        service.NewFeedService(db, cache, cfg.Feed.PageSize, cfg.Feed.MaxPageSize),
		Activity:    service.NewActivityService(db),
		Admins:      admins,
	}, middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("accountability service starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
}
