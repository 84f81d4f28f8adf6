package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dice_duel/internal/config"
	"dice_duel/internal/db"
	httpServer "dice_duel/internal/http"
	"dice_duel/internal/http/middleware"
	"dice_duel/internal/logger"
	"dice_duel/internal/store"
	"dice_duel/internal/ws"

	"github.com/gin-gonic/gin"
)

var version = "dev"

// openBackend picks the persistence layer behind the store API.
func openBackend(cfg *config.Config) (store.Store, func()) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		rs, err := store.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatal("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
		}
		middleware.SetRedisClient(rs.Client())
		return rs, func() { rs.Close() }

	case config.BackendPostgres:
		pool := db.Connect(cfg.DatabaseURL, 32)
		middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		return store.NewPostgres(pool), pool.Close

	case config.BackendRemote:
		logger.Fatal("the store server cannot use the remote backend", "store_url", cfg.StoreURL)
		return nil, nil

	default:
		middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		return store.NewMemory(), func() {}
	}
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	backend, closeBackend := openBackend(cfg)
	defer closeBackend()

	hub := ws.NewHub()
	stopCleanup := hub.StartCleanup(time.Minute)
	defer stopCleanup()

	r := gin.Default()
	r.Use(httpServer.CORS(cfg.AllowedOrigin))
	httpServer.RegisterRoutes(r, store.Instrument(backend, cfg.StoreBackend), hub, cfg, version)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "backend", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
