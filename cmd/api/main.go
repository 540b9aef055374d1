package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"attendancelist/internal/config"
	"attendancelist/internal/httpmiddleware"
	"attendancelist/internal/logger"
	"attendancelist/internal/session"
	"attendancelist/internal/store"
	"attendancelist/internal/web"
)

func main() {
	cfg := config.Load()
	logger.Configure(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty && !cfg.Production()})

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		logger.Fatal().Err(err).Msg("http server failed")
	}
}

func runHTTP(cfg config.App) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	checks := map[string]web.HealthCheck{}

	src, db, err := newSource(ctx, cfg, checks)
	if err != nil {
		return err
	}
	defer db.Close()

	var redisClient *store.Redis
	if cfg.UsesRedis() {
		redisClient = store.NewRedis(cfg.RedisAddr)
		defer redisClient.Close()
		checks["redis"] = redisClient.Healthy
		if !redisClient.Healthy(ctx) {
			logger.Warn().Str("addr", cfg.RedisAddr).Msg("redis not reachable yet")
		}
	}

	sessions, err := newSessionStore(cfg, redisClient)
	if err != nil {
		return err
	}
	q, err := newExportQueue(ctx, cfg, redisClient)
	if err != nil {
		return err
	}

	manager := session.NewManager(src, sessions, cfg.SourceTimeout)
	h, err := web.NewHandler(manager, q, cfg.Location())
	if err != nil {
		return err
	}
	r := web.NewRouter(h, web.Options{
		CORSOrigins: cfg.CORSOrigins,
		ExportLimit: httpmiddleware.NewTokenBucket(cfg.ExportRateLimitPerMin, cfg.ExportRateLimitPerMin),
		Checks:      checks,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.HTTPPort).Str("source", src.Name()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	logger.Info().Msg("shutting down server")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced shutdown")
	}
	manager.Wait()

	logger.Info().Msg("server exited")
	return nil
}
