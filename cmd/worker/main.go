package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"attendancelist/internal/config"
	"attendancelist/internal/logger"
	"attendancelist/internal/queue"
	"attendancelist/internal/store"
)

// Worker drains export events and logs a report for each one, plus a
// running summary every minute.
func main() {
	cfg := config.Load()
	logger.Configure(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty && !cfg.Production()})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info().Msg("shutdown signal received")
		cancel()
	}()

	if cfg.QueueBackend != "redis" {
		logger.Fatal().Str("backend", cfg.QueueBackend).Msg("worker needs QUEUE_BACKEND=redis")
	}
	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()
	if !redisClient.Healthy(ctx) {
		logger.Warn().Str("addr", cfg.RedisAddr).Msg("redis not reachable yet, will keep retrying")
	}

	q := queue.NewRedisQueue(redisClient.Client, cfg.QueueKey)
	messages, err := q.Consume(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("queue consume init failed")
	}

	logger.Info().Str("key", cfg.QueueKey).Msg("worker started, waiting for export events")
	t := newTally()
	run(ctx, messages, t, time.NewTicker(time.Minute).C)
	t.log()
	logger.Info().Msg("worker stopped")
}

// run consumes until messages closes or ctx ends.
func run(ctx context.Context, messages <-chan queue.Message, t *tally, tick <-chan time.Time) {
	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				return
			}
			ev, err := queue.DecodeExport(msg)
			if err != nil {
				logger.Warn().Err(err).Str("type", msg.Type).Msg("skipping message")
				continue
			}
			t.observe(ev)
			queue.LogExport(ev)
		case <-tick:
			t.log()
		case <-ctx.Done():
			return
		}
	}
}
