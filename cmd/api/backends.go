package main

import (
	"context"
	"fmt"
	"time"

	"attendancelist/internal/config"
	"attendancelist/internal/queue"
	"attendancelist/internal/session"
	"attendancelist/internal/source"
	"attendancelist/internal/store"
	"attendancelist/internal/web"
)

// memoryQueueSize bounds export events waiting for the in-process drain.
const memoryQueueSize = 256

// newSource builds the configured record source. A Postgres source registers
// its health check and returns the pool so the caller can close it.
func newSource(ctx context.Context, cfg config.App, checks map[string]web.HealthCheck) (source.Source, *store.DB, error) {
	switch cfg.SourceBackend {
	case "http", "":
		return source.NewHTTP(cfg.SourceURL, cfg.SourceTimeout), nil, nil
	case "postgres":
		db, err := store.NewDB(ctx, cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres source: %w", err)
		}
		checks["db"] = db.Healthy
		return source.NewPostgres(db.Client), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown SOURCE_BACKEND %q", cfg.SourceBackend)
	}
}

func newSessionStore(cfg config.App, rdb *store.Redis) (session.Store, error) {
	switch cfg.SessionBackend {
	case "memory", "":
		return session.NewMemoryStore(cfg.SessionTTL), nil
	case "redis":
		return session.NewRedisStore(rdb.Client, "", cfg.SessionTTL), nil
	default:
		return nil, fmt.Errorf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}
}

// newExportQueue builds the export event queue. The memory backend is
// drained in this process until ctx ends, logging each event.
func newExportQueue(ctx context.Context, cfg config.App, rdb *store.Redis) (queue.Queue, error) {
	switch cfg.QueueBackend {
	case "memory", "":
		mem := queue.NewInMemory(memoryQueueSize)
		msgs, err := mem.Consume(ctx)
		if err != nil {
			return nil, err
		}
		go queue.DrainExports(msgs, queue.LogExport)
		return mem, nil
	case "redis":
		return queue.NewRedisQueue(rdb.Client, cfg.QueueKey), nil
	default:
		return nil, fmt.Errorf("unknown QUEUE_BACKEND %q", cfg.QueueBackend)
	}
}
