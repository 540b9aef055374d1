package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendancelist/internal/config"
	"attendancelist/internal/logger"
	"attendancelist/internal/queue"
	"attendancelist/internal/session"
	"attendancelist/internal/store"
	"attendancelist/internal/web"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestBackendsRejectUnknownValues(t *testing.T) {
	ctx := context.Background()

	_, _, err := newSource(ctx, config.App{SourceBackend: "ftp"}, map[string]web.HealthCheck{})
	assert.ErrorContains(t, err, "SOURCE_BACKEND")

	_, err = newSessionStore(config.App{SessionBackend: "redsi"}, nil)
	assert.ErrorContains(t, err, "SESSION_BACKEND")

	_, err = newExportQueue(ctx, config.App{QueueBackend: "redsi"}, nil)
	assert.ErrorContains(t, err, "QUEUE_BACKEND")
}

func TestBackendDefaults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src, db, err := newSource(ctx, config.App{SourceBackend: "http", SourceURL: "http://localhost"}, map[string]web.HealthCheck{})
	require.NoError(t, err)
	assert.Nil(t, db)
	assert.Equal(t, "http", src.Name())

	st, err := newSessionStore(config.App{SessionBackend: "memory", SessionTTL: time.Hour}, nil)
	require.NoError(t, err)
	assert.IsType(t, &session.MemoryStore{}, st)

	q, err := newExportQueue(ctx, config.App{QueueBackend: "memory"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &queue.InMemory{}, q)
}

func TestRedisBackends(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := store.NewRedis(mr.Addr())
	defer rdb.Close()

	st, err := newSessionStore(config.App{SessionBackend: "redis", SessionTTL: time.Hour}, rdb)
	require.NoError(t, err)
	assert.IsType(t, &session.RedisStore{}, st)

	q, err := newExportQueue(context.Background(), config.App{QueueBackend: "redis", QueueKey: "k"}, rdb)
	require.NoError(t, err)
	assert.IsType(t, &queue.RedisQueue{}, q)
}

func TestMemoryQueueIsDrained(t *testing.T) {
	out := &lockedBuffer{}
	logger.Configure(logger.Config{Level: "info", Output: out})
	defer logger.Configure(logger.Config{Level: "info", Output: io.Discard})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q, err := newExportQueue(ctx, config.App{QueueBackend: "memory"}, nil)
	require.NoError(t, err)

	require.NoError(t, queue.PublishExport(ctx, q, queue.ExportEvent{SessionID: "s-drained", Outcome: "success", Rows: 1}))
	assert.Eventually(t, func() bool { return strings.Contains(out.String(), "s-drained") },
		3*time.Second, 10*time.Millisecond)
}
