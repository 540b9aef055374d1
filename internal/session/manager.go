package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"attendancelist/internal/logger"
	"attendancelist/internal/metrics"
	"attendancelist/internal/records"
	"attendancelist/internal/source"
)

// stallGrace is how long past the fetch timeout a session may stay loading
// before readers treat it as failed.
const stallGrace = 10 * time.Second

// Manager starts sessions and runs their single source read.
type Manager struct {
	source  source.Source
	store   Store
	timeout time.Duration
	now     func() time.Time
	log     zerolog.Logger

	wg sync.WaitGroup
}

// NewManager creates a manager. timeout bounds each source read; zero means
// no bound.
func NewManager(src source.Source, store Store, timeout time.Duration) *Manager {
	return &Manager{
		source:  src,
		store:   store,
		timeout: timeout,
		now:     time.Now,
		log:     logger.With("session"),
	}
}

// Begin saves a new loading session and starts its fetch in the background.
// The fetch outlives ctx cancellation so a closed request still completes it.
func (m *Manager) Begin(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{
		ID:        uuid.NewString(),
		State:     StateLoading,
		Source:    m.source.Name(),
		StartedAt: m.now().UTC(),
	}
	if err := m.store.Save(ctx, snap); err != nil {
		return Snapshot{}, err
	}

	m.wg.Add(1)
	go m.load(context.WithoutCancel(ctx), snap)
	return snap, nil
}

func (m *Manager) load(ctx context.Context, snap Snapshot) {
	defer m.wg.Done()
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	start := m.now()
	recs, err := m.source.Fetch(ctx)
	finished := m.now().UTC()
	metrics.FetchDuration.WithLabelValues(snap.Source).Observe(finished.Sub(start).Seconds())

	snap.LoadedAt = &finished
	if err != nil {
		m.log.Error().Err(err).Str("session", snap.ID).Str("source", snap.Source).Msg("failed to fetch attendance list")
		metrics.FetchTotal.WithLabelValues(snap.Source, metrics.OutcomeFailure).Inc()
		snap.State = StateFailed
		snap.Records = []records.Record{}
		snap.Error = err.Error()
	} else {
		if recs == nil {
			recs = []records.Record{}
		}
		metrics.FetchTotal.WithLabelValues(snap.Source, metrics.OutcomeSuccess).Inc()
		metrics.SessionRecords.Observe(float64(len(recs)))
		snap.State = StateLoaded
		snap.Records = recs
		m.log.Info().Str("session", snap.ID).Int("records", len(recs)).Dur("took", finished.Sub(start)).Msg("attendance list loaded")
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := m.store.Save(saveCtx, snap); err != nil {
		m.log.Error().Err(err).Str("session", snap.ID).Msg("failed to save session result")
	}
}

// Get returns the session snapshot. A session stuck loading well past the
// fetch timeout is reported as failed so pages never spin forever.
func (m *Manager) Get(ctx context.Context, id string) (Snapshot, error) {
	snap, err := m.store.Get(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	if snap.Loading() && m.timeout > 0 && m.now().Sub(snap.StartedAt) > m.timeout+stallGrace {
		snap.State = StateFailed
		snap.Records = []records.Record{}
		snap.Error = "attendance list load did not complete"
	}
	return snap, nil
}

// Wait blocks until every in-flight fetch has finished.
func (m *Manager) Wait() { m.wg.Wait() }
