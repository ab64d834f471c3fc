// Package client runs the local side of the sync protocol: one Session per
// signed-in tab owns the in-memory world list and the pending change queue,
// applies edits optimistically, and reconciles with the server in debounced
// batches. Everything the UI reads goes through the session.
package client

import (
	"context"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/GreenHouse007/world-builder/internal/cache"
	"github.com/GreenHouse007/world-builder/internal/domain"
	"github.com/GreenHouse007/world-builder/internal/identity"
	"github.com/GreenHouse007/world-builder/internal/worldsync"
)

// Status is the sync indicator surfaced to the UI. Transport failures show up
// here and nowhere else; they are never a blocking error.
type Status string

const (
	StatusSaved   Status = "saved"
	StatusSaving  Status = "saving"
	StatusSyncing Status = "syncing"
	StatusOffline Status = "offline"
)

const defaultDebounce = 600 * time.Millisecond

// Session owns one user's working set. All methods are safe for concurrent
// use; the tree/reducer work itself runs synchronously under the session
// lock, concurrency only comes from timers and network round trips.
type Session struct {
	transport Transport
	cache     *cache.Store
	provider  identity.Provider
	log       zerolog.Logger

	mu       sync.Mutex
	worlds   []*domain.World
	pending  []domain.WorldChange
	status   Status
	online   bool
	flushing bool
	closed   bool

	debounced func(func())
	onStatus  func(Status)
	sched     *cron.Cron
}

// Option configures a Session.
type Option func(*Session)

// WithDebounce overrides the quiet period before a flush.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) { s.debounced = debounce.New(d) }
}

// WithStatusFunc registers a status-change callback. Called outside the
// session lock.
func WithStatusFunc(fn func(Status)) Option {
	return func(s *Session) { s.onStatus = fn }
}

// WithAutoSync arms a scheduled background flush (cron expression, e.g.
// "@every 5m") on top of the debounced one.
func WithAutoSync(expr string) Option {
	return func(s *Session) {
		c := cron.New()
		if _, err := c.AddFunc(expr, func() { s.Flush() }); err != nil {
			s.log.Warn().Err(err).Str("expr", expr).Msg("invalid auto-sync schedule")
			return
		}
		s.sched = c
	}
}

func NewSession(transport Transport, store *cache.Store, provider identity.Provider, log zerolog.Logger, opts ...Option) *Session {
	s := &Session{
		transport: transport,
		cache:     store,
		provider:  provider,
		log:       log.With().Str("component", "session").Logger(),
		status:    StatusSaved,
		online:    true,
		debounced: debounce.New(defaultDebounce),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sched != nil {
		s.sched.Start()
	}
	return s
}

// Bootstrap adopts the local cache synchronously so the UI never blocks, then
// fetches authoritative state in the background. Pending changes that
// survived a previous session are replayed on top of the fetched state so
// nothing typed offline is lost.
func (s *Session) Bootstrap(ctx context.Context) {
	if snap, ok := s.cache.Load(); ok {
		s.mu.Lock()
		s.worlds = normalizeAll(snap.Worlds)
		s.pending = worldsync.FilterKnown(snap.Pending)
		if len(s.pending) > 0 {
			s.status = StatusOffline
		} else {
			s.status = StatusSaved
		}
		s.mu.Unlock()
		s.notifyStatus()
	}

	go func() {
		worlds, err := s.transport.FetchWorlds(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("initial fetch failed, keeping cached state")
			s.SetOnline(false)
			return
		}
		s.mu.Lock()
		merged := worldsync.Apply(normalizeAll(worlds), s.pending)
		s.worlds = merged
		s.persistLocked()
		hasPending := len(s.pending) > 0
		s.mu.Unlock()
		s.notifyStatus()
		if hasPending {
			s.scheduleFlush()
		}
	}()
}

// Dispatch applies changes optimistically, queues them for the server, and
// persists the working set before returning. The debounced flush coalesces
// bursts of edits into one round trip.
func (s *Session) Dispatch(changes ...domain.WorldChange) {
	changes = worldsync.FilterKnown(changes)
	if len(changes) == 0 {
		return
	}
	s.mu.Lock()
	s.worlds = worldsync.Apply(s.worlds, changes)
	s.pending = append(s.pending, changes...)
	if s.online {
		s.status = StatusSaving
	} else {
		s.status = StatusOffline
	}
	s.persistLocked()
	s.mu.Unlock()
	s.notifyStatus()
	s.scheduleFlush()
}

func (s *Session) scheduleFlush() {
	s.debounced(func() { s.flush() })
}

// Flush sends the queue immediately, superseding any pending debounce.
func (s *Session) Flush() {
	s.flush()
}

// flush sends the entire queue as one atomic batch. Only one flush is ever in
// flight; changes dispatched while it runs queue up behind it and trigger a
// follow-up. On failure the batch is requeued ahead of anything newer and the
// session settles offline.
func (s *Session) flush() {
	s.mu.Lock()
	if s.closed || s.flushing {
		s.mu.Unlock()
		return
	}
	if len(s.pending) == 0 {
		s.status = StatusSaved
		s.mu.Unlock()
		s.notifyStatus()
		return
	}
	if !s.online {
		s.status = StatusOffline
		s.mu.Unlock()
		s.notifyStatus()
		return
	}
	batch := s.pending
	s.pending = nil
	s.flushing = true
	s.status = StatusSyncing
	s.mu.Unlock()
	s.notifyStatus()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	worlds, err := s.transport.PushChanges(ctx, batch)

	s.mu.Lock()
	s.flushing = false
	if err != nil {
		s.log.Warn().Err(err).Int("batch", len(batch)).Msg("flush failed, requeued")
		s.pending = append(batch, s.pending...)
		s.online = false
		s.status = StatusOffline
		s.persistLocked()
		s.mu.Unlock()
		s.notifyStatus()
		return
	}
	canonical := normalizeAll(worlds)
	if len(s.pending) > 0 {
		// Edits arrived mid-flight: replay them on the canonical state and
		// go around again.
		s.worlds = worldsync.Apply(canonical, s.pending)
		s.status = StatusSaving
		s.persistLocked()
		s.mu.Unlock()
		s.notifyStatus()
		s.scheduleFlush()
		return
	}
	s.worlds = canonical
	s.status = StatusSaved
	s.persistLocked()
	s.mu.Unlock()
	s.notifyStatus()
}

// SetOnline records a connectivity transition. Coming back online with a
// pending queue flushes immediately.
func (s *Session) SetOnline(online bool) {
	s.mu.Lock()
	wasOnline := s.online
	s.online = online
	pending := len(s.pending)
	if !online && s.status != StatusSyncing {
		s.status = StatusOffline
	}
	s.mu.Unlock()
	s.notifyStatus()
	if online && !wasOnline && pending > 0 {
		s.flush()
	}
}

// Close tears the session down: the scheduler stops and late debounce fires
// become no-ops. An in-flight request is not aborted; its result is simply
// dropped by the closed check.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	if s.sched != nil {
		s.sched.Stop()
	}
}

// Worlds returns a deep copy of the current world list.
func (s *Session) Worlds() []*domain.World {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneWorlds(s.worlds)
}

// Status returns the current sync status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// PendingCount returns the queued, not-yet-acknowledged change count.
func (s *Session) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// persistLocked snapshots worlds + queue to the local cache. Callers hold mu.
func (s *Session) persistLocked() {
	s.cache.Save(s.worlds, s.pending)
}

func (s *Session) notifyStatus() {
	if s.onStatus == nil {
		return
	}
	s.mu.Lock()
	st := s.status
	s.mu.Unlock()
	s.onStatus(st)
}

func normalizeAll(worlds []*domain.World) []*domain.World {
	out := make([]*domain.World, len(worlds))
	for i, w := range worlds {
		out[i] = worldsync.Normalize(w)
	}
	return out
}
