package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/GreenHouse007/world-builder/internal/domain"
	"github.com/GreenHouse007/world-builder/internal/identity"
	"github.com/GreenHouse007/world-builder/internal/worldsync"
)

// WorldService is the authoritative side of the sync protocol: it loads an
// actor's worlds, folds incoming change batches through the same reducer the
// client runs, and persists the result wholesale.
type WorldService struct {
	store   domain.WorldStore
	emitter EventEmitter
	log     zerolog.Logger
}

func NewWorldService(store domain.WorldStore, emitter EventEmitter, log zerolog.Logger) *WorldService {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &WorldService{
		store:   store,
		emitter: emitter,
		log:     log.With().Str("component", "worlds").Logger(),
	}
}

// ListWorlds returns the actor's canonical world list. Every stored record is
// normalized on the way out, so malformed rows never reach a client.
func (s *WorldService) ListWorlds(ctx context.Context, actor *identity.Actor) ([]*domain.World, error) {
	worlds, err := s.store.FindWorlds(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list worlds: %w", err)
	}
	out := make([]*domain.World, len(worlds))
	for i, w := range worlds {
		out[i] = worldsync.Normalize(w)
	}
	return out, nil
}

// ApplyChanges replays a client batch against the actor's stored worlds and
// persists the result. The returned list is the new canonical state the
// client adopts, which is what makes the protocol idempotent-safe: a retried
// batch lands on the state its first delivery produced, and the response
// replaces rather than merges.
func (s *WorldService) ApplyChanges(ctx context.Context, actor *identity.Actor, changes []domain.WorldChange) ([]*domain.World, error) {
	changes = worldsync.FilterKnown(changes)

	worlds, err := s.ListWorlds(ctx, actor)
	if err != nil {
		return nil, err
	}
	next := worldsync.Apply(worlds, changes)

	now := time.Now().UTC().Format(time.RFC3339)
	touched := touchedWorlds(changes)
	for _, w := range next {
		if touched[w.ID] {
			w.UpdatedAt = now
		}
	}

	if err := s.store.ReplaceWorlds(ctx, actor.ID, next); err != nil {
		return nil, fmt.Errorf("persist worlds: %w", err)
	}
	s.log.Debug().Str("actor", actor.ID).Int("changes", len(changes)).Int("worlds", len(next)).Msg("applied batch")
	s.emitter.Emit(ctx, "worlds:changed", actor.ID)
	return next, nil
}

// DeleteAll removes every world the actor owns. Destructive; callers confirm
// with the user before invoking.
func (s *WorldService) DeleteAll(ctx context.Context, actor *identity.Actor) error {
	if err := s.store.DeleteWorlds(ctx, actor.ID); err != nil {
		return fmt.Errorf("delete worlds: %w", err)
	}
	s.emitter.Emit(ctx, "worlds:changed", actor.ID)
	return nil
}

func touchedWorlds(changes []domain.WorldChange) map[string]bool {
	out := make(map[string]bool, len(changes))
	for _, c := range changes {
		if c.WorldID != "" {
			out[c.WorldID] = true
		}
		if c.World != nil {
			out[c.World.ID] = true
		}
	}
	return out
}
