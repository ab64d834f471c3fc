// Package cache persists the working set (worlds plus the pending change
// queue) to a JSON file so a session can bootstrap offline. Persistence is
// best-effort: a full disk or a corrupt file must never take the in-memory
// session down, so every failure here is logged and swallowed.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"

	"github.com/GreenHouse007/world-builder/internal/domain"
)

// Snapshot is the durable working set. The whole snapshot is overwritten on
// every save; within a session the last writer wins.
type Snapshot struct {
	Worlds  []*domain.World      `json:"worlds"`
	Pending []domain.WorldChange `json:"pending"`
	SavedAt string               `json:"savedAt"`
}

// Store reads and writes snapshots at a fixed path, guarded by a
// cross-process file lock. The lock lives in a sibling .lock file so the
// data file can be atomically replaced on save.
type Store struct {
	path string
	lock *flock.Flock
	log  zerolog.Logger
}

func New(path string, log zerolog.Logger) *Store {
	return &Store{
		path: path,
		lock: flock.New(path + ".lock"),
		log:  log.With().Str("component", "cache").Logger(),
	}
}

// Load returns the cached snapshot, or false when there is none. A missing
// file, an unreadable file and corrupt JSON are all treated the same.
func (s *Store) Load() (*Snapshot, bool) {
	if err := s.lock.Lock(); err != nil {
		s.log.Warn().Err(err).Msg("cache lock failed, loading without it")
	} else {
		defer s.lock.Unlock()
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("cache read failed")
		}
		return nil, false
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("cache corrupt, ignoring")
		return nil, false
	}
	return &snap, true
}

// Save overwrites the snapshot wholesale via a temp file and rename, so a
// crash mid-write never leaves a truncated cache behind.
func (s *Store) Save(worlds []*domain.World, pending []domain.WorldChange) {
	snap := Snapshot{
		Worlds:  worlds,
		Pending: pending,
		SavedAt: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(&snap)
	if err != nil {
		s.log.Warn().Err(err).Msg("cache encode failed")
		return
	}

	if err := s.lock.Lock(); err != nil {
		s.log.Warn().Err(err).Msg("cache lock failed, saving without it")
	} else {
		defer s.lock.Unlock()
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.log.Warn().Err(err).Msg("cache dir create failed")
		return
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.log.Warn().Err(err).Str("path", tmp).Msg("cache write failed")
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("cache rename failed")
	}
}

// Clear removes the snapshot file, typically on sign-out.
func (s *Store) Clear() {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.log.Warn().Err(err).Str("path", s.path).Msg("cache remove failed")
	}
}
