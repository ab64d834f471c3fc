package store

import (
	"context"
	"sync"

	"github.com/GreenHouse007/world-builder/internal/domain"
)

// Memory is an in-process WorldStore used by tests and the mcp command's
// scratch mode. Safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	worlds map[string][]*domain.World
}

func NewMemory() *Memory {
	return &Memory{worlds: make(map[string][]*domain.World)}
}

func (m *Memory) FindWorlds(_ context.Context, ownerID string) ([]*domain.World, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.CloneWorlds(m.worlds[ownerID]), nil
}

func (m *Memory) ReplaceWorlds(_ context.Context, ownerID string, worlds []*domain.World) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.worlds[ownerID] = domain.CloneWorlds(worlds)
	return nil
}

func (m *Memory) DeleteWorlds(_ context.Context, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.worlds, ownerID)
	return nil
}

func (m *Memory) Close(context.Context) error { return nil }
