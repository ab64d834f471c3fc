package identity

import (
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// NewID returns a fresh opaque identifier for worlds, pages and collaborators.
func NewID() string {
	return uuid.New().String()
}

// NewActivityID returns a time-sortable identifier for activity entries.
func NewActivityID() string {
	return ulid.Make().String()
}

// avatarPalette matches the collaborator colors used by the frontend.
var avatarPalette = []string{
	"#f97316", // orange
	"#22c55e", // green
	"#3b82f6", // blue
	"#a855f7", // purple
	"#ec4899", // pink
	"#14b8a6", // teal
	"#eab308", // yellow
	"#ef4444", // red
}

// AvatarColor deterministically assigns a palette color to an identifier, so
// the same collaborator renders the same color everywhere.
func AvatarColor(id string) string {
	h := fnv.New32a()
	h.Write([]byte(id))
	return avatarPalette[h.Sum32()%uint32(len(avatarPalette))]
}

// Actor is the current user as reported by the auth provider. The provider is
// external; this package only carries its output around.
type Actor struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// DisplayName returns the best label available for the actor.
func (a *Actor) DisplayName() string {
	if a == nil {
		return ""
	}
	if a.Name != "" {
		return a.Name
	}
	if a.Email != "" {
		return a.Email
	}
	return a.ID
}

// Provider exposes the current actor and change notifications. The real
// implementation wraps the auth provider; tests use StaticProvider.
type Provider interface {
	CurrentActor() (*Actor, bool)
	OnChange(fn func(*Actor))
}

// StaticProvider is a Provider with an explicitly set actor.
type StaticProvider struct {
	mu        sync.Mutex
	actor     *Actor
	listeners []func(*Actor)
}

func NewStaticProvider(actor *Actor) *StaticProvider {
	return &StaticProvider{actor: actor}
}

func (p *StaticProvider) CurrentActor() (*Actor, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.actor, p.actor != nil
}

func (p *StaticProvider) OnChange(fn func(*Actor)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// SetActor replaces the current actor and notifies listeners. A nil actor
// means signed out.
func (p *StaticProvider) SetActor(actor *Actor) {
	p.mu.Lock()
	p.actor = actor
	listeners := append(([]func(*Actor))(nil), p.listeners...)
	p.mu.Unlock()
	for _, fn := range listeners {
		fn(actor)
	}
}
