// Package store persists world documents server-side. Worlds are stored one
// JSON document per (owner, world) pair; the whole set for an owner is
// replaced on every sync, mirroring the wholesale-overwrite persistence model
// of the client cache.
//
// The backend is chosen by DSN scheme: mongodb:// (and mongodb+srv://) for a
// document collection, postgres:// and mysql:// for relational hosts, and a
// bare file path (or sqlite://) for the embedded default.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/GreenHouse007/world-builder/internal/domain"
)

// ErrNotFound reports that an owner has no stored worlds.
var ErrNotFound = errors.New("store: not found")

// Open creates the world store for the given DSN.
func Open(ctx context.Context, dsn string) (domain.WorldStore, error) {
	switch {
	case strings.HasPrefix(dsn, "mongodb://"), strings.HasPrefix(dsn, "mongodb+srv://"):
		return openMongo(ctx, dsn)
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return openPostgres(dsn)
	case strings.HasPrefix(dsn, "mysql://"):
		return openMySQL(strings.TrimPrefix(dsn, "mysql://"))
	case strings.HasPrefix(dsn, "sqlite://"):
		return openSQLite(strings.TrimPrefix(dsn, "sqlite://"))
	case dsn == "memory://":
		return NewMemory(), nil
	case dsn != "":
		return openSQLite(dsn)
	default:
		return nil, fmt.Errorf("store: empty dsn")
	}
}
