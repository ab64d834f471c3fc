package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/GreenHouse007/world-builder/internal/domain"
)

// sqlStore is the shared implementation for SQLite, Postgres, and MySQL.
// Each world is one row; list order is kept in an explicit position column
// because sibling order is part of the data model.
type sqlStore struct {
	driverName string
	db         *sql.DB
}

func newSQLStore(driverName, dsn string) (*sqlStore, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)

	s := &sqlStore{driverName: driverName, db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *sqlStore) migrate() error {
	docType := "TEXT"
	if s.driverName == "mysql" {
		docType = "MEDIUMTEXT"
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS worlds (
		owner_id VARCHAR(64) NOT NULL,
		world_id VARCHAR(64) NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		doc %s NOT NULL,
		updated_at VARCHAR(40) NOT NULL DEFAULT '',
		PRIMARY KEY (owner_id, world_id)
	)`, docType)
	_, err := s.db.Exec(ddl)
	return err
}

// rebind rewrites ? placeholders to $1..$n for Postgres.
func (s *sqlStore) rebind(query string) string {
	if s.driverName != "postgres" {
		return query
	}
	var out []byte
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out = append(out, fmt.Sprintf("$%d", n)...)
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}

func (s *sqlStore) FindWorlds(ctx context.Context, ownerID string) ([]*domain.World, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT doc FROM worlds WHERE owner_id = ? ORDER BY position ASC`), ownerID)
	if err != nil {
		return nil, fmt.Errorf("find worlds: %w", err)
	}
	defer rows.Close()

	var worlds []*domain.World
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan world: %w", err)
		}
		var w domain.World
		if err := json.Unmarshal([]byte(doc), &w); err != nil {
			return nil, fmt.Errorf("decode world: %w", err)
		}
		worlds = append(worlds, &w)
	}
	return worlds, rows.Err()
}

// ReplaceWorlds overwrites the owner's entire world set in one transaction.
func (s *sqlStore) ReplaceWorlds(ctx context.Context, ownerID string, worlds []*domain.World) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		s.rebind(`DELETE FROM worlds WHERE owner_id = ?`), ownerID); err != nil {
		return fmt.Errorf("clear worlds: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for i, w := range worlds {
		doc, err := json.Marshal(w)
		if err != nil {
			return fmt.Errorf("encode world %s: %w", w.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			s.rebind(`INSERT INTO worlds (owner_id, world_id, position, doc, updated_at) VALUES (?, ?, ?, ?, ?)`),
			ownerID, w.ID, i, string(doc), now); err != nil {
			return fmt.Errorf("insert world %s: %w", w.ID, err)
		}
	}
	return tx.Commit()
}

func (s *sqlStore) DeleteWorlds(ctx context.Context, ownerID string) error {
	_, err := s.db.ExecContext(ctx,
		s.rebind(`DELETE FROM worlds WHERE owner_id = ?`), ownerID)
	return err
}

func (s *sqlStore) Close(context.Context) error {
	return s.db.Close()
}
