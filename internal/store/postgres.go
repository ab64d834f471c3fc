package store

import (
	_ "github.com/lib/pq"
)

// openPostgres connects to a Postgres host. lib/pq accepts the postgres://
// URL form directly.
func openPostgres(dsn string) (*sqlStore, error) {
	return newSQLStore("postgres", dsn)
}
