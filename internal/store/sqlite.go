package store

import (
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// openSQLite opens (or creates) the embedded store at path. WAL mode with a
// busy timeout, and a single connection since SQLite supports one writer.
func openSQLite(path string) (*sqlStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	s, err := newSQLStore("sqlite", path)
	if err != nil {
		return nil, err
	}
	s.db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := s.db.Exec(pragma); err != nil {
			s.db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return s, nil
}
