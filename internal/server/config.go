package server

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config is the server configuration, loaded from YAML.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `yaml:"addr"`
	// DSN selects the world store backend (see store.Open).
	DSN string `yaml:"dsn"`
	// LogLevel is a zerolog level name; hot-reloaded when the config file
	// changes.
	LogLevel string `yaml:"log_level"`
	// AuthSecret verifies bearer token signatures when set. Empty means
	// tokens are trusted as issued by the upstream auth provider.
	AuthSecret string `yaml:"auth_secret"`
}

func DefaultConfig() *Config {
	return &Config{
		Addr:     ":8787",
		DSN:      "worldbuilder.db",
		LogLevel: "info",
	}
}

// LoadConfig reads path, layering the file over defaults. A missing path
// returns defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// WatchConfig re-reads the file on every write and hands the result to
// onReload. Returns a stop function. Only hot-reloadable fields (log level)
// should be acted on; addr/dsn changes need a restart.
func WatchConfig(path string, log zerolog.Logger, onReload func(*Config)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	// Watch the directory: editors replace files on save, which would drop
	// a watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				cfg, err := LoadConfig(path)
				if err != nil {
					log.Warn().Err(err).Msg("config reload failed, keeping previous")
					continue
				}
				log.Info().Str("path", path).Msg("config reloaded")
				onReload(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("config watcher error")
			}
		}
	}()

	return func() { watcher.Close() }, nil
}
