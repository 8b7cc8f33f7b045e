// Package backends opens a database.DB by backend name.
package backends

import (
	"fmt"
	"os"
	"strings"

	"github.com/LeJamon/goEscrowd/internal/storage/database"
	"github.com/LeJamon/goEscrowd/internal/storage/database/bbolt"
	"github.com/LeJamon/goEscrowd/internal/storage/database/leveldb"
	"github.com/LeJamon/goEscrowd/internal/storage/database/memory"
	"github.com/LeJamon/goEscrowd/internal/storage/database/pebble"
)

// Backend names
const (
	Pebble  = "pebble"
	BBolt   = "bbolt"
	LevelDB = "leveldb"
	Memory  = "memory"
)

// StateDBName is the name of the database holding ledger state
const StateDBName = "state"

// Config selects and configures a backend
type Config struct {
	Type      string
	Path      string
	CacheSize int // MB
}

// Names lists the supported backends
func Names() []string {
	return []string{Pebble, BBolt, LevelDB, Memory}
}

// Open opens the state database described by cfg.
func Open(cfg Config) (database.DB, error) {
	typ := strings.ToLower(cfg.Type)
	if typ != Memory {
		if cfg.Path == "" {
			return nil, fmt.Errorf("%s backend needs a path", typ)
		}
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", cfg.Path, err)
		}
	}

	cacheBytes := cfg.CacheSize * 1024 * 1024

	switch typ {
	case Pebble:
		return pebble.Open(cfg.Path, StateDBName, int64(cacheBytes))
	case BBolt:
		return bbolt.Open(cfg.Path, StateDBName)
	case LevelDB:
		return leveldb.Open(cfg.Path, StateDBName, cacheBytes)
	case Memory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("%w: %q", database.ErrUnknownBackend, cfg.Type)
	}
}
