package store

import (
	"context"
	"fmt"

	"github.com/ronfux/LeadGenius/record"
	"github.com/ronfux/LeadGenius/store/bunstore"
	"github.com/ronfux/LeadGenius/store/fsstore"
	"github.com/ronfux/LeadGenius/store/memstore"
)

// Kind names a record backend.
type Kind string

const (
	// KindFS writes one JSON file per task into a results directory.
	KindFS Kind = "fs"
	// KindSQLite archives records in a SQLite database.
	KindSQLite Kind = "sqlite"
	// KindMemory keeps records in memory. For tests and dry runs.
	KindMemory Kind = "memory"
)

// Defaults applied when the corresponding Config field is empty.
const (
	DefaultDir  = "results"
	DefaultPath = "leadgenius.db"
)

// Config selects and parameterizes a backend.
type Config struct {
	// Kind picks the backend. Empty means KindFS.
	Kind Kind `yaml:"kind"`
	// Dir is the results directory for the fs backend.
	Dir string `yaml:"dir"`
	// Path is the database file for the sqlite backend.
	Path string `yaml:"path"`
}

// Open constructs the backend named by cfg.
func Open(ctx context.Context, cfg Config) (record.Store, error) {
	switch cfg.Kind {
	case KindFS, "":
		dir := cfg.Dir
		if dir == "" {
			dir = DefaultDir
		}
		return fsstore.New(dir)
	case KindSQLite:
		path := cfg.Path
		if path == "" {
			path = DefaultPath
		}
		return bunstore.Open(ctx, path)
	case KindMemory:
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("store: unknown kind %q", cfg.Kind)
	}
}
