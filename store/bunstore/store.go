// Package bunstore archives records in SQLite through the Bun ORM.
// Unlike the per-run results directory, the archive is keyed by task
// ID across runs: re-dispatching a task updates its row in place, so
// the table always holds the latest record for every task ever run.
package bunstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	leadgenius "github.com/ronfux/LeadGenius"
	"github.com/ronfux/LeadGenius/id"
	"github.com/ronfux/LeadGenius/record"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var _ record.Store = (*Store)(nil)

// Store is a Bun ORM implementation of record.Store using the SQLite
// dialect.
type Store struct {
	db     *bun.DB
	logger *slog.Logger
	ownsDB bool
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New wraps an existing Bun handle. The caller owns the db lifecycle;
// Close is a no-op.
func New(db *bun.DB, opts ...Option) *Store {
	s := &Store{
		db:     db,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens (creating if needed) a SQLite database at path and runs
// migrations. The returned store owns the connection and closes it on
// Close. Use ":memory:" for an ephemeral database.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	dsn := path
	if path == ":memory:" {
		dsn = "file::memory:?cache=shared"
	}
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("leadgenius/bunstore: open %s: %w", path, err)
	}
	// SQLite has a single writer; a one-connection pool keeps the
	// shim drivers from tripping over table locks.
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)

	s := New(bun.NewDB(sqldb, sqlitedialect.New()), opts...)
	s.ownsDB = true
	if err := s.Migrate(ctx); err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return s, nil
}

// DB returns the underlying *bun.DB for advanced usage.
func (s *Store) DB() *bun.DB {
	return s.db
}

// Migrate runs all embedded SQL migration files in order.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS lead_migrations (
			filename TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("leadgenius/bunstore: create migrations table: %w", err)
	}

	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("leadgenius/bunstore: read migrations: %w", err)
	}

	// Sort by filename for deterministic order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		var applied bool
		err = s.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM lead_migrations WHERE filename = ?)`,
			entry.Name(),
		).Scan(&applied)
		if err != nil {
			return fmt.Errorf("leadgenius/bunstore: check migration %s: %w", entry.Name(), err)
		}
		if applied {
			continue
		}

		data, readErr := fs.ReadFile(migrationsFS, "migrations/"+entry.Name())
		if readErr != nil {
			return fmt.Errorf("leadgenius/bunstore: read migration %s: %w", entry.Name(), readErr)
		}

		if _, execErr := s.db.ExecContext(ctx, string(data)); execErr != nil {
			return fmt.Errorf("leadgenius/bunstore: execute migration %s: %w", entry.Name(), execErr)
		}

		if _, recErr := s.db.ExecContext(ctx,
			`INSERT INTO lead_migrations (filename) VALUES (?)`,
			entry.Name(),
		); recErr != nil {
			return fmt.Errorf("leadgenius/bunstore: record migration %s: %w", entry.Name(), recErr)
		}

		s.logger.Info("applied migration", "file", entry.Name())
	}

	return nil
}

// Save upserts the record, replacing any previous row for the same
// task ID.
func (s *Store) Save(ctx context.Context, r *record.Record) error {
	m := toRecordModel(r)
	_, err := s.db.NewInsert().Model(m).
		On("CONFLICT (task_id) DO UPDATE").
		Set("id = EXCLUDED.id").
		Set("run_id = EXCLUDED.run_id").
		Set("seq = EXCLUDED.seq").
		Set("status = EXCLUDED.status").
		Set("raw_output = EXCLUDED.raw_output").
		Set("reason = EXCLUDED.reason").
		Set("attempts = EXCLUDED.attempts").
		Set("cancelled = EXCLUDED.cancelled").
		Set("created_at = EXCLUDED.created_at").
		Set("elapsed_ns = EXCLUDED.elapsed_ns").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("leadgenius/bunstore: save record %s: %w", r.TaskID, err)
	}
	return nil
}

// Get retrieves the record for a task ID.
func (s *Store) Get(ctx context.Context, taskID string) (*record.Record, error) {
	m := new(recordModel)
	err := s.db.NewSelect().Model(m).
		Where("task_id = ?", taskID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, leadgenius.ErrRecordNotFound
		}
		return nil, fmt.Errorf("leadgenius/bunstore: get record %s: %w", taskID, err)
	}
	return fromRecordModel(m)
}

// List returns every archived record ordered by sequence.
func (s *Store) List(ctx context.Context) ([]*record.Record, error) {
	var models []recordModel
	err := s.db.NewSelect().Model(&models).
		Order("seq ASC", "task_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("leadgenius/bunstore: list records: %w", err)
	}
	return fromRecordModels(models)
}

// ListRun returns the archived records written by the given run,
// ordered by sequence.
func (s *Store) ListRun(ctx context.Context, runID id.RunID) ([]*record.Record, error) {
	var models []recordModel
	err := s.db.NewSelect().Model(&models).
		Where("run_id = ?", runID.String()).
		Order("seq ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("leadgenius/bunstore: list run %s: %w", runID, err)
	}
	return fromRecordModels(models)
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database if the store opened it; otherwise the
// caller owns the handle and Close is a no-op.
func (s *Store) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}

func fromRecordModels(models []recordModel) ([]*record.Record, error) {
	out := make([]*record.Record, 0, len(models))
	for i := range models {
		r, err := fromRecordModel(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
