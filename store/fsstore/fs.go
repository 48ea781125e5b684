// Package fsstore persists records as files in a results directory,
// one JSON document per task plus a sidecar holding the raw model
// output. Records survive process crashes and can be re-read by the
// aggregator without the dispatcher present.
package fsstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	leadgenius "github.com/ronfux/LeadGenius"
	"github.com/ronfux/LeadGenius/record"
)

const (
	recordExt = ".json"
	rawSuffix = "_raw.txt"

	dirPerm  = 0o755
	filePerm = 0o644
)

var _ record.Store = (*Store)(nil)

// Store writes each record to <dir>/<task_id>.json and the raw model
// output to <dir>/<task_id>_raw.txt. Writes go through a temp file and
// rename so a crash never leaves a half-written record behind.
type Store struct {
	dir string

	mu     sync.Mutex
	closed bool
}

// New creates the results directory if needed and returns a store
// rooted at it.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("fsstore: empty directory")
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("fsstore: create %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory records are written to.
func (s *Store) Dir() string { return s.dir }

// Save writes the record and its raw output, replacing any previous
// files for the same task ID.
func (s *Store) Save(ctx context.Context, r *record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return leadgenius.ErrStoreClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	name := sanitize(r.TaskID)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("fsstore: marshal %s: %w", r.TaskID, err)
	}
	if err := writeAtomic(filepath.Join(s.dir, name+recordExt), data); err != nil {
		return fmt.Errorf("fsstore: write %s: %w", r.TaskID, err)
	}

	if raw := r.Result.RawOutput; raw != "" {
		if err := writeAtomic(filepath.Join(s.dir, name+rawSuffix), []byte(raw)); err != nil {
			return fmt.Errorf("fsstore: write raw %s: %w", r.TaskID, err)
		}
	}
	return nil
}

// Get reads the record for a task ID.
func (s *Store) Get(ctx context.Context, taskID string) (*record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, leadgenius.ErrStoreClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.dir, sanitize(taskID)+recordExt))
	if os.IsNotExist(err) {
		return nil, leadgenius.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fsstore: read %s: %w", taskID, err)
	}

	var r record.Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("fsstore: decode %s: %w", taskID, err)
	}
	return &r, nil
}

// List reads every record file in the directory, skipping JSON files
// that are not records, and returns them ordered by sequence.
func (s *Store) List(ctx context.Context) ([]*record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, leadgenius.ErrStoreClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("fsstore: read dir: %w", err)
	}

	out := make([]*record.Record, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), recordExt) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("fsstore: read %s: %w", e.Name(), err)
		}
		var r record.Record
		if err := json.Unmarshal(data, &r); err != nil || r.TaskID == "" {
			// Foreign JSON in the results directory, not ours.
			continue
		}
		out = append(out, &r)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Seq != out[j].Seq {
			return out[i].Seq < out[j].Seq
		}
		return out[i].TaskID < out[j].TaskID
	})
	return out, nil
}

// Close marks the store closed. Files already written stay on disk.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), filePerm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// sanitize keeps task IDs usable as file names on every platform.
func sanitize(taskID string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, taskID)
}
