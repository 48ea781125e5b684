package bunstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	leadgenius "github.com/ronfux/LeadGenius"
	"github.com/ronfux/LeadGenius/id"
	"github.com/ronfux/LeadGenius/record"
	"github.com/ronfux/LeadGenius/store/bunstore"
)

func setupTestStore(t *testing.T) *bunstore.Store {
	t.Helper()
	s, err := bunstore.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newRecord(runID id.RunID, taskID string, seq int, res record.Result) *record.Record {
	return &record.Record{
		ID:        id.NewRecordID(),
		RunID:     runID,
		TaskID:    taskID,
		Seq:       seq,
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Elapsed:   1500 * time.Millisecond,
		Result:    res,
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := setupTestStore(t)
	// Open already migrated once; a second pass must be a no-op.
	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.Ping(context.Background()))
}

func TestSaveAndGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	in := newRecord(id.NewRunID(), "houston_tx", 2, record.Success(`{"businesses":[]}`, 2))
	require.NoError(t, s.Save(ctx, in))

	got, err := s.Get(ctx, "houston_tx")
	require.NoError(t, err)
	require.Equal(t, in.ID.String(), got.ID.String())
	require.Equal(t, in.RunID.String(), got.RunID.String())
	require.Equal(t, "houston_tx", got.TaskID)
	require.Equal(t, 2, got.Seq)
	require.Equal(t, in.Elapsed, got.Elapsed)
	require.True(t, got.Result.Success())
	require.Equal(t, 2, got.Result.Attempts)
}

func TestGetMissing(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Get(context.Background(), "nope")
	require.ErrorIs(t, err, leadgenius.ErrRecordNotFound)
}

func TestSaveUpsertsSameTask(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first := newRecord(id.NewRunID(), "austin_tx", 0, record.Failure("per-task timeout", 3))
	require.NoError(t, s.Save(ctx, first))

	second := newRecord(id.NewRunID(), "austin_tx", 0, record.Success("{}", 1))
	require.NoError(t, s.Save(ctx, second))

	got, err := s.Get(ctx, "austin_tx")
	require.NoError(t, err)
	require.Equal(t, second.ID.String(), got.ID.String())
	require.Equal(t, second.RunID.String(), got.RunID.String())
	require.True(t, got.Result.Success())

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestListOrdersBySeq(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	runID := id.NewRunID()

	for _, r := range []*record.Record{
		newRecord(runID, "c", 2, record.Success("{}", 1)),
		newRecord(runID, "a", 0, record.Success("{}", 1)),
		newRecord(runID, "b", 1, record.CancelledFailure("cancelled before launch", 0)),
	} {
		require.NoError(t, s.Save(ctx, r))
	}

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "a", list[0].TaskID)
	require.Equal(t, "b", list[1].TaskID)
	require.Equal(t, "c", list[2].TaskID)
	require.True(t, list[1].Result.Cancelled)
}

func TestListRunFilters(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	oldRun := id.NewRunID()
	newRun := id.NewRunID()

	require.NoError(t, s.Save(ctx, newRecord(oldRun, "houston_tx", 0, record.Success("{}", 1))))
	require.NoError(t, s.Save(ctx, newRecord(newRun, "austin_tx", 0, record.Success("{}", 1))))
	require.NoError(t, s.Save(ctx, newRecord(newRun, "dallas_tx", 1, record.Failure("empty output", 3))))

	got, err := s.ListRun(ctx, newRun)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "austin_tx", got[0].TaskID)
	require.Equal(t, "dallas_tx", got[1].TaskID)
}
