package bunstore

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/ronfux/LeadGenius/id"
	"github.com/ronfux/LeadGenius/record"
)

type recordModel struct {
	bun.BaseModel `bun:"table:lead_records"`

	ID        string    `bun:"id,pk"`
	RunID     string    `bun:"run_id,notnull"`
	TaskID    string    `bun:"task_id,notnull"`
	Seq       int       `bun:"seq,notnull"`
	Status    string    `bun:"status,notnull"`
	RawOutput string    `bun:"raw_output"`
	Reason    string    `bun:"reason"`
	Attempts  int       `bun:"attempts,notnull,default:0"`
	Cancelled bool      `bun:"cancelled,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	ElapsedNS int64     `bun:"elapsed_ns,notnull,default:0"`
}

func toRecordModel(r *record.Record) *recordModel {
	return &recordModel{
		ID:        r.ID.String(),
		RunID:     r.RunID.String(),
		TaskID:    r.TaskID,
		Seq:       r.Seq,
		Status:    string(r.Result.Status),
		RawOutput: r.Result.RawOutput,
		Reason:    r.Result.Reason,
		Attempts:  r.Result.Attempts,
		Cancelled: r.Result.Cancelled,
		CreatedAt: r.Timestamp,
		ElapsedNS: r.Elapsed.Nanoseconds(),
	}
}

func fromRecordModel(m *recordModel) (*record.Record, error) {
	recID, err := id.ParseRecordID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("leadgenius/bunstore: parse record id %q: %w", m.ID, err)
	}
	runID, err := id.ParseRunID(m.RunID)
	if err != nil {
		return nil, fmt.Errorf("leadgenius/bunstore: parse run id %q: %w", m.RunID, err)
	}

	return &record.Record{
		ID:        recID,
		RunID:     runID,
		TaskID:    m.TaskID,
		Seq:       m.Seq,
		Timestamp: m.CreatedAt,
		Elapsed:   time.Duration(m.ElapsedNS),
		Result: record.Result{
			Status:    record.Status(m.Status),
			RawOutput: m.RawOutput,
			Reason:    m.Reason,
			Attempts:  m.Attempts,
			Cancelled: m.Cancelled,
		},
	}, nil
}
