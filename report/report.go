// Package report summarizes a dispatch run for operators and machines.
//
// A Summary combines dispatch-side counts (derived from stored records)
// with dataset-side counts (filled from an aggregation pass). String is
// the one-line operator form; the struct marshals to JSON for reports.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ronfux/LeadGenius/aggregate"
	"github.com/ronfux/LeadGenius/record"
)

// Summary is the run-level report.
type Summary struct {
	// RunID identifies the dispatch run, empty when the summarized records
	// span several runs.
	RunID string `json:"run_id,omitempty"`

	// Dispatch-side counts.
	Tasks     int `json:"tasks"`
	Launched  int `json:"launched"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	// Cancelled is the subset of Failed cut off by run cancellation.
	Cancelled int `json:"cancelled"`

	// Dataset-side counts, filled by ApplyDataset.
	ParseFailures    int `json:"parse_failures"`
	UniqueBusinesses int `json:"unique_businesses"`
	DuplicatesMerged int `json:"duplicates_merged"`

	Elapsed time.Duration `json:"elapsed"`

	// FailedTasks lists failed task IDs in input order, so a caller can
	// re-run exactly the failed subset.
	FailedTasks []string `json:"failed_tasks,omitempty"`
}

// FromRecords derives the dispatch-side counts from stored records.
// Failed task IDs are listed in input-sequence order regardless of the
// slice order.
func FromRecords(records []*record.Record) Summary {
	sorted := make([]*record.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, k int) bool {
		if sorted[i].Seq != sorted[k].Seq {
			return sorted[i].Seq < sorted[k].Seq
		}
		return sorted[i].TaskID < sorted[k].TaskID
	})

	s := Summary{Tasks: len(sorted)}
	for _, rec := range sorted {
		if rec.Result.Attempts > 0 {
			s.Launched++
		}
		if rec.Result.Success() {
			s.Succeeded++
			continue
		}
		s.Failed++
		if rec.Result.Cancelled {
			s.Cancelled++
		}
		s.FailedTasks = append(s.FailedTasks, rec.TaskID)
	}

	if len(sorted) > 0 {
		runID := sorted[0].RunID.String()
		for _, rec := range sorted[1:] {
			if rec.RunID.String() != runID {
				runID = ""
				break
			}
		}
		s.RunID = runID
	}

	return s
}

// ApplyDataset fills the dataset-side counts from an aggregation pass.
func (s *Summary) ApplyDataset(stats aggregate.Stats) {
	s.ParseFailures = stats.ParseFailures
	s.UniqueBusinesses = stats.Unique
	s.DuplicatesMerged = stats.Duplicates
}

// String renders the one-line operator summary.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d tasks: %d succeeded, %d failed", s.Tasks, s.Succeeded, s.Failed)
	if s.Cancelled > 0 {
		fmt.Fprintf(&b, " (%d cancelled)", s.Cancelled)
	}
	fmt.Fprintf(&b, ", %d unique businesses, %d duplicates merged",
		s.UniqueBusinesses, s.DuplicatesMerged)
	if s.ParseFailures > 0 {
		fmt.Fprintf(&b, ", %d parse failures", s.ParseFailures)
	}
	if s.Elapsed > 0 {
		fmt.Fprintf(&b, " in %s", s.Elapsed.Round(time.Millisecond))
	}
	if len(s.FailedTasks) > 0 {
		fmt.Fprintf(&b, "; failed: %s", strings.Join(s.FailedTasks, ", "))
	}
	return b.String()
}
