package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ronfux/LeadGenius/jsonx"
	"github.com/ronfux/LeadGenius/record"
)

var (
	ErrEmptySchema       = errors.New("aggregate: empty schema")
	ErrSchemaMissingName = errors.New("aggregate: schema must include company_name")
)

// Stats counts one aggregation pass.
type Stats struct {
	// Records is the number of stored records read.
	Records int `json:"records"`
	// Successes and Failures split Records by task outcome.
	Successes int `json:"successes"`
	Failures  int `json:"failures"`
	// ParseFailures counts success records whose output could not be
	// projected into the schema, plus entries without a usable name.
	ParseFailures int `json:"parse_failures"`
	// Extracted is the business entry count before dedup.
	Extracted int `json:"extracted"`
	// Unique and Duplicates split Extracted after the merge.
	Unique     int `json:"unique"`
	Duplicates int `json:"duplicates"`
}

// Dataset is the merged, deduplicated output of one aggregation pass, in
// first-seen order. Immutable once produced.
type Dataset struct {
	Schema      []string
	Businesses  []*Business
	GeneratedAt time.Time
	Stats       Stats
}

// Aggregator extracts, normalizes, and merges business entries from stored
// records against a fixed data-field schema.
type Aggregator struct {
	schema []string
	logger *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) { a.logger = logger }
}

// New builds an Aggregator for the given schema. The schema fixes the field
// set and the export column order; it must include company_name.
func New(schema []string, opts ...Option) (*Aggregator, error) {
	if len(schema) == 0 {
		return nil, ErrEmptySchema
	}
	hasName := false
	for _, f := range schema {
		if f == NameField {
			hasName = true
			break
		}
	}
	if !hasName {
		return nil, ErrSchemaMissingName
	}

	a := &Aggregator{
		schema: append([]string(nil), schema...),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a, nil
}

// docMeta is document-level metadata that entries fall back to when they
// omit their own city, state, or industry.
type docMeta struct {
	city     string
	state    string
	industry string
}

// Aggregate merges all stored records into a Dataset. Records are processed
// in ascending input-sequence order regardless of slice order, so the
// first-seen positions are reproducible across runs. Unparseable records and
// unusable entries are counted and skipped; they never fail the pass. The
// only error returned is context cancellation.
func (a *Aggregator) Aggregate(ctx context.Context, records []*record.Record) (*Dataset, error) {
	sorted := make([]*record.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, k int) bool {
		if sorted[i].Seq != sorted[k].Seq {
			return sorted[i].Seq < sorted[k].Seq
		}
		return sorted[i].TaskID < sorted[k].TaskID
	})

	ds := &Dataset{
		Schema:      append([]string(nil), a.schema...),
		GeneratedAt: time.Now().UTC(),
	}
	stats := &ds.Stats
	stats.Records = len(sorted)

	seen := make(map[Key]*Business)

	for _, rec := range sorted {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !rec.Result.Success() {
			stats.Failures++
			continue
		}
		stats.Successes++

		entries, meta, err := a.parseDocument(rec.Result.RawOutput)
		if err != nil {
			stats.ParseFailures++
			a.logger.Warn("unusable raw output",
				slog.String("task_id", rec.TaskID),
				slog.String("error", err.Error()),
			)
			continue
		}

		for _, entry := range entries {
			b, ok := a.buildBusiness(entry, meta, rec.TaskID)
			if !ok {
				stats.ParseFailures++
				continue
			}
			stats.Extracted++

			k := b.Key()
			if rep, dup := seen[k]; dup {
				rep.merge(b)
				continue
			}
			seen[k] = b
			ds.Businesses = append(ds.Businesses, b)
		}
	}

	stats.Unique = len(ds.Businesses)
	stats.Duplicates = stats.Extracted - stats.Unique

	a.logger.Info("aggregation finished",
		slog.Int("records", stats.Records),
		slog.Int("extracted", stats.Extracted),
		slog.Int("unique", stats.Unique),
		slog.Int("duplicates", stats.Duplicates),
		slog.Int("parse_failures", stats.ParseFailures),
	)

	return ds, nil
}

// parseDocument extracts the business entries and document metadata from
// one raw output. Three shapes are recognized: an object with a
// "businesses" list plus metadata, a single deep-research object keyed by
// company_name, and a bare array of entries.
func (a *Aggregator) parseDocument(raw string) ([]map[string]any, docMeta, error) {
	doc, err := jsonx.Extract(raw)
	if err != nil {
		return nil, docMeta{}, err
	}

	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return nil, docMeta{}, err
	}

	switch data := v.(type) {
	case map[string]any:
		if list, ok := data["businesses"]; ok {
			items, ok := list.([]any)
			if !ok {
				return nil, docMeta{}, errors.New("aggregate: businesses is not a list")
			}
			meta := docMeta{
				city:     stringValue(data["city"]),
				state:    stringValue(data["state"]),
				industry: stringValue(data["industry"]),
			}
			return entryList(items), meta, nil
		}
		if _, ok := data[NameField]; ok {
			return []map[string]any{flattenCompany(data)}, docMeta{}, nil
		}
		return nil, docMeta{}, errors.New("aggregate: unrecognized document shape")
	case []any:
		return entryList(data), docMeta{}, nil
	}
	return nil, docMeta{}, errors.New("aggregate: document is not an object or list")
}

// entryList coerces raw list items to entry maps. Non-object items become
// nil entries, dropped later for lacking a name.
func entryList(items []any) []map[string]any {
	entries := make([]map[string]any, 0, len(items))
	for _, item := range items {
		m, _ := item.(map[string]any)
		entries = append(entries, m)
	}
	return entries
}

// flattenCompany lifts the nested location and contact groups of a deep
// research document to top level, so schema fields address them directly.
// Top-level keys win on collision.
func flattenCompany(data map[string]any) map[string]any {
	entry := make(map[string]any, len(data))
	for k, v := range data {
		entry[k] = v
	}
	for _, group := range []string{"location", "contact"} {
		nested, ok := data[group].(map[string]any)
		if !ok {
			continue
		}
		for k, v := range nested {
			if _, exists := entry[k]; !exists {
				entry[k] = v
			}
		}
	}
	return entry
}

// buildBusiness projects one entry onto the schema. Fields are copied when
// present and never fabricated; city, state, and industry fall back to
// document metadata. Entries without a usable name are rejected.
func (a *Aggregator) buildBusiness(entry map[string]any, meta docMeta, taskID string) (*Business, bool) {
	if stringValue(entry[NameField]) == "" {
		a.logger.Debug("skipping entry without a company name",
			slog.String("task_id", taskID))
		return nil, false
	}

	b := &Business{
		Fields:     make(map[string]string, len(a.schema)),
		SourceTask: taskID,
	}

	for _, f := range a.schema {
		val := stringValue(entry[f])
		if val == "" {
			switch f {
			case cityColumn:
				val = meta.city
			case stateColumn:
				val = meta.state
			case "industry":
				val = meta.industry
			}
		}
		switch f {
		case "phone":
			val = NormalizePhone(val)
		case "website":
			val = NormalizeURL(val)
		}
		if val != "" {
			b.Fields[f] = val
		}
	}

	b.City = stringValue(entry[cityColumn])
	if b.City == "" {
		b.City = meta.city
	}
	b.State = stringValue(entry[stateColumn])
	if b.State == "" {
		b.State = meta.state
	}

	return b, true
}

// stringValue renders a JSON value as a flat field value. Scalars convert
// directly; nested structures keep their compact JSON form.
func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}
