package aggregate_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronfux/LeadGenius/aggregate"
	"github.com/ronfux/LeadGenius/id"
	"github.com/ronfux/LeadGenius/record"
)

var testSchema = []string{"company_name", "address", "phone", "website", "email"}

func newAggregator(t *testing.T, schema []string) *aggregate.Aggregator {
	t.Helper()
	agg, err := aggregate.New(schema,
		aggregate.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	return agg
}

func successRecord(taskID string, seq int, raw string) *record.Record {
	return &record.Record{
		ID:        id.NewRecordID(),
		RunID:     id.NewRunID(),
		TaskID:    taskID,
		Seq:       seq,
		Timestamp: time.Now().UTC(),
		Result:    record.Success(raw, 1),
	}
}

func failureRecord(taskID string, seq int) *record.Record {
	return &record.Record{
		ID:        id.NewRecordID(),
		RunID:     id.NewRunID(),
		TaskID:    taskID,
		Seq:       seq,
		Timestamp: time.Now().UTC(),
		Result:    record.Failure("backend offline", 3),
	}
}

func TestNew_ValidatesSchema(t *testing.T) {
	_, err := aggregate.New(nil)
	assert.ErrorIs(t, err, aggregate.ErrEmptySchema)

	_, err = aggregate.New([]string{"address", "phone"})
	assert.ErrorIs(t, err, aggregate.ErrSchemaMissingName)
}

func TestAggregate_MergesSuffixVariants(t *testing.T) {
	agg := newAggregator(t, testSchema)

	records := []*record.Record{
		successRecord("houston_tx", 0, `{
			"city": "Houston", "state": "TX",
			"businesses": [{"company_name": "Acme Co", "city": "Houston", "state": "TX"}]
		}`),
		successRecord("houston_tx_2", 1, `{
			"city": "Houston", "state": "TX",
			"businesses": [{"company_name": "ACME CO.", "city": "Houston", "state": "TX", "phone": "555-0100"}]
		}`),
	}

	ds, err := agg.Aggregate(context.Background(), records)
	require.NoError(t, err)

	require.Len(t, ds.Businesses, 1)
	b := ds.Businesses[0]
	// First seen wins on conflict; absent fields fill from the duplicate.
	assert.Equal(t, "Acme Co", b.Fields["company_name"])
	assert.Equal(t, "555-0100", b.Fields["phone"])
	assert.Equal(t, "Houston", b.City)
	assert.Equal(t, "TX", b.State)
	assert.Equal(t, "houston_tx", b.SourceTask)

	assert.Equal(t, 2, ds.Stats.Extracted)
	assert.Equal(t, 1, ds.Stats.Unique)
	assert.Equal(t, 1, ds.Stats.Duplicates)
}

func TestAggregate_FirstSeenOrderFollowsSeq(t *testing.T) {
	agg := newAggregator(t, testSchema)

	doc := func(name string) string {
		return `{"businesses": [{"company_name": "` + name + `", "city": "Austin", "state": "TX"}]}`
	}
	// Slice order is completion order; seq is input order.
	records := []*record.Record{
		successRecord("c", 2, doc("Charlie Drains")),
		successRecord("a", 0, doc("Alpha Plumbing")),
		successRecord("b", 1, doc("Bravo Pipeworks")),
	}

	ds, err := agg.Aggregate(context.Background(), records)
	require.NoError(t, err)

	require.Len(t, ds.Businesses, 3)
	assert.Equal(t, "Alpha Plumbing", ds.Businesses[0].Fields["company_name"])
	assert.Equal(t, "Bravo Pipeworks", ds.Businesses[1].Fields["company_name"])
	assert.Equal(t, "Charlie Drains", ds.Businesses[2].Fields["company_name"])
}

func TestAggregate_DocumentShapes(t *testing.T) {
	agg := newAggregator(t, testSchema)

	records := []*record.Record{
		// City-search shape: entries fall back to document metadata.
		successRecord("houston_tx", 0, `{
			"city": "Houston", "state": "TX", "industry": "plumbing",
			"businesses": [
				{"company_name": "Acme Plumbing"},
				{"company_name": "Bayou Drainworks", "city": "Pasadena"}
			]
		}`),
		// Deep-research shape: nested location and contact groups.
		successRecord("lone_star", 1, `{
			"company_name": "Lone Star Pipeworks",
			"location": {"city": "Austin", "state": "TX", "address": "402 Congress Ave"},
			"contact": {"phone": "512 555 0188", "website": "lonestarpipe.com", "email": "info@lonestarpipe.com"}
		}`),
		// Bare array shape, wrapped in model prose.
		successRecord("waco_tx", 2, "Here is what I found:\n```json\n"+
			`[{"company_name": "Brazos Drain Co", "city": "Waco", "state": "TX", "phone": "254.555.0144"}]`+
			"\n```\nLet me know if you need more detail."),
	}

	ds, err := agg.Aggregate(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, ds.Businesses, 4)

	acme := ds.Businesses[0]
	assert.Equal(t, "Houston", acme.City, "entry city falls back to document metadata")
	assert.Equal(t, "TX", acme.State)

	bayou := ds.Businesses[1]
	assert.Equal(t, "Pasadena", bayou.City, "entry city wins over document metadata")
	assert.Equal(t, "TX", bayou.State)

	loneStar := ds.Businesses[2]
	assert.Equal(t, "Austin", loneStar.City)
	assert.Equal(t, "402 Congress Ave", loneStar.Fields["address"])
	assert.Equal(t, "(512) 555-0188", loneStar.Fields["phone"])
	assert.Equal(t, "https://lonestarpipe.com", loneStar.Fields["website"])
	assert.Equal(t, "info@lonestarpipe.com", loneStar.Fields["email"])

	brazos := ds.Businesses[3]
	assert.Equal(t, "Waco", brazos.City)
	assert.Equal(t, "(254) 555-0144", brazos.Fields["phone"])
	assert.Equal(t, "waco_tx", brazos.SourceTask)
}

func TestAggregate_CountsParseFailures(t *testing.T) {
	agg := newAggregator(t, testSchema)

	records := []*record.Record{
		failureRecord("amarillo_tx", 0),
		successRecord("beaumont_tx", 1, "I was unable to find structured data for this city."),
		successRecord("conroe_tx", 2, `{"businesses": [{"city": "Conroe"}]}`),
		successRecord("denton_tx", 3, `{"businesses": [{"company_name": "Denton Drains", "city": "Denton", "state": "TX"}]}`),
	}

	ds, err := agg.Aggregate(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, 4, ds.Stats.Records)
	assert.Equal(t, 3, ds.Stats.Successes)
	assert.Equal(t, 1, ds.Stats.Failures)
	// One unusable document plus one entry without a name.
	assert.Equal(t, 2, ds.Stats.ParseFailures)
	assert.Equal(t, 1, ds.Stats.Extracted)
	assert.Equal(t, 1, ds.Stats.Unique)
	assert.Equal(t, 0, ds.Stats.Duplicates)
	require.Len(t, ds.Businesses, 1)
	assert.Equal(t, "Denton Drains", ds.Businesses[0].Fields["company_name"])
}

func TestAggregate_MergeIsIdempotent(t *testing.T) {
	agg := newAggregator(t, testSchema)

	records := []*record.Record{
		successRecord("houston_tx", 0, `{
			"city": "Houston", "state": "TX",
			"businesses": [
				{"company_name": "Acme Co"},
				{"company_name": "ACME CO.", "phone": "713-555-0100"},
				{"company_name": "Bayou Drainworks", "website": "bayoudrain.com"}
			]
		}`),
	}

	once, err := agg.Aggregate(context.Background(), records)
	require.NoError(t, err)

	// Feeding every record twice merges each entry against the already
	// merged representative; nothing may change.
	twice, err := agg.Aggregate(context.Background(), append(records, records...))
	require.NoError(t, err)

	assert.Equal(t, once.Businesses, twice.Businesses)
	assert.Equal(t, once.Stats.Unique, twice.Stats.Unique)
}

func TestAggregate_ReturnsContextError(t *testing.T) {
	agg := newAggregator(t, testSchema)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := agg.Aggregate(ctx, []*record.Record{
		successRecord("houston_tx", 0, `{"businesses": []}`),
	})
	assert.ErrorIs(t, err, context.Canceled)
}
