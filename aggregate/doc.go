// Package aggregate turns stored task outcomes into a deduplicated,
// exportable dataset of businesses.
//
// An Aggregator is built around a data-field schema (the column set of the
// final dataset). Aggregate reads stored records in input-sequence order,
// extracts business entries from each success record's raw output,
// normalizes identity fields, and merges duplicates first-seen-wins: the
// first record with a given identity keeps its position and its field
// values; later duplicates only fill fields the representative is missing.
//
// Usage:
//
//	agg, err := aggregate.New([]string{"company_name", "address", "phone"})
//	if err != nil { ... }
//	ds, err := agg.Aggregate(ctx, records)
//	if err != nil { ... }
//	err = aggregate.WriteCSV(f, ds)
//
// Export is a pure projection: WriteCSV and WriteJSON emit the same records
// in the same order, and ReadJSON reconstructs them field-for-field.
package aggregate
