package aggregate

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// exportColumns is the full column list: schema order first, then the
// provenance columns the schema does not already carry.
func exportColumns(schema []string) []string {
	cols := append([]string(nil), schema...)
	for _, extra := range []string{cityColumn, stateColumn, sourceTaskColumn} {
		found := false
		for _, c := range cols {
			if c == extra {
				found = true
				break
			}
		}
		if !found {
			cols = append(cols, extra)
		}
	}
	return cols
}

// columnValue resolves one export cell. Provenance columns come from the
// business's provenance, everything else from its schema fields.
func columnValue(b *Business, col string) string {
	switch col {
	case cityColumn:
		return b.City
	case stateColumn:
		return b.State
	case sourceTaskColumn:
		return b.SourceTask
	}
	return b.Fields[col]
}

// WriteCSV writes the dataset in tabular form: header always written,
// schema columns in schema order, then city/state/source_task. Absent
// fields are empty cells. Row order is the dataset's first-seen order.
func WriteCSV(w io.Writer, ds *Dataset) error {
	cw := csv.NewWriter(w)
	cols := exportColumns(ds.Schema)

	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("aggregate: write csv header: %w", err)
	}
	row := make([]string, len(cols))
	for _, b := range ds.Businesses {
		for i, col := range cols {
			row[i] = columnValue(b, col)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("aggregate: write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// document is the JSON export shape.
type document struct {
	GeneratedAt  time.Time           `json:"generated_at"`
	TotalRecords int                 `json:"total_records"`
	Schema       []string            `json:"schema"`
	Businesses   []map[string]string `json:"businesses"`
}

// WriteJSON writes the dataset as one structured document carrying the same
// records as the CSV form, in the same order, with absent fields omitted.
func WriteJSON(w io.Writer, ds *Dataset) error {
	doc := document{
		GeneratedAt:  ds.GeneratedAt,
		TotalRecords: len(ds.Businesses),
		Schema:       append([]string(nil), ds.Schema...),
		Businesses:   make([]map[string]string, 0, len(ds.Businesses)),
	}
	for _, b := range ds.Businesses {
		doc.Businesses = append(doc.Businesses, flatten(b))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("aggregate: write json: %w", err)
	}
	return nil
}

// ReadJSON parses a document written by WriteJSON back into a Dataset with
// the same businesses, field for field. Stats are not part of the document
// and stay zero.
func ReadJSON(r io.Reader) (*Dataset, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("aggregate: read json: %w", err)
	}

	ds := &Dataset{
		Schema:      doc.Schema,
		GeneratedAt: doc.GeneratedAt,
	}
	for _, flat := range doc.Businesses {
		ds.Businesses = append(ds.Businesses, unflatten(doc.Schema, flat))
	}
	return ds, nil
}

// flatten projects a business onto one flat field-to-value map.
func flatten(b *Business) map[string]string {
	flat := make(map[string]string, len(b.Fields)+3)
	for f, v := range b.Fields {
		flat[f] = v
	}
	if b.City != "" {
		flat[cityColumn] = b.City
	}
	if b.State != "" {
		flat[stateColumn] = b.State
	}
	if b.SourceTask != "" {
		flat[sourceTaskColumn] = b.SourceTask
	}
	return flat
}

// unflatten rebuilds a business from a flat map: schema fields become
// Fields, provenance keys become provenance.
func unflatten(schema []string, flat map[string]string) *Business {
	b := &Business{
		Fields:     make(map[string]string, len(flat)),
		City:       flat[cityColumn],
		State:      flat[stateColumn],
		SourceTask: flat[sourceTaskColumn],
	}
	for _, f := range schema {
		if v, ok := flat[f]; ok && v != "" {
			b.Fields[f] = v
		}
	}
	return b
}
