package aggregate

// NameField is the schema field carrying the company name. It anchors the
// identity of every business: entries without it are skipped, and the
// normalized name is the first DedupKey component.
const NameField = "company_name"

// Provenance column names appended after the schema fields on export.
const (
	cityColumn       = "city"
	stateColumn      = "state"
	sourceTaskColumn = "source_task"
)

// Business is one extracted entity: schema field values plus provenance.
// Fields holds only present values; an absent field has no key. Values are
// never fabricated.
type Business struct {
	Fields     map[string]string
	City       string
	State      string
	SourceTask string
}

// Key is the derived identity of a Business. Two businesses with equal
// keys are the same real-world entity.
type Key struct {
	Name  string
	City  string
	State string
}

// Key derives the normalized identity of the business.
func (b *Business) Key() Key {
	return Key{
		Name:  NormalizeName(b.Fields[NameField]),
		City:  Normalize(b.City),
		State: Normalize(b.State),
	}
}

// merge fills fields absent on b from dup. Fields present on both keep
// b's value: first seen wins on conflict.
func (b *Business) merge(dup *Business) {
	for f, v := range dup.Fields {
		if _, ok := b.Fields[f]; !ok {
			b.Fields[f] = v
		}
	}
	if b.City == "" {
		b.City = dup.City
	}
	if b.State == "" {
		b.State = dup.State
	}
	if b.SourceTask == "" {
		b.SourceTask = dup.SourceTask
	}
}
