package schema

// Record is a model instance: a mapping from field name to value.
// Unset nullable fields are simply absent from the map.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Composed is the effective schema for one entity: its base fields
// followed by the fields of every enabled capability in canonical
// order, plus the aggregated validation rules.
//
// A Composed value is immutable after construction and safe for
// unsynchronized concurrent reads.
type Composed struct {
	// Entity is the model name this schema was composed for.
	Entity string

	// Fields is the ordered field list: base fields first, then
	// capability fields in canonical capability order.
	Fields []Field

	// Rules is the aggregated rule list: base rules first, then each
	// enabled capability's rules in canonical order, then composer-level
	// aggregate rules.
	Rules []Rule

	// Mask is the enabled-capability bitmask the schema was composed with.
	Mask uint64
}

// Field returns the descriptor for the named field.
func (c *Composed) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// HasField reports whether the named field is part of the schema.
func (c *Composed) HasField(name string) bool {
	_, ok := c.Field(name)
	return ok
}

// NewRecord builds a default-complete instance for this schema:
// every field with a non-nil default is set to it, everything else
// stays unset.
func (c *Composed) NewRecord() Record {
	rec := make(Record)
	for _, f := range c.Fields {
		if f.Default == nil {
			continue
		}
		rec[f.Name] = cloneValue(f.Default)
	}
	return rec
}

// cloneValue copies slice defaults so instances never alias the
// schema's descriptor values.
func cloneValue(v any) any {
	switch val := v.(type) {
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	case []any:
		out := make([]any, len(val))
		copy(out, val)
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = item
		}
		return out
	default:
		return v
	}
}
