// Package codec converts model instances to and from their storage
// representation, honoring the composed schema's rename rules, sparse
// encoding and edition handling.
//
// The storage representation is a flat column-name to value mapping.
// Timestamps are carried as RFC 3339 strings, chosen once here and
// applied uniformly in both directions.
package codec

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/declmodel/declmodel/core/capability"
	"github.com/declmodel/declmodel/core/schema"
)

// TimeFormat is the wire format for timestamp fields.
const TimeFormat = time.RFC3339Nano

// Options configures a conversion.
type Options struct {
	// Update marks the update path: the edition field is written as the
	// record's last persisted edition plus exactly one.
	Update bool

	// Sparse omits fields whose value equals the schema's declared
	// default. The default is recoverable from the schema on read, so
	// round-trip fidelity is preserved.
	Sparse bool

	// IgnoreUnknown makes FromStorage skip stored columns that are not
	// part of the composed schema instead of failing.
	IgnoreUnknown bool
}

// MismatchError reports a stored column not present in the composed
// schema when no ignore policy is configured.
type MismatchError struct {
	Entity string
	Column string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("decode %s: stored column %q not in schema", e.Entity, e.Column)
}

// CoercionError reports a stored value that cannot be coerced to its
// field's type.
type CoercionError struct {
	Field string
	Type  schema.FieldType
	Value any
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("decode %s: cannot coerce %T to %s", e.Field, e.Value, e.Type)
}

// ToStorage converts an instance to its storage representation. Field
// order follows the composed schema; per-field column renames are
// applied; unset fields are always omitted and, with Options.Sparse,
// so are values equal to the declared default.
func ToStorage(composed *schema.Composed, record schema.Record, opts Options) schema.Record {
	out := make(schema.Record, len(record))

	for _, f := range composed.Fields {
		value, ok := record[f.Name]

		if opts.Update && f.Source == capability.Edition.String() {
			out[f.ColumnName()] = lastEdition(value) + 1
			continue
		}

		if !ok || value == nil {
			continue
		}
		if opts.Sparse && equalsDefault(f, value) {
			continue
		}

		out[f.ColumnName()] = encodeValue(f, value)
	}

	return out
}

// FromStorage converts a storage representation back into an instance.
// Omitted fields with a declared default are reconstructed from the
// schema; omitted nullable fields stay unset. A stored column outside
// the schema fails with MismatchError unless Options.IgnoreUnknown is
// set.
func FromStorage(composed *schema.Composed, stored schema.Record, opts Options) (schema.Record, error) {
	byColumn := make(map[string]schema.Field, len(composed.Fields))
	for _, f := range composed.Fields {
		byColumn[f.ColumnName()] = f
	}

	record := make(schema.Record, len(composed.Fields))
	for column, value := range stored {
		f, ok := byColumn[column]
		if !ok {
			if opts.IgnoreUnknown {
				continue
			}
			return nil, &MismatchError{Entity: composed.Entity, Column: column}
		}
		if value == nil {
			continue
		}

		decoded, err := decodeValue(f, value)
		if err != nil {
			return nil, err
		}
		record[f.Name] = decoded
	}

	// Reconstruct sparse-encoded defaults.
	for _, f := range composed.Fields {
		if _, ok := record[f.Name]; ok {
			continue
		}
		if f.Default != nil {
			record[f.Name] = cloneDefault(f.Default)
		}
	}

	return record, nil
}

// lastEdition reads the record's last persisted edition, treating an
// unset field as zero.
func lastEdition(value any) int64 {
	if value == nil {
		return 0
	}
	n, err := toInt64(value)
	if err != nil {
		return 0
	}
	return n
}

// encodeValue maps an instance value to its wire form.
func encodeValue(f schema.Field, value any) any {
	switch f.Type {
	case schema.FieldTypeTimestamp:
		if t, ok := value.(time.Time); ok {
			return t.UTC().Format(TimeFormat)
		}
	case schema.FieldTypeUUID:
		if u, ok := value.(uuid.UUID); ok {
			return u.String()
		}
	case schema.FieldTypeInteger:
		if n, err := toInt64(value); err == nil {
			return n
		}
	}
	return value
}

// decodeValue coerces a stored value to the field's instance type.
func decodeValue(f schema.Field, value any) (any, error) {
	switch f.Type {
	case schema.FieldTypeText, schema.FieldTypeEnum:
		if s, ok := value.(string); ok {
			return s, nil
		}

	case schema.FieldTypeUUID:
		if s, ok := value.(string); ok {
			if _, err := uuid.Parse(s); err != nil {
				return nil, &CoercionError{Field: f.Name, Type: f.Type, Value: value}
			}
			return s, nil
		}

	case schema.FieldTypeInteger:
		if n, err := toInt64(value); err == nil {
			return n, nil
		}

	case schema.FieldTypeFloat:
		switch n := value.(type) {
		case float64:
			return n, nil
		case float32:
			return float64(n), nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		}

	case schema.FieldTypeBool:
		switch b := value.(type) {
		case bool:
			return b, nil
		case int64:
			return b != 0, nil // SQLite stores booleans as integers
		}

	case schema.FieldTypeTimestamp:
		switch t := value.(type) {
		case time.Time:
			return t.UTC(), nil
		case string:
			parsed, err := time.Parse(TimeFormat, t)
			if err != nil {
				return nil, &CoercionError{Field: f.Name, Type: f.Type, Value: value}
			}
			return parsed.UTC(), nil
		}

	case schema.FieldTypeStrings:
		switch list := value.(type) {
		case []string:
			return list, nil
		case []any:
			out := make([]string, len(list))
			for i, item := range list {
				s, ok := item.(string)
				if !ok {
					return nil, &CoercionError{Field: f.Name, Type: f.Type, Value: value}
				}
				out[i] = s
			}
			return out, nil
		}

	case schema.FieldTypeJSON:
		if m, ok := value.(map[string]any); ok {
			return m, nil
		}
	}

	return nil, &CoercionError{Field: f.Name, Type: f.Type, Value: value}
}

// equalsDefault reports whether a value equals the field's declared
// default, normalizing numeric width for integer fields.
func equalsDefault(f schema.Field, value any) bool {
	if f.Default == nil {
		return false
	}

	switch f.Type {
	case schema.FieldTypeInteger:
		a, errA := toInt64(value)
		b, errB := toInt64(f.Default)
		return errA == nil && errB == nil && a == b
	case schema.FieldTypeStrings:
		a, okA := toStrings(value)
		b, okB := toStrings(f.Default)
		if !okA || !okB || len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	case schema.FieldTypeJSON:
		// JSON defaults are not comparable; always store them.
		return false
	default:
		return value == f.Default
	}
}

// cloneDefault copies slice and map defaults so decoded records never
// alias the schema's descriptor values.
func cloneDefault(v any) any {
	switch val := v.(type) {
	case []string:
		out := make([]string, len(val))
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

func toStrings(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return list, true
	case []any:
		out := make([]string, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("cannot convert %T to int64", v)
	}
}
