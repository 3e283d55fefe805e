package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/declmodel/declmodel/core/schema"
)

// buildCreateTableSQL renders the DDL for a composed schema. Column
// order follows the schema's field order, so generated DDL is stable
// across builds with the same capability set.
func buildCreateTableSQL(table string, composed *schema.Composed) string {
	var columns []string
	for _, f := range composed.Fields {
		col := f.ColumnName() + " " + f.SQLType()
		if f.Name == "id" {
			col += " PRIMARY KEY"
		}
		columns = append(columns, col)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(columns, ", "))
}

// toSQLValue maps a wire value to its SQL binding. Structured values
// are stored as JSON text.
func toSQLValue(f schema.Field, v any) any {
	switch f.Type {
	case schema.FieldTypeStrings, schema.FieldTypeJSON:
		data, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return string(data)
	default:
		return v
	}
}

// scanRow reads the current row into a storage record keyed by column
// name, decoding JSON text columns back into structured values.
func scanRow(rows *sql.Rows, composed *schema.Composed) (schema.Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	byColumn := make(map[string]schema.Field, len(composed.Fields))
	for _, f := range composed.Fields {
		byColumn[f.ColumnName()] = f
	}

	stored := make(schema.Record, len(columns))
	for i, col := range columns {
		v := values[i]
		if v == nil {
			continue
		}
		if b, ok := v.([]byte); ok {
			v = string(b)
		}

		if f, ok := byColumn[col]; ok {
			switch f.Type {
			case schema.FieldTypeStrings:
				var list []string
				if s, ok := v.(string); ok {
					if err := json.Unmarshal([]byte(s), &list); err != nil {
						return nil, fmt.Errorf("column %s: %w", col, err)
					}
					v = list
				}
			case schema.FieldTypeJSON:
				var m map[string]any
				if s, ok := v.(string); ok {
					if err := json.Unmarshal([]byte(s), &m); err != nil {
						return nil, fmt.Errorf("column %s: %w", col, err)
					}
					v = m
				}
			}
		}

		stored[col] = v
	}

	return stored, nil
}
