package schema

import "testing"

func TestFieldColumnName(t *testing.T) {
	tests := []struct {
		name     string
		field    Field
		expected string
	}{
		{
			name:     "defaults to field name",
			field:    Field{Name: "owner_id"},
			expected: "owner_id",
		},
		{
			name:     "column override wins",
			field:    Field{Name: "owner_id", Column: "owner_uuid"},
			expected: "owner_uuid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.field.ColumnName(); got != tt.expected {
				t.Errorf("ColumnName() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFieldIsBase(t *testing.T) {
	if !(Field{Name: "title"}).IsBase() {
		t.Error("field without source should be base")
	}
	if (Field{Name: "tags", Source: "tags"}).IsBase() {
		t.Error("capability field should not be base")
	}
}

func TestFieldSQLType(t *testing.T) {
	tests := []struct {
		fieldType FieldType
		expected  string
	}{
		{FieldTypeText, "TEXT"},
		{FieldTypeInteger, "INTEGER"},
		{FieldTypeFloat, "REAL"},
		{FieldTypeBool, "INTEGER"},
		{FieldTypeTimestamp, "TEXT"},
		{FieldTypeUUID, "TEXT"},
		{FieldTypeJSON, "TEXT"},
		{FieldTypeStrings, "TEXT"},
		{FieldTypeEnum, "TEXT"},
	}

	for _, tt := range tests {
		t.Run(string(tt.fieldType), func(t *testing.T) {
			f := Field{Type: tt.fieldType}
			if got := f.SQLType(); got != tt.expected {
				t.Errorf("SQLType() = %q, want %q", got, tt.expected)
			}
		})
	}
}
