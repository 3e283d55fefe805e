package schema

// Field describes one column of a model schema.
type Field struct {
	// Name is the logical field name (e.g., "owner_id").
	Name string `yaml:"name"`

	// Type is the semantic field type. See FieldType constants.
	Type FieldType `yaml:"type"`

	// Nullable indicates the field may be absent from an instance.
	// Non-nullable fields without a default are reported as missing
	// by the validator when unset.
	Nullable bool `yaml:"nullable,omitempty"`

	// Default value applied when the field is unset. A nil default
	// means the field has no recoverable default.
	Default any `yaml:"default,omitempty"`

	// Column overrides the storage column name. Empty means Name.
	Column string `yaml:"column,omitempty"`

	// Values lists valid values for enum type fields.
	Values []string `yaml:"values,omitempty"`

	// Format names an additional format rule (e.g., "email", "phone").
	Format string `yaml:"format,omitempty"`

	// Required indicates the field must be set on an instance.
	Required bool `yaml:"required,omitempty"`

	// Override designates this base field as an override point:
	// a capability field with the same name replaces it instead of
	// failing composition.
	Override bool `yaml:"override,omitempty"`

	// Source identifies where the field came from: empty for base
	// fields, otherwise the capability identifier that contributed it.
	Source string `yaml:"-"`
}

// FieldType represents the semantic type of a schema field.
type FieldType string

const (
	// Primitive types
	FieldTypeText      FieldType = "text"
	FieldTypeInteger   FieldType = "integer"
	FieldTypeFloat     FieldType = "float"
	FieldTypeBool      FieldType = "bool"
	FieldTypeTimestamp FieldType = "timestamp"

	// Semantic types
	FieldTypeUUID FieldType = "uuid"

	// Structured types
	FieldTypeJSON    FieldType = "json"
	FieldTypeStrings FieldType = "strings"

	// Enum requires Values
	FieldTypeEnum FieldType = "enum"
)

// ColumnName returns the storage column name for this field.
func (f Field) ColumnName() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

// IsBase returns whether this is a base field (not contributed by a capability).
func (f Field) IsBase() bool {
	return f.Source == ""
}

// SQLType returns the SQLite column type for this field.
func (f Field) SQLType() string {
	switch f.Type {
	case FieldTypeInteger, FieldTypeBool:
		return "INTEGER"
	case FieldTypeFloat:
		return "REAL"
	case FieldTypeJSON, FieldTypeStrings:
		return "TEXT" // Stored as JSON
	default:
		return "TEXT"
	}
}
