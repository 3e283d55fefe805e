package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Declaration is a model declaration as written in YAML: the base
// fields plus the capability toggles to enable for the model.
type Declaration struct {
	// Name is the singular model name (e.g., "article").
	Name string `yaml:"model"`

	// Table overrides the derived table name.
	Table string `yaml:"table,omitempty"`

	// Capabilities lists the capability toggles to enable.
	Capabilities []string `yaml:"capabilities,omitempty"`

	// Schema defines the base fields owned by this model.
	Schema map[string]Field `yaml:"schema"`

	// Namespace is the parent namespace inherited by the namespace
	// capability's default policy.
	Namespace string `yaml:"namespace,omitempty"`
}

// BaseFields returns the declared base fields in deterministic order
// (sorted by name), with names and sources filled in.
func (d Declaration) BaseFields() []Field {
	names := make([]string, 0, len(d.Schema))
	for name := range d.Schema {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]Field, 0, len(names))
	for _, name := range names {
		f := d.Schema[name]
		f.Name = name
		f.Source = ""
		fields = append(fields, f)
	}
	return fields
}

// BaseRules derives the validation rules implied by the declaration:
// a required rule for each required field and a format rule for each
// declared format, in base field order.
func (d Declaration) BaseRules() []Rule {
	var rules []Rule
	for _, f := range d.BaseFields() {
		if f.Required {
			rules = append(rules, Rule{Field: f.Name, Kind: RuleRequired})
		}
		switch f.Format {
		case "email":
			rules = append(rules, Rule{Field: f.Name, Kind: RuleFormatEmail})
		case "phone":
			rules = append(rules, Rule{Field: f.Name, Kind: RuleFormatPhoneNumber})
		}
	}
	return rules
}

// ParseFile parses a model declaration from a YAML file.
func ParseFile(path string) (Declaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Declaration{}, fmt.Errorf("read file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses a model declaration from YAML bytes.
func Parse(data []byte) (Declaration, error) {
	var decl Declaration
	if err := yaml.Unmarshal(data, &decl); err != nil {
		return Declaration{}, fmt.Errorf("parse yaml: %w", err)
	}

	if err := Validate(decl); err != nil {
		return Declaration{}, fmt.Errorf("validate model %q: %w", decl.Name, err)
	}

	return decl, nil
}

// ParseDir parses all model declarations from a directory, including
// subdirectories.
func ParseDir(dir string) ([]Declaration, error) {
	var decls []Declaration

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			sub, err := ParseDir(path)
			if err != nil {
				return nil, err
			}
			decls = append(decls, sub...)
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		decl, err := ParseFile(path)
		if err != nil {
			return nil, err
		}

		decls = append(decls, decl)
	}

	return decls, nil
}

// Validate validates a model declaration.
func Validate(decl Declaration) error {
	var errs []string

	if decl.Name == "" {
		errs = append(errs, "model name is required")
	} else if !isValidIdentifier(decl.Name) {
		errs = append(errs, fmt.Sprintf("model name %q is not a valid identifier", decl.Name))
	}

	if len(decl.Schema) == 0 {
		errs = append(errs, "schema must have at least one field")
	}

	for name, field := range decl.Schema {
		if !isValidIdentifier(name) {
			errs = append(errs, fmt.Sprintf("field name %q is not a valid identifier", name))
		}

		if !validFieldType(field.Type) {
			errs = append(errs, fmt.Sprintf("field %q has unknown type %q", name, field.Type))
		}

		if field.Type == FieldTypeEnum && len(field.Values) == 0 {
			errs = append(errs, fmt.Sprintf("enum field %q requires values", name))
		}

		switch field.Format {
		case "", "email", "phone":
		default:
			errs = append(errs, fmt.Sprintf("field %q has unknown format %q", name, field.Format))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validFieldType(t FieldType) bool {
	switch t {
	case FieldTypeText, FieldTypeInteger, FieldTypeFloat, FieldTypeBool,
		FieldTypeTimestamp, FieldTypeUUID, FieldTypeJSON, FieldTypeStrings,
		FieldTypeEnum:
		return true
	}
	return false
}

// isValidIdentifier checks a name is a lowercase snake_case identifier.
func isValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
