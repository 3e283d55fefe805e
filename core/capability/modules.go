package capability

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/declmodel/declmodel/core/schema"
)

// Visibility values.
const (
	VisibilityPublic   = "public"
	VisibilityPrivate  = "private"
	VisibilityInternal = "internal"
)

// Context carries the build-time inputs a capability's default policy
// may consult. It must be stable for a given entity: composed schemas
// are cached per entity and never recomposed.
type Context struct {
	// Namespace is the parent namespace inherited by the namespace
	// capability. Empty means no parent.
	Namespace string
}

// Module is a self-contained capability: its field descriptors, its
// validation rules and its default policy. Modules are immutable and
// independent of each other.
type Module struct {
	// ID identifies the capability.
	ID ID

	fields     []schema.Field
	rules      []schema.Rule
	defaultFor func(ctx Context, field string) any
}

// Fields returns the capability's field descriptors in declaration
// order, with defaults resolved against the given context.
func (m Module) Fields(ctx Context) []schema.Field {
	out := make([]schema.Field, len(m.fields))
	for i, f := range m.fields {
		if m.defaultFor != nil {
			if v := m.defaultFor(ctx, f.Name); v != nil {
				f.Default = v
			}
		}
		out[i] = f
	}
	return out
}

// Rules returns the capability's validation rules in declaration order.
func (m Module) Rules() []schema.Rule {
	out := make([]schema.Rule, len(m.rules))
	copy(out, m.rules)
	return out
}

// DefaultFor returns the default value for the named field under the
// given context, or nil when the field has no default.
func (m Module) DefaultFor(ctx Context, field string) any {
	if m.defaultFor != nil {
		if v := m.defaultFor(ctx, field); v != nil {
			return v
		}
	}
	for _, f := range m.fields {
		if f.Name == field {
			return f.Default
		}
	}
	return nil
}

// Lookup returns the built-in module for a capability.
func Lookup(id ID) (Module, bool) {
	m, ok := modules[id]
	return m, ok
}

// modules holds the six built-in capability modules.
var modules = map[ID]Module{
	Namespace: {
		ID: Namespace,
		fields: []schema.Field{
			{Name: "namespace", Type: schema.FieldTypeText, Default: "", Source: Namespace.String()},
		},
		defaultFor: func(ctx Context, field string) any {
			if field == "namespace" && ctx.Namespace != "" {
				return ctx.Namespace
			}
			return nil
		},
	},

	Visibility: {
		ID: Visibility,
		fields: []schema.Field{
			{
				Name:    "visibility",
				Type:    schema.FieldTypeEnum,
				Values:  []string{VisibilityPublic, VisibilityPrivate, VisibilityInternal},
				Default: VisibilityInternal,
				Source:  Visibility.String(),
			},
		},
		rules: []schema.Rule{
			{Field: "visibility", Kind: schema.RuleCustom, Check: checkVisibility},
		},
	},

	Tags: {
		ID: Tags,
		fields: []schema.Field{
			{Name: "tags", Type: schema.FieldTypeStrings, Default: []string{}, Source: Tags.String()},
		},
		rules: []schema.Rule{
			{Field: "tags", Kind: schema.RuleCustom, Check: checkTags},
		},
	},

	OwnerID: {
		ID: OwnerID,
		fields: []schema.Field{
			{Name: "owner_id", Type: schema.FieldTypeUUID, Nullable: true, Source: OwnerID.String()},
		},
		rules: []schema.Rule{
			{Field: "owner_id", Kind: schema.RuleCustom, Check: checkUUID("owner_id")},
		},
	},

	MaintainerID: {
		ID: MaintainerID,
		fields: []schema.Field{
			{Name: "maintainer_id", Type: schema.FieldTypeUUID, Nullable: true, Source: MaintainerID.String()},
		},
		rules: []schema.Rule{
			{Field: "maintainer_id", Kind: schema.RuleCustom, Check: checkUUID("maintainer_id")},
		},
	},

	Edition: {
		ID: Edition,
		fields: []schema.Field{
			{Name: "edition", Type: schema.FieldTypeInteger, Default: int64(0), Source: Edition.String()},
		},
		rules: []schema.Rule{
			{Field: "edition", Kind: schema.RuleCustom, Check: checkEdition},
		},
	},
}

func checkVisibility(value any, _ schema.Record) error {
	if value == nil {
		return nil
	}
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("must be a string")
	}
	switch s {
	case VisibilityPublic, VisibilityPrivate, VisibilityInternal:
		return nil
	}
	return fmt.Errorf("must be one of: %s, %s, %s", VisibilityPublic, VisibilityPrivate, VisibilityInternal)
}

func checkTags(value any, _ schema.Record) error {
	if value == nil {
		return nil
	}
	tags, ok := value.([]string)
	if !ok {
		return fmt.Errorf("must be a list of strings")
	}
	for i, tag := range tags {
		if tag == "" {
			return fmt.Errorf("tag %d must be non-empty", i)
		}
	}
	return nil
}

func checkUUID(field string) func(any, schema.Record) error {
	return func(value any, _ schema.Record) error {
		switch v := value.(type) {
		case nil:
			return nil
		case uuid.UUID:
			return nil
		case string:
			if _, err := uuid.Parse(v); err != nil {
				return fmt.Errorf("must be a valid UUID")
			}
			return nil
		default:
			return fmt.Errorf("must be a UUID, got %T", value)
		}
	}
}

func checkEdition(value any, _ schema.Record) error {
	if value == nil {
		return nil
	}
	n, err := toInt64(value)
	if err != nil {
		return fmt.Errorf("must be an integer")
	}
	if n < 0 {
		return fmt.Errorf("must be non-negative")
	}
	return nil
}

// toInt64 converts the numeric types a record may carry to int64.
func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint32:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("cannot convert %T to int64", v)
	}
}
