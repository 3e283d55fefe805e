// Package compose merges a model's base fields with its enabled
// capabilities into one deterministic composed schema.
//
// Composition is a pure function of (entity, base fields, enabled set):
// the same inputs always yield a structurally identical schema, with
// base fields first and capability fields appended in the canonical
// capability order regardless of how the set was built. Results are
// cached per (entity, enabled-set) for the process lifetime.
package compose

import (
	"fmt"

	"github.com/declmodel/declmodel/core/capability"
	"github.com/declmodel/declmodel/core/metrics"
	"github.com/declmodel/declmodel/core/schema"
)

// Definition is the composition input for one entity.
type Definition struct {
	// Entity is the model name. It keys the schema cache together with
	// the enabled-capability mask, so it must be unique per model.
	Entity string

	// Fields are the base fields in declaration order.
	Fields []schema.Field

	// Rules are the base validation rules in declaration order.
	Rules []schema.Rule

	// Context feeds the capability default policies. It must be stable
	// for the entity: cached schemas are never recomposed.
	Context capability.Context
}

// CollisionError reports a capability field name colliding with a base
// field that is not designated as an override point.
type CollisionError struct {
	Entity string
	Field  string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("compose %s: field collision on %q", e.Entity, e.Field)
}

// Composer composes schemas and caches the results. The zero value is
// not usable; call New.
type Composer struct {
	cache   *cache
	metrics *metrics.Collector
}

// Option configures a Composer.
type Option func(*Composer)

// WithMetrics attaches a metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Composer) { c.metrics = m }
}

// New creates a composer with an empty schema cache.
func New(opts ...Option) *Composer {
	c := &Composer{cache: newCache()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose merges the definition's base fields with the enabled
// capabilities and returns the composed schema. Results are cached by
// (entity, enabled-set mask); repeated calls return the same schema
// value. Composition failures are fatal for the entity and are never
// cached.
func (c *Composer) Compose(def Definition, set capability.Set) (*schema.Composed, error) {
	if cached, ok := c.cache.get(def.Entity, set); ok {
		c.metrics.ObserveCacheHit()
		return cached, nil
	}
	c.metrics.ObserveCacheMiss()

	composed, err := compose(def, set)
	if err != nil {
		c.metrics.ObserveCompositionError(def.Entity, errorReason(err))
		return nil, err
	}
	c.metrics.ObserveComposition(def.Entity)

	// A concurrent composition for the same key may have published
	// first; both computed identical schemas, keep the published one.
	return c.cache.put(def.Entity, set, composed), nil
}

// compose performs one uncached composition pass.
func compose(def Definition, set capability.Set) (*schema.Composed, error) {
	if err := validateSet(set); err != nil {
		return nil, err
	}

	fields := make([]schema.Field, 0, len(def.Fields)+8)
	index := make(map[string]int, len(def.Fields)+8)

	for _, f := range def.Fields {
		f.Source = ""
		if _, exists := index[f.Name]; exists {
			return nil, &CollisionError{Entity: def.Entity, Field: f.Name}
		}
		index[f.Name] = len(fields)
		fields = append(fields, f)
	}

	rules := make([]schema.Rule, 0, len(def.Rules)+8)
	rules = append(rules, def.Rules...)

	for _, id := range set.IDs() {
		mod, ok := capability.Lookup(id)
		if !ok {
			return nil, fmt.Errorf("compose %s: %w: %q", def.Entity, capability.ErrUnknown, id)
		}

		for _, f := range mod.Fields(def.Context) {
			if i, exists := index[f.Name]; exists {
				base := fields[i]
				if !base.IsBase() || !base.Override {
					return nil, &CollisionError{Entity: def.Entity, Field: f.Name}
				}
				// Override point: the capability descriptor takes the
				// base field's slot, keeping base field order intact.
				fields[i] = f
				continue
			}
			index[f.Name] = len(fields)
			fields = append(fields, f)
		}

		rules = append(rules, mod.Rules()...)
	}

	rules = append(rules, aggregateRules(set)...)

	return &schema.Composed{
		Entity: def.Entity,
		Fields: fields,
		Rules:  rules,
		Mask:   set.Mask(),
	}, nil
}

// aggregateRules returns the composer-level rules spanning multiple
// capabilities. They are appended after all module rules so single-module
// behavior never depends on what else is enabled.
func aggregateRules(set capability.Set) []schema.Rule {
	var rules []schema.Rule

	// Private records must have an owner to be addressable by access
	// control. Only meaningful when both capabilities are enabled.
	if set.Has(capability.Visibility) && set.Has(capability.OwnerID) {
		rules = append(rules, schema.Rule{
			Field: "owner_id",
			Kind:  schema.RuleCustom,
			Check: func(value any, record schema.Record) error {
				if record["visibility"] != capability.VisibilityPrivate {
					return nil
				}
				if value == nil || value == "" {
					return fmt.Errorf("required when visibility is %s", capability.VisibilityPrivate)
				}
				return nil
			},
		})
	}

	return rules
}

// validateSet rejects masks carrying bits outside the known capabilities.
func validateSet(set capability.Set) error {
	known := capability.NewSet(capability.All()...)
	if set&^known != 0 {
		return fmt.Errorf("%w: mask %#x", capability.ErrUnknown, set.Mask())
	}
	return nil
}

func errorReason(err error) string {
	if _, ok := err.(*CollisionError); ok {
		return "field_collision"
	}
	return "unknown_capability"
}
