// Package registry manages model registration. It parses declarations,
// composes each model's schema exactly once and detects duplicate model
// and table claims before the process starts serving.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/declmodel/declmodel/core/capability"
	"github.com/declmodel/declmodel/core/compose"
	"github.com/declmodel/declmodel/core/schema"
)

// Model is a registered model: its declaration resolved into a composed
// schema and a table claim.
type Model struct {
	// Name is the model name.
	Name string

	// Table is the storage table claimed by the model.
	Table string

	// Enabled is the model's capability set.
	Enabled capability.Set

	// Composed is the effective schema.
	Composed *schema.Composed
}

// Registry holds registered models. Registration failures are fatal by
// design: a misconfigured capability set must not silently produce a
// partial schema.
type Registry struct {
	mu sync.RWMutex

	models map[string]*Model
	tables map[string]string

	composer *compose.Composer
	logger   zerolog.Logger
}

// New creates a registry composing through the given composer.
func New(composer *compose.Composer, logger zerolog.Logger) *Registry {
	return &Registry{
		models:   make(map[string]*Model),
		tables:   make(map[string]string),
		composer: composer,
		logger:   logger,
	}
}

// Register resolves and registers a model declaration.
func (r *Registry) Register(decl schema.Declaration) (*Model, error) {
	set, err := capability.ParseSet(decl.Capabilities)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", decl.Name, err)
	}

	def := compose.Definition{
		Entity:  decl.Name,
		Fields:  decl.BaseFields(),
		Rules:   decl.BaseRules(),
		Context: capability.Context{Namespace: decl.Namespace},
	}

	composed, err := r.composer.Compose(def, set)
	if err != nil {
		r.logger.Error().Err(err).Str("model", decl.Name).Msg("schema composition failed")
		return nil, err
	}

	table := decl.Table
	if table == "" {
		table = pluralize(decl.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.models[decl.Name]; exists {
		return nil, fmt.Errorf("model %q already registered", decl.Name)
	}
	if existing, exists := r.tables[table]; exists {
		return nil, fmt.Errorf("table %q already claimed by model %q", table, existing)
	}

	model := &Model{
		Name:     decl.Name,
		Table:    table,
		Enabled:  set,
		Composed: composed,
	}
	r.models[decl.Name] = model
	r.tables[table] = decl.Name

	r.logger.Debug().
		Str("model", decl.Name).
		Str("table", table).
		Str("capabilities", set.String()).
		Int("fields", len(composed.Fields)).
		Msg("model registered")

	return model, nil
}

// LoadDir parses every declaration under dir and registers them all.
func (r *Registry) LoadDir(dir string) error {
	decls, err := schema.ParseDir(dir)
	if err != nil {
		return err
	}
	for _, decl := range decls {
		if _, err := r.Register(decl); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns a registered model by name.
func (r *Registry) Lookup(name string) (*Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[name]
	return m, ok
}

// LookupTable returns the model claiming a table.
func (r *Registry) LookupTable(table string) (*Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.tables[table]
	if !ok {
		return nil, false
	}
	return r.models[name], true
}

// Models returns all registered models sorted by name.
func (r *Registry) Models() []*Model {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Model, 0, len(r.models))
	for _, m := range r.models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
