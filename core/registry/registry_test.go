package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/declmodel/declmodel/core/capability"
	"github.com/declmodel/declmodel/core/compose"
	"github.com/declmodel/declmodel/core/schema"
)

func newTestRegistry() *Registry {
	return New(compose.New(), zerolog.Nop())
}

func articleDecl() schema.Declaration {
	return schema.Declaration{
		Name:         "article",
		Capabilities: []string{"visibility", "tags"},
		Schema: map[string]schema.Field{
			"id":    {Type: schema.FieldTypeUUID},
			"title": {Type: schema.FieldTypeText, Required: true},
		},
	}
}

func TestRegister(t *testing.T) {
	r := newTestRegistry()

	model, err := r.Register(articleDecl())
	if err != nil {
		t.Fatalf("Register error = %v", err)
	}

	if model.Table != "articles" {
		t.Errorf("Table = %q, want %q", model.Table, "articles")
	}
	if !model.Enabled.Has(capability.Visibility) || !model.Enabled.Has(capability.Tags) {
		t.Errorf("Enabled = %v", model.Enabled)
	}
	if !model.Composed.HasField("visibility") || !model.Composed.HasField("tags") {
		t.Error("composed schema missing capability fields")
	}
	if model.Composed.HasField("edition") {
		t.Error("disabled capability leaked into schema")
	}

	got, ok := r.Lookup("article")
	if !ok || got != model {
		t.Error("Lookup did not return the registered model")
	}
	byTable, ok := r.LookupTable("articles")
	if !ok || byTable != model {
		t.Error("LookupTable did not return the registered model")
	}
}

func TestRegisterDuplicateModel(t *testing.T) {
	r := newTestRegistry()

	if _, err := r.Register(articleDecl()); err != nil {
		t.Fatalf("Register error = %v", err)
	}
	if _, err := r.Register(articleDecl()); err == nil {
		t.Error("duplicate registration accepted")
	}
}

func TestRegisterDuplicateTable(t *testing.T) {
	r := newTestRegistry()

	first := articleDecl()
	first.Table = "content"
	if _, err := r.Register(first); err != nil {
		t.Fatalf("Register error = %v", err)
	}

	second := articleDecl()
	second.Name = "post"
	second.Table = "content"
	if _, err := r.Register(second); err == nil {
		t.Error("conflicting table claim accepted")
	}
}

func TestRegisterUnknownCapability(t *testing.T) {
	r := newTestRegistry()

	decl := articleDecl()
	decl.Capabilities = append(decl.Capabilities, "ownership")

	_, err := r.Register(decl)
	if !errors.Is(err, capability.ErrUnknown) {
		t.Fatalf("error = %v, want ErrUnknown", err)
	}
}

func TestRegisterFieldCollision(t *testing.T) {
	r := newTestRegistry()

	decl := articleDecl()
	decl.Schema["tags"] = schema.Field{Type: schema.FieldTypeStrings}

	_, err := r.Register(decl)
	var collision *compose.CollisionError
	if !errors.As(err, &collision) {
		t.Fatalf("error = %v, want CollisionError", err)
	}
}

func TestRegisterNamespaceContext(t *testing.T) {
	r := newTestRegistry()

	decl := articleDecl()
	decl.Capabilities = []string{"namespace"}
	decl.Namespace = "app.blog"

	model, err := r.Register(decl)
	if err != nil {
		t.Fatalf("Register error = %v", err)
	}
	f, _ := model.Composed.Field("namespace")
	if f.Default != "app.blog" {
		t.Errorf("namespace default = %#v, want %q", f.Default, "app.blog")
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	yaml := "model: article\ncapabilities: [tags]\nschema:\n  id: { type: uuid }\n  title: { type: text, required: true }\n"
	if err := os.WriteFile(filepath.Join(dir, "article.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	r := newTestRegistry()
	if err := r.LoadDir(dir); err != nil {
		t.Fatalf("LoadDir error = %v", err)
	}

	if _, ok := r.Lookup("article"); !ok {
		t.Error("model from directory not registered")
	}
	if models := r.Models(); len(models) != 1 {
		t.Errorf("Models() returned %d models", len(models))
	}
}

func TestPluralize(t *testing.T) {
	tests := []struct {
		word string
		want string
	}{
		{"article", "articles"},
		{"class", "classes"},
		{"box", "boxes"},
		{"category", "categories"},
		{"key", "keys"},
		{"leaf", "leaves"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			if got := pluralize(tt.word); got != tt.want {
				t.Errorf("pluralize(%q) = %q, want %q", tt.word, got, tt.want)
			}
		})
	}
}
