package codec

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/declmodel/declmodel/core/schema"
)

func articleSchema() *schema.Composed {
	return &schema.Composed{
		Entity: "article",
		Fields: []schema.Field{
			{Name: "id", Type: schema.FieldTypeUUID},
			{Name: "title", Type: schema.FieldTypeText},
			{Name: "published_at", Type: schema.FieldTypeTimestamp, Nullable: true},
			{Name: "visibility", Type: schema.FieldTypeEnum, Default: "internal", Source: "visibility"},
			{Name: "tags", Type: schema.FieldTypeStrings, Default: []string{}, Source: "tags"},
			{Name: "owner_id", Type: schema.FieldTypeUUID, Nullable: true, Column: "owner_uuid", Source: "owner-id"},
			{Name: "edition", Type: schema.FieldTypeInteger, Default: int64(0), Source: "edition"},
		},
	}
}

func TestToStorageSparseOmitsDefaults(t *testing.T) {
	c := articleSchema()
	rec := c.NewRecord()
	rec["id"] = "8d9f7614-5fbd-4c25-a8e2-5b1f7a9c3e11"
	rec["title"] = "hello"

	stored := ToStorage(c, rec, Options{Sparse: true})

	if _, ok := stored["visibility"]; ok {
		t.Error("default visibility not omitted from sparse output")
	}
	if _, ok := stored["tags"]; ok {
		t.Error("default tags not omitted from sparse output")
	}
	if _, ok := stored["edition"]; ok {
		t.Error("default edition not omitted from sparse output")
	}
	if stored["title"] != "hello" {
		t.Errorf("title = %#v", stored["title"])
	}
}

func TestToStorageAppliesColumnRename(t *testing.T) {
	c := articleSchema()
	rec := schema.Record{
		"title":    "hello",
		"owner_id": "8d9f7614-5fbd-4c25-a8e2-5b1f7a9c3e11",
	}

	stored := ToStorage(c, rec, Options{})

	if _, ok := stored["owner_id"]; ok {
		t.Error("logical field name leaked into storage representation")
	}
	if stored["owner_uuid"] != "8d9f7614-5fbd-4c25-a8e2-5b1f7a9c3e11" {
		t.Errorf("owner_uuid = %#v", stored["owner_uuid"])
	}
}

func TestToStorageNonDefaultVisibilityKept(t *testing.T) {
	c := articleSchema()
	stored := ToStorage(c, schema.Record{"visibility": "public"}, Options{Sparse: true})
	if stored["visibility"] != "public" {
		t.Errorf("visibility = %#v, want public", stored["visibility"])
	}
}

func TestRoundTrip(t *testing.T) {
	c := articleSchema()
	rec := c.NewRecord()
	rec["id"] = "8d9f7614-5fbd-4c25-a8e2-5b1f7a9c3e11"
	rec["title"] = "hello"
	rec["tags"] = []string{"go", "schema"}
	rec["published_at"] = time.Date(2026, 5, 1, 12, 30, 0, 0, time.UTC)

	stored := ToStorage(c, rec, Options{Sparse: true})
	back, err := FromStorage(c, stored, Options{})
	if err != nil {
		t.Fatalf("FromStorage error = %v", err)
	}

	if !reflect.DeepEqual(back, rec) {
		t.Errorf("round trip mismatch:\n got %#v\nwant %#v", back, rec)
	}
}

func TestRoundTripTimestampFormat(t *testing.T) {
	c := articleSchema()
	rec := schema.Record{"published_at": time.Date(2026, 5, 1, 12, 30, 0, 123456789, time.UTC)}

	stored := ToStorage(c, rec, Options{})
	s, ok := stored["published_at"].(string)
	if !ok {
		t.Fatalf("timestamp not serialized as string: %#v", stored["published_at"])
	}
	if s != "2026-05-01T12:30:00.123456789Z" {
		t.Errorf("timestamp = %q", s)
	}

	back, err := FromStorage(c, stored, Options{})
	if err != nil {
		t.Fatalf("FromStorage error = %v", err)
	}
	got, ok := back["published_at"].(time.Time)
	if !ok || !got.Equal(rec["published_at"].(time.Time)) {
		t.Errorf("timestamp round trip = %#v", back["published_at"])
	}
}

func TestUpdateIncrementsEditionByExactlyOne(t *testing.T) {
	c := articleSchema()

	tests := []struct {
		name string
		last any
		want int64
	}{
		{name: "first update", last: int64(0), want: 1},
		{name: "later update", last: int64(41), want: 42},
		{name: "unset edition treated as zero", last: nil, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := schema.Record{"title": "hello"}
			if tt.last != nil {
				rec["edition"] = tt.last
			}

			stored := ToStorage(c, rec, Options{Update: true})
			got, ok := stored["edition"].(int64)
			if !ok {
				t.Fatalf("edition = %#v, want int64", stored["edition"])
			}
			if got != tt.want {
				t.Errorf("edition = %d, want %d", got, tt.want)
			}
			if tt.last != nil && got-tt.last.(int64) != 1 {
				t.Errorf("edition increment = %d, want exactly 1", got-tt.last.(int64))
			}
		})
	}
}

func TestUpdateEditionNotOmittedBySparse(t *testing.T) {
	c := articleSchema()
	stored := ToStorage(c, schema.Record{"edition": int64(0)}, Options{Update: true, Sparse: true})
	if stored["edition"] != int64(1) {
		t.Errorf("edition = %#v, want 1", stored["edition"])
	}
}

func TestFromStorageSchemaMismatch(t *testing.T) {
	c := articleSchema()
	stored := schema.Record{"title": "hello", "legacy_slug": "x"}

	_, err := FromStorage(c, stored, Options{})
	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("error = %v, want MismatchError", err)
	}
	if mismatch.Column != "legacy_slug" {
		t.Errorf("column = %q", mismatch.Column)
	}

	rec, err := FromStorage(c, stored, Options{IgnoreUnknown: true})
	if err != nil {
		t.Fatalf("FromStorage with IgnoreUnknown error = %v", err)
	}
	if _, ok := rec["legacy_slug"]; ok {
		t.Error("unknown column leaked into record")
	}
}

func TestFromStorageTypeCoercion(t *testing.T) {
	c := articleSchema()

	tests := []struct {
		name    string
		stored  schema.Record
		field   string
		want    any
		wantErr bool
	}{
		{
			name:   "integer widened from float",
			stored: schema.Record{"edition": float64(3)},
			field:  "edition",
			want:   int64(3),
		},
		{
			name:   "strings from any slice",
			stored: schema.Record{"tags": []any{"a", "b"}},
			field:  "tags",
			want:   []string{"a", "b"},
		},
		{
			name:    "bad uuid",
			stored:  schema.Record{"id": "not-a-uuid"},
			wantErr: true,
		},
		{
			name:    "bad timestamp",
			stored:  schema.Record{"published_at": "yesterday"},
			wantErr: true,
		},
		{
			name:    "integer from text",
			stored:  schema.Record{"edition": "three"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := FromStorage(c, tt.stored, Options{})
			if tt.wantErr {
				var coercion *CoercionError
				if !errors.As(err, &coercion) {
					t.Fatalf("error = %v, want CoercionError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromStorage error = %v", err)
			}
			if !reflect.DeepEqual(rec[tt.field], tt.want) {
				t.Errorf("%s = %#v, want %#v", tt.field, rec[tt.field], tt.want)
			}
		})
	}
}

func TestFromStorageReappliesDefaults(t *testing.T) {
	c := articleSchema()
	rec, err := FromStorage(c, schema.Record{"title": "hello"}, Options{})
	if err != nil {
		t.Fatalf("FromStorage error = %v", err)
	}

	if rec["visibility"] != "internal" {
		t.Errorf("visibility = %#v, want internal", rec["visibility"])
	}
	if rec["edition"] != int64(0) {
		t.Errorf("edition = %#v, want 0", rec["edition"])
	}
	if _, ok := rec["owner_id"]; ok {
		t.Error("unset nullable owner_id materialized")
	}
}
