package dyntable

import (
	"os"
	"path/filepath"
	"testing"
)

const testCatalogJSON = `{
  "version": "1.0",
  "title": "Library",
  "objects": [
    {
      "name": "books",
      "columns": [
        {"name": "id", "type": "serial", "primary_key": true},
        {"name": "title", "type": "varchar", "labels": {"en": "Title", "hu": "Cím"}},
        {"name": "pages", "type": "integer"},
        {"name": "author", "type": "integer", "related_to": "authors"}
      ]
    },
    {
      "name": "authors",
      "columns": [
        {"name": "id", "type": "serial", "primary_key": true},
        {"name": "name", "type": "varchar", "labels": {"en": "Name"}}
      ]
    }
  ]
}`

func TestParseCatalog(t *testing.T) {
	cat, err := ParseCatalog([]byte(testCatalogJSON))
	if err != nil {
		t.Fatalf("ParseCatalog failed: %v", err)
	}
	if len(cat.Objects) != 2 {
		t.Fatalf("Expected 2 objects, got %d", len(cat.Objects))
	}
	if cat.Objects[0].Name != "books" {
		t.Errorf("Expected first object 'books', got '%s'", cat.Objects[0].Name)
	}

	// Empty catalogs are rejected
	if _, err := ParseCatalog([]byte(`{"version": "1.0", "objects": []}`)); err == nil {
		t.Errorf("Expected error for catalog without objects")
	}
}

func TestParseCatalogYAML(t *testing.T) {
	data := []byte(`
version: "1.0"
objects:
  - name: users
    columns:
      - name: id
        type: serial
        primary_key: true
      - name: user_name
        type: varchar
`)
	cat, err := ParseCatalogYAML(data)
	if err != nil {
		t.Fatalf("ParseCatalogYAML failed: %v", err)
	}
	if cat.Objects[0].Columns[1].Name != "user_name" {
		t.Errorf("Expected column 'user_name', got '%s'", cat.Objects[0].Columns[1].Name)
	}
}

func TestCatalogSchemas(t *testing.T) {
	cat, err := ParseCatalog([]byte(testCatalogJSON))
	if err != nil {
		t.Fatalf("ParseCatalog failed: %v", err)
	}

	set := cat.Schemas("hu")
	books, ok := set.Schema("books")
	if !ok {
		t.Fatalf("Expected 'books' schema in set")
	}

	// Requested language wins, then "en", then the column name
	title, _ := books.Field("title")
	if title.Label != "Cím" {
		t.Errorf("Expected label 'Cím', got '%s'", title.Label)
	}
	pages, _ := books.Field("pages")
	if pages.Label != "pages" {
		t.Errorf("Expected fallback label 'pages', got '%s'", pages.Label)
	}

	// serial primary key maps to an auto field
	id, _ := books.Field("id")
	if id.Kind != KindAuto || !id.Auto {
		t.Errorf("Expected auto field, got %+v", id)
	}

	// related_to forces a relation kind
	author, _ := books.Field("author")
	if author.Kind != KindRelation || author.RelatedTo != "authors" {
		t.Errorf("Expected relation field, got %+v", author)
	}

	// Catalog-built schemas drive the ordering transformer end to end
	terms := Ordering(set, books, "author__name")
	if !terms[0].Fold {
		t.Errorf("Expected folded term through catalog relation, got %+v", terms[0])
	}
}

func TestValidateCatalog(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.json")
	if err := os.WriteFile(valid, []byte(testCatalogJSON), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := ValidateCatalog("catalog.schema.json", valid); err != nil {
		t.Errorf("Expected valid catalog, got %v", err)
	}

	invalid := filepath.Join(dir, "invalid.json")
	if err := os.WriteFile(invalid, []byte(`{"version": "1.0"}`), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := ValidateCatalog("catalog.schema.json", invalid); err == nil {
		t.Errorf("Expected validation error for catalog without objects")
	}
}

func TestKindFromType(t *testing.T) {
	cases := []struct {
		typ  string
		pk   bool
		kind Kind
		auto bool
	}{
		{"varchar", false, KindChar, false},
		{"TEXT", false, KindText, false},
		{"serial", false, KindAuto, true},
		{"integer", true, KindAuto, true},
		{"integer", false, KindInteger, false},
		{"uuid", false, KindUUID, false},
		{"boolean", false, KindBool, false},
		{"timestamptz", false, KindDateTime, false},
		{"inet", false, KindIPAddress, false},
	}
	for _, c := range cases {
		kind, auto := kindFromType(c.typ, c.pk)
		if kind != c.kind || auto != c.auto {
			t.Errorf("kindFromType(%q, %v): expected (%s, %v), got (%s, %v)",
				c.typ, c.pk, c.kind, c.auto, kind, auto)
		}
	}
}
