package profile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/printforge/slicerd/pkg/catalog"
)

func buildTestCatalog(t *testing.T, profiles map[string]string) *catalog.Catalog {
	t.Helper()
	root := t.TempDir()
	for file, content := range profiles {
		path := filepath.Join(root, "vendor", file)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", file, err)
		}
	}
	c, err := catalog.Build(catalog.Config{BundledDir: root})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return c
}

func mustNormalize(t *testing.T, raw string, cat Category, sys *catalog.Catalog) map[string]any {
	t.Helper()
	out, err := Normalize([]byte(raw), cat, sys, nil)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("normalized output is not JSON: %v", err)
	}
	return doc
}

func TestNormalize_ForcesEngineType(t *testing.T) {
	sys := buildTestCatalog(t, nil)
	tests := []struct {
		cat  Category
		want string
	}{
		{CategoryPrinter, "machine"},
		{CategoryProcess, "process"},
		{CategoryFilament, "filament"},
	}
	for _, tt := range tests {
		// A pre-existing bogus type must be overwritten.
		doc := mustNormalize(t, `{"type": "bogus"}`, tt.cat, sys)
		if doc["type"] != tt.want {
			t.Fatalf("%s: type got=%v want=%q", tt.cat, doc["type"], tt.want)
		}
	}
}

func TestNormalize_DefaultsUnrecognizedFrom(t *testing.T) {
	sys := buildTestCatalog(t, nil)

	doc := mustNormalize(t, `{"from": "somewhere"}`, CategoryProcess, sys)
	if doc["from"] != "User" {
		t.Fatalf("from: got=%v want=User", doc["from"])
	}

	doc = mustNormalize(t, `{}`, CategoryProcess, sys)
	if doc["from"] != "User" {
		t.Fatalf("absent from: got=%v want=User", doc["from"])
	}

	doc = mustNormalize(t, `{"from": "system"}`, CategoryProcess, sys)
	if doc["from"] != "system" {
		t.Fatalf("recognized from must be preserved: got=%v", doc["from"])
	}
}

func TestNormalize_MergesInheritedBase(t *testing.T) {
	sys := buildTestCatalog(t, map[string]string{
		"machine/base.json": `{"name": "Base Printer", "nozzle": "0.4", "bed": "cool", "inherits": "Grandparent"}`,
	})

	doc := mustNormalize(t,
		`{"name": "Mine", "inherits": "Base Printer", "bed": "textured"}`,
		CategoryPrinter, sys)

	if doc["nozzle"] != "0.4" {
		t.Fatalf("base key missing: nozzle=%v", doc["nozzle"])
	}
	if doc["bed"] != "textured" {
		t.Fatalf("upload must win on collision: bed=%v", doc["bed"])
	}
	if doc["name"] != "Mine" {
		t.Fatalf("name: got=%v want=Mine", doc["name"])
	}
	// The base's own lineage must not leak through the merge.
	if doc["inherits"] != "Base Printer" {
		t.Fatalf("inherits: got=%v want=Base Printer", doc["inherits"])
	}
	if doc["type"] != "machine" {
		t.Fatalf("type: got=%v want=machine", doc["type"])
	}
}

func TestNormalize_UnresolvableInheritsLeavesDocumentIntact(t *testing.T) {
	sys := buildTestCatalog(t, nil)

	doc := mustNormalize(t,
		`{"name": "Orphan", "inherits": "Ghost", "layer_height": "0.2"}`,
		CategoryProcess, sys)

	if doc["inherits"] != "Ghost" {
		t.Fatalf("inherits: got=%v want=Ghost", doc["inherits"])
	}
	if doc["layer_height"] != "0.2" {
		t.Fatalf("own keys must survive: %v", doc)
	}
	if doc["type"] != "process" || doc["from"] != "User" {
		t.Fatalf("metadata stamps missing: type=%v from=%v", doc["type"], doc["from"])
	}
	// Only the two stamps were added.
	if len(doc) != 5 {
		t.Fatalf("expected 5 keys, got %d: %v", len(doc), doc)
	}
}

func TestNormalize_IndependentProfiles(t *testing.T) {
	sys := buildTestCatalog(t, map[string]string{
		"process/base.json": `{"name": "base", "wall_loops": "3"}`,
	})

	p1 := mustNormalize(t, `{"name": "p1", "inherits": "base"}`, CategoryProcess, sys)
	p2 := mustNormalize(t, `{"name": "p2", "speed": "fast"}`, CategoryProcess, sys)

	if p1["wall_loops"] != "3" {
		t.Fatalf("p1 should inherit base keys: %v", p1)
	}
	if _, ok := p2["wall_loops"]; ok {
		t.Fatalf("p2 must not pick up base keys: %v", p2)
	}
	if p2["speed"] != "fast" || p2["name"] != "p2" {
		t.Fatalf("p2 own keys missing: %v", p2)
	}
}

func TestNormalize_RejectsNonJSON(t *testing.T) {
	sys := buildTestCatalog(t, nil)
	if _, err := Normalize([]byte("not json"), CategoryPrinter, sys, nil); !IsInvalidDocument(err) {
		t.Fatalf("expected invalid document, got %v", err)
	}
	if _, err := Normalize([]byte("null"), CategoryPrinter, sys, nil); !IsInvalidDocument(err) {
		t.Fatalf("expected invalid document for null, got %v", err)
	}
}

func TestNormalize_StableIndentedOutput(t *testing.T) {
	sys := buildTestCatalog(t, nil)
	out, err := Normalize([]byte(`{"a": 1}`), CategoryPrinter, sys, nil)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if out[0] != '{' || out[1] != '\n' {
		t.Fatalf("expected indented output, got %q", out[:2])
	}
}

func TestValidateDocument(t *testing.T) {
	if err := ValidateDocument([]byte(`{"name": "x", "custom_key": [1, 2]}`)); err != nil {
		t.Fatalf("valid document rejected: %v", err)
	}
	if err := ValidateDocument([]byte(`{"inherits": 42}`)); !IsInvalidDocument(err) {
		t.Fatalf("expected invalid document for non-string inherits, got %v", err)
	}
	if err := ValidateDocument([]byte(`[1, 2]`)); !IsInvalidDocument(err) {
		t.Fatalf("expected invalid document for array, got %v", err)
	}
}
