package rules_test

import (
	"os"
	"path/filepath"
	"testing"

	"curator/internal/rules"
)

func openStore(t *testing.T) (*rules.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "extension_map.json")
	store, err := rules.Load(path, nil)
	if err != nil {
		t.Fatalf("rules.Load: %v", err)
	}
	return store, path
}

func TestLoadSeedsDefaultsAndPersistsThem(t *testing.T) {
	store, path := openStore(t)

	if category, ok := store.Lookup(".zip"); !ok || category != "Archives" {
		t.Fatalf("expected .zip -> Archives, got %q (%v)", category, ok)
	}
	if !store.Excluded("readme.md", ".md") {
		t.Fatal("expected README.md excluded by default")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("seed file not written: %v", err)
	}
}

func TestRecordPersistsBeforeReturning(t *testing.T) {
	store, path := openStore(t)

	if err := store.Record(".blend", "3D_Assets"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	reloaded, err := rules.Load(path, nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if category, ok := reloaded.Lookup(".blend"); !ok || category != "3D_Assets" {
		t.Fatalf("mapping not durable: %q (%v)", category, ok)
	}
}

func TestRecordIsIdempotentPerExtension(t *testing.T) {
	store, _ := openStore(t)

	if err := store.Record(".blend", "3D_Assets"); err != nil {
		t.Fatalf("first Record: %v", err)
	}
	if err := store.Record(".blend", "Something_Else"); err != nil {
		t.Fatalf("second Record: %v", err)
	}
	category, ok := store.Lookup(".blend")
	if !ok || category != "3D_Assets" {
		t.Fatalf("first mapping must win, got %q", category)
	}

	count := 0
	for _, cat := range store.Categories() {
		for _, ext := range store.Extensions(cat) {
			if ext == ".blend" {
				count++
			}
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one .blend entry, found %d", count)
	}
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	store, _ := openStore(t)
	if category, ok := store.Lookup(".ZIP"); !ok || category != "Archives" {
		t.Fatalf("expected case-insensitive lookup, got %q (%v)", category, ok)
	}
	if category, ok := store.Lookup("zip"); !ok || category != "Archives" {
		t.Fatalf("expected dotless lookup, got %q (%v)", category, ok)
	}
}

func TestSetExclusionsPersists(t *testing.T) {
	store, path := openStore(t)
	if err := store.SetExclusions([]string{".part", "Desktop.ini"}); err != nil {
		t.Fatalf("SetExclusions: %v", err)
	}

	reloaded, err := rules.Load(path, nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.Excluded("desktop.ini", ".ini") {
		t.Fatal("expected desktop.ini excluded after reload")
	}
	if reloaded.Excluded("readme.md", ".md") {
		t.Fatal("old exclusions should have been replaced")
	}
}

func TestSanitizeLabel(t *testing.T) {
	cases := map[string]string{
		"3D Assets!":      "3D_Assets",
		"blender files":   "Blender_Files",
		"Research-Papers": "Research_Papers",
		"  ":              "",
	}
	for input, want := range cases {
		if got := rules.SanitizeLabel(input); got != want {
			t.Errorf("SanitizeLabel(%q) = %q, want %q", input, got, want)
		}
	}
}
