// Package catalogtest provides a small hand-written catalog for tests.
package catalogtest

import (
	_ "embed"
	"path/filepath"
	"testing"

	"listbuilder/internal/catalog"
)

//go:embed pieces.yaml
var piecesYAML []byte

// Templates returns the fixture templates
func Templates(t testing.TB) []catalog.Template {
	t.Helper()
	templates, err := catalog.ParseFixture(piecesYAML)
	if err != nil {
		t.Fatalf("parse catalog fixture: %v", err)
	}
	return templates
}

// Memory returns the fixture as an in-memory catalog
func Memory(t testing.TB) *catalog.Memory {
	t.Helper()
	mem, err := catalog.NewMemory(Templates(t))
	if err != nil {
		t.Fatalf("index catalog fixture: %v", err)
	}
	return mem
}

// SQLiteFile writes the fixture into a fresh database under t.TempDir and returns its path
func SQLiteFile(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")
	store, err := catalog.Create(path)
	if err != nil {
		t.Fatalf("create catalog: %v", err)
	}
	defer store.Close()
	if _, err := catalog.Seed(store, Templates(t)); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	return path
}

// YAML returns the raw fixture
func YAML() []byte {
	return append([]byte(nil), piecesYAML...)
}
