// Package testutil loads golden test fixtures shared across the
// compiler's package tests.
package testutil

import (
	"testing"

	"golang.org/x/tools/txtar"
)

// Fixture is one named section of a txtar archive, e.g. "source.cdl"
// or "blueprint.txt".
type Fixture struct {
	Name string
	Data []byte
}

// LoadArchive parses a txtar archive and returns its files as Fixtures.
func LoadArchive(t *testing.T, data []byte) []Fixture {
	t.Helper()
	a := txtar.Parse(data)
	fixtures := make([]Fixture, len(a.Files))
	for i, f := range a.Files {
		fixtures[i] = Fixture{Name: f.Name, Data: f.Data}
	}
	return fixtures
}

// Find returns the named fixture's contents, failing the test if absent.
func Find(t *testing.T, fixtures []Fixture, name string) []byte {
	t.Helper()
	for _, f := range fixtures {
		if f.Name == name {
			return f.Data
		}
	}
	t.Fatalf("fixture %q not found", name)
	return nil
}
