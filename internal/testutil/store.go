package testutil

import (
	"path/filepath"
	"testing"

	"github.com/lewtnanny/lewtnanny/internal/store"
)

// OpenStore opens one store kind in a temp directory and closes it when
// the test finishes.
func OpenStore(t *testing.T, kind store.Kind) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), kind.FileName()), kind)
	if err != nil {
		t.Fatalf("open %s store: %v", kind, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// OpenManager opens all five stores under one temp directory and shuts
// them down when the test finishes.
func OpenManager(t *testing.T) *store.Manager {
	t.Helper()
	m := store.NewManager(t.TempDir(), nil)
	if err := m.OpenAll(); err != nil {
		t.Fatalf("open stores: %v", err)
	}
	t.Cleanup(func() { m.CloseAll() })
	return m
}
