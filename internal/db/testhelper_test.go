package db

import (
	"testing"
)

// setupTestStore opens an in-memory sqlite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}
