// Package helpers provides shared test constructors.
package helpers

import (
	"testing"

	"github.com/boneycanute/bare-bones-chat/internal/store"
)

// NewTestStore returns an in-memory sqlite store torn down with the test.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}
