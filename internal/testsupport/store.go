package testsupport

import (
	"testing"

	"boostd/internal/config"
	"boostd/internal/processed"
)

// MustOpenStore opens a processed.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *processed.Store {
	t.Helper()

	store, err := processed.Open(cfg)
	if err != nil {
		t.Fatalf("processed.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
