package testsupport

import (
	"testing"

	"belltower/internal/config"
	"belltower/internal/history"
)

// MustOpenStore opens a trigger history store for tests and closes it on
// cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("open history store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
