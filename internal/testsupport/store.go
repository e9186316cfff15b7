package testsupport

import (
	"testing"

	"curator/internal/config"
	"curator/internal/journal"
	"curator/internal/rules"
)

// MustOpenJournal opens a journal store for tests and registers cleanup.
func MustOpenJournal(t testing.TB, cfg *config.Config) *journal.Store {
	t.Helper()

	store, err := journal.Open(cfg.JournalPath())
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustLoadRules loads (and seeds) the extension map for tests.
func MustLoadRules(t testing.TB, cfg *config.Config) *rules.Store {
	t.Helper()

	store, err := rules.Load(cfg.RulesPath(), nil)
	if err != nil {
		t.Fatalf("rules.Load: %v", err)
	}
	return store
}
