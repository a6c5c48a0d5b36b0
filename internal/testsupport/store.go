package testsupport

import (
	"testing"

	"kiln/internal/config"
	"kiln/internal/journal"
)

// MustOpenJournal opens the journal configured by cfg and registers cleanup.
func MustOpenJournal(t testing.TB, cfg *config.Config) *journal.Journal {
	t.Helper()

	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	t.Cleanup(func() {
		j.Close()
	})
	return j
}
