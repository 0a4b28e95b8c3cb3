package engine

import (
	"testing"

	"payengine/internal/history"
	"payengine/internal/storage"
)

// Late disputes survive eviction end to end: a withdrawal pushed out of the
// bounded cache is recovered from the sqlite archive and runs the full
// dispute lifecycle.
func TestProcessor_LateDisputeThroughArchive(t *testing.T) {
	store, err := storage.NewArchiveStore(t.TempDir() + "/archive.db")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	p := NewProcessor(16, history.NewCache(2, store, store), nil)

	mustApply(t, p, deposit(1, 1, amt(t, "100.0000")))
	mustApply(t, p, withdrawal(2, 1, amt(t, "5.0000")))
	mustApply(t, p, withdrawal(3, 1, amt(t, "1.0000")))
	mustApply(t, p, withdrawal(4, 1, amt(t, "1.0000"))) // evicts tx 2 into the archive

	e, err := store.Lookup(2)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if e == nil {
		t.Fatal("expected tx 2 archived")
	}

	mustApply(t, p, dispute(2, 1))

	r := row(t, p, 1)
	if got, want := r.Held.String(), "5.0000"; got != want {
		t.Errorf("held = %s, want %s", got, want)
	}

	// The dispute state reached the archive, so a second dispute is caught.
	if out := p.Process(dispute(2, 1)); out != Rejected(ReasonAlreadyDisputed) {
		t.Errorf("expected already disputed, got %+v", out)
	}

	mustApply(t, p, resolve(2, 1))

	r = row(t, p, 1)
	if !r.Held.IsZero() {
		t.Errorf("held = %s, want zero", r.Held)
	}

	// Completion removed the archived entry for good.
	if out := p.Process(dispute(2, 1)); out != Rejected(ReasonUnknownTransaction) {
		t.Errorf("expected unknown transaction, got %+v", out)
	}
}
