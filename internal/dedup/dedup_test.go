package dedup_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonesrussell/north-cloud/content-forge/internal/dedup"
)

func newIndex(t *testing.T) (*dedup.HashIndex, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "hash-index.json")
	return dedup.NewHashIndex(path), path
}

func TestHashIndex_InsertContains(t *testing.T) {
	t.Parallel()

	index, _ := newIndex(t)

	if index.Contains(dedup.FieldTitle, "Octopuses have three hearts") {
		t.Fatal("empty index should contain nothing")
	}

	if !index.Insert(dedup.FieldTitle, "Octopuses have three hearts") {
		t.Fatal("first insert should report new")
	}
	if index.Insert(dedup.FieldTitle, "OCTOPUSES have three hearts!") {
		t.Error("normalization-equal insert should not report new")
	}

	if !index.Contains(dedup.FieldTitle, "octopuses have three hearts") {
		t.Error("lookup should match after normalization")
	}

	// The three sets are disjoint.
	if index.Contains(dedup.FieldQuestion, "Octopuses have three hearts") {
		t.Error("title fingerprint must not leak into the question set")
	}
}

func TestHashIndex_FlushAndReload(t *testing.T) {
	t.Parallel()

	index, path := newIndex(t)
	index.Insert(dedup.FieldTitle, "Honey never spoils")
	index.Insert(dedup.FieldQuestion, "Which planet has the most moons?")

	// Below the dirty threshold nothing is written without force.
	if err := index.Flush(false); err != nil {
		t.Fatalf("Flush(false) error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("unforced flush below threshold should not write a snapshot")
	}

	if err := index.Flush(true); err != nil {
		t.Fatalf("Flush(true) error = %v", err)
	}

	reloaded := dedup.NewHashIndex(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reloaded.Contains(dedup.FieldTitle, "Honey never spoils") {
		t.Error("reloaded index should contain flushed title")
	}
	if !reloaded.Contains(dedup.FieldQuestion, "Which planet has the most moons?") {
		t.Error("reloaded index should contain flushed question")
	}
	if reloaded.Len(dedup.FieldContent) != 0 {
		t.Error("content set should be empty")
	}
}

func TestHashIndex_LoadMissingSnapshot(t *testing.T) {
	t.Parallel()

	index, _ := newIndex(t)
	if err := index.Load(); err != nil {
		t.Fatalf("Load() with no snapshot should succeed, got %v", err)
	}
}

func TestDeduplicator(t *testing.T) {
	t.Parallel()

	index, _ := newIndex(t)
	d := dedup.NewDeduplicator(index)

	scope := []string{
		"Octopuses have three hearts and blue blood",
		"Honey never spoils when stored sealed",
	}

	// Exact raw match in scope.
	if !d.IsDuplicate("Honey never spoils when stored sealed", dedup.FieldTitle, scope) {
		t.Error("exact scope match should be a duplicate")
	}

	// Fuzzy near-match in scope.
	if !d.IsDuplicate("Octopuses have three hearts and blueish blood", dedup.FieldTitle, scope) {
		t.Error("near-identical candidate should be a duplicate")
	}

	// Fresh text passes.
	if d.IsDuplicate("Bananas are berries but strawberries are not", dedup.FieldTitle, scope) {
		t.Error("novel candidate should not be a duplicate")
	}

	// Empty normalization is always rejected.
	if !d.IsDuplicate("?!...", dedup.FieldTitle, nil) {
		t.Error("text normalizing to nothing should be a duplicate")
	}

	// Once accepted, the fingerprint blocks future candidates even with
	// an empty scope.
	d.Accept("Bananas are berries but strawberries are not", dedup.FieldTitle)
	if !d.IsDuplicate("Bananas are berries, but strawberries are not!", dedup.FieldTitle, nil) {
		t.Error("accepted fingerprint should block a normalization-equal candidate")
	}
}
