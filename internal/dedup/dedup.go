package dedup

import (
	"github.com/jonesrussell/north-cloud/content-forge/internal/textnorm"
)

// similarityThreshold is the fuzzy-match score at or above which a
// candidate is considered a duplicate of something already in scope.
const similarityThreshold = 0.82

// Deduplicator answers duplicate checks against the persistent hash
// index and an in-run scope of already-seen texts.
type Deduplicator struct {
	index *HashIndex
}

// NewDeduplicator creates a deduplicator over the given index.
func NewDeduplicator(index *HashIndex) *Deduplicator {
	return &Deduplicator{index: index}
}

// IsDuplicate reports whether candidate duplicates existing content. A
// candidate is a duplicate if it normalizes to nothing, if its
// fingerprint is already indexed for the field, if it exactly matches
// any string in scope, or if its best fuzzy similarity against the scope
// meets the threshold. The scope holds on-disk texts plus items accepted
// earlier in the current batch.
func (d *Deduplicator) IsDuplicate(candidate string, field Field, scope []string) bool {
	if textnorm.Normalize(candidate) == "" {
		return true
	}

	if d.index.Contains(field, candidate) {
		return true
	}

	for _, seen := range scope {
		if candidate == seen {
			return true
		}
	}
	for _, seen := range scope {
		if textnorm.Similarity(candidate, seen) >= similarityThreshold {
			return true
		}
	}

	return false
}

// Accept records an accepted candidate's fingerprint in the index.
func (d *Deduplicator) Accept(candidate string, field Field) {
	d.index.Insert(field, candidate)
}
