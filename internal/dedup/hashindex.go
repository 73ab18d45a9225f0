// Package dedup rejects repeated content using a persistent fingerprint
// index plus fuzzy comparison against the items already seen in a run.
package dedup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jonesrussell/north-cloud/content-forge/internal/textnorm"
)

// Field selects which fingerprint set a text belongs to. The three sets
// are disjoint: a title never collides with a question.
type Field string

const (
	// FieldTitle indexes curiosity titles.
	FieldTitle Field = "title"
	// FieldContent indexes curiosity bodies.
	FieldContent Field = "content"
	// FieldQuestion indexes quiz questions.
	FieldQuestion Field = "question"
)

// flushThreshold is the number of net insertions after which the index
// snapshot is rewritten, bounding data loss on crash without flushing on
// every insertion.
const flushThreshold = 200

// snapshot is the on-disk shape of the hash index.
type snapshot struct {
	Titles    []string  `json:"titles"`
	Contents  []string  `json:"contents"`
	Questions []string  `json:"questions"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HashIndex holds the three fingerprint sets shared by all worker tasks.
// Entries are only ever added, never removed. The snapshot file is an
// optimization: on startup the index is rebuilt from the persisted
// content itself, so losing the snapshot loses nothing.
type HashIndex struct {
	path string

	mu    sync.Mutex
	sets  map[Field]map[string]struct{}
	dirty int
}

// NewHashIndex creates an empty index backed by the given snapshot path.
func NewHashIndex(path string) *HashIndex {
	return &HashIndex{
		path: path,
		sets: map[Field]map[string]struct{}{
			FieldTitle:    {},
			FieldContent:  {},
			FieldQuestion: {},
		},
	}
}

// Load merges the snapshot file into the in-memory sets. A missing
// snapshot is not an error.
func (h *HashIndex) Load() error {
	data, err := os.ReadFile(h.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read hash index: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to parse hash index: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, fp := range snap.Titles {
		h.sets[FieldTitle][fp] = struct{}{}
	}
	for _, fp := range snap.Contents {
		h.sets[FieldContent][fp] = struct{}{}
	}
	for _, fp := range snap.Questions {
		h.sets[FieldQuestion][fp] = struct{}{}
	}

	return nil
}

// Seed records the fingerprint of already-persisted text without
// marking the index dirty. Used while rebuilding from the content store
// at startup.
func (h *HashIndex) Seed(field Field, text string) {
	fp := textnorm.Fingerprint(text)
	if fp == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.sets[field][fp] = struct{}{}
}

// Insert adds the fingerprint of newly accepted text and reports whether
// it was new. New entries advance the dirty counter toward a flush.
func (h *HashIndex) Insert(field Field, text string) bool {
	fp := textnorm.Fingerprint(text)
	if fp == "" {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.sets[field][fp]; exists {
		return false
	}
	h.sets[field][fp] = struct{}{}
	h.dirty++

	return true
}

// Contains reports whether the fingerprint of text is already indexed
// for the given field.
func (h *HashIndex) Contains(field Field, text string) bool {
	fp := textnorm.Fingerprint(text)
	if fp == "" {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.sets[field][fp]
	return ok
}

// Len returns the number of indexed fingerprints for a field.
func (h *HashIndex) Len(field Field) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sets[field])
}

// Flush writes the snapshot if forced or if the dirty counter has
// crossed the flush threshold. The dirty counter resets on a successful
// write.
func (h *HashIndex) Flush(force bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !force && h.dirty < flushThreshold {
		return nil
	}

	snap := snapshot{
		Titles:    setToSlice(h.sets[FieldTitle]),
		Contents:  setToSlice(h.sets[FieldContent]),
		Questions: setToSlice(h.sets[FieldQuestion]),
		UpdatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal hash index: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return fmt.Errorf("failed to create hash index dir: %w", err)
	}

	tmp := h.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write hash index: %w", err)
	}
	if err := os.Rename(tmp, h.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename hash index: %w", err)
	}

	h.dirty = 0
	return nil
}

// setToSlice copies a fingerprint set into a slice for serialization.
func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for fp := range set {
		out = append(out, fp)
	}
	return out
}
