// Package store persists pipeline state under the shared data directory:
// per-category content files, progress checkpoints, and the run lock.
// Every write goes through an atomic temp-file-and-rename path so a
// partially written file is never observable.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonesrussell/north-cloud/content-forge/internal/content"
)

// Store reads and writes the per-category per-kind content array files.
type Store struct {
	dir string
}

// New creates a Store rooted at the given data directory.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the content file path for a category and kind.
func (s *Store) Path(kind content.Kind, categoryID string) string {
	return filepath.Join(s.dir, string(kind), categoryID+".json")
}

// LoadCuriosities reads the curiosity file for a category. A missing
// file is an empty category, not an error.
func (s *Store) LoadCuriosities(categoryID string) ([]content.Curiosity, error) {
	return readArray[content.Curiosity](s.Path(content.KindCuriosity, categoryID))
}

// SaveCuriosities atomically replaces the curiosity file for a category.
func (s *Store) SaveCuriosities(categoryID string, items []content.Curiosity) error {
	return writeArray(s.Path(content.KindCuriosity, categoryID), items)
}

// LoadQuizzes reads the quiz file for a category. A missing file is an
// empty category, not an error.
func (s *Store) LoadQuizzes(categoryID string) ([]content.QuizQuestion, error) {
	return readArray[content.QuizQuestion](s.Path(content.KindQuiz, categoryID))
}

// SaveQuizzes atomically replaces the quiz file for a category.
func (s *Store) SaveQuizzes(categoryID string, items []content.QuizQuestion) error {
	return writeArray(s.Path(content.KindQuiz, categoryID), items)
}

// Count returns the number of persisted items for a category and kind.
func (s *Store) Count(kind content.Kind, categoryID string) (int, error) {
	switch kind {
	case content.KindQuiz:
		items, err := s.LoadQuizzes(categoryID)
		return len(items), err
	default:
		items, err := s.LoadCuriosities(categoryID)
		return len(items), err
	}
}

// readArray loads a JSON array file into a typed slice.
func readArray[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return items, nil
}

// writeArray atomically writes a typed slice as an indented JSON array.
func writeArray[T any](path string, items []T) error {
	if items == nil {
		items = []T{}
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}

	return writeFileAtomic(path, data)
}

// writeFileAtomic writes data to a temporary file in the target
// directory and renames it into place. Readers observe either the old
// complete file or the new complete file, never a partial write.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to rename %s: %w", tmpName, err)
	}

	return nil
}
