package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jonesrussell/north-cloud/content-forge/internal/content"
)

// CategoryCheckpoint records per-category batch progress. Counts are
// monotonically non-decreasing.
type CategoryCheckpoint struct {
	CuriositiesBatchesProcessed int       `json:"curiositiesBatchesProcessed"`
	QuizzesBatchesProcessed     int       `json:"quizzesBatchesProcessed"`
	LastRunAt                   time.Time `json:"lastRunAt"`
}

// checkpointFile is the on-disk shape of the checkpoint store.
type checkpointFile struct {
	Categories map[string]CategoryCheckpoint `json:"categories"`
	UpdatedAt  time.Time                     `json:"updatedAt"`
}

// CheckpointStore persists batch progress counters. It is shared by all
// worker tasks; every mutation is serialized and saved atomically.
type CheckpointStore struct {
	path string

	mu         sync.Mutex
	categories map[string]CategoryCheckpoint
}

// NewCheckpointStore creates a checkpoint store backed by path.
func NewCheckpointStore(path string) *CheckpointStore {
	return &CheckpointStore{
		path:       path,
		categories: make(map[string]CategoryCheckpoint),
	}
}

// Load reads the checkpoint file. A missing file starts all categories
// from zero.
func (c *CheckpointStore) Load() error {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read checkpoints: %w", err)
	}

	var file checkpointFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse checkpoints: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if file.Categories != nil {
		c.categories = file.Categories
	}

	return nil
}

// Get returns the checkpoint for a category, zero-valued if unseen.
func (c *CheckpointStore) Get(categoryID string) CategoryCheckpoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.categories[categoryID]
}

// Advance increments the batch counter for a category and kind, stamps
// the run time, and saves. Called once per committed batch, not per item.
func (c *CheckpointStore) Advance(categoryID string, kind content.Kind) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cp := c.categories[categoryID]
	if kind == content.KindQuiz {
		cp.QuizzesBatchesProcessed++
	} else {
		cp.CuriositiesBatchesProcessed++
	}
	cp.LastRunAt = time.Now().UTC()
	c.categories[categoryID] = cp

	return c.saveLocked()
}

// Save persists the current checkpoint state.
func (c *CheckpointStore) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
}

// saveLocked writes the checkpoint file atomically. Callers hold c.mu.
func (c *CheckpointStore) saveLocked() error {
	file := checkpointFile{
		Categories: c.categories,
		UpdatedAt:  time.Now().UTC(),
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoints: %w", err)
	}

	return writeFileAtomic(c.path, data)
}
