package pipeline

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jonesrussell/north-cloud/content-forge/internal/catalog"
	"github.com/jonesrussell/north-cloud/content-forge/internal/content"
	"github.com/jonesrussell/north-cloud/content-forge/internal/dedup"
	"github.com/jonesrussell/north-cloud/content-forge/internal/logger"
	"github.com/jonesrussell/north-cloud/content-forge/internal/store"
)

// Generator issues one batch request to the generative service.
// Implemented by the generator package; tests substitute fakes.
type Generator interface {
	Generate(ctx context.Context, kind content.Kind, prompt string, count int) (string, error)
}

// Config holds the run-level settings of one pipeline invocation.
type Config struct {
	// CuriosityTarget is the per-category curiosity item target.
	CuriosityTarget int
	// QuizTarget is the per-category quiz item target.
	QuizTarget int
	// BatchSize seeds the dynamic batch size of every task.
	BatchSize int
	// Concurrency bounds the worker pool width.
	Concurrency int
	// DryRun suppresses every write and all generation, logging intent.
	DryRun bool
	// Equalize marks a top-up pass after a main run.
	Equalize bool
	// ForceLock overwrites a stale lock left by a dead run.
	ForceLock bool
	// Model is recorded in the lock file for operator visibility.
	Model string
}

// SetDefaults applies default values to unset fields.
func (c *Config) SetDefaults() {
	if c.CuriosityTarget <= 0 {
		c.CuriosityTarget = 1000
	}
	if c.QuizTarget <= 0 {
		c.QuizTarget = 300
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 40
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
}

// Runner wires the pipeline components and schedules (category, kind)
// tasks across a bounded worker pool.
type Runner struct {
	cfg         Config
	log         logger.Logger
	store       *store.Store
	checkpoints *store.CheckpointStore
	index       *dedup.HashIndex
	dedup       *dedup.Deduplicator
	lock        *store.LockManager
	gen         Generator

	shutdownOnce sync.Once
	shutdownErr  error
}

// NewRunner assembles a pipeline runner.
func NewRunner(
	cfg Config,
	log logger.Logger,
	st *store.Store,
	checkpoints *store.CheckpointStore,
	index *dedup.HashIndex,
	lock *store.LockManager,
	gen Generator,
) *Runner {
	cfg.SetDefaults()
	return &Runner{
		cfg:         cfg,
		log:         log,
		store:       st,
		checkpoints: checkpoints,
		index:       index,
		dedup:       dedup.NewDeduplicator(index),
		lock:        lock,
		gen:         gen,
	}
}

// Run executes the pipeline over the given categories. It acquires the
// data-directory lock, seeds duplicate protection from everything
// already on disk, fans tasks out over the worker pool, and always runs
// the shutdown path (flush, checkpoint save, unlock) exactly once before
// returning, whether the run completed, failed, or was interrupted.
func (r *Runner) Run(ctx context.Context, categories []catalog.Category) error {
	if !r.cfg.DryRun {
		if err := r.lock.Acquire(r.cfg.Model, r.cfg.ForceLock); err != nil {
			return err
		}
	} else {
		r.log.Info("dry-run: lock acquisition skipped")
	}
	defer func() {
		if err := r.Shutdown(); err != nil {
			r.log.Error("shutdown failed", logger.Error(err))
		}
	}()

	if err := r.index.Load(); err != nil {
		r.log.Warn("hash index snapshot unreadable, rebuilding from content", logger.Error(err))
	}
	if err := r.seedIndex(categories); err != nil {
		return err
	}
	if err := r.checkpoints.Load(); err != nil {
		return err
	}

	r.log.Info("pipeline starting",
		logger.Int("categories", len(categories)),
		logger.Int("concurrency", r.cfg.Concurrency),
		logger.Bool("dry_run", r.cfg.DryRun),
		logger.Bool("equalize", r.cfg.Equalize),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)

	for _, cat := range categories {
		for _, kind := range content.Kinds {
			g.Go(func() error {
				return r.runTask(gctx, cat, kind)
			})
		}
	}

	return g.Wait()
}

// seedIndex re-hashes every persisted item across every category and
// kind. This makes duplicate protection independent of the snapshot
// file: the snapshot only saves rebuild time, it is not the source of
// truth.
func (r *Runner) seedIndex(categories []catalog.Category) error {
	for _, cat := range categories {
		curiosities, err := r.store.LoadCuriosities(cat.ID)
		if err != nil {
			return fmt.Errorf("failed to seed hash index from %s: %w", cat.ID, err)
		}
		for _, c := range curiosities {
			r.index.Seed(dedup.FieldTitle, c.Title)
			r.index.Seed(dedup.FieldContent, c.Content)
		}

		quizzes, err := r.store.LoadQuizzes(cat.ID)
		if err != nil {
			return fmt.Errorf("failed to seed hash index from %s: %w", cat.ID, err)
		}
		for _, q := range quizzes {
			r.index.Seed(dedup.FieldQuestion, q.Question)
		}
	}

	r.log.Info("hash index seeded",
		logger.Int("titles", r.index.Len(dedup.FieldTitle)),
		logger.Int("contents", r.index.Len(dedup.FieldContent)),
		logger.Int("questions", r.index.Len(dedup.FieldQuestion)),
	)

	return nil
}

// Shutdown forces a hash index flush and a checkpoint save, then
// releases the lock. It runs its sequence exactly once no matter how
// many paths invoke it.
func (r *Runner) Shutdown() error {
	r.shutdownOnce.Do(func() {
		if r.cfg.DryRun {
			r.log.Info("dry-run: shutdown persistence skipped")
			return
		}

		if err := r.index.Flush(true); err != nil {
			r.shutdownErr = fmt.Errorf("failed to flush hash index: %w", err)
		}
		if err := r.checkpoints.Save(); err != nil && r.shutdownErr == nil {
			r.shutdownErr = fmt.Errorf("failed to save checkpoints: %w", err)
		}
		if err := r.lock.Release(); err != nil && r.shutdownErr == nil {
			r.shutdownErr = err
		}

		r.log.Info("pipeline shut down")
	})

	return r.shutdownErr
}
