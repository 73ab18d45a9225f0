package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jonesrussell/north-cloud/content-forge/internal/catalog"
	"github.com/jonesrussell/north-cloud/content-forge/internal/content"
	"github.com/jonesrussell/north-cloud/content-forge/internal/logger"
	"github.com/jonesrussell/north-cloud/content-forge/internal/parse"
)

// maxConsecutiveFailures aborts a task that cannot commit anything at
// all, so a dead category cannot spin the pipeline forever. The abort is
// logged and is not fatal to other tasks.
const maxConsecutiveFailures = 10

// runTask drives the generation loop for one (category, kind) pair:
// request, parse, validate, dedup, persist, checkpoint, until the
// category reaches its target. Batch iterations are strictly sequential
// because dedup depends on every item accepted earlier in the run.
func (r *Runner) runTask(ctx context.Context, cat catalog.Category, kind content.Kind) error {
	log := r.log.With(
		logger.String("category", cat.ID),
		logger.String("kind", string(kind)),
	)

	state, err := r.newState(cat.ID, kind)
	if err != nil {
		return fmt.Errorf("failed to load existing items for %s/%s: %w", cat.ID, kind, err)
	}

	target := r.targetFor(kind)
	toGenerate := target - state.count()
	if toGenerate <= 0 {
		if r.cfg.Equalize {
			log.Debug("category at target", logger.Int("existing", state.count()))
		} else {
			log.Info("category already at target, skipping",
				logger.Int("existing", state.count()),
				logger.Int("target", target),
			)
		}
		return nil
	}

	if r.cfg.DryRun {
		log.Info("dry-run: generation suppressed",
			logger.Int("existing", state.count()),
			logger.Int("would_generate", toGenerate),
			logger.String("file", r.store.Path(kind, cat.ID)),
		)
		return nil
	}

	log.Info("task started",
		logger.Int("existing", state.count()),
		logger.Int("to_generate", toGenerate),
	)

	ctrl := newBatchController(r.cfg.BatchSize)
	generated := 0
	failures := 0

	for generated < toGenerate {
		if err := ctx.Err(); err != nil {
			return err
		}

		size := min(toGenerate-generated, ctrl.Size())
		if size < minBatchSize {
			size = minBatchSize
		}

		prompt := buildPrompt(kind, cat, size, state.samples())
		raw, err := r.gen.Generate(ctx, kind, prompt, size)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("batch skipped: generation failed", logger.Error(err))
			ctrl.RecordEmpty()
			failures++
			if failures >= maxConsecutiveFailures {
				log.Error("task aborted: too many consecutive failed batches",
					logger.Int("generated", generated))
				return nil
			}
			r.retryDelay(ctx)
			continue
		}

		candidates := parse.Candidates(raw)
		if len(candidates) == 0 {
			log.Warn("batch skipped: unparsable response",
				logger.Int("response_len", len(raw)))
			ctrl.RecordEmpty()
			failures++
			if failures >= maxConsecutiveFailures {
				log.Error("task aborted: too many consecutive failed batches",
					logger.Int("generated", generated))
				return nil
			}
			r.retryDelay(ctx)
			continue
		}

		accepted := 0
		for _, c := range candidates {
			if state.accept(c) {
				accepted++
			}
		}
		if accepted == 0 {
			log.Warn("batch yielded no accepted items",
				logger.Int("candidates", len(candidates)),
				logger.Int("batch_size", size),
			)
			ctrl.RecordZeroYield()
			failures++
			if failures >= maxConsecutiveFailures {
				log.Error("task aborted: too many consecutive failed batches",
					logger.Int("generated", generated))
				return nil
			}
			r.retryDelay(ctx)
			continue
		}

		ctrl.RecordSuccess()
		failures = 0

		if err := state.persist(); err != nil {
			return fmt.Errorf("failed to persist %s/%s: %w", cat.ID, kind, err)
		}
		if err := r.checkpoints.Advance(cat.ID, kind); err != nil {
			return fmt.Errorf("failed to advance checkpoint for %s: %w", cat.ID, err)
		}
		if err := r.index.Flush(false); err != nil {
			// The snapshot is an optimization; losing a periodic flush
			// only costs rebuild time on the next start.
			log.Warn("hash index flush failed", logger.Error(err))
		}

		generated += accepted
		log.Info("batch committed",
			logger.Int("accepted", accepted),
			logger.Int("rejected", len(candidates)-accepted),
			logger.Int("generated", generated),
			logger.Int("to_generate", toGenerate),
		)
	}

	log.Info("category complete", logger.Int("generated", generated))
	return nil
}

// newState builds the per-kind task state.
func (r *Runner) newState(categoryID string, kind content.Kind) (taskState, error) {
	if kind == content.KindQuiz {
		return newQuizState(r.store, r.dedup, categoryID)
	}
	return newCuriosityState(r.store, r.dedup, categoryID)
}

// targetFor returns the per-kind item target.
func (r *Runner) targetFor(kind content.Kind) int {
	if kind == content.KindQuiz {
		return r.cfg.QuizTarget
	}
	return r.cfg.CuriosityTarget
}

// retryDelay sleeps a small randomized interval before retrying a
// failed batch, respecting cancellation.
func (r *Runner) retryDelay(ctx context.Context) {
	delay := 500*time.Millisecond + time.Duration(rand.Int63n(int64(1500*time.Millisecond)))
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}
