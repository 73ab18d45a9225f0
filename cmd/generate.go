package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/content-forge/internal/catalog"
	"github.com/jonesrussell/north-cloud/content-forge/internal/config"
	"github.com/jonesrussell/north-cloud/content-forge/internal/dedup"
	"github.com/jonesrussell/north-cloud/content-forge/internal/generator"
	"github.com/jonesrussell/north-cloud/content-forge/internal/logger"
	"github.com/jonesrussell/north-cloud/content-forge/internal/pipeline"
	"github.com/jonesrussell/north-cloud/content-forge/internal/store"
)

// generateFlags holds the command-line overrides for a generation run.
type generateFlags struct {
	categories      string
	exclude         string
	force           bool
	dryRun          bool
	equalize        bool
	curiosityTarget int
	quizTarget      int
	batchSize       int
	concurrency     int
}

// newGenerateCommand builds the generate subcommand, the main entry
// point of the pipeline.
func newGenerateCommand() *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate content for every category up to its target",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, &flags)
		},
	}

	cmd.Flags().StringVar(&flags.categories, "categories", "",
		"comma-separated category IDs to include (default: all)")
	cmd.Flags().StringVar(&flags.exclude, "exclude", "",
		"comma-separated category IDs to skip")
	cmd.Flags().BoolVar(&flags.force, "force", false,
		"overwrite a stale run lock")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false,
		"log intended actions without calling the service or writing")
	cmd.Flags().BoolVar(&flags.equalize, "equalize", false,
		"top up every category to its target without extra logging noise")
	cmd.Flags().IntVar(&flags.curiosityTarget, "curiosity-target", 0,
		"per-category curiosity target (overrides config)")
	cmd.Flags().IntVar(&flags.quizTarget, "quiz-target", 0,
		"per-category quiz target (overrides config)")
	cmd.Flags().IntVar(&flags.batchSize, "batch-size", 0,
		"initial batch size per request (overrides config)")
	cmd.Flags().IntVar(&flags.concurrency, "concurrency", 0,
		"worker pool width (overrides config)")

	return cmd
}

// runGenerate wires the pipeline and executes it until completion or
// interrupt.
func runGenerate(cmd *cobra.Command, flags *generateFlags) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyGenerateFlags(cfg, flags)

	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: cfg.App.Debug,
	})
	if err != nil {
		return err
	}
	defer log.Sync()
	log = log.With(logger.String("run_id", uuid.NewString()))

	categories, err := catalog.Load(cfg.Data.Catalog)
	if err != nil {
		return fmt.Errorf("failed to load category catalog: %w", err)
	}
	categories = catalog.Filter(categories, flags.categories, flags.exclude)
	if len(categories) == 0 {
		log.Warn("no categories selected, nothing to do")
		return nil
	}

	// SIGINT/SIGTERM cancel the run; the runner's shutdown path still
	// flushes state before the process exits.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var gen pipeline.Generator
	if flags.dryRun {
		gen = nil // dry-run never reaches the generator
	} else {
		backend, err := newBackend(ctx, cfg)
		if err != nil {
			return err
		}
		defer backend.Close()

		gen = generator.New(backend, generator.Config{
			PrimaryModel:  cfg.Generation.PrimaryModel,
			FallbackModel: cfg.Generation.FallbackModel,
			MaxAttempts:   cfg.Generation.MaxAttempts,
			BaseDelay:     cfg.Generation.BaseDelay,
			MaxDelay:      cfg.Generation.MaxDelay,
		}, log)
	}

	runner := pipeline.NewRunner(
		pipeline.Config{
			CuriosityTarget: cfg.Generation.CuriosityTarget,
			QuizTarget:      cfg.Generation.QuizTarget,
			BatchSize:       cfg.Generation.BatchSize,
			Concurrency:     cfg.Generation.Concurrency,
			DryRun:          flags.dryRun,
			Equalize:        flags.equalize,
			ForceLock:       flags.force,
			Model:           cfg.Generation.PrimaryModel,
		},
		log,
		store.New(cfg.Data.Dir),
		store.NewCheckpointStore(cfg.CheckpointPath()),
		dedup.NewHashIndex(cfg.HashIndexPath()),
		store.NewLockManager(cfg.LockPath()),
		gen,
	)

	return runner.Run(ctx, categories)
}

// newBackend creates the Gemini backend for a generating run.
func newBackend(ctx context.Context, cfg *config.Config) (*generator.GeminiBackend, error) {
	if cfg.Generation.APIKey == "" {
		return nil, config.ErrMissingAPIKey
	}

	return generator.NewGeminiBackend(ctx, generator.GeminiConfig{
		APIKey:            cfg.Generation.APIKey,
		Temperature:       cfg.Generation.Temperature,
		RequestsPerMinute: cfg.Generation.RequestsPerMinute,
	})
}

// applyGenerateFlags overlays non-zero flag values on the config.
func applyGenerateFlags(cfg *config.Config, flags *generateFlags) {
	if flags.curiosityTarget > 0 {
		cfg.Generation.CuriosityTarget = flags.curiosityTarget
	}
	if flags.quizTarget > 0 {
		cfg.Generation.QuizTarget = flags.quizTarget
	}
	if flags.batchSize > 0 {
		cfg.Generation.BatchSize = flags.batchSize
	}
	if flags.concurrency > 0 {
		cfg.Generation.Concurrency = flags.concurrency
	}
}
