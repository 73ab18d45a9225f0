package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/content-forge/internal/catalog"
	"github.com/jonesrussell/north-cloud/content-forge/internal/config"
	"github.com/jonesrussell/north-cloud/content-forge/internal/content"
	"github.com/jonesrussell/north-cloud/content-forge/internal/store"
)

// newStatusCommand builds the status subcommand: a read-only view of
// per-category progress against the configured targets.
func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show per-category content counts and checkpoint state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}
}

func runStatus() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	categories, err := catalog.Load(cfg.Data.Catalog)
	if err != nil {
		return fmt.Errorf("failed to load category catalog: %w", err)
	}

	st := store.New(cfg.Data.Dir)
	checkpoints := store.NewCheckpointStore(cfg.CheckpointPath())
	if err := checkpoints.Load(); err != nil {
		return err
	}

	fmt.Printf("%-20s %12s %12s %12s %12s  %s\n",
		"CATEGORY", "CURIOSITIES", "TARGET", "QUIZZES", "TARGET", "LAST RUN")

	for _, cat := range categories {
		curiosities, err := st.Count(content.KindCuriosity, cat.ID)
		if err != nil {
			return err
		}
		quizzes, err := st.Count(content.KindQuiz, cat.ID)
		if err != nil {
			return err
		}

		lastRun := "never"
		if cp := checkpoints.Get(cat.ID); !cp.LastRunAt.IsZero() {
			lastRun = cp.LastRunAt.Format(time.RFC3339)
		}

		fmt.Printf("%-20s %12d %12d %12d %12d  %s\n",
			cat.ID,
			curiosities, cfg.Generation.CuriosityTarget,
			quizzes, cfg.Generation.QuizTarget,
			lastRun,
		)
	}

	return nil
}
