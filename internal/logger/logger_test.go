package logger_test

import (
	"path/filepath"
	"testing"

	"github.com/jonesrussell/north-cloud/content-forge/internal/logger"
)

func TestNew(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "forge.log")
	l, err := logger.New(logger.Config{Level: "debug", OutputPaths: []string{out}})
	if err != nil {
		t.Fatalf("New() error = %v, want nil", err)
	}

	l.Info("pipeline starting", logger.String("category", "space"), logger.Int("target", 1000))
	l.With(logger.Bool("dry_run", true)).Warn("lock acquisition skipped")

	if err := l.Sync(); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	t.Parallel()

	if _, err := logger.New(logger.Config{Level: "shout"}); err != nil {
		t.Errorf("unknown level should fall back to info, got error %v", err)
	}
}

func TestNop(t *testing.T) {
	t.Parallel()

	l := logger.NewNop()
	l.Debug("ignored")
	l.Error("ignored", logger.Error(nil))
	if err := l.With(logger.String("k", "v")).Sync(); err != nil {
		t.Errorf("nop Sync() = %v, want nil", err)
	}
}
