package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"curator/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Gemini.APIKey = "test"
	cfg.Paths.SourceDir = filepath.Join(base, "downloads")
	cfg.Paths.ArchiveDir = filepath.Join(base, "downloads", "Organized_Archive")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := os.MkdirAll(cfg.Paths.SourceDir, 0o755); err != nil {
		t.Fatalf("create source dir: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithProcessAll enables the process-all-files override on the test config.
func WithProcessAll() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Triage.ProcessAllFiles = true
	}
}

// WithBatchSize overrides the image rename batch size.
func WithBatchSize(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Images.BatchSize = n
	}
}
