package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"curator/internal/config"
)

func TestLoadDefaultConfigUsesEnvGeminiKeyAndExpandsPaths(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantSource := filepath.Join(tempHome, "Downloads")
	if cfg.Paths.SourceDir != wantSource {
		t.Fatalf("unexpected source dir: got %q want %q", cfg.Paths.SourceDir, wantSource)
	}
	if cfg.Paths.ArchiveDir != filepath.Join(wantSource, "Organized_Archive") {
		t.Fatalf("unexpected archive dir: %q", cfg.Paths.ArchiveDir)
	}
	if cfg.Gemini.APIKey != "test-key" {
		t.Fatalf("expected Gemini key from env, got %q", cfg.Gemini.APIKey)
	}
	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Fatalf("unexpected model default: %q", cfg.Gemini.Model)
	}
	if cfg.Triage.RecencyWindowHours != 24 {
		t.Fatalf("unexpected recency window: %d", cfg.Triage.RecencyWindowHours)
	}
	if cfg.Triage.ProcessAllFiles {
		t.Fatal("expected process_all_files disabled by default")
	}
	if cfg.Triage.RetryAttempts != 3 || cfg.Triage.RetryDelaySeconds != 10 {
		t.Fatalf("unexpected retry defaults: %d x %ds", cfg.Triage.RetryAttempts, cfg.Triage.RetryDelaySeconds)
	}
	if cfg.Images.Enabled || cfg.PDFs.Enabled {
		t.Fatal("expected optional stages disabled by default")
	}
	if cfg.Images.BatchSize != 10 {
		t.Fatalf("unexpected image batch size: %d", cfg.Images.BatchSize)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`source_dir = "` + filepath.Join(dir, "inbox") + `"`,
		`archive_dir = "` + filepath.Join(dir, "sorted") + `"`,
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		"[gemini]",
		`api_key = "file-key"`,
		"[triage]",
		"recency_window_hours = 6",
		"[images]",
		"enabled = true",
		"batch_size = 4",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected resolved existing path %q, got %q (exists=%v)", path, resolved, exists)
	}
	if cfg.Gemini.APIKey != "file-key" {
		t.Fatalf("unexpected api key: %q", cfg.Gemini.APIKey)
	}
	if cfg.Triage.RecencyWindowHours != 6 {
		t.Fatalf("unexpected recency window: %d", cfg.Triage.RecencyWindowHours)
	}
	if !cfg.Images.Enabled || cfg.Images.BatchSize != 4 {
		t.Fatalf("unexpected image settings: %+v", cfg.Images)
	}
	if cfg.RulesPath() != filepath.Join(dir, "sorted", "extension_map.json") {
		t.Fatalf("unexpected rules path: %q", cfg.RulesPath())
	}
}

func TestValidateRejectsMissingAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	_, _, _, err := config.Load("")
	if err == nil {
		t.Fatal("expected validation error without api key")
	}
	if !strings.Contains(err.Error(), "gemini.api_key") {
		t.Fatalf("expected api key error, got %v", err)
	}
}

func TestValidateRejectsArchiveEqualSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`source_dir = "` + dir + `"`,
		`archive_dir = "` + dir + `"`,
		"[gemini]",
		`api_key = "k"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "archive_dir") {
		t.Fatalf("expected archive_dir validation error, got %v", err)
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[gemini]") {
		t.Fatal("sample config missing gemini section")
	}
}
