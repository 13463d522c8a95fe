package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/heimdex/pagexport/internal/session"
)

func TestNew_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvDataDir, dir)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != DefaultPort {
		t.Errorf("Port() = %d, want %d", cfg.Port(), DefaultPort)
	}
	if cfg.LogLevel() != DefaultLogLevel {
		t.Errorf("LogLevel() = %q, want %q", cfg.LogLevel(), DefaultLogLevel)
	}
	if cfg.DBPath() != filepath.Join(dir, DBFilename) {
		t.Errorf("DBPath() = %q", cfg.DBPath())
	}
	if cfg.WatchDir() != filepath.Join(dir, DefaultWatchDirName) {
		t.Errorf("WatchDir() = %q", cfg.WatchDir())
	}
	if cfg.OutputDir() != filepath.Join(dir, DefaultOutputDirName) {
		t.Errorf("OutputDir() = %q", cfg.OutputDir())
	}
	if cfg.MaxConcurrentRuns() != DefaultMaxConcurrentRuns {
		t.Errorf("MaxConcurrentRuns() = %d, want %d", cfg.MaxConcurrentRuns(), DefaultMaxConcurrentRuns)
	}

	opts := cfg.ExportOptions()
	if opts.TagMode != session.TagModeStable || opts.TagLevel != session.TagLevelStable {
		t.Errorf("ExportOptions() tag = %s/%d, want stable/%d", opts.TagMode, opts.TagLevel, session.TagLevelStable)
	}
	if opts.FrameRate != session.DefaultFrameRate {
		t.Errorf("ExportOptions().FrameRate = %v, want %v", opts.FrameRate, session.DefaultFrameRate)
	}
}

func TestNew_ExportOptionsFromEnv(t *testing.T) {
	t.Setenv(EnvTagMode, "custom")
	t.Setenv(EnvTagLevel, "70")
	t.Setenv(EnvFrameRate, "30")
	t.Setenv(EnvScenes, "ui")
	t.Setenv(EnvSequenceSuffix, "_seq")
	t.Setenv(EnvWatchDir, "/tmp/drop")

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	opts := cfg.ExportOptions()
	if opts.TagMode != session.TagModeCustom || opts.TagLevel != 70 {
		t.Errorf("tag = %s/%d, want custom/70", opts.TagMode, opts.TagLevel)
	}
	if opts.FrameRate != 30 {
		t.Errorf("FrameRate = %v, want 30", opts.FrameRate)
	}
	if opts.Scenes != session.ScenesUI {
		t.Errorf("Scenes = %s, want ui", opts.Scenes)
	}
	if opts.SequenceSuffix != "_seq" {
		t.Errorf("SequenceSuffix = %q, want %q", opts.SequenceSuffix, "_seq")
	}
	if cfg.WatchDir() != "/tmp/drop" {
		t.Errorf("WatchDir() = %q, want %q", cfg.WatchDir(), "/tmp/drop")
	}
}

func TestNew_BetaModeUsesMaxLevel(t *testing.T) {
	t.Setenv(EnvTagMode, "beta")
	t.Setenv(EnvTagLevel, "60")

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cfg.ExportOptions().TagLevel; got != session.TagLevelMax {
		t.Errorf("TagLevel = %d, want %d", got, session.TagLevelMax)
	}
}

func TestNew_InvalidValues(t *testing.T) {
	tests := []struct {
		env   string
		value string
	}{
		{EnvPort, "abc"},
		{EnvPort, "70000"},
		{EnvMaxConcurrentRuns, "0"},
		{EnvMaxConcurrentRuns, "many"},
		{EnvTagMode, "nightly"},
		{EnvTagLevel, "-1"},
		{EnvFrameRate, "fast"},
		{EnvScenes, "desktop"},
	}

	for _, tc := range tests {
		t.Run(tc.env+"="+tc.value, func(t *testing.T) {
			t.Setenv(tc.env, tc.value)
			_, err := New()
			if err == nil {
				t.Fatalf("New() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tc.env) {
				t.Errorf("error %q does not name %s", err, tc.env)
			}
		})
	}
}
