package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"turntable/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
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

	wantLogDir := filepath.Join(tempHome, ".local", "share", "turntable", "logs")
	if cfg.Paths.LogDir != wantLogDir {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogDir)
	}
	if cfg.Render.Width != 252 || cfg.Render.Height != 384 {
		t.Fatalf("unexpected render defaults: %dx%d", cfg.Render.Width, cfg.Render.Height)
	}
	if cfg.Render.FrameCount != 180 {
		t.Fatalf("unexpected frame count: %d", cfg.Render.FrameCount)
	}
	if cfg.Render.Framerate != 30 {
		t.Fatalf("unexpected framerate: %d", cfg.Render.Framerate)
	}
	if cfg.Tools.FFmpegPath != "ffmpeg" {
		t.Fatalf("unexpected ffmpeg path: %q", cfg.Tools.FFmpegPath)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %s/%s", cfg.Logging.Format, cfg.Logging.Level)
	}
}

func TestLoadParsesFileAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := strings.Join([]string{
		"[tools]",
		`blender_path = "/opt/blender/blender"`,
		"[render]",
		"width = 504",
		"height = 768",
		"[logging]",
		`level = "debug"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected existing config, got exists=%v resolved=%q", exists, resolved)
	}
	if cfg.Tools.BlenderPath != "/opt/blender/blender" {
		t.Fatalf("unexpected blender path: %q", cfg.Tools.BlenderPath)
	}
	if cfg.Render.Width != 504 || cfg.Render.Height != 768 {
		t.Fatalf("unexpected dimensions: %dx%d", cfg.Render.Width, cfg.Render.Height)
	}
	if cfg.Render.FrameCount != 180 {
		t.Fatalf("expected frame count default to survive partial file, got %d", cfg.Render.FrameCount)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsInvalidRenderValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[render]\nwidth = -5\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for negative width")
	}
}

func TestLoadRejectsUnknownLogFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"yaml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for unknown log format")
	}
}

func TestSampleConfigParses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(config.SampleConfig()), 0o644); err != nil {
		t.Fatalf("write sample config: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
}
