package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Clip.WindowSeconds != 600 {
		t.Errorf("window seconds = %v, want 600", cfg.Clip.WindowSeconds)
	}
	if cfg.Clip.OutputWidth != 1080 || cfg.Clip.OutputHeight != 1920 {
		t.Errorf("dimensions = %dx%d, want 1080x1920", cfg.Clip.OutputWidth, cfg.Clip.OutputHeight)
	}
	if cfg.Music.Volume != 0.2 || cfg.Music.DuckFactor != 0.3 {
		t.Errorf("music volume/duck = %v/%v, want 0.2/0.3", cfg.Music.Volume, cfg.Music.DuckFactor)
	}
	if cfg.Upload.BatchSize != 5 {
		t.Errorf("batch size = %d, want 5", cfg.Upload.BatchSize)
	}
	if cfg.Upload.GraphBaseURL != "https://graph.facebook.com" {
		t.Errorf("graph base URL = %q", cfg.Upload.GraphBaseURL)
	}
	if cfg.BatchDelay() != time.Hour {
		t.Errorf("batch delay = %v, want 1h", cfg.BatchDelay())
	}
	if cfg.UploadTimeout() != 5*time.Minute {
		t.Errorf("upload timeout = %v, want 5m", cfg.UploadTimeout())
	}
	if cfg.Watch.MaxConcurrent != 1 {
		t.Errorf("watch max concurrent = %d, want 1", cfg.Watch.MaxConcurrent)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadOverridesAndKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
clip:
  window_seconds: 120
  output_dir: reels
music:
  volume: 0.5
upload:
  batch_size: 3
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Clip.WindowSeconds != 120 {
		t.Errorf("window seconds = %v, want 120", cfg.Clip.WindowSeconds)
	}
	if cfg.Clip.OutputDir != "reels" {
		t.Errorf("output dir = %q, want reels", cfg.Clip.OutputDir)
	}
	if cfg.Music.Volume != 0.5 {
		t.Errorf("music volume = %v, want 0.5", cfg.Music.Volume)
	}
	if cfg.Upload.BatchSize != 3 {
		t.Errorf("batch size = %d, want 3", cfg.Upload.BatchSize)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}

	// Unset keys still get defaults.
	if cfg.Clip.OutputWidth != 1080 {
		t.Errorf("output width = %d, want default 1080", cfg.Clip.OutputWidth)
	}
	if cfg.Music.DuckFactor != 0.3 {
		t.Errorf("duck factor = %v, want default 0.3", cfg.Music.DuckFactor)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"negative window":   "clip:\n  window_seconds: -1\n",
		"volume over one":   "music:\n  volume: 1.5\n",
		"duck factor below": "music:\n  duck_factor: -0.2\n",
		"malformed yaml":    "clip: [\n",
	}
	for name, body := range tests {
		body := body
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatal("expected load error")
			}
		})
	}
}
