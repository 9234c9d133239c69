package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Clip    ClipConfig    `yaml:"clip"`
	Whisper WhisperConfig `yaml:"whisper"`
	FFmpeg  FFmpegConfig  `yaml:"ffmpeg"`
	Music   MusicConfig   `yaml:"music"`
	Upload  UploadConfig  `yaml:"upload"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
}

type ClipConfig struct {
	WindowSeconds float64 `yaml:"window_seconds"`
	OutputWidth   int     `yaml:"output_width"`
	OutputHeight  int     `yaml:"output_height"`
	OutputDir     string  `yaml:"output_dir"`
}

type WhisperConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ModelPath  string `yaml:"model_path"`
}

type FFmpegConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
	Preset      string `yaml:"preset"`
}

type MusicConfig struct {
	Dir           string  `yaml:"dir"`
	Volume        float64 `yaml:"volume"`
	DuckFactor    float64 `yaml:"duck_factor"`
	MaxDuckPoints int     `yaml:"max_duck_points"`
}

type UploadConfig struct {
	BatchSize         int    `yaml:"batch_size"`
	BatchDelaySeconds int    `yaml:"batch_delay_seconds"`
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
	GraphBaseURL      string `yaml:"graph_base_url"`
	CredentialsDir    string `yaml:"credentials_dir"`
}

type WatchConfig struct {
	InputDir      string `yaml:"input_dir"`
	MaxConcurrent int    `yaml:"max_concurrent"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads a YAML config file. A missing file is not an error: every
// setting has a default, so the zero Config validated is a working one.
func Load(path string) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := cfg.Validate(); err != nil {
				return nil, err
			}
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Clip.WindowSeconds < 0 {
		return fmt.Errorf("clip.window_seconds must be >= 0")
	}
	if c.Music.Volume < 0 || c.Music.Volume > 1 {
		return fmt.Errorf("music.volume must be within [0, 1]")
	}
	if c.Music.DuckFactor < 0 || c.Music.DuckFactor > 1 {
		return fmt.Errorf("music.duck_factor must be within [0, 1]")
	}

	if c.Clip.WindowSeconds == 0 {
		c.Clip.WindowSeconds = 600
	}
	if c.Clip.OutputWidth == 0 {
		c.Clip.OutputWidth = 1080
	}
	if c.Clip.OutputHeight == 0 {
		c.Clip.OutputHeight = 1920
	}
	if c.Clip.OutputDir == "" {
		c.Clip.OutputDir = "output"
	}
	if c.Whisper.BinaryPath == "" {
		c.Whisper.BinaryPath = ".cache/bin/whisper.cpp"
	}
	if c.Whisper.ModelPath == "" {
		c.Whisper.ModelPath = ".cache/models/ggml-base.bin"
	}
	if c.FFmpeg.FFmpegPath == "" {
		c.FFmpeg.FFmpegPath = "ffmpeg"
	}
	if c.FFmpeg.FFprobePath == "" {
		c.FFmpeg.FFprobePath = "ffprobe"
	}
	if c.FFmpeg.Preset == "" {
		c.FFmpeg.Preset = "fast"
	}
	if c.Music.Dir == "" {
		c.Music.Dir = "music"
	}
	if c.Music.Volume == 0 {
		c.Music.Volume = 0.2
	}
	if c.Music.DuckFactor == 0 {
		c.Music.DuckFactor = 0.3
	}
	if c.Music.MaxDuckPoints == 0 {
		c.Music.MaxDuckPoints = 5
	}
	if c.Upload.BatchSize == 0 {
		c.Upload.BatchSize = 5
	}
	if c.Upload.BatchDelaySeconds == 0 {
		c.Upload.BatchDelaySeconds = 3600
	}
	if c.Upload.TimeoutSeconds == 0 {
		c.Upload.TimeoutSeconds = 300
	}
	if c.Upload.GraphBaseURL == "" {
		c.Upload.GraphBaseURL = "https://graph.facebook.com"
	}
	if c.Upload.CredentialsDir == "" {
		c.Upload.CredentialsDir = "."
	}
	if c.Watch.MaxConcurrent == 0 {
		c.Watch.MaxConcurrent = 1
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	return nil
}

// BatchDelay returns the inter-batch throttle as a duration.
func (c *Config) BatchDelay() time.Duration {
	return time.Duration(c.Upload.BatchDelaySeconds) * time.Second
}

// UploadTimeout returns the per-file upload timeout as a duration.
func (c *Config) UploadTimeout() time.Duration {
	return time.Duration(c.Upload.TimeoutSeconds) * time.Second
}
