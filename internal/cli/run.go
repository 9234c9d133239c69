package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/forPelevin/reelcut/internal/config"
	"github.com/forPelevin/reelcut/internal/logger"
	"github.com/forPelevin/reelcut/internal/pipeline"
	"github.com/forPelevin/reelcut/internal/ports/adapters/graphapi"
	"github.com/forPelevin/reelcut/internal/uploader"
	"github.com/forPelevin/reelcut/internal/watcher"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func runClip(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Logging.Level)

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		cfg.Clip.OutputDir = out
	}
	if window, _ := cmd.Flags().GetInt("window"); window > 0 {
		cfg.Clip.WindowSeconds = float64(window)
	}
	if music, _ := cmd.Flags().GetString("music"); music != "" {
		cfg.Music.Dir = music
	}

	watchDir, _ := cmd.Flags().GetString("watch")
	if watchDir != "" {
		return runClipWatch(cfg, log, watchDir)
	}

	if len(args) != 1 {
		return errors.New("an input video is required unless --watch is set")
	}
	absIn, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Hour)
	defer cancel()

	pcfg := clipPipelineConfig(cfg, log, absIn)
	if err := pcfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return pipeline.Run(ctx, pcfg)
}

func runClipWatch(cfg *config.Config, log logger.Logger, watchDir string) error {
	if err := os.MkdirAll(watchDir, 0o755); err != nil {
		return fmt.Errorf("create watch dir: %w", err)
	}

	handler := func(ctx context.Context, path string) error {
		pcfg := clipPipelineConfig(cfg, log, path)
		if err := pcfg.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		return pipeline.Run(ctx, pcfg)
	}

	w, err := watcher.New(watchDir, handler, log, cfg.Watch.MaxConcurrent)
	if err != nil {
		return err
	}
	defer w.Stop()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func clipPipelineConfig(cfg *config.Config, log logger.Logger, input string) pipeline.Config {
	return pipeline.Config{
		InputVideo:    input,
		OutDir:        cfg.Clip.OutputDir,
		WindowSeconds: cfg.Clip.WindowSeconds,
		OutputWidth:   cfg.Clip.OutputWidth,
		OutputHeight:  cfg.Clip.OutputHeight,

		MusicDir:      cfg.Music.Dir,
		MusicVolume:   cfg.Music.Volume,
		DuckFactor:    cfg.Music.DuckFactor,
		MaxDuckPoints: cfg.Music.MaxDuckPoints,

		FFmpegPath:  cfg.FFmpeg.FFmpegPath,
		FFprobePath: cfg.FFmpeg.FFprobePath,
		Preset:      cfg.FFmpeg.Preset,

		WhisperBin:   cfg.Whisper.BinaryPath,
		WhisperModel: cfg.Whisper.ModelPath,

		Log: log,
	}
}

func runUpload(cmd *cobra.Command, folder string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Logging.Level)

	if err := graphapi.ValidateBaseURL(cfg.Upload.GraphBaseURL, nil); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	credsDir := cfg.Upload.CredentialsDir
	token, _ := cmd.Flags().GetString("token")
	if token == "" {
		token, err = uploader.LoadCredential(filepath.Join(credsDir, "token.txt"), "access token", os.Stdin, os.Stdout)
		if err != nil {
			return err
		}
	}
	pageID, _ := cmd.Flags().GetString("page")
	if pageID == "" {
		pageID, err = uploader.LoadCredential(filepath.Join(credsDir, "page_id.txt"), "page ID", os.Stdin, os.Stdout)
		if err != nil {
			return err
		}
	}

	caption, _ := cmd.Flags().GetString("caption")
	fileCaption, hashtags := uploader.LoadCaption(credsDir)
	if caption == "" {
		caption = fileCaption
	}

	client := graphapi.New(token, pageID, cfg.Upload.GraphBaseURL, cfg.UploadTimeout())
	u := uploader.New(client, log, uploader.Options{
		BatchSize:  cfg.Upload.BatchSize,
		BatchDelay: cfg.BatchDelay(),
		LogDir:     ".",
		Caption:    caption,
		Hashtags:   hashtags,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	_, err = u.Run(ctx, folder)
	return err
}
