package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/forPelevin/reelcut/internal/domain/music"
	"github.com/forPelevin/reelcut/internal/logger"
	"github.com/forPelevin/reelcut/internal/ports"
	"github.com/forPelevin/reelcut/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/reelcut/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/reelcut/internal/usecase"
	"github.com/forPelevin/reelcut/pkg/executor"
)

type Config struct {
	InputVideo    string
	OutDir        string
	WindowSeconds float64
	OutputWidth   int
	OutputHeight  int

	MusicDir      string
	MusicVolume   float64
	DuckFactor    float64
	MaxDuckPoints int

	// CacheDir is the base directory for local artifacts (audio, transcripts,
	// per-window temp files). If empty, defaults to ".cache".
	CacheDir string

	FFmpegPath  string
	FFprobePath string
	Preset      string

	WhisperBin   string
	WhisperModel string

	Log logger.Logger

	// Rand seeds music selection; tests inject a fixed source.
	Rand *rand.Rand
}

func (c Config) Validate() error {
	if c.InputVideo == "" {
		return errors.New("input is empty")
	}
	if _, err := os.Stat(c.InputVideo); err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	if c.WindowSeconds <= 0 {
		return fmt.Errorf("window seconds must be > 0")
	}
	if c.OutputWidth <= 0 || c.OutputHeight <= 0 {
		return fmt.Errorf("output dimensions must be > 0")
	}
	if c.MusicVolume < 0 || c.MusicVolume > 1 {
		return fmt.Errorf("music volume must be within [0, 1]")
	}
	if c.DuckFactor < 0 || c.DuckFactor > 1 {
		return fmt.Errorf("duck factor must be within [0, 1]")
	}
	if c.WhisperModel == "" {
		return fmt.Errorf("whisper model path is required")
	}
	return nil
}

func Run(ctx context.Context, cfg Config) error {
	log := cfg.Log
	if log == nil {
		log = logger.New("info")
	}

	// adapters
	exec := executor.New()
	v := ffmpeg.New(exec, cfg.FFmpegPath, cfg.FFprobePath, cfg.OutputWidth, cfg.OutputHeight, cfg.Preset)
	asr := whispercpp.New(exec, cfg.WhisperBin, cfg.WhisperModel)
	selector := music.New(cfg.Rand)

	deps := usecase.Deps{
		Video: v,
		ASR:   asr,
		Music: selector,
		Log:   log,
	}
	uc := usecase.New(deps)

	// Temp and cache files live under a directory keyed by the input path,
	// so a rerun after a crash lands on the same deterministic temp names
	// and the pre-window cleanup can remove leftovers.
	jobID := hash(cfg.InputVideo)
	baseCache := cfg.CacheDir
	if baseCache == "" {
		baseCache = ".cache"
	}
	cacheDir := filepath.Join(baseCache, "runs", jobID)
	log.Info(ctx, "preparing workspace")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return err
	}
	log.Debug(ctx, "cache: %s", cacheDir)

	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "output"
	}
	runOutDir := buildRunOutDir(outDir, cfg.InputVideo, time.Now().UTC())
	if err := os.MkdirAll(runOutDir, 0o755); err != nil {
		return err
	}
	log.Info(ctx, "output run dir: %s", runOutDir)

	res, err := uc.Run(ctx, usecase.Input{
		InputVideo:    cfg.InputVideo,
		OutDir:        runOutDir,
		TempDir:       cacheDir,
		CacheDir:      cacheDir,
		WindowSeconds: cfg.WindowSeconds,
		MusicDir:      cfg.MusicDir,
		MusicVolume:   cfg.MusicVolume,
		DuckFactor:    cfg.DuckFactor,
		MaxDuckPoints: cfg.MaxDuckPoints,
	})
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(res.Report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	reportPath := filepath.Join(runOutDir, "report.json")
	if err := os.WriteFile(reportPath, b, 0o644); err != nil {
		return err
	}
	log.Info(ctx, "report written (%d clips): %s", len(res.Report.Processed), reportPath)
	return nil
}

func buildRunOutDir(outRoot, inputVideo string, now time.Time) string {
	name := strings.TrimSuffix(filepath.Base(inputVideo), filepath.Ext(inputVideo))
	name = normalizePathSegment(name)
	if name == "" {
		name = "input"
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", inputVideo, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.ASR = (*whispercpp.Adapter)(nil)
var _ ports.TrackSelector = (*music.Selector)(nil)
