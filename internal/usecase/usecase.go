package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/forPelevin/reelcut/internal/domain/analysis"
	"github.com/forPelevin/reelcut/internal/domain/ducking"
	"github.com/forPelevin/reelcut/internal/domain/subtitles"
	"github.com/forPelevin/reelcut/internal/domain/windows"
	"github.com/forPelevin/reelcut/internal/logger"
	"github.com/forPelevin/reelcut/internal/ports"
	"github.com/forPelevin/reelcut/internal/types"
)

type Deps struct {
	Video ports.VideoTool
	ASR   ports.ASR
	Music ports.TrackSelector
	Log   logger.Logger
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase { return Usecase{d: d} }

type Input struct {
	InputVideo    string
	OutDir        string
	TempDir       string
	CacheDir      string
	WindowSeconds float64
	MusicDir      string
	MusicVolume   float64
	DuckFactor    float64
	MaxDuckPoints int
}

type Result struct {
	Report types.ClipReport
}

// stageResult is the explicit hand-off between stages: the current
// carry-forward artifact, whether this window owns it (and must delete it
// when superseded), and whether an optional stage degraded.
type stageResult struct {
	Path     string
	Owned    bool
	Degraded bool
	Reason   string
}

// Run splits the source into fixed-size windows and produces one vertical
// reel per window. Only a failed duration probe (or missing input) aborts
// the run; every per-window failure is logged and the loop advances.
func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	log := u.d.Log

	if _, err := os.Stat(in.InputVideo); err != nil {
		return Result{}, fmt.Errorf("stat input: %w", err)
	}

	duration, err := u.d.Video.ProbeDuration(ctx, in.InputVideo)
	if err != nil {
		return Result{}, fmt.Errorf("probe source duration: %w", err)
	}
	log.Info(ctx, "source duration: %.2fs", duration)

	tr := u.transcribe(ctx, in)
	if len(tr.Segments) == 0 {
		log.Warn(ctx, "no transcription available, continuing without captions")
	}

	musicTrack := u.selectMusic(ctx, tr, in)

	wins := windows.Partition(duration, in.WindowSeconds)
	report := types.ClipReport{
		Input:   in.InputVideo,
		OutDir:  in.OutDir,
		Windows: len(wins),
		Music:   musicTrack,
	}

	for _, w := range wins {
		log.Info(ctx, "processing clip %d (%.0f-%.0f seconds)", w.Index, w.Start, w.End)
		finalPath, degradedReasons, err := u.processWindow(ctx, in, w, tr.Segments, musicTrack)
		if err != nil {
			log.Error(ctx, "clip %d failed: %v", w.Index, err)
			continue
		}
		report.Processed = append(report.Processed, finalPath)
		for _, r := range degradedReasons {
			report.Degraded = append(report.Degraded, fmt.Sprintf("clip %d: %s", w.Index, r))
			log.Warn(ctx, "clip %d degraded: %s", w.Index, r)
		}
		log.Info(ctx, "created %s", finalPath)
	}

	log.Info(ctx, "processed %d/%d windows", len(report.Processed), len(wins))
	if len(report.Processed) == 0 {
		return Result{Report: report}, errors.New("no clips were successfully processed")
	}
	return Result{Report: report}, nil
}

// transcribe extracts the source audio and runs the speech-to-text engine.
// Any failure degrades to an empty transcript; captions and music selection
// are optional features of the output, not preconditions.
func (u Usecase) transcribe(ctx context.Context, in Input) types.Transcript {
	wav := filepath.Join(in.CacheDir, "audio.wav")
	if err := u.d.Video.ExtractAudioMono16k(ctx, in.InputVideo, wav); err != nil {
		u.d.Log.Warn(ctx, "audio extraction failed, skipping transcription: %v", err)
		return types.Transcript{}
	}
	defer safeRemove(wav)

	tr, err := u.d.ASR.Transcribe(ctx, wav, in.CacheDir)
	if err != nil {
		u.d.Log.Warn(ctx, "transcription failed, continuing without captions: %v", err)
		return types.Transcript{}
	}
	u.d.Log.Info(ctx, "transcription complete: %d segments", len(tr.Segments))
	return tr
}

func (u Usecase) selectMusic(ctx context.Context, tr types.Transcript, in Input) string {
	if tr.Text == "" {
		return ""
	}
	features := types.AudioFeatures{
		Mood:  analysis.ClassifyMood(tr.Text),
		Tempo: analysis.ClassifyTempo(tr.Segments),
	}
	u.d.Log.Info(ctx, "content analysis: mood=%s tempo=%s", features.Mood, features.Tempo)

	track, err := u.d.Music.Select(features, in.MusicDir)
	if err != nil {
		u.d.Log.Warn(ctx, "music selection failed, continuing without music: %v", err)
		return ""
	}
	if track == "" {
		u.d.Log.Info(ctx, "no music tracks available in %s", in.MusicDir)
		return ""
	}
	u.d.Log.Info(ctx, "selected music track: %s", track)
	return track
}

// processWindow runs one window through extract, reformat, subtitle, music,
// finalize. Every intermediate artifact is deleted on every exit path; temp
// names are derived from the window index, so stale files from a previous
// aborted run are removed up front rather than assumed absent.
func (u Usecase) processWindow(
	ctx context.Context,
	in Input,
	w types.ClipWindow,
	segments []types.Segment,
	musicTrack string,
) (string, []string, error) {
	clipPath := filepath.Join(in.TempDir, fmt.Sprintf("clip_%d.mp4", w.Index))
	reelsPath := filepath.Join(in.TempDir, fmt.Sprintf("reels_%d.mp4", w.Index))
	subtitledPath := filepath.Join(in.TempDir, fmt.Sprintf("subtitled_%d.mp4", w.Index))
	srtPath := filepath.Join(in.TempDir, fmt.Sprintf("subtitles_%d.srt", w.Index))
	finalPath := filepath.Join(in.OutDir, fmt.Sprintf("reel_%02d.mp4", w.Index))

	tempPaths := []string{clipPath, reelsPath, subtitledPath, srtPath}
	for _, p := range tempPaths {
		safeRemove(p)
	}
	defer func() {
		for _, p := range tempPaths {
			safeRemove(p)
		}
	}()

	// Extract
	if err := u.d.Video.ExtractClip(ctx, in.InputVideo, w.Start, w.Duration, clipPath); err != nil {
		return "", nil, fmt.Errorf("extract: %w", err)
	}

	// Reformat
	if err := u.d.Video.ReformatVertical(ctx, clipPath, reelsPath); err != nil {
		return "", nil, fmt.Errorf("reformat: %w", err)
	}
	safeRemove(clipPath)

	var degraded []string

	// Subtitle decision. A burn failure never aborts the window; the
	// reformatted file carries forward instead.
	overlapping := overlappingSegments(segments, w)
	carry := stageResult{Path: reelsPath, Owned: true}
	if len(overlapping) > 0 {
		sub, err := u.burnSubtitles(ctx, carry, overlapping, w, srtPath, subtitledPath)
		if err != nil {
			degraded = append(degraded, fmt.Sprintf("subtitles skipped: %v", err))
		} else {
			if sub.Path != carry.Path && carry.Owned {
				safeRemove(carry.Path)
			}
			carry = sub
		}
		safeRemove(srtPath)
	}

	// Music decision. A mix failure salvages the carry-forward artifact.
	safeRemove(finalPath)
	if musicTrack != "" {
		winSegs := windows.ForWindow(segments, w)
		plan := ducking.Plan(winSegs, w.Duration, ducking.Options{
			MusicVolume: in.MusicVolume,
			DuckFactor:  in.DuckFactor,
			MaxPoints:   in.MaxDuckPoints,
		})
		if plan == nil {
			plan = []types.VolumeInstruction{{Constant: true, Volume: in.MusicVolume}}
		}
		if err := u.d.Video.MixMusic(ctx, carry.Path, musicTrack, finalPath, plan); err != nil {
			degraded = append(degraded, fmt.Sprintf("music skipped: %v", err))
			if err := safeRename(carry.Path, finalPath); err != nil {
				return "", degraded, fmt.Errorf("salvage after mix failure: %w", err)
			}
		} else {
			safeRemove(carry.Path)
		}
	} else {
		if err := safeRename(carry.Path, finalPath); err != nil {
			return "", degraded, fmt.Errorf("finalize: %w", err)
		}
	}

	// Finalize
	if _, err := os.Stat(finalPath); err != nil {
		return "", degraded, fmt.Errorf("final output missing: %w", err)
	}
	return finalPath, degraded, nil
}

// burnSubtitles writes the SRT document for this window and burns it into
// the carry-forward artifact. The SRT takes the unshifted overlapping
// segments with the window start as offset.
func (u Usecase) burnSubtitles(
	ctx context.Context,
	carry stageResult,
	overlapping []types.Segment,
	w types.ClipWindow,
	srtPath, subtitledPath string,
) (stageResult, error) {
	if err := subtitles.WriteSRT(srtPath, overlapping, w.Start); err != nil {
		return carry, err
	}
	if err := u.d.Video.BurnSubtitles(ctx, carry.Path, srtPath, subtitledPath); err != nil {
		return carry, err
	}
	return stageResult{Path: subtitledPath, Owned: true}, nil
}

func overlappingSegments(segments []types.Segment, w types.ClipWindow) []types.Segment {
	var out []types.Segment
	for _, s := range segments {
		if s.End > w.Start && s.Start < w.End {
			out = append(out, s)
		}
	}
	return out
}

func safeRemove(path string) {
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
}

func safeRename(src, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		if err := os.Remove(dst); err != nil {
			return err
		}
	}
	return os.Rename(src, dst)
}
