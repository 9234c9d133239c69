package ffmpeg

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/forPelevin/reelcut/internal/types"
	"github.com/forPelevin/reelcut/pkg/executor"
)

// Adapter drives the ffmpeg/ffprobe binaries through the argv-vector
// executor. Each method is one synchronous engine invocation; failures carry
// the captured stderr text.
type Adapter struct {
	exec    executor.Executor
	ffmpeg  string
	ffprobe string
	width   int
	height  int
	preset  string
}

func New(exec executor.Executor, ffmpegPath, ffprobePath string, width, height int, preset string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if preset == "" {
		preset = "fast"
	}
	return &Adapter{
		exec:    exec,
		ffmpeg:  ffmpegPath,
		ffprobe: ffprobePath,
		width:   width,
		height:  height,
		preset:  preset,
	}
}

func (a *Adapter) ProbeDuration(ctx context.Context, path string) (float64, error) {
	out, err := a.exec.Execute(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w", err)
	}
	s := strings.TrimSpace(out)
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	if sec <= 0 {
		return 0, fmt.Errorf("non-positive duration %v for %s", sec, path)
	}
	return sec, nil
}

func (a *Adapter) ExtractAudioMono16k(ctx context.Context, inVideo, outWav string) error {
	_, err := a.exec.Execute(ctx, a.ffmpeg,
		"-y",
		"-i", inVideo,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outWav,
	)
	if err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w", err)
	}
	return nil
}

// ExtractClip re-encodes the window instead of stream-copying so the result
// is a decodable standalone segment regardless of keyframe placement.
func (a *Adapter) ExtractClip(ctx context.Context, inVideo string, start, duration float64, outPath string) error {
	_, err := a.exec.Execute(ctx, a.ffmpeg,
		"-y",
		"-ss", fmtSeconds(start),
		"-i", inVideo,
		"-t", fmtSeconds(duration),
		"-c:v", "libx264",
		"-preset", a.preset,
		"-c:a", "aac",
		outPath,
	)
	if err != nil {
		return fmt.Errorf("ffmpeg extract clip: %w", err)
	}
	return nil
}

func (a *Adapter) ReformatVertical(ctx context.Context, inVideo, outPath string) error {
	vf := fmt.Sprintf(
		"scale=w=%d:h=%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black",
		a.width, a.height, a.width, a.height,
	)
	_, err := a.exec.Execute(ctx, a.ffmpeg,
		"-y",
		"-i", inVideo,
		"-vf", vf,
		"-c:v", "libx264",
		"-preset", a.preset,
		"-c:a", "copy",
		outPath,
	)
	if err != nil {
		return fmt.Errorf("ffmpeg reformat vertical: %w", err)
	}
	return nil
}

// BurnSubtitles renders the subtitle track into the video stream. The
// subtitles filter parses its argument as filter syntax, so the path goes
// through escapeFilterPath; that is the only escaping this adapter needs,
// because nothing here passes through a shell.
func (a *Adapter) BurnSubtitles(ctx context.Context, inVideo, srtPath, outPath string) error {
	_, err := a.exec.Execute(ctx, a.ffmpeg,
		"-y",
		"-i", inVideo,
		"-vf", "subtitles="+escapeFilterPath(srtPath),
		"-c:v", "libx264",
		"-preset", a.preset,
		"-c:a", "copy",
		outPath,
	)
	if err != nil {
		return fmt.Errorf("ffmpeg burn subtitles: %w", err)
	}
	return nil
}

// MixMusic lays musicPath under inVideo's audio. The plan's volume
// instructions become a filter chain applied to the music track; the track
// is looped when shorter than the clip. The music is pre-rendered to a
// temporary file and then mixed, which keeps both invocations short.
func (a *Adapter) MixMusic(ctx context.Context, inVideo, musicPath, outPath string, plan []types.VolumeInstruction) error {
	clipDur, err := a.ProbeDuration(ctx, inVideo)
	if err != nil {
		return fmt.Errorf("probe clip for mix: %w", err)
	}
	// A music track without readable duration is still mixable, just not
	// loopable.
	musicDur, err := a.ProbeDuration(ctx, musicPath)
	if err != nil {
		musicDur = 0
	}

	var filters []string
	if musicDur > 0 && musicDur < clipDur {
		loops := int(math.Ceil(clipDur / musicDur))
		filters = append(filters, fmt.Sprintf("aloop=loop=%d:size=0", loops-1))
	}
	filters = append(filters, VolumeFilterChain(plan)...)

	tmpMusic := outPath + ".music.mp3"
	defer os.Remove(tmpMusic)

	_, err = a.exec.Execute(ctx, a.ffmpeg,
		"-y",
		"-i", musicPath,
		"-af", strings.Join(filters, ","),
		tmpMusic,
	)
	if err != nil {
		return fmt.Errorf("ffmpeg prepare music: %w", err)
	}

	_, err = a.exec.Execute(ctx, a.ffmpeg,
		"-y",
		"-i", inVideo,
		"-i", tmpMusic,
		"-filter_complex", "[0:a][1:a]amix=duration=longest:normalize=0",
		"-c:v", "copy",
		"-shortest",
		outPath,
	)
	if err != nil {
		return fmt.Errorf("ffmpeg mix music: %w", err)
	}
	return nil
}

// VolumeFilterChain renders a ducking plan as ffmpeg volume filters.
func VolumeFilterChain(plan []types.VolumeInstruction) []string {
	out := make([]string, 0, len(plan))
	for _, in := range plan {
		if in.Constant {
			out = append(out, fmt.Sprintf("volume=%s", fmtVolume(in.Volume)))
			continue
		}
		out = append(out, fmt.Sprintf(
			"volume=enable='between(t,%s,%s)':volume=%s",
			fmtSeconds(in.Start), fmtSeconds(in.End), fmtVolume(in.Volume),
		))
	}
	return out
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

func fmtVolume(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "\\\\")
	p = strings.ReplaceAll(p, ":", "\\:")
	return p
}
