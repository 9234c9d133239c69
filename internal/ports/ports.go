package ports

import (
	"context"

	"github.com/forPelevin/reelcut/internal/types"
)

// VideoTool is the boundary to the external media processing engine. Every
// call is a synchronous invocation that may block for seconds to minutes.
type VideoTool interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
	ExtractAudioMono16k(ctx context.Context, inVideo, outWav string) error
	ExtractClip(ctx context.Context, inVideo string, start, duration float64, outPath string) error
	ReformatVertical(ctx context.Context, inVideo, outPath string) error
	BurnSubtitles(ctx context.Context, inVideo, srtPath, outPath string) error
	MixMusic(ctx context.Context, inVideo, musicPath, outPath string, plan []types.VolumeInstruction) error
}

// ASR is the boundary to the speech-to-text engine.
type ASR interface {
	Transcribe(ctx context.Context, wavPath, cacheDir string) (types.Transcript, error)
}

// TrackSelector picks a background music track for the run. An empty path
// with a nil error means no track is available.
type TrackSelector interface {
	Select(features types.AudioFeatures, musicDir string) (string, error)
}

// UploadClient is the boundary to the social platform's video endpoint.
type UploadClient interface {
	VerifyPage(ctx context.Context) (string, error)
	UploadVideo(ctx context.Context, videoPath, title, description string) (id, url string, err error)
}
