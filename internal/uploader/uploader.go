package uploader

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/forPelevin/reelcut/internal/logger"
	"github.com/forPelevin/reelcut/internal/ports"
	"github.com/forPelevin/reelcut/internal/types"
)

var videoExtensions = map[string]struct{}{
	".mp4": {}, ".mov": {}, ".avi": {}, ".mkv": {}, ".wmv": {},
}

type Options struct {
	BatchSize  int
	BatchDelay time.Duration
	// LogDir receives the per-batch and overall JSON audit logs.
	LogDir string
	// Caption is the base caption applied to every file; each file's
	// description is recomputed from it, never accumulated.
	Caption string
	// Hashtags, when present, are appended to the caption.
	Hashtags string
	// Now and RunID exist for tests; zero values use the clock and a fresh id.
	Now   func() time.Time
	RunID string
}

// Uploader walks a folder of finished clips and pushes them to the video
// endpoint in fixed-size batches. Uploads are destructive: a confirmed
// upload deletes the local file.
type Uploader struct {
	client ports.UploadClient
	log    logger.Logger
	opts   Options
}

func New(client ports.UploadClient, log logger.Logger, opts Options) *Uploader {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 5
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()[:8]
	}
	return &Uploader{client: client, log: log, opts: opts}
}

type statusEntry struct {
	Status  string `json:"status"`
	VideoID string `json:"video_id,omitempty"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Summary reports the run outcome.
type Summary struct {
	Total     int
	Succeeded int
}

// Run uploads every candidate video under folder. The batch delay is
// interruptible through ctx; already-written batch logs survive a cancel,
// and the cumulative status log is still persisted.
func (u *Uploader) Run(ctx context.Context, folder string) (Summary, error) {
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return Summary{}, fmt.Errorf("%s is not a valid directory", folder)
	}

	pageName, err := u.client.VerifyPage(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("verify page access: %w", err)
	}
	u.log.Info(ctx, "connected to page: %s", pageName)

	files, err := listVideos(folder)
	if err != nil {
		return Summary{}, err
	}
	if len(files) == 0 {
		return Summary{}, fmt.Errorf("no video files found in %s", folder)
	}
	u.log.Info(ctx, "found %d video file(s) to upload", len(files))

	baseCaption := u.opts.Caption
	if baseCaption == "" {
		baseCaption = "Check out this video!"
	}
	if u.opts.Hashtags != "" {
		baseCaption = baseCaption + "\n\n" + u.opts.Hashtags
	}

	startedAt := u.opts.Now()
	status := make(map[string]statusEntry)
	batches := partition(files, u.opts.BatchSize)

	for bi, batch := range batches {
		u.log.Info(ctx, "processing batch %d (%d videos)", bi+1, len(batch))
		records := u.uploadBatch(ctx, folder, batch, baseCaption, status)

		if err := u.writeBatchLog(startedAt, bi+1, records); err != nil {
			u.log.Error(ctx, "write batch log: %v", err)
		}

		if bi < len(batches)-1 {
			u.log.Info(ctx, "waiting %s before next batch", u.opts.BatchDelay)
			select {
			case <-time.After(u.opts.BatchDelay):
			case <-ctx.Done():
				u.log.Warn(ctx, "upload run cancelled during batch delay")
				if err := u.writeStatusLog(startedAt, status); err != nil {
					u.log.Error(ctx, "write status log: %v", err)
				}
				return summarize(status), ctx.Err()
			}
		}
	}

	if err := u.writeStatusLog(startedAt, status); err != nil {
		u.log.Error(ctx, "write status log: %v", err)
	}

	sum := summarize(status)
	u.log.Info(ctx, "upload summary: %d/%d videos uploaded successfully", sum.Succeeded, sum.Total)
	return sum, nil
}

// uploadBatch uploads one batch sequentially and deletes the files that
// were confirmed uploaded. A per-file failure never stops the batch.
func (u *Uploader) uploadBatch(
	ctx context.Context,
	folder string,
	batch []string,
	baseCaption string,
	status map[string]statusEntry,
) []types.UploadRecord {
	records := make([]types.UploadRecord, 0, len(batch))
	var toDelete []string

	for i, name := range batch {
		path := filepath.Join(folder, name)
		u.log.Info(ctx, "[%d/%d in batch] uploading %s", i+1, len(batch), name)

		if _, err := os.Stat(path); err != nil {
			u.log.Error(ctx, "file not found: %s", path)
			records = append(records, types.UploadRecord{File: name, Status: types.UploadFailed, Error: "File not found"})
			status[path] = statusEntry{Status: types.UploadFailed, Error: "File not found"}
			continue
		}

		// Description is rebuilt per file from the base caption.
		description := name + baseCaption
		title := strings.TrimSuffix(name, filepath.Ext(name))

		id, viewURL, err := u.client.UploadVideo(ctx, path, title, description)
		if err != nil {
			u.log.Error(ctx, "upload failed for %s: %v", name, err)
			records = append(records, types.UploadRecord{File: name, Status: types.UploadFailed, Error: err.Error()})
			status[path] = statusEntry{Status: types.UploadFailed, Error: err.Error()}
			continue
		}

		u.log.Info(ctx, "upload successful: id=%s url=%s", id, viewURL)
		records = append(records, types.UploadRecord{File: name, Status: types.UploadSuccess, VideoID: id, URL: viewURL})
		status[path] = statusEntry{Status: types.UploadSuccess, VideoID: id, URL: viewURL}
		toDelete = append(toDelete, path)
	}

	for _, path := range toDelete {
		if err := os.Remove(path); err != nil {
			u.log.Error(ctx, "delete uploaded file %s: %v", path, err)
			entry := status[path]
			entry.Error = fmt.Sprintf("Failed to delete: %v", err)
			status[path] = entry
			continue
		}
		u.log.Info(ctx, "deleted file: %s", path)
	}

	return records
}

func (u *Uploader) writeBatchLog(startedAt time.Time, batchNum int, records []types.UploadRecord) error {
	name := fmt.Sprintf("fb_upload_log_%s_%s_batch%02d.json",
		startedAt.Format("20060102_150405"), u.opts.RunID, batchNum)
	return writeJSON(filepath.Join(u.opts.LogDir, name), records)
}

func (u *Uploader) writeStatusLog(startedAt time.Time, status map[string]statusEntry) error {
	name := fmt.Sprintf("fb_upload_status_%s_%s.json",
		startedAt.Format("20060102_150405"), u.opts.RunID)
	return writeJSON(filepath.Join(u.opts.LogDir, name), status)
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func listVideos(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("list folder: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if _, ok := videoExtensions[ext]; ok {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

func partition(files []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(files); start += size {
		end := start + size
		if end > len(files) {
			end = len(files)
		}
		out = append(out, files[start:end])
	}
	return out
}

func summarize(status map[string]statusEntry) Summary {
	sum := Summary{Total: len(status)}
	for _, s := range status {
		if s.Status == types.UploadSuccess {
			sum.Succeeded++
		}
	}
	return sum
}
