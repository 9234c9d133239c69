package uploader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/forPelevin/reelcut/internal/logger"
	"github.com/forPelevin/reelcut/internal/types"
)

type fakeClient struct {
	pageName  string
	verifyErr error
	failFiles map[string]bool

	uploads      []string
	descriptions []string
}

func (f *fakeClient) VerifyPage(_ context.Context) (string, error) {
	if f.verifyErr != nil {
		return "", f.verifyErr
	}
	return f.pageName, nil
}

func (f *fakeClient) UploadVideo(_ context.Context, videoPath, title, description string) (string, string, error) {
	name := filepath.Base(videoPath)
	f.uploads = append(f.uploads, name)
	f.descriptions = append(f.descriptions, description)
	if f.failFiles[name] {
		return "", "", errors.New("simulated upload failure")
	}
	id := "id-" + title
	return id, "https://www.facebook.com/page42/videos/" + id, nil
}

func writeClips(t *testing.T, dir string, n int) []string {
	t.Helper()
	names := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		name := fmt.Sprintf("reel_%02d.mp4", i)
		if err := os.WriteFile(filepath.Join(dir, name), []byte("video"), 0o644); err != nil {
			t.Fatal(err)
		}
		names = append(names, name)
	}
	return names
}

func testUploader(client *fakeClient, logDir string, opts Options) *Uploader {
	opts.LogDir = logDir
	opts.RunID = "testrun"
	opts.Now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return New(client, logger.New("error"), opts)
}

func TestRun_BatchSizesAndOrdering(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logDir := t.TempDir()
	writeClips(t, dir, 12)

	client := &fakeClient{pageName: "My Page"}
	u := testUploader(client, logDir, Options{BatchSize: 5, BatchDelay: time.Millisecond})

	sum, err := u.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Total != 12 || sum.Succeeded != 12 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if len(client.uploads) != 12 {
		t.Fatalf("expected 12 uploads, got %d", len(client.uploads))
	}
	// Filename-sorted order.
	for i := 1; i < len(client.uploads); i++ {
		if client.uploads[i-1] > client.uploads[i] {
			t.Fatalf("uploads out of order: %v", client.uploads)
		}
	}

	// Three batch logs sized 5, 5, 2.
	sizes := []int{5, 5, 2}
	for i, want := range sizes {
		records := readBatchLog(t, logDir, i+1)
		if len(records) != want {
			t.Fatalf("batch %d log has %d records, want %d", i+1, len(records), want)
		}
	}

	// Destructive on success: all local files gone.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected all uploaded files deleted, %d remain", len(entries))
	}
}

func TestRun_FailedFileIsKeptAndBatchContinues(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logDir := t.TempDir()
	names := writeClips(t, dir, 5)

	client := &fakeClient{pageName: "My Page", failFiles: map[string]bool{names[2]: true}}
	u := testUploader(client, logDir, Options{BatchSize: 5})

	sum, err := u.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Succeeded != 4 || sum.Total != 5 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	// Files after the failure were still attempted.
	if len(client.uploads) != 5 {
		t.Fatalf("expected all 5 files attempted, got %d", len(client.uploads))
	}
	// The failed file survives locally; the others are deleted.
	if _, err := os.Stat(filepath.Join(dir, names[2])); err != nil {
		t.Fatalf("failed file must not be deleted: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected only the failed file to remain, got %d files", len(entries))
	}

	records := readBatchLog(t, logDir, 1)
	var failures, successes int
	for _, r := range records {
		switch r.Status {
		case types.UploadFailed:
			failures++
			if r.Error == "" {
				t.Fatalf("failure record carries no error: %+v", r)
			}
		case types.UploadSuccess:
			successes++
			if r.VideoID == "" || r.URL == "" {
				t.Fatalf("success record missing id/url: %+v", r)
			}
		}
	}
	if failures != 1 || successes != 4 {
		t.Fatalf("batch log has %d failures and %d successes, want 1 and 4", failures, successes)
	}
}

func TestRun_DescriptionRebuiltPerFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logDir := t.TempDir()
	names := writeClips(t, dir, 3)

	client := &fakeClient{pageName: "My Page"}
	u := testUploader(client, logDir, Options{BatchSize: 5, Caption: "base caption", Hashtags: "#reels"})

	if _, err := u.Run(context.Background(), dir); err != nil {
		t.Fatalf("run: %v", err)
	}
	for i, d := range client.descriptions {
		want := names[i] + "base caption\n\n#reels"
		if d != want {
			t.Fatalf("description %d = %q, want %q (captions must not compound)", i, d, want)
		}
	}
}

func TestRun_VerifyFailureIsFatal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeClips(t, dir, 1)

	client := &fakeClient{verifyErr: errors.New("bad token")}
	u := testUploader(client, t.TempDir(), Options{})

	if _, err := u.Run(context.Background(), dir); err == nil {
		t.Fatalf("expected fatal error on page verification failure")
	}
	if len(client.uploads) != 0 {
		t.Fatalf("no uploads should be attempted after verification failure")
	}
}

func TestRun_EmptyFolderIsFatal(t *testing.T) {
	t.Parallel()

	client := &fakeClient{pageName: "My Page"}
	u := testUploader(client, t.TempDir(), Options{})

	_, err := u.Run(context.Background(), t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "no video files") {
		t.Fatalf("expected no-candidates error, got %v", err)
	}
}

func TestRun_CancelDuringDelayKeepsBatchLogs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logDir := t.TempDir()
	writeClips(t, dir, 6)

	client := &fakeClient{pageName: "My Page"}
	u := testUploader(client, logDir, Options{BatchSize: 5, BatchDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// Cancel once the first batch log exists, i.e. the delay is running.
		for i := 0; i < 1000; i++ {
			m, _ := filepath.Glob(filepath.Join(logDir, "fb_upload_log_*_batch01.json"))
			if len(m) == 1 {
				break
			}
			time.Sleep(5 * time.Millisecond)
		}
		cancel()
	}()

	_, err := u.Run(ctx, dir)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// Batch 1's log and the cumulative status log both survive the cancel.
	if got := readBatchLog(t, logDir, 1); len(got) != 5 {
		t.Fatalf("expected batch 1 log with 5 records, got %d", len(got))
	}
	statusFiles, _ := filepath.Glob(filepath.Join(logDir, "fb_upload_status_*.json"))
	if len(statusFiles) != 1 {
		t.Fatalf("expected one status log, got %v", statusFiles)
	}
}

func TestPartition(t *testing.T) {
	t.Parallel()

	files := make([]string, 12)
	for i := range files {
		files[i] = fmt.Sprintf("f%02d", i)
	}
	batches := partition(files, 5)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	for i, want := range []int{5, 5, 2} {
		if len(batches[i]) != want {
			t.Fatalf("batch %d size = %d, want %d", i, len(batches[i]), want)
		}
	}
}

func readBatchLog(t *testing.T, logDir string, batch int) []types.UploadRecord {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(logDir, fmt.Sprintf("fb_upload_log_*_batch%02d.json", batch)))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one batch %d log, got %v (err=%v)", batch, matches, err)
	}
	b, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	var records []types.UploadRecord
	if err := json.Unmarshal(b, &records); err != nil {
		t.Fatalf("batch log is not valid JSON: %v", err)
	}
	return records
}
