package whispercpp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/forPelevin/reelcut/internal/types"
	"github.com/forPelevin/reelcut/pkg/executor"
)

// Adapter wraps the whisper.cpp binary. Engine failures are returned as
// errors; the orchestrator owns the degrade-to-no-captions policy.
type Adapter struct {
	exec  executor.Executor
	bin   string
	model string
}

func New(exec executor.Executor, binPath, modelPath string) *Adapter {
	return &Adapter{exec: exec, bin: binPath, model: modelPath}
}

func (a *Adapter) Transcribe(ctx context.Context, wavPath, cacheDir string) (types.Transcript, error) {
	outPrefix := filepath.Join(cacheDir, "whisper")
	_, err := a.exec.Execute(ctx, a.bin,
		"-m", a.model,
		"-f", wavPath,
		"-oj",
		"-of", outPrefix,
	)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("whisper.cpp failed: %w", err)
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return types.Transcript{}, fmt.Errorf("read whisper output: %w", err)
	}

	var tr types.Transcript
	if err := json.Unmarshal(jb, &tr); err != nil {
		return types.Transcript{}, fmt.Errorf("parse whisper output: %w", err)
	}
	for i := range tr.Segments {
		tr.Segments[i].Text = strings.TrimSpace(tr.Segments[i].Text)
	}
	if tr.Text == "" {
		tr.Text = joinSegments(tr.Segments)
	}
	return tr, nil
}

func joinSegments(segments []types.Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s.Text != "" {
			parts = append(parts, s.Text)
		}
	}
	return strings.Join(parts, " ")
}
