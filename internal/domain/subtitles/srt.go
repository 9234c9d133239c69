package subtitles

import (
	"fmt"
	"os"
	"strings"

	"github.com/forPelevin/reelcut/internal/types"
)

// RenderSRT builds an SRT document from segments, shifting every timestamp
// back by timeOffset seconds. Shifted times that fall before zero are
// clamped to zero. An empty segment list yields an empty, valid document.
func RenderSRT(segments []types.Segment, timeOffset float64) string {
	var b strings.Builder
	for i, s := range segments {
		start := s.Start - timeOffset
		if start < 0 {
			start = 0
		}
		end := s.End - timeOffset
		if end < 0 {
			end = 0
		}
		b.WriteString(fmt.Sprintf("%d\n", i+1))
		b.WriteString(formatTime(start))
		b.WriteString(" --> ")
		b.WriteString(formatTime(end))
		b.WriteString("\n")
		b.WriteString(s.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// WriteSRT renders the document and writes it to path. It fails only on
// I/O errors.
func WriteSRT(path string, segments []types.Segment, timeOffset float64) error {
	doc := RenderSRT(segments, timeOffset)
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write srt: %w", err)
	}
	return nil
}

// formatTime renders seconds as the SRT timestamp HH:MM:SS,mmm.
func formatTime(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	totalMS := int64(sec*1000 + 0.5)
	h := totalMS / 3_600_000
	totalMS -= h * 3_600_000
	m := totalMS / 60_000
	totalMS -= m * 60_000
	s := totalMS / 1000
	ms := totalMS % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
