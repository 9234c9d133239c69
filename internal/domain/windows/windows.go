package windows

import (
	"math"

	"github.com/forPelevin/reelcut/internal/types"
)

// Partition slices [0, duration) into consecutive windows of the given size.
// The final window is whatever remains, so all windows cover the source with
// no gaps or overlaps.
func Partition(duration, window float64) []types.ClipWindow {
	if duration <= 0 || window <= 0 {
		return nil
	}
	n := int(math.Ceil(duration / window))
	out := make([]types.ClipWindow, 0, n)
	for i := 0; i < n; i++ {
		start := float64(i) * window
		end := start + window
		if end > duration {
			end = duration
		}
		out = append(out, types.ClipWindow{
			Index:    i + 1,
			Start:    start,
			End:      end,
			Duration: end - start,
		})
	}
	return out
}

// ForWindow returns the segments overlapping w, time-shifted to clip-local
// coordinates. A segment overlaps when it ends after the window opens and
// starts before it closes; shifted bounds are clamped to [0, w.Duration].
func ForWindow(segments []types.Segment, w types.ClipWindow) []types.Segment {
	var out []types.Segment
	for _, s := range segments {
		if s.End <= w.Start || s.Start >= w.End {
			continue
		}
		start := s.Start - w.Start
		if start < 0 {
			start = 0
		}
		end := s.End - w.Start
		if end > w.Duration {
			end = w.Duration
		}
		out = append(out, types.Segment{Start: start, End: end, Text: s.Text})
	}
	return out
}
