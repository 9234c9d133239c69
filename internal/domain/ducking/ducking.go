package ducking

import (
	"math"

	"github.com/forPelevin/reelcut/internal/types"
)

const (
	// Segments closer than this are treated as one continuous speech group.
	mergeGapSeconds = 1.0
	// Gaps between groups longer than this get an explicit restore span.
	restoreGapSeconds = 0.5
)

// Options carries the volume levels for a plan. MusicVolume is the base
// background level; speech groups are ducked to MusicVolume*DuckFactor.
type Options struct {
	MusicVolume float64
	DuckFactor  float64
	MaxPoints   int
}

type group struct {
	start, end float64
}

// Plan converts clip-local speech segments into an ordered, bounded
// sequence of volume instructions for mixing music under speech. Returns
// nil for empty input; the caller then applies flat volume instead.
func Plan(segments []types.Segment, clipDuration float64, opts Options) []types.VolumeInstruction {
	if len(segments) == 0 {
		return nil
	}
	if opts.MaxPoints < 1 {
		opts.MaxPoints = 5
	}

	groups := groupSegments(segments)
	groups = coarsen(groups, opts.MaxPoints)

	duckVol := opts.MusicVolume * opts.DuckFactor
	var out []types.VolumeInstruction

	if groups[0].start > 0 {
		out = append(out, types.VolumeInstruction{Constant: true, Volume: opts.MusicVolume})
	}
	for i, g := range groups {
		out = append(out, types.VolumeInstruction{Start: g.start, End: g.end, Volume: duckVol})
		if i < len(groups)-1 && groups[i+1].start-g.end > restoreGapSeconds {
			out = append(out, types.VolumeInstruction{Start: g.end, End: groups[i+1].start, Volume: opts.MusicVolume})
		}
	}
	if last := groups[len(groups)-1]; last.end < clipDuration {
		out = append(out, types.VolumeInstruction{Start: last.end, End: clipDuration, Volume: opts.MusicVolume})
	}
	return out
}

func groupSegments(segments []types.Segment) []group {
	var groups []group
	cur := group{start: segments[0].Start, end: segments[0].End}
	for _, s := range segments[1:] {
		if s.Start-cur.end < mergeGapSeconds {
			cur.end = s.End
			continue
		}
		groups = append(groups, cur)
		cur = group{start: s.Start, end: s.End}
	}
	return append(groups, cur)
}

// coarsen merges groups in fixed-size runs until at most maxPoints remain.
// Losing ducking fidelity is preferred over an unbounded filter expression.
func coarsen(groups []group, maxPoints int) []group {
	if len(groups) <= maxPoints {
		return groups
	}
	runSize := int(math.Ceil(float64(len(groups)) / float64(maxPoints)))
	if runSize < 1 {
		runSize = 1
	}
	var out []group
	for i := 0; i < len(groups); i += runSize {
		last := i + runSize - 1
		if last >= len(groups) {
			last = len(groups) - 1
		}
		out = append(out, group{start: groups[i].start, end: groups[last].end})
	}
	return out
}
