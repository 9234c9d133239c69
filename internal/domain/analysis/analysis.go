package analysis

import (
	"strings"

	"github.com/forPelevin/reelcut/internal/types"
)

// Keyword lists are intentionally crude. The contract is determinism for a
// given transcript, not linguistic accuracy; the result only steers music
// selection.
var moodKeywords = []struct {
	mood  types.Mood
	words []string
}{
	{types.MoodHappy, []string{"happy", "joy", "laugh", "fun", "exciting", "amazing", "great", "love", "smile"}},
	{types.MoodSad, []string{"sad", "cry", "tragic", "depressing", "sorry", "apology", "unfortunate", "regret"}},
	{types.MoodEnergetic, []string{"energy", "fast", "quick", "rush", "exciting", "action", "dynamic", "power"}},
	{types.MoodCalm, []string{"calm", "peaceful", "quiet", "relax", "gentle", "soothing", "slow"}},
	{types.MoodDramatic, []string{"dramatic", "intense", "serious", "important", "significant", "critical"}},
}

// ClassifyMood counts how many keywords of each category occur in the
// transcript and returns the first category with the highest count.
// An all-zero result defaults to calm.
func ClassifyMood(transcript string) types.Mood {
	lower := strings.ToLower(transcript)

	best := types.MoodCalm
	bestCount := 0
	for _, cat := range moodKeywords {
		count := 0
		for _, w := range cat.words {
			if strings.Contains(lower, w) {
				count++
			}
		}
		if count > bestCount {
			best = cat.mood
			bestCount = count
		}
	}
	return best
}

// ClassifyTempo derives a words-per-minute figure from the segment span and
// maps it onto slow/medium/fast. Empty input and degenerate spans are medium,
// as are the exact 120/160 boundaries.
func ClassifyTempo(segments []types.Segment) types.Tempo {
	if len(segments) == 0 {
		return types.TempoMedium
	}

	span := segments[len(segments)-1].End - segments[0].Start
	if span <= 0 {
		return types.TempoMedium
	}

	totalWords := 0
	for _, s := range segments {
		totalWords += len(strings.Fields(s.Text))
	}

	wpm := float64(totalWords) / span * 60
	switch {
	case wpm < 120:
		return types.TempoSlow
	case wpm > 160:
		return types.TempoFast
	default:
		return types.TempoMedium
	}
}
