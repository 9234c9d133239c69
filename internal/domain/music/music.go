package music

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/forPelevin/reelcut/internal/types"
)

// Selector picks a background track from a local pool. Selection is an
// unweighted random choice today; the features argument is part of the
// contract so a metadata-aware strategy can slot in later.
type Selector struct {
	rng *rand.Rand
}

// New returns a Selector driven by the given random source. A nil rng gets
// a time-seeded one; tests pass a fixed seed.
func New(rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{rng: rng}
}

// Select lists *.mp3 and *.wav files under musicDir and picks one at random.
// An absent directory is created and yields no track; an empty pool yields
// no track. Neither is an error.
func (s *Selector) Select(_ types.AudioFeatures, musicDir string) (string, error) {
	if _, err := os.Stat(musicDir); os.IsNotExist(err) {
		if err := os.MkdirAll(musicDir, 0o755); err != nil {
			return "", fmt.Errorf("create music dir: %w", err)
		}
		return "", nil
	}

	candidates, err := listTracks(musicDir)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", nil
	}
	return candidates[s.rng.Intn(len(candidates))], nil
}

func listTracks(dir string) ([]string, error) {
	var out []string
	for _, pattern := range []string{"*.mp3", "*.wav"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("list music tracks: %w", err)
		}
		out = append(out, matches...)
	}
	return out, nil
}
