package windows

import (
	"math"
	"testing"

	"github.com/forPelevin/reelcut/internal/types"
)

func TestPartition_CoversDurationExactly(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		duration float64
		window   float64
		wantN    int
		wantLast float64
	}{
		{"even split", 1200, 600, 2, 600},
		{"short tail", 1500, 600, 3, 300},
		{"single short window", 45, 600, 1, 45},
		{"tiny tail", 601, 600, 2, 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ws := Partition(tt.duration, tt.window)
			if len(ws) != tt.wantN {
				t.Fatalf("expected %d windows, got %d", tt.wantN, len(ws))
			}
			for i, w := range ws {
				if w.Index != i+1 {
					t.Fatalf("window %d has index %d", i, w.Index)
				}
				if i < len(ws)-1 && w.Duration != tt.window {
					t.Fatalf("window %d duration = %v, want %v", i, w.Duration, tt.window)
				}
				if i > 0 && ws[i-1].End != w.Start {
					t.Fatalf("gap or overlap between windows %d and %d", i-1, i)
				}
			}
			last := ws[len(ws)-1]
			if math.Abs(last.Duration-tt.wantLast) > 1e-9 {
				t.Fatalf("last window duration = %v, want %v", last.Duration, tt.wantLast)
			}
			if last.End != tt.duration {
				t.Fatalf("last window ends at %v, want %v", last.End, tt.duration)
			}
		})
	}
}

func TestPartition_InvalidInput(t *testing.T) {
	t.Parallel()
	if ws := Partition(0, 600); ws != nil {
		t.Fatalf("expected nil for zero duration, got %v", ws)
	}
	if ws := Partition(100, 0); ws != nil {
		t.Fatalf("expected nil for zero window, got %v", ws)
	}
}

func TestForWindow_OverlapAndClamp(t *testing.T) {
	t.Parallel()

	segs := []types.Segment{
		{Start: 0, End: 5, Text: "before"},
		{Start: 8, End: 12, Text: "straddles open"},
		{Start: 15, End: 18, Text: "inside"},
		{Start: 19, End: 25, Text: "straddles close"},
		{Start: 20, End: 30, Text: "after"},
	}
	w := types.ClipWindow{Index: 1, Start: 10, End: 20, Duration: 10}

	got := ForWindow(segs, w)
	if len(got) != 3 {
		t.Fatalf("expected 3 segments, got %d: %v", len(got), got)
	}
	if got[0].Start != 0 || got[0].End != 2 {
		t.Fatalf("straddling segment not clamped to window open: %v", got[0])
	}
	if got[1].Start != 5 || got[1].End != 8 {
		t.Fatalf("inner segment shifted incorrectly: %v", got[1])
	}
	if got[2].Start != 9 || got[2].End != 10 {
		t.Fatalf("straddling segment not clamped to window close: %v", got[2])
	}
}

func TestForWindow_BoundaryExclusive(t *testing.T) {
	t.Parallel()

	segs := []types.Segment{
		{Start: 5, End: 10, Text: "ends at open"},
		{Start: 20, End: 22, Text: "starts at close"},
	}
	w := types.ClipWindow{Index: 1, Start: 10, End: 20, Duration: 10}
	if got := ForWindow(segs, w); len(got) != 0 {
		t.Fatalf("boundary-touching segments must be excluded, got %v", got)
	}
}
