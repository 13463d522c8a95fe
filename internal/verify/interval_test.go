package verify

import (
	"math/rand"
	"testing"

	"github.com/heimdex/pagexport/internal/model"
)

func bruteForceMax(intervals []Interval) int64 {
	if len(intervals) == 0 {
		return 0
	}
	lo, hi := intervals[0].Start, intervals[0].End
	for _, iv := range intervals {
		lo = min(lo, iv.Start)
		hi = max(hi, iv.End)
	}
	var best int64
	for f := lo; f < hi; f++ {
		var sum int64
		for _, iv := range intervals {
			if iv.Start <= f && f < iv.End {
				sum += iv.Weight
			}
		}
		best = max(best, sum)
	}
	return best
}

func TestMaxCountInSameTimeRange(t *testing.T) {
	tests := []struct {
		name      string
		intervals []Interval
		wantMax   int64
		wantFrame model.Frame
	}{
		{name: "empty", wantMax: 0, wantFrame: 0},
		{
			name:      "single interval keeps its weight",
			intervals: []Interval{{Start: 4, End: 9, Weight: 7}},
			wantMax:   7,
			wantFrame: 4,
		},
		{
			name: "three image layers",
			intervals: []Interval{
				{Start: 0, End: 10, Weight: 1},
				{Start: 5, End: 15, Weight: 1},
				{Start: 12, End: 20, Weight: 1},
			},
			wantMax:   2,
			wantFrame: 5,
		},
		{
			name: "touching intervals do not overlap",
			intervals: []Interval{
				{Start: 0, End: 10, Weight: 1},
				{Start: 10, End: 20, Weight: 1},
			},
			wantMax:   1,
			wantFrame: 0,
		},
		{
			name: "weights add up",
			intervals: []Interval{
				{Start: 0, End: 30, Weight: 2},
				{Start: 10, End: 20, Weight: 3},
			},
			wantMax:   5,
			wantFrame: 10,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, frame := MaxCountInSameTimeRange(tc.intervals)
			if got != tc.wantMax || frame != tc.wantFrame {
				t.Fatalf("MaxCountInSameTimeRange() = (%d, %d), want (%d, %d)", got, frame, tc.wantMax, tc.wantFrame)
			}
		})
	}
}

func TestMaxCountInSameTimeRangeMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 500; round++ {
		n := rng.Intn(12)
		intervals := make([]Interval, n)
		for i := range intervals {
			start := model.Frame(rng.Intn(50))
			intervals[i] = Interval{
				Start:  start,
				End:    start + 1 + model.Frame(rng.Intn(20)),
				Weight: 1 + int64(rng.Intn(4)),
			}
		}
		got, frame := MaxCountInSameTimeRange(intervals)
		want := bruteForceMax(intervals)
		if got != want {
			t.Fatalf("round %d: MaxCountInSameTimeRange(%v) = %d, want %d", round, intervals, got, want)
		}
		if n == 0 {
			continue
		}
		var atFrame int64
		for _, iv := range intervals {
			if iv.Start <= frame && frame < iv.End {
				atFrame += iv.Weight
			}
		}
		if atFrame != got {
			t.Fatalf("round %d: weight at frame %d = %d, want %d", round, frame, atFrame, got)
		}
	}
}

func TestOverlapFrames(t *testing.T) {
	tests := []struct {
		name      string
		intervals []Interval
		want      string
	}{
		{name: "single", intervals: []Interval{{Start: 0, End: 5}}, want: ""},
		{
			name:      "range",
			intervals: []Interval{{Start: 0, End: 10}, {Start: 5, End: 15}},
			want:      "[5-9]",
		},
		{
			name:      "one frame and a range",
			intervals: []Interval{{Start: 0, End: 4}, {Start: 3, End: 8}, {Start: 10, End: 20}, {Start: 12, End: 14}},
			want:      "3, [12-13]",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := overlapFrames(tc.intervals); got != tc.want {
				t.Fatalf("overlapFrames() = %q, want %q", got, tc.want)
			}
		})
	}
}
