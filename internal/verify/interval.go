package verify

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/heimdex/pagexport/internal/model"
)

// Interval is a half open frame range [Start, End) carrying a weight.
type Interval struct {
	Start  model.Frame
	End    model.Frame
	Weight int64
}

type edge struct {
	at     model.Frame
	weight int64
}

// MaxCountInSameTimeRange returns the largest total weight active at a single
// frame and the first frame where it is reached. An interval ending at frame f
// does not overlap one starting at f.
func MaxCountInSameTimeRange(intervals []Interval) (int64, model.Frame) {
	if len(intervals) == 0 {
		return 0, 0
	}
	starts := make([]edge, 0, len(intervals))
	ends := make([]edge, 0, len(intervals))
	for _, iv := range intervals {
		starts = append(starts, edge{at: iv.Start, weight: iv.Weight})
		ends = append(ends, edge{at: iv.End, weight: iv.Weight})
	}
	byTime := func(a, b edge) int { return cmp.Compare(a.at, b.at) }
	slices.SortStableFunc(starts, byTime)
	slices.SortStableFunc(ends, byTime)

	var count, maxCount int64
	var maxFrame model.Frame
	si, ei := 0, 0
	for si < len(starts) {
		if ei >= len(ends) || starts[si].at < ends[ei].at {
			count += starts[si].weight
			if count > maxCount {
				maxCount = count
				maxFrame = starts[si].at
			}
			si++
		} else {
			count -= ends[ei].weight
			ei++
		}
	}
	return maxCount, maxFrame
}

// overlapFrames lists the frame ranges covered by more than one interval,
// formatted as "3, [10-14]". End frames are inclusive in the output.
func overlapFrames(intervals []Interval) string {
	if len(intervals) < 2 {
		return ""
	}
	type event struct {
		at    model.Frame
		delta int
	}
	events := make([]event, 0, 2*len(intervals))
	for _, iv := range intervals {
		events = append(events, event{iv.Start, 1}, event{iv.End, -1})
	}
	slices.SortFunc(events, func(a, b event) int {
		if c := cmp.Compare(a.at, b.at); c != 0 {
			return c
		}
		return cmp.Compare(b.delta, a.delta)
	})

	var ranges []model.TimeRange
	count := 0
	var start model.Frame
	inOverlap := false
	for _, e := range events {
		count += e.delta
		switch {
		case count <= 1 && inOverlap:
			ranges = append(ranges, model.TimeRange{Start: start, End: e.at - 1})
			inOverlap = false
		case count > 1 && !inOverlap:
			start = e.at
			inOverlap = true
		}
	}

	parts := make([]string, 0, len(ranges))
	for _, r := range ranges {
		if r.Start == r.End {
			parts = append(parts, fmt.Sprintf("%d", r.Start))
		} else {
			parts = append(parts, fmt.Sprintf("[%d-%d]", r.Start, r.End))
		}
	}
	return strings.Join(parts, ", ")
}
