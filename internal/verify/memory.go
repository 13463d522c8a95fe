package verify

import (
	"fmt"

	"github.com/heimdex/pagexport/internal/alert"
	"github.com/heimdex/pagexport/internal/model"
	"github.com/heimdex/pagexport/internal/session"
)

const (
	bytesPerPixel          = 4
	maxGraphicsMemory      = 80 << 20
	maxGraphicsMemoryForUI = 30 << 20
)

// Layout is the graphics memory estimate of an export.
type Layout struct {
	// GraphicsMemory is the peak number of bytes held by textures at once.
	GraphicsMemory int64       `json:"graphics_memory"`
	PeakFrame      model.Frame `json:"peak_frame"`
	Resources      int         `json:"resources"`
}

// EstimateLayout estimates the peak graphics memory of the root composition.
// Every image and sequence composition holds one RGBA texture while any layer
// showing it is active.
func EstimateLayout(comps []*model.Composition) Layout {
	if len(comps) == 0 {
		return Layout{}
	}
	root := comps[len(comps)-1]

	type resource struct {
		bytes  int64
		ranges []model.TimeRange
	}
	resources := make(map[any]*resource)
	var order []any
	add := func(key any, w, h int32, start, end model.Frame) {
		if end <= start || w <= 0 || h <= 0 {
			return
		}
		r, ok := resources[key]
		if !ok {
			r = &resource{bytes: int64(w) * int64(h) * bytesPerPixel}
			resources[key] = r
			order = append(order, key)
		}
		r.ranges = unionRange(r.ranges, model.TimeRange{Start: start, End: end})
	}

	var visit func(comp *model.Composition, offset model.Frame, stack map[*model.Composition]bool)
	visit = func(comp *model.Composition, offset model.Frame, stack map[*model.Composition]bool) {
		if stack[comp] {
			return
		}
		stack[comp] = true
		defer delete(stack, comp)

		for _, layer := range comp.Layers {
			if !layer.IsActive {
				continue
			}
			start, end := layerRange(layer, offset)
			switch c := layer.Content.(type) {
			case *model.Image:
				if c.Bytes != nil {
					add(c.Bytes, c.Bytes.Width, c.Bytes.Height, start, end)
				}
			case *model.PreCompose:
				if c.Composition == nil {
					continue
				}
				if c.Composition.IsSequence() {
					add(c.Composition, c.Composition.Width, c.Composition.Height, start, end)
				} else {
					visit(c.Composition, offset+c.CompositionStartTime, stack)
				}
			}
		}
	}
	if root.IsSequence() {
		add(root, root.Width, root.Height, 0, max(root.Duration, 1))
	} else {
		visit(root, 0, make(map[*model.Composition]bool))
	}

	var intervals []Interval
	for _, key := range order {
		r := resources[key]
		for _, tr := range r.ranges {
			intervals = append(intervals, Interval{Start: tr.Start, End: tr.End, Weight: r.bytes})
		}
	}
	peak, frame := MaxCountInSameTimeRange(intervals)
	return Layout{GraphicsMemory: peak, PeakFrame: frame, Resources: len(order)}
}

// unionRange merges tr into ranges. Ranges here are half open.
func unionRange(ranges []model.TimeRange, tr model.TimeRange) []model.TimeRange {
	out := ranges[:0:0]
	for _, r := range ranges {
		if r.End < tr.Start || tr.End < r.Start {
			out = append(out, r)
			continue
		}
		tr.Start = min(tr.Start, r.Start)
		tr.End = max(tr.End, r.End)
	}
	return append(out, tr)
}

// GraphicsMemoryBudget is the peak graphics memory above which an export of
// the given scenes is warned about.
func GraphicsMemoryBudget(scenes session.Scenes) int64 {
	if scenes == session.ScenesUI {
		return maxGraphicsMemoryForUI
	}
	return maxGraphicsMemory
}

// CheckAfterExport runs the checks that need the finished tree and its
// memory estimate.
func CheckAfterExport(s *session.Session, comps []*model.Composition, layout Layout) {
	for _, comp := range comps {
		if isStaticVideoSequence(comp) {
			s.PushWarningAt(alert.StaticVideoSequence, comp.ID, 0, "")
		}
	}
	if len(comps) == 0 {
		return
	}
	root := comps[len(comps)-1]
	if layout.GraphicsMemory <= GraphicsMemoryBudget(s.Options.Scenes) {
		return
	}
	size := fmt.Sprintf("%dMB", layout.GraphicsMemory>>20)
	if s.Options.Scenes == session.ScenesUI {
		s.PushWarningAt(alert.GraphicsMemoryUI, root.ID, 0, size)
	} else {
		s.PushWarningAt(alert.GraphicsMemory, root.ID, 0, size)
	}
}
