package verify

import "github.com/heimdex/pagexport/internal/model"

type visitFunc func(comp *model.Composition, layer *model.Layer, offset model.Frame)

// walk calls fn for every layer reachable from comp, descending into vector
// precompositions. offset is the root frame of comp's frame zero.
func walk(comp *model.Composition, offset model.Frame, fn visitFunc) {
	walkComposition(comp, offset, fn, make(map[*model.Composition]bool))
}

func walkComposition(comp *model.Composition, offset model.Frame, fn visitFunc, stack map[*model.Composition]bool) {
	if comp == nil || comp.IsSequence() || stack[comp] {
		return
	}
	stack[comp] = true
	defer delete(stack, comp)

	for _, layer := range comp.Layers {
		fn(comp, layer, offset)
		if pre, ok := layer.PreComposition(); ok {
			walkComposition(pre.Composition, offset+pre.CompositionStartTime, fn, stack)
		}
	}
}

func layerRange(layer *model.Layer, offset model.Frame) (start, end model.Frame) {
	start = offset + layer.StartTime
	return start, start + layer.Duration
}

func hasVideoTrack(layer *model.Layer) bool {
	for _, m := range layer.Markers {
		if containsAny(m.Comment, model.VideoTrackMarker, `{"videoTrack" : 1}`) {
			return true
		}
	}
	return false
}
