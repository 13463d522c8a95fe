// Package verify lints an exported composition tree. Every finding is a
// warning on the session; nothing here stops an export.
package verify

import (
	"slices"
	"strconv"
	"strings"

	"github.com/heimdex/pagexport/internal/alert"
	"github.com/heimdex/pagexport/internal/model"
	"github.com/heimdex/pagexport/internal/session"
)

const (
	maxImageNum              = 30
	maxBmpCompositionNum     = 3
	maxEffectCountAtOnce     = 3
	maxVideoTrackNum         = 2
	maxLayerNum              = 60
	maxPlaySpeed             = 8.0
	maxVideoCompositionRefs  = 1
	minRemapKeyframeDuration = 2
)

// CheckBeforeExport runs the lint battery over comps, ordered children first
// with the root last.
func CheckBeforeExport(s *session.Session, comps []*model.Composition) {
	if len(comps) == 0 {
		return
	}
	root := comps[len(comps)-1]

	checkImageNum(s, root, comps)
	checkEffectPeak(s, root)
	checkVideoTrackPeak(s, root)
	checkContinuousSequence(s, root, make(map[*model.Composition]bool))
	checkSequenceSuffix(s, root, make(map[*model.Composition]bool))
	checkLayerNum(s, root, comps)
	checkImageFillRules(s, root)
	checkVideoInUIScenes(s, comps)
	checkVideoCompositionOverlap(s, root, comps)
	checkDuplicateSequences(s, comps)
	for _, comp := range comps {
		for _, layer := range comp.Layers {
			checkLayer(s, comp, layer)
		}
	}
}

func isStaticVideoSequence(comp *model.Composition) bool {
	if comp.Kind != model.VideoComposition || len(comp.StaticTimeRanges) != 1 {
		return false
	}
	r := comp.StaticTimeRanges[0]
	return r.End-r.Start+1 == comp.Duration
}

func checkImageNum(s *session.Session, root *model.Composition, comps []*model.Composition) {
	staticSequences, sequences := 0, 0
	for _, comp := range comps {
		if !comp.IsSequence() {
			continue
		}
		if isStaticVideoSequence(comp) {
			staticSequences++
		} else {
			sequences++
		}
	}

	if n := len(s.Images) + staticSequences; n > maxImageNum {
		s.PushWarningAt(alert.ImageNum, root.ID, 0, strconv.Itoa(n))
		return
	}
	if sequences > maxBmpCompositionNum {
		s.PushWarningAt(alert.BmpCompositionNum, root.ID, 0, strconv.Itoa(sequences))
	}
}

func checkEffectPeak(s *session.Session, root *model.Composition) {
	var intervals []Interval
	walk(root, 0, func(_ *model.Composition, layer *model.Layer, offset model.Frame) {
		n := len(layer.Effects) + len(layer.LayerStyles)
		if n == 0 {
			return
		}
		start, end := layerRange(layer, offset)
		intervals = append(intervals, Interval{Start: start, End: end, Weight: int64(n)})
	})
	if peak, frame := MaxCountInSameTimeRange(intervals); peak > maxEffectCountAtOnce {
		s.PushWarningAt(alert.EffectAndStylePickNum, root.ID, 0, strconv.FormatInt(frame, 10))
	}
}

func checkVideoTrackPeak(s *session.Session, root *model.Composition) {
	var intervals []Interval
	visit := func(fn func(layer *model.Layer, start, end model.Frame)) {
		walk(root, 0, func(_ *model.Composition, layer *model.Layer, offset model.Frame) {
			if _, ok := layer.Content.(*model.Image); !ok || !hasVideoTrack(layer) {
				return
			}
			start, end := layerRange(layer, offset)
			fn(layer, start, end)
		})
	}
	visit(func(_ *model.Layer, start, end model.Frame) {
		intervals = append(intervals, Interval{Start: start, End: end, Weight: 1})
	})

	peak, frame := MaxCountInSameTimeRange(intervals)
	if peak <= maxVideoTrackNum {
		return
	}
	var names []string
	visit(func(layer *model.Layer, start, end model.Frame) {
		if start <= frame && frame < end {
			names = append(names, strconv.Quote(layer.Name))
		}
	})
	s.Logger().Debug("video track peak", "frame", frame, "layers", strings.Join(names, ", "))
	s.PushWarningAt(alert.VideoTrackPeakNum, root.ID, 0, strconv.FormatInt(frame, 10))
}

// checkContinuousSequence warns when two adjacent precompose layers show
// different sequence compositions with the same blend mode.
func checkContinuousSequence(s *session.Session, comp *model.Composition, seen map[*model.Composition]bool) {
	if comp.IsSequence() || seen[comp] {
		return
	}
	seen[comp] = true

	lastIsSequence := false
	lastBlendMode := model.BlendNormal
	var lastComp *model.Composition
	for _, layer := range comp.Layers {
		pre, ok := layer.PreComposition()
		if !ok {
			lastIsSequence = false
			continue
		}
		if pre.Composition == lastComp {
			continue
		}
		lastComp = pre.Composition
		if pre.Composition.IsSequence() {
			if lastIsSequence && layer.BlendMode == lastBlendMode {
				s.PushWarningAt(alert.ContinuousSequence, comp.ID, layer.ID, "")
			}
			lastIsSequence = true
			lastBlendMode = layer.BlendMode
		} else {
			checkContinuousSequence(s, pre.Composition, seen)
			lastIsSequence = false
		}
	}
}

func checkSequenceSuffix(s *session.Session, comp *model.Composition, seen map[*model.Composition]bool) {
	if comp.IsSequence() || seen[comp] {
		return
	}
	seen[comp] = true

	suffix := s.Options.SequenceSuffix
	for _, layer := range comp.Layers {
		named := strings.HasSuffix(strings.ToLower(layer.Name), suffix)
		pre, ok := layer.PreComposition()
		if !ok {
			if named {
				s.PushWarningAt(alert.NoPrecompLayerWithBmpName, comp.ID, layer.ID, "")
			}
			continue
		}
		if pre.Composition.IsSequence() {
			continue
		}
		if named && s.Supports(session.TagVideoSequence) {
			s.PushWarningAt(alert.BmpLayerButVectorComp, comp.ID, layer.ID, "")
		}
		checkSequenceSuffix(s, pre.Composition, seen)
	}
}

func checkLayerNum(s *session.Session, root *model.Composition, comps []*model.Composition) {
	n := 0
	for _, comp := range comps {
		if comp.IsSequence() {
			n++
			continue
		}
		for _, layer := range comp.Layers {
			if layer.Kind() != model.KindPreCompose {
				n++
			}
		}
	}
	if n > maxLayerNum {
		s.PushWarningAt(alert.LayerNum, root.ID, 0, strconv.Itoa(n))
	}
}

func checkImageFillRules(s *session.Session, root *model.Composition) {
	walk(root, 0, func(comp *model.Composition, layer *model.Layer, _ model.Frame) {
		img, ok := layer.Content.(*model.Image)
		if !ok || img.FillRule == nil || !img.FillRule.TimeRemap.Animatable() {
			return
		}
		keys := zeroedTimeRemap(img.FillRule.TimeRemap)
		for _, k := range keys {
			if k.EndTime-k.StartTime <= minRemapKeyframeDuration {
				continue
			}
			speed := float64(k.EndValue-k.StartValue) / float64(k.EndTime-k.StartTime)
			if speed > maxPlaySpeed {
				s.PushWarningAt(alert.VideoSpeedTooFast, comp.ID, layer.ID, "")
			}
		}
		for _, k := range keys {
			if k.EndTime-k.StartTime <= minRemapKeyframeDuration {
				continue
			}
			if k.StartValue > k.EndValue && k.StartTime+1 != k.EndTime {
				s.PushWarningAt(alert.VideoPlayBackward, comp.ID, layer.ID, "")
			}
		}
	})
}

// zeroedTimeRemap returns copies of the keyframes shifted so the smallest
// start value is zero.
func zeroedTimeRemap(p *model.Property[model.Frame]) []model.Keyframe[model.Frame] {
	offset := p.Keyframes[0].StartValue
	for _, k := range p.Keyframes {
		offset = min(offset, k.StartValue)
	}
	keys := make([]model.Keyframe[model.Frame], 0, len(p.Keyframes))
	for _, k := range p.Keyframes {
		c := *k
		c.StartValue -= offset
		c.EndValue -= offset
		keys = append(keys, c)
	}
	return keys
}

func checkVideoInUIScenes(s *session.Session, comps []*model.Composition) {
	if s.Options.Scenes != session.ScenesUI {
		return
	}
	for _, comp := range comps {
		if comp.Kind == model.VideoComposition {
			s.PushWarningAt(alert.VideoSequenceInUiScene, comp.ID, 0, "")
		}
	}
}

// checkVideoCompositionOverlap warns when a video composition is visible
// through more than one layer at the same frame of the root work area.
func checkVideoCompositionOverlap(s *session.Session, root *model.Composition, comps []*model.Composition) {
	if root.IsSequence() {
		return
	}
	clipStart := root.WorkAreaStart
	clipEnd := clipStart + root.WorkAreaDuration

	for _, comp := range comps {
		if comp.Kind != model.VideoComposition {
			continue
		}
		var refs []Interval
		collectVideoReferences(root, comp, clipStart, clipStart, clipEnd, &refs, make(map[*model.Composition]bool))
		if peak, _ := MaxCountInSameTimeRange(refs); peak > maxVideoCompositionRefs {
			s.Logger().Debug("video composition references overlap",
				"composition", comp.Name,
				"frames", overlapFrames(refs),
			)
			s.PushWarningAt(alert.VideoCompositionOverlap, root.ID, 0, comp.Name)
		}
	}
}

func collectVideoReferences(comp, target *model.Composition, mainStart, localStart, localEnd model.Frame, refs *[]Interval, stack map[*model.Composition]bool) {
	if comp.IsSequence() || stack[comp] {
		return
	}
	stack[comp] = true
	defer delete(stack, comp)

	for _, layer := range comp.Layers {
		pre, ok := layer.PreComposition()
		if !ok {
			continue
		}
		visibleStart := max(layer.StartTime, localStart)
		visibleEnd := min(layer.StartTime+layer.Duration, localEnd)
		if visibleStart >= visibleEnd {
			continue
		}
		absStart := mainStart + visibleStart - localStart
		absEnd := mainStart + visibleEnd - localStart

		switch {
		case pre.Composition == target:
			*refs = append(*refs, Interval{Start: absStart, End: absEnd, Weight: 1})
		case !pre.Composition.IsSequence():
			offset := pre.CompositionStartTime
			childStart, childEnd := visibleStart-offset, visibleEnd-offset
			if childStart < childEnd {
				collectVideoReferences(pre.Composition, target, absStart, childStart, childEnd, refs, stack)
			}
		}
	}
}

// checkDuplicateSequences compares video compositions by their rendered frame
// digests. It only runs when static compositions are rendered as sequences.
func checkDuplicateSequences(s *session.Session, comps []*model.Composition) {
	if !s.Options.ExportStaticCompAsBmp {
		return
	}
	var videos []*model.Composition
	for _, comp := range comps {
		if comp.Kind == model.VideoComposition {
			videos = append(videos, comp)
		}
	}
	for i := 0; i < len(videos); i++ {
		for j := i + 1; j < len(videos); j++ {
			if s.Cancelled() {
				return
			}
			if sameSequence(videos[i], videos[j]) {
				s.PushWarningAt(alert.SameSequence, videos[i].ID, 0, videos[j].Name)
			}
		}
	}
}

func sameSequence(a, b *model.Composition) bool {
	if a.Width != b.Width || a.Height != b.Height {
		return false
	}
	if a.Duration != b.Duration || a.FrameRate != b.FrameRate {
		return false
	}
	return len(a.FrameDigests) > 0 && slices.Equal(a.FrameDigests, b.FrameDigests)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
