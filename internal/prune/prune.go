// Package prune removes layers that contribute nothing to the rendered
// composition.
package prune

import (
	"github.com/heimdex/pagexport/internal/alert"
	"github.com/heimdex/pagexport/internal/model"
	"github.com/heimdex/pagexport/internal/session"
)

// Entry is a freshly built layer plus the host facts the pruner needs.
type Entry struct {
	Layer      *model.Layer
	Solo       bool
	Adjustment bool
}

// Prune walks the layers from front to back (reverse list order), forcing
// layers inactive by the liveness rules and dropping those that are inactive
// and unreferenced. Track matte layers referenced by a surviving layer are
// kept but stay inactive.
func Prune(s *session.Session, entries []Entry, totalDuration model.Frame) []*model.Layer {
	hasSolo := false
	for _, e := range entries {
		if e.Solo {
			hasSolo = true
			break
		}
	}

	layers := make([]*model.Layer, len(entries))
	for i, e := range entries {
		layers[i] = e.Layer
	}

	nextLayerHasTrackMatte := false
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		layer := e.Layer

		if layer.StartTime >= totalDuration {
			layer.IsActive = false
		}
		kind := layer.Kind()
		if hasSolo && !e.Solo && kind != model.KindCamera {
			layer.IsActive = false
		}

		referenced := IsReferenced(layer.ID, layers, nextLayerHasTrackMatte)
		if (kind == model.KindNull || kind == model.KindUnknown) && (referenced || layer.IsActive) {
			if e.Adjustment {
				s.PushWarningAt(alert.AdjustmentLayer, s.CompositionID, layer.ID, "")
			}
			layer.IsActive = false
		}

		if layer.Duration <= 0 {
			layer.Duration = 1
			layer.IsActive = false
		}

		if zeroOpacity(layer) {
			layer.IsActive = false
		}

		if !layer.IsActive && !referenced {
			if layer.TrackMatteLayer != nil {
				layer.TrackMatteLayer.IsActive = false
			}
			layers = append(layers[:i], layers[i+1:]...)
			continue
		}
		nextLayerHasTrackMatte = layer.TrackMatteType != model.MatteNone
	}
	return layers
}

// IsReferenced reports whether the layer with the given id is the source of
// a displacement map, the parent of another layer, or the track matte of
// the layer after it.
func IsReferenced(id model.ID, layers []*model.Layer, lastLayerHasTrackMatte bool) bool {
	for _, l := range layers {
		for _, effect := range l.Effects {
			if effect.Type == model.EffectDisplacementMap && effect.DisplacementMapLayer != 0 &&
				effect.DisplacementMapLayer == id {
				return true
			}
		}
	}
	for _, l := range layers {
		if l.ParentID != 0 && l.ParentID == id {
			return true
		}
	}
	return lastLayerHasTrackMatte
}

func zeroOpacity(l *model.Layer) bool {
	opacity2D := l.Transform == nil || model.ZeroOpacity(l.Transform.Opacity)
	opacity3D := l.Transform3D == nil || model.ZeroOpacity(l.Transform3D.Opacity)
	return opacity2D && opacity3D
}
