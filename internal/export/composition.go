package export

import (
	"strings"

	"github.com/heimdex/pagexport/internal/alert"
	"github.com/heimdex/pagexport/internal/curve"
	"github.com/heimdex/pagexport/internal/host"
	"github.com/heimdex/pagexport/internal/logging"
	"github.com/heimdex/pagexport/internal/model"
	"github.com/heimdex/pagexport/internal/prune"
	"github.com/heimdex/pagexport/internal/session"
)

// ExportComposition builds the composition with the given id and every
// composition it references. Results are memoized on the session, so a
// composition used by several layers is built once and shared. Finished
// compositions are appended to s.Compositions after their children.
func ExportComposition(s *session.Session, h host.Host, id model.ID) *model.Composition {
	if comp, ok := s.Composition(id); ok {
		return comp
	}
	if s.Cancelled() {
		return nil
	}

	info, err := h.Item(id)
	if err != nil || info.Type != host.ItemComposition {
		addInfo := "item is not a composition"
		if err != nil {
			addInfo = err.Error()
		}
		s.PushWarningAt(alert.CompositionHandleNotFound, id, 0, addInfo)
		return nil
	}

	frameRate := info.FrameRate
	sequence := isSequenceName(info.Name, s.Options.SequenceSuffix)
	if sequence && s.Options.FrameRate > 0 && (frameRate <= 0 || s.Options.FrameRate < frameRate) {
		frameRate = s.Options.FrameRate
	}
	defer s.EnterComposition(id, info.Name, frameRate)()
	rate := s.FrameRate()

	comp := &model.Composition{
		ID:               id,
		Name:             info.Name,
		Kind:             model.VectorComposition,
		Width:            info.Width,
		Height:           info.Height,
		FrameRate:        rate,
		Duration:         curve.FrameOf(info.Duration, rate),
		BackgroundColor:  info.BackgroundColor,
		WorkAreaStart:    curve.FrameOf(info.WorkAreaStart, rate),
		WorkAreaDuration: curve.FrameOf(info.WorkAreaDuration, rate),
	}
	if comp.WorkAreaDuration <= 0 {
		comp.WorkAreaDuration = comp.Duration
	}
	s.Reserve(comp)

	if sequence {
		comp.Kind = model.VideoComposition
		if s.Options.SequenceType == session.SequenceBitmap {
			comp.Kind = model.BitmapComposition
		}
		comp.StaticTimeRanges = append([]model.TimeRange(nil), info.StaticTimeRanges...)
		comp.FrameDigests = append([]string(nil), info.FrameDigests...)
	} else {
		comp.Layers = ExportLayers(s, h, comp)
	}

	logging.WithCompositionID(s.Logger(), uint32(id)).Debug("composition exported",
		"kind", comp.Kind.String(),
		"layers", len(comp.Layers),
	)
	s.AddComposition(comp)
	return comp
}

// ExportLayers builds the layers of comp in host order and prunes the ones
// that contribute nothing. Host failures on one layer are recorded and the
// layer is skipped.
func ExportLayers(s *session.Session, h host.Host, comp *model.Composition) []*model.Layer {
	numLayers, err := h.NumLayers(comp.ID)
	if err != nil {
		s.PushWarning(alert.ExportAEError, err.Error())
		return nil
	}

	var entries []prune.Entry
	for index := 0; index < numLayers; index++ {
		if s.Cancelled() {
			break
		}
		info, err := h.Layer(comp.ID, index)
		if err != nil {
			s.PushWarning(alert.ExportAEError, err.Error())
			continue
		}

		restore := s.AtLayerIndex(index)
		layer, layerType := exportLayer(s, h, comp.ID, info)
		restore()
		if layer == nil {
			continue
		}

		if layer.TrackMatteLayer != nil {
			entries = append(entries, prune.Entry{Layer: layer.TrackMatteLayer})
		}
		solo := layer.IsActive && info.Flags.Has(host.FlagSolo) && layerType != TypeCamera
		entries = append(entries, prune.Entry{
			Layer:      layer,
			Solo:       solo,
			Adjustment: info.Flags.Has(host.FlagAdjustment),
		})
	}

	layers := make([]*model.Layer, 0, len(entries))
	if s.Cancelled() {
		for _, e := range entries {
			layers = append(layers, e.Layer)
		}
		return layers
	}
	return prune.Prune(s, entries, comp.Duration)
}

// exportLayer builds one layer. It returns nil for layers that cannot be
// represented at the configured tag level.
func exportLayer(s *session.Session, h host.Host, compID model.ID, info host.LayerInfo) (*model.Layer, LayerType) {
	defer s.EnterLayer(info.ID, info.Name)()

	source := noSource
	if info.Object == host.ObjectAV && info.Source != 0 {
		item, err := h.Item(info.Source)
		if err != nil {
			s.PushWarning(alert.ExportAEError, err.Error())
		} else {
			source = item
		}
	}
	layerType := Classify(info, source)

	if layerType == TypeAudio && s.Supports(session.TagMarkerList) {
		s.AudioMarkers = append(s.AudioMarkers, exportMarkers(s, h, info.ID)...)
	}
	if layerType == TypeCamera && !s.Supports(session.TagCameraOption) {
		s.PushWarning(alert.CameraLayer, "")
		return nil, layerType
	}

	layer := &model.Layer{ID: info.ID, Name: info.Name}
	switch layerType {
	case TypeSolid:
		layer.Content = &model.Solid{Color: source.SolidColor, Width: source.Width, Height: source.Height}
	case TypeImage, TypeVideo:
		layer.Content = &model.Image{Bytes: s.Image(source.ID, source.Width, source.Height, layerType == TypeVideo)}
	case TypePreCompose:
		layer.Content = &model.PreCompose{
			CompositionStartTime: curve.FrameOf(info.Offset, s.FrameRate()),
			Composition:          ExportComposition(s, h, source.ID),
		}
	case TypeText:
		layer.Content = exportText(s, h, info.ID)
	case TypeCamera:
		layer.Content = &model.Camera{Option: exportCameraOption(s, h, info.ID)}
	case TypeShape:
		layer.Content = &model.Shape{Contents: exportShapes(s, h, info.ID)}
	case TypeNull:
		layer.Content = &model.Null{}
	default:
		layer.Content = &model.Unknown{}
	}

	initLayer(s, h, compID, info, layer, layerType)
	s.SetTraits(info.ID, session.LayerTraits{
		Adjustment:    info.Flags.Has(host.FlagAdjustment),
		TimeRemapping: info.Flags.Has(host.FlagTimeRemapping),
		ThreeD:        info.Flags.Has(host.Flag3D),
		MotionBlur:    info.Flags.Has(host.FlagMotionBlur),
	})
	return layer, layerType
}

// trackMatteIndex returns the index of the layer with the given id.
func trackMatteIndex(s *session.Session, h host.Host, compID, layerID model.ID) (host.LayerInfo, int, bool) {
	numLayers, err := h.NumLayers(compID)
	if err != nil {
		s.PushWarning(alert.ExportAEError, err.Error())
		return host.LayerInfo{}, -1, false
	}
	for i := 0; i < numLayers; i++ {
		info, err := h.Layer(compID, i)
		if err != nil {
			continue
		}
		if info.ID == layerID {
			return info, i, true
		}
	}
	return host.LayerInfo{}, -1, false
}

func isSequenceName(name, suffix string) bool {
	return suffix != "" && strings.HasSuffix(strings.ToLower(name), suffix)
}
