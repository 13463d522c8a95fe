package export

import (
	"errors"

	"github.com/heimdex/pagexport/internal/alert"
	"github.com/heimdex/pagexport/internal/curve"
	"github.com/heimdex/pagexport/internal/host"
	"github.com/heimdex/pagexport/internal/model"
	"github.com/heimdex/pagexport/internal/property"
	"github.com/heimdex/pagexport/internal/session"
)

// initLayer fills the fields every layer variant shares.
func initLayer(s *session.Session, h host.Host, compID model.ID, info host.LayerInfo, layer *model.Layer, layerType LayerType) {
	rate := s.FrameRate()
	layer.ParentID = info.Parent
	layer.Stretch = model.DefaultRatio
	if info.Stretch != nil {
		layer.Stretch = *info.Stretch
	}
	layer.StartTime = curve.FrameOf(info.InPoint, rate)
	layer.Duration = curve.FrameOf(info.Duration, rate)
	layer.AutoOrientation = info.Flags.Has(host.FlagAutoOrient)

	transform, ok := layerStream(s, h, info.ID, host.GroupTransform)
	is3D := info.Flags.Has(host.Flag3D) || layerType == TypeCamera
	if is3D && s.Supports(session.TagTransform3D) {
		layer.Transform3D = exportTransform3D(s, h, transform, ok)
	} else {
		layer.Transform = exportTransform2D(s, h, transform, ok)
	}
	if info.Flags.Has(host.FlagTimeRemapping) {
		if stream, ok := layerStream(s, h, info.ID, host.StreamTimeMap); ok {
			layer.TimeRemap = property.Convert(s, h, stream, property.Float)
		}
	}

	if layerType == TypeCamera {
		normalizeCamera(layer, info.Flags)
	} else {
		layer.BlendMode = info.BlendMode
		layer.TrackMatteType = info.TrackMatte
		if s.Supports(session.TagLayerAttributesExtra) {
			layer.MotionBlur = info.Flags.Has(host.FlagMotionBlur)
		}
		if layer.TrackMatteType != model.MatteNone {
			exportTrackMatte(s, h, compID, info, layer)
		}
		layer.Masks = exportMasks(s, h, info.ID)
		layer.Effects = exportEffects(s, h, info.ID)
		layer.LayerStyles = exportLayerStyles(s, h, info.ID)
		exportAttachments(s, h, info.ID, layer)
	}

	if layerType == TypeVideo {
		layer.Markers = append(layer.Markers, &model.Marker{
			StartTime: layer.StartTime,
			Duration:  layer.Duration,
			Comment:   model.VideoTrackMarker,
		})
	}

	if layerType == TypeAudio || layerType == TypeUnknown {
		layer.IsActive = false
	} else {
		layer.IsActive = info.Flags.Has(host.FlagVideoActive)
	}

	if s.Supports(session.TagMarkerList) {
		layer.Markers = append(layer.Markers, exportMarkers(s, h, info.ID)...)
		parseMarkers(layer)
	}
}

// exportTrackMatte exports the matte source of layer with the matte's own
// index as context. The matte copy is inactive and not matted itself.
func exportTrackMatte(s *session.Session, h host.Host, compID model.ID, info host.LayerInfo, layer *model.Layer) {
	if info.TrackMatteFrom == 0 || info.TrackMatteFrom == info.ID {
		layer.TrackMatteType = model.MatteNone
		return
	}
	matteInfo, index, ok := trackMatteIndex(s, h, compID, info.TrackMatteFrom)
	if !ok {
		layer.TrackMatteType = model.MatteNone
		return
	}

	restore := s.AtLayerIndex(index)
	matte, _ := exportLayer(s, h, compID, matteInfo)
	restore()
	if matte == nil {
		layer.TrackMatteType = model.MatteNone
		return
	}
	matte.IsActive = false
	matte.TrackMatteType = model.MatteNone
	layer.TrackMatteLayer = matte
}

// layerStream looks up a top level stream group of a layer. Missing groups
// are not an error.
func layerStream(s *session.Session, h host.Host, layerID model.ID, matchName string) (host.StreamID, bool) {
	stream, err := h.LayerStream(layerID, matchName)
	if err != nil {
		if !errors.Is(err, host.ErrNotFound) {
			s.PushWarning(alert.ExportAEError, err.Error())
		}
		return 0, false
	}
	return stream, true
}

func exportTransform2D(s *session.Session, h host.Host, group host.StreamID, ok bool) *model.Transform2D {
	t := &model.Transform2D{}
	if ok {
		t.AnchorPoint = property.Named(s, h, group, host.AnchorPoint, property.Point)
		if separated(s, h, group) {
			t.XPosition = property.Named(s, h, group, host.PositionX, property.Float)
			t.YPosition = property.Named(s, h, group, host.PositionY, property.Float)
		} else {
			t.Position = property.Named(s, h, group, host.Position, property.Point)
		}
		t.Scale = property.Named(s, h, group, host.Scale, property.Scale)
		t.Rotation = property.Named(s, h, group, host.RotateZ, property.Float)
		t.Opacity = property.Named(s, h, group, host.Opacity, property.Opacity)
	}
	t.AnchorPoint = orStatic(t.AnchorPoint, model.Point{})
	if t.XPosition == nil || t.YPosition == nil {
		t.XPosition, t.YPosition = nil, nil
		t.Position = orStatic(t.Position, model.Point{})
	}
	t.Scale = orStatic(t.Scale, model.Point{X: 1, Y: 1})
	t.Rotation = orStatic(t.Rotation, 0)
	t.Opacity = orStatic(t.Opacity, model.Opaque)
	return t
}

func exportTransform3D(s *session.Session, h host.Host, group host.StreamID, ok bool) *model.Transform3D {
	t := &model.Transform3D{}
	if ok {
		t.AnchorPoint = property.Named(s, h, group, host.AnchorPoint, property.Point3D)
		if separated(s, h, group) {
			t.XPosition = property.Named(s, h, group, host.PositionX, property.Float)
			t.YPosition = property.Named(s, h, group, host.PositionY, property.Float)
			t.ZPosition = property.Named(s, h, group, host.PositionZ, property.Float)
		} else {
			t.Position = property.Named(s, h, group, host.Position, property.Point3D)
		}
		t.Scale = property.Named(s, h, group, host.Scale, property.Scale3D)
		// Orientation eases as one dimension even though it carries three values.
		t.Orientation = property.NamedN(s, h, group, host.Orientation, property.Point3D, 1)
		t.XRotation = property.Named(s, h, group, host.RotateX, property.Float)
		t.YRotation = property.Named(s, h, group, host.RotateY, property.Float)
		t.ZRotation = property.Named(s, h, group, host.RotateZ, property.Float)
		t.Opacity = property.Named(s, h, group, host.Opacity, property.Opacity)
	}
	t.AnchorPoint = orStatic(t.AnchorPoint, model.Point3D{})
	if t.XPosition == nil || t.YPosition == nil || t.ZPosition == nil {
		t.XPosition, t.YPosition, t.ZPosition = nil, nil, nil
		t.Position = orStatic(t.Position, model.Point3D{})
	}
	t.Scale = orStatic(t.Scale, model.Point3D{X: 1, Y: 1, Z: 1})
	t.Orientation = orStatic(t.Orientation, model.Point3D{})
	t.XRotation = orStatic(t.XRotation, 0)
	t.YRotation = orStatic(t.YRotation, 0)
	t.ZRotation = orStatic(t.ZRotation, 0)
	t.Opacity = orStatic(t.Opacity, model.Opaque)
	return t
}

// separated reports whether the position of a transform group is split
// into per-axis streams.
func separated(s *session.Session, h host.Host, group host.StreamID) bool {
	stream, err := h.StreamByName(group, host.Position)
	if err != nil {
		return false
	}
	info, err := h.StreamInfo(stream)
	if err != nil {
		s.PushWarning(alert.ExportAEError, err.Error())
		return false
	}
	return info.Separated
}

// normalizeCamera forces identity scale and opaque opacity on a camera and,
// unless it looks at its point of interest, makes the anchor point track the
// position.
func normalizeCamera(layer *model.Layer, flags host.LayerFlags) {
	t := layer.Transform3D
	if t == nil {
		return
	}
	t.Scale = model.Static(model.Point3D{X: 1, Y: 1, Z: 1})
	t.Opacity = model.Static(model.Opaque)
	if !flags.Has(host.FlagLookAtPOI) && t.Position != nil {
		t.AnchorPoint = t.Position.Copy()
	}
}

func orStatic[T any](p *model.Property[T], v T) *model.Property[T] {
	if p == nil {
		return model.Static(v)
	}
	return p
}
