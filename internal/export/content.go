package export

import (
	"github.com/heimdex/pagexport/internal/host"
	"github.com/heimdex/pagexport/internal/model"
	"github.com/heimdex/pagexport/internal/property"
	"github.com/heimdex/pagexport/internal/session"
)

func exportCameraOption(s *session.Session, h host.Host, layerID model.ID) *model.CameraOption {
	option := &model.CameraOption{}
	if group, ok := layerStream(s, h, layerID, host.GroupCamera); ok {
		option.Zoom = property.Named(s, h, group, "ADBE Camera Zoom", property.Float)
		option.DepthOfField = property.Named(s, h, group, "ADBE Camera Depth of Field", property.Bool)
		option.FocusDistance = property.Named(s, h, group, "ADBE Camera Focus Distance", property.Float)
		option.Aperture = property.Named(s, h, group, "ADBE Camera Aperture", property.Float)
		option.BlurLevel = property.Named(s, h, group, "ADBE Camera Blur Level", property.Percent)
	}
	option.Zoom = orStatic(option.Zoom, 1777.8)
	option.DepthOfField = orStatic(option.DepthOfField, false)
	option.FocusDistance = orStatic(option.FocusDistance, 1777.8)
	option.Aperture = orStatic(option.Aperture, 17.7)
	option.BlurLevel = orStatic(option.BlurLevel, 1)
	return option
}

// exportShapes copies the shape tree as raw elements: groups recurse, paths
// keep their bezier data and numeric parameters are kept by match name.
func exportShapes(s *session.Session, h host.Host, layerID model.ID) []*model.ShapeElement {
	group, ok := visibleGroup(s, h, layerID, host.GroupShapes)
	if !ok {
		return nil
	}
	return shapeElements(s, h, group)
}

func shapeElements(s *session.Session, h host.Host, group host.StreamID) []*model.ShapeElement {
	var elements []*model.ShapeElement
	for _, c := range children(s, h, group) {
		if c.info.Type != host.ValueGroup {
			continue
		}
		element := &model.ShapeElement{
			MatchName: c.info.MatchName,
			Name:      c.info.Name,
			Elements:  shapeElements(s, h, c.id),
		}
		for _, param := range children(s, h, c.id) {
			switch {
			case param.info.Type == host.ValueMask:
				element.Path = property.Convert(s, h, param.id, property.MaskPath)
			case isNumeric(param.info.Type):
				if element.Params == nil {
					element.Params = make(map[string]*model.Property[float32])
				}
				element.Params[param.info.MatchName] = property.Convert(s, h, param.id, property.Float)
			}
		}
		elements = append(elements, element)
	}
	return elements
}
