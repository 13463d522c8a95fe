package export

import (
	"strings"

	"github.com/heimdex/pagexport/internal/alert"
	"github.com/heimdex/pagexport/internal/curve"
	"github.com/heimdex/pagexport/internal/host"
	"github.com/heimdex/pagexport/internal/model"
	"github.com/heimdex/pagexport/internal/property"
	"github.com/heimdex/pagexport/internal/session"
)

const (
	maskAtom      = "ADBE Mask Atom"
	maskShape     = "ADBE Mask Shape"
	maskOpacity   = "ADBE Mask Opacity"
	maskExpansion = "ADBE Mask Offset"
	maskFeather   = "ADBE Mask Feather"
	maskMode      = "ADBE Mask Mode"
	maskInverted  = "ADBE Mask Inverted"

	effectBuiltInParams  = "ADBE Effect Built In Params"
	displacementMapLayer = "ADBE Displacement Map-0001"

	imageFillRule   = "ADBE Image Fill Rule"
	imageFillRuleV2 = "ADBE Image Fill Rule2"
	textBackground  = "ADBE Text Background"
)

var effectTypes = map[string]model.EffectType{
	"ADBE Tile":                    model.EffectMotionTile,
	"ADBE Pro Levels2":             model.EffectLevelsIndividual,
	"ADBE Corner Pin":              model.EffectCornerPin,
	"ADBE Bulge":                   model.EffectBulge,
	"ADBE Fast Blur":               model.EffectFastBlur,
	"ADBE Gaussian Blur 2":         model.EffectGaussBlur,
	"ADBE Glo2":                    model.EffectGlow,
	"ADBE Displacement Map":        model.EffectDisplacementMap,
	"ADBE Radial Blur":             model.EffectRadialBlur,
	"ADBE Mosaic":                  model.EffectMosaic,
	"ADBE Brightness & Contrast 2": model.EffectBrightnessContrast,
	"ADBE HUE SATURATION":          model.EffectHueSaturation,
}

// effectTags lists effects that need a newer tag level than the minimum.
var effectTags = map[model.EffectType]session.TagCode{
	model.EffectDisplacementMap: session.TagDisplacementMap,
	model.EffectRadialBlur:      session.TagRadialBlurEffect,
	model.EffectMosaic:          session.TagMosaicEffect,
}

var styleTypes = map[string]model.LayerStyleType{
	"dropShadow/enabled":   model.StyleDropShadow,
	"outerGlow/enabled":    model.StyleOuterGlow,
	"gradientFill/enabled": model.StyleGradientOverlay,
	"frameFX/enabled":      model.StyleStroke,
}

var styleTags = map[model.LayerStyleType]session.TagCode{
	model.StyleStroke:    session.TagStrokeStyle,
	model.StyleOuterGlow: session.TagOuterGlowStyle,
}

const blendOptionsGroup = "ADBE Blend Options Group"

type child struct {
	id   host.StreamID
	info host.StreamInfo
}

// children lists the enabled, visible streams of a group.
func children(s *session.Session, h host.Host, group host.StreamID) []child {
	n, err := h.NumStreams(group)
	if err != nil {
		s.PushWarning(alert.ExportAEError, err.Error())
		return nil
	}
	out := make([]child, 0, n)
	for i := 0; i < n; i++ {
		id, err := h.StreamByIndex(group, i)
		if err != nil {
			s.PushWarning(alert.ExportAEError, err.Error())
			continue
		}
		info, err := h.StreamInfo(id)
		if err != nil {
			s.PushWarning(alert.ExportAEError, err.Error())
			continue
		}
		if info.Hidden || !info.Active() {
			continue
		}
		out = append(out, child{id: id, info: info})
	}
	return out
}

// visibleGroup resolves a top level layer group and reports whether it is
// present and enabled.
func visibleGroup(s *session.Session, h host.Host, layerID model.ID, matchName string) (host.StreamID, bool) {
	group, ok := layerStream(s, h, layerID, matchName)
	if !ok {
		return 0, false
	}
	info, err := h.StreamInfo(group)
	if err != nil {
		s.PushWarning(alert.ExportAEError, err.Error())
		return 0, false
	}
	return group, !info.Hidden && info.Active()
}

func exportMasks(s *session.Session, h host.Host, layerID model.ID) []*model.Mask {
	group, ok := visibleGroup(s, h, layerID, host.GroupMasks)
	if !ok {
		return nil
	}
	var masks []*model.Mask
	for i, c := range children(s, h, group) {
		if c.info.MatchName != maskAtom {
			continue
		}
		mask := &model.Mask{
			ID:        model.ID(i + 1),
			Mode:      model.MaskMode(property.Value(s, h, c.id, maskMode, property.Int)),
			Inverted:  property.Value(s, h, c.id, maskInverted, property.Bool),
			Path:      property.Named(s, h, c.id, maskShape, property.MaskPath),
			Opacity:   orStatic(property.Named(s, h, c.id, maskOpacity, property.Opacity), model.Opaque),
			Expansion: orStatic(property.Named(s, h, c.id, maskExpansion, property.Float), 0),
			Feather:   property.Named(s, h, c.id, maskFeather, property.Point),
		}
		if v, err := h.StreamValue(c.id); err == nil && len(v.Numbers) > 0 {
			mask.ID = property.LayerID(v)
		}
		if mask.Path == nil {
			continue
		}
		masks = append(masks, mask)
	}
	return masks
}

func exportEffects(s *session.Session, h host.Host, layerID model.ID) []*model.Effect {
	group, ok := visibleGroup(s, h, layerID, host.GroupEffects)
	if !ok {
		return nil
	}
	var effects []*model.Effect
	for _, c := range children(s, h, group) {
		switch c.info.MatchName {
		case imageFillRule, imageFillRuleV2, textBackground:
			continue
		}
		effectType, known := effectTypes[c.info.MatchName]
		if !known {
			s.PushWarning(alert.UnsupportedEffects, c.info.MatchName)
			continue
		}
		if tag, gated := effectTags[effectType]; gated && !s.Supports(tag) {
			s.PushWarning(alert.UnsupportedEffects, c.info.MatchName)
			continue
		}
		effects = append(effects, exportEffect(s, h, c, effectType))
	}
	return effects
}

func exportEffect(s *session.Session, h host.Host, c child, effectType model.EffectType) *model.Effect {
	effect := &model.Effect{
		Type:      effectType,
		MatchName: c.info.MatchName,
		Active:    true,
		Params:    make(map[string]*model.Property[float32]),
	}
	for _, param := range children(s, h, c.id) {
		switch {
		case param.info.MatchName == effectBuiltInParams:
			effect.MaskIDs = effectMaskIDs(s, h, param.id)
		case param.info.MatchName == displacementMapLayer || param.info.Type == host.ValueLayerID:
			effect.DisplacementMapLayer = property.Value(s, h, c.id, param.info.MatchName, property.LayerID)
		case isNumeric(param.info.Type):
			effect.Params[param.info.MatchName] = property.Convert(s, h, param.id, property.Float)
		}
	}
	return effect
}

func effectMaskIDs(s *session.Session, h host.Host, builtIn host.StreamID) []model.ID {
	params := children(s, h, builtIn)
	if len(params) == 0 {
		return nil
	}
	var ids []model.ID
	for _, ref := range children(s, h, params[0].id) {
		v, err := h.StreamValue(ref.id)
		if err != nil {
			s.PushWarning(alert.ExportAEError, err.Error())
			continue
		}
		if id := property.LayerID(v); id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

func exportLayerStyles(s *session.Session, h host.Host, layerID model.ID) []*model.LayerStyle {
	group, ok := visibleGroup(s, h, layerID, host.GroupStyles)
	if !ok {
		return nil
	}
	var styles []*model.LayerStyle
	for _, c := range children(s, h, group) {
		if c.info.MatchName == blendOptionsGroup {
			continue
		}
		styleType, known := styleTypes[c.info.MatchName]
		if !known {
			s.PushWarning(alert.UnsupportedLayerStyle, styleName(c.info))
			continue
		}
		if tag, gated := styleTags[styleType]; gated && !s.Supports(tag) {
			s.PushWarning(alert.UnsupportedLayerStyle, styleName(c.info))
			continue
		}

		style := &model.LayerStyle{
			Type:      styleType,
			MatchName: c.info.MatchName,
			Params:    make(map[string]*model.Property[float32]),
		}
		for _, param := range children(s, h, c.id) {
			if isBlendModeParam(param.info.MatchName) {
				style.BlendMode = model.BlendMode(property.Value(s, h, c.id, param.info.MatchName, property.Enum[int]))
				continue
			}
			if isNumeric(param.info.Type) {
				style.Params[param.info.MatchName] = property.Convert(s, h, param.id, property.Float)
			}
		}
		styles = append(styles, style)
	}
	return styles
}

func styleName(info host.StreamInfo) string {
	if info.Name != "" {
		return info.Name
	}
	return info.MatchName
}

func isBlendModeParam(matchName string) bool {
	return strings.HasSuffix(matchName, "/mode2")
}

// exportAttachments applies side-channel effects that configure a field of
// the layer they sit on instead of producing an effect.
func exportAttachments(s *session.Session, h host.Host, layerID model.ID, layer *model.Layer) {
	group, ok := visibleGroup(s, h, layerID, host.GroupEffects)
	if !ok {
		return
	}
	for _, c := range children(s, h, group) {
		switch c.info.MatchName {
		case textBackground:
			text, ok := layer.Content.(*model.Text)
			if !ok {
				s.PushWarning(alert.TextBackgroundOnlyTextLayer, "")
				continue
			}
			text.Background = exportTextBackground(s, h, c.id)
		case imageFillRule, imageFillRuleV2:
			image, ok := layer.Content.(*model.Image)
			if !ok {
				s.PushWarning(alert.ImageFillRuleOnlyImageLayer, "")
				continue
			}
			if image.FillRule != nil {
				s.PushWarning(alert.ImageFillRuleOnlyOne, "")
				continue
			}
			image.FillRule = exportImageFillRule(s, h, c.id, c.info.MatchName == imageFillRuleV2)
		}
	}
}

func exportTextBackground(s *session.Session, h host.Host, effect host.StreamID) *model.TextBackground {
	return &model.TextBackground{
		Color:   orStatic(property.Named(s, h, effect, textBackground+"-0001", property.Color), model.Color{}),
		Opacity: orStatic(property.Named(s, h, effect, textBackground+"-0002", property.Opacity), model.Opaque),
		Padding: property.Named(s, h, effect, textBackground+"-0003", property.Float),
		Radius:  property.Named(s, h, effect, textBackground+"-0004", property.Float),
	}
}

func exportImageFillRule(s *session.Session, h host.Host, effect host.StreamID, v2 bool) *model.ImageFillRule {
	if !s.Supports(session.TagImageFillRule) {
		s.PushWarning(alert.TagLevelImageFillRule, "")
		return nil
	}

	prefix := imageFillRule + "1"
	if v2 {
		prefix = imageFillRuleV2
		if !s.Supports(session.TagImageFillRuleV2) {
			s.PushWarning(alert.TagLevelImageFillRuleV2, "")
		}
	}
	rate := s.FrameRate()
	toFrame := func(v host.Value) model.Frame {
		return curve.FrameOf(v.Number(0), rate)
	}
	rule := &model.ImageFillRule{
		ScaleMode: property.Value(s, h, effect, prefix+"-0001", property.Enum[model.ScaleMode]),
		TimeRemap: property.Named(s, h, effect, prefix+"-0002", toFrame),
	}
	if (!v2 || !s.Supports(session.TagImageFillRuleV2)) && rule.TimeRemap.Animatable() {
		for _, k := range rule.TimeRemap.Keyframes {
			k.Interpolation = model.Linear
			k.BezierOut, k.BezierIn = nil, nil
		}
	}
	return rule
}

func isNumeric(t host.ValueType) bool {
	switch t {
	case host.Value1D, host.Value2D, host.Value2DSpatial, host.Value3D, host.Value3DSpatial, host.ValueColor:
		return true
	}
	return false
}
