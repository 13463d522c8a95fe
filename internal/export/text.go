package export

import (
	"github.com/heimdex/pagexport/internal/alert"
	"github.com/heimdex/pagexport/internal/host"
	"github.com/heimdex/pagexport/internal/model"
	"github.com/heimdex/pagexport/internal/property"
	"github.com/heimdex/pagexport/internal/session"
)

const (
	textDocument          = "ADBE Text Document"
	textPathOptions       = "ADBE Text Path Options"
	textMoreOptions       = "ADBE Text More Options"
	textAnimators         = "ADBE Text Animators"
	textAnimator          = "ADBE Text Animator"
	textSelectors         = "ADBE Text Selectors"
	textAnimatorProps     = "ADBE Text Animator Properties"
	textRangeSelector     = "ADBE Text Selector"
	textWigglySelector    = "ADBE Text Wiggly Selector"
	textExpressibleSelect = "ADBE Text Expressible Selector"
	textRangeAdvanced     = "ADBE Text Range Advanced"
)

func exportText(s *session.Session, h host.Host, layerID model.ID) *model.Text {
	text := &model.Text{}
	group, ok := visibleGroup(s, h, layerID, host.GroupText)
	if !ok {
		text.SourceText = model.Static(&model.TextDocument{})
		return text
	}

	for _, c := range children(s, h, group) {
		switch c.info.MatchName {
		case textDocument:
			text.SourceText = property.Convert(s, h, c.id, property.TextDocument)
			checkTextDirection(s, text.SourceText)
		case textPathOptions:
			if s.Supports(session.TagTextPathOption) {
				text.PathOption = exportTextPathOptions(s, h, c.id)
			}
		case textMoreOptions:
			text.MoreOption = &model.TextMoreOptions{
				AnchorPointGrouping: property.Value(s, h, c.id, "ADBE Text Anchor Point Option", property.Enum[int]),
				GroupingAlignment:   orStatic(property.Named(s, h, c.id, "ADBE Text Anchor Point Align", property.Point), model.Point{}),
			}
		case textAnimators:
			if s.Supports(session.TagTextAnimator) {
				text.Animators = append(text.Animators, exportTextAnimators(s, h, c.id)...)
			}
		}
	}
	if text.SourceText == nil {
		text.SourceText = model.Static(&model.TextDocument{})
	}
	return text
}

// checkTextDirection resets the direction of every document to default
// unless vertical text is present and the tag level can carry it.
func checkTextDirection(s *session.Session, p *model.Property[*model.TextDocument]) {
	docs := []*model.TextDocument{p.Value}
	for _, k := range p.Keyframes {
		docs = append(docs, k.StartValue, k.EndValue)
	}

	vertical := false
	for _, d := range docs {
		if d != nil && d.Direction == model.TextDirectionVertical {
			vertical = true
			break
		}
	}
	supported := s.Supports(session.TagTextSourceV3)
	if !vertical || !supported {
		for _, d := range docs {
			if d != nil {
				d.Direction = model.TextDirectionDefault
			}
		}
	}
	if vertical && !supported {
		s.PushWarning(alert.TagLevelVerticalText, "")
	}
}

func exportTextPathOptions(s *session.Session, h host.Host, group host.StreamID) *model.TextPathOptions {
	maskID := property.Value(s, h, group, "ADBE Text Path", property.LayerID)
	if maskID == 0 {
		return nil
	}
	return &model.TextPathOptions{
		MaskID:              maskID,
		ReversedPath:        orStatic(property.Named(s, h, group, "ADBE Text Reverse Path", property.Bool), false),
		PerpendicularToPath: orStatic(property.Named(s, h, group, "ADBE Text Perpendicular To Path", property.Bool), true),
		ForceAlignment:      orStatic(property.Named(s, h, group, "ADBE Text Force Align Path", property.Bool), false),
		FirstMargin:         orStatic(property.Named(s, h, group, "ADBE Text First Margin", property.Float), 0),
		LastMargin:          orStatic(property.Named(s, h, group, "ADBE Text Last Margin", property.Float), 0),
	}
}

func exportTextAnimators(s *session.Session, h host.Host, group host.StreamID) []*model.TextAnimator {
	var animators []*model.TextAnimator
	for _, c := range children(s, h, group) {
		if c.info.MatchName != textAnimator {
			continue
		}
		animator := &model.TextAnimator{}
		for _, part := range children(s, h, c.id) {
			switch part.info.MatchName {
			case textSelectors:
				animator.Selectors = append(animator.Selectors, exportTextSelectors(s, h, part.id)...)
			case textAnimatorProps:
				exportAnimatorProperties(s, h, part.id, animator)
			}
		}
		if animator.HasProperties() {
			animators = append(animators, animator)
		}
	}
	return animators
}

func exportTextSelectors(s *session.Session, h host.Host, group host.StreamID) []*model.TextSelector {
	var selectors []*model.TextSelector
	for _, c := range children(s, h, group) {
		switch c.info.MatchName {
		case textRangeSelector:
			selectors = append(selectors, exportRangeSelector(s, h, c.id))
		case textWigglySelector:
			selectors = append(selectors, exportWigglySelector(s, h, c.id))
		case textExpressibleSelect:
			s.PushWarning(alert.ExportRangeSelectorError, c.info.MatchName)
		}
	}
	return selectors
}

func exportRangeSelector(s *session.Session, h host.Host, group host.StreamID) *model.TextSelector {
	sel := &model.TextSelector{
		Type:   model.SelectorRange,
		Start:  property.Named(s, h, group, "ADBE Text Percent Start", property.Percent),
		End:    property.Named(s, h, group, "ADBE Text Percent End", property.Percent),
		Offset: property.Named(s, h, group, "ADBE Text Percent Offset", property.Percent),
	}
	advanced, err := h.StreamByName(group, textRangeAdvanced)
	if err != nil {
		return sel
	}
	sel.Units = property.Value(s, h, advanced, "ADBE Text Range Units", property.Enum[model.SelectorUnits])
	sel.BasedOn = property.Value(s, h, advanced, "ADBE Text Range Type2", property.Enum[model.SelectorBasedOn])
	sel.Mode = property.Named(s, h, advanced, "ADBE Text Selector Mode", property.Enum[int])
	sel.Amount = property.Named(s, h, advanced, "ADBE Text Selector Max Amount", property.Percent)
	sel.Shape = property.Value(s, h, advanced, "ADBE Text Range Shape", property.Enum[model.SelectorShape])
	sel.Smoothness = property.Named(s, h, advanced, "ADBE Text Selector Smoothness", property.Percent)
	sel.EaseHigh = property.Named(s, h, advanced, "ADBE Text Levels Max Ease", property.Percent)
	sel.EaseLow = property.Named(s, h, advanced, "ADBE Text Levels Min Ease", property.Percent)
	sel.RandomizeOrder = property.Value(s, h, advanced, "ADBE Text Randomize Order", property.Bool)
	sel.RandomSeed = property.Named(s, h, advanced, "ADBE Text Random Seed", property.Float)
	return sel
}

func exportWigglySelector(s *session.Session, h host.Host, group host.StreamID) *model.TextSelector {
	return &model.TextSelector{
		Type:             model.SelectorWiggly,
		Mode:             property.Named(s, h, group, "ADBE Text Selector Mode", property.Enum[int]),
		MaxAmount:        property.Named(s, h, group, "ADBE Text Wiggly Max Amount", property.Percent),
		MinAmount:        property.Named(s, h, group, "ADBE Text Wiggly Min Amount", property.Percent),
		BasedOn:          property.Value(s, h, group, "ADBE Text Range Type2", property.Enum[model.SelectorBasedOn]),
		WigglesPerSecond: property.Named(s, h, group, "ADBE Text Temporal Freq", property.Float),
		Correlation:      property.Named(s, h, group, "ADBE Text Character Correlation", property.Percent),
		TemporalPhase:    property.Named(s, h, group, "ADBE Text Temporal Phase", property.Float),
		SpatialPhase:     property.Named(s, h, group, "ADBE Text Spatial Phase", property.Float),
		LockDimensions:   property.Named(s, h, group, "ADBE Text Wiggly Lock Dim", property.Bool),
		RandomSeed:       property.Named(s, h, group, "ADBE Text Wiggly Random Seed", property.Float),
	}
}

// exportAnimatorProperties reads the animated text properties. Properties
// left at their default static value are dropped.
func exportAnimatorProperties(s *session.Session, h host.Host, group host.StreamID, a *model.TextAnimator) {
	for _, c := range children(s, h, group) {
		switch c.info.MatchName {
		case "ADBE Text Fill Color":
			a.FillColor = property.Convert(s, h, c.id, property.Color)
		case "ADBE Text Stroke Color":
			a.StrokeColor = property.Convert(s, h, c.id, property.Color)
		case "ADBE Text Tracking Amount":
			a.Tracking = dropDefault(property.Convert(s, h, c.id, property.Float), 0)
		case "ADBE Text Position 3D":
			a.Position = dropDefault(property.Convert(s, h, c.id, property.Point), model.Point{})
		case "ADBE Text Scale 3D":
			a.Scale = dropDefault(property.Convert(s, h, c.id, property.Scale), model.Point{X: 1, Y: 1})
		case "ADBE Text Rotation":
			a.Rotation = dropDefault(property.Convert(s, h, c.id, property.Float), 0)
		case "ADBE Text Opacity":
			a.Opacity = dropDefault(property.Convert(s, h, c.id, property.Opacity), model.Opaque)
		}
	}
}

func dropDefault[T comparable](p *model.Property[T], def T) *model.Property[T] {
	if v, ok := p.StaticValue(); ok && v == def {
		return nil
	}
	return p
}
