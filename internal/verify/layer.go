package verify

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/heimdex/pagexport/internal/alert"
	"github.com/heimdex/pagexport/internal/model"
	"github.com/heimdex/pagexport/internal/session"
	"golang.org/x/text/width"
)

const (
	largeScale    = 5
	smallFontSize = 5
)

func checkLayer(s *session.Session, comp *model.Composition, layer *model.Layer) {
	push := func(c alert.Category, addInfo string) {
		s.PushWarningAt(c, comp.ID, layer.ID, addInfo)
	}

	checkMarkers(layer, push)
	for _, e := range layer.Effects {
		if e.Type == model.EffectDisplacementMap && e.DisplacementMapLayer == layer.ID {
			push(alert.DisplacementMapRefSelf, "")
		}
	}

	traits := s.Traits(layer.ID)
	if traits.Adjustment {
		push(alert.AdjustmentLayer, "")
	}
	if traits.TimeRemapping {
		push(alert.LayerTimeRemapping, "")
	}
	if traits.ThreeD && !s.Supports(session.TagTransform3D) {
		push(alert.Layer3D, "")
	}
	if traits.MotionBlur && !s.Supports(session.TagLayerAttributesExtra) {
		push(alert.TagLevelMotionBlur, "")
	}

	if text, ok := layer.Content.(*model.Text); ok {
		checkTextSelectors(text, push)
		checkTextScale(layer, text, push)
		checkTextPath(text, push)
	}
}

// checkMarkers flags comments that look like JSON but do not parse.
func checkMarkers(layer *model.Layer, push func(alert.Category, string)) {
	for _, m := range layer.Markers {
		if json.Valid([]byte(m.Comment)) {
			continue
		}
		if !strings.Contains(m.Comment, "{") || !strings.Contains(m.Comment, "}") {
			continue
		}
		if hasWideOutsideQuotes(m.Comment) {
			push(alert.MarkerJsonHasChinese, m.Comment)
		} else {
			push(alert.MarkerJsonGrammar, m.Comment)
		}
	}
}

// hasWideOutsideQuotes reports an East Asian wide, fullwidth or ambiguous
// character outside a double quoted string, typically a curly quote or a
// fullwidth colon. This is narrower than flagging every non-ASCII rune:
// neutral-width letters such as ç fall through to the grammar warning.
func hasWideOutsideQuotes(comment string) bool {
	quoted := false
	for _, r := range comment {
		if r == '"' {
			quoted = !quoted
			continue
		}
		if quoted {
			continue
		}
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth, width.EastAsianAmbiguous:
			return true
		}
	}
	return false
}

var basedOnNames = map[model.SelectorBasedOn]string{
	model.BasedOnCharacters:                "characters",
	model.BasedOnCharactersExcludingSpaces: "characters excluding spaces",
	model.BasedOnWords:                     "words",
	model.BasedOnLines:                     "lines",
}

func basedOnName(b model.SelectorBasedOn) string {
	if name, ok := basedOnNames[b]; ok {
		return name
	}
	return "unknown"
}

func checkTextSelectors(text *model.Text, push func(alert.Category, string)) {
	for _, animator := range text.Animators {
		for _, sel := range animator.Selectors {
			if !sel.Verify() {
				push(alert.ExportRangeSelectorError, "")
			}
			switch sel.Type {
			case model.SelectorRange:
				if sel.Units != model.UnitsPercentage {
					push(alert.RangeSelectorUnitsIndex, "")
				}
				if sel.BasedOn != model.BasedOnCharacters {
					push(alert.RangeSelectorBasedOn, basedOnName(sel.BasedOn))
				}
				if sel.Shape == model.ShapeSquare && sel.Smoothness != nil {
					if v, ok := sel.Smoothness.StaticValue(); !ok || v != 1 {
						push(alert.RangeSelectorSmoothness, "")
					}
				}
			case model.SelectorWiggly:
				if sel.BasedOn != model.BasedOnCharacters {
					push(alert.WigglySelectorBasedOn, basedOnName(sel.BasedOn))
				}
			}
		}
	}
}

// checkTextScale warns about a tiny font blown up by a large static scale,
// which renders blurry.
func checkTextScale(layer *model.Layer, text *model.Text, push func(alert.Category, string)) {
	if layer.Transform == nil {
		return
	}
	scale, ok := layer.Transform.Scale.StaticValue()
	if !ok {
		return
	}
	minScale := min(scale.X, scale.Y)
	if minScale < largeScale {
		return
	}
	doc, ok := text.SourceText.StaticValue()
	if !ok || doc == nil {
		return
	}
	if doc.FontSize <= smallFontSize {
		push(alert.FontSmallAndScaleLarge, strconv.Itoa(int(minScale)))
	}
}

func checkTextPath(text *model.Text, push func(alert.Category, string)) {
	opt := text.PathOption
	if opt == nil || opt.MaskID == 0 {
		return
	}
	if v, ok := opt.PerpendicularToPath.StaticValue(); !ok || !v {
		push(alert.TextPathParamPerpendicularToPath, "")
	}
	if v, ok := opt.ForceAlignment.StaticValue(); !ok || v {
		push(alert.TextPathParamForceAlignment, "")
	}
	if hasVerticalText(text.SourceText) {
		push(alert.TextPathVertical, "")
	}
	if len(text.Animators) > 0 {
		push(alert.TextPathAnimator, "")
	}
}

func hasVerticalText(p *model.Property[*model.TextDocument]) bool {
	if p == nil {
		return false
	}
	if !p.Animatable() {
		return p.Value != nil && p.Value.Direction == model.TextDirectionVertical
	}
	for _, k := range p.Keyframes {
		for _, d := range []*model.TextDocument{k.StartValue, k.EndValue} {
			if d != nil && d.Direction == model.TextDirectionVertical {
				return true
			}
		}
	}
	return false
}
