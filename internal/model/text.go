package model

type TextDirection int

const (
	TextDirectionDefault TextDirection = iota
	TextDirectionHorizontal
	TextDirectionVertical
)

type Justification int

const (
	JustifyLeft Justification = iota
	JustifyCenter
	JustifyRight
	JustifyLastLineLeft
	JustifyLastLineRight
	JustifyLastLineCenter
	JustifyLastLineFull
)

type TextDocument struct {
	Text          string        `json:"text" yaml:"text"`
	FontFamily    string        `json:"font_family" yaml:"font_family"`
	FontStyle     string        `json:"font_style" yaml:"font_style"`
	FontSize      float32       `json:"font_size" yaml:"font_size"`
	FillColor     Color         `json:"fill_color" yaml:"fill_color"`
	StrokeColor   Color         `json:"stroke_color" yaml:"stroke_color"`
	StrokeWidth   float32       `json:"stroke_width" yaml:"stroke_width"`
	ApplyFill     bool          `json:"apply_fill" yaml:"apply_fill"`
	ApplyStroke   bool          `json:"apply_stroke" yaml:"apply_stroke"`
	Justification Justification `json:"justification" yaml:"justification"`
	Leading       float32       `json:"leading" yaml:"leading"`
	Tracking      float32       `json:"tracking" yaml:"tracking"`
	Direction     TextDirection `json:"direction" yaml:"direction"`
	BoxText       bool          `json:"box_text" yaml:"box_text"`
	BoxTextPos    Point         `json:"box_text_pos" yaml:"box_text_pos"`
	BoxTextSize   Point         `json:"box_text_size" yaml:"box_text_size"`
	FirstBaseLine float32       `json:"first_base_line" yaml:"first_base_line"`
}

type TextPathOptions struct {
	MaskID              ID                 `json:"mask_id"`
	ReversedPath        *Property[bool]    `json:"reversed_path"`
	PerpendicularToPath *Property[bool]    `json:"perpendicular_to_path"`
	ForceAlignment      *Property[bool]    `json:"force_alignment"`
	FirstMargin         *Property[float32] `json:"first_margin"`
	LastMargin          *Property[float32] `json:"last_margin"`
}

type TextMoreOptions struct {
	AnchorPointGrouping int              `json:"anchor_point_grouping"`
	GroupingAlignment   *Property[Point] `json:"grouping_alignment"`
}

type SelectorType int

const (
	SelectorRange SelectorType = iota
	SelectorWiggly
)

type SelectorUnits int

const (
	UnitsPercentage SelectorUnits = iota
	UnitsIndex
)

type SelectorBasedOn int

const (
	BasedOnCharacters SelectorBasedOn = iota
	BasedOnCharactersExcludingSpaces
	BasedOnWords
	BasedOnLines
)

type SelectorShape int

const (
	ShapeSquare SelectorShape = iota
	ShapeRampUp
	ShapeRampDown
	ShapeTriangle
	ShapeRound
	ShapeSmooth
)

// TextSelector is a range or wiggly selector of a text animator.
type TextSelector struct {
	Type SelectorType `json:"type"`

	Units          SelectorUnits      `json:"units"`
	BasedOn        SelectorBasedOn    `json:"based_on"`
	Shape          SelectorShape      `json:"shape"`
	Mode           *Property[int]     `json:"mode"`
	Start          *Property[float32] `json:"start,omitempty"`
	End            *Property[float32] `json:"end,omitempty"`
	Offset         *Property[float32] `json:"offset,omitempty"`
	Amount         *Property[float32] `json:"amount,omitempty"`
	Smoothness     *Property[float32] `json:"smoothness,omitempty"`
	EaseHigh       *Property[float32] `json:"ease_high,omitempty"`
	EaseLow        *Property[float32] `json:"ease_low,omitempty"`
	RandomizeOrder bool               `json:"randomize_order,omitempty"`

	MaxAmount        *Property[float32] `json:"max_amount,omitempty"`
	MinAmount        *Property[float32] `json:"min_amount,omitempty"`
	WigglesPerSecond *Property[float32] `json:"wiggles_per_second,omitempty"`
	Correlation      *Property[float32] `json:"correlation,omitempty"`
	TemporalPhase    *Property[float32] `json:"temporal_phase,omitempty"`
	SpatialPhase     *Property[float32] `json:"spatial_phase,omitempty"`
	LockDimensions   *Property[bool]    `json:"lock_dimensions,omitempty"`
	RandomSeed       *Property[float32] `json:"random_seed,omitempty"`
}

// Verify reports whether every property the selector type needs is present.
func (s *TextSelector) Verify() bool {
	if s == nil || s.Mode == nil {
		return false
	}
	switch s.Type {
	case SelectorRange:
		return s.Start != nil && s.End != nil && s.Offset != nil && s.Amount != nil &&
			s.Smoothness != nil && s.EaseHigh != nil && s.EaseLow != nil
	case SelectorWiggly:
		return s.MaxAmount != nil && s.MinAmount != nil && s.WigglesPerSecond != nil &&
			s.Correlation != nil && s.TemporalPhase != nil && s.SpatialPhase != nil
	}
	return false
}

type TextAnimator struct {
	Selectors   []*TextSelector    `json:"selectors"`
	FillColor   *Property[Color]   `json:"fill_color,omitempty"`
	StrokeColor *Property[Color]   `json:"stroke_color,omitempty"`
	Tracking    *Property[float32] `json:"tracking,omitempty"`
	Position    *Property[Point]   `json:"position,omitempty"`
	Scale       *Property[Point]   `json:"scale,omitempty"`
	Rotation    *Property[float32] `json:"rotation,omitempty"`
	Opacity     *Property[Opacity] `json:"opacity,omitempty"`
}

// HasProperties reports whether the animator changes anything.
func (a *TextAnimator) HasProperties() bool {
	return a.FillColor != nil || a.StrokeColor != nil || a.Tracking != nil ||
		a.Position != nil || a.Scale != nil || a.Rotation != nil || a.Opacity != nil
}
