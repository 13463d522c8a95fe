package model

// PathData is a bezier path as stored in masks and shapes.
type PathData struct {
	Vertices    []Point `json:"vertices" yaml:"vertices"`
	InTangents  []Point `json:"in_tangents" yaml:"in_tangents"`
	OutTangents []Point `json:"out_tangents" yaml:"out_tangents"`
	Closed      bool    `json:"closed" yaml:"closed"`
}

type MaskMode int

const (
	MaskNone MaskMode = iota
	MaskAdd
	MaskSubtract
	MaskIntersect
	MaskLighten
	MaskDarken
	MaskDifference
	MaskAccum
)

type Mask struct {
	ID        ID                   `json:"id"`
	Inverted  bool                 `json:"inverted"`
	Mode      MaskMode             `json:"mode"`
	Path      *Property[*PathData] `json:"path"`
	Opacity   *Property[Opacity]   `json:"opacity"`
	Expansion *Property[float32]   `json:"expansion"`
	Feather   *Property[Point]     `json:"feather,omitempty"`
}

type EffectType int

const (
	EffectUnknown EffectType = iota
	EffectMotionTile
	EffectLevelsIndividual
	EffectCornerPin
	EffectBulge
	EffectFastBlur
	EffectGlow
	EffectDisplacementMap
	EffectRadialBlur
	EffectMosaic
	EffectBrightnessContrast
	EffectHueSaturation
	EffectGaussBlur
)

// Effect keeps the numeric parameter streams of a supported effect by match
// name. Mapping them onto effect specific fields belongs to the serializer.
type Effect struct {
	Type      EffectType                    `json:"type"`
	MatchName string                        `json:"match_name"`
	Active    bool                          `json:"active"`
	MaskIDs   []ID                          `json:"mask_ids,omitempty"`
	Params    map[string]*Property[float32] `json:"params,omitempty"`

	// DisplacementMapLayer is the layer a displacement map reads from.
	DisplacementMapLayer ID `json:"displacement_map_layer,omitempty"`
}

type LayerStyleType int

const (
	StyleUnknown LayerStyleType = iota
	StyleDropShadow
	StyleStroke
	StyleGradientOverlay
	StyleOuterGlow
)

type LayerStyle struct {
	Type      LayerStyleType                `json:"type"`
	MatchName string                        `json:"match_name"`
	BlendMode BlendMode                     `json:"blend_mode"`
	Params    map[string]*Property[float32] `json:"params,omitempty"`
}

type CachePolicy int

const (
	CacheAuto CachePolicy = iota
	CacheEnable
	CacheDisable
)

type Marker struct {
	StartTime Frame  `json:"start_time"`
	Duration  Frame  `json:"duration"`
	Comment   string `json:"comment"`
}

// VideoTrackMarker is the comment injected on video layers.
const VideoTrackMarker = `{"videoTrack":1}`

type ScaleMode int

const (
	ScaleNone ScaleMode = iota
	ScaleStretch
	ScaleLetterBox
	ScaleZoom
)

// ImageFillRule controls how replacement images and videos fill a layer.
type ImageFillRule struct {
	ScaleMode ScaleMode        `json:"scale_mode"`
	TimeRemap *Property[Frame] `json:"time_remap,omitempty"`
}

type TextBackground struct {
	Color   *Property[Color]   `json:"color"`
	Opacity *Property[Opacity] `json:"opacity"`
	Padding *Property[float32] `json:"padding"`
	Radius  *Property[float32] `json:"radius"`
}
