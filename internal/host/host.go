// Package host defines the query interface of the timeline provider and a
// YAML document implementation of it.
package host

import (
	"errors"

	"github.com/heimdex/pagexport/internal/curve"
	"github.com/heimdex/pagexport/internal/model"
)

var ErrNotFound = errors.New("not found")

// StreamID is an opaque handle to a parameter stream or stream group.
type StreamID int

// Host answers queries about a frozen timeline. Calls are made sequentially
// by one export run.
type Host interface {
	Item(id model.ID) (ItemInfo, error)
	NumLayers(comp model.ID) (int, error)
	Layer(comp model.ID, index int) (LayerInfo, error)
	Markers(layer model.ID) ([]MarkerInfo, error)

	// LayerStream returns a top level stream group of a layer by match name.
	LayerStream(layer model.ID, matchName string) (StreamID, error)
	NumStreams(group StreamID) (int, error)
	StreamByIndex(group StreamID, index int) (StreamID, error)
	StreamByName(group StreamID, matchName string) (StreamID, error)
	StreamInfo(stream StreamID) (StreamInfo, error)
	StreamValue(stream StreamID) (Value, error)
	NumKeys(stream StreamID) (int, error)
	Key(stream StreamID, index int) (Key, error)
}

type ItemType int

const (
	ItemComposition ItemType = iota
	ItemFootage
)

// ItemInfo describes a project item. Times are in seconds.
type ItemInfo struct {
	ID               model.ID          `yaml:"id"`
	Type             ItemType          `yaml:"type"`
	Name             string            `yaml:"name"`
	Width            int32             `yaml:"width"`
	Height           int32             `yaml:"height"`
	FrameRate        float32           `yaml:"frame_rate,omitempty"`
	Duration         float64           `yaml:"duration,omitempty"`
	BackgroundColor  model.Color       `yaml:"background_color,omitempty"`
	WorkAreaStart    float64           `yaml:"work_area_start,omitempty"`
	WorkAreaDuration float64           `yaml:"work_area_duration,omitempty"`
	Still            bool              `yaml:"still,omitempty"`
	Solid            bool              `yaml:"solid,omitempty"`
	SolidColor       model.Color       `yaml:"solid_color,omitempty"`
	HasVideo         bool              `yaml:"has_video,omitempty"`
	HasAudio         bool              `yaml:"has_audio,omitempty"`
	Missing          bool              `yaml:"missing,omitempty"`
	StaticTimeRanges []model.TimeRange `yaml:"static_time_ranges,omitempty"`
	FrameDigests     []string          `yaml:"frame_digests,omitempty"`
}

type LayerFlags uint32

const (
	FlagVideoActive LayerFlags = 1 << iota
	FlagSolo
	FlagNull
	FlagGuide
	FlagAdjustment
	Flag3D
	FlagTimeRemapping
	FlagMotionBlur
	FlagLookAtPOI
	FlagAutoOrient
)

func (f LayerFlags) Has(flag LayerFlags) bool {
	return f&flag != 0
}

type ObjectType int

const (
	ObjectAV ObjectType = iota
	ObjectVector
	ObjectText
	ObjectCamera
	ObjectLight
	ObjectNone
)

// LayerInfo describes one layer. Times are in seconds.
type LayerInfo struct {
	ID             model.ID             `yaml:"id"`
	Name           string               `yaml:"name"`
	Flags          LayerFlags           `yaml:"flags,omitempty"`
	Object         ObjectType           `yaml:"object"`
	Source         model.ID             `yaml:"source,omitempty"`
	Parent         model.ID             `yaml:"parent,omitempty"`
	InPoint        float64              `yaml:"in_point"`
	Duration       float64              `yaml:"duration"`
	Offset         float64              `yaml:"offset,omitempty"`
	Stretch        *model.Ratio         `yaml:"stretch,omitempty"`
	BlendMode      model.BlendMode      `yaml:"blend_mode,omitempty"`
	TrackMatte     model.TrackMatteType `yaml:"track_matte,omitempty"`
	TrackMatteFrom model.ID             `yaml:"track_matte_layer,omitempty"`
}

type MarkerInfo struct {
	Time     float64 `yaml:"time"`
	Duration float64 `yaml:"duration,omitempty"`
	Comment  string  `yaml:"comment"`
}

type ValueType int

const (
	ValueNoData ValueType = iota
	ValueGroup
	Value1D
	Value2D
	Value2DSpatial
	Value3D
	Value3DSpatial
	ValueColor
	ValueArbitrary
	ValueLayerID
	ValueMaskID
	ValueMask
	ValueTextDocument
)

// Kind maps a host value type onto the speed classification of the curve
// engine.
func (t ValueType) Kind() curve.ValueKind {
	switch t {
	case ValueNoData:
		return curve.KindNoData
	case Value1D, ValueLayerID, ValueMaskID:
		return curve.KindOneD
	case Value2D:
		return curve.KindTwoD
	case Value2DSpatial:
		return curve.KindTwoDSpatial
	case Value3D:
		return curve.KindThreeD
	case Value3DSpatial:
		return curve.KindThreeDSpatial
	case ValueColor:
		return curve.KindColor
	case ValueMask:
		return curve.KindMask
	}
	return curve.KindOther
}

type StreamInfo struct {
	MatchName         string    `yaml:"match_name"`
	Name              string    `yaml:"name,omitempty"`
	Type              ValueType `yaml:"type,omitempty"`
	Dimensionality    int       `yaml:"dimensionality,omitempty"`
	CanVary           bool      `yaml:"can_vary,omitempty"`
	Hidden            bool      `yaml:"hidden,omitempty"`
	Disabled          bool      `yaml:"disabled,omitempty"`
	Separated         bool      `yaml:"separated,omitempty"`
	Expression        string    `yaml:"expression,omitempty"`
	ExpressionEnabled bool      `yaml:"expression_enabled,omitempty"`
}

// Active reports whether the stream is enabled.
func (s StreamInfo) Active() bool {
	return !s.Disabled
}

// Value is a raw stream value. Numbers holds the components of numeric data;
// colors are in 0..1.
type Value struct {
	Numbers []float64           `yaml:"numbers,omitempty,flow"`
	Path    *model.PathData     `yaml:"path,omitempty"`
	Text    *model.TextDocument `yaml:"text,omitempty"`
}

// Number returns component i or zero.
func (v Value) Number(i int) float64 {
	if i < len(v.Numbers) {
		return v.Numbers[i]
	}
	return 0
}

type KeyInterpolation int

const (
	InterpLinear KeyInterpolation = iota
	InterpBezier
	InterpHold
)

// Key is one keyframe. Ease samples are per dimension. Tangents are only
// meaningful on spatial streams.
type Key struct {
	Time             float64          `yaml:"time"`
	Value            Value            `yaml:"value"`
	InInterpolation  KeyInterpolation `yaml:"in,omitempty"`
	OutInterpolation KeyInterpolation `yaml:"out,omitempty"`
	InEase           []curve.Ease     `yaml:"in_ease,omitempty"`
	OutEase          []curve.Ease     `yaml:"out_ease,omitempty"`
	InTangent        *model.Point3D   `yaml:"in_tangent,omitempty"`
	OutTangent       *model.Point3D   `yaml:"out_tangent,omitempty"`
	Roving           bool             `yaml:"roving,omitempty"`
}

// Stream group and parameter match names.
const (
	GroupTransform = "ADBE Transform Group"
	GroupMasks     = "ADBE Mask Parade"
	GroupEffects   = "ADBE Effect Parade"
	GroupStyles    = "ADBE Layer Styles"
	GroupText      = "ADBE Text Properties"
	GroupShapes    = "ADBE Root Vectors Group"
	GroupCamera    = "ADBE Camera Options Group"
	StreamTimeMap  = "ADBE Time Remapping"

	AnchorPoint = "ADBE Anchor Point"
	Position    = "ADBE Position"
	PositionX   = "ADBE Position_0"
	PositionY   = "ADBE Position_1"
	PositionZ   = "ADBE Position_2"
	Scale       = "ADBE Scale"
	Orientation = "ADBE Orientation"
	RotateX     = "ADBE Rotate X"
	RotateY     = "ADBE Rotate Y"
	RotateZ     = "ADBE Rotate Z"
	Opacity     = "ADBE Opacity"
)
