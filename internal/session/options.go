package session

import (
	"fmt"
	"strings"
)

// TagCode identifies a container feature. A feature can be emitted when the
// export tag level is at least its code.
type TagCode uint16

const (
	TagVideoSequence        TagCode = 51
	TagMarkerList           TagCode = 53
	TagImageFillRule        TagCode = 54
	TagLayerAttributesExtra TagCode = 63
	TagDisplacementMap      TagCode = 66
	TagImageFillRuleV2      TagCode = 67
	TagTextSourceV3         TagCode = 68
	TagTextPathOption       TagCode = 69
	TagTextAnimator         TagCode = 70
	TagRadialBlurEffect     TagCode = 81
	TagMosaicEffect         TagCode = 82
	TagEditableIndices      TagCode = 83
	TagTransform3D          TagCode = 84
	TagCameraOption         TagCode = 85
	TagStrokeStyle          TagCode = 86
	TagOuterGlowStyle       TagCode = 87
	TagImageScaleModes      TagCode = 88
)

const (
	TagLevelMin    uint16 = uint16(TagMarkerList)
	TagLevelStable uint16 = uint16(TagEditableIndices)
	TagLevelMax    uint16 = uint16(TagImageScaleModes)
)

type TagMode int

const (
	TagModeStable TagMode = iota
	TagModeBeta
	TagModeCustom
)

// ParseTagMode accepts "stable", "beta" and "custom".
func ParseTagMode(s string) (TagMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stable":
		return TagModeStable, nil
	case "beta":
		return TagModeBeta, nil
	case "custom":
		return TagModeCustom, nil
	}
	return TagModeStable, fmt.Errorf("unknown tag mode %q", s)
}

func (m TagMode) String() string {
	switch m {
	case TagModeBeta:
		return "beta"
	case TagModeCustom:
		return "custom"
	}
	return "stable"
}

type Scenes int

const (
	ScenesGeneral Scenes = iota
	ScenesUI
)

func ParseScenes(s string) (Scenes, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "general":
		return ScenesGeneral, nil
	case "ui":
		return ScenesUI, nil
	}
	return ScenesGeneral, fmt.Errorf("unknown scenes %q", s)
}

func (s Scenes) String() string {
	if s == ScenesUI {
		return "ui"
	}
	return "general"
}

type SequenceType int

const (
	SequenceBitmap SequenceType = 1
	SequenceVideo  SequenceType = 2
)

const (
	DefaultFrameRate       float32 = 24
	DefaultSequenceSuffix          = "_bmp"
	DefaultImageQuality            = 80
	DefaultImagePixelRatio float32 = 2
	DefaultSequenceQuality         = 80
)

// Options are the user settings of one export.
type Options struct {
	TagMode  TagMode `json:"tag_mode"`
	TagLevel uint16  `json:"tag_level"`

	// FrameRate is the frame rate of rendered sequence compositions.
	FrameRate float32 `json:"frame_rate"`

	Scenes                Scenes       `json:"scenes"`
	SequenceSuffix        string       `json:"sequence_suffix"`
	SequenceType          SequenceType `json:"sequence_type"`
	SequenceQuality       int          `json:"sequence_quality"`
	ImageQuality          int          `json:"image_quality"`
	ImagePixelRatio       float32      `json:"image_pixel_ratio"`
	ExportStaticCompAsBmp bool         `json:"export_static_comp_as_bmp"`
}

func DefaultOptions() Options {
	return Options{
		TagMode:         TagModeStable,
		TagLevel:        TagLevelStable,
		FrameRate:       DefaultFrameRate,
		Scenes:          ScenesGeneral,
		SequenceSuffix:  DefaultSequenceSuffix,
		SequenceType:    SequenceVideo,
		SequenceQuality: DefaultSequenceQuality,
		ImageQuality:    DefaultImageQuality,
		ImagePixelRatio: DefaultImagePixelRatio,
	}
}

// Normalize clamps every option into its valid range and resolves the tag
// level from the tag mode.
func (o Options) Normalize() Options {
	defaults := DefaultOptions()

	o.FrameRate = clamp(o.FrameRate, 0.01, 120)

	switch o.TagMode {
	case TagModeBeta:
		o.TagLevel = TagLevelMax
	case TagModeStable:
		o.TagLevel = TagLevelStable
	case TagModeCustom:
	default:
		o.TagMode = TagModeStable
		o.TagLevel = TagLevelStable
	}
	o.TagLevel = clamp(o.TagLevel, TagLevelMin, TagLevelMax)

	o.ImageQuality = clamp(o.ImageQuality, 0, 100)
	o.ImagePixelRatio = clamp(o.ImagePixelRatio, 1, 3)

	o.SequenceSuffix = strings.ToLower(o.SequenceSuffix)
	if o.SequenceSuffix == "" {
		o.SequenceSuffix = defaults.SequenceSuffix
	}
	if o.SequenceType != SequenceVideo && o.SequenceType != SequenceBitmap {
		o.SequenceType = defaults.SequenceType
	}
	o.SequenceQuality = clamp(o.SequenceQuality, 0, 100)
	return o
}

// Supports reports whether the tag level allows the feature.
func (o Options) Supports(tag TagCode) bool {
	return o.TagLevel >= uint16(tag)
}

func clamp[T int | uint16 | float32](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
