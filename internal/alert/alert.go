// Package alert defines the categorized diagnostics recorded during an export.
package alert

import (
	"fmt"
	"strings"
)

type Category int

// Warnings come first. Every category after OtherWarning is an error.
const (
	UnknownWarning Category = iota
	UnsupportedEffects
	UnsupportedLayerStyle
	Expression
	VideoSequenceNoContent
	ContinuousSequence
	BmpLayerButVectorComp
	NoPrecompLayerWithBmpName
	SameSequence
	StaticVideoSequence
	AudioEncodeFail
	TextBackgroundOnlyTextLayer
	ImageFillRuleOnlyImageLayer
	ImageFillRuleOnlyOne
	TagLevelImageFillRule
	TagLevelImageFillRuleV2
	VideoTrackLayerRepeatRef
	VideoTrackRefSameSource
	VideoTrackPeakNum
	VideoPlayBackward
	VideoSpeedTooFast
	VideoTimeTooShort
	VideoTrackTimeCover
	TagLevelVerticalText
	TagLevelMotionBlur
	AdjustmentLayer
	CameraLayer
	Layer3D
	LayerTimeRemapping
	EffectAndStylePickNum
	LayerNum
	VideoSequenceInUiScene
	MarkerJsonHasChinese
	MarkerJsonGrammar
	RangeSelectorUnitsIndex
	RangeSelectorBasedOn
	RangeSelectorSmoothness
	WigglySelectorBasedOn
	GraphicsMemory
	GraphicsMemoryUI
	ImageNum
	BmpCompositionNum
	FontSmallAndScaleLarge
	FontFileTooBig
	TextPathParamPerpendicularToPath
	TextPathParamForceAlignment
	TextPathVertical
	TextPathBoxText
	TextPathAnimator
	VideoCompositionOverlap
	OtherWarning

	UnknownError
	ExportAEError
	ExportBitmapSequenceError
	ExportVideoSequenceError
	ExportAudioError
	WebpEncodeError
	ExportRenderError
	CompositionHandleNotFound
	DisplacementMapRefSelf
	ExportRangeSelectorError
	PAGVerifyError
	OtherError
)

var categoryNames = map[Category]string{
	UnknownWarning:                   "unknown_warning",
	UnsupportedEffects:               "unsupported_effects",
	UnsupportedLayerStyle:            "unsupported_layer_style",
	Expression:                       "expression",
	VideoSequenceNoContent:           "video_sequence_no_content",
	ContinuousSequence:               "continuous_sequence",
	BmpLayerButVectorComp:            "bmp_layer_but_vector_comp",
	NoPrecompLayerWithBmpName:        "no_precomp_layer_with_bmp_name",
	SameSequence:                     "same_sequence",
	StaticVideoSequence:              "static_video_sequence",
	AudioEncodeFail:                  "audio_encode_fail",
	TextBackgroundOnlyTextLayer:      "text_background_only_text_layer",
	ImageFillRuleOnlyImageLayer:      "image_fill_rule_only_image_layer",
	ImageFillRuleOnlyOne:             "image_fill_rule_only_one",
	TagLevelImageFillRule:            "tag_level_image_fill_rule",
	TagLevelImageFillRuleV2:          "tag_level_image_fill_rule_v2",
	VideoTrackLayerRepeatRef:         "video_track_layer_repeat_ref",
	VideoTrackRefSameSource:          "video_track_ref_same_source",
	VideoTrackPeakNum:                "video_track_peak_num",
	VideoPlayBackward:                "video_play_backward",
	VideoSpeedTooFast:                "video_speed_too_fast",
	VideoTimeTooShort:                "video_time_too_short",
	VideoTrackTimeCover:              "video_track_time_cover",
	TagLevelVerticalText:             "tag_level_vertical_text",
	TagLevelMotionBlur:               "tag_level_motion_blur",
	AdjustmentLayer:                  "adjustment_layer",
	CameraLayer:                      "camera_layer",
	Layer3D:                          "layer_3d",
	LayerTimeRemapping:               "layer_time_remapping",
	EffectAndStylePickNum:            "effect_and_style_peak_num",
	LayerNum:                         "layer_num",
	VideoSequenceInUiScene:           "video_sequence_in_ui_scene",
	MarkerJsonHasChinese:             "marker_json_has_chinese",
	MarkerJsonGrammar:                "marker_json_grammar",
	RangeSelectorUnitsIndex:          "range_selector_units_index",
	RangeSelectorBasedOn:             "range_selector_based_on",
	RangeSelectorSmoothness:          "range_selector_smoothness",
	WigglySelectorBasedOn:            "wiggly_selector_based_on",
	GraphicsMemory:                   "graphics_memory",
	GraphicsMemoryUI:                 "graphics_memory_ui",
	ImageNum:                         "image_num",
	BmpCompositionNum:                "bmp_composition_num",
	FontSmallAndScaleLarge:           "font_small_and_scale_large",
	FontFileTooBig:                   "font_file_too_big",
	TextPathParamPerpendicularToPath: "text_path_param_perpendicular_to_path",
	TextPathParamForceAlignment:      "text_path_param_force_alignment",
	TextPathVertical:                 "text_path_vertical",
	TextPathBoxText:                  "text_path_box_text",
	TextPathAnimator:                 "text_path_animator",
	VideoCompositionOverlap:          "video_composition_overlap",
	OtherWarning:                     "other_warning",
	UnknownError:                     "unknown_error",
	ExportAEError:                    "export_host_error",
	ExportBitmapSequenceError:        "export_bitmap_sequence_error",
	ExportVideoSequenceError:         "export_video_sequence_error",
	ExportAudioError:                 "export_audio_error",
	WebpEncodeError:                  "webp_encode_error",
	ExportRenderError:                "export_render_error",
	CompositionHandleNotFound:        "composition_handle_not_found",
	DisplacementMapRefSelf:           "displacement_map_ref_self",
	ExportRangeSelectorError:         "export_range_selector_error",
	PAGVerifyError:                   "verify_error",
	OtherError:                       "other_error",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// IsError reports whether the category is an error rather than a warning.
func (c Category) IsError() bool {
	return c > OtherWarning
}

// ParseCategory is the inverse of Category.String.
func ParseCategory(name string) (Category, bool) {
	for c, n := range categoryNames {
		if n == name {
			return c, true
		}
	}
	return UnknownWarning, false
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	v, ok := ParseCategory(string(b))
	if !ok {
		return fmt.Errorf("unknown alert category %q", string(b))
	}
	*c = v
	return nil
}

// Warning is one diagnostic attributed to a composition and layer.
type Warning struct {
	Category        Category `json:"category"`
	CompositionID   uint32   `json:"composition_id"`
	LayerID         uint32   `json:"layer_id"`
	CompositionName string   `json:"composition_name"`
	LayerName       string   `json:"layer_name"`
	Info            string   `json:"info"`
	Suggest         string   `json:"suggest"`
}

// New builds a warning with the category's texts.
func New(c Category, addInfo string) Warning {
	info, suggest := Describe(c, addInfo)
	return Warning{Category: c, Info: info, Suggest: suggest}
}

func (w Warning) IsError() bool {
	return w.Category.IsError()
}

// Message renders the warning as "[comp] > [layer]:info suggest".
func (w Warning) Message() string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(w.CompositionName)
	b.WriteString("] > [")
	b.WriteString(w.LayerName)
	b.WriteString("]:")
	b.WriteString(w.Info)
	b.WriteString(" ")
	b.WriteString(w.Suggest)
	return b.String()
}

// Split separates errors from warnings, keeping the original order in each.
func Split(all []Warning) (errs, warnings []Warning) {
	for _, w := range all {
		if w.IsError() {
			errs = append(errs, w)
		} else {
			warnings = append(warnings, w)
		}
	}
	return errs, warnings
}
