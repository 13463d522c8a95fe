package alert

import "strings"

const raiseTagLevel = `Increase TagLevel: set the export tag mode to "beta". ` +
	`(Generated files may only be supported by newer SDK versions)`

type text struct {
	info    string
	suggest string
}

// Templates use {} for the additional info.
var texts = map[Category]text{
	UnsupportedEffects: {
		`Effect not supported: "{}".`,
		"Recommend removing this effect or redesigning with alternative methods.",
	},
	UnsupportedLayerStyle: {
		`Layer style not supported: "{}".`,
		"Recommend removing this layer style or redesigning with alternative methods.",
	},
	Expression: {
		"Expressions are not supported.",
		"Recommend removing expressions or converting them to keyframes.",
	},
	VideoSequenceNoContent: {"BMP composition is empty.", "Recommend removing this composition."},
	ContinuousSequence: {
		"Multiple adjacent BMP compositions detected.",
		"Recommend merging into a single BMP composition for better rendering performance.",
	},
	BmpLayerButVectorComp: {
		"Layer name contains '_bmp' but points to a non-BMP composition.",
		"To export this pre-composition as BMP, rename the pre-composition instead of the layer.",
	},
	NoPrecompLayerWithBmpName: {
		"Non-precomposition layer uses '_bmp' suffix.",
		"To export this layer as BMP, pre-compose it and add '_bmp' suffix to the new pre-composition name.",
	},
	SameSequence:        {"Multiple identical BMP compositions detected.", "Recommend keeping only one."},
	StaticVideoSequence: {"Static video sequence composition detected.", "Recommend using image layers for better playback performance."},
	AudioEncodeFail:     {"Audio encoding failed. Music has been ignored.", "Ignore music or report the problem."},
	TextBackgroundOnlyTextLayer: {
		"TextBackground effect can only be added to text layers.",
		"Recommend adding TextBackground to text layers.",
	},
	ImageFillRuleOnlyImageLayer: {
		"ImageFillRule effect can only be added to image layers.",
		"Recommend adding ImageFillRule to image layers.",
	},
	ImageFillRuleOnlyOne: {
		"Multiple ImageFillRule effects detected on a single layer. Only the first one is applied.",
		"Recommend adding only one ImageFillRule effect per image layer.",
	},
	TagLevelImageFillRule: {"ImageFillRule effect is not supported at current TagLevel.", "Recommend " + raiseTagLevel},
	TagLevelImageFillRuleV2: {
		"Current TagLevel only supports linear interpolation for ImageFillRule. Other interpolation methods will be ignored.",
		"Recommend " + raiseTagLevel,
	},
	VideoTrackLayerRepeatRef: {"VideoTrack layer is referenced multiple times.", "Recommend referencing it only once."},
	VideoTrackRefSameSource:  {`Multiple VideoTrack layers reference the same asset ("{}").`, "Recommend using different assets."},
	VideoTrackPeakNum: {
		"More than 2 VideoTrack layers exist at the same time (frame {}), which may impact performance.",
		"Recommend reducing the number of VideoTrack layers at the same time.",
	},
	VideoPlayBackward: {"ImageFillRule does not support reverse playback.", "Recommend disabling reverse playback."},
	VideoSpeedTooFast: {"ImageFillRule fast playback exceeds 8x speed.", "Recommend keeping fast playback speed below 8x."},
	VideoTimeTooShort: {
		"Total duration of resources in VideoTrack segment is less than 0.5 seconds.",
		"Recommend extending to more than 0.5 seconds.",
	},
	VideoTrackTimeCover: {
		"VideoTrack layer overlaps another VideoTrack layer in timeline ({}).",
		"Recommend avoiding complete overlap between VideoTrack layers ({}).",
	},
	TagLevelVerticalText: {"Vertical text is not supported at current TagLevel.", "Recommend using horizontal text or " + raiseTagLevel},
	TagLevelMotionBlur:   {"MotionBlur is not supported at current TagLevel.", "Recommend removing MotionBlur or " + raiseTagLevel},
	AdjustmentLayer:      {"Adjustment layers are not supported.", "Please apply effects directly to target layers."},
	CameraLayer:          {"Camera layers are not supported at current TagLevel.", "Please redesign using alternative methods or " + raiseTagLevel},
	Layer3D: {
		"3D properties are supported, but the current TagLevel is too low to enable them.",
		"If you still want to use 3D properties, please " + raiseTagLevel,
	},
	LayerTimeRemapping: {"Time remapping is not supported.", "Please disable time remapping."},
	EffectAndStylePickNum: {
		"More than 3 effects/layer styles exist at the same time (frame {}), which may impact performance.",
		"Recommend reducing the number of effects/layer styles at the same time.",
	},
	LayerNum:               {"Total layer count exceeds 60 (may impact performance).", "Recommend reducing the number of layers."},
	VideoSequenceInUiScene: {"Video sequences are not recommended in UI scenes.", "Recommend reducing the number of video sequences."},
	MarkerJsonHasChinese:   {"Detected potential wide characters in marker JSON: {}", "Please verify the correctness of JSON text in markers."},
	MarkerJsonGrammar:      {"Detected potential JSON syntax errors in markers: {}", "Please verify JSON syntax in markers."},
	RangeSelectorUnitsIndex: {
		`"Text Animation - Range Selector - Units" does not support "Index".`,
		`Please use "Percentage" option instead.`,
	},
	RangeSelectorBasedOn: {
		`"Text Animation - Range Selector - Based On" does not support "{}".`,
		`Please use "Characters" option instead.`,
	},
	RangeSelectorSmoothness: {
		`"Text Animation - Range Selector - Smoothness" only supports default value 100%.`,
		"Please reset smoothness to default value 100%.",
	},
	WigglySelectorBasedOn: {
		`"Text Animation - Wiggly Selector - Based On" does not support "{}".`,
		`Please use "Characters" option instead.`,
	},
	GraphicsMemory:    {`Preview GPU memory usage is too high ("{}").`, "Recommend optimizing to below 80MB."},
	GraphicsMemoryUI:  {`Preview GPU memory usage is too high ("{}").`, "For UI scenes, recommend optimizing to below 30MB."},
	ImageNum:          {"Too many images ({}).", "Recommend reducing the number of images (<=30)."},
	BmpCompositionNum: {`Too many BMP compositions ("{}").`, "Recommend reducing BMP compositions (<=3)."},
	FontSmallAndScaleLarge: {
		`Text layer font size is too small with excessive scaling ("{}"x), which may cause rendering distortion.`,
		"Recommend adjusting font size and scaling to normal values.",
	},
	FontFileTooBig: {
		`Exported font file exceeds 30MB ("{}"MB), which may prevent web upload.`,
		"Ignore if font library size is not critical; otherwise use alternative fonts.",
	},
	TextPathParamPerpendicularToPath: {`Text Path option "Perpendicular To Path" does not support false.`, "Recommend using default value true."},
	TextPathParamForceAlignment:      {`Text Path option "Force Alignment" does not support true.`, "Recommend using default value false."},
	TextPathVertical:                 {"Vertical text is not supported in Text Path.", "Recommend using horizontal text or removing Text Path."},
	TextPathBoxText:                  {"Box text is not supported in Text Path.", "Recommend using point text or removing Text Path."},
	TextPathAnimator:                 {"Text Path and Text Animator are currently incompatible.", "Recommend removing Text Path or Text Animator."},
	VideoCompositionOverlap: {
		`There are overlapping time intervals for references to video composition "{}".`,
		`Recommend adjusting the start time and duration of the layers referencing video composition "{}".`,
	},
	ExportAEError:             {"Host export error.", ""},
	ExportBitmapSequenceError: {"Bitmap sequence export error.", ""},
	ExportVideoSequenceError:  {"Video sequence export error.", ""},
	ExportAudioError:          {"Audio export error.", ""},
	WebpEncodeError:           {"WebP encoding error.", ""},
	ExportRenderError:         {"Export rendering error.", ""},
	CompositionHandleNotFound: {
		"Composition not found (ID: {}).",
		"Try re-exporting the project. If the issue persists, reload the document and try again.",
	},
	DisplacementMapRefSelf: {
		"DisplacementMap does not support referencing its own layer.",
		"Recommend removing this effect or redirecting the displacement layer to another layer.",
	},
	ExportRangeSelectorError: {"[Text Animation - Selector] export error.", ""},
	PAGVerifyError:           {"File verification error.", ""},
}

// Describe returns the info and suggestion texts of a category.
func Describe(c Category, addInfo string) (info, suggest string) {
	switch c {
	case UnknownWarning, OtherWarning, UnknownError:
		return addInfo, ""
	case OtherError:
		return addInfo, addInfo
	}
	t, ok := texts[c]
	if !ok {
		return addInfo, "Undefined error message."
	}
	return strings.ReplaceAll(t.info, "{}", addInfo), strings.ReplaceAll(t.suggest, "{}", addInfo)
}
