package model

type LayerKind int

const (
	KindUnknown LayerKind = iota
	KindNull
	KindSolid
	KindText
	KindShape
	KindImage
	KindVideo
	KindPreCompose
	KindCamera
)

var layerKindNames = [...]string{
	KindUnknown:    "unknown",
	KindNull:       "null",
	KindSolid:      "solid",
	KindText:       "text",
	KindShape:      "shape",
	KindImage:      "image",
	KindVideo:      "video",
	KindPreCompose: "precompose",
	KindCamera:     "camera",
}

func (k LayerKind) String() string {
	if k >= 0 && int(k) < len(layerKindNames) {
		return layerKindNames[k]
	}
	return "unknown"
}

// Content is the variant payload of a layer. The set of implementations is
// closed: Null, Unknown, Solid, Image, PreCompose, Text, Camera and Shape.
type Content interface {
	Kind() LayerKind
	content()
}

type Null struct{}

type Unknown struct{}

type Solid struct {
	Color  Color `json:"color"`
	Width  int32 `json:"width"`
	Height int32 `json:"height"`
}

// ImageBytes is a raster source shared by every layer that uses it.
type ImageBytes struct {
	ID     ID    `json:"id"`
	Width  int32 `json:"width"`
	Height int32 `json:"height"`
	Video  bool  `json:"video"`
}

// Image is a still image or, when Bytes.Video is set, a video footage layer.
type Image struct {
	Bytes    *ImageBytes    `json:"bytes"`
	FillRule *ImageFillRule `json:"fill_rule,omitempty"`
}

type PreCompose struct {
	Composition          *Composition `json:"-"`
	CompositionStartTime Frame        `json:"composition_start_time"`
}

type Text struct {
	SourceText *Property[*TextDocument] `json:"source_text"`
	PathOption *TextPathOptions         `json:"path_option,omitempty"`
	MoreOption *TextMoreOptions         `json:"more_option,omitempty"`
	Animators  []*TextAnimator          `json:"animators,omitempty"`
	Background *TextBackground          `json:"background,omitempty"`
}

type CameraOption struct {
	Zoom          *Property[float32] `json:"zoom"`
	DepthOfField  *Property[bool]    `json:"depth_of_field"`
	FocusDistance *Property[float32] `json:"focus_distance"`
	Aperture      *Property[float32] `json:"aperture"`
	BlurLevel     *Property[float32] `json:"blur_level"`
}

type Camera struct {
	Option *CameraOption `json:"option"`
}

// ShapeElement is a raw shape group entry.
type ShapeElement struct {
	MatchName string                        `json:"match_name"`
	Name      string                        `json:"name"`
	Path      *Property[*PathData]          `json:"path,omitempty"`
	Params    map[string]*Property[float32] `json:"params,omitempty"`
	Elements  []*ShapeElement               `json:"elements,omitempty"`
}

type Shape struct {
	Contents []*ShapeElement `json:"contents"`
}

func (*Null) Kind() LayerKind       { return KindNull }
func (*Unknown) Kind() LayerKind    { return KindUnknown }
func (*Solid) Kind() LayerKind      { return KindSolid }
func (*PreCompose) Kind() LayerKind { return KindPreCompose }
func (*Text) Kind() LayerKind       { return KindText }
func (*Camera) Kind() LayerKind     { return KindCamera }
func (*Shape) Kind() LayerKind      { return KindShape }

func (i *Image) Kind() LayerKind {
	if i.Bytes != nil && i.Bytes.Video {
		return KindVideo
	}
	return KindImage
}

func (*Null) content()       {}
func (*Unknown) content()    {}
func (*Solid) content()      {}
func (*Image) content()      {}
func (*PreCompose) content() {}
func (*Text) content()       {}
func (*Camera) content()     {}
func (*Shape) content()      {}

type Layer struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	ParentID  ID     `json:"parent_id,omitempty"`
	Stretch   Ratio  `json:"stretch"`
	StartTime Frame  `json:"start_time"`
	Duration  Frame  `json:"duration"`

	AutoOrientation bool `json:"auto_orientation"`
	MotionBlur      bool `json:"motion_blur"`
	IsActive        bool `json:"is_active"`

	Transform   *Transform2D       `json:"transform,omitempty"`
	Transform3D *Transform3D       `json:"transform3d,omitempty"`
	TimeRemap   *Property[float32] `json:"time_remap,omitempty"`

	BlendMode       BlendMode      `json:"blend_mode"`
	TrackMatteType  TrackMatteType `json:"track_matte_type"`
	TrackMatteLayer *Layer         `json:"-"`

	Masks       []*Mask       `json:"masks,omitempty"`
	Effects     []*Effect     `json:"effects,omitempty"`
	LayerStyles []*LayerStyle `json:"layer_styles,omitempty"`
	Markers     []*Marker     `json:"markers,omitempty"`
	CachePolicy CachePolicy   `json:"cache_policy"`

	Content Content `json:"content"`
}

// Kind returns the variant of the layer.
func (l *Layer) Kind() LayerKind {
	if l.Content == nil {
		return KindUnknown
	}
	return l.Content.Kind()
}

// Opacity returns the opacity property of whichever transform is present.
func (l *Layer) Opacity() *Property[Opacity] {
	if l.Transform3D != nil {
		return l.Transform3D.Opacity
	}
	if l.Transform != nil {
		return l.Transform.Opacity
	}
	return nil
}

// PreComposition returns the nested composition of a PreCompose layer.
func (l *Layer) PreComposition() (*PreCompose, bool) {
	p, ok := l.Content.(*PreCompose)
	return p, ok && p.Composition != nil
}
