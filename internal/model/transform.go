package model

type Transform2D struct {
	AnchorPoint *Property[Point]   `json:"anchor_point"`
	Position    *Property[Point]   `json:"position,omitempty"`
	XPosition   *Property[float32] `json:"x_position,omitempty"`
	YPosition   *Property[float32] `json:"y_position,omitempty"`
	Scale       *Property[Point]   `json:"scale"`
	Rotation    *Property[float32] `json:"rotation"`
	Opacity     *Property[Opacity] `json:"opacity"`
}

type Transform3D struct {
	AnchorPoint *Property[Point3D] `json:"anchor_point"`
	Position    *Property[Point3D] `json:"position,omitempty"`
	XPosition   *Property[float32] `json:"x_position,omitempty"`
	YPosition   *Property[float32] `json:"y_position,omitempty"`
	ZPosition   *Property[float32] `json:"z_position,omitempty"`
	Scale       *Property[Point3D] `json:"scale"`
	Orientation *Property[Point3D] `json:"orientation"`
	XRotation   *Property[float32] `json:"x_rotation"`
	YRotation   *Property[float32] `json:"y_rotation"`
	ZRotation   *Property[float32] `json:"z_rotation"`
	Opacity     *Property[Opacity] `json:"opacity"`
}

// ZeroOpacity reports whether p is missing or statically transparent.
func ZeroOpacity(p *Property[Opacity]) bool {
	if p == nil {
		return true
	}
	v, ok := p.StaticValue()
	return ok && v == 0
}

type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
	BlendColorDodge
	BlendColorBurn
	BlendHardLight
	BlendSoftLight
	BlendDifference
	BlendExclusion
	BlendHue
	BlendSaturation
	BlendColor
	BlendLuminosity
	BlendAdd
)

type TrackMatteType int

const (
	MatteNone TrackMatteType = iota
	MatteAlpha
	MatteAlphaInverted
	MatteLuma
	MatteLumaInverted
)

// Ratio is a layer time stretch.
type Ratio struct {
	Numerator   int32  `json:"numerator"`
	Denominator uint32 `json:"denominator"`
}

var DefaultRatio = Ratio{Numerator: 1, Denominator: 1}
