// Package model is the exported animation graph: compositions, layers and
// their animatable properties.
package model

// ID is a stable source identity.
type ID uint32

// Frame is a time in frames.
type Frame = int64

// Interpolation is how a keyframe transitions to its end value.
type Interpolation int

const (
	Hold Interpolation = iota
	Linear
	Bezier
)

func (i Interpolation) String() string {
	switch i {
	case Hold:
		return "hold"
	case Linear:
		return "linear"
	case Bezier:
		return "bezier"
	}
	return "unknown"
}

// Point is a 2D point.
type Point struct {
	X float32 `json:"x" yaml:"x"`
	Y float32 `json:"y" yaml:"y"`
}

// Point3D is a 3D point.
type Point3D struct {
	X float32 `json:"x" yaml:"x"`
	Y float32 `json:"y" yaml:"y"`
	Z float32 `json:"z" yaml:"z"`
}

// Color is an 8-bit RGB color.
type Color struct {
	Red   uint8 `json:"red" yaml:"red"`
	Green uint8 `json:"green" yaml:"green"`
	Blue  uint8 `json:"blue" yaml:"blue"`
}

// Opacity ranges from 0 (transparent) to 255 (opaque).
type Opacity = uint8

const Opaque Opacity = 255

// Keyframe is one animated segment of a property.
type Keyframe[T any] struct {
	StartTime     Frame         `json:"start_time"`
	EndTime       Frame         `json:"end_time"`
	StartValue    T             `json:"start_value"`
	EndValue      T             `json:"end_value"`
	Interpolation Interpolation `json:"interpolation"`

	// BezierOut and BezierIn hold one handle per scalar dimension of T.
	BezierOut []Point `json:"bezier_out,omitempty"`
	BezierIn  []Point `json:"bezier_in,omitempty"`

	// SpatialOut and SpatialIn are raw positional tangents, relative to the
	// start and end values.
	SpatialOut *Point3D `json:"spatial_out,omitempty"`
	SpatialIn  *Point3D `json:"spatial_in,omitempty"`
}

// Property is either a static value or a non-empty keyframe list.
type Property[T any] struct {
	Value     T              `json:"value"`
	Keyframes []*Keyframe[T] `json:"keyframes,omitempty"`
}

// Static returns a property holding a single value.
func Static[T any](v T) *Property[T] {
	return &Property[T]{Value: v}
}

// Animated returns a property backed by keyframes. The static value is the
// first keyframe's start value.
func Animated[T any](keyframes []*Keyframe[T]) *Property[T] {
	p := &Property[T]{Keyframes: keyframes}
	if len(keyframes) > 0 {
		p.Value = keyframes[0].StartValue
	}
	return p
}

// Animatable reports whether p has keyframes.
func (p *Property[T]) Animatable() bool {
	return p != nil && len(p.Keyframes) > 0
}

// Copy returns a deep copy of p. Element values are copied by assignment.
func (p *Property[T]) Copy() *Property[T] {
	if p == nil {
		return nil
	}
	out := &Property[T]{Value: p.Value}
	for _, k := range p.Keyframes {
		c := *k
		c.BezierOut = append([]Point(nil), k.BezierOut...)
		c.BezierIn = append([]Point(nil), k.BezierIn...)
		if k.SpatialOut != nil {
			v := *k.SpatialOut
			c.SpatialOut = &v
		}
		if k.SpatialIn != nil {
			v := *k.SpatialIn
			c.SpatialIn = &v
		}
		out.Keyframes = append(out.Keyframes, &c)
	}
	return out
}

// StaticValue returns the value and true when p is present and not animated.
func (p *Property[T]) StaticValue() (T, bool) {
	var zero T
	if p == nil || p.Animatable() {
		return zero, false
	}
	return p.Value, true
}
