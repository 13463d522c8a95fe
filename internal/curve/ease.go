package curve

import "math"

// FloatEpsilon is the single-precision machine epsilon.
const FloatEpsilon = 1.1920929e-07

// FrameOf converts a host time in seconds to a frame index.
func FrameOf(seconds float64, frameRate float32) int64 {
	return int64(math.Round(seconds * float64(frameRate)))
}

// ValueKind describes the shape of a keyframed value for speed purposes.
type ValueKind int

const (
	KindOther ValueKind = iota
	KindNoData
	KindOneD
	KindTwoD
	KindThreeD
	KindTwoDSpatial
	KindThreeDSpatial
	KindColor
	KindMask
)

// Spatial reports whether the kind carries spatial tangents.
func (k ValueKind) Spatial() bool {
	return k == KindTwoDSpatial || k == KindThreeDSpatial
}

// Ease is one host temporal ease sample.
type Ease struct {
	Influence float64 `yaml:"influence" json:"influence"`
	Speed     float64 `yaml:"speed" json:"speed"`
}

// Handle is a normalized bezier control point of a temporal ease curve.
type Handle struct {
	X, Y float32
}

// Segment is the data needed to compute the average speed of one keyframe pair.
type Segment struct {
	Kind       ValueKind
	From, To   []float64
	OutTangent Point3
	InTangent  Point3
	Seconds    float64
}

// AverageSpeed returns the average signed speed per component over the
// segment. When dimensionality is 1 and several components are produced they
// collapse into their euclidean norm.
func AverageSpeed(seg Segment, dimensionality int) []float32 {
	var speeds []float32
	duration := float32(seg.Seconds)

	switch seg.Kind {
	case KindNoData:
		return []float32{1}
	case KindTwoDSpatial, KindThreeDSpatial:
		c := SpatialCubic(point3Of(seg.From), seg.OutTangent, seg.InTangent, point3Of(seg.To))
		speeds = append(speeds, c.Length()/duration)
	case KindThreeD:
		speeds = componentSpeeds(seg.From, seg.To, 3, 1, duration)
	case KindTwoD:
		speeds = componentSpeeds(seg.From, seg.To, 2, 1, duration)
	case KindOneD:
		speeds = componentSpeeds(seg.From, seg.To, 1, 1, duration)
	case KindColor:
		speeds = componentSpeeds(seg.From, seg.To, 3, 255, duration)
	default:
		speeds = append(speeds, 1)
	}

	if dimensionality == 1 && len(speeds) > 1 {
		var sum float32
		for _, s := range speeds {
			sum += s * s
		}
		speeds = []float32{float32(math.Sqrt(float64(sum)))}
	}
	return speeds
}

// BezierHandles reconstructs the outgoing and incoming handles of one
// dimension from the host ease samples and the average speed.
func BezierHandles(kind ValueKind, out, in Ease, averageSpeed float32) (Handle, Handle) {
	outInfluence := float32(out.Influence)
	inInfluence := float32(in.Influence)
	if averageSpeed > 0 {
		switch {
		case kind.Spatial():
			outInfluence = min(averageSpeed/float32(out.Speed), outInfluence)
			inInfluence = min(averageSpeed/float32(in.Speed), inInfluence)
		case kind == KindMask || kind == KindNoData:
			outInfluence = min(1/float32(out.Speed), outInfluence)
			inInfluence = min(1/float32(in.Speed), inInfluence)
		}
	}

	bezierOut := Handle{X: outInfluence}
	bezierIn := Handle{X: 1 - inInfluence}
	if abs32(averageSpeed) <= FloatEpsilon {
		bezierOut.Y = bezierOut.X
		bezierIn.Y = bezierIn.X
	} else {
		bezierOut.Y = float32(out.Speed) / averageSpeed * outInfluence
		bezierIn.Y = 1 - float32(in.Speed)/averageSpeed*inInfluence
	}
	return bezierOut, bezierIn
}

func componentSpeeds(from, to []float64, n int, scale, duration float32) []float32 {
	speeds := make([]float32, n)
	for i := 0; i < n; i++ {
		speeds[i] = float32(component(to, i)-component(from, i)) * scale / duration
	}
	return speeds
}

func component(v []float64, i int) float64 {
	if i < len(v) {
		return v[i]
	}
	return 0
}

func point3Of(v []float64) Point3 {
	return Point3{X: float32(component(v, 0)), Y: float32(component(v, 1)), Z: float32(component(v, 2))}
}
