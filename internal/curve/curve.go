// Package curve holds the numeric helpers used while converting keyframed
// parameters: cubic bezier arc length, average speed over a keyframe pair and
// temporal ease reconstruction.
package curve

import "math"

const (
	// Precision is the flatness tolerance used by CubicLength.
	Precision float32 = 0.005

	// MaxTValue is the fixed-point value of t = 1 used to bound subdivision.
	MaxTValue uint32 = 0x3FFFFFFF
)

// Point3 is a point in 3D space. 2D data uses Z = 0.
type Point3 struct {
	X, Y, Z float32
}

// Add returns p + q.
func (p Point3) Add(q Point3) Point3 {
	return Point3{X: p.X + q.X, Y: p.Y + q.Y, Z: p.Z + q.Z}
}

// Lerp linearly interpolates between p and q.
func (p Point3) Lerp(q Point3, t float32) Point3 {
	return Point3{
		X: p.X + (q.X-p.X)*t,
		Y: p.Y + (q.Y-p.Y)*t,
		Z: p.Z + (q.Z-p.Z)*t,
	}
}

// Distance returns the euclidean distance between p and q.
func (p Point3) Distance(q Point3) float32 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	dz := p.Z - q.Z
	return float32(math.Sqrt(float64(dx*dx + dy*dy + dz*dz)))
}

// Cubic is a cubic bezier segment in 3D.
type Cubic struct {
	P0, P1, P2, P3 Point3
}

// SpatialCubic builds the cubic between two positional keyframe values. The
// tangents are offsets relative to their keyframe value.
func SpatialCubic(from, outTangent, inTangent, to Point3) Cubic {
	return Cubic{
		P0: from,
		P1: from.Add(outTangent),
		P2: to.Add(inTangent),
		P3: to,
	}
}

// Subdivide splits the curve at t = 0.5 using De Casteljau.
func (c Cubic) Subdivide() (Cubic, Cubic) {
	p01 := c.P0.Lerp(c.P1, 0.5)
	p12 := c.P1.Lerp(c.P2, 0.5)
	p23 := c.P2.Lerp(c.P3, 0.5)
	p012 := p01.Lerp(p12, 0.5)
	p123 := p12.Lerp(p23, 0.5)
	mid := p012.Lerp(p123, 0.5)

	return Cubic{P0: c.P0, P1: p01, P2: p012, P3: mid},
		Cubic{P0: mid, P1: p123, P2: p23, P3: c.P3}
}

// Chord returns the straight-line distance between the end points.
func (c Cubic) Chord() float32 {
	return c.P0.Distance(c.P3)
}

// TooCurvy reports whether either control point deviates from its one-third
// point on the chord by more than precision on any axis.
func (c Cubic) TooCurvy(precision float32) bool {
	pt1 := c.P0.Lerp(c.P3, 1.0/3)
	pt2 := c.P0.Lerp(c.P3, 2.0/3)
	return exceedsLimit(c.P1, pt1, precision) || exceedsLimit(c.P2, pt2, precision)
}

// Straight reports whether both control points lie on the chord.
func (c Cubic) Straight(precision float32) bool {
	return onLine3(c.P0, c.P3, c.P1, precision) && onLine3(c.P0, c.P3, c.P2, precision)
}

// Length returns the arc length using the default precision.
func (c Cubic) Length() float32 {
	return CubicLength(c, Precision)
}

// CubicLength approximates the arc length of c. Straight curves return the
// chord. Otherwise the curve is split at its midpoint while it is too curvy
// and the remaining fixed-point parameter span is still big enough; flat
// pieces contribute their chord.
func CubicLength(c Cubic, precision float32) float32 {
	if c.Straight(precision) {
		return c.Chord()
	}
	return subdividedLength(c, 0, 0, MaxTValue, precision)
}

func subdividedLength(c Cubic, distance float32, minT, maxT uint32, precision float32) float32 {
	if tSpanBigEnough(maxT-minT) && c.TooCurvy(precision) {
		halfT := (minT + maxT) >> 1
		left, right := c.Subdivide()
		distance = subdividedLength(left, distance, minT, halfT, precision)
		distance = subdividedLength(right, distance, halfT, maxT, precision)
		return distance
	}
	return distance + c.Chord()
}

func tSpanBigEnough(tSpan uint32) bool {
	return (tSpan >> 10) != 0
}

func exceedsLimit(a, b Point3, precision float32) bool {
	return max(abs32(b.X-a.X), abs32(b.Y-a.Y), abs32(b.Z-a.Z)) > precision
}

func onLine(x1, y1, x2, y2, x3, y3, precision float32) bool {
	d := x1*y2 + x3*y1 + x2*y3 - x3*y2 - x1*y3 - x2*y1
	return abs32(d) < precision
}

func onLine3(p1, p2, p3 Point3, precision float32) bool {
	return onLine(p1.X, p1.Y, p2.X, p2.Y, p3.X, p3.Y, precision) &&
		onLine(p1.X, p1.Z, p2.X, p2.Z, p3.X, p3.Z, precision) &&
		onLine(p1.Y, p1.Z, p2.Y, p2.Z, p3.Y, p3.Z, precision)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
