package curve

import (
	"math"
	"testing"
)

func TestCubicLength_StraightLine(t *testing.T) {
	c := Cubic{
		P0: Point3{X: 0, Y: 0},
		P1: Point3{X: 10, Y: 0},
		P2: Point3{X: 20, Y: 0},
		P3: Point3{X: 30, Y: 0},
	}

	got := c.Length()
	if got != 30 {
		t.Fatalf("Length() = %v, want 30", got)
	}
}

func TestCubicLength_QuarterCircle(t *testing.T) {
	const k = 0.5522847
	c := Cubic{
		P0: Point3{X: 1, Y: 0},
		P1: Point3{X: 1, Y: k},
		P2: Point3{X: k, Y: 1},
		P3: Point3{X: 0, Y: 1},
	}

	got := float64(c.Length())
	if math.Abs(got-math.Pi/2) > 0.01 {
		t.Fatalf("Length() = %v, want about %v", got, math.Pi/2)
	}
}

func TestCubicLength_AtLeastChord(t *testing.T) {
	tests := []struct {
		name string
		c    Cubic
	}{
		{
			name: "s-curve",
			c:    Cubic{P0: Point3{}, P1: Point3{X: 50, Y: 100}, P2: Point3{X: 50, Y: -100}, P3: Point3{X: 100}},
		},
		{
			name: "loop",
			c:    Cubic{P0: Point3{}, P1: Point3{X: 200, Y: 200}, P2: Point3{X: -100, Y: 200}, P3: Point3{X: 100}},
		},
		{
			name: "3d",
			c:    Cubic{P0: Point3{}, P1: Point3{X: 10, Y: 5, Z: 30}, P2: Point3{X: 20, Y: -5, Z: -30}, P3: Point3{X: 30, Z: 10}},
		},
		{
			name: "tiny",
			c:    Cubic{P0: Point3{}, P1: Point3{X: 0.001, Y: 0.002}, P2: Point3{X: 0.003, Y: -0.001}, P3: Point3{X: 0.004}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			length := tc.c.Length()
			chord := tc.c.Chord()
			if length < chord {
				t.Errorf("Length() = %v, want >= chord %v", length, chord)
			}
		})
	}
}

func TestCubicLength_Converges(t *testing.T) {
	c := Cubic{P0: Point3{}, P1: Point3{X: 30, Y: 80}, P2: Point3{X: 70, Y: -40}, P3: Point3{X: 100, Y: 20}}

	coarse := CubicLength(c, 0.005)
	fine := CubicLength(c, 0.0005)
	if diff := math.Abs(float64(coarse - fine)); diff >= 0.005*float64(fine) {
		t.Fatalf("coarse %v and fine %v differ by %v", coarse, fine, diff)
	}
}

func TestCubicLength_Terminates(t *testing.T) {
	c := Cubic{P0: Point3{}, P1: Point3{X: 1e6, Y: 1e6}, P2: Point3{X: -1e6, Y: 1e6}, P3: Point3{X: 1}}

	if got := c.Length(); got <= 0 || math.IsInf(float64(got), 0) {
		t.Fatalf("Length() = %v, want finite positive", got)
	}
}

func TestSpatialCubic(t *testing.T) {
	c := SpatialCubic(Point3{X: 1, Y: 2, Z: 3}, Point3{X: 1}, Point3{Z: -1}, Point3{X: 5, Y: 5, Z: 5})

	if c.P1 != (Point3{X: 2, Y: 2, Z: 3}) {
		t.Errorf("P1 = %+v, want {2 2 3}", c.P1)
	}
	if c.P2 != (Point3{X: 5, Y: 5, Z: 4}) {
		t.Errorf("P2 = %+v, want {5 5 4}", c.P2)
	}
}

func TestFrameOf(t *testing.T) {
	tests := []struct {
		seconds   float64
		frameRate float32
		want      int64
	}{
		{0, 24, 0},
		{1, 24, 24},
		{0.5, 30, 15},
		{1.0 / 3, 30, 10},
		{0.52, 24, 12},
		{0.53, 24, 13},
	}

	for _, tc := range tests {
		if got := FrameOf(tc.seconds, tc.frameRate); got != tc.want {
			t.Errorf("FrameOf(%v, %v) = %d, want %d", tc.seconds, tc.frameRate, got, tc.want)
		}
		again := FrameOf(float64(tc.want)/float64(tc.frameRate), tc.frameRate)
		if again != tc.want {
			t.Errorf("FrameOf is not idempotent for frame %d: got %d", tc.want, again)
		}
	}
}
