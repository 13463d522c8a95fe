package curve

import (
	"math"
	"testing"
)

func TestAverageSpeed(t *testing.T) {
	tests := []struct {
		name           string
		seg            Segment
		dimensionality int
		want           []float32
	}{
		{
			name: "no data",
			seg:  Segment{Kind: KindNoData, Seconds: 1},
			want: []float32{1},
		},
		{
			name:           "one d",
			seg:            Segment{Kind: KindOneD, From: []float64{0}, To: []float64{100}, Seconds: 2},
			dimensionality: 1,
			want:           []float32{50},
		},
		{
			name:           "two d separated",
			seg:            Segment{Kind: KindTwoD, From: []float64{0, 0}, To: []float64{10, -20}, Seconds: 1},
			dimensionality: 2,
			want:           []float32{10, -20},
		},
		{
			name:           "two d collapsed",
			seg:            Segment{Kind: KindTwoD, From: []float64{0, 0}, To: []float64{3, 4}, Seconds: 1},
			dimensionality: 1,
			want:           []float32{5},
		},
		{
			name:           "color",
			seg:            Segment{Kind: KindColor, From: []float64{0, 0, 0}, To: []float64{1, 0, 0}, Seconds: 1},
			dimensionality: 3,
			want:           []float32{255, 0, 0},
		},
		{
			name:           "spatial straight",
			seg:            Segment{Kind: KindTwoDSpatial, From: []float64{0, 0}, To: []float64{100, 0}, Seconds: 4},
			dimensionality: 1,
			want:           []float32{25},
		},
		{
			name: "unknown",
			seg:  Segment{Kind: KindOther, Seconds: 1},
			want: []float32{1},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := AverageSpeed(tc.seg, tc.dimensionality)
			if len(got) != len(tc.want) {
				t.Fatalf("AverageSpeed() = %v, want %v", got, tc.want)
			}
			for i := range got {
				if math.Abs(float64(got[i]-tc.want[i])) > 1e-4 {
					t.Errorf("AverageSpeed()[%d] = %v, want %v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestBezierHandles_ZeroSpeed(t *testing.T) {
	out, in := BezierHandles(KindOneD, Ease{Influence: 0.33, Speed: 10}, Ease{Influence: 0.5, Speed: 10}, 0)

	if out.X != 0.33 || out.Y != out.X {
		t.Errorf("out = %+v, want x=y=0.33", out)
	}
	if in.X != 0.5 || in.Y != in.X {
		t.Errorf("in = %+v, want x=y=0.5", in)
	}
}

func TestBezierHandles_MatchesAverageSpeed(t *testing.T) {
	out, in := BezierHandles(KindOneD, Ease{Influence: 1.0 / 3, Speed: 50}, Ease{Influence: 1.0 / 3, Speed: 50}, 50)

	if math.Abs(float64(out.Y-out.X)) > 1e-6 {
		t.Errorf("out = %+v, want y == x for a linear-looking ease", out)
	}
	if math.Abs(float64(in.Y-in.X)) > 1e-6 {
		t.Errorf("in = %+v, want y == x for a linear-looking ease", in)
	}
}

func TestBezierHandles_EaseIn(t *testing.T) {
	out, _ := BezierHandles(KindOneD, Ease{Influence: 0.5, Speed: 0}, Ease{Influence: 0.5, Speed: 0}, 20)

	if out.X != 0.5 || out.Y != 0 {
		t.Errorf("out = %+v, want {0.5 0}", out)
	}
}

func TestBezierHandles_SpatialClampsInfluence(t *testing.T) {
	out, in := BezierHandles(KindTwoDSpatial, Ease{Influence: 0.8, Speed: 100}, Ease{Influence: 0.8, Speed: 100}, 10)

	if math.Abs(float64(out.X-0.1)) > 1e-6 {
		t.Errorf("out.X = %v, want 0.1", out.X)
	}
	if math.Abs(float64(in.X-0.9)) > 1e-6 {
		t.Errorf("in.X = %v, want 0.9", in.X)
	}
}

func TestBezierHandles_NonSpatialKeepsInfluence(t *testing.T) {
	out, _ := BezierHandles(KindOneD, Ease{Influence: 0.8, Speed: 100}, Ease{Influence: 0.8, Speed: 100}, 10)

	if math.Abs(float64(out.X-0.8)) > 1e-6 {
		t.Errorf("out.X = %v, want 0.8", out.X)
	}
}
