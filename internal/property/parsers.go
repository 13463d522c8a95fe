package property

import (
	"math"

	"github.com/heimdex/pagexport/internal/host"
	"github.com/heimdex/pagexport/internal/model"
)

func Float(v host.Value) float32 {
	return float32(v.Number(0))
}

// Percent maps 0..100 onto 0..1.
func Percent(v host.Value) float32 {
	return float32(v.Number(0) / 100)
}

func Bool(v host.Value) bool {
	return v.Number(0) != 0
}

func Int(v host.Value) int {
	return int(v.Number(0))
}

// Enum reads a 1-based host popup value into a 0-based enum.
func Enum[T ~int](v host.Value) T {
	return T(max(int(v.Number(0))-1, 0))
}

func Frame(v host.Value) model.Frame {
	return model.Frame(math.Round(v.Number(0)))
}

func LayerID(v host.Value) model.ID {
	return model.ID(v.Number(0))
}

func Point(v host.Value) model.Point {
	return model.Point{X: float32(v.Number(0)), Y: float32(v.Number(1))}
}

func Point3D(v host.Value) model.Point3D {
	return model.Point3D{X: float32(v.Number(0)), Y: float32(v.Number(1)), Z: float32(v.Number(2))}
}

// Scale maps percentages onto factors.
func Scale(v host.Value) model.Point {
	return model.Point{X: float32(v.Number(0) / 100), Y: float32(v.Number(1) / 100)}
}

func Scale3D(v host.Value) model.Point3D {
	return model.Point3D{
		X: float32(v.Number(0) / 100),
		Y: float32(v.Number(1) / 100),
		Z: float32(v.Number(2) / 100),
	}
}

// Color reads 0..1 channels into 8-bit values.
func Color(v host.Value) model.Color {
	return model.Color{
		Red:   channel(v.Number(0)),
		Green: channel(v.Number(1)),
		Blue:  channel(v.Number(2)),
	}
}

// Opacity maps 0..100 onto 0..255.
func Opacity(v host.Value) model.Opacity {
	return channel(v.Number(0) / 100)
}

func TextDocument(v host.Value) *model.TextDocument {
	if v.Text == nil {
		return &model.TextDocument{}
	}
	doc := *v.Text
	return &doc
}

func MaskPath(v host.Value) *model.PathData {
	if v.Path == nil {
		return &model.PathData{}
	}
	return &model.PathData{
		Vertices:    append([]model.Point(nil), v.Path.Vertices...),
		InTangents:  append([]model.Point(nil), v.Path.InTangents...),
		OutTangents: append([]model.Point(nil), v.Path.OutTangents...),
		Closed:      v.Path.Closed,
	}
}

func channel(f float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, f)) * 255))
}
