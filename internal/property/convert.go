// Package property converts host parameter streams into animatable
// properties, reconstructing temporal bezier handles from host ease samples.
package property

import (
	"errors"

	"github.com/heimdex/pagexport/internal/alert"
	"github.com/heimdex/pagexport/internal/curve"
	"github.com/heimdex/pagexport/internal/host"
	"github.com/heimdex/pagexport/internal/model"
	"github.com/heimdex/pagexport/internal/session"
)

// Parser turns one raw host value into a typed value.
type Parser[T any] func(v host.Value) T

// defaultEase is used when a key has no ease sample for a dimension.
var defaultEase = curve.Ease{Influence: 1.0 / 6, Speed: 0}

// Convert reads a stream into a property. Streams with at most one key are
// static. Host failures are recorded as warnings and yield the zero value.
func Convert[T any](s *session.Session, h host.Host, stream host.StreamID, parse Parser[T]) *model.Property[T] {
	return convert(s, h, stream, parse, 0)
}

// ConvertN is Convert with the number of temporal ease dimensions fixed to
// dimensions instead of taken from the stream.
func ConvertN[T any](s *session.Session, h host.Host, stream host.StreamID, parse Parser[T], dimensions int) *model.Property[T] {
	return convert(s, h, stream, parse, dimensions)
}

func convert[T any](s *session.Session, h host.Host, stream host.StreamID, parse Parser[T], dimensions int) *model.Property[T] {
	info, err := h.StreamInfo(stream)
	if err != nil {
		s.PushWarning(alert.ExportAEError, err.Error())
		return model.Static(parse(host.Value{}))
	}
	checkExpression(s, info)
	if dimensions > 0 {
		info.Dimensionality = dimensions
	}

	numKeys, err := h.NumKeys(stream)
	if err != nil {
		s.PushWarning(alert.ExportAEError, err.Error())
		numKeys = 0
	}
	if numKeys <= 1 {
		return model.Static(staticValue(s, h, stream, info, parse))
	}

	keys := make([]host.Key, 0, numKeys)
	for i := 0; i < numKeys; i++ {
		key, err := h.Key(stream, i)
		if err != nil {
			s.PushWarning(alert.ExportAEError, err.Error())
			return model.Static(staticValue(s, h, stream, info, parse))
		}
		keys = append(keys, key)
	}

	keyframes := make([]*model.Keyframe[T], 0, numKeys-1)
	for i := 1; i < len(keys); i++ {
		keyframes = append(keyframes, keyframe(s.FrameRate(), info, keys[i-1], keys[i], parse))
	}
	return model.Animated(keyframes)
}

// Named converts the child stream of group with the given match name. It
// returns nil when the stream does not exist.
func Named[T any](s *session.Session, h host.Host, group host.StreamID, matchName string, parse Parser[T]) *model.Property[T] {
	stream, ok := lookup(s, h, group, matchName)
	if !ok {
		return nil
	}
	return Convert(s, h, stream, parse)
}

// NamedN is Named with a fixed number of temporal ease dimensions.
func NamedN[T any](s *session.Session, h host.Host, group host.StreamID, matchName string, parse Parser[T], dimensions int) *model.Property[T] {
	stream, ok := lookup(s, h, group, matchName)
	if !ok {
		return nil
	}
	return ConvertN(s, h, stream, parse, dimensions)
}

// Value reads the current value of a named child stream, ignoring keys.
func Value[T any](s *session.Session, h host.Host, group host.StreamID, matchName string, parse Parser[T]) T {
	stream, ok := lookup(s, h, group, matchName)
	if !ok {
		return parse(host.Value{})
	}
	info, err := h.StreamInfo(stream)
	if err != nil {
		s.PushWarning(alert.ExportAEError, err.Error())
		return parse(host.Value{})
	}
	return staticValue(s, h, stream, info, parse)
}

func lookup(s *session.Session, h host.Host, group host.StreamID, matchName string) (host.StreamID, bool) {
	stream, err := h.StreamByName(group, matchName)
	if err != nil {
		if !errors.Is(err, host.ErrNotFound) {
			s.PushWarning(alert.ExportAEError, err.Error())
		}
		return 0, false
	}
	return stream, true
}

func staticValue[T any](s *session.Session, h host.Host, stream host.StreamID, info host.StreamInfo, parse Parser[T]) T {
	if !numeric(info.Type) && !structured(info.Type) {
		return parse(host.Value{})
	}
	v, err := h.StreamValue(stream)
	if err != nil {
		s.PushWarning(alert.ExportAEError, err.Error())
		return parse(host.Value{})
	}
	return parse(v)
}

func keyframe[T any](frameRate float32, info host.StreamInfo, start, end host.Key, parse Parser[T]) *model.Keyframe[T] {
	kind := info.Type.Kind()
	k := &model.Keyframe[T]{
		StartTime: curve.FrameOf(start.Time, frameRate),
		EndTime:   curve.FrameOf(end.Time, frameRate),
	}
	if !numeric(info.Type) && !structured(info.Type) {
		k.StartValue = parse(host.Value{})
		k.EndValue = parse(host.Value{})
	} else {
		k.StartValue = parse(start.Value)
		k.EndValue = parse(end.Value)
	}

	var outTangent, inTangent curve.Point3
	if kind.Spatial() {
		outTangent = tangent(start.OutTangent, kind)
		inTangent = tangent(end.InTangent, kind)
		k.SpatialOut = &model.Point3D{X: outTangent.X, Y: outTangent.Y, Z: outTangent.Z}
		k.SpatialIn = &model.Point3D{X: inTangent.X, Y: inTangent.Y, Z: inTangent.Z}
	}

	outType := start.OutInterpolation
	if start.Roving {
		outType = host.InterpBezier
	}
	inType := end.InInterpolation

	switch {
	case outType == host.InterpHold:
		k.Interpolation = model.Hold
	case outType == host.InterpLinear && inType == host.InterpLinear:
		k.Interpolation = model.Linear
	default:
		k.Interpolation = model.Bezier
		dimensionality := max(info.Dimensionality, 1)
		speeds := curve.AverageSpeed(curve.Segment{
			Kind:       kind,
			From:       start.Value.Numbers,
			To:         end.Value.Numbers,
			OutTangent: outTangent,
			InTangent:  inTangent,
			Seconds:    end.Time - start.Time,
		}, dimensionality)
		for i := 0; i < dimensionality; i++ {
			speed := speeds[0]
			if i < len(speeds) {
				speed = speeds[i]
			}
			out, in := curve.BezierHandles(kind, easeAt(start.OutEase, i), easeAt(end.InEase, i), speed)
			k.BezierOut = append(k.BezierOut, model.Point(out))
			k.BezierIn = append(k.BezierIn, model.Point(in))
		}
	}
	return k
}

func checkExpression(s *session.Session, info host.StreamInfo) {
	if info.CanVary && info.ExpressionEnabled {
		s.PushWarning(alert.Expression, "")
	}
}

func tangent(p *model.Point3D, kind curve.ValueKind) curve.Point3 {
	if p == nil {
		return curve.Point3{}
	}
	t := curve.Point3{X: p.X, Y: p.Y, Z: p.Z}
	if kind != curve.KindThreeDSpatial {
		t.Z = 0
	}
	return t
}

func easeAt(eases []curve.Ease, i int) curve.Ease {
	if i < len(eases) {
		return eases[i]
	}
	return defaultEase
}

func numeric(t host.ValueType) bool {
	switch t {
	case host.Value1D, host.Value2D, host.Value2DSpatial, host.Value3D, host.Value3DSpatial,
		host.ValueColor, host.ValueLayerID, host.ValueMaskID:
		return true
	}
	return false
}

func structured(t host.ValueType) bool {
	return t == host.ValueMask || t == host.ValueTextDocument
}
