package export

import "github.com/heimdex/pagexport/internal/host"

// LayerType is the classification of a host layer. It has one more case
// than model.LayerKind: audio layers are exported as Unknown layers but their
// markers feed the audio track.
type LayerType int

const (
	TypeUnknown LayerType = iota
	TypeNull
	TypeSolid
	TypeText
	TypeShape
	TypeImage
	TypeVideo
	TypePreCompose
	TypeCamera
	TypeAudio
)

var layerTypeNames = [...]string{
	TypeUnknown:    "unknown",
	TypeNull:       "null",
	TypeSolid:      "solid",
	TypeText:       "text",
	TypeShape:      "shape",
	TypeImage:      "image",
	TypeVideo:      "video",
	TypePreCompose: "precompose",
	TypeCamera:     "camera",
	TypeAudio:      "audio",
}

func (t LayerType) String() string {
	if t >= 0 && int(t) < len(layerTypeNames) {
		return layerTypeNames[t]
	}
	return "unknown"
}

// Classify maps a host layer and its source item onto a layer type. The
// order of the checks matters: null, guide and adjustment flags win over the
// object type, and a still solid wins over a missing footage flag.
func Classify(info host.LayerInfo, source host.ItemInfo) LayerType {
	if info.Flags.Has(host.FlagNull) || info.Flags.Has(host.FlagGuide) || info.Flags.Has(host.FlagAdjustment) {
		return TypeNull
	}
	switch info.Object {
	case host.ObjectVector:
		return TypeShape
	case host.ObjectText:
		return TypeText
	case host.ObjectCamera:
		return TypeCamera
	case host.ObjectAV:
	default:
		return TypeUnknown
	}

	switch source.Type {
	case host.ItemComposition:
		return TypePreCompose
	case host.ItemFootage:
		if source.Still {
			if source.Solid {
				return TypeSolid
			}
			if !source.Missing {
				return TypeImage
			}
		}
		if source.HasVideo {
			return TypeVideo
		}
		if source.HasAudio {
			return TypeAudio
		}
		if source.Missing {
			return TypeUnknown
		}
	}
	return TypeNull
}

// noSource stands in for a source item the host could not resolve. It is
// neither a composition nor footage.
var noSource = host.ItemInfo{Type: -1}
