package export

import (
	"encoding/json"
	"strings"

	"github.com/heimdex/pagexport/internal/alert"
	"github.com/heimdex/pagexport/internal/curve"
	"github.com/heimdex/pagexport/internal/host"
	"github.com/heimdex/pagexport/internal/model"
	"github.com/heimdex/pagexport/internal/session"
)

const cachePolicyKey = "CachePolicy"

func exportMarkers(s *session.Session, h host.Host, layerID model.ID) []*model.Marker {
	infos, err := h.Markers(layerID)
	if err != nil {
		s.PushWarning(alert.ExportAEError, err.Error())
		return nil
	}
	rate := s.FrameRate()
	markers := make([]*model.Marker, 0, len(infos))
	for _, m := range infos {
		markers = append(markers, &model.Marker{
			StartTime: curve.FrameOf(m.Time, rate),
			Duration:  curve.FrameOf(m.Duration, rate),
			Comment:   m.Comment,
		})
	}
	return markers
}

// parseMarkers reads structured settings out of marker comments. The first
// marker carrying a cache policy wins.
func parseMarkers(layer *model.Layer) {
	for _, m := range layer.Markers {
		if policy, ok := cachePolicy(m.Comment); ok {
			layer.CachePolicy = policy
			return
		}
	}
}

func cachePolicy(comment string) (model.CachePolicy, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(comment), &fields); err != nil {
		return model.CacheAuto, false
	}
	raw, ok := fields[cachePolicyKey]
	if !ok {
		return model.CacheAuto, false
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		switch n {
		case 1:
			return model.CacheEnable, true
		case 2:
			return model.CacheDisable, true
		}
		return model.CacheAuto, true
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		switch strings.ToLower(str) {
		case "enable":
			return model.CacheEnable, true
		case "disable":
			return model.CacheDisable, true
		}
	}
	return model.CacheAuto, true
}
