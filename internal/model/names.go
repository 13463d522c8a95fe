package model

import (
	"fmt"
	"strings"
)

var blendModeNames = []string{
	"normal", "multiply", "screen", "overlay", "darken", "lighten", "color_dodge", "color_burn",
	"hard_light", "soft_light", "difference", "exclusion", "hue", "saturation", "color",
	"luminosity", "add",
}

var trackMatteNames = []string{"none", "alpha", "alpha_inverted", "luma", "luma_inverted"}

// ParseName returns the index of s in names, ignoring case.
func ParseName(names []string, s string) (int, bool) {
	for i, n := range names {
		if strings.EqualFold(n, s) {
			return i, true
		}
	}
	return 0, false
}

func nameOf(names []string, i int) string {
	if i >= 0 && i < len(names) {
		return names[i]
	}
	return fmt.Sprintf("%d", i)
}

func (m BlendMode) String() string { return nameOf(blendModeNames, int(m)) }

func (m BlendMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *BlendMode) UnmarshalText(b []byte) error {
	i, ok := ParseName(blendModeNames, string(b))
	if !ok {
		return fmt.Errorf("unknown blend mode %q", string(b))
	}
	*m = BlendMode(i)
	return nil
}

func (t TrackMatteType) String() string { return nameOf(trackMatteNames, int(t)) }

func (t TrackMatteType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *TrackMatteType) UnmarshalText(b []byte) error {
	i, ok := ParseName(trackMatteNames, string(b))
	if !ok {
		return fmt.Errorf("unknown track matte %q", string(b))
	}
	*t = TrackMatteType(i)
	return nil
}
