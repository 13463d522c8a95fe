package host

import (
	"fmt"

	"github.com/heimdex/pagexport/internal/model"
	"gopkg.in/yaml.v3"
)

var (
	itemTypeNames   = []string{"composition", "footage"}
	objectTypeNames = []string{"av", "vector", "text", "camera", "light", "none"}
	valueTypeNames  = []string{
		"no_data", "group", "one_d", "two_d", "two_d_spatial", "three_d", "three_d_spatial",
		"color", "arbitrary", "layer_id", "mask_id", "mask", "text_document",
	}
	interpNames = []string{"linear", "bezier", "hold"}
	flagNames   = []string{
		"video_active", "solo", "null", "guide", "adjustment", "3d", "time_remapping",
		"motion_blur", "look_at_poi", "auto_orient",
	}
)

func unmarshalName(names []string, kind string, b []byte) (int, error) {
	i, ok := model.ParseName(names, string(b))
	if !ok {
		return 0, fmt.Errorf("unknown %s %q", kind, string(b))
	}
	return i, nil
}

func (t ItemType) MarshalText() ([]byte, error) { return []byte(itemTypeNames[t]), nil }

func (t *ItemType) UnmarshalText(b []byte) error {
	i, err := unmarshalName(itemTypeNames, "item type", b)
	*t = ItemType(i)
	return err
}

func (t ObjectType) MarshalText() ([]byte, error) { return []byte(objectTypeNames[t]), nil }

func (t *ObjectType) UnmarshalText(b []byte) error {
	i, err := unmarshalName(objectTypeNames, "object type", b)
	*t = ObjectType(i)
	return err
}

func (t ValueType) MarshalText() ([]byte, error) { return []byte(valueTypeNames[t]), nil }

func (t *ValueType) UnmarshalText(b []byte) error {
	i, err := unmarshalName(valueTypeNames, "value type", b)
	*t = ValueType(i)
	return err
}

func (k KeyInterpolation) MarshalText() ([]byte, error) { return []byte(interpNames[k]), nil }

func (k *KeyInterpolation) UnmarshalText(b []byte) error {
	i, err := unmarshalName(interpNames, "interpolation", b)
	*k = KeyInterpolation(i)
	return err
}

// Names returns the flag names set in f.
func (f LayerFlags) Names() []string {
	var names []string
	for i, name := range flagNames {
		if f&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return names
}

// ParseLayerFlags combines flag names.
func ParseLayerFlags(names []string) (LayerFlags, error) {
	var f LayerFlags
	for _, name := range names {
		i, err := unmarshalName(flagNames, "layer flag", []byte(name))
		if err != nil {
			return 0, err
		}
		f |= 1 << i
	}
	return f, nil
}

func (f LayerFlags) MarshalYAML() (interface{}, error) {
	return f.Names(), nil
}

func (f *LayerFlags) UnmarshalYAML(value *yaml.Node) error {
	var names []string
	if err := value.Decode(&names); err != nil {
		return err
	}
	parsed, err := ParseLayerFlags(names)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
