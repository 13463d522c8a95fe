package host

import (
	"fmt"
	"os"

	"github.com/heimdex/pagexport/internal/model"
	"gopkg.in/yaml.v3"
)

// Document is an in-memory timeline loaded from YAML. It implements Host.
type Document struct {
	Root  model.ID `yaml:"root"`
	Items []*Item  `yaml:"items"`

	items     map[model.ID]*Item
	layers    map[model.ID]*Layer
	streams   []*Stream
	streamIDs map[*Stream]StreamID
}

type Item struct {
	ItemInfo `yaml:",inline"`
	Layers   []*Layer `yaml:"layers,omitempty"`
}

type Layer struct {
	LayerInfo `yaml:",inline"`
	Markers   []MarkerInfo `yaml:"markers,omitempty"`
	Streams   []*Stream    `yaml:"streams,omitempty"`
}

type Stream struct {
	StreamInfo `yaml:",inline"`
	Value      Value     `yaml:"value,omitempty"`
	Keys       []Key     `yaml:"keys,omitempty"`
	Streams    []*Stream `yaml:"streams,omitempty"`
}

func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return ParseDocument(data)
}

func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if err := doc.Index(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Save writes the document as YAML.
func (d *Document) Save(path string) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// Index rebuilds the lookup tables and assigns stream handles. It must be
// called after the document is modified in code.
func (d *Document) Index() error {
	d.items = make(map[model.ID]*Item, len(d.Items))
	d.layers = make(map[model.ID]*Layer)
	d.streams = nil
	d.streamIDs = make(map[*Stream]StreamID)

	for _, item := range d.Items {
		if _, dup := d.items[item.ID]; dup {
			return fmt.Errorf("duplicate item id %d", item.ID)
		}
		d.items[item.ID] = item
		for _, layer := range item.Layers {
			if _, dup := d.layers[layer.ID]; dup {
				return fmt.Errorf("duplicate layer id %d", layer.ID)
			}
			d.layers[layer.ID] = layer
			if err := d.indexStreams(layer.Streams); err != nil {
				return fmt.Errorf("layer %d: %w", layer.ID, err)
			}
		}
	}
	if d.Root != 0 {
		if _, ok := d.items[d.Root]; !ok {
			return fmt.Errorf("root composition %d: %w", d.Root, ErrNotFound)
		}
	}
	return nil
}

// indexStreams assigns handles depth first. Key times of a stream must be
// strictly increasing.
func (d *Document) indexStreams(streams []*Stream) error {
	for _, s := range streams {
		for i := 1; i < len(s.Keys); i++ {
			if s.Keys[i].Time <= s.Keys[i-1].Time {
				return fmt.Errorf("stream %q: key %d at %gs is not after key %d at %gs",
					s.MatchName, i, s.Keys[i].Time, i-1, s.Keys[i-1].Time)
			}
		}
		d.streams = append(d.streams, s)
		d.streamIDs[s] = StreamID(len(d.streams))
		if err := d.indexStreams(s.Streams); err != nil {
			return err
		}
	}
	return nil
}

func (d *Document) idOf(s *Stream) StreamID {
	return d.streamIDs[s]
}

func (d *Document) stream(id StreamID) (*Stream, error) {
	if id <= 0 || int(id) > len(d.streams) {
		return nil, fmt.Errorf("stream %d: %w", id, ErrNotFound)
	}
	return d.streams[id-1], nil
}

func (d *Document) Item(id model.ID) (ItemInfo, error) {
	item, ok := d.items[id]
	if !ok {
		return ItemInfo{}, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	return item.ItemInfo, nil
}

func (d *Document) composition(id model.ID) (*Item, error) {
	item, ok := d.items[id]
	if !ok || item.Type != ItemComposition {
		return nil, fmt.Errorf("composition %d: %w", id, ErrNotFound)
	}
	return item, nil
}

func (d *Document) NumLayers(comp model.ID) (int, error) {
	item, err := d.composition(comp)
	if err != nil {
		return 0, err
	}
	return len(item.Layers), nil
}

func (d *Document) Layer(comp model.ID, index int) (LayerInfo, error) {
	item, err := d.composition(comp)
	if err != nil {
		return LayerInfo{}, err
	}
	if index < 0 || index >= len(item.Layers) {
		return LayerInfo{}, fmt.Errorf("layer index %d of composition %d: %w", index, comp, ErrNotFound)
	}
	return item.Layers[index].LayerInfo, nil
}

func (d *Document) Markers(layer model.ID) ([]MarkerInfo, error) {
	l, ok := d.layers[layer]
	if !ok {
		return nil, fmt.Errorf("layer %d: %w", layer, ErrNotFound)
	}
	return l.Markers, nil
}

func (d *Document) LayerStream(layer model.ID, matchName string) (StreamID, error) {
	l, ok := d.layers[layer]
	if !ok {
		return 0, fmt.Errorf("layer %d: %w", layer, ErrNotFound)
	}
	for _, s := range l.Streams {
		if s.MatchName == matchName {
			return d.idOf(s), nil
		}
	}
	return 0, fmt.Errorf("stream %q of layer %d: %w", matchName, layer, ErrNotFound)
}

func (d *Document) NumStreams(group StreamID) (int, error) {
	s, err := d.stream(group)
	if err != nil {
		return 0, err
	}
	return len(s.Streams), nil
}

func (d *Document) StreamByIndex(group StreamID, index int) (StreamID, error) {
	s, err := d.stream(group)
	if err != nil {
		return 0, err
	}
	if index < 0 || index >= len(s.Streams) {
		return 0, fmt.Errorf("stream index %d: %w", index, ErrNotFound)
	}
	return d.idOf(s.Streams[index]), nil
}

func (d *Document) StreamByName(group StreamID, matchName string) (StreamID, error) {
	s, err := d.stream(group)
	if err != nil {
		return 0, err
	}
	for _, child := range s.Streams {
		if child.MatchName == matchName {
			return d.idOf(child), nil
		}
	}
	return 0, fmt.Errorf("stream %q: %w", matchName, ErrNotFound)
}

func (d *Document) StreamInfo(stream StreamID) (StreamInfo, error) {
	s, err := d.stream(stream)
	if err != nil {
		return StreamInfo{}, err
	}
	info := s.StreamInfo
	if len(s.Keys) > 1 {
		info.CanVary = true
	}
	if info.Dimensionality == 0 {
		info.Dimensionality = defaultDimensionality(info.Type)
	}
	return info, nil
}

func (d *Document) StreamValue(stream StreamID) (Value, error) {
	s, err := d.stream(stream)
	if err != nil {
		return Value{}, err
	}
	if len(s.Keys) > 0 && len(s.Value.Numbers) == 0 && s.Value.Path == nil && s.Value.Text == nil {
		return s.Keys[0].Value, nil
	}
	return s.Value, nil
}

func (d *Document) NumKeys(stream StreamID) (int, error) {
	s, err := d.stream(stream)
	if err != nil {
		return 0, err
	}
	return len(s.Keys), nil
}

func (d *Document) Key(stream StreamID, index int) (Key, error) {
	s, err := d.stream(stream)
	if err != nil {
		return Key{}, err
	}
	if index < 0 || index >= len(s.Keys) {
		return Key{}, fmt.Errorf("key %d: %w", index, ErrNotFound)
	}
	return s.Keys[index], nil
}

func defaultDimensionality(t ValueType) int {
	switch t {
	case Value2D:
		return 2
	case Value3D:
		return 3
	}
	return 1
}
