package model

type CompositionKind int

const (
	VectorComposition CompositionKind = iota
	BitmapComposition
	VideoComposition
)

func (k CompositionKind) String() string {
	switch k {
	case BitmapComposition:
		return "bitmap"
	case VideoComposition:
		return "video"
	}
	return "vector"
}

// TimeRange is an inclusive frame range.
type TimeRange struct {
	Start Frame `json:"start" yaml:"start"`
	End   Frame `json:"end" yaml:"end"`
}

type AudioTrack struct {
	Bytes     []byte    `json:"-"`
	StartTime Frame     `json:"start_time"`
	Markers   []*Marker `json:"markers,omitempty"`
}

type Composition struct {
	ID              ID              `json:"id"`
	Name            string          `json:"name"`
	Kind            CompositionKind `json:"kind"`
	Width           int32           `json:"width"`
	Height          int32           `json:"height"`
	FrameRate       float32         `json:"frame_rate"`
	Duration        Frame           `json:"duration"`
	BackgroundColor Color           `json:"background_color"`

	WorkAreaStart    Frame `json:"work_area_start"`
	WorkAreaDuration Frame `json:"work_area_duration"`

	Layers []*Layer    `json:"layers,omitempty"`
	Audio  *AudioTrack `json:"audio,omitempty"`

	// StaticTimeRanges and FrameDigests describe the rendered frames of a
	// sequence composition.
	StaticTimeRanges []TimeRange `json:"static_time_ranges,omitempty"`
	FrameDigests     []string    `json:"frame_digests,omitempty"`
}

// IsSequence reports whether the composition is exported as rendered frames.
func (c *Composition) IsSequence() bool {
	return c.Kind != VectorComposition
}
