package export

import (
	"github.com/heimdex/pagexport/internal/alert"
	"github.com/heimdex/pagexport/internal/model"
	"github.com/heimdex/pagexport/internal/verify"
)

// Result is the output of one export run.
type Result struct {
	// Compositions are ordered children first; the root is last.
	Compositions []*model.Composition
	Images       []*model.ImageBytes
	Warnings     []alert.Warning
	Layout       verify.Layout
	Cancelled    bool
}

// Root returns the root composition, or nil when nothing was exported.
func (r *Result) Root() *model.Composition {
	if len(r.Compositions) == 0 {
		return nil
	}
	return r.Compositions[len(r.Compositions)-1]
}

// Manifest is the JSON summary written next to an export.
type Manifest struct {
	Title        string                `json:"title"`
	RootID       model.ID              `json:"root_id"`
	Cancelled    bool                  `json:"cancelled"`
	Compositions []CompositionManifest `json:"compositions"`
	ImageCount   int                   `json:"image_count"`
	MemoryBytes  int64                 `json:"graphics_memory_bytes"`
	Errors       int                   `json:"errors"`
	Warnings     []WarningManifest     `json:"warnings"`
}

type CompositionManifest struct {
	ID        model.ID `json:"id"`
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	Width     int32    `json:"width"`
	Height    int32    `json:"height"`
	FrameRate float32  `json:"frame_rate"`
	Duration  string   `json:"duration"`
	Layers    int      `json:"layers"`
}

type WarningManifest struct {
	Category string `json:"category"`
	IsError  bool   `json:"is_error"`
	Message  string `json:"message"`
}
