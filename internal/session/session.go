// Package session holds the mutable state shared by one export run.
//
// A Session is not safe for concurrent use. Separate runs use separate
// sessions; only Cancel may be called from another goroutine.
package session

import (
	"log/slog"
	"sync/atomic"

	"github.com/heimdex/pagexport/internal/alert"
	"github.com/heimdex/pagexport/internal/model"
)

type Session struct {
	Options Options

	// Compositions lists exported compositions, children before parents.
	Compositions []*model.Composition
	Images       []*model.ImageBytes
	AudioMarkers []*model.Marker
	Warnings     []alert.Warning

	// CompositionID, LayerID and LayerIndex are the current context used to
	// attribute warnings.
	CompositionID model.ID
	LayerID       model.ID
	LayerIndex    int

	frameRate        float32
	compositionsByID map[model.ID]*model.Composition
	imagesByID       map[model.ID]*model.ImageBytes
	compNames        map[model.ID]string
	layerNames       map[model.ID]string
	traits           map[model.ID]LayerTraits

	cancelled atomic.Bool
	logger    *slog.Logger
}

func New(opts Options, logger *slog.Logger) *Session {
	return &Session{
		Options:          opts.Normalize(),
		frameRate:        DefaultFrameRate,
		compositionsByID: make(map[model.ID]*model.Composition),
		imagesByID:       make(map[model.ID]*model.ImageBytes),
		compNames:        make(map[model.ID]string),
		layerNames:       make(map[model.ID]string),
		traits:           make(map[model.ID]LayerTraits),
		logger:           logger,
	}
}

func (s *Session) Logger() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

func (s *Session) Supports(tag TagCode) bool {
	return s.Options.Supports(tag)
}

// FrameRate is the frame rate of the composition currently being exported.
func (s *Session) FrameRate() float32 {
	return s.frameRate
}

// EnterComposition makes id the current composition and returns a func that
// restores the previous context.
func (s *Session) EnterComposition(id model.ID, name string, frameRate float32) func() {
	prevID, prevRate := s.CompositionID, s.frameRate
	s.CompositionID = id
	s.compNames[id] = name
	if frameRate > 0 {
		s.frameRate = frameRate
	}
	return func() {
		s.CompositionID = prevID
		s.frameRate = prevRate
	}
}

// EnterLayer makes id the current layer and returns a func that restores the
// previous one.
func (s *Session) EnterLayer(id model.ID, name string) func() {
	prev := s.LayerID
	s.LayerID = id
	if name != "" {
		s.layerNames[id] = name
	}
	return func() { s.LayerID = prev }
}

// AtLayerIndex sets the positional context and returns a restore func.
func (s *Session) AtLayerIndex(index int) func() {
	prev := s.LayerIndex
	s.LayerIndex = index
	return func() { s.LayerIndex = prev }
}

// PushWarning records a warning against the current composition and layer.
func (s *Session) PushWarning(c alert.Category, addInfo string) {
	s.PushWarningAt(c, s.CompositionID, s.LayerID, addInfo)
}

func (s *Session) PushWarningAt(c alert.Category, compID, layerID model.ID, addInfo string) {
	w := alert.New(c, addInfo)
	w.CompositionID = uint32(compID)
	w.LayerID = uint32(layerID)
	w.CompositionName = s.compNames[compID]
	w.LayerName = s.layerNames[layerID]
	s.Warnings = append(s.Warnings, w)

	if s.logger != nil {
		s.logger.Debug("export warning",
			"category", c.String(),
			"composition_id", compID,
			"layer_id", layerID,
			"info", w.Info,
		)
	}
}

// Composition returns the cached composition with the given id.
func (s *Session) Composition(id model.ID) (*model.Composition, bool) {
	c, ok := s.compositionsByID[id]
	return c, ok
}

// Reserve caches comp before its layers are built so nested references
// resolve to the same instance.
func (s *Session) Reserve(comp *model.Composition) {
	s.compositionsByID[comp.ID] = comp
}

// AddComposition appends a finished composition to the ordered list.
func (s *Session) AddComposition(comp *model.Composition) {
	s.compositionsByID[comp.ID] = comp
	s.Compositions = append(s.Compositions, comp)
}

// Image returns the shared image bytes for a source item, creating them on
// first use.
func (s *Session) Image(id model.ID, width, height int32, video bool) *model.ImageBytes {
	if img, ok := s.imagesByID[id]; ok {
		return img
	}
	img := &model.ImageBytes{ID: id, Width: width, Height: height, Video: video}
	s.imagesByID[id] = img
	s.Images = append(s.Images, img)
	return img
}

// CompositionName returns the name registered for a composition id.
func (s *Session) CompositionName(id model.ID) string {
	return s.compNames[id]
}

// LayerTraits are host layer switches the exported model does not carry.
type LayerTraits struct {
	Adjustment    bool
	TimeRemapping bool
	ThreeD        bool
	MotionBlur    bool
}

func (s *Session) SetTraits(id model.ID, t LayerTraits) {
	s.traits[id] = t
}

// Traits returns the switches recorded for a layer by the builder.
func (s *Session) Traits(id model.ID) LayerTraits {
	return s.traits[id]
}

// Cancel asks the running export to stop at the next layer or composition.
func (s *Session) Cancel() {
	s.cancelled.Store(true)
}

func (s *Session) Cancelled() bool {
	return s.cancelled.Load()
}
