package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/heimdex/pagexport/internal/alert"
	"github.com/heimdex/pagexport/internal/host"
	"github.com/heimdex/pagexport/internal/model"
	"github.com/heimdex/pagexport/internal/session"
)

const projectDocument = `
root: 1
items:
  - id: 1
    type: composition
    name: Main
    width: 720
    height: 1280
    frame_rate: 24
    duration: 2
    layers:
      - id: 10
        name: Title
        object: text
        flags: [video_active]
        in_point: 0
        duration: 2
        markers:
          - time: 0.5
            comment: '{"CachePolicy":2}'
          - time: 1
            comment: '{"CachePolicy":1}'
        streams:
          - match_name: ADBE Text Properties
            type: group
            streams:
              - match_name: ADBE Text Document
                type: text_document
                value:
                  text: {text: Hello, font_size: 24, direction: 2}
      - id: 11
        name: Photo A
        object: av
        source: 2
        flags: [video_active]
        in_point: 0
        duration: 1
      - id: 12
        name: Photo B
        object: av
        source: 2
        flags: [video_active]
        in_point: 1
        duration: 1
      - id: 13
        name: Child A
        object: av
        source: 3
        flags: [video_active]
        in_point: 0
        duration: 2
      - id: 14
        name: Child B
        object: av
        source: 3
        flags: [video_active]
        in_point: 0
        duration: 2
        offset: 0.5
      - id: 15
        name: Clip
        object: av
        source: 4
        flags: [video_active]
        in_point: 0
        duration: 2
      - id: 17
        name: Matte
        object: av
        source: 5
        in_point: 0
        duration: 2
      - id: 16
        name: Matted
        object: av
        source: 5
        flags: [video_active]
        in_point: 0
        duration: 2
        track_matte: alpha
        track_matte_layer: 17
      - id: 18
        name: Controller
        object: av
        flags: [null]
        in_point: 0
        duration: 2
      - id: 19
        name: Music
        object: av
        source: 6
        in_point: 0
        duration: 2
        markers:
          - time: 1
            comment: beat
      - id: 21
        name: Glow
        object: av
        source: 7
        flags: [video_active]
        in_point: 0
        duration: 1
  - id: 2
    type: footage
    name: photo.png
    width: 100
    height: 100
    still: true
  - id: 3
    type: composition
    name: Child
    width: 100
    height: 100
    frame_rate: 24
    duration: 2
    layers:
      - id: 30
        name: Shape
        object: vector
        flags: [video_active]
        in_point: 0
        duration: 2
        streams:
          - match_name: ADBE Root Vectors Group
            type: group
            streams:
              - match_name: ADBE Vector Group
                type: group
                streams:
                  - match_name: ADBE Vector Shape - Rect
                    type: group
                    streams:
                      - match_name: ADBE Vector Rect Size
                        type: two_d
                        value: {numbers: [50, 50]}
  - id: 4
    type: footage
    name: clip.mp4
    width: 320
    height: 240
    duration: 2
    has_video: true
  - id: 5
    type: footage
    name: Red Solid
    width: 720
    height: 1280
    still: true
    solid: true
    solid_color: {red: 255}
  - id: 6
    type: footage
    name: music.mp3
    duration: 2
    has_audio: true
  - id: 7
    type: composition
    name: Glow_bmp
    width: 64
    height: 64
    frame_rate: 30
    duration: 1
    frame_digests: [a, b]
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseDocument(t *testing.T, data string) *host.Document {
	t.Helper()
	doc, err := host.ParseDocument([]byte(data))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	return doc
}

func run(t *testing.T, data string, opts session.Options) *Result {
	t.Helper()
	doc := parseDocument(t, data)
	result, err := Run(context.Background(), doc, doc.Root, opts, testLogger())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return result
}

func layersByID(comp *model.Composition) map[model.ID]*model.Layer {
	out := make(map[model.ID]*model.Layer, len(comp.Layers))
	for _, l := range comp.Layers {
		out[l.ID] = l
	}
	return out
}

func hasWarning(warnings []alert.Warning, c alert.Category) bool {
	for _, w := range warnings {
		if w.Category == c {
			return true
		}
	}
	return false
}

func TestRunOrdersChildrenBeforeParents(t *testing.T) {
	result := run(t, projectDocument, session.DefaultOptions())

	var names []string
	for _, c := range result.Compositions {
		names = append(names, c.Name)
	}
	want := []string{"Child", "Glow_bmp", "Main"}
	if len(names) != len(want) {
		t.Fatalf("compositions = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("compositions = %v, want %v", names, want)
		}
	}
	if result.Root().ID != 1 {
		t.Errorf("Root() = %d, want 1", result.Root().ID)
	}

	seen := make(map[*model.Composition]bool)
	for _, comp := range result.Compositions {
		for _, l := range comp.Layers {
			if pre, ok := l.PreComposition(); ok && !seen[pre.Composition] {
				t.Errorf("composition %s referenced by %s before it was listed", pre.Composition.Name, comp.Name)
			}
		}
		seen[comp] = true
	}
}

func TestRunSharesReferencedResources(t *testing.T) {
	result := run(t, projectDocument, session.DefaultOptions())
	layers := layersByID(result.Root())

	a, b := layers[11].Content.(*model.Image), layers[12].Content.(*model.Image)
	if a.Bytes != b.Bytes {
		t.Errorf("layers using the same footage got different image bytes")
	}
	if len(result.Images) != 2 {
		t.Errorf("len(Images) = %d, want 2", len(result.Images))
	}

	childA, okA := layers[13].PreComposition()
	childB, okB := layers[14].PreComposition()
	if !okA || !okB {
		t.Fatalf("precompose layers missing composition")
	}
	if childA.Composition != childB.Composition || childA.Composition != result.Compositions[0] {
		t.Errorf("precompose layers do not share one composition instance")
	}
	if childB.CompositionStartTime != 12 {
		t.Errorf("CompositionStartTime = %d, want 12", childB.CompositionStartTime)
	}
}

func TestRunLayerContents(t *testing.T) {
	result := run(t, projectDocument, session.DefaultOptions())
	root := result.Root()
	layers := layersByID(root)

	if root.Duration != 48 || root.WorkAreaDuration != 48 {
		t.Errorf("Duration = %d, WorkAreaDuration = %d, want 48", root.Duration, root.WorkAreaDuration)
	}

	title := layers[10]
	if title.Kind() != model.KindText || title.CachePolicy != model.CacheDisable {
		t.Errorf("title kind = %s, cache policy = %d", title.Kind(), title.CachePolicy)
	}
	doc, _ := title.Content.(*model.Text).SourceText.StaticValue()
	if doc == nil || doc.Text != "Hello" || doc.Direction != model.TextDirectionVertical {
		t.Errorf("source text = %+v", doc)
	}

	clip := layers[15]
	if clip.Kind() != model.KindVideo {
		t.Fatalf("clip kind = %s, want video", clip.Kind())
	}
	if len(clip.Markers) == 0 || clip.Markers[0].Comment != model.VideoTrackMarker || clip.Markers[0].Duration != 48 {
		t.Errorf("clip markers = %+v", clip.Markers)
	}

	matted := layers[16]
	if matted.TrackMatteType != model.MatteAlpha || matted.TrackMatteLayer == nil {
		t.Fatalf("matted layer = %+v", matted)
	}
	if m := matted.TrackMatteLayer; m.ID != 17 || m.IsActive || m.TrackMatteType != model.MatteNone {
		t.Errorf("matte copy = %+v", m)
	}
	if solid, ok := matted.Content.(*model.Solid); !ok || solid.Color.Red != 255 {
		t.Errorf("matted content = %+v", matted.Content)
	}

	if _, ok := layers[18]; ok {
		t.Errorf("unreferenced null layer survived pruning")
	}
	if _, ok := layers[19]; ok {
		t.Errorf("audio layer survived pruning")
	}
	if root.Audio == nil || len(root.Audio.Markers) != 1 || root.Audio.Markers[0].Comment != "beat" {
		t.Errorf("root audio = %+v", root.Audio)
	}

	glow, ok := layers[21].PreComposition()
	if !ok || glow.Composition.Kind != model.VideoComposition || len(glow.Composition.Layers) != 0 {
		t.Fatalf("glow composition = %+v", glow)
	}
	if glow.Composition.FrameRate != 24 || len(glow.Composition.FrameDigests) != 2 {
		t.Errorf("glow frame rate = %v, digests = %v", glow.Composition.FrameRate, glow.Composition.FrameDigests)
	}

	shape := result.Compositions[0].Layers[0].Content.(*model.Shape)
	if len(shape.Contents) != 1 || len(shape.Contents[0].Elements) != 1 {
		t.Fatalf("shape contents = %+v", shape.Contents)
	}
	rect := shape.Contents[0].Elements[0]
	if size, ok := rect.Params["ADBE Vector Rect Size"]; !ok || size.Value != 50 {
		t.Errorf("rect params = %+v", rect.Params)
	}
}

func TestRunMissingComposition(t *testing.T) {
	doc := parseDocument(t, projectDocument)
	result, err := Run(context.Background(), doc, 99, session.DefaultOptions(), testLogger())
	if !errors.Is(err, ErrNoComposition) {
		t.Fatalf("Run() error = %v, want ErrNoComposition", err)
	}
	if !hasWarning(result.Warnings, alert.CompositionHandleNotFound) {
		t.Errorf("warnings = %v, want CompositionHandleNotFound", result.Warnings)
	}
}

func TestRunCancelledContext(t *testing.T) {
	doc := parseDocument(t, projectDocument)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Run(ctx, doc, doc.Root, session.DefaultOptions(), testLogger())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Cancelled || len(result.Compositions) != 0 {
		t.Fatalf("Cancelled = %v, compositions = %d", result.Cancelled, len(result.Compositions))
	}
}

// cancellingHost cancels the session when a given layer is read.
type cancellingHost struct {
	*host.Document
	s       *session.Session
	layerID model.ID
}

func (h *cancellingHost) Layer(comp model.ID, index int) (host.LayerInfo, error) {
	info, err := h.Document.Layer(comp, index)
	if err == nil && info.ID == h.layerID {
		h.s.Cancel()
	}
	return info, err
}

func TestExportCompositionCancelledMidway(t *testing.T) {
	s := session.New(session.DefaultOptions(), testLogger())
	h := &cancellingHost{Document: parseDocument(t, projectDocument), s: s, layerID: 18}

	root := ExportComposition(s, h, 1)
	if root == nil {
		t.Fatalf("ExportComposition() = nil")
	}
	if !s.Cancelled() {
		t.Fatalf("session not cancelled")
	}
	layers := layersByID(root)
	if _, ok := layers[18]; !ok {
		t.Errorf("layers of a cancelled export should not be pruned")
	}
	if _, ok := layers[21]; ok {
		t.Errorf("layer after cancellation was exported")
	}
	if _, ok := s.Composition(7); ok {
		t.Errorf("composition after cancellation was exported")
	}
}

const cameraDocument = `
root: 1
items:
  - id: 1
    type: composition
    name: Scene
    width: 100
    height: 100
    frame_rate: 24
    duration: 1
    layers:
      - id: 40
        name: Camera
        object: camera
        flags: [video_active]
        in_point: 0
        duration: 1
        streams:
          - match_name: ADBE Transform Group
            type: group
            streams:
              - match_name: ADBE Position
                type: three_d_spatial
                value: {numbers: [10, 20, -30]}
              - match_name: ADBE Scale
                type: three_d
                value: {numbers: [50, 50, 50]}
              - match_name: ADBE Orientation
                type: three_d
                keys:
                  - {time: 0, value: {numbers: [0, 0, 0]}, out: bezier}
                  - {time: 1, value: {numbers: [0, 90, 0]}, in: bezier}
              - match_name: ADBE Opacity
                type: one_d
                value: {numbers: [40]}
      - id: 41
        name: Card
        object: av
        source: 2
        flags: [video_active, solo]
        in_point: 0
        duration: 1
  - id: 2
    type: footage
    name: card.png
    width: 10
    height: 10
    still: true
`

func TestRunCamera(t *testing.T) {
	opts := session.DefaultOptions()
	opts.TagMode = session.TagModeBeta
	result := run(t, cameraDocument, opts)

	camera, ok := layersByID(result.Root())[40]
	if !ok {
		t.Fatalf("camera layer missing, solo must not hide cameras")
	}
	tr := camera.Transform3D
	if tr == nil || camera.Transform != nil {
		t.Fatalf("camera should use a 3D transform")
	}
	if v, _ := tr.AnchorPoint.StaticValue(); v != (model.Point3D{X: 10, Y: 20, Z: -30}) {
		t.Errorf("anchor = %+v, want the position", v)
	}
	if v, _ := tr.Scale.StaticValue(); v != (model.Point3D{X: 1, Y: 1, Z: 1}) {
		t.Errorf("scale = %+v, want identity", v)
	}
	if v, _ := tr.Opacity.StaticValue(); v != model.Opaque {
		t.Errorf("opacity = %d, want opaque", v)
	}
	if !tr.Orientation.Animatable() {
		t.Fatalf("orientation should be animated")
	}
	if k := tr.Orientation.Keyframes[0]; len(k.BezierOut) != 1 || len(k.BezierIn) != 1 {
		t.Errorf("orientation handles = %d/%d, want a single eased dimension", len(k.BezierOut), len(k.BezierIn))
	}
	option := camera.Content.(*model.Camera).Option
	if v, _ := option.Zoom.StaticValue(); v != 1777.8 {
		t.Errorf("zoom = %v, want default", v)
	}
}

func TestRunLogsCompositionIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	doc := parseDocument(t, cameraDocument)

	if _, err := Run(context.Background(), doc, doc.Root, session.DefaultOptions(), logger); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	found := false
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, `"msg":"composition exported"`) && strings.Contains(line, `"composition_id":1`) {
			found = true
		}
	}
	if !found {
		t.Errorf("log output = %s, want composition exported with composition_id 1", buf.String())
	}
}

func TestRunCameraBelowTagLevel(t *testing.T) {
	result := run(t, cameraDocument, session.DefaultOptions())

	if _, ok := layersByID(result.Root())[40]; ok {
		t.Errorf("camera exported below its tag level")
	}
	if !hasWarning(result.Warnings, alert.CameraLayer) {
		t.Errorf("warnings = %v, want CameraLayer", result.Warnings)
	}
}

const verticalTextDocument = `
root: 1
items:
  - id: 1
    type: composition
    name: Poem
    width: 100
    height: 100
    frame_rate: 24
    duration: 1
    layers:
      - id: 60
        name: Verse
        object: text
        flags: [video_active]
        in_point: 0
        duration: 1
        streams:
          - match_name: ADBE Text Properties
            type: group
            streams:
              - match_name: ADBE Text Document
                type: text_document
                value:
                  text: {text: 静夜思, font_size: 30, direction: 2}
`

func TestRunVerticalTextBelowTagLevel(t *testing.T) {
	opts := session.DefaultOptions()
	opts.TagMode = session.TagModeCustom
	opts.TagLevel = uint16(session.TagTextSourceV3) - 1
	result := run(t, verticalTextDocument, opts)

	if !hasWarning(result.Warnings, alert.TagLevelVerticalText) {
		t.Errorf("warnings = %v, want TagLevelVerticalText", result.Warnings)
	}
	verse := layersByID(result.Root())[60]
	doc, _ := verse.Content.(*model.Text).SourceText.StaticValue()
	if doc.Direction != model.TextDirectionDefault {
		t.Errorf("direction = %d, want default", doc.Direction)
	}
}

const attachmentDocument = `
root: 1
items:
  - id: 1
    type: composition
    name: Cards
    width: 100
    height: 100
    frame_rate: 24
    duration: 1
    layers:
      - id: 50
        name: Backdrop
        object: av
        source: 2
        flags: [video_active]
        in_point: 0
        duration: 1
        streams:
          - match_name: ADBE Effect Parade
            type: group
            streams:
              - match_name: ADBE Text Background
                type: group
              - match_name: ADBE Foo
                type: group
      - id: 51
        name: Photo
        object: av
        source: 3
        flags: [video_active]
        in_point: 0
        duration: 1
        streams:
          - match_name: ADBE Effect Parade
            type: group
            streams:
              - match_name: ADBE Image Fill Rule
                type: group
                streams:
                  - match_name: ADBE Image Fill Rule1-0001
                    type: one_d
                    value: {numbers: [3]}
              - match_name: ADBE Image Fill Rule
                type: group
  - id: 2
    type: footage
    name: White Solid
    width: 100
    height: 100
    still: true
    solid: true
  - id: 3
    type: footage
    name: photo.png
    width: 100
    height: 100
    still: true
`

func TestRunAttachments(t *testing.T) {
	result := run(t, attachmentDocument, session.DefaultOptions())

	want := map[alert.Category]model.ID{
		alert.TextBackgroundOnlyTextLayer: 50,
		alert.UnsupportedEffects:          50,
		alert.ImageFillRuleOnlyOne:        51,
	}
	for c, layerID := range want {
		found := false
		for _, w := range result.Warnings {
			if w.Category == c && w.LayerID == uint32(layerID) {
				found = true
			}
		}
		if !found {
			t.Errorf("missing %s warning on layer %d, got %v", c, layerID, result.Warnings)
		}
	}

	layers := layersByID(result.Root())
	if len(layers[50].Effects) != 0 {
		t.Errorf("attachments and unsupported effects should not be exported as effects: %+v", layers[50].Effects)
	}
	img := layers[51].Content.(*model.Image)
	if img.FillRule == nil || img.FillRule.ScaleMode != model.ScaleLetterBox {
		t.Errorf("fill rule = %+v, want letter box", img.FillRule)
	}
}
