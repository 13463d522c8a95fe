package prune

import (
	"io"
	"log/slog"
	"testing"

	"github.com/heimdex/pagexport/internal/alert"
	"github.com/heimdex/pagexport/internal/model"
	"github.com/heimdex/pagexport/internal/session"
)

func newSession() *session.Session {
	return session.New(session.DefaultOptions(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func visible(id model.ID, content model.Content) *model.Layer {
	return &model.Layer{
		ID:        id,
		Duration:  10,
		IsActive:  true,
		Transform: &model.Transform2D{Opacity: model.Static(model.Opaque)},
		Content:   content,
	}
}

func entries(layers ...*model.Layer) []Entry {
	out := make([]Entry, len(layers))
	for i, l := range layers {
		out[i] = Entry{Layer: l}
	}
	return out
}

func ids(layers []*model.Layer) []model.ID {
	out := make([]model.ID, len(layers))
	for i, l := range layers {
		out[i] = l.ID
	}
	return out
}

func equalIDs(a, b []model.ID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPrune(t *testing.T) {
	tests := []struct {
		name   string
		layers func() []Entry
		total  model.Frame
		want   []model.ID
	}{
		{
			name: "unreferenced inactive null removed",
			layers: func() []Entry {
				null := visible(1, &model.Null{})
				null.IsActive = false
				return entries(null, visible(2, &model.Solid{}))
			},
			total: 10,
			want:  []model.ID{2},
		},
		{
			name: "active null removed",
			layers: func() []Entry {
				return entries(visible(1, &model.Null{}), visible(2, &model.Solid{}))
			},
			total: 10,
			want:  []model.ID{2},
		},
		{
			name: "parent null kept",
			layers: func() []Entry {
				child := visible(2, &model.Solid{})
				child.ParentID = 1
				return entries(visible(1, &model.Null{}), child)
			},
			total: 10,
			want:  []model.ID{1, 2},
		},
		{
			name: "static zero opacity removed",
			layers: func() []Entry {
				hidden := visible(1, &model.Solid{})
				hidden.Transform.Opacity = model.Static[model.Opacity](0)
				return entries(hidden, visible(2, &model.Solid{}))
			},
			total: 10,
			want:  []model.ID{2},
		},
		{
			name: "animated zero opacity kept",
			layers: func() []Entry {
				fading := visible(1, &model.Solid{})
				fading.Transform.Opacity = model.Animated([]*model.Keyframe[model.Opacity]{{EndTime: 5}})
				return entries(fading)
			},
			total: 10,
			want:  []model.ID{1},
		},
		{
			name: "3d opacity counts",
			layers: func() []Entry {
				l := visible(1, &model.Solid{})
				l.Transform = nil
				l.Transform3D = &model.Transform3D{Opacity: model.Static(model.Opaque)}
				return entries(l)
			},
			total: 10,
			want:  []model.ID{1},
		},
		{
			name: "starts after composition end",
			layers: func() []Entry {
				late := visible(1, &model.Solid{})
				late.StartTime = 10
				return entries(late, visible(2, &model.Solid{}))
			},
			total: 10,
			want:  []model.ID{2},
		},
		{
			name: "solo hides others but not cameras",
			layers: func() []Entry {
				e := entries(visible(1, &model.Solid{}), visible(2, &model.Solid{}), visible(3, &model.Camera{}))
				e[1].Solo = true
				return e
			},
			total: 10,
			want:  []model.ID{2, 3},
		},
		{
			name: "displacement map source kept",
			layers: func() []Entry {
				source := visible(1, &model.Solid{})
				source.IsActive = false
				user := visible(2, &model.Solid{})
				user.Effects = []*model.Effect{{Type: model.EffectDisplacementMap, DisplacementMapLayer: 1}}
				return entries(source, user)
			},
			total: 10,
			want:  []model.ID{1, 2},
		},
		{
			name: "track matte of surviving layer kept",
			layers: func() []Entry {
				matte := visible(1, &model.Solid{})
				matte.IsActive = false
				owner := visible(2, &model.Solid{})
				owner.TrackMatteType = model.MatteAlpha
				owner.TrackMatteLayer = matte
				return entries(matte, owner)
			},
			total: 10,
			want:  []model.ID{1, 2},
		},
		{
			name: "track matte of removed layer removed",
			layers: func() []Entry {
				matte := visible(1, &model.Solid{})
				matte.IsActive = false
				owner := visible(2, &model.Solid{})
				owner.IsActive = false
				owner.TrackMatteType = model.MatteAlpha
				owner.TrackMatteLayer = matte
				return entries(matte, owner)
			},
			total: 10,
			want:  []model.ID{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Prune(newSession(), tc.layers(), tc.total)
			if !equalIDs(ids(got), tc.want) {
				t.Errorf("Prune() = %v, want %v", ids(got), tc.want)
			}
		})
	}
}

func TestPruneKeepsReferencedInactive(t *testing.T) {
	matte := visible(1, &model.Solid{})
	owner := visible(2, &model.Solid{})
	owner.TrackMatteType = model.MatteLuma
	owner.TrackMatteLayer = matte

	e := entries(matte, owner)
	e[1].Solo = true
	got := Prune(newSession(), e, 10)

	if len(got) != 2 {
		t.Fatalf("got %v, want both layers", ids(got))
	}
	if got[0].IsActive {
		t.Error("matte should be inactive under solo")
	}
}

func TestPruneZeroDuration(t *testing.T) {
	parent := visible(1, &model.Solid{})
	parent.Duration = 0
	child := visible(2, &model.Solid{})
	child.ParentID = 1

	got := Prune(newSession(), entries(parent, child), 10)
	if len(got) != 2 {
		t.Fatalf("got %v, want both layers", ids(got))
	}
	if got[0].Duration != 1 || got[0].IsActive {
		t.Errorf("parent = duration %d active %v, want 1 and inactive", got[0].Duration, got[0].IsActive)
	}
}

func TestPruneAdjustmentWarning(t *testing.T) {
	s := newSession()
	e := entries(visible(5, &model.Null{}))
	e[0].Adjustment = true

	Prune(s, e, 10)
	if len(s.Warnings) != 1 || s.Warnings[0].Category != alert.AdjustmentLayer || s.Warnings[0].LayerID != 5 {
		t.Fatalf("warnings = %+v, want one adjustment warning on layer 5", s.Warnings)
	}
}

func TestPruneSurvivorsAreLive(t *testing.T) {
	var layers []*model.Layer
	for i := 1; i <= 12; i++ {
		var content model.Content = &model.Solid{}
		if i%3 == 0 {
			content = &model.Null{}
		}
		l := visible(model.ID(i), content)
		l.IsActive = i%2 == 0
		l.Duration = model.Frame(i % 4)
		l.StartTime = model.Frame(i % 5)
		if i%4 == 1 {
			l.ParentID = model.ID(i + 2)
		}
		layers = append(layers, l)
	}

	got := Prune(newSession(), entries(layers...), 4)
	for i, l := range got {
		if l.Duration == 0 {
			t.Errorf("layer %d survived with zero duration", l.ID)
		}
		if !l.IsActive && !IsReferenced(l.ID, layers, false) {
			if i+1 < len(got) && got[i+1].TrackMatteType != model.MatteNone {
				continue
			}
			t.Errorf("layer %d survived inactive and unreferenced", l.ID)
		}
	}
}
