package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/heimdex/pagexport/internal/alert"
	"github.com/heimdex/pagexport/internal/model"
)

// BuildManifest summarizes a result for the CLI and the API.
func BuildManifest(r *Result, title string) Manifest {
	m := Manifest{
		Title:       title,
		Cancelled:   r.Cancelled,
		ImageCount:  len(r.Images),
		MemoryBytes: r.Layout.GraphicsMemory,
	}
	if root := r.Root(); root != nil {
		m.RootID = root.ID
	}
	for _, c := range r.Compositions {
		m.Compositions = append(m.Compositions, CompositionManifest{
			ID:        c.ID,
			Name:      c.Name,
			Kind:      c.Kind.String(),
			Width:     c.Width,
			Height:    c.Height,
			FrameRate: c.FrameRate,
			Duration:  FramesToTimecode(c.Duration, c.FrameRate),
			Layers:    len(c.Layers),
		})
	}
	errs, _ := alert.Split(r.Warnings)
	m.Errors = len(errs)
	for _, w := range r.Warnings {
		m.Warnings = append(m.Warnings, WarningManifest{
			Category: w.Category.String(),
			IsError:  w.IsError(),
			Message:  w.Message(),
		})
	}
	return m
}

// Report renders a plain text listing of the exported compositions followed
// by the warnings, errors first.
func Report(r *Result, title string) string {
	lines := []string{fmt.Sprintf("TITLE: %s", title)}
	if r.Cancelled {
		lines = append(lines, "STATUS: CANCELLED")
	} else {
		lines = append(lines, "STATUS: COMPLETE")
	}
	lines = append(lines, "")

	for i, c := range r.Compositions {
		lines = append(lines, fmt.Sprintf("%03d  %-6s %-24s %4dx%-4d %s  layers=%d",
			i+1, c.Kind.String(), c.Name, c.Width, c.Height, FramesToTimecode(c.Duration, c.FrameRate), len(c.Layers)))
	}
	lines = append(lines, "",
		fmt.Sprintf("IMAGES: %d", len(r.Images)),
		fmt.Sprintf("GRAPHICS MEMORY: %s", humanize.IBytes(uint64(max(r.Layout.GraphicsMemory, 0)))),
		"")

	errs, warnings := alert.Split(r.Warnings)
	for _, w := range errs {
		lines = append(lines, "* ERROR: "+w.Message())
	}
	for _, w := range warnings {
		lines = append(lines, "* WARNING: "+w.Message())
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// FramesToTimecode formats a frame count as HH:MM:SS:FF.
func FramesToTimecode(frames model.Frame, frameRate float32) string {
	fps := int64(math.Round(float64(frameRate)))
	if fps <= 0 {
		fps = 24
	}
	if frames < 0 {
		frames = 0
	}
	ff := frames % fps
	totalSeconds := frames / fps
	seconds := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, seconds, ff)
}
