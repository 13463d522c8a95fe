package api

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/heimdex/pagexport/internal/runs"
	"github.com/heimdex/pagexport/internal/session"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type StatusResponse struct {
	State       string          `json:"state"`
	LastError   string          `json:"last_error,omitempty"`
	RunsQueued  int             `json:"runs_queued"`
	RunsRunning int             `json:"runs_running"`
	RunCounts   map[string]int  `json:"run_counts"`
	Runner      *RunnerResponse `json:"runner,omitempty"`
	Host        *HostResponse   `json:"host,omitempty"`
	Budgets     BudgetsResponse `json:"budgets"`
}

type RunnerResponse struct {
	Running    bool `json:"running"`
	Paused     bool `json:"paused"`
	ActiveRuns int  `json:"active_runs"`
}

type HostResponse struct {
	CPUs            int    `json:"cpus"`
	MemoryTotal     string `json:"memory_total"`
	MemoryAvailable string `json:"memory_available"`
	MemoryUsedPct   string `json:"memory_used_pct"`
}

type BudgetsResponse struct {
	GraphicsMemory   string `json:"graphics_memory"`
	GraphicsMemoryUI string `json:"graphics_memory_ui"`
}

// OptionsRequest overrides the server's export defaults. Unset fields keep
// the default.
type OptionsRequest struct {
	TagMode               string   `json:"tag_mode,omitempty"`
	TagLevel              *uint16  `json:"tag_level,omitempty"`
	FrameRate             *float32 `json:"frame_rate,omitempty"`
	Scenes                string   `json:"scenes,omitempty"`
	SequenceSuffix        string   `json:"sequence_suffix,omitempty"`
	ExportStaticCompAsBmp *bool    `json:"export_static_comp_as_bmp,omitempty"`
}

// Apply returns defaults with the request's fields applied.
func (o *OptionsRequest) Apply(defaults session.Options) (session.Options, error) {
	opts := defaults
	if o == nil {
		return opts, nil
	}
	if o.TagMode != "" {
		mode, err := session.ParseTagMode(o.TagMode)
		if err != nil {
			return opts, fmt.Errorf("invalid tag_mode: %w", err)
		}
		opts.TagMode = mode
	}
	if o.TagLevel != nil {
		opts.TagMode = session.TagModeCustom
		opts.TagLevel = *o.TagLevel
	}
	if o.FrameRate != nil {
		if *o.FrameRate <= 0 {
			return opts, fmt.Errorf("invalid frame_rate: %v", *o.FrameRate)
		}
		opts.FrameRate = *o.FrameRate
	}
	if o.Scenes != "" {
		scenes, err := session.ParseScenes(o.Scenes)
		if err != nil {
			return opts, fmt.Errorf("invalid scenes: %w", err)
		}
		opts.Scenes = scenes
	}
	if o.SequenceSuffix != "" {
		opts.SequenceSuffix = o.SequenceSuffix
	}
	if o.ExportStaticCompAsBmp != nil {
		opts.ExportStaticCompAsBmp = *o.ExportStaticCompAsBmp
	}
	return opts.Normalize(), nil
}

type SubmitRunRequest struct {
	DocumentPath string          `json:"document_path"`
	RootID       uint32          `json:"root_id,omitempty"`
	Options      *OptionsRequest `json:"options,omitempty"`
}

type SubmitRunResponse struct {
	RunID string `json:"run_id"`
}

type RunResponse struct {
	ID               string          `json:"id"`
	DocumentPath     string          `json:"document_path"`
	Title            string          `json:"title"`
	RootID           uint32          `json:"root_id,omitempty"`
	Status           string          `json:"status"`
	Options          session.Options `json:"options"`
	CompositionCount int             `json:"composition_count"`
	ImageCount       int             `json:"image_count"`
	ErrorCount       int             `json:"error_count"`
	WarningCount     int             `json:"warning_count"`
	GraphicsMemory   string          `json:"graphics_memory"`
	ManifestPath     string          `json:"manifest_path,omitempty"`
	ReportPath       string          `json:"report_path,omitempty"`
	Error            string          `json:"error,omitempty"`
	CreatedAt        string          `json:"created_at"`
	UpdatedAt        string          `json:"updated_at"`
	StartedAt        string          `json:"started_at,omitempty"`
	FinishedAt       string          `json:"finished_at,omitempty"`
	Elapsed          string          `json:"elapsed,omitempty"`
}

type RunsResponse struct {
	Runs []RunResponse `json:"runs"`
}

type WarningResponse struct {
	Category        string `json:"category"`
	Severity        string `json:"severity"`
	CompositionID   uint32 `json:"composition_id,omitempty"`
	CompositionName string `json:"composition_name,omitempty"`
	LayerID         uint32 `json:"layer_id,omitempty"`
	LayerName       string `json:"layer_name,omitempty"`
	Message         string `json:"message"`
}

type WarningsResponse struct {
	Errors   int               `json:"errors"`
	Warnings []WarningResponse `json:"warnings"`
}

type CompositionResponse struct {
	ID         uint32  `json:"id"`
	Name       string  `json:"name"`
	Kind       string  `json:"kind"`
	Width      int32   `json:"width"`
	Height     int32   `json:"height"`
	FrameRate  float32 `json:"frame_rate"`
	Duration   int64   `json:"duration"`
	Length     string  `json:"length"`
	LayerCount int     `json:"layer_count"`
}

type CompositionsResponse struct {
	Compositions []CompositionResponse `json:"compositions"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func RunToResponse(r *runs.Run) RunResponse {
	resp := RunResponse{
		ID:               r.ID,
		DocumentPath:     r.DocumentPath,
		Title:            r.Title,
		RootID:           r.RootID,
		Status:           r.Status,
		Options:          r.Options,
		CompositionCount: r.CompositionCount,
		ImageCount:       r.ImageCount,
		ErrorCount:       r.ErrorCount,
		WarningCount:     r.WarningCount,
		GraphicsMemory:   humanize.IBytes(uint64(max(r.GraphicsMemory, 0))),
		ManifestPath:     r.ManifestPath,
		ReportPath:       r.ReportPath,
		Error:            r.Error,
		CreatedAt:        r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        r.UpdatedAt.Format(time.RFC3339),
	}
	if r.StartedAt != nil {
		resp.StartedAt = r.StartedAt.Format(time.RFC3339)
		if r.FinishedAt != nil {
			resp.Elapsed = r.FinishedAt.Sub(*r.StartedAt).Round(time.Millisecond).String()
		}
	}
	if r.FinishedAt != nil {
		resp.FinishedAt = r.FinishedAt.Format(time.RFC3339)
	}
	return resp
}

func WarningToResponse(w *runs.Warning) WarningResponse {
	severity := "warning"
	if w.IsError {
		severity = "error"
	}
	return WarningResponse{
		Category:        w.Category,
		Severity:        severity,
		CompositionID:   w.CompositionID,
		CompositionName: w.CompositionName,
		LayerID:         w.LayerID,
		LayerName:       w.LayerName,
		Message:         w.Message,
	}
}

func CompositionToResponse(c *runs.Composition) CompositionResponse {
	length := ""
	if c.FrameRate > 0 {
		seconds := float64(c.Duration) / float64(c.FrameRate)
		length = (time.Duration(seconds * float64(time.Second))).Round(time.Millisecond).String()
	}
	return CompositionResponse{
		ID:         c.CompositionID,
		Name:       c.Name,
		Kind:       c.Kind,
		Width:      c.Width,
		Height:     c.Height,
		FrameRate:  c.FrameRate,
		Duration:   c.Duration,
		Length:     length,
		LayerCount: c.LayerCount,
	}
}
