// Package runs keeps the catalog of export runs: timeline documents queued
// for export, their status and the warnings and compositions they produced.
package runs

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/heimdex/pagexport/internal/session"
)

const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)

var ErrRunNotFound = errors.New("run not found")

type Run struct {
	ID               string          `json:"id"`
	DocumentPath     string          `json:"document_path"`
	DocumentMtime    time.Time       `json:"document_mtime"`
	Title            string          `json:"title"`
	RootID           uint32          `json:"root_id,omitempty"`
	Status           string          `json:"status"`
	Options          session.Options `json:"options"`
	CompositionCount int             `json:"composition_count"`
	ImageCount       int             `json:"image_count"`
	ErrorCount       int             `json:"error_count"`
	WarningCount     int             `json:"warning_count"`
	GraphicsMemory   int64           `json:"graphics_memory"`
	ManifestPath     string          `json:"manifest_path,omitempty"`
	ReportPath       string          `json:"report_path,omitempty"`
	Error            string          `json:"error,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	StartedAt        *time.Time      `json:"started_at,omitempty"`
	FinishedAt       *time.Time      `json:"finished_at,omitempty"`
}

// Done reports whether the run reached a final status.
func (r *Run) Done() bool {
	switch r.Status {
	case StatusCompleted, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

type Warning struct {
	ID              string `json:"id"`
	RunID           string `json:"run_id"`
	Seq             int    `json:"seq"`
	Category        string `json:"category"`
	IsError         bool   `json:"is_error"`
	CompositionID   uint32 `json:"composition_id"`
	CompositionName string `json:"composition_name"`
	LayerID         uint32 `json:"layer_id"`
	LayerName       string `json:"layer_name"`
	Info            string `json:"info"`
	Message         string `json:"message"`
}

type Composition struct {
	RunID         string  `json:"run_id"`
	Seq           int     `json:"seq"`
	CompositionID uint32  `json:"composition_id"`
	Name          string  `json:"name"`
	Kind          string  `json:"kind"`
	Width         int32   `json:"width"`
	Height        int32   `json:"height"`
	FrameRate     float32 `json:"frame_rate"`
	Duration      int64   `json:"duration"`
	LayerCount    int     `json:"layer_count"`
}

var DocumentExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
}

func NewID() string {
	return uuid.NewString()
}

func IsDocumentFile(filename string) bool {
	return DocumentExtensions[strings.ToLower(filepath.Ext(filename))]
}

// TitleFromPath names a run after its document file.
func TitleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
