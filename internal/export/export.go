// Package export builds the composition tree of a host timeline, prunes dead
// layers and runs the lint checks.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heimdex/pagexport/internal/host"
	"github.com/heimdex/pagexport/internal/model"
	"github.com/heimdex/pagexport/internal/session"
	"github.com/heimdex/pagexport/internal/verify"
)

var ErrNoComposition = errors.New("no composition exported")

// Run exports the composition rootID and everything it references.
// Cancelling ctx stops the export at the next layer; the compositions built so
// far are returned with Result.Cancelled set.
func Run(ctx context.Context, h host.Host, rootID model.ID, opts session.Options, logger *slog.Logger) (*Result, error) {
	s := session.New(opts, logger)
	stop := context.AfterFunc(ctx, s.Cancel)
	defer stop()
	if ctx.Err() != nil {
		s.Cancel()
	}

	root := ExportComposition(s, h, rootID)
	result := &Result{
		Compositions: s.Compositions,
		Images:       s.Images,
		Cancelled:    s.Cancelled(),
	}
	if root == nil && !result.Cancelled {
		result.Warnings = s.Warnings
		return result, fmt.Errorf("composition %d: %w", rootID, ErrNoComposition)
	}

	if root != nil && len(s.AudioMarkers) > 0 {
		root.Audio = &model.AudioTrack{Markers: s.AudioMarkers}
	}

	if !result.Cancelled {
		verify.CheckBeforeExport(s, s.Compositions)
		result.Layout = verify.EstimateLayout(s.Compositions)
		verify.CheckAfterExport(s, s.Compositions, result.Layout)
	}
	result.Warnings = s.Warnings

	if logger != nil {
		logger.Info("export finished",
			"root_id", rootID,
			"compositions", len(result.Compositions),
			"warnings", len(result.Warnings),
			"cancelled", result.Cancelled,
		)
	}
	return result, nil
}
