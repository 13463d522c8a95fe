package runs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/heimdex/pagexport/internal/alert"
	"github.com/heimdex/pagexport/internal/export"
	"github.com/heimdex/pagexport/internal/host"
	"github.com/heimdex/pagexport/internal/logging"
	"github.com/heimdex/pagexport/internal/model"
	"github.com/heimdex/pagexport/internal/session"
)

var (
	ErrNotDocument = errors.New("not a timeline document")
	ErrRunFinished = errors.New("run already finished")
)

type RunService interface {
	Submit(ctx context.Context, path string, rootID uint32, opts *session.Options) (*Run, error)
	Get(ctx context.Context, id string) (*Run, error)
	List(ctx context.Context, limit int) ([]*Run, error)
	Delete(ctx context.Context, id string) error
	Cancel(ctx context.Context, id string) error
	Warnings(ctx context.Context, id string) ([]*Warning, error)
	Compositions(ctx context.Context, id string) ([]*Composition, error)
	StatusCounts(ctx context.Context) (map[string]int, error)
	Execute(ctx context.Context, run *Run) error
}

type Service struct {
	repo      Repository
	outputDir string
	defaults  session.Options
	logger    *slog.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func NewService(repo Repository, outputDir string, defaults session.Options, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		outputDir: outputDir,
		defaults:  defaults.Normalize(),
		logger:    logger,
		cancels:   make(map[string]context.CancelFunc),
	}
}

// Submit queues an export of the document at path. A zero rootID exports the
// document's own root and nil opts use the service defaults.
func (s *Service) Submit(ctx context.Context, path string, rootID uint32, opts *session.Options) (*Run, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("document does not exist: %w", err)
	}
	if info.IsDir() || !IsDocumentFile(absPath) {
		return nil, fmt.Errorf("%w: %s", ErrNotDocument, filepath.Base(absPath))
	}

	options := s.defaults
	if opts != nil {
		options = opts.Normalize()
	}
	now := time.Now()
	run := &Run{
		ID:            NewID(),
		DocumentPath:  absPath,
		DocumentMtime: info.ModTime(),
		Title:         TitleFromPath(absPath),
		RootID:        rootID,
		Status:        StatusQueued,
		Options:       options,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.CreateRun(ctx, run); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("run queued", "run_id", run.ID, "document", logging.SanitizePath(absPath))
	}
	return run, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Run, error) {
	run, err := s.repo.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, ErrRunNotFound
	}
	return run, nil
}

func (s *Service) List(ctx context.Context, limit int) ([]*Run, error) {
	return s.repo.ListRuns(ctx, limit)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	run, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	s.cancelRunning(run.ID)
	return s.repo.DeleteRun(ctx, run.ID)
}

// Cancel stops a queued or running run. A running export notices on its next
// layer and finishes as cancelled.
func (s *Service) Cancel(ctx context.Context, id string) error {
	run, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if run.Done() {
		return ErrRunFinished
	}
	if s.cancelRunning(run.ID) {
		return nil
	}
	return s.repo.UpdateRunStatus(ctx, run.ID, StatusCancelled, "")
}

func (s *Service) cancelRunning(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cancel, ok := s.cancels[id]
	if ok {
		cancel()
	}
	return ok
}

func (s *Service) Warnings(ctx context.Context, id string) ([]*Warning, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListWarnings(ctx, id)
}

func (s *Service) Compositions(ctx context.Context, id string) ([]*Composition, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListCompositions(ctx, id)
}

func (s *Service) StatusCounts(ctx context.Context) (map[string]int, error) {
	return s.repo.CountRunsByStatus(ctx)
}

// Execute exports the document of run, stores its warnings and compositions
// and writes the manifest and report under the run's output directory.
func (s *Service) Execute(ctx context.Context, run *Run) error {
	logger := s.logger
	if logger != nil {
		logger = logging.WithRunID(logger, run.ID)
	}

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancels[run.ID] = cancel
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.cancels, run.ID)
		s.mu.Unlock()
		cancel()
	}()

	started, err := s.repo.MarkRunStarted(context.WithoutCancel(ctx), run.ID)
	if err != nil {
		return fmt.Errorf("failed to start run: %w", err)
	}
	if !started {
		if logger != nil {
			logger.Info("run no longer queued, skipping")
		}
		return nil
	}
	run.Status = StatusRunning
	if logger != nil {
		logger.Info("starting export", "document", logging.SanitizePath(run.DocumentPath))
	}

	doc, err := host.LoadDocument(run.DocumentPath)
	if err != nil {
		return s.fail(run, err)
	}
	rootID := doc.Root
	if run.RootID != 0 {
		rootID = model.ID(run.RootID)
	}

	result, err := export.Run(ctx, doc, rootID, run.Options, logger)
	if result != nil {
		if saveErr := s.saveResults(context.WithoutCancel(ctx), run.ID, result); saveErr != nil {
			return s.fail(run, saveErr)
		}
		s.summarize(run, result)
	}
	if err != nil {
		return s.fail(run, err)
	}

	outDir := filepath.Join(s.outputDir, run.ID)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return s.fail(run, fmt.Errorf("failed to create output directory: %w", err))
	}
	run.ManifestPath, run.ReportPath, err = export.WriteOutputs(outDir, result, run.Title)
	if err != nil {
		return s.fail(run, err)
	}

	run.Status = StatusCompleted
	if result.Cancelled {
		run.Status = StatusCancelled
	}
	if err := s.repo.FinishRun(context.WithoutCancel(ctx), run); err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if logger != nil {
		logger.Info("export run finished", "status", run.Status,
			"compositions", run.CompositionCount, "errors", run.ErrorCount, "warnings", run.WarningCount)
	}
	return nil
}

func (s *Service) summarize(run *Run, result *export.Result) {
	errs, warnings := alert.Split(result.Warnings)
	run.CompositionCount = len(result.Compositions)
	run.ImageCount = len(result.Images)
	run.ErrorCount = len(errs)
	run.WarningCount = len(warnings)
	run.GraphicsMemory = result.Layout.GraphicsMemory
}

func (s *Service) fail(run *Run, cause error) error {
	run.Status = StatusFailed
	run.Error = cause.Error()
	if err := s.repo.FinishRun(context.Background(), run); err != nil && s.logger != nil {
		s.logger.Error("failed to record run failure", "run_id", run.ID, "error", err)
	}
	if s.logger != nil {
		s.logger.Warn("export run failed", "run_id", run.ID, "error", cause)
	}
	return cause
}

func (s *Service) saveResults(ctx context.Context, runID string, result *export.Result) error {
	warnings := make([]*Warning, 0, len(result.Warnings))
	for i, w := range result.Warnings {
		warnings = append(warnings, &Warning{
			ID:              uuid.NewString(),
			RunID:           runID,
			Seq:             i,
			Category:        w.Category.String(),
			IsError:         w.IsError(),
			CompositionID:   w.CompositionID,
			CompositionName: w.CompositionName,
			LayerID:         w.LayerID,
			LayerName:       w.LayerName,
			Info:            w.Info,
			Message:         w.Message(),
		})
	}
	comps := make([]*Composition, 0, len(result.Compositions))
	for i, c := range result.Compositions {
		comps = append(comps, &Composition{
			RunID:         runID,
			Seq:           i,
			CompositionID: uint32(c.ID),
			Name:          c.Name,
			Kind:          c.Kind.String(),
			Width:         c.Width,
			Height:        c.Height,
			FrameRate:     c.FrameRate,
			Duration:      int64(c.Duration),
			LayerCount:    len(c.Layers),
		})
	}
	return s.repo.SaveResults(ctx, runID, warnings, comps)
}
