package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/heimdex/pagexport/internal/alert"
	"github.com/heimdex/pagexport/internal/api"
	"github.com/heimdex/pagexport/internal/config"
	"github.com/heimdex/pagexport/internal/db"
	"github.com/heimdex/pagexport/internal/export"
	"github.com/heimdex/pagexport/internal/host"
	"github.com/heimdex/pagexport/internal/logging"
	"github.com/heimdex/pagexport/internal/model"
	"github.com/heimdex/pagexport/internal/runs"
	"github.com/heimdex/pagexport/internal/session"
	"github.com/heimdex/pagexport/internal/watcher"
	"golang.org/x/sync/errgroup"
)

const usage = `usage:
  pagexport serve
  pagexport export [flags] <document.yaml>...
  pagexport version`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = serve()
	case "export":
		err = exportDocuments(os.Args[2:])
	case "version":
		fmt.Printf("pagexport %s (%s, built %s)\n", config.Version, config.GitCommit, config.BuildTime)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func serve() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	for _, dir := range []string{cfg.DataDir(), cfg.OutputDir(), cfg.WatchDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting pagexport", "version", config.Version, "data_dir", logging.SanitizePath(cfg.DataDir()))

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := runs.NewRepository(database.Conn())
	runSvc := runs.NewService(repo, cfg.OutputDir(), cfg.ExportOptions(), logging.WithComponent(logger, "runs"))
	runner := runs.NewRunner(runSvc, repo, cfg.MaxConcurrentRuns(), logging.WithComponent(logger, "runner"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runnerDone := make(chan struct{})
	go func() {
		runner.Start(ctx)
		close(runnerDone)
	}()

	watchLogger := logging.WithComponent(logger, "watcher")
	w := watcher.NewPollingWatcher(config.DefaultWatchInterval, watchLogger)
	w.OnChange(watcher.QueueRuns(ctx, runSvc, repo, runner.Notify, watchLogger))
	if err := w.Watch(ctx, cfg.WatchDir()); err != nil {
		return fmt.Errorf("failed to watch drop folder: %w", err)
	}
	defer w.Stop()

	if cfg.AuthToken() == "" {
		logger.Warn("no auth token configured, API is open to local clients", "env", config.EnvAuthToken)
	}

	apiServer := api.NewServer(api.ServerConfig{
		Port:       cfg.Port(),
		RunService: runSvc,
		Runner:     runner,
		AuthToken:  cfg.AuthToken(),
		Defaults:   cfg.ExportOptions(),
		Logger:     logger,
		StartTime:  startTime,
		Version:    config.Version,
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- apiServer.Start()
	}()

	fmt.Println()
	fmt.Printf("  API URL:    http://%s\n", apiServer.Addr())
	fmt.Printf("  Drop folder: %s\n", cfg.WatchDir())
	fmt.Printf("  Outputs:     %s\n", cfg.OutputDir())
	fmt.Println()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-serverErr:
		if err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	select {
	case <-runnerDone:
	case <-shutdownCtx.Done():
		logger.Warn("runs still active at shutdown", "active", runner.ActiveRuns())
	}

	logger.Info("shutdown complete")
	return nil
}

type exportResult struct {
	path     string
	title    string
	result   *export.Result
	manifest string
	err      error
}

func exportDocuments(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	outDir := fs.String("out", ".", "Directory for manifests and reports")
	rootID := fs.Uint("root", 0, "Composition to export (default: the document root)")
	tagMode := fs.String("tag-mode", "stable", "Tag mode: stable, beta, custom")
	tagLevel := fs.Uint("tag-level", uint(session.TagLevelStable), "Tag level for -tag-mode custom")
	frameRate := fs.Float64("frame-rate", float64(session.DefaultFrameRate), "Frame rate of rendered sequences")
	scenes := fs.String("scenes", "general", "Target scenes: general, ui")
	bmp := fs.Bool("static-bmp", false, "Export static compositions as bitmap sequences")
	jobs := fs.Int("jobs", runtime.NumCPU(), "Documents exported in parallel")
	logLevel := fs.String("log-level", "warn", "Log level: debug, info, warn, error")
	fs.Parse(args)

	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("no documents given")
	}

	opts := session.DefaultOptions()
	var err error
	if opts.TagMode, err = session.ParseTagMode(*tagMode); err != nil {
		return err
	}
	if opts.Scenes, err = session.ParseScenes(*scenes); err != nil {
		return err
	}
	opts.TagLevel = uint16(*tagLevel)
	opts.FrameRate = float32(*frameRate)
	opts.ExportStaticCompAsBmp = *bmp
	opts = opts.Normalize()

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	logger := logging.NewLogger(*logLevel)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	results := make([]exportResult, fs.NArg())
	var g errgroup.Group
	g.SetLimit(max(*jobs, 1))
	for i, path := range fs.Args() {
		i, path := i, path
		g.Go(func() error {
			results[i] = exportDocument(ctx, path, model.ID(*rootID), opts, *outDir, logger)
			return nil
		})
	}
	g.Wait()

	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "[-] %s: %v\n", r.path, r.err)
			continue
		}
		fmt.Print(export.Report(r.result, r.title))
		errs, warnings := alert.Split(r.result.Warnings)
		fmt.Printf("[+] %s: %d compositions, %d errors, %d warnings, peak graphics memory %s\n",
			r.manifest, len(r.result.Compositions), len(errs), len(warnings),
			humanize.IBytes(uint64(max(r.result.Layout.GraphicsMemory, 0))))
		if len(errs) > 0 {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(results))
	}
	return nil
}

func exportDocument(ctx context.Context, path string, rootID model.ID, opts session.Options, outDir string, logger *slog.Logger) exportResult {
	res := exportResult{path: path, title: runs.TitleFromPath(path)}

	doc, err := host.LoadDocument(path)
	if err != nil {
		res.err = err
		return res
	}
	if rootID == 0 {
		rootID = doc.Root
	}

	res.result, err = export.Run(ctx, doc, rootID, opts, logging.WithDocument(logger, path))
	if err != nil {
		res.err = err
		return res
	}
	res.manifest, _, res.err = export.WriteOutputs(filepath.Clean(outDir), res.result, res.title)
	return res
}
