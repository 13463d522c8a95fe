package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/heimdex/pagexport/internal/runs"
	"github.com/heimdex/pagexport/internal/session"
	"github.com/heimdex/pagexport/internal/verify"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware(cfg.Logger))
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.AuthToken, cfg.Logger))

		r.Get("/status", statusHandler(cfg))

		r.Route("/runs", func(r chi.Router) {
			r.Get("/", listRunsHandler(cfg))
			r.Post("/", submitRunHandler(cfg))
			r.Get("/{id}", getRunHandler(cfg))
			r.Delete("/{id}", deleteRunHandler(cfg))
			r.Post("/{id}/cancel", cancelRunHandler(cfg))
			r.Get("/{id}/warnings", listWarningsHandler(cfg))
			r.Get("/{id}/compositions", listCompositionsHandler(cfg))
			r.Get("/{id}/report", reportHandler(cfg))
		})

		r.Post("/runner/pause", pauseRunnerHandler(cfg))
		r.Post("/runner/resume", resumeRunnerHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: version,
			UptimeS: uptime,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		counts, err := cfg.RunService.StatusCounts(ctx)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to count runs", "INTERNAL_ERROR")
			return
		}
		recent, _ := cfg.RunService.List(ctx, 10)

		resp := StatusResponse{
			State:       "idle",
			RunsQueued:  counts[runs.StatusQueued],
			RunsRunning: counts[runs.StatusRunning],
			RunCounts:   counts,
			Budgets: BudgetsResponse{
				GraphicsMemory:   humanize.IBytes(uint64(verify.GraphicsMemoryBudget(session.ScenesGeneral))),
				GraphicsMemoryUI: humanize.IBytes(uint64(verify.GraphicsMemoryBudget(session.ScenesUI))),
			},
		}

		for _, run := range recent {
			if run.Status == runs.StatusFailed {
				resp.LastError = run.Error
				break
			}
			if run.Done() {
				break
			}
		}

		switch {
		case cfg.Runner != nil && cfg.Runner.IsPaused():
			resp.State = "paused"
		case resp.RunsRunning > 0:
			resp.State = "exporting"
		case resp.LastError != "":
			resp.State = "error"
		}

		if cfg.Runner != nil {
			resp.Runner = &RunnerResponse{
				Running:    cfg.Runner.IsRunning(),
				Paused:     cfg.Runner.IsPaused(),
				ActiveRuns: cfg.Runner.ActiveRuns(),
			}
		}

		if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
			cpus, _ := cpu.CountsWithContext(ctx, true)
			resp.Host = &HostResponse{
				CPUs:            cpus,
				MemoryTotal:     humanize.IBytes(vm.Total),
				MemoryAvailable: humanize.IBytes(vm.Available),
				MemoryUsedPct:   fmt.Sprintf("%.1f%%", vm.UsedPercent),
			}
		}

		WriteJSON(w, http.StatusOK, resp)
	}
}

func listRunsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				WriteError(w, http.StatusBadRequest, "invalid limit", "BAD_REQUEST")
				return
			}
			limit = n
		}

		list, err := cfg.RunService.List(r.Context(), limit)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list runs", "INTERNAL_ERROR")
			return
		}

		resp := RunsResponse{Runs: make([]RunResponse, len(list))}
		for i, run := range list {
			resp.Runs[i] = RunToResponse(run)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func submitRunHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SubmitRunRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if req.DocumentPath == "" {
			WriteError(w, http.StatusBadRequest, "document_path is required", "BAD_REQUEST")
			return
		}

		var opts *session.Options
		if req.Options != nil {
			applied, err := req.Options.Apply(cfg.Defaults)
			if err != nil {
				WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
				return
			}
			opts = &applied
		}

		run, err := cfg.RunService.Submit(r.Context(), req.DocumentPath, req.RootID, opts)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		if cfg.Runner != nil {
			cfg.Runner.Notify()
		}

		WriteJSON(w, http.StatusAccepted, SubmitRunResponse{RunID: run.ID})
	}
}

func getRunHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := cfg.RunService.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeRunError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, RunToResponse(run))
	}
}

func deleteRunHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.RunService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeRunError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func cancelRunHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.RunService.Cancel(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeRunError(w, err)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

func listWarningsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		warnings, err := cfg.RunService.Warnings(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeRunError(w, err)
			return
		}

		errorsOnly := r.URL.Query().Get("errors_only") == "true"
		resp := WarningsResponse{Warnings: make([]WarningResponse, 0, len(warnings))}
		for _, warning := range warnings {
			if warning.IsError {
				resp.Errors++
			} else if errorsOnly {
				continue
			}
			resp.Warnings = append(resp.Warnings, WarningToResponse(warning))
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func listCompositionsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		comps, err := cfg.RunService.Compositions(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeRunError(w, err)
			return
		}

		resp := CompositionsResponse{Compositions: make([]CompositionResponse, len(comps))}
		for i, c := range comps {
			resp.Compositions[i] = CompositionToResponse(c)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func reportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := cfg.RunService.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeRunError(w, err)
			return
		}
		if run.ReportPath == "" {
			WriteError(w, http.StatusNotFound, "run has no report yet", "NOT_FOUND")
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		http.ServeFile(w, r, run.ReportPath)
	}
}

func pauseRunnerHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Runner == nil {
			WriteError(w, http.StatusServiceUnavailable, "runner not available", "UNAVAILABLE")
			return
		}
		cfg.Runner.Pause()
		w.WriteHeader(http.StatusNoContent)
	}
}

func resumeRunnerHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Runner == nil {
			WriteError(w, http.StatusServiceUnavailable, "runner not available", "UNAVAILABLE")
			return
		}
		cfg.Runner.Resume()
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeRunError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, runs.ErrRunNotFound):
		WriteError(w, http.StatusNotFound, "run not found", "NOT_FOUND")
	case errors.Is(err, runs.ErrRunFinished):
		WriteError(w, http.StatusConflict, err.Error(), "CONFLICT")
	default:
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
	}
}
