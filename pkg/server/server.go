// Package server exposes the trigger intake and run records over HTTP.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/VolaTeQ/conveyor/pkg/api"
	"github.com/VolaTeQ/conveyor/pkg/engine"
	"github.com/VolaTeQ/conveyor/pkg/trigger"
)

// Server turns incoming platform events into runs. Each matching event
// gets its own goroutine and its own workspace; runs share nothing.
type Server struct {
	pipeline *api.Pipeline
	runner   *engine.Runner

	mu   sync.Mutex
	runs map[string]*engine.Run

	wg sync.WaitGroup
}

// New creates a server for one pipeline definition.
func New(pipeline *api.Pipeline, runner *engine.Runner) *Server {
	return &Server{
		pipeline: pipeline,
		runner:   runner,
		runs:     make(map[string]*engine.Run),
	}
}

// Router builds the HTTP surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/events", s.handleEvent)
	r.Get("/runs", s.handleListRuns)
	r.Get("/runs/{id}", s.handleGetRun)
	r.Get("/healthz", s.handleHealth)

	return r
}

// Wait blocks until all in-flight runs have finished.
func (s *Server) Wait() {
	s.wg.Wait()
}

// POST /events -> evaluate the trigger; 204 for a mismatch, 202 plus
// run IDs for a match.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var ev trigger.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, "invalid event payload", http.StatusBadRequest)
		return
	}
	if ev.Kind == "" || ev.Branch == "" {
		http.Error(w, "event kind and branch are required", http.StatusBadRequest)
		return
	}

	if !trigger.Match(s.pipeline.On, ev) {
		slog.Info("event did not match trigger rules", "kind", ev.Kind, "branch", ev.Branch)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	ids := s.launch(ev)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(map[string]any{"runs": ids}); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

// launch registers pending runs for every job and executes them on a
// separate goroutine, in declared job order.
func (s *Server) launch(ev trigger.Event) []string {
	runs := make([]*engine.Run, 0, len(s.pipeline.Jobs))
	ids := make([]string, 0, len(s.pipeline.Jobs))

	s.mu.Lock()
	for _, job := range s.pipeline.Jobs {
		run := engine.NewRun(job.Name, ev)
		s.runs[run.ID] = run
		runs = append(runs, run)
		ids = append(ids, run.ID)
	}
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.execute(runs)
	}()

	return ids
}

// execute runs each registered run under its own ID, so the IDs handed
// out by the 202 response match the artifact-store namespaces. Records
// in the map are never mutated in place; state changes swap in a fresh
// copy so readers can encode without the lock.
func (s *Server) execute(pending []*engine.Run) {
	halted := false
	for i, job := range s.pipeline.Jobs {
		if halted {
			s.store(skippedRun(pending[i]))
			continue
		}

		running := *pending[i]
		running.Status = engine.StatusRunning
		s.store(&running)

		run := *pending[i]
		s.runner.ExecuteRun(context.Background(), s.pipeline, job, &run)
		if run.Status == engine.StatusFailed {
			halted = true
		}

		s.store(&run)
	}
}

// skippedRun produces the terminal record for a run whose job never
// started because an earlier job failed.
func skippedRun(pending *engine.Run) *engine.Run {
	run := *pending
	now := time.Now()
	run.Status = engine.StatusFailed
	run.Started = now
	run.Ended = now
	run.Steps = []engine.StepOutcome{{
		Name:    "skipped",
		Status:  engine.StatusFailed,
		Error:   "an earlier job in the pipeline failed; run not started",
		Started: now,
		Ended:   now,
	}}
	return &run
}

func (s *Server) store(run *engine.Run) {
	s.mu.Lock()
	s.runs[run.ID] = run
	s.mu.Unlock()
}

// GET /runs/{id} -> the run record: status and step outcomes, never
// secret values.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	run, ok := s.runs[id]
	s.mu.Unlock()

	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	writeJSON(w, run)
}

// GET /runs -> all run records.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	list := make([]*engine.Run, 0, len(s.runs))
	for _, run := range s.runs {
		list = append(list, run)
	}
	s.mu.Unlock()

	writeJSON(w, list)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}
