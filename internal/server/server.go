// Package server implements the HTTP API of the route optimization service:
// synchronous optimization plus asynchronous job management.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/routeforce/routeforce/internal/config"
	"github.com/routeforce/routeforce/internal/geo"
	"github.com/routeforce/routeforce/internal/metrics"
	"github.com/routeforce/routeforce/internal/optimization"
	"github.com/routeforce/routeforce/internal/optimization/nsga2"
)

// Job statuses. A job moves pending -> running -> one of the terminal states.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusDegraded  = "degraded"
	StatusCancelled = "cancelled"
)

// Job tracks one asynchronous optimization. Access goes through the server's
// job mutex.
type Job struct {
	ID        string             `json:"id"`
	Status    string             `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	EndedAt   *time.Time         `json:"ended_at,omitempty"`
	Result    *OptimizeResponse `json:"result,omitempty"`

	cancel context.CancelFunc
}

// OptimizeRequest is the request body of POST /optimize and POST /jobs.
type OptimizeRequest struct {
	Stops  []geo.Stop           `json:"stops"`
	Config *optimization.Config `json:"config,omitempty"`
}

// OptimizeResponse is the result payload of a finished optimization.
type OptimizeResponse struct {
	Route    []geo.Stop           `json:"route"`
	Metrics  optimization.Metrics `json:"metrics"`
	Degraded bool                 `json:"degraded,omitempty"`
}

// Server manages optimization requests and jobs over HTTP.
type Server struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *metrics.Metrics
	distance geo.DistanceFunc

	jobs   map[string]*Job
	jobsMu sync.RWMutex
}

// NewServer creates a server. A nil distance function selects haversine.
func NewServer(cfg *config.Config, m *metrics.Metrics, distance geo.DistanceFunc, logger *zap.Logger) *Server {
	if m == nil {
		m = metrics.Default()
	}
	return &Server{
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		distance: distance,
		jobs:     make(map[string]*Job),
	}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/optimize", s.handleOptimize)
		r.Post("/jobs", s.handleCreateJob)
		r.Get("/jobs/{id}", s.handleJobStatus)
		r.Delete("/jobs/{id}", s.handleCancelJob)
	})
}

// handleOptimize runs an optimization synchronously, bounded by the
// configured request timeout. Degraded runs still return 200: the payload
// carries the original stop order and the failure inside metrics.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	req, opt, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	timeout := s.cfg.Optimizer.RequestTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	out := opt.Optimize(ctx, req.Stops)
	s.metrics.ObserveRun(len(req.Stops), out)

	s.respondJSON(w, http.StatusOK, &OptimizeResponse{
		Route:    out.BestRoute,
		Metrics:  out.Metrics,
		Degraded: out.Degraded,
	})
}

// handleCreateJob starts an asynchronous optimization and returns 202 with
// the job ID.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	req, opt, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now()
	job := &Job{
		ID:        uuid.NewString(),
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
		cancel:    cancel,
	}

	s.jobsMu.Lock()
	s.jobs[job.ID] = job
	s.jobsMu.Unlock()

	go s.runJob(ctx, job.ID, opt, req.Stops)

	s.respondJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID,
		"status": StatusPending,
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	job, exists := s.jobs[id]
	if !exists {
		s.respondError(w, http.StatusNotFound, "job not found")
		return
	}

	s.respondJSON(w, http.StatusOK, job)
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		s.respondError(w, http.StatusNotFound, "job not found")
		return
	}

	switch job.Status {
	case StatusCompleted, StatusDegraded, StatusCancelled:
		s.respondError(w, http.StatusConflict, "job already in terminal state: "+job.Status)
		return
	}

	job.cancel()
	now := time.Now()
	job.Status = StatusCancelled
	job.UpdatedAt = now
	job.EndedAt = &now

	s.logger.Info("job cancelled", zap.String("job_id", id))
	s.respondJSON(w, http.StatusOK, map[string]string{
		"job_id": id,
		"status": StatusCancelled,
	})
}

// runJob executes one asynchronous optimization. A cancelled job keeps its
// cancelled status even though the underlying run reports a degraded outcome.
func (s *Server) runJob(ctx context.Context, id string, opt *nsga2.Optimizer, stops []geo.Stop) {
	s.metrics.ActiveJobs.Inc()
	defer s.metrics.ActiveJobs.Dec()

	s.setJobStatus(id, StatusRunning)

	out := opt.Optimize(ctx, stops)
	s.metrics.ObserveRun(len(stops), out)

	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	job, exists := s.jobs[id]
	if !exists || job.Status == StatusCancelled {
		return
	}

	now := time.Now()
	job.UpdatedAt = now
	job.EndedAt = &now
	job.Result = &OptimizeResponse{
		Route:    out.BestRoute,
		Metrics:  out.Metrics,
		Degraded: out.Degraded,
	}
	if out.Degraded {
		job.Status = StatusDegraded
		s.logger.Warn("job degraded", zap.String("job_id", id), zap.Error(out.Err))
	} else {
		job.Status = StatusCompleted
	}
}

func (s *Server) setJobStatus(id, status string) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	if job, exists := s.jobs[id]; exists && job.Status != StatusCancelled {
		job.Status = status
		job.UpdatedAt = time.Now()
	}
}

// decodeRequest parses and validates the request body and builds the
// optimizer for it. A false return means the error response was already
// written.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (*OptimizeRequest, *nsga2.Optimizer, bool) {
	var req OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return nil, nil, false
	}

	if len(req.Stops) == 0 {
		s.respondError(w, http.StatusBadRequest, "stops are required")
		return nil, nil, false
	}
	if max := s.cfg.Optimizer.MaxStops; max > 0 && len(req.Stops) > max {
		s.respondError(w, http.StatusRequestEntityTooLarge, "too many stops")
		return nil, nil, false
	}

	cfg := s.buildConfig(req.Config)
	opt, err := nsga2.New(cfg, s.distance, s.logger)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return nil, nil, false
	}

	return &req, opt, true
}

// buildConfig fills the unset fields of a request configuration from the
// service defaults.
func (s *Server) buildConfig(req *optimization.Config) optimization.Config {
	cfg := optimization.DefaultConfig()
	cfg.PopulationSize = s.cfg.Optimizer.PopulationSize
	cfg.Generations = s.cfg.Optimizer.Generations
	cfg.MutationRate = s.cfg.Optimizer.MutationRate
	cfg.CrossoverRate = s.cfg.Optimizer.CrossoverRate
	cfg.TournamentSize = s.cfg.Optimizer.TournamentSize

	if req == nil {
		return cfg
	}
	if req.PopulationSize > 0 {
		cfg.PopulationSize = req.PopulationSize
	}
	if req.Generations > 0 {
		cfg.Generations = req.Generations
	}
	if req.MutationRate > 0 {
		cfg.MutationRate = req.MutationRate
	}
	if req.CrossoverRate > 0 {
		cfg.CrossoverRate = req.CrossoverRate
	}
	if req.TournamentSize > 0 {
		cfg.TournamentSize = req.TournamentSize
	}
	if len(req.Objectives) > 0 {
		cfg.Objectives = req.Objectives
	}
	cfg.Seed = req.Seed
	return cfg
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, map[string]string{"error": msg})
}

// Close cancels all running jobs.
func (s *Server) Close() error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	for _, job := range s.jobs {
		if job.cancel != nil {
			job.cancel()
		}
	}
	return nil
}
