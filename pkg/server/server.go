// Package server is the HTTP gateway in front of the repository and
// execution services.
//
// The gateway serves the same views as the CLI: commit graphs with their
// notebook tree and selection, execution lists, projected execution
// snapshots and job logs. Execution snapshots are also pushed over a
// websocket by a server-side poller that lives as long as the socket.
//
// Every error is answered as JSON:
//
//	{"code": "GRAPH_INTEGRITY", "message": "invalid dependency data from the backend: ..."}
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/blueprint/pkg/cache"
	"github.com/matzehuels/blueprint/pkg/layout"
	"github.com/matzehuels/blueprint/pkg/model"
	"github.com/matzehuels/blueprint/pkg/observability"
	"github.com/matzehuels/blueprint/pkg/pipeline"
	"github.com/matzehuels/blueprint/pkg/poll"
)

// RepositoryService is the repository service as seen by the gateway.
// *blueprint.Client implements it.
type RepositoryService interface {
	pipeline.Repositories
	Repositories(ctx context.Context, refresh bool) ([]model.Repository, error)
	Commits(ctx context.Context, repo string, refresh bool) ([]model.Commit, error)
}

// ExecutionService is the execution service as seen by the gateway.
// *execution.Client implements it.
type ExecutionService interface {
	pipeline.Executions
	Create(ctx context.Context, req model.ExecutionRequest) (*model.Execution, error)
	Update(ctx context.Context, id string, req model.ExecutionRequest) (*model.Execution, error)
	Start(ctx context.Context, id string) (*model.Execution, error)
	Cancel(ctx context.Context, id string) (*model.Execution, error)
	JobLog(ctx context.Context, id, job string) (io.ReadCloser, error)
}

// Options configures a Server.
type Options struct {
	Repos      RepositoryService
	Executions ExecutionService
	// Cache holds graphs and layouts. Nil disables caching.
	Cache cache.Cache
	// Layout is the base geometry; requests may override the direction.
	Layout layout.Options
	// PollInterval is the websocket refresh interval. Zero means
	// poll.DefaultInterval.
	PollInterval time.Duration
	// Metrics, when set, records request metrics; Gatherer serves /metrics.
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
	Logger   *log.Logger
}

// Server is the gateway. It is safe for concurrent use.
type Server struct {
	repos    RepositoryService
	execs    ExecutionService
	runner   *pipeline.Runner
	layout   layout.Options
	interval time.Duration
	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
	logger   *log.Logger
}

// New creates a gateway.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = poll.DefaultInterval
	}
	return &Server{
		repos:    opts.Repos,
		execs:    opts.Executions,
		runner:   pipeline.NewRunner(opts.Repos, opts.Executions, opts.Cache, nil, logger),
		layout:   opts.Layout,
		interval: interval,
		metrics:  opts.Metrics,
		gatherer: opts.Gatherer,
		logger:   logger,
	}
}

// Handler returns the routed gateway.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID, s.logRequests, middleware.Recoverer, cors)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil || s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", observability.Handler(s.gatherer))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/repositories", s.listRepositories)
		r.Route("/repositories/{repo}/commits", func(r chi.Router) {
			r.Get("/", s.listCommits)
			r.Get("/{commit}", s.getCommit)
			r.Get("/{commit}/graph", s.getGraph)
			r.Get("/{commit}/selection", s.getSelection)
			r.Post("/{commit}/selection", s.postSelection)
		})
		r.Route("/executions", func(r chi.Router) {
			r.Post("/", s.createExecution)
			r.Get("/", s.listExecutions)
			r.Get("/{id}", s.getExecution)
			r.Put("/{id}/selection", s.updateExecution)
			r.Post("/{id}/start", s.startExecution)
			r.Put("/{id}/cancel", s.cancelExecution)
			r.Get("/{id}/jobs/{job}/log", s.jobLog)
		})
	})
	r.Get("/ws/executions/{id}", s.watchExecution)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, notFound("no route for %s %s", r.Method, r.URL.Path))
	})
	return r
}

// ListenAndServe serves the gateway on addr until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("gateway listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("gateway shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}

// Close releases the cache.
func (s *Server) Close() error { return s.runner.Close() }
