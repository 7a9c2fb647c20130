package server

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/graph"
	"github.com/matzehuels/blueprint/pkg/model"
	"github.com/matzehuels/blueprint/pkg/pipeline"
	"github.com/matzehuels/blueprint/pkg/projection"
	"github.com/matzehuels/blueprint/pkg/render"
)

// ExecutionResponse is one projected execution snapshot. It is also the
// message pushed on the execution websocket.
type ExecutionResponse struct {
	Execution  *model.Execution       `json:"execution"`
	Layout     graph.Layout           `json:"layout"`
	Projection *projection.Projection `json:"projection"`
}

// UpdateSelectionRequest is the body of PUT /executions/{id}/selection.
type UpdateSelectionRequest struct {
	NotebookIDs []string `json:"notebookIds"`
}

func newExecutionResponse(v *pipeline.ExecutionView) ExecutionResponse {
	return ExecutionResponse{
		Execution:  v.Execution,
		Layout:     graph.ExportLayout(v.Layout),
		Projection: v.Projection,
	}
}

func (s *Server) createExecution(w http.ResponseWriter, r *http.Request) {
	if s.execs == nil {
		writeError(w, errors.New(errors.ErrCodeInternal, "no execution service configured"))
		return
	}
	var req model.ExecutionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.NotebookIDs) == 0 {
		writeError(w, badRequest("select at least one notebook"))
		return
	}
	exec, err := s.execs.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("created execution", "execution", exec.ID, "commit", model.ShortID(req.CommitID), "notebooks", len(req.NotebookIDs))
	writeJSON(w, http.StatusCreated, exec)
}

func (s *Server) listExecutions(w http.ResponseWriter, r *http.Request) {
	list, err := s.runner.ListExecutions(r.Context(), time.Time{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// getExecution serves a projected snapshot. inspect highlights a job;
// format renders the graph instead of returning JSON.
func (s *Server) getExecution(w http.ResponseWriter, r *http.Request) {
	opts, err := s.layoutOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	format := formatParam(r)
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}
	view, err := s.runner.ExecutionView(r.Context(), chi.URLParam(r, "id"), pipeline.ExecutionOptions{
		Layout:    opts,
		Inspected: r.URL.Query().Get("inspect"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if format == render.FormatJSON {
		writeJSON(w, http.StatusOK, newExecutionResponse(view))
		return
	}
	writeRendered(w, r, view.Layout, view.Graph, view.Projection, format)
}

func (s *Server) updateExecution(w http.ResponseWriter, r *http.Request) {
	var body UpdateSelectionRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	exec, ok := s.fetchExecution(w, r)
	if !ok {
		return
	}
	if !exec.Editable() {
		writeError(w, badRequest("execution %s is %s and can no longer be edited", exec.ID, exec.Status))
		return
	}
	if len(body.NotebookIDs) == 0 {
		writeError(w, badRequest("select at least one notebook"))
		return
	}
	updated, err := s.execs.Update(r.Context(), exec.ID, model.ExecutionRequest{
		RepositoryID: exec.RepositoryID,
		CommitID:     exec.CommitID,
		NotebookIDs:  body.NotebookIDs,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) startExecution(w http.ResponseWriter, r *http.Request) {
	exec, ok := s.fetchExecution(w, r)
	if !ok {
		return
	}
	if !exec.CanStart() {
		writeError(w, badRequest("execution %s cannot be started (status %s, %d jobs)", exec.ID, exec.Status, len(exec.Jobs)))
		return
	}
	started, err := s.execs.Start(r.Context(), exec.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("started execution", "execution", exec.ID)
	writeJSON(w, http.StatusOK, started)
}

func (s *Server) cancelExecution(w http.ResponseWriter, r *http.Request) {
	exec, ok := s.fetchExecution(w, r)
	if !ok {
		return
	}
	if !exec.CanCancel() {
		writeError(w, badRequest("execution %s is %s and cannot be cancelled", exec.ID, exec.Status))
		return
	}
	cancelled, err := s.execs.Cancel(r.Context(), exec.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("cancelled execution", "execution", exec.ID)
	writeJSON(w, http.StatusOK, cancelled)
}

// jobLog relays a job log as it is written. The upstream stream is closed
// when the client goes away.
func (s *Server) jobLog(w http.ResponseWriter, r *http.Request) {
	if s.execs == nil {
		writeError(w, errors.New(errors.ErrCodeInternal, "no execution service configured"))
		return
	}
	rc, err := s.execs.JobLog(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "job"))
	if err != nil {
		writeError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 4096)
	for {
		n, err := rc.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err != nil {
			if err != io.EOF && r.Context().Err() == nil {
				s.logger.Warn("job log stream failed", "execution", chi.URLParam(r, "id"), "job", chi.URLParam(r, "job"), "error", err)
			}
			return
		}
	}
}

func (s *Server) fetchExecution(w http.ResponseWriter, r *http.Request) (*model.Execution, bool) {
	if s.execs == nil {
		writeError(w, errors.New(errors.ErrCodeInternal, "no execution service configured"))
		return nil, false
	}
	exec, err := s.execs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return exec, true
}
