package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/blueprint/pkg/dag"
	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/graph"
	"github.com/matzehuels/blueprint/pkg/layout"
	"github.com/matzehuels/blueprint/pkg/model"
	"github.com/matzehuels/blueprint/pkg/pipeline"
	"github.com/matzehuels/blueprint/pkg/projection"
	"github.com/matzehuels/blueprint/pkg/render"
	"github.com/matzehuels/blueprint/pkg/selection"
)

// CommitResponse is the body of GET .../commits/{commit}.
type CommitResponse struct {
	Commit  *model.Commit `json:"commit"`
	Title   string        `json:"title"`
	Changes ChangeCounts  `json:"changes"`
}

// ChangeCounts summarizes the notebooks a commit touched.
type ChangeCounts struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
}

// SelectionRequest is the body of POST .../selection. Checked, when
// present, is the full checked list of the tree widget.
type SelectionRequest struct {
	Terminal []string `json:"terminal"`
	Checked  []string `json:"checked"`
	Toggle   string   `json:"toggle"`
}

// SelectionResponse is the notebook tree with a selection applied.
type SelectionResponse struct {
	Selection selection.State       `json:"selection"`
	Tree      []*selection.ViewNode `json:"tree"`
	Expanded  []string              `json:"expanded"`
}

func (s *Server) listRepositories(w http.ResponseWriter, r *http.Request) {
	if s.repos == nil {
		writeError(w, errors.New(errors.ErrCodeInternal, "no repository service configured"))
		return
	}
	repos, err := s.repos.Repositories(r.Context(), refresh(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, repos)
}

func (s *Server) listCommits(w http.ResponseWriter, r *http.Request) {
	if s.repos == nil {
		writeError(w, errors.New(errors.ErrCodeInternal, "no repository service configured"))
		return
	}
	commits, err := s.repos.Commits(r.Context(), chi.URLParam(r, "repo"), refresh(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commits)
}

func (s *Server) getCommit(w http.ResponseWriter, r *http.Request) {
	if s.repos == nil {
		writeError(w, errors.New(errors.ErrCodeInternal, "no repository service configured"))
		return
	}
	c, err := s.repos.Commit(r.Context(), chi.URLParam(r, "repo"), chi.URLParam(r, "commit"), refresh(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CommitResponse{
		Commit: c,
		Title:  c.Title(),
		Changes: ChangeCounts{
			Created: len(c.Created),
			Updated: len(c.Updated),
			Deleted: len(c.Deleted),
		},
	})
}

// getGraph serves the commit graph layout. format selects json (the
// default), svg, dot, pdf or png.
func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
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
	view, err := s.runner.CommitView(r.Context(), chi.URLParam(r, "repo"), chi.URLParam(r, "commit"), pipeline.CommitOptions{
		Layout:   opts,
		Terminal: listParam(r, "terminal"),
		Refresh:  refresh(r),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if format == render.FormatJSON {
		writeJSON(w, http.StatusOK, graph.ExportLayout(view.Layout))
		return
	}
	writeRendered(w, r, view.Layout, view.Graph, nil, format)
}

func (s *Server) getSelection(w http.ResponseWriter, r *http.Request) {
	s.selection(w, r, SelectionRequest{
		Terminal: listParam(r, "terminal"),
		Checked:  listParam(r, "checked"),
		Toggle:   r.URL.Query().Get("toggle"),
	})
}

func (s *Server) postSelection(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.selection(w, r, req)
}

func (s *Server) selection(w http.ResponseWriter, r *http.Request, req SelectionRequest) {
	view, err := s.runner.CommitView(r.Context(), chi.URLParam(r, "repo"), chi.URLParam(r, "commit"), pipeline.CommitOptions{
		Layout:   s.layout,
		Terminal: req.Terminal,
		Checked:  req.Checked,
		Toggle:   req.Toggle,
		Refresh:  refresh(r),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SelectionResponse{
		Selection: view.Selection,
		Tree:      view.Tree,
		Expanded:  view.Expanded,
	})
}

func (s *Server) layoutOptions(r *http.Request) (layout.Options, error) {
	opts := s.layout
	if d := r.URL.Query().Get("direction"); d != "" {
		dir, err := layout.ParseDirection(d)
		if err != nil {
			return opts, err
		}
		opts.Direction = dir
	}
	return opts, nil
}

func writeRendered(w http.ResponseWriter, r *http.Request, l *layout.Layout, g *dag.DAG, p *projection.Projection, format string) {
	q := r.URL.Query()
	out, err := pipeline.Render(r.Context(), l, g, p, pipeline.RenderOptions{
		Format:     format,
		Renderer:   q.Get("renderer"),
		Highlight:  q.Get("highlight"),
		PathLabels: q.Get("labels") == "path",
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	_, _ = w.Write(out)
}

func refresh(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	return v
}

func formatParam(r *http.Request) string {
	if f := r.URL.Query().Get("format"); f != "" {
		return f
	}
	return render.FormatJSON
}
