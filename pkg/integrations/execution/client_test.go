package execution

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	bperrors "github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/model"
)

const executionJSON = `{
  "id": "e1",
  "repositoryId": "r1",
  "commitId": "c1",
  "status": "Running",
  "createdAt": 1601289474.000000000,
  "jobs": [
    {"id": "j1", "status": "Done", "startedAt": 1601289475.5, "endedAt": 1601289480.25,
     "notebook": {"id": "n1", "path": "etl/load.ipynb"}, "previousJobs": []},
    {"id": "j2", "status": "Running", "startedAt": 1601289481, "endedAt": null,
     "notebook": {"id": "n2", "path": "etl/clean.ipynb"}, "previousJobs": ["j1"]}
  ],
  "endJobs": [
    {"id": "j2", "status": "Running", "notebook": {"id": "n2"}, "previousJobs": ["j1"]}
  ]
}`

type recorded struct {
	method string
	path   string
	body   model.ExecutionRequest
}

func testServer(t *testing.T, calls *[]recorded) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}
		*calls = append(*calls, rec)

		switch r.URL.Path {
		case "/api/v1/execution":
			w.Write([]byte("[" + executionJSON + "]"))
		case "/api/v1/execution/e1/job/j2/log":
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte("cell 1 ok\ncell 2 ok\n"))
		case "/api/v1/execution/gone":
			http.NotFound(w, r)
		default:
			w.Write([]byte(executionJSON))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func testClient(t *testing.T) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	server := testServer(t, &calls)
	c := NewClient(server.URL)
	c.SetHTTPClient(server.Client())
	return c, &calls
}

func TestClient_Endpoints(t *testing.T) {
	ctx := context.Background()
	req := model.ExecutionRequest{RepositoryID: "r1", CommitID: "c1", NotebookIDs: []string{"n2"}}

	tests := []struct {
		name       string
		call       func(c *Client) (*model.Execution, error)
		wantMethod string
		wantPath   string
		wantBody   bool
	}{
		{"create", func(c *Client) (*model.Execution, error) { return c.Create(ctx, req) }, http.MethodPost, "/api/v1/execute", true},
		{"get", func(c *Client) (*model.Execution, error) { return c.Get(ctx, "e1") }, http.MethodGet, "/api/v1/execution/e1", false},
		{"update", func(c *Client) (*model.Execution, error) { return c.Update(ctx, "e1", req) }, http.MethodPut, "/api/v1/execution/e1", true},
		{"start", func(c *Client) (*model.Execution, error) { return c.Start(ctx, "e1") }, http.MethodPost, "/api/v1/execution/e1/start", false},
		{"cancel", func(c *Client) (*model.Execution, error) { return c.Cancel(ctx, "e1") }, http.MethodPut, "/api/v1/execution/e1/cancel", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, calls := testClient(t)
			exec, err := tt.call(c)
			if err != nil {
				t.Fatalf("%s: %v", tt.name, err)
			}
			if exec.ID != "e1" || exec.Status != model.StatusRunning || len(exec.Jobs) != 2 {
				t.Errorf("execution = %+v", exec)
			}
			if len(*calls) != 1 {
				t.Fatalf("calls = %d", len(*calls))
			}
			got := (*calls)[0]
			if got.method != tt.wantMethod || got.path != tt.wantPath {
				t.Errorf("request = %s %s, want %s %s", got.method, got.path, tt.wantMethod, tt.wantPath)
			}
			if tt.wantBody && (got.body.CommitID != "c1" || len(got.body.NotebookIDs) != 1) {
				t.Errorf("body = %+v", got.body)
			}
		})
	}
}

func TestClient_DecodesJobs(t *testing.T) {
	c, _ := testClient(t)
	exec, err := c.Get(context.Background(), "e1")
	if err != nil {
		t.Fatal(err)
	}
	j1, ok := exec.Job("j1")
	if !ok || j1.Started().UnixMilli() != 1601289475500 || j1.Ended().UnixMilli() != 1601289480250 {
		t.Errorf("j1 = %+v", j1)
	}
	j2, _ := exec.Job("j2")
	if j2.EndedAt != nil || j2.PreviousJobs[0] != "j1" {
		t.Errorf("j2 = %+v", j2)
	}
	if ids := exec.EndNotebookIDs(); len(ids) != 1 || ids[0] != "n2" {
		t.Errorf("end notebooks = %v", ids)
	}
}

func TestClient_List(t *testing.T) {
	c, calls := testClient(t)
	list, err := c.List(context.Background())
	if err != nil || len(list) != 1 {
		t.Fatalf("List = %v, %v", list, err)
	}
	if (*calls)[0].path != "/api/v1/execution" {
		t.Errorf("path = %s", (*calls)[0].path)
	}
}

func TestClient_JobLog(t *testing.T) {
	c, _ := testClient(t)
	r, err := c.JobLog(context.Background(), "e1", "j2")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	data, _ := io.ReadAll(r)
	if string(data) != "cell 1 ok\ncell 2 ok\n" {
		t.Errorf("log = %q", data)
	}
}

func TestClient_Errors(t *testing.T) {
	c, calls := testClient(t)
	ctx := context.Background()

	if _, err := c.Get(ctx, "gone"); !bperrors.Is(err, bperrors.ErrCodeNotFound) {
		t.Errorf("Get(gone) = %v", err)
	}
	if _, err := c.Start(ctx, "../e1"); !bperrors.Is(err, bperrors.ErrCodeInvalidID) {
		t.Errorf("Start(traversal) = %v", err)
	}
	bad := model.ExecutionRequest{RepositoryID: "r1", CommitID: "c1", NotebookIDs: []string{"a b"}}
	if _, err := c.Create(ctx, bad); !bperrors.Is(err, bperrors.ErrCodeInvalidID) {
		t.Errorf("Create(bad notebook) = %v", err)
	}
	if _, err := c.JobLog(ctx, "e1", ""); !bperrors.Is(err, bperrors.ErrCodeInvalidID) {
		t.Errorf("JobLog(empty) = %v", err)
	}
	if len(*calls) != 1 {
		t.Errorf("invalid ids reached the server: %d calls", len(*calls))
	}
}
