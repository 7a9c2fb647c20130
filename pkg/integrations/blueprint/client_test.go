package blueprint

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/blueprint/pkg/cache"
	bperrors "github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/integrations"
)

const commitJSON = `{
  "id": "b1c4d0db22fcd94ae0718319756d979f3c62490a",
  "message": "Add model training\n\nSplits features into their own notebook.",
  "committedAt": 1601289474,
  "committerName": "Ada",
  "committerEmail": "ada@example.com",
  "created": [{"id": "a92b824d", "path": "model/train.ipynb", "inputs": ["/features"], "outputs": ["/model"]}],
  "updated": [],
  "deleted": []
}`

const notebooksJSON = `[
  {"id": "n1", "path": "etl/load.ipynb", "inputs": ["/START"], "outputs": ["/raw"], "commitId": "c1"},
  {"id": "n2", "path": "etl/clean.ipynb", "inputs": ["/raw"], "outputs": ["/END"], "commitId": "c1"}
]`

func testServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/repositories", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`[{"id": "r1", "uri": "https://github.com/acme/pipelines.git"}]`))
	})
	mux.HandleFunc("/api/v1/repositories/r1/commits", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("[" + commitJSON + "]"))
	})
	mux.HandleFunc("/api/v1/repositories/r1/commits/c1", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(commitJSON))
	})
	mux.HandleFunc("/api/v1/repositories/r1/commits/c1/notebooks", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(notebooksJSON))
	})
	mux.HandleFunc("/api/v1/repositories/r1/commits/empty/notebooks", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	mem, err := cache.NewMemoryCache(32)
	if err != nil {
		t.Fatal(err)
	}
	c := NewClient(server.URL, mem)
	c.SetHTTPClient(server.Client())
	return c
}

func TestClient_Repositories(t *testing.T) {
	var hits atomic.Int32
	c := testClient(t, testServer(t, &hits))

	repos, err := c.Repositories(context.Background(), false)
	if err != nil {
		t.Fatalf("Repositories: %v", err)
	}
	if len(repos) != 1 || repos[0].ID != "r1" || repos[0].Name() != "acme/pipelines" {
		t.Errorf("repos = %+v", repos)
	}
}

func TestClient_Commit(t *testing.T) {
	var hits atomic.Int32
	c := testClient(t, testServer(t, &hits))
	ctx := context.Background()

	commit, err := c.Commit(ctx, "r1", "c1", false)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if commit.Committer.Name != "Ada" || commit.Title() != "Add model training" || len(commit.Created) != 1 {
		t.Errorf("commit = %+v", commit)
	}

	if _, err := c.Commit(ctx, "r1", "c1", false); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 1 {
		t.Errorf("commit fetched %d times, want 1 (cached)", hits.Load())
	}
	if _, err := c.Commit(ctx, "r1", "c1", true); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 2 {
		t.Errorf("refresh did not refetch: %d hits", hits.Load())
	}
}

func TestClient_CommitsAndNotebooks(t *testing.T) {
	var hits atomic.Int32
	c := testClient(t, testServer(t, &hits))
	ctx := context.Background()

	commits, err := c.Commits(ctx, "r1", false)
	if err != nil || len(commits) != 1 {
		t.Fatalf("Commits = %v, %v", commits, err)
	}

	notebooks, err := c.Notebooks(ctx, "r1", "c1", false)
	if err != nil {
		t.Fatalf("Notebooks: %v", err)
	}
	if len(notebooks) != 2 || notebooks[1].Inputs[0] != "/raw" {
		t.Errorf("notebooks = %+v", notebooks)
	}
}

func TestClient_NoDataAndNotFound(t *testing.T) {
	var hits atomic.Int32
	c := testClient(t, testServer(t, &hits))
	ctx := context.Background()

	_, err := c.Notebooks(ctx, "r1", "empty", false)
	if !integrations.NoData(err) || !errors.Is(err, integrations.ErrNoContent) {
		t.Errorf("empty body error = %v", err)
	}

	_, err = c.Commit(ctx, "r1", "missing", false)
	if !errors.Is(err, integrations.ErrNotFound) || !bperrors.Is(err, bperrors.ErrCodeNotFound) {
		t.Errorf("404 error = %v", err)
	}
}

func TestClient_InvalidIDs(t *testing.T) {
	c := NewClient("http://unused", nil)
	tests := []struct {
		name string
		call func() error
	}{
		{"repo with slash", func() error { _, err := c.Commits(context.Background(), "a/b", false); return err }},
		{"empty commit", func() error { _, err := c.Commit(context.Background(), "r1", "", false); return err }},
		{"dotted commit", func() error { _, err := c.Notebooks(context.Background(), "r1", "..", false); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !bperrors.Is(err, bperrors.ErrCodeInvalidID) {
				t.Errorf("error = %v, want INVALID_ID", err)
			}
		})
	}
}
