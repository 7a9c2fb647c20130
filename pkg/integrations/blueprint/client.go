// Package blueprint is the client of the repository service.
//
// The repository service indexes git repositories of notebooks. Every
// commit-scoped resource (a commit, its notebook list) is immutable and is
// cached for [cache.TTLCommit]; listings change as commits are pushed and
// are cached for [cache.TTLListing] only.
package blueprint

import (
	"context"

	"github.com/matzehuels/blueprint/pkg/cache"
	bperrors "github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/integrations"
	"github.com/matzehuels/blueprint/pkg/model"
)

// Client provides access to the repository service API.
// All methods are safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a repository service client for baseURL (the
// BLUEPRINT_HOST setting). Pass cache.NewNullCache() to disable caching.
func NewClient(baseURL string, backend cache.Cache) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "repos", cache.TTLCommit, nil),
		baseURL: baseURL,
	}
}

// BaseURL returns the service base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Repositories lists the indexed repositories.
func (c *Client) Repositories(ctx context.Context, refresh bool) ([]model.Repository, error) {
	var repos []model.Repository
	err := c.CachedFor(ctx, "repositories", cache.TTLListing, refresh, &repos, func() error {
		return c.Get(ctx, c.url("repositories"), &repos)
	})
	return repos, err
}

// Commits lists the commits of a repository, newest first.
func (c *Client) Commits(ctx context.Context, repo string, refresh bool) ([]model.Commit, error) {
	if err := bperrors.ValidateID("repository", repo); err != nil {
		return nil, err
	}
	var commits []model.Commit
	err := c.CachedFor(ctx, cache.JoinKey(repo, "commits"), cache.TTLListing, refresh, &commits, func() error {
		return c.Get(ctx, c.url("repositories", repo, "commits"), &commits)
	})
	return commits, err
}

// Commit fetches a single commit with its created, updated and deleted
// notebooks.
func (c *Client) Commit(ctx context.Context, repo, commit string, refresh bool) (*model.Commit, error) {
	if err := validate(repo, commit); err != nil {
		return nil, err
	}
	var out model.Commit
	err := c.Cached(ctx, cache.JoinKey(repo, commit), refresh, &out, func() error {
		return c.Get(ctx, c.url("repositories", repo, "commits", commit), &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Notebooks lists every notebook present at a commit.
func (c *Client) Notebooks(ctx context.Context, repo, commit string, refresh bool) ([]model.Notebook, error) {
	if err := validate(repo, commit); err != nil {
		return nil, err
	}
	var notebooks []model.Notebook
	err := c.Cached(ctx, cache.JoinKey(repo, commit, "notebooks"), refresh, &notebooks, func() error {
		return c.Get(ctx, c.url("repositories", repo, "commits", commit, "notebooks"), &notebooks)
	})
	return notebooks, err
}

func (c *Client) url(segments ...string) string {
	return integrations.JoinURL(c.baseURL, append([]string{"api", "v1"}, segments...)...)
}

func validate(repo, commit string) error {
	if err := bperrors.ValidateID("repository", repo); err != nil {
		return err
	}
	return bperrors.ValidateID("commit", commit)
}
