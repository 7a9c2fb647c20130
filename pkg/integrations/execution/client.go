// Package execution is the client of the execution service.
//
// An execution is created from a commit and a set of terminal notebooks;
// the service adds every notebook they depend on as a job. While Ready its
// selection can be updated; once started it is polled until every job is
// done. Responses are live state and are never cached.
package execution

import (
	"context"
	"io"
	"net/http"

	bperrors "github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/integrations"
	"github.com/matzehuels/blueprint/pkg/model"
)

// Client provides access to the execution service API.
// All methods are safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates an execution service client for baseURL (the
// EXECUTION_HOST setting).
func NewClient(baseURL string) *Client {
	return &Client{
		Client:  integrations.NewClient(nil, "executions", 0, nil),
		baseURL: baseURL,
	}
}

// BaseURL returns the service base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Create creates a Ready execution for the requested notebooks.
func (c *Client) Create(ctx context.Context, req model.ExecutionRequest) (*model.Execution, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return c.send(ctx, http.MethodPost, req, "execute")
}

// List returns every execution known to the service.
func (c *Client) List(ctx context.Context) ([]model.Execution, error) {
	var out []model.Execution
	if err := c.Client.Get(ctx, c.url("execution"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches a single execution. It is the call the poller repeats.
func (c *Client) Get(ctx context.Context, id string) (*model.Execution, error) {
	if err := bperrors.ValidateID("execution", id); err != nil {
		return nil, err
	}
	var out model.Execution
	if err := c.Client.Get(ctx, c.url("execution", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the terminal notebooks of a Ready execution.
func (c *Client) Update(ctx context.Context, id string, req model.ExecutionRequest) (*model.Execution, error) {
	if err := bperrors.ValidateID("execution", id); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return c.send(ctx, http.MethodPut, req, "execution", id)
}

// Start starts a Ready execution.
func (c *Client) Start(ctx context.Context, id string) (*model.Execution, error) {
	if err := bperrors.ValidateID("execution", id); err != nil {
		return nil, err
	}
	return c.send(ctx, http.MethodPost, nil, "execution", id, "start")
}

// Cancel cancels a Running execution.
func (c *Client) Cancel(ctx context.Context, id string) (*model.Execution, error) {
	if err := bperrors.ValidateID("execution", id); err != nil {
		return nil, err
	}
	return c.send(ctx, http.MethodPut, nil, "execution", id, "cancel")
}

// JobLog opens the log of a job as a text stream that stays open while the
// job runs. Cancel ctx to stop following it; the caller closes the reader.
func (c *Client) JobLog(ctx context.Context, id, job string) (io.ReadCloser, error) {
	if err := bperrors.ValidateID("execution", id); err != nil {
		return nil, err
	}
	if err := bperrors.ValidateID("job", job); err != nil {
		return nil, err
	}
	return c.Stream(ctx, c.url("execution", id, "job", job, "log"))
}

func (c *Client) send(ctx context.Context, method string, body any, segments ...string) (*model.Execution, error) {
	var out model.Execution
	if err := c.Send(ctx, method, c.url(segments...), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) url(segments ...string) string {
	return integrations.JoinURL(c.baseURL, append([]string{"api", "v1"}, segments...)...)
}

func validateRequest(req model.ExecutionRequest) error {
	if err := bperrors.ValidateID("repository", req.RepositoryID); err != nil {
		return err
	}
	if err := bperrors.ValidateID("commit", req.CommitID); err != nil {
		return err
	}
	for _, id := range req.NotebookIDs {
		if err := bperrors.ValidateID("notebook", id); err != nil {
			return err
		}
	}
	return nil
}
