package depgraph

import (
	"github.com/matzehuels/blueprint/pkg/dag"
	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/model"
)

// FromNotebooks builds the tag-derived graph of a commit's notebooks.
// Node IDs are notebook ids.
func FromNotebooks(notebooks []model.Notebook) (*dag.DAG, error) {
	entities := make([]Entity, 0, len(notebooks))
	for _, nb := range notebooks {
		entities = append(entities, Entity{
			ID:      nb.ID,
			Label:   model.ShortID(nb.ID),
			Inputs:  nb.Inputs,
			Outputs: nb.Outputs,
			Meta: dag.Metadata{
				MetaPath:       nb.Path,
				MetaNotebookID: nb.ID,
			},
		})
	}
	return Build(entities)
}

// FromJobs builds the graph of an execution's jobs from their explicit
// previousJobs references. Node IDs are job ids.
func FromJobs(jobs []model.Job) (*dag.DAG, error) {
	entities := make([]Entity, 0, len(jobs))
	for _, j := range jobs {
		entities = append(entities, jobEntity(j, j.ID, j.PreviousJobs))
	}
	return Build(entities)
}

// FromJobsByNotebook builds the job graph keyed by notebook id instead of
// job id, so that it shares identifiers with the notebook tree and the
// commit graph. Job ids are generated per execution; notebook ids are
// stable across executions.
func FromJobsByNotebook(jobs []model.Job) (*dag.DAG, error) {
	notebookOf := make(map[string]string, len(jobs))
	for _, j := range jobs {
		notebookOf[j.ID] = j.Notebook.ID
	}

	entities := make([]Entity, 0, len(jobs))
	for _, j := range jobs {
		parents := make([]string, 0, len(j.PreviousJobs))
		for _, p := range j.PreviousJobs {
			nb, ok := notebookOf[p]
			if !ok {
				return nil, errors.New(errors.ErrCodeGraphIntegrity, "job %q references unknown parent %q", j.ID, p)
			}
			parents = append(parents, nb)
		}
		entities = append(entities, jobEntity(j, j.Notebook.ID, parents))
	}
	return Build(entities)
}

func jobEntity(j model.Job, id string, parents []string) Entity {
	return Entity{
		ID:         id,
		Label:      model.ShortID(j.Notebook.ID),
		Parents:    parents,
		HasParents: true,
		Meta: dag.Metadata{
			MetaPath:       j.Notebook.Path,
			MetaNotebookID: j.Notebook.ID,
			MetaJobID:      j.ID,
			MetaStatus:     string(j.Status),
		},
	}
}
