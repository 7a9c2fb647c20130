package model

// Job is one run of one notebook inside an execution.
// PreviousJobs lists the ids of the jobs it depends on.
type Job struct {
	ID           string    `json:"id"`
	Status       Status    `json:"status"`
	StartedAt    *UnixTime `json:"startedAt"`
	EndedAt      *UnixTime `json:"endedAt"`
	Exception    *string   `json:"exception"`
	Notebook     Notebook  `json:"notebook"`
	PreviousJobs []string  `json:"previousJobs"`
}

// Started returns the start time, or the zero time.
func (j Job) Started() UnixTime {
	if j.StartedAt == nil {
		return UnixTime{}
	}
	return *j.StartedAt
}

// Ended returns the end time, or the zero time.
func (j Job) Ended() UnixTime {
	if j.EndedAt == nil {
		return UnixTime{}
	}
	return *j.EndedAt
}

// Execution is a set of jobs built from a commit's notebooks.
// EndJobs are the jobs the user selected; Jobs additionally contains every
// job they transitively depend on.
type Execution struct {
	ID           string   `json:"id"`
	RepositoryID string   `json:"repositoryId"`
	CommitID     string   `json:"commitId"`
	Status       Status   `json:"status"`
	CreatedAt    UnixTime `json:"createdAt"`
	Jobs         []Job    `json:"jobs"`
	EndJobs      []Job    `json:"endJobs"`
}

// NotebookIDs returns the notebook ids of Jobs, in job order.
func (e Execution) NotebookIDs() []string {
	return jobNotebookIDs(e.Jobs)
}

// EndNotebookIDs returns the notebook ids of EndJobs, in job order.
func (e Execution) EndNotebookIDs() []string {
	return jobNotebookIDs(e.EndJobs)
}

// Job returns the job with the given id.
func (e Execution) Job(id string) (Job, bool) {
	for _, j := range e.Jobs {
		if j.ID == id {
			return j, true
		}
	}
	return Job{}, false
}

// CanStart reports whether the execution may be started: it must still be
// Ready and at least one notebook must be selected.
func (e Execution) CanStart() bool {
	return e.Status == StatusReady && len(e.Jobs) > 0
}

// CanCancel reports whether the execution is running.
func (e Execution) CanCancel() bool {
	return e.Status == StatusRunning
}

// Editable reports whether the notebook selection may still change.
func (e Execution) Editable() bool {
	return e.Status == StatusReady
}

func jobNotebookIDs(jobs []Job) []string {
	ids := make([]string, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.Notebook.ID)
	}
	return ids
}

// ExecutionRequest is the body of the create and update execution calls.
// NotebookIDs are the terminal notebooks; the service adds their dependencies.
type ExecutionRequest struct {
	RepositoryID string   `json:"repositoryId"`
	CommitID     string   `json:"commitId"`
	NotebookIDs  []string `json:"notebookIds"`
}
