// internal/stores/job-collection/models.go
package jobcollection

import "jobportal/internal/models"

// Snapshot is an immutable copy of the store state.
type Snapshot struct {
	Jobs      []models.Job       `json:"jobs"`
	Displayed []models.Job       `json:"displayed"`
	Featured  []models.Job       `json:"featured"`
	Ranked    []models.RankedJob `json:"ranked,omitempty"` // set when Displayed came from a ranked search
	Current   *models.Job        `json:"current,omitempty"`
	Loading   bool               `json:"loading"`
	Error     string             `json:"error,omitempty"`
	Query     string             `json:"query,omitempty"`
	Filters   models.JobFilters  `json:"filters"`
}

// Error flag values surfaced to the view.
const (
	ErrMsgFetchJobs  = "Failed to fetch jobs"
	ErrMsgFetchJob   = "Failed to fetch job"
	ErrMsgSearchJobs = "Failed to search jobs"
)
