// internal/models/job.go
package models

// Job is the normalized listing shape every store works with. All fields are
// populated; the transformer fills placeholders for anything upstream omits.
type Job struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Location     string   `json:"location"`
	Salary       string   `json:"salary"`
	Type         string   `json:"type"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
	PostedDate   string   `json:"postedDate"`
	Logo         string   `json:"logo"`
	Category     string   `json:"category"`
	Experience   string   `json:"experience"`
	Skills       []string `json:"skills"`
	JobURL       string   `json:"jobUrl"`
	Origin       string   `json:"origin"`
}

// RankedJob is a job with a 0-100 match score.
type RankedJob struct {
	Job
	MatchScore int `json:"matchScore"`
}

// Clone returns a deep copy.
func (j Job) Clone() Job {
	j.Requirements = append([]string{}, j.Requirements...)
	j.Skills = append([]string{}, j.Skills...)
	return j
}

// CloneJobs deep-copies a job slice.
func CloneJobs(jobs []Job) []Job {
	if jobs == nil {
		return nil
	}
	out := make([]Job, len(jobs))
	for i, j := range jobs {
		out[i] = j.Clone()
	}
	return out
}

// Employment types used across listings.
const (
	JobTypeFullTime   = "Full-time"
	JobTypePartTime   = "Part-time"
	JobTypeContract   = "Contract"
	JobTypeInternship = "Internship"
	JobTypeFreelance  = "Freelance"
)
