// internal/stores/job-collection/filter.go
package jobcollection

import (
	"strings"

	"jobportal/internal/models"
)

// ApplyFilters returns the jobs matching every present criterion, in input order.
func ApplyFilters(jobs []models.Job, f models.JobFilters) []models.Job {
	f = f.Normalized()
	skills := f.SkillList()
	location := strings.ToLower(f.Location)

	out := make([]models.Job, 0, len(jobs))
	for _, job := range jobs {
		if f.Type != "" && job.Type != f.Type {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(job.Location), location) {
			continue
		}
		if f.Experience != "" && job.Experience != f.Experience {
			continue
		}
		if f.Category != "" && job.Category != f.Category {
			continue
		}
		if f.Salary != "" && !strings.Contains(job.Salary, f.Salary) {
			continue
		}
		if len(skills) > 0 && !hasAnySkill(job.Skills, skills) {
			continue
		}
		out = append(out, job)
	}
	return out
}

func hasAnySkill(jobSkills, query []string) bool {
	for _, have := range jobSkills {
		have = strings.ToLower(have)
		for _, want := range query {
			if strings.Contains(have, strings.ToLower(want)) {
				return true
			}
		}
	}
	return false
}

// MatchesQuery reports whether q (already lowercased) occurs in the job's
// title, company, description or any skill.
func MatchesQuery(job models.Job, q string) bool {
	if strings.Contains(strings.ToLower(job.Title), q) ||
		strings.Contains(strings.ToLower(job.Company), q) ||
		strings.Contains(strings.ToLower(job.Description), q) {
		return true
	}
	for _, s := range job.Skills {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}

// LocalSearch is the in-memory search over the full set.
func LocalSearch(jobs []models.Job, query string) []models.Job {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Job, 0, len(jobs))
	for _, job := range jobs {
		if MatchesQuery(job, q) {
			out = append(out, job)
		}
	}
	return out
}
