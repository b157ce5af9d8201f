// internal/backend/transform.go
package backend

import (
	"math"
	"strings"

	"jobportal/internal/models"
)

// Placeholders for fields the upstream record does not carry.
const (
	DefaultSalary     = "Not disclosed"
	DefaultType       = models.JobTypeFullTime
	DefaultLogo       = "https://placehold.co/100"
	DefaultCategory   = "Not specified"
	DefaultExperience = "Not specified"
)

// JobID derives the internal id: the last ':' segment of listing_id when
// present, the upstream point id otherwise.
func JobID(r Record) string {
	if lid := strings.TrimSpace(r.Payload.ListingID); lid != "" {
		if i := strings.LastIndex(lid, ":"); i >= 0 {
			if tail := lid[i+1:]; tail != "" {
				return tail
			}
		} else {
			return lid
		}
	}
	return strings.TrimSpace(r.ID)
}

// Transform maps one upstream record to a Job. ok is false when no id can be
// derived.
func Transform(r Record, defaultOrigin string) (models.Job, bool) {
	id := JobID(r)
	if id == "" {
		return models.Job{}, false
	}
	p := r.Payload

	job := models.Job{
		ID:           id,
		Title:        p.Title,
		Company:      p.Company,
		Location:     p.Location,
		Salary:       orDefault(p.Salary, DefaultSalary),
		Type:         orDefault(p.Type, DefaultType),
		Description:  orDefault(p.Description, "Position at "+p.Company),
		Requirements: nonNil(p.Requirements),
		PostedDate:   p.PostedDate,
		Logo:         orDefault(p.Logo, DefaultLogo),
		Category:     orDefault(p.Category, DefaultCategory),
		Experience:   orDefault(p.Experience, DefaultExperience),
		Skills:       nonNil(p.Skills),
		JobURL:       p.JobURL,
		Origin:       orDefault(p.Source, defaultOrigin),
	}
	return job, true
}

// TransformAll maps records in order, dropping records without an id and
// later duplicates of an id already seen. The second return value counts
// dropped records.
func TransformAll(records []Record, defaultOrigin string) ([]models.Job, int) {
	jobs := make([]models.Job, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	dropped := 0
	for _, r := range records {
		job, ok := Transform(r, defaultOrigin)
		if !ok {
			dropped++
			continue
		}
		if _, dup := seen[job.ID]; dup {
			dropped++
			continue
		}
		seen[job.ID] = struct{}{}
		jobs = append(jobs, job)
	}
	return jobs, dropped
}

// TransformRanked is TransformAll for scored results. Scores in [0,1] become
// integer percentages.
func TransformRanked(records []Record, defaultOrigin string) ([]models.RankedJob, int) {
	ranked := make([]models.RankedJob, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	dropped := 0
	for _, r := range records {
		job, ok := Transform(r, defaultOrigin)
		if !ok {
			dropped++
			continue
		}
		if _, dup := seen[job.ID]; dup {
			dropped++
			continue
		}
		seen[job.ID] = struct{}{}
		ranked = append(ranked, models.RankedJob{Job: job, MatchScore: ScaleScore(r.Score)})
	}
	return ranked, dropped
}

// ScaleScore turns a 0-1 relevance score into a rounded 0-100 percentage.
func ScaleScore(score float64) int {
	pct := int(math.Round(score * 100))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return append([]string{}, list...)
}
