// internal/backend/jobs.go
package backend

import (
	"context"
	"encoding/json"

	apperrors "jobportal/internal/common/errors"
	apphttp "jobportal/internal/common/http"
	"jobportal/internal/models"
)

// SearchRequest is the body of POST /api/search-jobs.
type SearchRequest struct {
	Query    string   `json:"query"`
	Location string   `json:"location,omitempty"`
	Skills   []string `json:"skills,omitempty"`
	JobType  string   `json:"jobType,omitempty"`
}

// FetchJobs returns the full job collection in backend order.
func (c *Client) FetchJobs(ctx context.Context) ([]models.Job, error) {
	var raw json.RawMessage
	if err := c.http.GetJSON(ctx, PathJobs, &raw); err != nil {
		return nil, apphttp.WithFallbackMessage(err, "Failed to fetch jobs")
	}

	records, err := decodeRecords(raw)
	if err != nil {
		return nil, apperrors.NewDecodeError(PathJobs, err)
	}

	jobs, dropped := TransformAll(records, c.defaultOrigin)
	if dropped > 0 {
		c.logger.Warn("dropped job records", map[string]interface{}{
			"endpoint": PathJobs,
			"dropped":  dropped,
			"kept":     len(jobs),
		})
	}
	return jobs, nil
}

// SearchJobs delegates ranking to the backend and returns results in its order.
func (c *Client) SearchJobs(ctx context.Context, req SearchRequest) ([]models.RankedJob, error) {
	var raw json.RawMessage
	if err := c.http.PostJSON(ctx, PathSearchJobs, req, &raw); err != nil {
		return nil, apphttp.WithFallbackMessage(err, "Failed to search jobs")
	}

	records, err := decodeRecords(raw)
	if err != nil {
		return nil, apperrors.NewDecodeError(PathSearchJobs, err)
	}

	ranked, dropped := TransformRanked(records, c.defaultOrigin)
	if dropped > 0 {
		c.logger.Warn("dropped search results", map[string]interface{}{
			"endpoint": PathSearchJobs,
			"dropped":  dropped,
		})
	}
	return ranked, nil
}
