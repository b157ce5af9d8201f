// internal/stores/job-collection/search.go
package jobcollection

import (
	"context"

	"jobportal/internal/backend"
	"jobportal/internal/common/database"
	apperrors "jobportal/internal/common/errors"
	"jobportal/internal/models"
)

const (
	SearchModeLocal         = "local"
	SearchModeRemote        = "remote"
	SearchModeElasticsearch = "elasticsearch"
)

// JobSource loads the full job collection.
type JobSource interface {
	FetchJobs(ctx context.Context) ([]models.Job, error)
}

// Searcher ranks jobs for a query outside the process. filters carries the
// currently applied criteria so backends can narrow their results.
type Searcher interface {
	Search(ctx context.Context, query string, filters models.JobFilters) ([]models.RankedJob, error)
}

type jobSearchAPI interface {
	SearchJobs(ctx context.Context, req backend.SearchRequest) ([]models.RankedJob, error)
}

// BackendSearcher delegates to POST /api/search-jobs.
type BackendSearcher struct {
	api jobSearchAPI
}

func NewBackendSearcher(api jobSearchAPI) *BackendSearcher {
	return &BackendSearcher{api: api}
}

func (b *BackendSearcher) Search(ctx context.Context, query string, filters models.JobFilters) ([]models.RankedJob, error) {
	f := filters.Normalized()
	return b.api.SearchJobs(ctx, backend.SearchRequest{
		Query:    query,
		Location: f.Location,
		Skills:   f.SkillList(),
		JobType:  f.Type,
	})
}

type hitSearcher interface {
	SearchJobs(ctx context.Context, query string) ([]database.SearchHit, error)
}

// ElasticsearchSearcher queries a jobs index directly. Hit scores are
// normalized against the best hit before scaling to 0-100.
type ElasticsearchSearcher struct {
	es            hitSearcher
	defaultOrigin string
}

func NewElasticsearchSearcher(es hitSearcher, defaultOrigin string) *ElasticsearchSearcher {
	return &ElasticsearchSearcher{es: es, defaultOrigin: defaultOrigin}
}

func (e *ElasticsearchSearcher) Search(ctx context.Context, query string, _ models.JobFilters) ([]models.RankedJob, error) {
	hits, err := e.es.SearchJobs(ctx, query)
	if err != nil {
		return nil, apperrors.NewNetworkError("elasticsearch", err)
	}

	maxScore := 0.0
	for _, h := range hits {
		if h.Score > maxScore {
			maxScore = h.Score
		}
	}

	records := make([]backend.Record, 0, len(hits))
	for _, h := range hits {
		score := 0.0
		if maxScore > 0 {
			score = h.Score / maxScore
		}
		r, err := backend.RecordFromSource(h.ID, score, h.Source)
		if err != nil {
			return nil, apperrors.NewDecodeError("elasticsearch", err)
		}
		records = append(records, r)
	}

	ranked, _ := backend.TransformRanked(records, e.defaultOrigin)
	return ranked, nil
}
