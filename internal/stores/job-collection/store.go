// internal/stores/job-collection/store.go
package jobcollection

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	apperrors "jobportal/internal/common/errors"
	"jobportal/internal/common/logger"
	"jobportal/internal/common/metrics"
	"jobportal/internal/models"
)

const StoreName = "job-collection"

var (
	// ErrSuperseded is returned when a response arrived after a newer request
	// had already been applied. The store state is unchanged.
	ErrSuperseded = errors.New("response superseded by a newer request")
	ErrClosed     = errors.New("job collection store is closed")
)

// Store is the single source of truth for the job list and its displayed
// subset. It is safe for concurrent use.
type Store struct {
	config   *Config
	source   JobSource
	searcher Searcher
	logger   logger.Logger

	seq atomic.Uint64

	mu       sync.RWMutex
	applied  uint64
	inflight int
	closed   bool

	jobs      []models.Job
	displayed []models.Job
	featured  []models.Job
	ranked    []models.RankedJob
	current   *models.Job
	errMsg    string
	query     string
	filters   models.JobFilters

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// NewStore builds an empty store. A nil searcher means local search.
func NewStore(config *Config, source JobSource, searcher Searcher, log logger.Logger) *Store {
	if config == nil {
		config = LoadConfig(nil)
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Store{
		config:    config,
		source:    source,
		searcher:  searcher,
		logger:    log.WithFields(map[string]interface{}{"store": StoreName}),
		jobs:      []models.Job{},
		displayed: []models.Job{},
		featured:  []models.Job{},
		subs:      make(map[int]func(Snapshot)),
	}
}

// FetchAll replaces the full and displayed sets with the backend collection.
// On failure the prior state is kept and the error flag is set.
func (s *Store) FetchAll(ctx context.Context) error {
	start := time.Now()
	token, err := s.begin()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	jobs, fetchErr := s.source.FetchJobs(ctx)
	cancel()

	s.mu.Lock()
	s.inflight--
	if token < s.applied {
		s.mu.Unlock()
		s.discard("fetch_all", token)
		s.publish()
		return ErrSuperseded
	}
	s.applied = token
	if fetchErr != nil {
		s.errMsg = ErrMsgFetchJobs
		s.mu.Unlock()
		s.logger.Error("fetch jobs failed", map[string]interface{}{
			"error": fetchErr.Error(),
			"code":  string(apperrors.CodeOf(fetchErr)),
		})
		metrics.Observe(StoreName, "fetch_all", string(apperrors.CodeOf(fetchErr)), start)
		s.publish()
		return fetchErr
	}

	s.jobs = jobs
	s.displayed = jobs
	s.featured = firstN(jobs, s.config.FeaturedCount)
	s.ranked = nil
	s.query = ""
	s.filters = models.JobFilters{}
	s.errMsg = ""
	if s.current != nil && !containsID(jobs, s.current.ID) {
		s.current = nil
	}
	count := len(s.displayed)
	s.mu.Unlock()

	s.logger.Info("jobs fetched", map[string]interface{}{"count": len(jobs)})
	metrics.Observe(StoreName, "fetch_all", "success", start)
	metrics.DisplayedJobs.Set(float64(count))
	s.publish()
	return nil
}

// FetchOne selects a job from the loaded set as the current job.
func (s *Store) FetchOne(id string) (models.Job, error) {
	start := time.Now()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return models.Job{}, ErrClosed
	}
	for i := range s.jobs {
		if s.jobs[i].ID == id {
			job := s.jobs[i]
			s.current = &job
			s.mu.Unlock()
			metrics.Observe(StoreName, "fetch_one", "success", start)
			s.publish()
			return job.Clone(), nil
		}
	}
	s.errMsg = ErrMsgFetchJob
	s.mu.Unlock()

	metrics.Observe(StoreName, "fetch_one", string(apperrors.ErrCodeNotFound), start)
	s.publish()
	return models.Job{}, apperrors.NewNotFoundError("Job", id)
}

// Filter recomputes the displayed set from the full set and returns it.
// Requests started before it are superseded.
func (s *Store) Filter(f models.JobFilters) []models.Job {
	start := time.Now()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.applied = s.seq.Add(1)
	result := ApplyFilters(s.jobs, f)
	s.displayed = result
	s.ranked = nil
	s.filters = f.Normalized()
	s.query = ""
	s.mu.Unlock()

	metrics.Observe(StoreName, "filter", "success", start)
	metrics.DisplayedJobs.Set(float64(len(result)))
	s.publish()
	return models.CloneJobs(result)
}

// Search replaces the displayed set with the jobs matching query. An empty
// query restores the full set. With a Searcher configured the ranking is
// done remotely and a failure leaves the displayed set untouched.
func (s *Store) Search(ctx context.Context, query string) ([]models.Job, error) {
	start := time.Now()
	trimmed := strings.TrimSpace(query)

	if trimmed == "" || s.searcher == nil {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return nil, ErrClosed
		}
		s.applied = s.seq.Add(1)
		if trimmed == "" {
			s.displayed = s.jobs
		} else {
			s.displayed = LocalSearch(s.jobs, trimmed)
		}
		s.ranked = nil
		s.query = trimmed
		result := models.CloneJobs(s.displayed)
		s.mu.Unlock()

		metrics.Observe(StoreName, "search", "success", start)
		metrics.DisplayedJobs.Set(float64(len(result)))
		s.publish()
		return result, nil
	}

	token, err := s.begin()
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	filters := s.filters
	s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	ranked, searchErr := s.searcher.Search(ctx, trimmed, filters)
	cancel()

	s.mu.Lock()
	s.inflight--
	if token < s.applied {
		s.mu.Unlock()
		s.discard("search", token)
		s.publish()
		return nil, ErrSuperseded
	}
	s.applied = token
	if searchErr != nil {
		s.errMsg = ErrMsgSearchJobs
		s.mu.Unlock()
		s.logger.Error("search failed", map[string]interface{}{
			"query": trimmed,
			"error": searchErr.Error(),
		})
		metrics.Observe(StoreName, "search", string(apperrors.CodeOf(searchErr)), start)
		s.publish()
		return nil, searchErr
	}

	jobs := make([]models.Job, len(ranked))
	for i, r := range ranked {
		jobs[i] = r.Job
	}
	s.displayed = jobs
	s.ranked = ranked
	s.query = trimmed
	s.errMsg = ""
	result := models.CloneJobs(jobs)
	s.mu.Unlock()

	s.logger.Debug("search applied", map[string]interface{}{"query": trimmed, "results": len(jobs)})
	metrics.Observe(StoreName, "search", "success", start)
	metrics.DisplayedJobs.Set(float64(len(jobs)))
	s.publish()
	return result, nil
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Jobs:      models.CloneJobs(s.jobs),
		Displayed: models.CloneJobs(s.displayed),
		Featured:  models.CloneJobs(s.featured),
		Loading:   s.inflight > 0,
		Error:     s.errMsg,
		Query:     s.query,
		Filters:   s.filters,
	}
	if s.ranked != nil {
		snap.Ranked = make([]models.RankedJob, len(s.ranked))
		for i, r := range s.ranked {
			snap.Ranked[i] = models.RankedJob{Job: r.Job.Clone(), MatchScore: r.MatchScore}
		}
	}
	if s.current != nil {
		c := s.current.Clone()
		snap.Current = &c
	}
	return snap
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs synchronously and must not call Subscribe or the returned func,
// which unregisters it.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Close drops all subscribers. Later operations return ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.subMu.Lock()
	s.subs = make(map[int]func(Snapshot))
	s.subMu.Unlock()
	return nil
}

// begin issues a sequence token for a networked operation and raises the
// loading flag.
func (s *Store) begin() (uint64, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, ErrClosed
	}
	token := s.seq.Add(1)
	s.inflight++
	s.mu.Unlock()
	s.publish()
	return token, nil
}

func (s *Store) discard(operation string, token uint64) {
	metrics.StaleResponses.WithLabelValues(operation).Inc()
	s.logger.Warn("discarding stale response", map[string]interface{}{
		"operation": operation,
		"token":     token,
	})
}

// publish delivers a snapshot to subscribers. subMu serializes deliveries.
func (s *Store) publish() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if len(s.subs) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, fn := range s.subs {
		fn(snap)
	}
}

func firstN(jobs []models.Job, n int) []models.Job {
	if n < 0 {
		n = 0
	}
	if len(jobs) < n {
		n = len(jobs)
	}
	return jobs[:n:n]
}

func containsID(jobs []models.Job, id string) bool {
	for _, j := range jobs {
		if j.ID == id {
			return true
		}
	}
	return false
}
