// internal/stores/cv-match/store.go
package cvmatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"jobportal/internal/backend"
	apperrors "jobportal/internal/common/errors"
	"jobportal/internal/common/logger"
	"jobportal/internal/common/metrics"
	"jobportal/internal/common/storage"
	"jobportal/internal/models"
)

const StoreName = "cv-match"

var (
	// ErrSuperseded is returned when an analysis finished after a newer one
	// had already been applied.
	ErrSuperseded = errors.New("analysis superseded by a newer request")
	ErrClosed     = errors.New("cv match store is closed")
)

// Store holds the last CV analysis and turns it into navigation state for
// the job listing.
type Store struct {
	config   *Config
	analyzer Analyzer
	storage  storage.Store
	logger   logger.Logger

	seq atomic.Uint64

	mu       sync.RWMutex
	applied  uint64
	inflight int
	closed   bool
	analysis *models.CVAnalysis
	errMsg   string

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

func NewStore(config *Config, analyzer Analyzer, store storage.Store, log logger.Logger) *Store {
	if config == nil {
		config = LoadConfig(nil)
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Store{
		config:   config,
		analyzer: analyzer,
		storage:  store,
		logger:   log.WithFields(map[string]interface{}{"store": StoreName}),
		subs:     make(map[int]func(Snapshot)),
	}
}

// Restore loads the last persisted analysis. Records that fail validation
// are ignored.
func (s *Store) Restore(ctx context.Context) error {
	if s.storage == nil {
		return nil
	}
	raw, err := s.storage.Get(ctx, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.NewStorageError("get", StorageKey, err)
	}

	analysis, err := backend.ParseAnalysis(raw, s.config.DefaultOrigin)
	if err != nil {
		s.logger.Warn("ignoring invalid analysis record", map[string]interface{}{"error": err.Error()})
		return nil
	}

	s.mu.Lock()
	if s.analysis == nil {
		s.analysis = analysis
	}
	s.mu.Unlock()
	s.publish()
	return nil
}

// Analyze submits cvURL for analysis and keeps the result. On failure the
// previous analysis is kept and the error flag carries the service message,
// or a generic one.
func (s *Store) Analyze(ctx context.Context, cvURL string) (*models.CVAnalysis, error) {
	start := time.Now()
	if cvURL == "" {
		err := apperrors.NewValidationError("cvUrl", "Please upload your CV first")
		metrics.Observe(StoreName, "analyze", string(err.Code), start)
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	token := s.seq.Add(1)
	s.inflight++
	s.mu.Unlock()
	s.publish()

	actx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	analysis, raw, err := s.analyzer.AnalyzeCV(actx, cvURL)
	cancel()

	s.mu.Lock()
	s.inflight--
	if token < s.applied {
		s.mu.Unlock()
		metrics.StaleResponses.WithLabelValues("analyze").Inc()
		s.logger.Warn("discarding stale analysis", map[string]interface{}{"token": token})
		s.publish()
		return nil, ErrSuperseded
	}
	s.applied = token
	if err != nil {
		s.errMsg = flagMessage(err)
		s.mu.Unlock()
		s.logger.Error("cv analysis failed", map[string]interface{}{
			"error": err.Error(),
			"code":  string(apperrors.CodeOf(err)),
		})
		metrics.Observe(StoreName, "analyze", string(apperrors.CodeOf(err)), start)
		s.publish()
		return nil, err
	}
	s.analysis = analysis
	s.errMsg = ""
	s.mu.Unlock()

	s.persist(ctx, raw)
	s.logger.Info("cv analyzed", map[string]interface{}{
		"score":           analysis.Score,
		"recommendations": len(analysis.Recommendations),
	})
	metrics.Observe(StoreName, "analyze", "success", start)
	s.publish()
	return cloneAnalysis(analysis), nil
}

// ViewMatchingJobs builds the navigation state for the job listing from the
// current analysis. Recommendations keep the order the service returned.
func (s *Store) ViewMatchingJobs() (models.MatchNavigation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.analysis == nil {
		return models.MatchNavigation{}, apperrors.NewNotFoundError("CV analysis", StorageKey)
	}

	ids := make([]string, len(s.analysis.Recommendations))
	for i, r := range s.analysis.Recommendations {
		ids[i] = r.ID
	}
	return models.MatchNavigation{
		Categories:        append([]string{}, s.analysis.Categories...),
		Skills:            append([]string{}, s.analysis.Skills...),
		Experience:        append([]string{}, s.analysis.Experience...),
		MatchThreshold:    s.config.MatchThreshold,
		RecommendedJobIDs: ids,
	}, nil
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Analysis: cloneAnalysis(s.analysis),
		Loading:  s.inflight > 0,
		Error:    s.errMsg,
	}
}

// Subscribe registers fn to receive a snapshot after every state change.
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

func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.subMu.Lock()
	s.subs = make(map[int]func(Snapshot))
	s.subMu.Unlock()
	return nil
}

func (s *Store) persist(ctx context.Context, raw []byte) {
	if s.storage == nil || len(raw) == 0 {
		return
	}
	if err := s.storage.Put(ctx, StorageKey, raw); err != nil {
		s.logger.Error("persist analysis failed", map[string]interface{}{
			"error": apperrors.NewStorageError("put", StorageKey, err).Error(),
		})
	}
}

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

// flagMessage keeps service-supplied text and hides transport details.
func flagMessage(err error) string {
	if apperrors.CodeOf(err) == apperrors.ErrCodeService {
		if msg := apperrors.MessageOf(err); msg != "" {
			return msg
		}
	}
	return ErrMsgAnalyze
}

func cloneAnalysis(a *models.CVAnalysis) *models.CVAnalysis {
	if a == nil {
		return nil
	}
	c := *a
	c.Categories = append([]string{}, a.Categories...)
	c.Skills = append([]string{}, a.Skills...)
	c.Experience = append([]string{}, a.Experience...)
	c.Improvements = append([]string{}, a.Improvements...)
	c.Recommendations = make([]models.RankedJob, len(a.Recommendations))
	for i, r := range a.Recommendations {
		c.Recommendations[i] = models.RankedJob{Job: r.Job.Clone(), MatchScore: r.MatchScore}
	}
	return &c
}
