package cvmatch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal/internal/backend"
	apperrors "jobportal/internal/common/errors"
	apphttp "jobportal/internal/common/http"
	"jobportal/internal/common/logger"
	"jobportal/internal/common/storage"
	"jobportal/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

const analysisBody = `{
	"score": 78,
	"categories": ["Engineering"],
	"skills": ["Go", "React"],
	"experience": ["5 years backend"],
	"improvements": ["Add metrics"],
	"matchedJobs": 2,
	"recommendations": [
		{"score": 0.912, "payload": {"listing_id": "urn:li:jobPosting:10", "title": "Go Engineer", "company": "Acme"}},
		{"score": 0.654, "payload": {"listing_id": "urn:li:jobPosting:11", "title": "Frontend Dev", "company": "Globex"}}
	]
}`

type fakeAnalyzer struct {
	analysis *models.CVAnalysis
	raw      json.RawMessage
	err      error
	release  chan struct{}
	started  chan struct{}
}

func (f *fakeAnalyzer) AnalyzeCV(ctx context.Context, _ string) (*models.CVAnalysis, json.RawMessage, error) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}
	return f.analysis, f.raw, f.err
}

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second, MatchThreshold: 0.6, DefaultOrigin: "linkedin"}
}

func createTestStore(t *testing.T, analyzer Analyzer, st storage.Store) *Store {
	t.Helper()
	s := NewStore(createTestConfig(), analyzer, st, logger.NewTestLogger(t))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func backendAnalyzer(t *testing.T, handler http.HandlerFunc) Analyzer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return backend.NewClient(apphttp.NewClient(srv.URL, 2*time.Second), logger.NewTestLogger(t), "linkedin")
}

// ==========================
// Analyze
// ==========================

func TestStore_Analyze_ScalesScoresAndPersists(t *testing.T) {
	var gotURL string
	analyzer := backendAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, backend.PathAnalyzeCV, r.URL.Path)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotURL = body["cvUrl"]
		_, _ = io.WriteString(w, analysisBody)
	})
	st, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	s := createTestStore(t, analyzer, st)

	analysis, err := s.Analyze(context.Background(), "https://files.test/cv.pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://files.test/cv.pdf", gotURL)
	assert.InDelta(t, 78, analysis.Score, 1e-9)
	require.Len(t, analysis.Recommendations, 2)
	assert.Equal(t, "10", analysis.Recommendations[0].ID)
	assert.Equal(t, 91, analysis.Recommendations[0].MatchScore)
	assert.Equal(t, 65, analysis.Recommendations[1].MatchScore)

	snap := s.Snapshot()
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Error)

	raw, err := st.Get(context.Background(), StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, analysisBody, string(raw))
}

func TestStore_Analyze_ServiceMessageIsKept(t *testing.T) {
	analyzer := backendAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"error": "Could not read CV"}`)
	})
	s := createTestStore(t, analyzer, nil)

	_, err := s.Analyze(context.Background(), "https://files.test/cv.pdf")
	require.Error(t, err)
	assert.Equal(t, "Could not read CV", s.Snapshot().Error)
}

func TestStore_Analyze_GenericMessage(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{name: "empty error body", handler: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{name: "invalid payload", handler: func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"score": "high"}`)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := createTestStore(t, backendAnalyzer(t, tt.handler), nil)
			_, err := s.Analyze(context.Background(), "https://files.test/cv.pdf")
			require.Error(t, err)
			assert.Equal(t, ErrMsgAnalyze, s.Snapshot().Error)
			assert.Nil(t, s.Snapshot().Analysis)
		})
	}
}

func TestStore_Analyze_FailureKeepsPreviousAnalysis(t *testing.T) {
	analyzer := &fakeAnalyzer{analysis: &models.CVAnalysis{Score: 50, Categories: []string{"Design"}}}
	s := createTestStore(t, analyzer, nil)
	ctx := context.Background()

	_, err := s.Analyze(ctx, "https://files.test/a.pdf")
	require.NoError(t, err)

	analyzer.err = errors.New("connection reset")
	_, err = s.Analyze(ctx, "https://files.test/a.pdf")
	require.Error(t, err)

	snap := s.Snapshot()
	require.NotNil(t, snap.Analysis)
	assert.InDelta(t, 50, snap.Analysis.Score, 1e-9)
	assert.Equal(t, ErrMsgAnalyze, snap.Error)
}

func TestStore_Analyze_RequiresURL(t *testing.T) {
	s := createTestStore(t, &fakeAnalyzer{}, nil)
	_, err := s.Analyze(context.Background(), "")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestStore_Analyze_LoadingFlag(t *testing.T) {
	analyzer := &fakeAnalyzer{
		analysis: &models.CVAnalysis{Score: 10},
		release:  make(chan struct{}),
		started:  make(chan struct{}, 1),
	}
	s := createTestStore(t, analyzer, nil)

	done := make(chan error, 1)
	go func() {
		_, err := s.Analyze(context.Background(), "https://files.test/a.pdf")
		done <- err
	}()

	<-analyzer.started
	assert.True(t, s.Snapshot().Loading)
	close(analyzer.release)
	require.NoError(t, <-done)
	assert.False(t, s.Snapshot().Loading)
}

// ==========================
// Restore and navigation
// ==========================

func TestStore_Restore(t *testing.T) {
	st, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, st.Put(context.Background(), StorageKey, []byte(analysisBody)))

	s := createTestStore(t, &fakeAnalyzer{}, st)
	require.NoError(t, s.Restore(context.Background()))

	snap := s.Snapshot()
	require.NotNil(t, snap.Analysis)
	assert.Equal(t, []string{"Go", "React"}, snap.Analysis.Skills)
	assert.Equal(t, 91, snap.Analysis.Recommendations[0].MatchScore)
}

func TestStore_Restore_IgnoresInvalidRecord(t *testing.T) {
	st, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, st.Put(context.Background(), StorageKey, []byte(`{"score": 140, "recommendations": []}`)))

	s := createTestStore(t, &fakeAnalyzer{}, st)
	require.NoError(t, s.Restore(context.Background()))
	assert.Nil(t, s.Snapshot().Analysis)
}

func TestStore_ViewMatchingJobs(t *testing.T) {
	analysis, err := backend.ParseAnalysis([]byte(analysisBody), "linkedin")
	require.NoError(t, err)
	s := createTestStore(t, &fakeAnalyzer{analysis: analysis}, nil)

	_, err = s.ViewMatchingJobs()
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	_, err = s.Analyze(context.Background(), "https://files.test/cv.pdf")
	require.NoError(t, err)

	nav, err := s.ViewMatchingJobs()
	require.NoError(t, err)
	assert.Equal(t, []string{"Engineering"}, nav.Categories)
	assert.Equal(t, []string{"Go", "React"}, nav.Skills)
	assert.Equal(t, []string{"5 years backend"}, nav.Experience)
	assert.InDelta(t, 0.6, nav.MatchThreshold, 1e-9)
	assert.Equal(t, []string{"10", "11"}, nav.RecommendedJobIDs)

	data, err := json.Marshal(nav)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"cvCategories": ["Engineering"],
		"cvSkills": ["Go", "React"],
		"cvExperience": ["5 years backend"],
		"matchThreshold": 0.6,
		"recommendations": ["10", "11"]
	}`, string(data))
}

func TestStore_SubscribeSeesLoadingThenResult(t *testing.T) {
	s := createTestStore(t, &fakeAnalyzer{analysis: &models.CVAnalysis{Score: 42}}, nil)
	var got []Snapshot
	s.Subscribe(func(snap Snapshot) { got = append(got, snap) })

	_, err := s.Analyze(context.Background(), "https://files.test/cv.pdf")
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.True(t, got[0].Loading)
	assert.False(t, got[1].Loading)
	assert.InDelta(t, 42, got[1].Analysis.Score, 1e-9)
}
