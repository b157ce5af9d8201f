package backend

import (
	"bytes"
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

	apperrors "jobportal/internal/common/errors"
	apphttp "jobportal/internal/common/http"
	"jobportal/internal/common/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	hc := apphttp.NewClient(srv.URL, 2*time.Second)
	return NewClient(hc, logger.NewTestLogger(t), "linkedin")
}

func TestFetchJobs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathJobs, r.URL.Path)
		_, _ = io.WriteString(w, `[
			{"id": 1, "payload": {"title": "A", "company": "X", "listing_id": "urn:li:jobPosting:10"}},
			{"id": 2, "payload": {"title": "B", "company": "Y", "listing_id": "urn:li:jobPosting:11"}}
		]`)
	})

	jobs, err := c.FetchJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "10", jobs[0].ID)
	assert.Equal(t, "11", jobs[1].ID)
}

func TestFetchJobs_ServiceError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error": "qdrant unavailable"}`)
	})

	_, err := c.FetchJobs(context.Background())
	require.Error(t, err)
	assert.Equal(t, "qdrant unavailable", apperrors.MessageOf(err))
}

func TestFetchJobs_EmptyErrorBodyGetsFallback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.FetchJobs(context.Background())
	assert.Equal(t, "Failed to fetch jobs", apperrors.MessageOf(err))
}

func TestSearchJobs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathSearchJobs, r.URL.Path)
		var req SearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "react", req.Query)
		assert.Equal(t, []string{"TypeScript"}, req.Skills)
		_, _ = io.WriteString(w, `[{"id": 5, "score": 0.93, "payload": {"title": "Frontend", "company": "Z"}}]`)
	})

	ranked, err := c.SearchJobs(context.Background(), SearchRequest{Query: "react", Skills: []string{"TypeScript"}})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "5", ranked[0].ID)
	assert.Equal(t, 93, ranked[0].MatchScore)
}

func TestLogin_SurfacesBackendMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error": "Invalid credentials"}`)
	})

	_, err := c.Login(context.Background(), "a@b.test", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", apperrors.MessageOf(err))
}

func TestLogin_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathLogin, r.URL.Path)
		_, _ = io.WriteString(w, `{"user": {"id": "u-7", "name": "Ann", "email": "ann@b.test", "isAdmin": true}}`)
	})

	u, err := c.Login(context.Background(), "ann@b.test", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u-7", u.ID)
	assert.True(t, u.IsAdmin)
	assert.Equal(t, []string{}, u.SavedJobs)
	assert.Equal(t, []string{}, u.AppliedJobs)
}

func TestSignup_MissingUserIsDecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})

	_, err := c.Signup(context.Background(), "Ann", "ann@b.test", "pw")
	assert.Equal(t, apperrors.ErrCodeDecode, apperrors.CodeOf(err))
}

func TestUploadCV(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile(cvFormField)
		require.NoError(t, err)
		assert.Equal(t, "cv.pdf", header.Filename)
		_, _ = io.WriteString(w, `{"cvUrl": "https://files.test/cv.pdf"}`)
	})

	url, err := c.UploadCV(context.Background(), "cv.pdf", bytes.NewReader([]byte("%PDF")))
	require.NoError(t, err)
	assert.Equal(t, "https://files.test/cv.pdf", url)
}

func TestUploadCV_FailureIsUploadFailed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	})

	_, err := c.UploadCV(context.Background(), "cv.pdf", bytes.NewReader([]byte("%PDF")))
	assert.True(t, errors.Is(err, apperrors.ErrUploadFailed))
}

func TestAnalyzeCV(t *testing.T) {
	body := `{"categories": ["Engineering"], "skills": ["Go"], "experience": ["Senior"], "improvements": ["Add metrics"],
		"score": 81, "matchedJobs": 2,
		"recommendations": [
			{"id": 3, "score": 0.912, "payload": {"title": "Go Dev", "company": "Acme"}},
			{"id": 4, "score": 0.654, "payload": {"title": "SRE", "company": "Beta"}}
		]}`
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://files.test/cv.pdf", req["cvUrl"])
		_, _ = io.WriteString(w, body)
	})

	analysis, raw, err := c.AnalyzeCV(context.Background(), "https://files.test/cv.pdf")
	require.NoError(t, err)
	assert.JSONEq(t, body, string(raw))
	assert.InDelta(t, 81, analysis.Score, 1e-9)
	assert.Equal(t, 2, analysis.MatchedJobs)
	require.Len(t, analysis.Recommendations, 2)
	assert.Equal(t, 91, analysis.Recommendations[0].MatchScore)
	assert.Equal(t, 65, analysis.Recommendations[1].MatchScore)
	assert.Equal(t, "Go Dev", analysis.Recommendations[0].Title)
}

func TestAnalyzeCV_InvalidPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"score": "high"}`)
	})

	_, _, err := c.AnalyzeCV(context.Background(), "https://files.test/cv.pdf")
	assert.Equal(t, apperrors.ErrCodeDecode, apperrors.CodeOf(err))
}

func TestMockAuthenticator(t *testing.T) {
	var m MockAuthenticator
	ctx := context.Background()

	admin, err := m.Login(ctx, "admin@example.com", "x")
	require.NoError(t, err)
	assert.Equal(t, "1", admin.ID)
	assert.Equal(t, "John Doe", admin.Name)
	assert.True(t, admin.IsAdmin)

	user, err := m.Login(ctx, "someone@example.com", "x")
	require.NoError(t, err)
	assert.False(t, user.IsAdmin)

	signed, err := m.Signup(ctx, "Jane", "admin@example.com", "x")
	require.NoError(t, err)
	assert.Equal(t, "Jane", signed.Name)
	assert.False(t, signed.IsAdmin)
}
