package database

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal/internal/common/config"
)

func newFakeCluster(t *testing.T, handler http.HandlerFunc) *ElasticsearchClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := NewElasticsearch(config.ElasticsearchConfig{
		Addresses: []string{srv.URL},
		Index:     "jobs",
		Size:      5,
	})
	require.NoError(t, err)
	return c
}

func TestSearchJobs_ReturnsHitsInOrder(t *testing.T) {
	c := newFakeCluster(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jobs/_search", r.URL.Path)

		raw, _ := io.ReadAll(r.Body)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.EqualValues(t, 5, body["size"])
		mm := body["query"].(map[string]interface{})["multi_match"].(map[string]interface{})
		assert.Equal(t, "golang", mm["query"])

		_, _ = io.WriteString(w, `{"hits":{"hits":[
			{"_id":"a","_score":2.5,"_source":{"title":"Go Engineer"}},
			{"_id":"b","_score":1.1,"_source":{"title":"Backend Dev"}}
		]}}`)
	})

	hits, err := c.SearchJobs(context.Background(), "golang")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].ID)
	assert.InDelta(t, 2.5, hits[0].Score, 1e-9)
	assert.JSONEq(t, `{"title":"Go Engineer"}`, string(hits[0].Source))
	assert.Equal(t, "b", hits[1].ID)
}

func TestSearchJobs_ClusterError(t *testing.T) {
	c := newFakeCluster(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"type":"index_not_found_exception"}}`)
	})

	_, err := c.SearchJobs(context.Background(), "golang")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestNewElasticsearch_ClampsSize(t *testing.T) {
	c, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{"http://localhost:9200"}, Size: 500})
	require.NoError(t, err)
	assert.Equal(t, 20, c.size)
}
