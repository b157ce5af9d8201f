package backend

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) []Record {
	t.Helper()
	records, err := decodeRecords(json.RawMessage(raw))
	require.NoError(t, err)
	return records
}

func TestTransform_FillsDefaults(t *testing.T) {
	records := decode(t, `[{"id": 42, "payload": {
		"title": "Backend Engineer",
		"company": "Acme",
		"location": "Colombo",
		"posted_date": "2024-05-01",
		"job_url": "https://jobs.test/42",
		"listing_id": "urn:li:jobPosting:3901"
	}}]`)

	jobs, dropped := TransformAll(records, "linkedin")
	require.Len(t, jobs, 1)
	assert.Zero(t, dropped)

	job := jobs[0]
	assert.Equal(t, "3901", job.ID)
	assert.Equal(t, "Backend Engineer", job.Title)
	assert.Equal(t, "Not disclosed", job.Salary)
	assert.Equal(t, "Full-time", job.Type)
	assert.Equal(t, "Position at Acme", job.Description)
	assert.Equal(t, []string{}, job.Requirements)
	assert.Equal(t, "https://placehold.co/100", job.Logo)
	assert.Equal(t, "Not specified", job.Category)
	assert.Equal(t, "Not specified", job.Experience)
	assert.Equal(t, []string{}, job.Skills)
	assert.Equal(t, "https://jobs.test/42", job.JobURL)
	assert.Equal(t, "2024-05-01", job.PostedDate)
	assert.Equal(t, "linkedin", job.Origin)
}

func TestTransform_KeepsSuppliedFields(t *testing.T) {
	records := decode(t, `{"jobs": [{
		"listing_id": "777",
		"title": "Intern",
		"company": "Beta",
		"type": "Internship",
		"description": "Learn things",
		"skills": "Go, SQL",
		"source": "topjobs"
	}]}`)

	jobs, _ := TransformAll(records, "linkedin")
	require.Len(t, jobs, 1)
	assert.Equal(t, "777", jobs[0].ID)
	assert.Equal(t, "Internship", jobs[0].Type)
	assert.Equal(t, "Learn things", jobs[0].Description)
	assert.Equal(t, []string{"Go", "SQL"}, jobs[0].Skills)
	assert.Equal(t, "topjobs", jobs[0].Origin)
}

func TestTransform_IDFallsBackToPointID(t *testing.T) {
	records := decode(t, `{"data": [{"id": "abc", "payload": {"title": "X"}}, {"id": 12.0, "payload": {"title": "Y"}}]}`)
	jobs, _ := TransformAll(records, "")
	require.Len(t, jobs, 2)
	assert.Equal(t, "abc", jobs[0].ID)
	assert.Equal(t, "12", jobs[1].ID)
}

func TestTransformAll_DropsDuplicatesAndMissingIDs(t *testing.T) {
	records := decode(t, `[
		{"id": 1, "payload": {"title": "first"}},
		{"payload": {"title": "no id"}},
		{"id": 1, "payload": {"title": "duplicate"}},
		{"id": 2, "payload": {"title": "second"}}
	]`)

	jobs, dropped := TransformAll(records, "")
	require.Len(t, jobs, 2)
	assert.Equal(t, 2, dropped)
	assert.Equal(t, "first", jobs[0].Title)
	assert.Equal(t, "second", jobs[1].Title)
}

func TestTransformRanked_ScalesScores(t *testing.T) {
	records := decode(t, `[
		{"id": 1, "score": 0.876, "payload": {"title": "a"}},
		{"id": 2, "score": 0.5, "payload": {"title": "b"}},
		{"id": 3, "score": 0.004, "payload": {"title": "c"}}
	]`)

	ranked, _ := TransformRanked(records, "")
	require.Len(t, ranked, 3)
	assert.Equal(t, 88, ranked[0].MatchScore)
	assert.Equal(t, 50, ranked[1].MatchScore)
	assert.Equal(t, 0, ranked[2].MatchScore)
}

func TestScaleScore_Clamps(t *testing.T) {
	assert.Equal(t, 100, ScaleScore(1.7))
	assert.Equal(t, 0, ScaleScore(-0.2))
	assert.Equal(t, 60, ScaleScore(0.6))
}

func TestDecodeRecords_RejectsUnknownEnvelope(t *testing.T) {
	_, err := decodeRecords(json.RawMessage(`{"items": []}`))
	assert.Error(t, err)

	records, err := decodeRecords(json.RawMessage(`null`))
	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestRecordFromSource(t *testing.T) {
	r, err := RecordFromSource("es-1", 3.2, json.RawMessage(`{"title": "Go Dev", "company": "Acme"}`))
	require.NoError(t, err)
	assert.Equal(t, "es-1", r.ID)
	assert.True(t, r.HasScore)
	assert.Equal(t, "Go Dev", r.Payload.Title)
}
