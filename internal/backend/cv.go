// internal/backend/cv.go
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	apperrors "jobportal/internal/common/errors"
	apphttp "jobportal/internal/common/http"
	"jobportal/internal/common/validation"
	"jobportal/internal/models"
)

var (
	errMissingUser  = errors.New("response has no user")
	errMissingCVURL = errors.New("response has no cvUrl")
)

type uploadResponse struct {
	CVURL string `json:"cvUrl"`
}

type analyzeRequest struct {
	CVURL string `json:"cvUrl"`
}

type analysisWire struct {
	Score           float64  `json:"score"`
	Categories      []string `json:"categories"`
	Skills          []string `json:"skills"`
	Experience      []string `json:"experience"`
	Improvements    []string `json:"improvements"`
	MatchedJobs     int      `json:"matchedJobs"`
	Recommendations []Record `json:"recommendations"`
}

// UploadCV sends the file as multipart field "cv" and returns the stored URL.
// Every failure is reported as UPLOAD_FAILED.
func (c *Client) UploadCV(ctx context.Context, filename string, r io.Reader) (string, error) {
	var resp uploadResponse
	if err := c.http.PostMultipart(ctx, PathUploadCV, cvFormField, filename, r, &resp); err != nil {
		return "", apperrors.NewUploadFailedError(err)
	}
	if resp.CVURL == "" {
		return "", apperrors.NewUploadFailedError(errMissingCVURL)
	}
	return resp.CVURL, nil
}

// AnalyzeCV requests the analysis of an uploaded CV. The raw response is
// returned alongside the parsed result so it can be persisted as received.
func (c *Client) AnalyzeCV(ctx context.Context, cvURL string) (*models.CVAnalysis, json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.http.PostJSON(ctx, PathAnalyzeCV, analyzeRequest{CVURL: cvURL}, &raw); err != nil {
		return nil, nil, apphttp.WithFallbackMessage(err, "Failed to analyze CV")
	}
	analysis, err := ParseAnalysis(raw, c.defaultOrigin)
	if err != nil {
		return nil, nil, err
	}
	return analysis, raw, nil
}

// ParseAnalysis validates and converts a raw analysis document, scaling
// recommendation scores to 0-100.
func ParseAnalysis(raw []byte, defaultOrigin string) (*models.CVAnalysis, error) {
	if err := validation.ValidateCVAnalysis(raw); err != nil {
		return nil, apperrors.NewDecodeError(PathAnalyzeCV, err)
	}
	var w analysisWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, apperrors.NewDecodeError(PathAnalyzeCV, err)
	}

	ranked, _ := TransformRanked(w.Recommendations, defaultOrigin)
	return &models.CVAnalysis{
		Score:           w.Score,
		Categories:      nonNil(w.Categories),
		Skills:          nonNil(w.Skills),
		Experience:      nonNil(w.Experience),
		Improvements:    nonNil(w.Improvements),
		MatchedJobs:     w.MatchedJobs,
		Recommendations: ranked,
	}, nil
}
