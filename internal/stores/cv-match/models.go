// internal/stores/cv-match/models.go
package cvmatch

import (
	"context"
	"encoding/json"

	"jobportal/internal/models"
)

// StorageKey names the persisted analysis record.
const StorageKey = "cv-analysis"

// ErrMsgAnalyze is the error flag value when analysis fails without a
// service-supplied message.
const ErrMsgAnalyze = "Failed to analyze CV"

// Snapshot is an immutable copy of the store state.
type Snapshot struct {
	Analysis *models.CVAnalysis `json:"analysis,omitempty"`
	Loading  bool               `json:"loading"`
	Error    string             `json:"error,omitempty"`
}

// Analyzer submits an uploaded CV for analysis. The raw response is returned
// alongside the parsed result.
type Analyzer interface {
	AnalyzeCV(ctx context.Context, cvURL string) (*models.CVAnalysis, json.RawMessage, error)
}
