// internal/backend/client.go
package backend

import (
	apphttp "jobportal/internal/common/http"
	"jobportal/internal/common/logger"
)

// Endpoint paths on the job/auth/CV backend.
const (
	PathJobs       = "/api/jobs"
	PathSearchJobs = "/api/search-jobs"
	PathAnalyzeCV  = "/api/analyze-cv"
	PathUploadCV   = "/api/upload-cv"
	PathLogin      = "/api/auth/login"
	PathSignup     = "/api/auth/signup"
	PathLogout     = "/api/auth/logout"

	cvFormField = "cv"
)

// Client makes typed calls against the backend. It holds no state besides
// its collaborators and is safe for concurrent use.
type Client struct {
	http          *apphttp.Client
	logger        logger.Logger
	defaultOrigin string
}

func NewClient(hc *apphttp.Client, log logger.Logger, defaultOrigin string) *Client {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Client{http: hc, logger: log, defaultOrigin: defaultOrigin}
}
