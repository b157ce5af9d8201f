// internal/models/cv.go
package models

// CVAnalysis is the result of the external CV analysis, with recommendation
// scores already scaled to 0-100.
type CVAnalysis struct {
	Score           float64     `json:"score"`
	Categories      []string    `json:"categories"`
	Skills          []string    `json:"skills"`
	Experience      []string    `json:"experience"`
	Improvements    []string    `json:"improvements"`
	MatchedJobs     int         `json:"matchedJobs"`
	Recommendations []RankedJob `json:"recommendations"`
}

// MatchNavigation is handed to the job listing view by "view matching jobs".
type MatchNavigation struct {
	Categories        []string `json:"cvCategories"`
	Skills            []string `json:"cvSkills"`
	Experience        []string `json:"cvExperience"`
	MatchThreshold    float64  `json:"matchThreshold"`
	RecommendedJobIDs []string `json:"recommendations"`
}
