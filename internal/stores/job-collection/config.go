// internal/stores/job-collection/config.go
package jobcollection

import (
	"time"

	"jobportal/internal/common/config"
)

type Config struct {
	Timeout       time.Duration
	FeaturedCount int
	SearchMode    string
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{
		Timeout:       15 * time.Second,
		FeaturedCount: 4,
		SearchMode:    SearchModeLocal,
	}
	if cfg == nil {
		return c
	}
	if d := cfg.Backend.RequestTimeout(); d > 0 {
		c.Timeout = d
	}
	c.FeaturedCount = cfg.Jobs.FeaturedCount
	if cfg.Jobs.SearchMode != "" {
		c.SearchMode = cfg.Jobs.SearchMode
	}
	return c
}
