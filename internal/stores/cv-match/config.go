// internal/stores/cv-match/config.go
package cvmatch

import (
	"time"

	"jobportal/internal/common/config"
)

type Config struct {
	Timeout        time.Duration
	MatchThreshold float64
	DefaultOrigin  string
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{
		Timeout:        15 * time.Second,
		MatchThreshold: 0.6,
		DefaultOrigin:  "linkedin",
	}
	if cfg == nil {
		return c
	}
	if d := cfg.Backend.RequestTimeout(); d > 0 {
		c.Timeout = d
	}
	c.MatchThreshold = cfg.CV.MatchThreshold
	if cfg.Jobs.DefaultOrigin != "" {
		c.DefaultOrigin = cfg.Jobs.DefaultOrigin
	}
	return c
}
