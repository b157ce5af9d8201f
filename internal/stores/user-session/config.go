// internal/stores/user-session/config.go
package usersession

import (
	"time"

	"jobportal/internal/common/config"
)

type Config struct {
	Timeout           time.Duration
	NotifyLogout      bool
	MaxUploadBytes    int64
	AllowedExtensions []string
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{
		Timeout:           15 * time.Second,
		NotifyLogout:      true,
		MaxUploadBytes:    5 * 1024 * 1024,
		AllowedExtensions: []string{".pdf", ".doc", ".docx"},
	}
	if cfg == nil {
		return c
	}
	if d := cfg.Backend.RequestTimeout(); d > 0 {
		c.Timeout = d
	}
	c.NotifyLogout = cfg.Auth.NotifyLogout
	if cfg.CV.MaxUploadBytes > 0 {
		c.MaxUploadBytes = cfg.CV.MaxUploadBytes
	}
	if len(cfg.CV.AllowedExtensions) > 0 {
		c.AllowedExtensions = cfg.CV.AllowedExtensions
	}
	return c
}
