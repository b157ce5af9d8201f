// internal/common/config/loader.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "JOBPORTAL"

// Load reads configs/config.yaml (plus config.<env>.yaml) from the usual
// locations, applies env overrides and validates the result. A missing config
// file is not an error; defaults and the environment are enough to run.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "jobportal"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	applyDefaults(v)
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	normalize(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// applyDefaults registers every key so env overrides reach Unmarshal.
func applyDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "jobportal")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.environment", "development")

	v.SetDefault("backend.base_url", "http://localhost:5000")
	v.SetDefault("backend.timeout", 15000)

	v.SetDefault("auth.mode", "remote")
	v.SetDefault("auth.notify_logout", true)

	v.SetDefault("jobs.search_mode", "local")
	v.SetDefault("jobs.featured_count", 4)
	v.SetDefault("jobs.default_origin", "linkedin")

	v.SetDefault("cv.max_upload_bytes", 5*1024*1024)
	v.SetDefault("cv.allowed_extensions", []string{".pdf", ".doc", ".docx"})
	v.SetDefault("cv.match_threshold", 0.6)

	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.dir", "")
	v.SetDefault("storage.key_prefix", "jobportal:")
	v.SetDefault("storage.table", "client_records")

	v.SetDefault("database.postgres.host", "")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.database", "")
	v.SetDefault("database.postgres.user", "")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.max_connections", 5)
	v.SetDefault("database.postgres.max_idle", 2)
	v.SetDefault("database.postgres.sslmode", "disable")

	v.SetDefault("database.elasticsearch.addresses", []string{})
	v.SetDefault("database.elasticsearch.username", "")
	v.SetDefault("database.elasticsearch.password", "")
	v.SetDefault("database.elasticsearch.index", "jobs")
	v.SetDefault("database.elasticsearch.size", 20)

	v.SetDefault("database.redis.address", "")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.address", ":9464")
}

func normalize(cfg *Config) {
	cfg.Backend.BaseURL = strings.TrimSuffix(strings.TrimSpace(cfg.Backend.BaseURL), "/")
	cfg.Auth.Mode = strings.ToLower(strings.TrimSpace(cfg.Auth.Mode))
	cfg.Jobs.SearchMode = strings.ToLower(strings.TrimSpace(cfg.Jobs.SearchMode))
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))

	if cfg.Storage.Backend == "file" && cfg.Storage.Dir == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			cfg.Storage.Dir = filepath.Join(dir, "jobportal")
		} else {
			cfg.Storage.Dir = ".jobportal"
		}
	}
	for i, ext := range cfg.CV.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.CV.AllowedExtensions[i] = ext
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	u, err := url.Parse(cfg.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.base_url must be an absolute URL, got %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive")
	}

	switch cfg.Auth.Mode {
	case "remote", "mock":
	default:
		return fmt.Errorf("auth.mode must be remote or mock, got %q", cfg.Auth.Mode)
	}

	switch cfg.Jobs.SearchMode {
	case "local", "remote":
	case "elasticsearch":
		if len(cfg.Database.Elasticsearch.Addresses) == 0 {
			return fmt.Errorf("database.elasticsearch.addresses is required for elasticsearch search")
		}
		if cfg.Database.Elasticsearch.Index == "" {
			return fmt.Errorf("database.elasticsearch.index is required for elasticsearch search")
		}
	default:
		return fmt.Errorf("jobs.search_mode must be local, remote or elasticsearch, got %q", cfg.Jobs.SearchMode)
	}
	if cfg.Jobs.FeaturedCount < 0 {
		return fmt.Errorf("jobs.featured_count must not be negative")
	}

	switch cfg.Storage.Backend {
	case "file":
	case "redis":
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required for redis storage")
		}
	case "postgres":
		if cfg.Database.Postgres.Host == "" || cfg.Database.Postgres.Database == "" || cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres host, database and user are required for postgres storage")
		}
	default:
		return fmt.Errorf("storage.backend must be file, redis or postgres, got %q", cfg.Storage.Backend)
	}

	if cfg.CV.MaxUploadBytes <= 0 {
		return fmt.Errorf("cv.max_upload_bytes must be positive")
	}
	if cfg.CV.MatchThreshold < 0 || cfg.CV.MatchThreshold > 1 {
		return fmt.Errorf("cv.match_threshold must be within [0,1]")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
