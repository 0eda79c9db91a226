package config

import (
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // Device id taken from the request, no token check (default)
	AuthModeToken AuthMode = "token" // Registered devices with bcrypt-hashed bearer tokens
)

type (
	Config struct {
		HTTP
		Global
		Database
		Index
		Analyzer
		Tasks
		Scheduler
		Audit
		Auth
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
		ReadTimeout              time.Duration
		WriteTimeout             time.Duration
	}
	Database struct {
		Path string
	}
	Index struct {
		Path      string // JSON snapshot of the similarity index
		Dimension int
	}
	Analyzer struct {
		BaseURL     string // OpenAI-compatible endpoint
		APIKey      string // Empty disables analysis; entries get the fallback record
		Model       string
		Temperature float64
		Timeout     time.Duration
		MinInterval time.Duration
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Scheduler struct {
		Enabled              bool
		IndexRebuildSchedule string // Cron format or descriptor, e.g. "@daily"
		AuditCleanupSchedule string
	}
	Audit struct {
		Dir           string
		RetentionDays int  // Days to keep audit events (default: 30)
		SyncEnvelopes bool // Dump every sync request/response pair to Dir
	}
	Auth struct {
		Mode       AuthMode
		BcryptCost int

		// Failed token attempts per device before a temporary lockout
		MaxFailedAttempts int
		RateLimitWindow   time.Duration
		LockoutDuration   time.Duration
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("http_port", 8000)
	v.SetDefault("http_host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("global_read_timeout", "30s")
	v.SetDefault("global_write_timeout", "60s")
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("index_path", DefaultIndexPath)
	v.SetDefault("index_dimension", DefaultEmbeddingDimension)

	v.SetDefault("analyzer_base_url", DefaultAnalyzerBaseURL)
	v.SetDefault("analyzer_api_key", "")
	v.SetDefault("analyzer_model", DefaultAnalyzerModel)
	v.SetDefault("analyzer_temperature", 0.7)
	v.SetDefault("analyzer_timeout", "30s")
	v.SetDefault("analyzer_min_interval", "200ms")

	v.SetDefault("tasks_enabled", true)
	v.SetDefault("tasks_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	v.SetDefault("scheduler_enabled", true)
	v.SetDefault("scheduler_index_rebuild", "@daily")
	v.SetDefault("scheduler_audit_cleanup", "@weekly")

	v.SetDefault("audit_dir", "./audit")
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_sync_envelopes", false)

	v.SetDefault("auth_mode", "none")
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_max_failed_attempts", 5)
	v.SetDefault("auth_rate_limit_window", "15m")
	v.SetDefault("auth_lockout_duration", "30m")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("HTTP_PORT"),
			Host: v.GetString("HTTP_HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
			ReadTimeout:              v.GetDuration("GLOBAL_READ_TIMEOUT"),
			WriteTimeout:             v.GetDuration("GLOBAL_WRITE_TIMEOUT"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Index: Index{
			Path:      v.GetString("INDEX_PATH"),
			Dimension: v.GetInt("INDEX_DIMENSION"),
		},
		Analyzer: Analyzer{
			BaseURL:     v.GetString("ANALYZER_BASE_URL"),
			APIKey:      v.GetString("ANALYZER_API_KEY"),
			Model:       v.GetString("ANALYZER_MODEL"),
			Temperature: v.GetFloat64("ANALYZER_TEMPERATURE"),
			Timeout:     v.GetDuration("ANALYZER_TIMEOUT"),
			MinInterval: v.GetDuration("ANALYZER_MIN_INTERVAL"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASKS_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Scheduler: Scheduler{
			Enabled:              v.GetBool("SCHEDULER_ENABLED"),
			IndexRebuildSchedule: v.GetString("SCHEDULER_INDEX_REBUILD"),
			AuditCleanupSchedule: v.GetString("SCHEDULER_AUDIT_CLEANUP"),
		},
		Audit: Audit{
			Dir:           v.GetString("AUDIT_DIR"),
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
			SyncEnvelopes: v.GetBool("AUDIT_SYNC_ENVELOPES"),
		},
		Auth: Auth{
			Mode:              AuthMode(v.GetString("AUTH_MODE")),
			BcryptCost:        v.GetInt("AUTH_BCRYPT_COST"),
			MaxFailedAttempts: v.GetInt("AUTH_MAX_FAILED_ATTEMPTS"),
			RateLimitWindow:   v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:   v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
	}
}
