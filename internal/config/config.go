package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the auction media service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"auction-media"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"MEDIA_API_PORT" envDefault:"8290"`
	LogLevel        string        `env:"MEDIA_LOG_LEVEL" envDefault:"info"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Database
	DatabaseDSN string `env:"DB_POSTGRESQL_DSN,notEmpty"`

	// Database Connection Pool
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// Storage Backend Selection
	StorageBackend string `env:"MEDIA_STORAGE_BACKEND" envDefault:"drive"` // Options: "drive", "s3" or "local"

	// Drive Storage Configuration (remote object store HTTP API)
	DriveEndpoint string        `env:"MEDIA_DRIVE_ENDPOINT" envDefault:"http://localhost:9480"`
	DriveUserID   string        `env:"MEDIA_DRIVE_USER_ID"`
	DriveTimeout  time.Duration `env:"MEDIA_DRIVE_TIMEOUT" envDefault:"60s"`

	// Local Storage Configuration
	LocalStoragePath string `env:"MEDIA_LOCAL_STORAGE_PATH"`

	// S3 Storage Configuration
	S3Endpoint     string `env:"MEDIA_S3_ENDPOINT"`
	S3Region       string `env:"MEDIA_S3_REGION" envDefault:"us-west-2"`
	S3Bucket       string `env:"MEDIA_S3_BUCKET"`
	S3AccessKeyID  string `env:"MEDIA_S3_ACCESS_KEY_ID"`
	S3SecretKey    string `env:"MEDIA_S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle bool   `env:"MEDIA_S3_USE_PATH_STYLE" envDefault:"true"`
	S3Prefix       string `env:"MEDIA_S3_PREFIX" envDefault:"auction-media/"`

	// CDN
	CDNBaseURL string `env:"MEDIA_CDN_BASE_URL" envDefault:"https://cdn.heavybid.example"`

	// Upload Configuration
	UploadBatchSize int   `env:"MEDIA_UPLOAD_BATCH_SIZE" envDefault:"5"`
	MaxUploadBytes  int64 `env:"MEDIA_MAX_UPLOAD_BYTES" envDefault:"209715200"`

	// Media Lifecycle
	// OriginMarker scopes reconciliation and purge to files uploaded by this
	// application; rows from the external drive-picker flow are never touched.
	OriginMarker     string        `env:"MEDIA_ORIGIN_MARKER" envDefault:"app"`
	GraceWindowDays  int           `env:"MEDIA_GRACE_WINDOW_DAYS" envDefault:"30"`
	PurgeSchedule    string        `env:"MEDIA_PURGE_SCHEDULE" envDefault:"0 0 3 * * *"`
	PurgeEnabled     bool          `env:"MEDIA_PURGE_ENABLED" envDefault:"true"`
	JobPollAttempts  int           `env:"MEDIA_JOB_POLL_ATTEMPTS" envDefault:"10"`
	JobPollBaseDelay time.Duration `env:"MEDIA_JOB_POLL_BASE_DELAY" envDefault:"200ms"`
	JobPollMaxDelay  time.Duration `env:"MEDIA_JOB_POLL_MAX_DELAY" envDefault:"2s"`

	// Job Status Cache (optional)
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	JobCacheTTL   time.Duration `env:"MEDIA_JOB_CACHE_TTL" envDefault:"5s"`

	// Authentication
	AuthEnabled bool   `env:"AUTH_ENABLED" envDefault:"false"`
	AuthIssuer  string `env:"AUTH_ISSUER"`
	AuthJWKSURL string `env:"AUTH_JWKS_URL"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.DriveEndpoint = strings.TrimRight(strings.TrimSpace(cfg.DriveEndpoint), "/")
	cfg.S3Bucket = strings.TrimSpace(cfg.S3Bucket)
	cfg.S3AccessKeyID = strings.TrimSpace(cfg.S3AccessKeyID)
	cfg.S3SecretKey = strings.TrimSpace(cfg.S3SecretKey)
	cfg.S3Endpoint = strings.TrimSpace(cfg.S3Endpoint)
	cfg.CDNBaseURL = strings.TrimRight(strings.TrimSpace(cfg.CDNBaseURL), "/")

	if cfg.UploadBatchSize <= 0 {
		cfg.UploadBatchSize = 5
	}
	if cfg.GraceWindowDays <= 0 {
		cfg.GraceWindowDays = 30
	}
	if strings.TrimSpace(cfg.OriginMarker) == "" {
		return nil, fmt.Errorf("MEDIA_ORIGIN_MARKER must not be empty")
	}
	if cfg.AuthEnabled {
		if strings.TrimSpace(cfg.AuthIssuer) == "" {
			return nil, fmt.Errorf("AUTH_ISSUER is required when AUTH_ENABLED is true")
		}
		if strings.TrimSpace(cfg.AuthJWKSURL) == "" {
			return nil, fmt.Errorf("AUTH_JWKS_URL is required when AUTH_ENABLED is true")
		}
	}
	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// GraceWindow returns the detach grace window as a duration.
func (c *Config) GraceWindow() time.Duration {
	return time.Duration(c.GraceWindowDays) * 24 * time.Hour
}

// IsLocalStorage returns true if local storage backend is configured.
func (c *Config) IsLocalStorage() bool {
	return strings.ToLower(strings.TrimSpace(c.StorageBackend)) == "local"
}

// IsS3Storage returns true if the S3 storage backend is configured.
func (c *Config) IsS3Storage() bool {
	return strings.ToLower(strings.TrimSpace(c.StorageBackend)) == "s3"
}

// IsDriveStorage returns true if the remote drive backend is configured.
// Drive is the default when nothing is set.
func (c *Config) IsDriveStorage() bool {
	backend := strings.ToLower(strings.TrimSpace(c.StorageBackend))
	return backend == "" || backend == "drive"
}
