package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Approval ApprovalConfig `yaml:"approval"`
	Locks    LockConfig     `yaml:"locks"`
	Email    EmailConfig    `yaml:"email"`
	Blob     BlobConfig     `yaml:"blob"`
	Realtime RealtimeConfig `yaml:"realtime"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// ApprovalConfig holds approval workflow settings.
type ApprovalConfig struct {
	// LinkSecret signs participant share-link tokens (HS256).
	LinkSecret string `yaml:"link_secret" env:"APPROVAL_LINK_SECRET" env-required:"true"`
	// LinkTTL bounds how long an emailed approval link stays valid.
	LinkTTL time.Duration `yaml:"link_ttl" env:"APPROVAL_LINK_TTL" env-default:"336h"`
	// RequestTTL sets expires_at on new requests; zero disables expiry.
	RequestTTL time.Duration `yaml:"request_ttl" env:"APPROVAL_REQUEST_TTL" env-default:"0"`
	// BaseURL is the public URL prefix for approval links in emails.
	BaseURL string `yaml:"base_url" env:"APPROVAL_BASE_URL" env-default:"http://localhost:8080"`
	// MaxParticipantsPerTier caps reviewer fan-out at initiation time.
	MaxParticipantsPerTier int `yaml:"max_participants_per_tier" env:"APPROVAL_MAX_PARTICIPANTS_PER_TIER" env-default:"20"`
}

// LockConfig holds element lock settings.
type LockConfig struct {
	DefaultTTL time.Duration `yaml:"default_ttl" env:"LOCKS_DEFAULT_TTL" env-default:"120s"`
	MaxTTL     time.Duration `yaml:"max_ttl"     env:"LOCKS_MAX_TTL"     env-default:"600s"`
}

// EmailConfig holds SMTP settings for the notification dispatcher.
// An empty Host disables email delivery (transitions still commit).
type EmailConfig struct {
	Host     string `yaml:"host"     env:"EMAIL_SMTP_HOST"`
	Port     int    `yaml:"port"     env:"EMAIL_SMTP_PORT" env-default:"587"`
	Username string `yaml:"username" env:"EMAIL_SMTP_USERNAME"`
	Password string `yaml:"password" env:"EMAIL_SMTP_PASSWORD"`
	From     string `yaml:"from"     env:"EMAIL_FROM" env-default:"approvals@adproof.local"`
}

// BlobConfig holds creative image storage settings.
type BlobConfig struct {
	Dir     string `yaml:"dir"      env:"BLOB_DIR"      env-default:"./data/blobs"`
	BaseURL string `yaml:"base_url" env:"BLOB_BASE_URL" env-default:"http://localhost:8080/media"`
	// MaxUploadBytes caps creative image uploads (default 10 MiB).
	MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"BLOB_MAX_UPLOAD_BYTES" env-default:"10485760"`
}

// RealtimeConfig holds websocket push settings. The push channel is optional:
// the approval engine never depends on it.
type RealtimeConfig struct {
	Enabled bool `yaml:"enabled" env:"REALTIME_ENABLED" env-default:"false"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}
