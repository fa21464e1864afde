package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	SessionSecret string
	SessionTTL    time.Duration

	Timezone string
	Location *time.Location

	FileStore      string
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	FolderLinkBase string
	MaxUploadBytes int64

	RedisURL          string
	DashboardCooldown time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	AppURL       string

	CatalogFile         string
	EnforceUniqueClaims bool
}

// ParseFlags reads flags, falls back to environment variables and
// validates the result
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var allowDuplicates bool

	fs := flag.NewFlagSet("claim-ledger", flag.ContinueOnError)

	// Network and database
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Sessions (prefer env for the secret)
	fs.StringVar(&cfg.SessionSecret, "session-secret", "", "Session signing secret (prefer env)")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", 0, "Session lifetime")
	fs.StringVar(&cfg.Timezone, "tz", "", "Time zone for ledger timestamps")

	// Attachments
	fs.StringVar(&cfg.FileStore, "filestore", "", "Attachment store (s3 or memory)")
	fs.StringVar(&cfg.S3Bucket, "bucket", "", "S3 bucket for claim folders")
	fs.StringVar(&cfg.S3Region, "region", "", "S3 region")
	fs.StringVar(&cfg.S3Endpoint, "s3-endpoint", "", "S3 endpoint override (minio, localstack)")
	fs.StringVar(&cfg.FolderLinkBase, "folder-link-base", "", "Base URL for claim folder links")
	fs.Int64Var(&cfg.MaxUploadBytes, "max-upload", 0, "Maximum multipart request size in bytes")

	// Dashboard
	fs.StringVar(&cfg.RedisURL, "redis", "", "Redis URL for the dashboard cache")
	fs.DurationVar(&cfg.DashboardCooldown, "cooldown", 0, "Dashboard reload cooldown")

	// Mail
	fs.StringVar(&cfg.SMTPHost, "smtp-host", "", "SMTP host")
	fs.IntVar(&cfg.SMTPPort, "smtp-port", 0, "SMTP port")
	fs.StringVar(&cfg.SMTPUser, "smtp-user", "", "SMTP user")
	fs.StringVar(&cfg.MailFrom, "mail-from", "", "Sender address for notifications")
	fs.StringVar(&cfg.AppURL, "app-url", "", "Login URL included in welcome emails")

	fs.StringVar(&cfg.CatalogFile, "catalog", "", "YAML file overriding the status catalog")
	fs.BoolVar(&allowDuplicates, "allow-duplicate-claims", false, "Accept registration of an existing claim number")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	envString(&cfg.DatabaseType, "DATABASE_TYPE", "sqlite")
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	envString(&cfg.SessionSecret, "SESSION_SECRET", "")
	if cfg.SessionSecret == "" {
		return Config{}, errors.New("SESSION_SECRET required")
	}
	if len(cfg.SessionSecret) < 16 {
		return Config{}, errors.New("SESSION_SECRET must be at least 16 characters")
	}

	var err error
	if cfg.SessionTTL, err = envDuration(cfg.SessionTTL, "SESSION_TTL", 12*time.Hour); err != nil {
		return Config{}, err
	}

	envString(&cfg.Timezone, "TIMEZONE", "America/Mexico_City")
	cfg.Location, err = time.LoadLocation(cfg.Timezone)
	if err != nil {
		return Config{}, fmt.Errorf("invalid time zone %q: %w", cfg.Timezone, err)
	}

	envString(&cfg.FileStore, "FILESTORE", "s3")
	envString(&cfg.S3Bucket, "S3_BUCKET", "")
	envString(&cfg.S3Region, "S3_REGION", "us-east-1")
	envString(&cfg.S3Endpoint, "S3_ENDPOINT", "")
	envString(&cfg.FolderLinkBase, "FOLDER_LINK_BASE", "")
	switch cfg.FileStore {
	case "s3":
		if cfg.S3Bucket == "" {
			return Config{}, errors.New("S3_BUCKET required when FILESTORE=s3")
		}
	case "memory":
	default:
		return Config{}, fmt.Errorf("unsupported file store %q", cfg.FileStore)
	}
	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = 32 << 20
	}

	envString(&cfg.RedisURL, "REDIS_URL", "")
	if cfg.DashboardCooldown, err = envDuration(cfg.DashboardCooldown, "DASHBOARD_COOLDOWN", time.Minute); err != nil {
		return Config{}, err
	}

	if err := LoadMailEnv(&cfg); err != nil {
		return Config{}, err
	}

	envString(&cfg.CatalogFile, "CATALOG_FILE", "")

	cfg.EnforceUniqueClaims = !allowDuplicates
	if v := os.Getenv("ENFORCE_UNIQUE_CLAIMS"); v != "" && !allowDuplicates {
		enforce, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, errors.New("invalid ENFORCE_UNIQUE_CLAIMS env variable")
		}
		cfg.EnforceUniqueClaims = enforce
	}

	return cfg, nil
}

// LoadMailEnv fills the SMTP settings and the login URL from SMTP_*,
// MAIL_FROM and APP_URL where flags left them unset. The admin CLI reads
// mail settings through it too.
func LoadMailEnv(cfg *Config) error {
	envString(&cfg.SMTPHost, "SMTP_HOST", "")
	envString(&cfg.SMTPUser, "SMTP_USER", "")
	envString(&cfg.MailFrom, "MAIL_FROM", cfg.SMTPUser)
	envString(&cfg.AppURL, "APP_URL", "")
	envString(&cfg.SMTPPassword, "SMTP_PASSWORD", "")
	if cfg.SMTPPort == 0 {
		cfg.SMTPPort = 587
		if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil || port <= 0 {
				return errors.New("invalid SMTP_PORT env variable")
			}
			cfg.SMTPPort = port
		}
	}
	return nil
}

// envString fills *dst from the environment, then from def, when empty
func envString(dst *string, key, def string) {
	if *dst != "" {
		return
	}
	if v := os.Getenv(key); v != "" {
		*dst = v
		return
	}
	*dst = def
}

func envDuration(cur time.Duration, key string, def time.Duration) (time.Duration, error) {
	if cur != 0 {
		return cur, nil
	}
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable: %w", key, err)
	}
	return d, nil
}
