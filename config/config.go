package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/xo/dburl"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	// DATABASE_URL hat Vorrang vor den einzelnen DB_* Variablen.
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBHost      string `envconfig:"DB_HOST"`
	DBPort      int    `envconfig:"DB_PORT" default:"5432"`
	DBUser      string `envconfig:"DB_USER"`
	DBPassword  string `envconfig:"DB_PASSWORD"`
	DBName      string `envconfig:"DB_NAME"`

	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`

	JWTSecret     string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL      time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	AdminEmail    string        `envconfig:"ADMIN_EMAIL"`
	AdminPassword string        `envconfig:"ADMIN_PASSWORD"`

	// Ablage der hochgeladenen PDFs: "local" (Verzeichnis) oder "s3"
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"local"`
	FilesDir       string `envconfig:"FILES_DIR" default:"files"`
	S3URL          string `envconfig:"S3_URL"`
	S3Region       string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Key          string `envconfig:"S3_KEY"`
	S3Secret       string `envconfig:"S3_SECRET"`
	S3Bucket       string `envconfig:"S3_BUCKET"`

	MaxUploadMB        int64 `envconfig:"MAX_UPLOAD_MB" default:"12"`
	AbstractPreviewLen int   `envconfig:"ABSTRACT_PREVIEW_LEN" default:"670"`

	// Leer = Zähler im Prozess statt Redis
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	ViewSyncSchedule string `envconfig:"VIEW_SYNC_SCHEDULE" default:"@every 1m"`
	BacklogSchedule  string `envconfig:"BACKLOG_SCHEDULE" default:"*/5 * * * *"`

	MetricsAPIKey string `envconfig:"METRICS_API_KEY"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Database liefert den gorm-Dialekt ("postgres" oder "sqlite") und die DSN.
func (c *Config) Database() (string, string, error) {
	if c.DatabaseURL == "" {
		if c.DBHost == "" {
			return "", "", errors.New("either DATABASE_URL or DB_HOST must be set")
		}
		return "postgres", c.DSN(), nil
	}
	u, err := dburl.Parse(c.DatabaseURL)
	if err != nil {
		return "", "", fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	switch u.Driver {
	case "postgres", "pgx":
		return "postgres", u.DSN, nil
	case "sqlite3", "sqlite", "moderncsqlite":
		return "sqlite", u.DSN, nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", u.Driver)
	}
}

// Validate prüft Kombinationen, die envconfig allein nicht abdecken kann.
func (c *Config) Validate() error {
	if _, _, err := c.Database(); err != nil {
		return err
	}
	switch c.StorageBackend {
	case "local":
		if c.FilesDir == "" {
			return errors.New("FILES_DIR must not be empty for the local storage backend")
		}
	case "s3":
		if c.S3Bucket == "" || c.S3Key == "" || c.S3Secret == "" {
			return errors.New("S3_BUCKET, S3_KEY and S3_SECRET are required for the s3 storage backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.MaxUploadMB <= 0 {
		return errors.New("MAX_UPLOAD_MB must be positive")
	}
	if c.AbstractPreviewLen <= 0 {
		return errors.New("ABSTRACT_PREVIEW_LEN must be positive")
	}
	return nil
}

// MaxUploadBytes rechnet MAX_UPLOAD_MB in Bytes um.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
