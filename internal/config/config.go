package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server configuration
	ServerPort     string   `envconfig:"PORT" default:"8080"`
	Environment    string   `envconfig:"ENV" default:"development"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"https://archive.example.com"`
	LogLevel       string   `envconfig:"LOG_LEVEL" default:"info"`

	// Warnings collected while loading, logged once the logger exists
	Warnings []string `ignored:"true"`

	// Database configuration. DBDriver is "postgres" or "sqlite".
	DBDriver   string `envconfig:"DB_DRIVER" default:"postgres"`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName     string `envconfig:"DB_NAME" default:"document_archive"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"document_archive.db"`

	// Redis configuration
	RedisAddress string        `envconfig:"REDIS_ADDRESS" default:"localhost:6379"`
	CacheTTL     time.Duration `envconfig:"CACHE_TTL" default:"1h"`

	// JWT configuration
	JWTSecret string        `envconfig:"JWT_SECRET"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"72h"`

	// Seeded outside production so a fresh database has an administrator
	AdminEmail string `envconfig:"ADMIN_EMAIL" default:"admin@example.com"`

	// Mail relay used for request review notifications
	MailerURL   string `envconfig:"MAILER_URL"`
	MailerToken string `envconfig:"MAILER_TOKEN"`
	MailFrom    string `envconfig:"MAIL_FROM" default:"archive@example.com"`
	WorkerCount int    `envconfig:"WORKER_COUNT" default:"4"`

	// Object storage for uploaded files
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Bucket    string `envconfig:"S3_BUCKET"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`
	MaxUploadMB int64  `envconfig:"MAX_UPLOAD_MB" default:"50"`

	// Full-text search
	SearchIndexPath string `envconfig:"SEARCH_INDEX_PATH" default:"data/search.bleve"`
	ReindexSchedule string `envconfig:"REINDEX_SCHEDULE" default:"0 3 * * *"`
}

// Global application configuration
var AppConfig Config

// LoadConfig loads configuration from the environment, reading a .env file first when one is found
func LoadConfig() (*Config, error) {
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		// Try to find .env in parent directories
		envPath = filepath.Join("..", ".env")
		if _, err := os.Stat(envPath); os.IsNotExist(err) {
			envPath = filepath.Join("..", "..", ".env")
		}
	}

	var warnings []string
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			warnings = append(warnings, fmt.Sprintf("Error loading .env file %s: %v", envPath, err))
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	cfg.Warnings = warnings

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "document-archive-dev-secret"
		cfg.Warnings = append(cfg.Warnings, "JWT_SECRET not set, using development secret")
	}
	cfg.DBDriver = strings.ToLower(cfg.DBDriver)

	AppConfig = cfg
	return &cfg, nil
}

// DSN returns the PostgreSQL data source name.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// S3Enabled reports whether uploads can be stored.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}
