package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// SQLitePrefix selects the single-file store in DATABASE_URL
const SQLitePrefix = "sqlite:"

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Auth0
	Auth0Domain   string
	Auth0Audience string

	// Server
	Port        string
	CORSOrigins []string
	Env         string
	LogLevel    string

	// Ledger
	LedgerMaxRetries int

	// Cash bills
	CashBill CashBillConfig

	// S3 Storage
	S3 S3Config
}

// CashBillConfig holds cash bill rendering and export limits
type CashBillConfig struct {
	Title         string
	Location      *time.Location
	RatePerMinute int
	Burst         int
}

// S3Config holds AWS S3 configuration for the export archive
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
}

// Enabled reports whether exported documents are archived
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		Auth0Domain:   getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience: getEnv("AUTH0_AUDIENCE", ""),
		Port:          getEnv("PORT", "8080"),
		CORSOrigins:   strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS, set for MinIO/LocalStack
		},
	}

	var err error
	if cfg.LedgerMaxRetries, err = getEnvInt("LEDGER_MAX_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.CashBill.RatePerMinute, err = getEnvInt("EXPORT_RATE_PER_MINUTE", 20); err != nil {
		return nil, err
	}
	if cfg.CashBill.Burst, err = getEnvInt("EXPORT_BURST", 5); err != nil {
		return nil, err
	}
	cfg.CashBill.Title = getEnv("CASH_BILL_TITLE", "CASH BILL MEETING")
	tz := getEnv("CASH_BILL_TZ", "Asia/Kolkata")
	if cfg.CashBill.Location, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("CASH_BILL_TZ: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// UsesSQLite reports whether DATABASE_URL points at a local SQLite file
func (c *Config) UsesSQLite() bool {
	return strings.HasPrefix(c.DatabaseURL, SQLitePrefix)
}

// SQLitePath returns the file path of a sqlite: DATABASE_URL
func (c *Config) SQLitePath() string {
	return strings.TrimPrefix(c.DatabaseURL, SQLitePrefix)
}

// IsProduction reports whether the server runs in production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.UsesSQLite() && c.SQLitePath() == "" {
		return fmt.Errorf("DATABASE_URL: sqlite path is empty")
	}
	if c.Auth0Domain == "" {
		return fmt.Errorf("AUTH0_DOMAIN is required")
	}
	if c.Auth0Audience == "" {
		return fmt.Errorf("AUTH0_AUDIENCE is required")
	}
	if c.LedgerMaxRetries < 1 {
		return fmt.Errorf("LEDGER_MAX_RETRIES must be at least 1")
	}
	if c.CashBill.RatePerMinute < 1 || c.CashBill.Burst < 1 {
		return fmt.Errorf("EXPORT_RATE_PER_MINUTE and EXPORT_BURST must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
