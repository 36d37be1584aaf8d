// internal/config/config.go
//
// Environment-driven configuration for the revision server.
// main loads a .env file (godotenv) before calling Load, so every value here
// can come from the process environment or the .env file.

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port         string
	LogLevel     string
	ClientOrigin string

	// Dataset source, highest priority first. Both empty → embedded catalog.
	CatalogURL  string
	CatalogFile string

	// Results database ("sqlite" | "postgres" | "mysql").
	DatabaseType string
	DatabasePath string
	DatabaseURL  string

	// Game tuning.
	MaxAttempts  int
	RevealDelay  time.Duration
	AdvanceDelay time.Duration
	Heartbeat    time.Duration
	SessionTTL   time.Duration

	DailySalt string

	// Certificates.
	CertSecret     string
	CertExpiryDays int
	PublicBaseURL  string

	// bcrypt hash guarding GET /results; empty disables the dashboard.
	ResultsPasswordHash string

	// Amazon SES; empty SESFromEmail disables e-mail.
	AWSRegion    string
	SESFromEmail string
	SESFromName  string

	// Domains teacher result e-mails may go to; empty refuses every address.
	TeacherEmailDomains []string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "5175"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),

		CatalogURL:  os.Getenv("CATALOG_URL"),
		CatalogFile: os.Getenv("CATALOG_FILE"),

		DatabaseType: getEnv("DB_TYPE", "sqlite"),
		DatabasePath: getEnv("DB_PATH", "./data/revision.db"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),

		MaxAttempts:  getEnvInt("WALL_MAX_ATTEMPTS", 3),
		RevealDelay:  getEnvDuration("REVEAL_DELAY", time.Second),
		AdvanceDelay: getEnvDuration("ADVANCE_DELAY", 1500*time.Millisecond),
		Heartbeat:    time.Second,
		SessionTTL:   getEnvDuration("SESSION_TTL", 2*time.Hour),

		DailySalt: getEnv("DAILY_SALT", "local_dev_salt"),

		CertSecret:     getEnv("CERT_SECRET", "dev_secret_change_me"),
		CertExpiryDays: getEnvInt("CERT_EXPIRES_DAYS", 365),
		PublicBaseURL:  getEnv("PUBLIC_BASE_URL", "http://localhost:5175"),

		ResultsPasswordHash: os.Getenv("RESULTS_PASSWORD_HASH"),

		AWSRegion:    getEnv("AWS_REGION", "eu-west-2"),
		SESFromEmail: os.Getenv("SES_FROM_EMAIL"),
		SESFromName:  getEnv("SES_FROM_NAME", "GCSE Revision"),

		TeacherEmailDomains: getEnvList("TEACHER_EMAIL_DOMAINS"),
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// getEnvList splits a comma-separated value, dropping blanks.
func getEnvList(k string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(k), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// getEnvDuration accepts Go duration strings ("1s", "1500ms").
func getEnvDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
